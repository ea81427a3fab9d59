package rutas

import (
	"strconv"

	"github.com/matzehuels/motorrutas/pkg/partition"
)

// Template is the route service payload.
type Template struct {
	RouteName string `json:"nombreRuta"`
	Graph     Graph  `json:"graph"`
}

// Graph wraps the template elements.
type Graph struct {
	Elements Elements `json:"elements"`
}

// Elements lists the template nodes and edges.
type Elements struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges,omitempty"`
}

// Node is a template node. Only Name is shown to the user.
type Node struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Edge is a template edge. Endpoints are kept as decoded since the
// service sends both numbers and strings.
type Edge struct {
	Source     any    `json:"source"`
	Target     any    `json:"target"`
	Time       *int   `json:"tiempo,omitempty"`
	Action     string `json:"accion,omitempty"`
	ActionText string `json:"accion_texto,omitempty"`
}

// Items converts the template nodes into partition items in payload order.
// The node id becomes the item ID.
func (t *Template) Items() []partition.Item {
	items := make([]partition.Item, 0, len(t.Graph.Elements.Nodes))
	for _, n := range t.Graph.Elements.Nodes {
		items = append(items, partition.Item{
			ID:    partition.ItemID(strconv.Itoa(n.ID)),
			Label: n.Name,
		})
	}
	return items
}
