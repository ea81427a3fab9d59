package flow

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/scene"
)

// Pseudo-node identifiers bounding every route.
const (
	Start partition.ItemID = "INICIO"
	End   partition.ItemID = "FIN"
)

// Visual classes applied while a connection is being authored.
const (
	ClassSource = "source-selected"
	ClassTarget = "potential-target"
)

// Viewport defaults used when the scene is (re)populated and by Center.
const (
	layoutPadding = 30
	fitPadding    = 80
	fitZoom       = 0.6
)

// Default positions for new nodes.
var (
	startPos = scene.Position{X: 150, Y: 200}
	endPos   = scene.Position{X: 1000, Y: 200}
)

const (
	itemOriginX  = 350
	itemSpacingX = 150
	itemY        = 200
)

// Edge is a directed connection between two nodes.
type Edge struct {
	Source partition.ItemID `json:"source"`
	Target partition.ItemID `json:"target"`
}

// ID returns the composite scene id "<source>-<target>".
func (e Edge) ID() string { return string(e.Source) + "-" + string(e.Target) }

// Touches reports whether id is either endpoint of e.
func (e Edge) Touches(id partition.ItemID) bool { return e.Source == id || e.Target == id }

// Engine owns the edge set and the connection session, and drives a renderer.
type Engine struct {
	r      scene.Renderer
	logger *log.Logger

	edges []Edge
	conn  Connection

	// nodes mirrors the current node set, including labels.
	nodes    []partition.Item
	nodeSet  map[partition.ItemID]struct{}
	lastSeen map[partition.ItemID]scene.Position

	onChange func(EdgeChange)
}

// EdgeChange describes a mutation of the edge set.
type EdgeChange struct {
	Created []Edge
	Deleted []Edge
	Reason  string
}

// Reasons reported in [EdgeChange].
const (
	ReasonConnect = "connect"
	ReasonDelete  = "delete"
	ReasonPrune   = "prune"
	ReasonClear   = "clear"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for debug output.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithEdgeListener registers fn to be called after every edge-set change.
func WithEdgeListener(fn func(EdgeChange)) Option {
	return func(e *Engine) { e.onChange = fn }
}

// New creates an Engine bound to r, registers its input handlers, and
// renders the empty route (INICIO and FIN only).
func New(r scene.Renderer, opts ...Option) *Engine {
	e := &Engine{
		r:        r,
		logger:   log.Default(),
		nodeSet:  make(map[partition.ItemID]struct{}),
		lastSeen: make(map[partition.ItemID]scene.Position),
	}
	for _, opt := range opts {
		opt(e)
	}
	r.OnTap(e.handleTap)
	r.OnDoubleClickEdge(func(id string) { e.DeleteEdge(id) })
	e.Reconcile(nil)
	return e
}

// Edges returns a copy of the edge set in creation order.
func (e *Engine) Edges() []Edge { return slices.Clone(e.edges) }

// HasEdge reports whether the edge source -> target exists.
func (e *Engine) HasEdge(source, target partition.ItemID) bool {
	return slices.Contains(e.edges, Edge{Source: source, Target: target})
}

// HasNode reports whether id is in the current node set.
func (e *Engine) HasNode(id partition.ItemID) bool {
	_, ok := e.nodeSet[id]
	return ok
}

// Connection returns the current connection session.
func (e *Engine) Connection() Connection { return e.conn }

// Connect adds the edge source -> target. It refuses self-loops, duplicate
// edges, FIN as a source, and endpoints outside the node set, returning
// false without error in those cases.
func (e *Engine) Connect(source, target partition.ItemID) bool {
	if !e.canConnect(source, target) {
		e.logger.Debug("edge refused", "source", source, "target", target)
		return false
	}
	edge := Edge{Source: source, Target: target}
	e.edges = append(e.edges, edge)
	if err := e.r.AddEdge(edge.ID(), string(source), string(target)); err != nil {
		// Recovered by the next reconciliation.
		e.logger.Debug("renderer dropped edge", "edge", edge.ID(), "err", err)
	}
	e.refreshMarks()
	e.notify(EdgeChange{Created: []Edge{edge}, Reason: ReasonConnect})
	return true
}

// DeleteEdge removes the edge with composite id from the edge set and the
// scene. It reports whether the edge existed.
func (e *Engine) DeleteEdge(id string) bool {
	i := slices.IndexFunc(e.edges, func(ed Edge) bool { return ed.ID() == id })
	if i < 0 {
		return false
	}
	edge := e.edges[i]
	e.edges = slices.Delete(e.edges, i, i+1)
	e.r.RemoveElement(id)
	e.refreshMarks()
	e.notify(EdgeChange{Deleted: []Edge{edge}, Reason: ReasonDelete})
	return true
}

// Prune removes every edge touching any of ids, from both the edge set and
// the scene. It returns the removed edges.
func (e *Engine) Prune(ids ...partition.ItemID) []Edge {
	if len(ids) == 0 {
		return nil
	}
	var removed []Edge
	e.edges = slices.DeleteFunc(e.edges, func(ed Edge) bool {
		for _, id := range ids {
			if ed.Touches(id) {
				removed = append(removed, ed)
				return true
			}
		}
		return false
	})
	for _, ed := range removed {
		e.r.RemoveElement(ed.ID())
	}
	if len(removed) > 0 {
		e.refreshMarks()
		e.notify(EdgeChange{Deleted: removed, Reason: ReasonPrune})
	}
	return removed
}

// ClearEdges empties the edge set and removes every rendered edge.
func (e *Engine) ClearEdges() []Edge {
	removed := e.edges
	e.edges = nil
	for _, ed := range removed {
		e.r.RemoveElement(ed.ID())
	}
	// Also drop rendered edges the logical set does not know about.
	for _, el := range e.r.Elements() {
		if el.IsEdge() {
			e.r.RemoveElement(el.ID)
		}
	}
	if len(removed) > 0 {
		e.refreshMarks()
		e.notify(EdgeChange{Deleted: removed, Reason: ReasonClear})
	}
	return removed
}

// Center fits the whole scene into view at the default zoom.
func (e *Engine) Center() { e.r.FitAndZoom(fitPadding, fitZoom) }

// Reconcile makes the scene match the node set {INICIO, FIN} ∪ selected
// and the logical edge set. Running it twice with no intervening change
// leaves the scene unchanged.
func (e *Engine) Reconcile(selected []partition.Item) {
	wasEmpty := len(e.nodes) == 0 && len(e.edges) == 0

	target := make([]partition.Item, 0, len(selected)+2)
	target = append(target, partition.Item{ID: Start, Label: string(Start)}, partition.Item{ID: End, Label: string(End)})
	target = append(target, selected...)

	want := make(map[string]partition.Item, len(target))
	for _, it := range target {
		want[string(it.ID)] = it
	}

	// Snapshot positions and drop nodes that left the set.
	have := make(map[string]struct{})
	for _, el := range e.r.Elements() {
		if !el.IsNode() {
			continue
		}
		e.lastSeen[partition.ItemID(el.ID)] = el.Position
		if _, ok := want[el.ID]; !ok {
			e.r.RemoveElement(el.ID)
			continue
		}
		have[el.ID] = struct{}{}
	}

	for i, it := range target {
		if _, ok := have[string(it.ID)]; ok {
			continue
		}
		pos, ok := e.lastSeen[it.ID]
		if !ok {
			pos = defaultPosition(it.ID, i-2)
		}
		if err := e.r.AddNode(string(it.ID), it.DisplayLabel(), pos); err != nil {
			e.logger.Debug("add node", "id", it.ID, "err", err)
		}
	}

	e.nodes = slices.Clone(selected)
	clear(e.nodeSet)
	for _, it := range target {
		e.nodeSet[it.ID] = struct{}{}
	}

	// A pending source that left the set ends the session.
	if e.conn.State == AwaitingTarget && !e.HasNode(e.conn.Source) {
		e.cancel()
	}

	e.restoreEdges()

	if wasEmpty || len(selected) == 0 {
		e.r.RunLayout(scene.LayoutPreset, layoutPadding)
		e.r.FitAndZoom(fitPadding, fitZoom)
	}
	e.refreshMarks()
}

// restoreEdges re-adds logical edges missing from the scene.
func (e *Engine) restoreEdges() {
	rendered := make(map[string]struct{})
	for _, el := range e.r.Elements() {
		if el.IsEdge() {
			rendered[el.ID] = struct{}{}
		}
	}
	for _, ed := range e.edges {
		if _, ok := rendered[ed.ID()]; ok {
			continue
		}
		if err := e.r.AddEdge(ed.ID(), string(ed.Source), string(ed.Target)); err != nil {
			e.logger.Debug("restore edge", "edge", ed.ID(), "err", err)
		}
	}
}

func (e *Engine) canConnect(source, target partition.ItemID) bool {
	switch {
	case source == target, source == End:
		return false
	case !e.HasNode(source), !e.HasNode(target):
		return false
	default:
		return !e.HasEdge(source, target)
	}
}

func (e *Engine) notify(c EdgeChange) {
	if e.onChange != nil {
		e.onChange(c)
	}
}

// defaultPosition places the pseudo-nodes at fixed points and the i-th
// selected item on an evenly spaced row between them.
func defaultPosition(id partition.ItemID, i int) scene.Position {
	switch id {
	case Start:
		return startPos
	case End:
		return endPos
	default:
		return scene.Position{X: float64(itemOriginX + i*itemSpacingX), Y: itemY}
	}
}
