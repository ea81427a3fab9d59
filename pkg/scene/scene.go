// Package scene defines the capability set the flow engine drives on a
// rendering engine, and an in-memory implementation of it.
//
// A browser canvas library, a terminal view, or a headless exporter can
// sit behind [Renderer]. [Memory] keeps the element set, positions, CSS-like
// classes and viewport in process and dispatches simulated user input
// through [Memory.Tap] and [Memory.DoubleClickEdge].
package scene

import (
	"errors"
)

// Sentinel errors returned by renderers.
var (
	// ErrDuplicate is returned when an element id is already in the scene.
	ErrDuplicate = errors.New("duplicate element")

	// ErrMissingEndpoint is returned when an edge references a node that is
	// not in the scene. Renderers drop such edges.
	ErrMissingEndpoint = errors.New("edge endpoint not in scene")
)

// Kind discriminates scene elements.
type Kind string

// Element kinds.
const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
)

// Layout names understood by [Memory.RunLayout].
const (
	LayoutPreset = "preset" // keep current positions
	LayoutRow    = "row"    // evenly spaced on one horizontal axis, insertion order
)

// Position is a point in model coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is a node or an edge in the scene.
type Element struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Label    string   `json:"label,omitempty"`
	Source   string   `json:"source,omitempty"`
	Target   string   `json:"target,omitempty"`
	Position Position `json:"position"`
	Classes  []string `json:"classes,omitempty"`
}

// IsNode reports whether e is a node.
func (e Element) IsNode() bool { return e.Kind == KindNode }

// IsEdge reports whether e is an edge.
func (e Element) IsEdge() bool { return e.Kind == KindEdge }

// HasClass reports whether e carries class.
func (e Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// Tap is a tap or click on the scene. An empty Target means the
// background was tapped.
type Tap struct {
	Target string `json:"target"`
	// Modifier is set when the confirm accelerator key was held.
	Modifier bool `json:"modifier"`
}

// Background reports whether the tap hit empty canvas.
func (t Tap) Background() bool { return t.Target == "" }

// Viewport is the visible window onto the scene.
type Viewport struct {
	Zoom    float64  `json:"zoom"`
	Pan     Position `json:"pan"`
	Padding float64  `json:"padding"`
}

// Renderer is the set of operations the flow engine needs from a
// rendering engine.
type Renderer interface {
	// AddNode adds a node. Returns ErrDuplicate if id exists.
	AddNode(id, label string, pos Position) error

	// RemoveElement removes a node or an edge. Removing a node also
	// removes its incident edges. Unknown ids are ignored.
	RemoveElement(id string)

	// AddEdge adds a directed edge. Returns ErrDuplicate if id exists and
	// ErrMissingEndpoint if source or target is not a node in the scene.
	AddEdge(id, source, target string) error

	// Elements lists nodes then edges, each in insertion order.
	Elements() []Element

	// OnTap registers the handler for taps on nodes and background.
	OnTap(func(Tap))

	// OnDoubleClickEdge registers the handler for double clicks on edges.
	OnDoubleClickEdge(func(edgeID string))

	// FitAndZoom fits all elements with padding, then sets zoom.
	FitAndZoom(padding, zoom float64)

	// RunLayout applies a named layout.
	RunLayout(name string, padding float64)

	// AddClass adds a visual class to an element.
	AddClass(id, class string)

	// RemoveClass removes class from every element.
	RemoveClass(class string)
}
