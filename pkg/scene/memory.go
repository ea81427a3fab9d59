package scene

import (
	"fmt"
	"slices"
)

// DefaultZoom is the zoom level of a freshly constructed scene.
const DefaultZoom = 1.0

// rowSpacing is the horizontal gap used by the row layout.
const rowSpacing = 150

// Memory is an in-process [Renderer].
//
// Memory is not safe for concurrent use. Handlers run synchronously inside
// Tap and DoubleClickEdge and may mutate the scene.
type Memory struct {
	nodes []*Element
	edges []*Element
	byID  map[string]*Element

	viewport Viewport

	onTap      func(Tap)
	onDblClick func(string)
}

// NewMemory returns an empty scene.
func NewMemory() *Memory {
	return &Memory{
		byID:     make(map[string]*Element),
		viewport: Viewport{Zoom: DefaultZoom},
	}
}

// AddNode implements [Renderer].
func (m *Memory) AddNode(id, label string, pos Position) error {
	if _, ok := m.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	el := &Element{ID: id, Kind: KindNode, Label: label, Position: pos}
	m.nodes = append(m.nodes, el)
	m.byID[id] = el
	return nil
}

// AddEdge implements [Renderer].
func (m *Memory) AddEdge(id, source, target string) error {
	if _, ok := m.byID[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, id)
	}
	if !m.isNode(source) || !m.isNode(target) {
		return fmt.Errorf("%w: %s -> %s", ErrMissingEndpoint, source, target)
	}
	el := &Element{ID: id, Kind: KindEdge, Source: source, Target: target}
	m.edges = append(m.edges, el)
	m.byID[id] = el
	return nil
}

// RemoveElement implements [Renderer].
func (m *Memory) RemoveElement(id string) {
	el, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byID, id)
	if el.IsEdge() {
		m.edges = slices.DeleteFunc(m.edges, func(e *Element) bool { return e.ID == id })
		return
	}
	m.nodes = slices.DeleteFunc(m.nodes, func(e *Element) bool { return e.ID == id })
	m.edges = slices.DeleteFunc(m.edges, func(e *Element) bool {
		if e.Source == id || e.Target == id {
			delete(m.byID, e.ID)
			return true
		}
		return false
	})
}

// Elements implements [Renderer]. The returned elements are copies.
func (m *Memory) Elements() []Element {
	out := make([]Element, 0, len(m.nodes)+len(m.edges))
	for _, group := range [][]*Element{m.nodes, m.edges} {
		for _, el := range group {
			cp := *el
			cp.Classes = slices.Clone(el.Classes)
			out = append(out, cp)
		}
	}
	return out
}

// Element returns the element with id.
func (m *Memory) Element(id string) (Element, bool) {
	el, ok := m.byID[id]
	if !ok {
		return Element{}, false
	}
	cp := *el
	cp.Classes = slices.Clone(el.Classes)
	return cp, true
}

// OnTap implements [Renderer]. A later call replaces the handler.
func (m *Memory) OnTap(h func(Tap)) { m.onTap = h }

// OnDoubleClickEdge implements [Renderer]. A later call replaces the handler.
func (m *Memory) OnDoubleClickEdge(h func(string)) { m.onDblClick = h }

// Tap dispatches a tap. Taps on unknown ids and on edges hit the
// background, matching a canvas where only nodes are tap targets.
func (m *Memory) Tap(target string, modifier bool) {
	if m.onTap == nil {
		return
	}
	if !m.isNode(target) {
		target = ""
	}
	m.onTap(Tap{Target: target, Modifier: modifier})
}

// DoubleClickEdge dispatches a double click on an edge. Unknown ids and
// nodes are ignored.
func (m *Memory) DoubleClickEdge(id string) {
	if m.onDblClick == nil {
		return
	}
	if el, ok := m.byID[id]; ok && el.IsEdge() {
		m.onDblClick(id)
	}
}

// MoveNode sets the position of a node, as a drag would.
func (m *Memory) MoveNode(id string, pos Position) bool {
	if !m.isNode(id) {
		return false
	}
	m.byID[id].Position = pos
	return true
}

// FitAndZoom implements [Renderer]. The pan centers the bounding box of
// all nodes.
func (m *Memory) FitAndZoom(padding, zoom float64) {
	m.viewport.Padding = padding
	m.viewport.Zoom = zoom
	if len(m.nodes) == 0 {
		m.viewport.Pan = Position{}
		return
	}
	minX, minY := m.nodes[0].Position.X, m.nodes[0].Position.Y
	maxX, maxY := minX, minY
	for _, n := range m.nodes[1:] {
		minX = min(minX, n.Position.X)
		maxX = max(maxX, n.Position.X)
		minY = min(minY, n.Position.Y)
		maxY = max(maxY, n.Position.Y)
	}
	m.viewport.Pan = Position{X: (minX + maxX) / 2, Y: (minY + maxY) / 2}
}

// RunLayout implements [Renderer]. Unknown layouts behave like preset.
func (m *Memory) RunLayout(name string, padding float64) {
	if name != LayoutRow {
		return
	}
	y := padding
	if len(m.nodes) > 0 {
		y = m.nodes[0].Position.Y
	}
	for i, n := range m.nodes {
		n.Position = Position{X: padding + float64(i*rowSpacing), Y: y}
	}
}

// Viewport returns the current viewport.
func (m *Memory) Viewport() Viewport { return m.viewport }

// AddClass implements [Renderer].
func (m *Memory) AddClass(id, class string) {
	el, ok := m.byID[id]
	if !ok || el.HasClass(class) {
		return
	}
	el.Classes = append(el.Classes, class)
}

// RemoveClass implements [Renderer].
func (m *Memory) RemoveClass(class string) {
	for _, el := range m.byID {
		el.Classes = slices.DeleteFunc(el.Classes, func(c string) bool { return c == class })
		if len(el.Classes) == 0 {
			el.Classes = nil
		}
	}
}

func (m *Memory) isNode(id string) bool {
	el, ok := m.byID[id]
	return ok && el.IsNode()
}

// Ensure Memory implements Renderer.
var _ Renderer = (*Memory)(nil)
