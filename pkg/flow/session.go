package flow

import (
	"github.com/matzehuels/motorrutas/pkg/partition"
	"github.com/matzehuels/motorrutas/pkg/scene"
)

// State is the phase of a connection session.
type State int

// Connection session states.
const (
	Idle State = iota
	AwaitingTarget
)

// String returns "idle" or "awaiting-target".
func (s State) String() string {
	if s == AwaitingTarget {
		return "awaiting-target"
	}
	return "idle"
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText decodes a state name. Unknown names decode as Idle.
func (s *State) UnmarshalText(b []byte) error {
	*s = Idle
	if string(b) == "awaiting-target" {
		*s = AwaitingTarget
	}
	return nil
}

// Connection is the transient state of an edge being authored.
type Connection struct {
	State  State            `json:"state"`
	Source partition.ItemID `json:"source,omitempty"`
}

// Active reports whether a source is pending.
func (c Connection) Active() bool { return c.State == AwaitingTarget }

// Tap feeds a tap into the connection protocol. It is the handler
// registered on the renderer and may also be called directly.
func (e *Engine) Tap(t scene.Tap) { e.handleTap(t) }

func (e *Engine) handleTap(t scene.Tap) {
	if t.Background() {
		if e.conn.Active() {
			e.cancel()
		}
		return
	}
	n := partition.ItemID(t.Target)
	if !e.HasNode(n) {
		return
	}

	switch e.conn.State {
	case Idle:
		if n == End {
			return
		}
		e.conn = Connection{State: AwaitingTarget, Source: n}
		e.refreshMarks()
	case AwaitingTarget:
		s := e.conn.Source
		switch {
		case n == s:
			e.cancel()
		case t.Modifier && !e.HasEdge(s, n):
			// Session ends before Connect so its mark refresh is a no-op.
			e.cancel()
			e.Connect(s, n)
		}
	}
}

func (e *Engine) cancel() {
	e.conn = Connection{}
	e.clearMarks()
}

func (e *Engine) clearMarks() {
	e.r.RemoveClass(ClassSource)
	e.r.RemoveClass(ClassTarget)
}

// refreshMarks redraws the source and potential-target classes for the
// active session; a no-op when idle.
func (e *Engine) refreshMarks() {
	if !e.conn.Active() {
		return
	}
	e.clearMarks()
	s := e.conn.Source
	e.r.AddClass(string(s), ClassSource)
	for id := range e.nodeSet {
		if id != s && !e.HasEdge(s, id) {
			e.r.AddClass(string(id), ClassTarget)
		}
	}
}

// PotentialTargets returns the nodes the pending source may still connect
// to, or nil when idle.
func (e *Engine) PotentialTargets() []partition.ItemID {
	if !e.conn.Active() {
		return nil
	}
	var out []partition.ItemID
	for _, id := range e.nodeOrder() {
		if id != e.conn.Source && !e.HasEdge(e.conn.Source, id) {
			out = append(out, id)
		}
	}
	return out
}

func (e *Engine) nodeOrder() []partition.ItemID {
	out := []partition.ItemID{Start, End}
	for _, it := range e.nodes {
		out = append(out, it.ID)
	}
	return out
}
