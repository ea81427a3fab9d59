package partition

import (
	"slices"
)

// ItemID identifies an item independently of its display label.
// Two items may share a label; they never share an ID.
type ItemID string

// Item is one selectable procedure step, such as an establishment.
type Item struct {
	ID    ItemID `json:"id"`
	Label string `json:"label"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (it Item) DisplayLabel() string {
	if it.Label != "" {
		return it.Label
	}
	return string(it.ID)
}

// Manager owns the available and selected lists and the set of marked
// indices addressing their concatenation.
type Manager struct {
	available []Item
	selected  []Item
	marked    map[int]struct{}

	// rank is the position of each ID in the most recent catalogue.
	rank map[ItemID]int

	// reserved IDs are refused by ReplaceAvailable.
	reserved map[ItemID]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithReserved makes the manager refuse items carrying any of ids.
// Used to keep pseudo-node identifiers out of the item lists.
func WithReserved(ids ...ItemID) Option {
	return func(m *Manager) {
		for _, id := range ids {
			m.reserved[id] = struct{}{}
		}
	}
}

// New creates a Manager whose available list is items and whose selected
// list is empty.
func New(items []Item, opts ...Option) *Manager {
	m := &Manager{
		marked:   make(map[int]struct{}),
		rank:     make(map[ItemID]int),
		reserved: make(map[ItemID]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ReplaceAvailable(items)
	return m
}

// Available returns a copy of the available list.
func (m *Manager) Available() []Item { return slices.Clone(m.available) }

// Selected returns a copy of the selected list.
func (m *Manager) Selected() []Item { return slices.Clone(m.selected) }

// SelectedIDs returns the IDs of the selected list in order.
func (m *Manager) SelectedIDs() []ItemID {
	ids := make([]ItemID, len(m.selected))
	for i, it := range m.selected {
		ids[i] = it.ID
	}
	return ids
}

// Len returns the length of the concatenated list.
func (m *Manager) Len() int { return len(m.available) + len(m.selected) }

// MarkedIndices returns the marked indices in ascending order.
func (m *Manager) MarkedIndices() []int {
	out := make([]int, 0, len(m.marked))
	for i := range m.marked {
		out = append(out, i)
	}
	slices.Sort(out)
	return out
}

// IsMarked reports whether index i is marked.
func (m *Manager) IsMarked(i int) bool {
	_, ok := m.marked[i]
	return ok
}

// IsSelected reports whether id is in the selected list.
func (m *Manager) IsSelected(id ItemID) bool {
	return slices.ContainsFunc(m.selected, func(it Item) bool { return it.ID == id })
}

// Contains reports whether id is in either list.
func (m *Manager) Contains(id ItemID) bool {
	return m.IsSelected(id) || slices.ContainsFunc(m.available, func(it Item) bool { return it.ID == id })
}

// ToggleIndex flips the mark on index i. Negative indices are ignored.
// Indices beyond the current lists are kept and ignored at move time.
func (m *Manager) ToggleIndex(i int) {
	if i < 0 {
		return
	}
	if _, ok := m.marked[i]; ok {
		delete(m.marked, i)
		return
	}
	m.marked[i] = struct{}{}
}

// ClearMarks empties the index set.
func (m *Manager) ClearMarks() { clear(m.marked) }

// MoveSelectedToRight moves every marked available item to the end of the
// selected list, in index order, and clears the index set. It returns the
// moved items; nil when nothing was marked.
func (m *Manager) MoveSelectedToRight() []Item {
	if len(m.marked) == 0 {
		return nil
	}
	idx := m.indicesIn(0, len(m.available))
	moved := pick(m.available, idx)
	m.available = removeAt(m.available, idx)
	m.selected = append(m.selected, moved...)
	m.ClearMarks()
	return moved
}

// MoveSelectedToLeft moves every marked selected item back to the available
// list and clears the index set. It returns the moved items so the caller
// can prune edges that reference them; nil when nothing was marked.
func (m *Manager) MoveSelectedToLeft() []Item {
	if len(m.marked) == 0 {
		return nil
	}
	base := len(m.available)
	idx := m.indicesIn(base, base+len(m.selected))
	for i := range idx {
		idx[i] -= base
	}
	moved := pick(m.selected, idx)
	m.selected = removeAt(m.selected, idx)
	m.restore(moved)
	m.ClearMarks()
	return moved
}

// MoveAllToRight appends the whole available list to the selected list.
func (m *Manager) MoveAllToRight() []Item {
	moved := m.available
	m.selected = append(m.selected, moved...)
	m.available = nil
	m.ClearMarks()
	return slices.Clone(moved)
}

// MoveAllToLeft returns every selected item to the available list and
// returns them.
func (m *Manager) MoveAllToLeft() []Item {
	moved := m.selected
	m.selected = nil
	m.restore(moved)
	m.ClearMarks()
	return slices.Clone(moved)
}

// ReplaceAvailable replaces the available list wholesale, typically after
// the item source is (re)loaded. The selected list is untouched. Items that
// are already selected, carry a reserved ID, or repeat an earlier ID in
// items are dropped. The index set is cleared since list lengths change.
func (m *Manager) ReplaceAvailable(items []Item) {
	clear(m.rank)
	seen := make(map[ItemID]struct{}, len(items))
	next := make([]Item, 0, len(items))
	for _, it := range items {
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		m.rank[it.ID] = len(m.rank)
		if _, ok := m.reserved[it.ID]; ok || m.IsSelected(it.ID) {
			continue
		}
		next = append(next, it)
	}
	m.available = next
	m.ClearMarks()
}

// indicesIn returns the marked indices within [lo, hi) in ascending order.
func (m *Manager) indicesIn(lo, hi int) []int {
	var idx []int
	for i := range m.marked {
		if i >= lo && i < hi {
			idx = append(idx, i)
		}
	}
	slices.Sort(idx)
	return idx
}

// restore inserts items into the available list by catalogue rank.
func (m *Manager) restore(items []Item) {
	for _, it := range items {
		r, known := m.rank[it.ID]
		if !known {
			m.available = append(m.available, it)
			continue
		}
		pos := len(m.available)
		for i, cur := range m.available {
			if cr, ok := m.rank[cur.ID]; !ok || cr > r {
				pos = i
				break
			}
		}
		m.available = slices.Insert(m.available, pos, it)
	}
}

// pick returns items at ascending indices idx.
func pick(items []Item, idx []int) []Item {
	out := make([]Item, 0, len(idx))
	for _, i := range idx {
		out = append(out, items[i])
	}
	return out
}

// removeAt deletes ascending indices idx, highest first so earlier
// indices stay valid.
func removeAt(items []Item, idx []int) []Item {
	for i := len(idx) - 1; i >= 0; i-- {
		items = slices.Delete(items, idx[i], idx[i]+1)
	}
	return items
}
