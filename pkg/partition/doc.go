// Package partition splits a catalogue of items into two ordered lists,
// "available" and "selected", and moves items between them.
//
// # Selection Indices
//
// The user marks items by index in the virtual concatenation
// available ++ selected. Indices in [0, len(available)) address the
// available list; indices in [len(available), len(available)+len(selected))
// address the selected list. The index set is cleared after every move and
// is only ever interpreted against the list lengths at the moment of the
// move:
//
//	m := partition.New(items)
//	m.ToggleIndex(0)
//	m.ToggleIndex(2)
//	moved := m.MoveSelectedToRight() // items 0 and 2, in index order
//
// # Invariants
//
// An item is a member of exactly one list at any time. [Manager.ReplaceAvailable]
// drops incoming items that are already selected so a reload never puts an
// item in both lists.
//
// # Ordering
//
// Items moved back to the available list are re-inserted at their position in
// the most recent catalogue (the order passed to [New] or
// [Manager.ReplaceAvailable]); items the catalogue does not know are appended.
//
// # Concurrency
//
// A Manager is not safe for concurrent use. Callers serialize access.
package partition
