// Package flow keeps a directed edge set over the selected items and makes a
// rendered [scene.Renderer] match it.
//
// # Nodes and Edges
//
// The node set is always {INICIO, FIN} plus every selected item. An edge is
// an ordered (source, target) pair of node IDs with these invariants:
//
//   - source != target
//   - at most one edge per ordered pair
//   - FIN is never a source
//   - both endpoints are in the node set
//
// Rendered edges use the composite id "<source>-<target>" (see [Edge.ID]).
//
// # Connection Protocol
//
// Edges are authored with two taps. Tapping a node other than FIN while idle
// makes it the pending source, marks it [ClassSource], and marks every node it
// could still connect to [ClassTarget]. Tapping a marked target with the
// modifier held creates the edge. Tapping the source again or the background
// cancels. A plain tap on a target only previews. Double-clicking a rendered
// edge deletes it.
//
// # Reconciliation
//
// [Engine.Reconcile] runs whenever the selected list changes. It diffs the
// scene's nodes against the target node set, keeps the on-screen position of
// surviving nodes, restores remembered positions for returning nodes, places
// new nodes on a default row, and re-adds any logical edge the renderer is
// missing. It never removes a rendered edge; edges go away only through
// [Engine.DeleteEdge], [Engine.Prune], and [Engine.ClearEdges].
//
// # Concurrency
//
// An Engine is not safe for concurrent use. It registers its handlers on the
// renderer once, in [New], and they run on the caller's goroutine.
package flow
