// Package editor composes the item partition and the flow engine into one
// route editor, the unit a session or terminal UI drives.
//
// An [Editor] owns a [partition.Manager], an in-memory [scene.Memory] and a
// [flow.Engine] bound to it. Every mutation runs under the editor's mutex,
// so the engine's single-writer rule holds even when HTTP handlers call in
// concurrently. Moving items to the left prunes their edges before the
// scene is reconciled.
//
// # Loading
//
// [Editor.Load] and [Editor.Reload] fetch items from a [Source] outside the
// lock. Loads are serialized by cancellation: starting a load cancels the
// one in flight, and a result that arrives after a newer load started is
// discarded with [ErrSuperseded].
package editor
