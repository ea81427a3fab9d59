// Package rutas fetches procedure-route templates from the route service.
//
// A template names the route (nombreRuta) and carries the graph whose
// node names become the editor's available items. Candidate URLs are
// tried in order; any non-2xx status or transport error advances to the
// next one. When every candidate fails, [Client.Fetch] returns the
// built-in placeholder list and sets [Result.Err] so the UI can show a
// banner with a retry affordance. Failures are never returned as errors;
// only context cancellation is.
//
// Each candidate sits behind its own circuit breaker. A candidate whose
// breaker is open is skipped immediately and counts as a failure.
package rutas
