// Package integrations provides HTTP clients for remote item sources.
//
// # Overview
//
// The [Client] type holds the shared HTTP plumbing: a request timeout,
// default headers, status classification and response caching through
// [cache.Cache]. Source-specific clients live in subpackages:
//
//   - [rutas]: procedure-route templates with a fallback chain
//
// # Client Pattern
//
//	client := rutas.NewClient(rutas.Config{URLs: urls}, backend)
//	res, err := client.Fetch(ctx)  // cached
//	res, err = client.Reload(ctx)  // primary only, bypasses cache
//
// Errors are classified as [ErrNotFound], [ErrNetwork] or [ErrDecode].
// Context cancellation is returned unwrapped so callers can tell an
// abandoned request from a failed one.
package integrations
