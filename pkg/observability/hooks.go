// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries call the registered hooks; main registers concrete
// implementations (for example the prometheus hooks in internal/server) at
// startup. Defaults are no-ops, so packages stay free of observability
// frameworks.
//
//	observability.SetEditorHooks(metrics)
//	observability.Editor().OnMove(direction, len(moved))
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from route editors.
type EditorHooks interface {
	// OnMove records items moved between the available and selected lists.
	OnMove(direction string, count int)

	// OnEdgesChanged records edges created or deleted, with the reason.
	OnEdgesChanged(reason string, created, deleted int)

	// OnReconcile records a scene reconciliation.
	OnReconcile(nodes, edges int, duration time.Duration)
}

// =============================================================================
// Source Hooks
// =============================================================================

// SourceHooks receives events from the item source client.
type SourceHooks interface {
	// OnFetch records one candidate attempt.
	OnFetch(ctx context.Context, url string, duration time.Duration, err error)

	// OnFallback records that every candidate failed and the placeholder
	// list was used.
	OnFallback(ctx context.Context)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnResponse records a served request.
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnMove(string, int)                  {}
func (NoopEditorHooks) OnEdgesChanged(string, int, int)     {}
func (NoopEditorHooks) OnReconcile(int, int, time.Duration) {}

// NoopSourceHooks is a no-op implementation of SourceHooks.
type NoopSourceHooks struct{}

func (NoopSourceHooks) OnFetch(context.Context, string, time.Duration, error) {}
func (NoopSourceHooks) OnFallback(context.Context)                            {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editorHooks EditorHooks = NoopEditorHooks{}
	sourceHooks SourceHooks = NoopSourceHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	httpHooks   HTTPHooks   = NoopHTTPHooks{}
	hooksMu     sync.RWMutex
)

// SetEditorHooks registers custom editor hooks. Nil is ignored.
func SetEditorHooks(h EditorHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editorHooks = h
	}
}

// SetSourceHooks registers custom source hooks. Nil is ignored.
func SetSourceHooks(h SourceHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		sourceHooks = h
	}
}

// SetCacheHooks registers custom cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Editor returns the registered editor hooks.
func Editor() EditorHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editorHooks
}

// Source returns the registered source hooks.
func Source() SourceHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return sourceHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editorHooks = NoopEditorHooks{}
	sourceHooks = NoopSourceHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
