// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends. Consumers register
// hooks at startup to receive events about harvest runs, cache
// operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach avoids import cycles (hooks are registered by main, not
// by libraries) and keeps the core library free of observability
// framework dependencies.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetHarvestHooks(&myHarvestHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Harvest().OnListPage(ctx, project, pageLen, total)
package observability

import (
	"context"
	"sync"
	"time"
)

// HarvestHooks receives events from the harvest pipeline.
type HarvestHooks interface {
	// OnListPage records one page of the tree listing.
	OnListPage(ctx context.Context, project string, pageLen, total int)

	// OnBatchFetch records one content batch retrieval.
	OnBatchFetch(ctx context.Context, project string, requested, returned int, err error)

	// OnFileParsed records one manifest file's extraction outcome.
	OnFileParsed(ctx context.Context, path, language string, names int, err error)

	// OnRunComplete records the end of a harvest run.
	OnRunComplete(ctx context.Context, project string, languages, names int, duration time.Duration, err error)
}

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, host, path string)
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, host, path string, err error)
}

// NoopHarvestHooks is a no-op implementation of HarvestHooks.
type NoopHarvestHooks struct{}

func (NoopHarvestHooks) OnListPage(context.Context, string, int, int)                 {}
func (NoopHarvestHooks) OnBatchFetch(context.Context, string, int, int, error)        {}
func (NoopHarvestHooks) OnFileParsed(context.Context, string, string, int, error)     {}
func (NoopHarvestHooks) OnRunComplete(context.Context, string, int, int, time.Duration, error) {
}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

var (
	harvestHooks HarvestHooks = NoopHarvestHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	httpHooks    HTTPHooks    = NoopHTTPHooks{}
	hooksMu      sync.RWMutex
)

// SetHarvestHooks registers custom harvest hooks.
// This should be called once at application startup.
func SetHarvestHooks(h HarvestHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		harvestHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Harvest returns the registered harvest hooks.
func Harvest() HarvestHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return harvestHooks
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
	harvestHooks = NoopHarvestHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
