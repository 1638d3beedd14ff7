// Package observability carries solver, cache and HTTP events from the
// library packages to whatever metrics backend the binary wires in.
//
// Library code never imports a backend. It calls the accessor for its
// event category and gets a no-op until something is installed:
//
//	observability.Solver().OnSolveStart(ctx, "maxflow", nodes, edges)
//	// ... run the algorithm ...
//	observability.Solver().OnSolveComplete(ctx, "maxflow", duration, err)
//
// "flownet serve" installs a [PrometheusHooks], which implements every
// category:
//
//	prom := observability.NewPrometheusHooks("flownet")
//	observability.Install(prom)
//	defer observability.Reset()
package observability

import (
	"context"
	"sync/atomic"
	"time"
)

// =============================================================================
// Solver Hooks
// =============================================================================

// SolverHooks receives events from the solve pipeline.
type SolverHooks interface {
	OnSolveStart(ctx context.Context, algorithm string, nodeCount, edgeCount int)
	OnSolveComplete(ctx context.Context, algorithm string, duration time.Duration, err error)
	OnRenderComplete(ctx context.Context, format string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives result cache lookups and writes in the pipeline.
// keyType is "solve" or "artifact"; size is the stored byte count.
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the API server. route is the matched
// route pattern, not the raw path, to keep label cardinality bounded.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)

	// OnError is called for responses with a 5xx status.
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSolverHooks discards solver events.
type NoopSolverHooks struct{}

func (NoopSolverHooks) OnSolveStart(context.Context, string, int, int)                 {}
func (NoopSolverHooks) OnSolveComplete(context.Context, string, time.Duration, error)  {}
func (NoopSolverHooks) OnRenderComplete(context.Context, string, time.Duration, error) {}

// NoopCacheHooks discards cache events.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks discards HTTP events.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// Hooks implements every event category.
type Hooks interface {
	SolverHooks
	CacheHooks
	HTTPHooks
}

// hookSet is replaced as a whole so readers never lock.
type hookSet struct {
	solver SolverHooks
	cache  CacheHooks
	http   HTTPHooks
}

var current atomic.Pointer[hookSet]

func init() { Reset() }

func update(fn func(*hookSet)) {
	for {
		old := current.Load()
		next := *old
		fn(&next)
		if current.CompareAndSwap(old, &next) {
			return
		}
	}
}

// Install registers h for all three categories.
func Install(h Hooks) {
	if h == nil {
		return
	}
	current.Store(&hookSet{solver: h, cache: h, http: h})
}

// SetSolverHooks registers solver hooks. Nil is ignored.
func SetSolverHooks(h SolverHooks) {
	if h != nil {
		update(func(s *hookSet) { s.solver = h })
	}
}

// SetCacheHooks registers cache hooks. Nil is ignored.
func SetCacheHooks(h CacheHooks) {
	if h != nil {
		update(func(s *hookSet) { s.cache = h })
	}
}

// SetHTTPHooks registers HTTP hooks. Nil is ignored.
func SetHTTPHooks(h HTTPHooks) {
	if h != nil {
		update(func(s *hookSet) { s.http = h })
	}
}

// Solver returns the registered solver hooks.
func Solver() SolverHooks { return current.Load().solver }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return current.Load().cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return current.Load().http }

// Reset restores the no-op hooks.
func Reset() {
	current.Store(&hookSet{
		solver: NoopSolverHooks{},
		cache:  NoopCacheHooks{},
		http:   NoopHTTPHooks{},
	})
}
