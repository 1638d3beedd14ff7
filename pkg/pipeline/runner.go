package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/graph"
	"github.com/matzehuels/flownet/pkg/netgraph"
	"github.com/matzehuels/flownet/pkg/observability"
)

// Runner encapsulates solve and render execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store results. Multiple goroutines can safely use the same Runner.
// Identical concurrent solves share one computation.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	group singleflight.Group
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Solve runs opts.Algorithm on doc. Returns an error wrapping the
// netgraph, expr or graph error when the document cannot be built or a
// node ID is unknown.
func (r *Runner) Solve(ctx context.Context, doc graph.Document, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	hash := doc.Hash()
	key := r.Keyer.SolveKey(hash, opts.SolveKeyOpts())

	if !opts.Refresh {
		if res, ok := r.cachedResult(ctx, key); ok {
			r.Logger.Debug("solve cache hit", "algorithm", opts.Algorithm, "graph", shortHash(hash))
			return res, nil
		}
	}

	v, err, shared := r.group.Do(key, func() (any, error) {
		return r.solve(ctx, doc, hash, key, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.Logger.Debug("joined in-flight solve", "algorithm", opts.Algorithm, "graph", shortHash(hash))
	}

	// Callers sharing a computation get their own Result header; the
	// MST and Flow payloads are read-only.
	res := *v.(*Result)
	return &res, nil
}

func (r *Runner) cachedResult(ctx context.Context, key string) (*Result, bool) {
	hooks := observability.Cache()

	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Warn("cache read failed", "err", err)
	}
	if err != nil || !hit {
		hooks.OnCacheMiss(ctx, "solve")
		return nil, false
	}

	var res Result
	if err := json.Unmarshal(data, &res); err != nil {
		// Corrupt entries are recomputed and overwritten.
		hooks.OnCacheMiss(ctx, "solve")
		return nil, false
	}
	hooks.OnCacheHit(ctx, "solve")
	res.CacheHit = true
	return &res, true
}

func (r *Runner) solve(ctx context.Context, doc graph.Document, hash, key string, opts Options) (*Result, error) {
	g, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	hooks := observability.Solver()
	hooks.OnSolveStart(ctx, opts.Algorithm, g.NodeCount(), g.EdgeCount())
	start := time.Now()

	res := &Result{Algorithm: opts.Algorithm, GraphHash: hash}
	switch opts.Algorithm {
	case graph.AlgorithmMST:
		res.MST, err = runMST(g, opts.Root)
	case graph.AlgorithmMaxFlow:
		res.Flow, err = runMaxFlow(g, opts.Source, opts.Sink)
	}

	elapsed := time.Since(start)
	hooks.OnSolveComplete(ctx, opts.Algorithm, elapsed, err)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opts.Algorithm, err)
	}

	res.Stats = Stats{
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		SolveTime: elapsed,
	}
	r.Logger.Info("solved",
		"algorithm", opts.Algorithm,
		"nodes", res.Stats.NodeCount,
		"edges", res.Stats.EdgeCount,
		"duration", elapsed)

	r.store(ctx, "solve", key, res, cache.TTLResult)
	return res, nil
}

func runMST(g *netgraph.Graph, root *int) (*graph.MSTResult, error) {
	if root != nil {
		tree, err := g.MSTFrom(*root)
		if err != nil {
			return nil, err
		}
		res := graph.NewMSTResult(*root, tree)
		return &res, nil
	}

	start := 0
	if nodes := g.Nodes(); len(nodes) > 0 {
		start = nodes[0].ID
	}
	res := graph.NewMSTResult(start, g.MST())
	return &res, nil
}

func runMaxFlow(g *netgraph.Graph, source, sink int) (*graph.FlowResult, error) {
	value, err := g.MaxFlow(source, sink)
	if err != nil {
		return nil, err
	}
	res := graph.NewFlowResult(g, source, sink, value)
	return &res, nil
}

// store writes v to the cache. Failures are logged, never returned:
// a result that cannot be cached is still a result.
func (r *Runner) store(ctx context.Context, keyType, key string, v any, ttl time.Duration) {
	var data []byte
	switch v := v.(type) {
	case []byte:
		data = v
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			r.Logger.Warn("encode cache entry", "type", keyType, "err", err)
			return
		}
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
