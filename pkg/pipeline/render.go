package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/flownet/pkg/cache"
	"github.com/matzehuels/flownet/pkg/graph"
	"github.com/matzehuels/flownet/pkg/observability"
	"github.com/matzehuels/flownet/pkg/render"
)

// RenderWithCacheInfo draws doc in opts.Format and reports whether the
// artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, doc graph.Document, opts RenderOptions) ([]byte, bool, error) {
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	key := r.Keyer.ArtifactKey(doc.Hash(), opts.ArtifactKeyOpts())
	if !opts.Refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		}
		if err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	data, err := r.render(ctx, doc, opts)
	elapsed := time.Since(start)
	observability.Solver().OnRenderComplete(ctx, opts.Format, elapsed, err)
	if err != nil {
		return nil, false, err
	}

	r.Logger.Info("rendered", "format", opts.Format, "bytes", len(data), "duration", elapsed)
	r.store(ctx, "artifact", key, data, cache.TTLArtifact)
	return data, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, doc graph.Document, opts RenderOptions) ([]byte, error) {
	data, _, err := r.RenderWithCacheInfo(ctx, doc, opts)
	return data, err
}

func (r *Runner) render(ctx context.Context, doc graph.Document, opts RenderOptions) ([]byte, error) {
	g, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	ropts := render.Options{
		Detailed:   opts.Detailed,
		Undirected: hasUndirected(doc),
	}

	switch {
	case opts.MST:
		// Goes through Solve so the tree is cached and counted like any other solve.
		res, err := r.Solve(ctx, doc, Options{Algorithm: graph.AlgorithmMST, Root: opts.Root, Refresh: opts.Refresh})
		if err != nil {
			return nil, err
		}
		ropts.MST = res.MST.Edges
	case opts.Flow:
		// The overlay needs per-edge flow on this graph, which a cached
		// FlowResult cannot restore when parallel edges exist.
		if _, err := g.MaxFlow(opts.Source, opts.Sink); err != nil {
			return nil, fmt.Errorf("%s: %w", graph.AlgorithmMaxFlow, err)
		}
		ropts.ShowFlow = true
	}

	dot := render.ToDOT(g, ropts)
	if opts.Format == graph.FormatDOT {
		return []byte(dot), nil
	}
	svg, err := render.RenderSVG(ctx, dot)
	if err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return svg, nil
}

func hasUndirected(doc graph.Document) bool {
	for _, e := range doc.Edges {
		if e.Undirected {
			return true
		}
	}
	return false
}
