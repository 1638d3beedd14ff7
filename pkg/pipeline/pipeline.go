// Package pipeline runs solves and renders against graph documents with
// caching.
//
// The CLI and the HTTP API share this package so both entry points build
// graphs, key caches and report metrics the same way.
//
// # Architecture
//
// A run has two independent entry points:
//
//  1. Solve: build the network from a document and run MST or max-flow
//  2. Render: build the network, optionally overlay a solve, emit DOT or SVG
//
// Results are cached by the content hash of the document plus the options
// that change the output, so renaming a graph keeps its cache entries.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	res, err := runner.Solve(ctx, doc, pipeline.Options{
//	    Algorithm: graph.AlgorithmMaxFlow,
//	    Source:    1,
//	    Sink:      4,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Flow.Value)
//
//	svg, err := runner.Render(ctx, doc, pipeline.RenderOptions{Format: "svg", MST: true})
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/flownet/pkg/cache"
	ferrors "github.com/matzehuels/flownet/pkg/errors"
	"github.com/matzehuels/flownet/pkg/graph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

// DefaultRenderFormat is used when RenderOptions.Format is empty.
const DefaultRenderFormat = graph.FormatSVG

// Algorithms lists the supported algorithms in help-text order.
var Algorithms = []string{graph.AlgorithmMST, graph.AlgorithmMaxFlow}

// RenderFormats lists the supported render formats.
var RenderFormats = []string{graph.FormatSVG, graph.FormatDOT}

// =============================================================================
// Options - Solve Configuration
// =============================================================================

// Options configures a solve. It supports JSON for API requests.
type Options struct {
	Algorithm string `json:"algorithm"`

	// Root is the MST start node. Nil starts from the first node.
	Root *int `json:"root,omitempty"`

	// Source and Sink are the max-flow terminals.
	Source int `json:"source,omitempty"`
	Sink   int `json:"sink,omitempty"`

	// Refresh skips the cache lookup; the fresh result is still stored.
	Refresh bool `json:"refresh,omitempty"`
}

// Validate checks the algorithm name. Node IDs are checked by the solver,
// which knows the graph.
func (o *Options) Validate() error {
	return ferrors.ValidateAlgorithm(o.Algorithm, Algorithms...)
}

// SolveKeyOpts returns cache key options. Fields the algorithm ignores are
// left out so they cannot split the cache.
func (o *Options) SolveKeyOpts() cache.SolveKeyOpts {
	k := cache.SolveKeyOpts{Algorithm: o.Algorithm}
	switch o.Algorithm {
	case graph.AlgorithmMST:
		k.Root = o.Root
	case graph.AlgorithmMaxFlow:
		k.Source, k.Sink = o.Source, o.Sink
	}
	return k
}

// =============================================================================
// RenderOptions - Render Configuration
// =============================================================================

// RenderOptions configures a render.
type RenderOptions struct {
	// Format is "svg" or "dot". Empty uses DefaultRenderFormat.
	Format string `json:"format,omitempty"`

	// MST overlays the spanning tree grown from Root.
	MST  bool `json:"mst,omitempty"`
	Root *int `json:"root,omitempty"`

	// Flow overlays a maximum flow from Source to Sink.
	Flow   bool `json:"flow,omitempty"`
	Source int  `json:"source,omitempty"`
	Sink   int  `json:"sink,omitempty"`

	// Detailed adds node values to labels.
	Detailed bool `json:"detailed,omitempty"`

	Refresh bool `json:"refresh,omitempty"`
}

// Validate applies defaults and checks the format and overlay choice.
func (o *RenderOptions) Validate() error {
	if o.Format == "" {
		o.Format = DefaultRenderFormat
	}
	if err := ferrors.ValidateFormat(o.Format, RenderFormats...); err != nil {
		return err
	}
	if o.MST && o.Flow {
		return ferrors.New(ferrors.ErrCodeInvalidInput, "mst and flow overlays are mutually exclusive")
	}
	return nil
}

// ArtifactKeyOpts returns cache key options for the render.
func (o *RenderOptions) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: o.Format, Detailed: o.Detailed}
	if o.MST {
		k.MST, k.Root = true, o.Root
	}
	if o.Flow {
		k.Flow, k.Source, k.Sink = true, o.Source, o.Sink
	}
	return k
}

// =============================================================================
// Results
// =============================================================================

// Result is the outcome of a solve. Exactly one of MST and Flow is set.
type Result struct {
	Algorithm string            `json:"algorithm"`
	GraphHash string            `json:"graph_hash"`
	MST       *graph.MSTResult  `json:"mst,omitempty"`
	Flow      *graph.FlowResult `json:"flow,omitempty"`
	Stats     Stats             `json:"stats"`

	// CacheHit reports whether the result came from the cache.
	CacheHit bool `json:"cache_hit"`
}

// Stats contains solve statistics.
type Stats struct {
	NodeCount int           `json:"node_count"`
	EdgeCount int           `json:"edge_count"`
	SolveTime time.Duration `json:"solve_time"`
}

// String summarises the result for logs and the CLI.
func (r *Result) String() string {
	switch {
	case r.MST != nil:
		return fmt.Sprintf("mst: %d edges, total weight %g", len(r.MST.Edges), r.MST.TotalWeight)
	case r.Flow != nil:
		return fmt.Sprintf("maxflow %d→%d: %g", r.Flow.Source, r.Flow.Sink, r.Flow.Value)
	default:
		return r.Algorithm + ": no result"
	}
}
