// Package pkg provides the core libraries for flownet.
//
// # Overview
//
// Flownet holds weighted graphs in an arena of nodes and directed edges,
// computes minimum spanning trees and maximum flows over them, and serves
// both through a CLI and an HTTP API. The pkg directory is organized into
// four areas:
//
//  1. Algorithms: [netgraph] (arena, Prim, Edmonds-Karp) and [expr]
//     (capacity expressions)
//  2. Documents: [graph] (serializable graphs and results) and [io]
//     (JSON, TOML and YAML files)
//  3. Orchestration: [pipeline] (cached solves and renders) and [render]
//     (Graphviz DOT and SVG)
//  4. Infrastructure: [cache], [storage], [lifecycle], [observability],
//     [errors] and [server]
//
// # Architecture
//
// The typical data flow:
//
//	graph file / API request
//	         ↓
//	    [io] / [graph] (decode, evaluate capacity expressions)
//	         ↓
//	    [netgraph] (build arena, run MST or max-flow)
//	         ↓
//	    [graph] results, [render] DOT/SVG
//
// [pipeline] wraps the middle steps with content-addressed caching so the
// CLI and the server behave the same way.
//
// # Quick Start
//
//	doc, _ := io.ImportFile("network.toml")
//	g, _ := doc.Build()
//	value, _ := g.MaxFlow(1, 6)
//	tree := g.MST()
//	fmt.Println(value, netgraph.TotalWeight(tree))
//
// # Testing
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/netgraph/...  # Specific package
//	go test -run Example ./...  # Examples only
//
// [netgraph]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/netgraph
// [expr]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/expr
// [graph]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/graph
// [io]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/cache
// [storage]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/storage
// [lifecycle]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/lifecycle
// [observability]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/errors
// [server]: https://pkg.go.dev/github.com/matzehuels/flownet/pkg/server
package pkg
