// Package graph provides serialization types for weighted graphs and the
// results computed on them.
//
// This package defines the canonical wire format used for graph files, API
// requests and responses, saved graphs and cache keys. It sits between the
// outside world and the in-memory engine in pkg/netgraph:
//
//   - [Document]: nodes, edges and named variables (this package)
//   - netgraph.Graph: arena-backed graph the algorithms run on
//
// Use [Document.Build] and [FromNetwork] to convert between them.
//
// # Document Format
//
//	{
//	  "name": "city-pipes",
//	  "vars": {"main": 10},
//	  "nodes": [{"id": 1, "x": 0, "y": 0}, {"id": 2, "x": 3, "y": 1}],
//	  "edges": [
//	    {"from": 1, "to": 2, "capacity_expr": "main / 2"},
//	    {"from": 2, "to": 1, "capacity": 3, "undirected": true}
//	  ]
//	}
//
// Node IDs are integers chosen by the author and must be unique. Edge
// capacity is a non-negative number, either literal or computed from vars
// with pkg/expr. The same struct tags serve JSON, BSON, TOML and YAML.
//
// # Results
//
// [MSTResult] and [FlowResult] are the serialized outcomes of the two
// algorithms, built with [NewMSTResult] and [NewFlowResult].
//
// # Hashing
//
// [Document.Hash] is a content hash used for cache keys; it ignores the
// document name.
package graph
