// Package netgraph provides a weighted, directed graph engine with two classic
// algorithms: Prim's minimum spanning tree and Edmonds-Karp maximum flow.
//
// # Overview
//
// A [Graph] stores nodes and edges in dense arenas. Callers identify nodes by
// their own integer IDs; the graph keeps an identifier index that maps each
// external ID to the arena [Handle] issued when the node was inserted. Handles
// are plain indexes, so the graph never exposes internal pointers.
//
// # Basic Usage
//
// Build a graph by inserting nodes first and edges second:
//
//	g := netgraph.New()
//	_, _ = g.AddNode(1, 0, 0, 0)
//	_, _ = g.AddNode(2, 0, 1, 0)
//	if err := g.AddEdge(1, 2, 3.5); err != nil {
//	    // unknown endpoint or invalid capacity
//	}
//
// Then run either algorithm as an independent pass over the graph:
//
//	tree := g.MST()
//	value, err := g.MaxFlow(1, 2)
//
// # Directedness
//
// Storage is directed only. An "undirected" edge is modelled by the caller
// inserting both directions with the same capacity. Both algorithms follow
// outgoing edges only and never infer a reverse traversal.
//
// # Minimum Spanning Tree
//
// [Graph.MST] runs Prim's algorithm from the first inserted node. It spans
// the subgraph reachable through outgoing edges from that node, which is the
// whole graph only when edges were inserted symmetrically and the graph is
// connected. Edge capacity is the weight. When several frontier edges share
// the minimum weight any of them may be chosen.
//
// # Maximum Flow
//
// [Graph.MaxFlow] runs Edmonds-Karp: breadth-first search for the shortest
// augmenting path over edges with positive residual capacity, then pushes the
// bottleneck amount along it. Flow is recorded on the edges themselves and
// only ever increases.
//
// The solver does not create reverse residual edges, so it never cancels flow
// that an earlier augmentation assigned. On networks where the optimum needs
// such cancellation the returned value is a lower bound of the true maximum
// flow. Call [Graph.ResetFlow] before re-running on the same graph.
//
// # Errors
//
// Referencing an unregistered node ID returns a [*LookupError]
// (errors.Is(err, ErrNodeNotFound)). Inserting a duplicate node ID or an edge
// with a negative, NaN or infinite capacity returns a [*ValidationError].
// Failed insertions leave the graph unchanged. Empty graphs, single nodes,
// disconnected components and zero-capacity edges are not errors.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use and carry no locks.
// [Graph.MaxFlow] mutates edge flow in place, so callers must hold an
// exclusive lock around it; [Graph.MST] and the read accessors may share a
// read lock with each other but never with MaxFlow or the insert methods.
package netgraph
