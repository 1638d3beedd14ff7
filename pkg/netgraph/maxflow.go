package netgraph

import (
	"math"
	"slices"
)

// MaxFlow pushes the maximum flow it can find from source to sink using the
// Edmonds-Karp algorithm and returns the total value pushed.
//
// Each round runs a breadth-first search over edges with positive residual
// capacity (capacity - flow > 0), stopping as soon as sink is reached. The
// bottleneck of that shortest path is added to the flow of every edge on it.
// Rounds repeat until no augmenting path remains. Afterwards every edge
// satisfies 0 <= Flow <= Capacity and flow is conserved at every node other
// than source and sink.
//
// Only edges present in the graph carry flow: no reverse residual edges are
// created, so flow is never cancelled. The result is exact for networks whose
// optimum needs no cancellation and a lower bound otherwise. Flow accumulates
// across calls; use ResetFlow to start from zero.
//
// Returns a *LookupError if source or sink is unregistered. When sink is
// unreachable, or source == sink, it returns 0 and leaves all flows as they
// were.
//
// Complexity: O(V · E²) time, O(V) memory per search.
func (g *Graph) MaxFlow(source, sink int) (float64, error) {
	s, ok := g.index[source]
	if !ok {
		return 0, &LookupError{ID: source}
	}
	t, ok := g.index[sink]
	if !ok {
		return 0, &LookupError{ID: sink}
	}
	if s == t {
		return 0, nil
	}

	var total float64
	for {
		path := g.augmentingPath(s, t)
		if len(path) == 0 {
			break
		}

		bottleneck := math.Inf(1)
		for _, ai := range path {
			bottleneck = math.Min(bottleneck, g.arcs[ai].capacity-g.arcs[ai].flow)
		}
		for _, ai := range path {
			a := &g.arcs[ai]
			// Clamp against float rounding so flow never exceeds capacity.
			a.flow = math.Min(a.capacity, a.flow+bottleneck)
		}
		total += bottleneck
	}
	return total, nil
}

// augmentingPath returns the arcs of a fewest-hop path s→t with positive
// residual capacity on every arc, ordered from s to t, or nil if none exists.
func (g *Graph) augmentingPath(s, t Handle) []int {
	// via[v] is the arc that first reached v; -1 means unreached.
	via := make([]int, len(g.nodes))
	for i := range via {
		via[i] = -1
	}
	visited := make([]bool, len(g.nodes))
	visited[s] = true

	queue := []Handle{s}
	for len(queue) > 0 && !visited[t] {
		u := queue[0]
		queue = queue[1:]
		for _, ai := range g.out[u] {
			a := g.arcs[ai]
			if visited[a.to] || a.capacity-a.flow <= 0 {
				continue
			}
			visited[a.to] = true
			via[a.to] = ai
			if a.to == t {
				break
			}
			queue = append(queue, a.to)
		}
	}
	if !visited[t] {
		return nil
	}

	var path []int
	for v := t; v != s; v = g.arcs[via[v]].from {
		path = append(path, via[v])
	}
	slices.Reverse(path)
	return path
}
