package netgraph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flowScenario builds 1→2(3), 1→3(2), 2→4(2), 3→4(3); max flow 1→4 is 4.
func flowScenario(t *testing.T) *Graph {
	t.Helper()
	g := New()
	for _, id := range []int{1, 2, 3, 4} {
		_, err := g.AddNode(id, 0, 0, 0)
		require.NoError(t, err)
	}
	require.NoError(t, g.AddEdge(1, 2, 3))
	require.NoError(t, g.AddEdge(1, 3, 2))
	require.NoError(t, g.AddEdge(2, 4, 2))
	require.NoError(t, g.AddEdge(3, 4, 3))
	return g
}

// referenceMaxFlow is a textbook Edmonds-Karp with reverse residuals over a
// capacity matrix. It gives the true optimum for small graphs.
func referenceMaxFlow(g *Graph, source, sink int) float64 {
	n := g.NodeCount()
	res := make([][]float64, n)
	for i := range res {
		res[i] = make([]float64, n)
	}
	for _, e := range g.Edges() {
		u, _ := g.Handle(e.From)
		v, _ := g.Handle(e.To)
		if u != v {
			res[u][v] += e.Capacity
		}
	}
	s, _ := g.Handle(source)
	t, _ := g.Handle(sink)

	var total float64
	for {
		prev := make([]int, n)
		for i := range prev {
			prev[i] = -1
		}
		prev[s] = int(s)
		queue := []int{int(s)}
		for len(queue) > 0 && prev[t] == -1 {
			u := queue[0]
			queue = queue[1:]
			for v := 0; v < n; v++ {
				if prev[v] == -1 && res[u][v] > 0 {
					prev[v] = u
					queue = append(queue, v)
				}
			}
		}
		if prev[t] == -1 {
			return total
		}
		b := -1.0
		for v := int(t); v != int(s); v = prev[v] {
			if b < 0 || res[prev[v]][v] < b {
				b = res[prev[v]][v]
			}
		}
		for v := int(t); v != int(s); v = prev[v] {
			res[prev[v]][v] -= b
			res[v][prev[v]] += b
		}
		total += b
	}
}

// assertValidFlow checks capacity bounds and conservation at every node
// other than source and sink, and that value leaves source and reaches sink.
func assertValidFlow(t *testing.T, g *Graph, source, sink int, value float64) {
	t.Helper()
	net := make(map[int]float64)
	for _, e := range g.Edges() {
		assert.GreaterOrEqual(t, e.Flow, 0.0, "edge %d→%d", e.From, e.To)
		assert.LessOrEqual(t, e.Flow, e.Capacity, "edge %d→%d", e.From, e.To)
		net[e.From] -= e.Flow
		net[e.To] += e.Flow
	}
	for _, n := range g.Nodes() {
		switch n.ID {
		case source:
			assert.InDelta(t, -value, net[n.ID], 1e-9, "source outflow")
		case sink:
			assert.InDelta(t, value, net[n.ID], 1e-9, "sink inflow")
		default:
			assert.InDelta(t, 0, net[n.ID], 1e-9, "conservation at node %d", n.ID)
		}
	}
}

func TestMaxFlowScenario(t *testing.T) {
	g := flowScenario(t)

	v, err := g.MaxFlow(1, 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, v)
	assertValidFlow(t, g, 1, 4, v)

	assert.Equal(t, []Edge{
		{From: 1, To: 2, Capacity: 3, Flow: 2},
		{From: 1, To: 3, Capacity: 2, Flow: 2},
		{From: 2, To: 4, Capacity: 2, Flow: 2},
		{From: 3, To: 4, Capacity: 3, Flow: 2},
	}, g.Edges())
}

func TestMaxFlowUnknownEndpoints(t *testing.T) {
	g := flowScenario(t)

	_, err := g.MaxFlow(9, 4)
	var lerr *LookupError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, 9, lerr.ID)

	_, err = g.MaxFlow(1, 9)
	assert.ErrorIs(t, err, ErrNodeNotFound)

	for _, e := range g.Edges() {
		assert.Zero(t, e.Flow)
	}
}

func TestMaxFlowSourceEqualsSink(t *testing.T) {
	g := flowScenario(t)
	v, err := g.MaxFlow(2, 2)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestMaxFlowDisconnected(t *testing.T) {
	g := flowScenario(t)
	_, _ = g.AddNode(5, 0, 0, 0)
	before := g.Edges()

	v, err := g.MaxFlow(1, 5)
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.Equal(t, before, g.Edges(), "no flow may change")

	// edges point away from 1, so 4→1 is unreachable too
	v, err = g.MaxFlow(4, 1)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestMaxFlowZeroCapacityNeverTraversed(t *testing.T) {
	g := New()
	for _, id := range []int{1, 2, 3} {
		_, _ = g.AddNode(id, 0, 0, 0)
	}
	require.NoError(t, g.AddEdge(1, 2, 0))
	require.NoError(t, g.AddEdge(2, 3, 5))

	v, err := g.MaxFlow(1, 3)
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestMaxFlowParallelEdges(t *testing.T) {
	g := New()
	_, _ = g.AddNode(1, 0, 0, 0)
	_, _ = g.AddNode(2, 0, 0, 0)
	require.NoError(t, g.AddEdge(1, 2, 1))
	require.NoError(t, g.AddEdge(1, 2, 2))
	require.NoError(t, g.AddEdge(1, 1, 7))

	v, err := g.MaxFlow(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3.0, v)

	edges := g.Edges()
	assert.Equal(t, 1.0, edges[0].Flow)
	assert.Equal(t, 2.0, edges[1].Flow)
	assert.Zero(t, edges[2].Flow, "self-loop carries no flow")
}

func TestMaxFlowWithoutCancellationIsLowerBound(t *testing.T) {
	// The first shortest path 1→2→4→6 uses 2→4 and blocks both
	// 1→2→3→6 and 1→5→4→6, which together carry 2.
	g := New()
	for _, id := range []int{1, 2, 3, 4, 5, 6} {
		_, _ = g.AddNode(id, 0, 0, 0)
	}
	require.NoError(t, g.AddEdge(1, 2, 1))
	require.NoError(t, g.AddEdge(1, 5, 1))
	require.NoError(t, g.AddEdge(2, 4, 1))
	require.NoError(t, g.AddEdge(2, 3, 1))
	require.NoError(t, g.AddEdge(5, 4, 1))
	require.NoError(t, g.AddEdge(4, 6, 1))
	require.NoError(t, g.AddEdge(3, 6, 1))

	assert.Equal(t, 2.0, referenceMaxFlow(g, 1, 6))

	v, err := g.MaxFlow(1, 6)
	require.NoError(t, err)
	assert.Equal(t, 1.0, v)
	assertValidFlow(t, g, 1, 6, v)
}

func TestMaxFlowRandomProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for trial := 0; trial < 40; trial++ {
		n := 2 + r.Intn(10)
		g := New()
		for i := 0; i < n; i++ {
			_, err := g.AddNode(100+i, 0, 0, 0)
			require.NoError(t, err)
		}
		var sourceOut float64
		for k := 0; k < 3*n; k++ {
			u, v := 100+r.Intn(n), 100+r.Intn(n)
			c := float64(r.Intn(10))
			require.NoError(t, g.AddEdge(u, v, c))
			if u == 100 && v != 100 {
				sourceOut += c
			}
		}
		sink := 100 + n - 1

		value, err := g.MaxFlow(100, sink)
		require.NoError(t, err)

		assert.GreaterOrEqual(t, value, 0.0)
		assert.LessOrEqual(t, value, sourceOut, "trial %d: bounded by source out-capacity", trial)
		assert.LessOrEqual(t, value, referenceMaxFlow(g, 100, sink)+1e-9, "trial %d: never above the optimum", trial)
		assertValidFlow(t, g, 100, sink, value)
	}
}
