package netgraph

import "container/heap"

// MSTEdge is one edge of a spanning tree, expressed in external IDs.
type MSTEdge struct {
	From   int
	To     int
	Weight float64
}

// MST computes a minimum spanning tree with Prim's algorithm, starting from
// the first inserted node and following outgoing edges only.
//
// The result spans exactly the nodes reachable from the start node, so for N
// reachable nodes it holds N-1 edges, in the order they joined the tree.
// An empty or single-node graph yields an empty slice. Among equal-weight
// frontier edges the earliest pushed one wins; callers should not depend on
// which of several minimum-weight edges is chosen.
//
// Complexity: O(E log E) time, O(V + E) memory.
func (g *Graph) MST() []MSTEdge {
	if len(g.nodes) == 0 {
		return []MSTEdge{}
	}
	return g.prim(0)
}

// MSTFrom is MST grown from the node registered under root instead of the
// first inserted node. Returns a *LookupError if root is unregistered.
func (g *Graph) MSTFrom(root int) ([]MSTEdge, error) {
	h, ok := g.index[root]
	if !ok {
		return nil, &LookupError{ID: root}
	}
	return g.prim(h), nil
}

// TotalWeight sums the weights of a spanning tree.
func TotalWeight(tree []MSTEdge) float64 {
	var total float64
	for _, e := range tree {
		total += e.Weight
	}
	return total
}

func (g *Graph) prim(start Handle) []MSTEdge {
	tree := make([]MSTEdge, 0, len(g.nodes)-1)
	visited := make([]bool, len(g.nodes))
	pq := &frontier{}

	visited[start] = true
	g.pushFrontier(pq, start, visited)

	for pq.Len() > 0 {
		c := heap.Pop(pq).(candidate)
		a := g.arcs[c.arc]
		if visited[a.to] {
			continue // stale: endpoint joined through a cheaper edge
		}
		visited[a.to] = true
		tree = append(tree, MSTEdge{
			From:   g.nodes[a.from].ID,
			To:     g.nodes[a.to].ID,
			Weight: a.capacity,
		})
		g.pushFrontier(pq, a.to, visited)
	}
	return tree
}

// pushFrontier pushes every outgoing edge of h whose far endpoint is unvisited.
func (g *Graph) pushFrontier(pq *frontier, h Handle, visited []bool) {
	for _, ai := range g.out[h] {
		a := g.arcs[ai]
		if visited[a.to] {
			continue
		}
		heap.Push(pq, candidate{arc: ai, weight: a.capacity, seq: pq.pushed})
		pq.pushed++
	}
}

// candidate is a frontier entry; seq orders equal weights by push time.
type candidate struct {
	arc    int
	weight float64
	seq    int
}

// frontier is a min-heap of candidate edges ordered by weight.
type frontier struct {
	items  []candidate
	pushed int
}

func (f *frontier) Len() int { return len(f.items) }

func (f *frontier) Less(i, j int) bool {
	if f.items[i].weight != f.items[j].weight {
		return f.items[i].weight < f.items[j].weight
	}
	return f.items[i].seq < f.items[j].seq
}

func (f *frontier) Swap(i, j int) { f.items[i], f.items[j] = f.items[j], f.items[i] }

func (f *frontier) Push(x any) { f.items = append(f.items, x.(candidate)) }

func (f *frontier) Pop() any {
	old := f.items
	n := len(old)
	c := old[n-1]
	f.items = old[:n-1]
	return c
}
