package netgraph

import (
	"math"
	"slices"
)

// Handle is the arena index the graph assigns to a node on insertion.
// Handles are dense, start at zero and follow insertion order.
type Handle int

// Node is a vertex identified by a caller-assigned ID. Value is an opaque
// payload and X, Y a 2D position; neither is read by the algorithms.
type Node struct {
	ID    int
	Value float64
	X, Y  float64
}

// Edge is a directed connection carrying a fixed capacity and the flow
// assigned by the max-flow solver.
type Edge struct {
	From     int
	To       int
	Capacity float64
	Flow     float64
}

// Residual returns the capacity still available on the edge.
func (e Edge) Residual() float64 { return e.Capacity - e.Flow }

// arc is the arena form of an edge, with endpoints stored as handles.
type arc struct {
	from, to Handle
	capacity float64
	flow     float64
}

// Graph is a directed, weighted graph stored in arenas.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes []Node
	arcs  []arc
	out   [][]int // node handle -> indexes into arcs, insertion order
	index map[int]Handle
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{index: make(map[int]Handle)}
}

// AddNode registers a node and returns its handle.
// Returns a *ValidationError wrapping ErrDuplicateNode if id is already
// registered; the existing node and its edges are kept as they were.
func (g *Graph) AddNode(id int, value, x, y float64) (Handle, error) {
	if _, exists := g.index[id]; exists {
		return 0, &ValidationError{Field: "node", Value: id, Err: ErrDuplicateNode}
	}
	h := Handle(len(g.nodes))
	g.nodes = append(g.nodes, Node{ID: id, Value: value, X: x, Y: y})
	g.out = append(g.out, nil)
	g.index[id] = h
	return h, nil
}

// AddEdge adds a directed edge from→to with zero flow.
// Returns a *LookupError if either endpoint is unregistered, or a
// *ValidationError wrapping ErrInvalidCapacity if capacity is negative,
// NaN or infinite. Parallel edges and self-loops are accepted.
func (g *Graph) AddEdge(from, to int, capacity float64) error {
	u, ok := g.index[from]
	if !ok {
		return &LookupError{ID: from}
	}
	v, ok := g.index[to]
	if !ok {
		return &LookupError{ID: to}
	}
	if capacity < 0 || math.IsNaN(capacity) || math.IsInf(capacity, 0) {
		return &ValidationError{Field: "capacity", Value: capacity, Err: ErrInvalidCapacity}
	}
	g.out[u] = append(g.out[u], len(g.arcs))
	g.arcs = append(g.arcs, arc{from: u, to: v, capacity: capacity})
	return nil
}

// Handle returns the arena handle for an external ID.
func (g *Graph) Handle(id int) (Handle, bool) {
	h, ok := g.index[id]
	return h, ok
}

// Node returns the node registered under id.
func (g *Graph) Node(id int) (Node, bool) {
	h, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[h], true
}

// Nodes returns a copy of all nodes in insertion order.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Edges returns a copy of all edges in insertion order, with their current flow.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.arcs))
	for i := range g.arcs {
		edges[i] = g.edge(i)
	}
	return edges
}

// OutEdges returns the outgoing edges of id in insertion order.
func (g *Graph) OutEdges(id int) ([]Edge, error) {
	h, ok := g.index[id]
	if !ok {
		return nil, &LookupError{ID: id}
	}
	edges := make([]Edge, len(g.out[h]))
	for i, ai := range g.out[h] {
		edges[i] = g.edge(ai)
	}
	return edges, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return len(g.arcs) }

// ResetFlow sets the flow of every edge back to zero.
func (g *Graph) ResetFlow() {
	for i := range g.arcs {
		g.arcs[i].flow = 0
	}
}

// Clone returns a deep copy that shares no storage with g.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes: slices.Clone(g.nodes),
		arcs:  slices.Clone(g.arcs),
		out:   make([][]int, len(g.out)),
		index: make(map[int]Handle, len(g.index)),
	}
	for i, list := range g.out {
		c.out[i] = slices.Clone(list)
	}
	for id, h := range g.index {
		c.index[id] = h
	}
	return c
}

func (g *Graph) edge(i int) Edge {
	a := g.arcs[i]
	return Edge{
		From:     g.nodes[a.from].ID,
		To:       g.nodes[a.to].ID,
		Capacity: a.capacity,
		Flow:     a.flow,
	}
}
