package graph

import (
	"errors"
	"fmt"

	"github.com/matzehuels/flownet/pkg/expr"
	"github.com/matzehuels/flownet/pkg/netgraph"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Algorithms.
const (
	AlgorithmMST     = "mst"
	AlgorithmMaxFlow = "maxflow"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

// Render formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// =============================================================================
// Document - Graph Serialization
// =============================================================================

// Document is the canonical serialization format for weighted graphs.
// Used for files, API requests, storage and cache keys.
//
// Vars holds named parameters that edges can reference from CapacityExpr.
type Document struct {
	Name  string             `json:"name,omitempty" bson:"name,omitempty" toml:"name,omitempty" yaml:"name,omitempty"`
	Vars  map[string]float64 `json:"vars,omitempty" bson:"vars,omitempty" toml:"vars,omitempty" yaml:"vars,omitempty"`
	Nodes []Node             `json:"nodes" bson:"nodes" toml:"nodes" yaml:"nodes"`
	Edges []Edge             `json:"edges" bson:"edges" toml:"edges" yaml:"edges"`
}

// Node is a vertex with an opaque value and a 2D position used for drawing.
type Node struct {
	ID    int     `json:"id" bson:"id" toml:"id" yaml:"id"`
	Value float64 `json:"value,omitempty" bson:"value,omitempty" toml:"value,omitempty" yaml:"value,omitempty"`
	X     float64 `json:"x,omitempty" bson:"x,omitempty" toml:"x,omitempty" yaml:"x,omitempty"`
	Y     float64 `json:"y,omitempty" bson:"y,omitempty" toml:"y,omitempty" yaml:"y,omitempty"`
}

// Edge is a directed, weighted connection.
//
// Capacity doubles as the MST weight. CapacityExpr, when set, is evaluated
// against Document.Vars and replaces Capacity. Undirected edges are built as
// two directed edges of the same capacity. Flow is output only.
type Edge struct {
	From         int     `json:"from" bson:"from" toml:"from" yaml:"from"`
	To           int     `json:"to" bson:"to" toml:"to" yaml:"to"`
	Capacity     float64 `json:"capacity,omitempty" bson:"capacity,omitempty" toml:"capacity,omitempty" yaml:"capacity,omitempty"`
	CapacityExpr string  `json:"capacity_expr,omitempty" bson:"capacity_expr,omitempty" toml:"capacity_expr,omitempty" yaml:"capacity_expr,omitempty"`
	Undirected   bool    `json:"undirected,omitempty" bson:"undirected,omitempty" toml:"undirected,omitempty" yaml:"undirected,omitempty"`
	Flow         float64 `json:"flow,omitempty" bson:"flow,omitempty" toml:"flow,omitempty" yaml:"flow,omitempty"`
}

// =============================================================================
// Document ↔ Network Conversion
// =============================================================================

// Build constructs a netgraph.Graph from the document.
// Nodes are inserted first, then edges, both in document order, so the first
// node is where MST starts. Errors name the offending node or edge and wrap
// the netgraph or expr error.
func (d *Document) Build() (*netgraph.Graph, error) {
	ev, err := expr.New(d.Vars)
	if err != nil {
		return nil, fmt.Errorf("vars: %w", err)
	}

	g := netgraph.New()
	for _, n := range d.Nodes {
		if _, err := g.AddNode(n.ID, n.Value, n.X, n.Y); err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
	}

	for i, e := range d.Edges {
		capacity, err := e.resolveCapacity(ev)
		if err != nil {
			return nil, fmt.Errorf("edge %d (%d→%d): %w", i, e.From, e.To, err)
		}
		if err := g.AddEdge(e.From, e.To, capacity); err != nil {
			return nil, fmt.Errorf("edge %d (%d→%d): %w", i, e.From, e.To, err)
		}
		if e.Undirected && e.From != e.To {
			if err := g.AddEdge(e.To, e.From, capacity); err != nil {
				return nil, fmt.Errorf("edge %d (%d→%d): %w", i, e.To, e.From, err)
			}
		}
	}
	return g, nil
}

// ErrAmbiguousCapacity is returned when an edge sets both Capacity and
// CapacityExpr.
var ErrAmbiguousCapacity = errors.New("capacity and capacity_expr are mutually exclusive")

func (e Edge) resolveCapacity(ev *expr.Evaluator) (float64, error) {
	if e.CapacityExpr == "" {
		return e.Capacity, nil
	}
	if e.Capacity != 0 {
		return 0, ErrAmbiguousCapacity
	}
	v, err := ev.Evaluate(e.CapacityExpr)
	if err != nil {
		return 0, fmt.Errorf("capacity_expr %q: %w", e.CapacityExpr, err)
	}
	return v, nil
}

// FromNetwork converts a graph to its serialization format, including the
// current flow on every edge. Both directions of an undirected edge come
// back as separate directed edges.
func FromNetwork(g *netgraph.Graph, name string) Document {
	nodes := g.Nodes()
	edges := g.Edges()

	out := Document{
		Name:  name,
		Nodes: make([]Node, len(nodes)),
		Edges: make([]Edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = Node{ID: n.ID, Value: n.Value, X: n.X, Y: n.Y}
	}
	for i, e := range edges {
		out.Edges[i] = Edge{From: e.From, To: e.To, Capacity: e.Capacity, Flow: e.Flow}
	}
	return out
}

// =============================================================================
// Results
// =============================================================================

// MSTEdge is one spanning tree edge.
type MSTEdge struct {
	From   int     `json:"from" bson:"from" yaml:"from"`
	To     int     `json:"to" bson:"to" yaml:"to"`
	Weight float64 `json:"weight" bson:"weight" yaml:"weight"`
}

// MSTResult is the serialized outcome of a minimum spanning tree run.
// Edges are in the order they joined the tree.
type MSTResult struct {
	Root        int       `json:"root" bson:"root" yaml:"root"`
	Edges       []MSTEdge `json:"edges" bson:"edges" yaml:"edges"`
	TotalWeight float64   `json:"total_weight" bson:"total_weight" yaml:"total_weight"`
}

// NewMSTResult converts a netgraph spanning tree. root is the node the tree
// was grown from.
func NewMSTResult(root int, tree []netgraph.MSTEdge) MSTResult {
	edges := make([]MSTEdge, len(tree))
	for i, e := range tree {
		edges[i] = MSTEdge{From: e.From, To: e.To, Weight: e.Weight}
	}
	return MSTResult{
		Root:        root,
		Edges:       edges,
		TotalWeight: netgraph.TotalWeight(tree),
	}
}

// Contains reports whether the tree uses the directed edge from→to.
func (r MSTResult) Contains(from, to int) bool {
	for _, e := range r.Edges {
		if e.From == from && e.To == to {
			return true
		}
	}
	return false
}

// FlowEdge is an edge carrying positive flow.
type FlowEdge struct {
	From     int     `json:"from" bson:"from" yaml:"from"`
	To       int     `json:"to" bson:"to" yaml:"to"`
	Capacity float64 `json:"capacity" bson:"capacity" yaml:"capacity"`
	Flow     float64 `json:"flow" bson:"flow" yaml:"flow"`
}

// Saturated reports whether the edge has no residual capacity left.
func (e FlowEdge) Saturated() bool { return e.Flow >= e.Capacity }

// FlowResult is the serialized outcome of a max-flow run.
type FlowResult struct {
	Source int        `json:"source" bson:"source" yaml:"source"`
	Sink   int        `json:"sink" bson:"sink" yaml:"sink"`
	Value  float64    `json:"value" bson:"value" yaml:"value"`
	Edges  []FlowEdge `json:"edges" bson:"edges" yaml:"edges"`
}

// NewFlowResult collects the flow-carrying edges of g in insertion order.
func NewFlowResult(g *netgraph.Graph, source, sink int, value float64) FlowResult {
	edges := []FlowEdge{}
	for _, e := range g.Edges() {
		if e.Flow > 0 {
			edges = append(edges, FlowEdge{From: e.From, To: e.To, Capacity: e.Capacity, Flow: e.Flow})
		}
	}
	return FlowResult{Source: source, Sink: sink, Value: value, Edges: edges}
}
