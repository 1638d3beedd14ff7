package render

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/flownet/pkg/graph"
	"github.com/matzehuels/flownet/pkg/netgraph"
)

// DefaultScale is the number of inches per coordinate unit.
const DefaultScale = 1.5

// Edge colours.
const (
	colorMST       = "#2f7ed8"
	colorFlow      = "#1a9850"
	colorSaturated = "#d73027"
	colorIdle      = "#9e9e9e"
)

// Options configures diagram rendering.
type Options struct {
	// Title is drawn above the diagram when non-empty.
	Title string

	// MST edges are drawn bold and coloured.
	MST []graph.MSTEdge

	// ShowFlow labels edges "flow/capacity", colours flow-carrying edges
	// and dashes saturated ones.
	ShowFlow bool

	// Undirected draws each pair of opposite edges with equal capacity as
	// one line without arrowheads. Ignored when ShowFlow is set.
	Undirected bool

	// Detailed adds node values to labels.
	Detailed bool

	// Scale converts coordinates to inches. Zero uses DefaultScale.
	Scale float64
}

// ToDOT converts a graph to Graphviz DOT source.
// Nodes and edges are emitted in insertion order so output is deterministic.
func ToDOT(g *netgraph.Graph, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=14, width=0.4, fixedsize=true];\n")
	buf.WriteString("  edge [fontsize=11];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", fmtNum(n.X*scale), fmtNum(n.Y*scale)),
		}
		if opts.Detailed {
			attrs = append(attrs, "fixedsize=false")
		}
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	tree := treeSet(opts.MST)
	edges := g.Edges()
	var twin []int
	if opts.Undirected && !opts.ShowFlow {
		twin = pairOpposites(edges)
	}

	for i, e := range edges {
		paired := twin != nil && twin[i] >= 0
		if paired && twin[i] < i {
			continue
		}
		attrs := edgeAttrs(e, opts, tree, paired)
		if paired {
			attrs = append(attrs, "dir=none")
		}
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\" [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n netgraph.Node, detailed bool) string {
	id := strconv.Itoa(n.ID)
	if !detailed || n.Value == 0 {
		return id
	}
	return id + "\n" + fmtNum(n.Value)
}

type arcKey struct{ from, to int }

func treeSet(tree []graph.MSTEdge) map[arcKey]bool {
	set := make(map[arcKey]bool, len(tree))
	for _, e := range tree {
		set[arcKey{e.From, e.To}] = true
	}
	return set
}

func edgeAttrs(e netgraph.Edge, opts Options, tree map[arcKey]bool, paired bool) []string {
	if opts.ShowFlow {
		attrs := []string{fmt.Sprintf("label=\"%s/%s\"", fmtNum(e.Flow), fmtNum(e.Capacity))}
		switch {
		case e.Flow > 0 && e.Residual() <= 0:
			attrs = append(attrs, "color=\""+colorSaturated+"\"", "style=dashed", "penwidth=2")
		case e.Flow > 0:
			attrs = append(attrs, "color=\""+colorFlow+"\"", "penwidth=2")
		default:
			attrs = append(attrs, "color=\""+colorIdle+"\"")
		}
		return attrs
	}

	attrs := []string{fmt.Sprintf("label=%q", fmtNum(e.Capacity))}
	inTree := tree[arcKey{e.From, e.To}] || (paired && tree[arcKey{e.To, e.From}])
	if inTree {
		attrs = append(attrs, "color=\""+colorMST+"\"", "penwidth=3")
	} else if len(tree) > 0 {
		attrs = append(attrs, "color=\""+colorIdle+"\"")
	}
	return attrs
}

// pairOpposites matches each u→v edge with an unmatched v→u edge of equal
// capacity, greedily in insertion order. twin[i] is the partner of edge i,
// or -1.
func pairOpposites(edges []netgraph.Edge) []int {
	twin := make([]int, len(edges))
	open := make(map[arcKey][]int)
	for i, e := range edges {
		twin[i] = -1
		if e.From == e.To {
			continue
		}
		back := arcKey{e.To, e.From}
		if j := matchCapacity(edges, open[back], e.Capacity); j >= 0 {
			partner := open[back][j]
			twin[i], twin[partner] = partner, i
			open[back] = append(open[back][:j], open[back][j+1:]...)
			continue
		}
		k := arcKey{e.From, e.To}
		open[k] = append(open[k], i)
	}
	return twin
}

func matchCapacity(edges []netgraph.Edge, candidates []int, capacity float64) int {
	for j, i := range candidates {
		if edges[i].Capacity == capacity {
			return j
		}
	}
	return -1
}

func fmtNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
