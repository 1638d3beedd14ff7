package render

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flownet/pkg/graph"
	"github.com/matzehuels/flownet/pkg/netgraph"
)

func triangle(t *testing.T) *netgraph.Graph {
	t.Helper()
	doc := graph.Document{
		Nodes: []graph.Node{{ID: 1}, {ID: 2, X: 2}, {ID: 3, X: 1, Y: 2, Value: 4.5}},
		Edges: []graph.Edge{
			{From: 1, To: 2, Capacity: 1, Undirected: true},
			{From: 2, To: 3, Capacity: 2, Undirected: true},
			{From: 1, To: 3, Capacity: 5, Undirected: true},
		},
	}
	g, err := doc.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return g
}

func TestToDOTNodes(t *testing.T) {
	dot := ToDOT(triangle(t), Options{Title: "tri"})

	for _, want := range []string{
		"digraph G {",
		`label="tri";`,
		`"1" [label="1", pos="0,0!"];`,
		`"2" [label="2", pos="3,0!"];`,
		`"3" [label="3", pos="1.5,3!"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
	if n := strings.Count(dot, "->"); n != 6 {
		t.Errorf("directed DOT has %d edges, want 6", n)
	}
}

func TestToDOTDetailedAndScale(t *testing.T) {
	dot := ToDOT(triangle(t), Options{Detailed: true, Scale: 1})
	if !strings.Contains(dot, `label="3\n4.5"`) {
		t.Errorf("detailed label missing:\n%s", dot)
	}
	if !strings.Contains(dot, `pos="1,2!"`) {
		t.Errorf("scale not applied:\n%s", dot)
	}
}

func TestToDOTUndirectedMST(t *testing.T) {
	g := triangle(t)
	tree := graph.NewMSTResult(1, g.MST())

	dot := ToDOT(g, Options{MST: tree.Edges, Undirected: true})
	if n := strings.Count(dot, "->"); n != 3 {
		t.Fatalf("undirected DOT has %d edges, want 3:\n%s", n, dot)
	}
	if n := strings.Count(dot, "dir=none"); n != 3 {
		t.Errorf("want 3 undirected edges, got %d", n)
	}
	if n := strings.Count(dot, "penwidth=3"); n != 2 {
		t.Errorf("want 2 highlighted tree edges, got %d:\n%s", n, dot)
	}
	if !strings.Contains(dot, `"1" -> "3" [label="5", color="#9e9e9e", dir=none]`) {
		t.Errorf("non-tree edge should be greyed:\n%s", dot)
	}
}

func TestPairOpposites(t *testing.T) {
	edges := []netgraph.Edge{
		{From: 1, To: 2, Capacity: 5},
		{From: 1, To: 2, Capacity: 5},
		{From: 2, To: 1, Capacity: 5},
		{From: 2, To: 1, Capacity: 3},
		{From: 3, To: 3, Capacity: 1},
	}
	twin := pairOpposites(edges)
	want := []int{2, -1, 0, -1, -1}
	for i := range want {
		if twin[i] != want[i] {
			t.Errorf("twin[%d] = %d, want %d", i, twin[i], want[i])
		}
	}
}

func TestToDOTFlow(t *testing.T) {
	g := netgraph.New()
	for _, id := range []int{1, 2, 3} {
		_, _ = g.AddNode(id, 0, 0, 0)
	}
	_ = g.AddEdge(1, 2, 2)
	_ = g.AddEdge(2, 3, 5)
	_ = g.AddEdge(3, 1, 1)
	if _, err := g.MaxFlow(1, 3); err != nil {
		t.Fatal(err)
	}

	dot := ToDOT(g, Options{ShowFlow: true, Undirected: true})
	for _, want := range []string{
		`"1" -> "2" [label="2/2", color="#d73027", style=dashed, penwidth=2];`,
		`"2" -> "3" [label="2/5", color="#1a9850", penwidth=2];`,
		`"3" -> "1" [label="0/1", color="#9e9e9e"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestRenderSVG(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz wasm start-up is slow")
	}
	svg, err := RenderSVG(context.Background(), ToDOT(triangle(t), Options{Undirected: true}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) || !bytes.Contains(svg, []byte(`viewBox="0 0`)) {
		t.Errorf("unexpected SVG output: %.200s", svg)
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if testing.Short() {
		t.Skip("graphviz wasm start-up is slow")
	}
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.40 50.25"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.40 50.25" width="100" height="50"><g/></svg>`
	if out != want {
		t.Errorf("got %s\nwant %s", out, want)
	}
	if got := normalizeViewBox([]byte("<svg></svg>")); string(got) != "<svg></svg>" {
		t.Error("input without viewBox should be unchanged")
	}
}
