package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/flownet/pkg/cache"
	ferrors "github.com/matzehuels/flownet/pkg/errors"
	"github.com/matzehuels/flownet/pkg/expr"
	"github.com/matzehuels/flownet/pkg/graph"
	"github.com/matzehuels/flownet/pkg/netgraph"
	"github.com/matzehuels/flownet/pkg/observability"
)

// flowDoc has a maximum 1→4 flow of 4, with every edge's flow forced to 2.
func flowDoc() graph.Document {
	return graph.Document{
		Name: "diamond",
		Nodes: []graph.Node{
			{ID: 1}, {ID: 2, X: 1, Y: 1}, {ID: 3, X: 1, Y: -1}, {ID: 4, X: 2},
		},
		Edges: []graph.Edge{
			{From: 1, To: 2, Capacity: 3},
			{From: 1, To: 3, Capacity: 2},
			{From: 2, To: 4, Capacity: 2},
			{From: 3, To: 4, Capacity: 3},
		},
	}
}

// squareDoc is a 4-cycle plus a heavy diagonal; its MST weighs 1+2+3.
func squareDoc() graph.Document {
	return graph.Document{
		Nodes: []graph.Node{{ID: 10}, {ID: 20}, {ID: 30}, {ID: 40}},
		Edges: []graph.Edge{
			{From: 10, To: 20, Capacity: 1, Undirected: true},
			{From: 20, To: 30, Capacity: 2, Undirected: true},
			{From: 30, To: 40, Capacity: 3, Undirected: true},
			{From: 40, To: 10, Capacity: 4, Undirected: true},
			{From: 10, To: 30, Capacity: 9, Undirected: true},
		},
	}
}

func newTestRunner() *Runner {
	return NewRunner(cache.NewMemoryCache(), nil, nil)
}

func intPtr(v int) *int { return &v }

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		algorithm string
		wantErr   bool
	}{
		{"mst", false},
		{"maxflow", false},
		{"MST", true}, // case-sensitive
		{"dijkstra", true},
		{"", true},
	}

	for _, tt := range tests {
		opts := Options{Algorithm: tt.algorithm}
		err := opts.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%q) error = %v, wantErr %v", tt.algorithm, err, tt.wantErr)
		}
		if err != nil && !ferrors.Is(err, ferrors.ErrCodeInvalidAlgorithm) {
			t.Errorf("Validate(%q) code = %q", tt.algorithm, ferrors.GetCode(err))
		}
	}
}

func TestSolveKeyOptsIgnoresUnusedFields(t *testing.T) {
	a := Options{Algorithm: "mst", Source: 1, Sink: 2}
	b := Options{Algorithm: "mst"}
	if a.SolveKeyOpts() != b.SolveKeyOpts() {
		t.Error("terminals should not affect MST keys")
	}

	c := Options{Algorithm: "maxflow", Source: 1, Sink: 2, Root: intPtr(5)}
	if k := c.SolveKeyOpts(); k.Root != nil || k.Source != 1 || k.Sink != 2 {
		t.Errorf("maxflow key opts = %+v", k)
	}
}

func TestRenderOptionsValidate(t *testing.T) {
	opts := RenderOptions{}
	if err := opts.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if opts.Format != DefaultRenderFormat {
		t.Errorf("Format = %q, want default %q", opts.Format, DefaultRenderFormat)
	}

	bad := RenderOptions{Format: "png"}
	if err := bad.Validate(); !ferrors.Is(err, ferrors.ErrCodeInvalidFormat) {
		t.Errorf("png: got %v", err)
	}

	both := RenderOptions{Format: "dot", MST: true, Flow: true}
	if err := both.Validate(); !ferrors.Is(err, ferrors.ErrCodeInvalidInput) {
		t.Errorf("mst+flow: got %v", err)
	}
}

func TestSolveMaxFlow(t *testing.T) {
	r := newTestRunner()
	ctx := context.Background()
	opts := Options{Algorithm: "maxflow", Source: 1, Sink: 4}

	res, err := r.Solve(ctx, flowDoc(), opts)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.CacheHit {
		t.Error("first solve should miss the cache")
	}
	if res.Flow == nil || res.Flow.Value != 4 {
		t.Fatalf("Flow = %+v, want value 4", res.Flow)
	}
	if res.MST != nil {
		t.Error("maxflow result should not carry an MST")
	}
	if len(res.Flow.Edges) != 4 {
		t.Errorf("flow edges = %d, want 4", len(res.Flow.Edges))
	}
	for _, e := range res.Flow.Edges {
		if e.Flow != 2 {
			t.Errorf("edge %d→%d flow = %g, want 2", e.From, e.To, e.Flow)
		}
	}
	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 4 {
		t.Errorf("Stats = %+v", res.Stats)
	}

	again, err := r.Solve(ctx, flowDoc(), opts)
	if err != nil {
		t.Fatalf("Solve (cached): %v", err)
	}
	if !again.CacheHit || again.Flow.Value != 4 {
		t.Errorf("second solve: hit=%v value=%v", again.CacheHit, again.Flow.Value)
	}

	opts.Refresh = true
	fresh, err := r.Solve(ctx, flowDoc(), opts)
	if err != nil {
		t.Fatalf("Solve (refresh): %v", err)
	}
	if fresh.CacheHit {
		t.Error("refresh should bypass the cache")
	}
}

func TestSolveSourceEqualsSink(t *testing.T) {
	res, err := newTestRunner().Solve(context.Background(), flowDoc(), Options{Algorithm: "maxflow", Source: 2, Sink: 2})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Flow.Value != 0 || len(res.Flow.Edges) != 0 {
		t.Errorf("Flow = %+v, want empty", res.Flow)
	}
}

func TestSolveMST(t *testing.T) {
	r := newTestRunner()
	ctx := context.Background()

	res, err := r.Solve(ctx, squareDoc(), Options{Algorithm: "mst"})
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.MST == nil {
		t.Fatal("MST is nil")
	}
	if res.MST.Root != 10 {
		t.Errorf("Root = %d, want first node 10", res.MST.Root)
	}
	if len(res.MST.Edges) != 3 || res.MST.TotalWeight != 6 {
		t.Errorf("MST = %+v, want 3 edges weighing 6", res.MST)
	}

	rooted, err := r.Solve(ctx, squareDoc(), Options{Algorithm: "mst", Root: intPtr(30)})
	if err != nil {
		t.Fatalf("Solve(root=30): %v", err)
	}
	if rooted.CacheHit {
		t.Error("a different root must not share the default-root entry")
	}
	if rooted.MST.Root != 30 || rooted.MST.TotalWeight != 6 {
		t.Errorf("rooted MST = %+v", rooted.MST)
	}
	if first := rooted.MST.Edges[0]; first.From != 30 {
		t.Errorf("first tree edge leaves %d, want 30", first.From)
	}
}

func TestSolveCacheIgnoresName(t *testing.T) {
	r := newTestRunner()
	ctx := context.Background()
	opts := Options{Algorithm: "maxflow", Source: 1, Sink: 4}

	if _, err := r.Solve(ctx, flowDoc(), opts); err != nil {
		t.Fatal(err)
	}
	renamed := flowDoc()
	renamed.Name = "copy of diamond"
	res, err := r.Solve(ctx, renamed, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !res.CacheHit {
		t.Error("renamed document should hit the cache")
	}
}

func TestSolveErrors(t *testing.T) {
	r := newTestRunner()
	ctx := context.Background()

	_, err := r.Solve(ctx, flowDoc(), Options{Algorithm: "maxflow", Source: 1, Sink: 99})
	var lookup *netgraph.LookupError
	if !errors.As(err, &lookup) || lookup.ID != 99 {
		t.Errorf("unknown sink: got %v", err)
	}

	_, err = r.Solve(ctx, squareDoc(), Options{Algorithm: "mst", Root: intPtr(7)})
	if !errors.Is(err, netgraph.ErrNodeNotFound) {
		t.Errorf("unknown root: got %v", err)
	}

	bad := flowDoc()
	bad.Edges[0] = graph.Edge{From: 1, To: 2, CapacityExpr: "width *"}
	_, err = r.Solve(ctx, bad, Options{Algorithm: "maxflow", Source: 1, Sink: 4})
	var perr *expr.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("bad expression: got %v", err)
	}

	_, err = r.Solve(ctx, flowDoc(), Options{Algorithm: "bfs"})
	if !ferrors.Is(err, ferrors.ErrCodeInvalidAlgorithm) {
		t.Errorf("bad algorithm: got %v", err)
	}
}

type countingSolverHooks struct {
	observability.NoopSolverHooks
	starts  atomic.Int32
	renders atomic.Int32
}

func (h *countingSolverHooks) OnSolveStart(context.Context, string, int, int) { h.starts.Add(1) }
func (h *countingSolverHooks) OnRenderComplete(context.Context, string, time.Duration, error) {
	h.renders.Add(1)
}

func TestSolveHooks(t *testing.T) {
	hooks := &countingSolverHooks{}
	observability.SetSolverHooks(hooks)
	t.Cleanup(observability.Reset)

	r := newTestRunner()
	ctx := context.Background()
	opts := Options{Algorithm: "maxflow", Source: 1, Sink: 4}

	for i := 0; i < 3; i++ {
		if _, err := r.Solve(ctx, flowDoc(), opts); err != nil {
			t.Fatal(err)
		}
	}
	if n := hooks.starts.Load(); n != 1 {
		t.Errorf("solver ran %d times, want 1", n)
	}
}

func TestSolveConcurrent(t *testing.T) {
	r := NewRunner(cache.NewNullCache(), nil, nil)
	ctx := context.Background()
	opts := Options{Algorithm: "maxflow", Source: 1, Sink: 4}

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.Solve(ctx, flowDoc(), opts)
			if err == nil && res.Flow.Value != 4 {
				err = errors.New("wrong flow value")
			}
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}
}

func TestRenderDOTFlow(t *testing.T) {
	r := newTestRunner()
	ctx := context.Background()
	opts := RenderOptions{Format: "dot", Flow: true, Source: 1, Sink: 4}

	data, hit, err := r.RenderWithCacheInfo(ctx, flowDoc(), opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}
	dot := string(data)
	for _, want := range []string{`"1" -> "2" [label="2/3"`, `"1" -> "3" [label="2/2"`, "style=dashed"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}

	again, hit, err := r.RenderWithCacheInfo(ctx, flowDoc(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit || string(again) != dot {
		t.Error("second render should come from the cache unchanged")
	}
}

func TestRenderDOTMST(t *testing.T) {
	data, err := newTestRunner().Render(context.Background(), squareDoc(), RenderOptions{Format: "dot", MST: true})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	dot := string(data)
	if n := strings.Count(dot, "penwidth=3"); n != 3 {
		t.Errorf("tree edges drawn = %d, want 3:\n%s", n, dot)
	}
	if !strings.Contains(dot, "dir=none") {
		t.Errorf("undirected edges should be drawn without arrows:\n%s", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	hooks := &countingSolverHooks{}
	observability.SetSolverHooks(hooks)
	t.Cleanup(observability.Reset)

	data, err := newTestRunner().Render(context.Background(), flowDoc(), RenderOptions{})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Errorf("output is not SVG: %.80s", data)
	}
	if hooks.renders.Load() != 1 {
		t.Errorf("render hook calls = %d, want 1", hooks.renders.Load())
	}
}

func TestRenderErrors(t *testing.T) {
	r := newTestRunner()
	ctx := context.Background()

	_, err := r.Render(ctx, flowDoc(), RenderOptions{Format: "dot", Flow: true, Source: 1, Sink: 42})
	if !errors.Is(err, netgraph.ErrNodeNotFound) {
		t.Errorf("unknown sink: got %v", err)
	}

	_, err = r.Render(ctx, flowDoc(), RenderOptions{Format: "pdf"})
	if !ferrors.Is(err, ferrors.ErrCodeInvalidFormat) {
		t.Errorf("bad format: got %v", err)
	}
}
