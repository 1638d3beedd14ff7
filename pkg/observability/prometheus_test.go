package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusHooksCounters(t *testing.T) {
	ctx := context.Background()
	p := NewPrometheusHooks("flownet")

	p.OnSolveStart(ctx, "mst", 3, 6)
	p.OnSolveComplete(ctx, "mst", time.Millisecond, nil)
	p.OnSolveComplete(ctx, "maxflow", time.Millisecond, errors.New("boom"))
	p.OnRenderComplete(ctx, "svg", time.Millisecond, nil)

	if got := testutil.ToFloat64(p.solves.WithLabelValues("mst", "ok")); got != 1 {
		t.Errorf("mst ok solves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.solves.WithLabelValues("maxflow", "error")); got != 1 {
		t.Errorf("maxflow error solves = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.renders.WithLabelValues("svg", "ok")); got != 1 {
		t.Errorf("renders = %v, want 1", got)
	}

	p.OnCacheHit(ctx, "solve")
	p.OnCacheMiss(ctx, "solve")
	p.OnCacheSet(ctx, "solve", 128)
	if got := testutil.ToFloat64(p.cacheEvents.WithLabelValues("solve", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.cacheBytes); got != 128 {
		t.Errorf("cache bytes = %v, want 128", got)
	}

	p.OnRequest(ctx, "POST", "/v1/mst")
	if got := testutil.ToFloat64(p.inFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	p.OnResponse(ctx, "POST", "/v1/mst", 500, time.Millisecond)
	p.OnError(ctx, "POST", "/v1/mst", errors.New("boom"))
	if got := testutil.ToFloat64(p.inFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(p.httpRequests.WithLabelValues("POST", "/v1/mst", "500")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.httpErrors.WithLabelValues("POST", "/v1/mst")); got != 1 {
		t.Errorf("errors = %v, want 1", got)
	}
}

func TestPrometheusHooksIsolatedRegistries(t *testing.T) {
	// Two instances must not panic on duplicate registration.
	a := NewPrometheusHooks("flownet")
	b := NewPrometheusHooks("flownet")
	if a.Registry() == b.Registry() {
		t.Error("each instance should own its registry")
	}
}

func TestPrometheusHandler(t *testing.T) {
	p := NewPrometheusHooks("flownet")
	p.OnSolveComplete(context.Background(), "mst", time.Millisecond, nil)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `flownet_solves_total{algorithm="mst",status="ok"} 1`) {
		t.Errorf("metrics output missing solve counter:\n%.500s", body)
	}
}
