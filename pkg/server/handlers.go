package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/flownet/pkg/buildinfo"
	"github.com/matzehuels/flownet/pkg/cache"
	ferrors "github.com/matzehuels/flownet/pkg/errors"
	"github.com/matzehuels/flownet/pkg/expr"
	"github.com/matzehuels/flownet/pkg/graph"
	"github.com/matzehuels/flownet/pkg/pipeline"
	"github.com/matzehuels/flownet/pkg/storage"
)

// =============================================================================
// Requests and responses
// =============================================================================

type mstRequest struct {
	Graph   graph.Document `json:"graph"`
	Root    *int           `json:"root,omitempty"`
	Refresh bool           `json:"refresh,omitempty"`
}

type maxFlowRequest struct {
	Graph   graph.Document `json:"graph"`
	Source  *int           `json:"source" validate:"required"`
	Sink    *int           `json:"sink" validate:"required"`
	Refresh bool           `json:"refresh,omitempty"`
}

type storedMSTRequest struct {
	Root    *int `json:"root,omitempty"`
	Refresh bool `json:"refresh,omitempty"`
}

type storedMaxFlowRequest struct {
	Source  *int `json:"source" validate:"required"`
	Sink    *int `json:"sink" validate:"required"`
	Refresh bool `json:"refresh,omitempty"`
}

type evalRequest struct {
	Expression string             `json:"expression" validate:"required,max=4096"`
	Vars       map[string]float64 `json:"vars,omitempty" validate:"max=1024"`
}

type evalResponse struct {
	Value float64 `json:"value"`
}

type saveRequest struct {
	Graph graph.Document `json:"graph"`
	Name  string         `json:"name,omitempty"`
}

type graphSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
}

type healthResponse struct {
	Status  string         `json:"status"`
	Build   buildinfo.Info `json:"build"`
	Workers int            `json:"workers"`
	Dropped uint64         `json:"dropped_events"`
}

// =============================================================================
// Health
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "ok",
		Build:   buildinfo.Current(),
		Workers: s.core.Workers(),
		Dropped: s.core.Dropped(),
	}
	status := http.StatusOK
	if !s.core.IsRunning() {
		resp.Status = "stopped"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// =============================================================================
// Solves
// =============================================================================

func (s *Server) handleMST(w http.ResponseWriter, r *http.Request) {
	var req mstRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.solve(w, r, req.Graph, pipeline.Options{
		Algorithm: graph.AlgorithmMST,
		Root:      req.Root,
		Refresh:   req.Refresh,
	})
}

func (s *Server) handleMaxFlow(w http.ResponseWriter, r *http.Request) {
	var req maxFlowRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.solve(w, r, req.Graph, pipeline.Options{
		Algorithm: graph.AlgorithmMaxFlow,
		Source:    *req.Source,
		Sink:      *req.Sink,
		Refresh:   req.Refresh,
	})
}

func (s *Server) handleStoredMST(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadGraph(w, r)
	if !ok {
		return
	}
	var req storedMSTRequest
	if err := s.decode(r, &req, true); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.solve(w, r, rec.Document, pipeline.Options{
		Algorithm: graph.AlgorithmMST,
		Root:      req.Root,
		Refresh:   req.Refresh,
	})
}

func (s *Server) handleStoredMaxFlow(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadGraph(w, r)
	if !ok {
		return
	}
	var req storedMaxFlowRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.solve(w, r, rec.Document, pipeline.Options{
		Algorithm: graph.AlgorithmMaxFlow,
		Source:    *req.Source,
		Sink:      *req.Sink,
		Refresh:   req.Refresh,
	})
}

// solve runs opts on doc and writes the algorithm's result. X-Cache
// reports whether it came from the cache.
func (s *Server) solve(w http.ResponseWriter, r *http.Request, doc graph.Document, opts pipeline.Options) {
	res, err := s.runner.Solve(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	setCacheHeader(w, res.CacheHit)
	if res.MST != nil {
		writeJSON(w, http.StatusOK, res.MST)
		return
	}
	writeJSON(w, http.StatusOK, res.Flow)
}

func setCacheHeader(w http.ResponseWriter, hit bool) {
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
}

// =============================================================================
// Expressions
// =============================================================================

// handleEval memoises responses in the lifecycle core; evaluation is pure.
func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	var req evalRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}

	key := evalKey(req)
	if data, ok := s.core.Get(key); ok {
		v, err := strconv.ParseFloat(string(data), 64)
		if err == nil {
			setCacheHeader(w, true)
			writeJSON(w, http.StatusOK, evalResponse{Value: v})
			return
		}
	}

	ev, err := expr.New(req.Vars)
	if err != nil {
		s.writeError(w, r, ferrors.Wrap(ferrors.ErrCodeInvalidExpression, err, "%v", err))
		return
	}
	v, err := ev.Evaluate(req.Expression)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.core.Put(key, []byte(strconv.FormatFloat(v, 'g', -1, 64)))
	setCacheHeader(w, false)
	writeJSON(w, http.StatusOK, evalResponse{Value: v})
}

func evalKey(req evalRequest) string {
	// encoding/json sorts map keys, so equal requests hash equally.
	data, _ := json.Marshal(req)
	return "eval:" + cache.Hash(data)
}

// =============================================================================
// Stored graphs
// =============================================================================

func (s *Server) handleSaveGraph(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if err := s.decode(r, &req, false); err != nil {
		s.writeError(w, r, err)
		return
	}
	doc := req.Graph
	if req.Name != "" {
		doc.Name = req.Name
	}
	if err := ferrors.ValidateGraphName(doc.Name); err != nil {
		s.writeError(w, r, err)
		return
	}
	// Reject documents that cannot be solved before they are stored.
	if _, err := doc.Build(); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.store.Save(r.Context(), doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Location", "/v1/graphs/"+rec.ID)
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handleListGraphs(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]graphSummary, len(recs))
	for i, rec := range recs {
		out[i] = graphSummary{
			ID:        rec.ID,
			Name:      rec.Name,
			Nodes:     len(rec.Document.Nodes),
			Edges:     len(rec.Document.Edges),
			CreatedAt: rec.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGraph(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.loadGraph(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleDeleteGraph(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) loadGraph(w http.ResponseWriter, r *http.Request) (storage.Record, bool) {
	rec, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return storage.Record{}, false
	}
	return rec, true
}

// =============================================================================
// Rendering
// =============================================================================

var contentTypes = map[string]string{
	graph.FormatDOT: "text/vnd.graphviz; charset=utf-8",
	graph.FormatSVG: "image/svg+xml",
}

func (s *Server) handleRender(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec, ok := s.loadGraph(w, r)
		if !ok {
			return
		}
		opts, err := parseRenderQuery(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.Format = format

		data, hit, err := s.runner.RenderWithCacheInfo(r.Context(), rec.Document, opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		setCacheHeader(w, hit)
		w.Header().Set("Content-Type", contentTypes[format])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

// parseRenderQuery reads ?mst, ?root=ID, ?flow=S,T and ?detailed.
func parseRenderQuery(r *http.Request) (pipeline.RenderOptions, error) {
	q := r.URL.Query()
	var opts pipeline.RenderOptions

	opts.MST = q.Has("mst")
	opts.Detailed = q.Has("detailed")
	opts.Refresh = q.Has("refresh")

	if v := q.Get("root"); v != "" {
		root, err := strconv.Atoi(v)
		if err != nil {
			return opts, ferrors.New(ferrors.ErrCodeInvalidInput, "root must be an integer, got %q", v)
		}
		opts.MST = true
		opts.Root = &root
	}

	if v := q.Get("flow"); v != "" {
		src, snk, ok := strings.Cut(v, ",")
		source, err1 := strconv.Atoi(strings.TrimSpace(src))
		sink, err2 := strconv.Atoi(strings.TrimSpace(snk))
		if !ok || err1 != nil || err2 != nil {
			return opts, ferrors.New(ferrors.ErrCodeInvalidInput, "flow must be SOURCE,SINK, got %q", v)
		}
		opts.Flow, opts.Source, opts.Sink = true, source, sink
	}
	return opts, nil
}
