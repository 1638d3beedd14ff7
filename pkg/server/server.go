// Package server exposes the solver, expression evaluator and graph
// storage over a JSON HTTP API.
//
// Routes:
//
//	GET    /healthz                     lifecycle state
//	GET    /metrics                     Prometheus metrics (when enabled)
//	POST   /v1/mst                      {graph, root?} → MST result
//	POST   /v1/maxflow                  {graph, source, sink} → flow result
//	POST   /v1/eval                     {expression, vars?} → {value}
//	POST   /v1/graphs                   {graph, name?} → stored record
//	GET    /v1/graphs                   stored graph summaries
//	GET    /v1/graphs/{id}              stored record
//	DELETE /v1/graphs/{id}
//	POST   /v1/graphs/{id}/mst          {root?}
//	POST   /v1/graphs/{id}/maxflow      {source, sink}
//	GET    /v1/graphs/{id}/dot          ?mst&root&flow=S,T&detailed
//	GET    /v1/graphs/{id}/svg          same query as dot
//
// Errors are returned as {"code": ..., "message": ...} with the status
// from errors.HTTPStatus.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/flownet/pkg/lifecycle"
	"github.com/matzehuels/flownet/pkg/observability"
	"github.com/matzehuels/flownet/pkg/pipeline"
	"github.com/matzehuels/flownet/pkg/storage"
)

// Defaults for Options.
const (
	DefaultAddr            = ":8080"
	DefaultShutdownTimeout = 10 * time.Second
	DefaultMaxBodyBytes    = 4 << 20
	DefaultWorkers         = 8
)

// Options configures a Server. Zero values use the defaults above.
type Options struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Core tracks the running state. Nil creates one with DefaultWorkers.
	// Its worker count bounds concurrent solves and renders.
	Core *lifecycle.Core

	// Runner executes solves. Nil uses a runner over Core's cache.
	Runner *pipeline.Runner

	// Store holds saved graphs. Nil uses a MemoryStore.
	Store storage.Store

	// Metrics enables GET /metrics. Hooks are not installed by the server;
	// register them with the observability package.
	Metrics *observability.PrometheusHooks

	Logger *log.Logger
}

// Server is the HTTP API.
type Server struct {
	opts     Options
	core     *lifecycle.Core
	runner   *pipeline.Runner
	store    storage.Store
	logger   *log.Logger
	validate *validator.Validate
	handler  http.Handler
}

// New creates a server. It does not start listening; see Run.
func New(opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}
	if opts.MaxBodyBytes == 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Core == nil {
		opts.Core = lifecycle.New(DefaultWorkers, opts.Logger)
	}
	if opts.Runner == nil {
		opts.Runner = pipeline.NewRunner(opts.Core.Cache(), nil, opts.Logger)
	}
	if opts.Store == nil {
		opts.Store = storage.NewMemoryStore()
	}

	s := &Server{
		opts:     opts,
		core:     opts.Core,
		runner:   opts.Runner,
		store:    opts.Store,
		logger:   opts.Logger,
		validate: newValidator(),
	}
	s.handler = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Core returns the lifecycle core.
func (s *Server) Core() *lifecycle.Core {
	return s.core
}

// Run starts the core, serves until ctx is done, then shuts down
// gracefully and stops the core.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	drainCtx, stopDrain := context.WithCancel(context.Background())
	defer stopDrain()
	go s.core.Drain(drainCtx)

	s.core.Start()
	defer s.core.Stop()

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String(), "workers", s.core.Workers())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down", "timeout", s.opts.ShutdownTimeout)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
