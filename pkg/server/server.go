// Package server exposes the alignment pipeline over HTTP.
//
// # Endpoints
//
//	GET  /healthz        build information
//	GET  /statsz         event counters, when Options.Counters is set
//	POST /v1/msa         multiple sequence alignment (JSON, FASTA or text)
//	POST /v1/consensus   consensus sequence only
//	POST /v1/dot         alignment graph as DOT or SVG
//	POST /v1/batch       several MSA jobs at once
//
// Request bodies are JSON-encoded [pipeline.Options]. The server's
// configuration supplies scoring and limits; requests cannot override them.
//
// Every response carries an X-Request-ID header. Errors are JSON objects
// with a machine-readable code from pkg/errors:
//
//	{"error": {"code": "EMPTY_INPUT", "message": "no sequences given", "request_id": "..."}}
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/poagraph/pkg/config"
	"github.com/matzehuels/poagraph/pkg/observability"
	"github.com/matzehuels/poagraph/pkg/pipeline"
)

// Defaults for [Options].
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 64 << 20
	DefaultTimeout      = 2 * time.Minute
	shutdownTimeout     = 10 * time.Second
)

// Options configures a [Server].
type Options struct {
	// Config supplies alignment parameters and input limits for every request.
	Config *config.Config
	// MaxBodyBytes caps request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// BatchConcurrency bounds parallel jobs in /v1/batch.
	BatchConcurrency int
	// Counters, if set, is served on /statsz. Registering it with
	// observability.Register is up to the caller.
	Counters *observability.Counters
}

// Server serves the alignment API.
type Server struct {
	runner *pipeline.Runner
	opts   Options
	logger *log.Logger
	router chi.Router
}

// New creates a server backed by runner. A nil logger uses the runner's.
func New(runner *pipeline.Runner, opts Options, logger *log.Logger) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = runner.Logger
	}
	s := &Server{runner: runner, opts: opts, logger: logger}
	s.router = s.routes()
	return s
}

// Handler returns the server's HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(requestID)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.opts.Timeout))

	r.Get("/healthz", s.handleHealth)
	if s.opts.Counters != nil {
		r.Get("/statsz", s.handleStats)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/msa", s.handleMSA)
		r.Post("/consensus", s.handleConsensus)
		r.Post("/dot", s.handleDOT)
		r.Post("/batch", s.handleBatch)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, errMethodNotAllowed)
	})
	return r
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
