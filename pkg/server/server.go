// Package server exposes the conversion pipeline and circuit storage over
// HTTP. All endpoints exchange JSON except /api/render, which streams the
// rendered artifact bytes.
package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/voltlab/cdckit/pkg/circuit"
	"github.com/voltlab/cdckit/pkg/pipeline"
	"github.com/voltlab/cdckit/pkg/store"
)

// Config bundles the server's collaborators.
type Config struct {
	Runner   *pipeline.Runner
	Store    store.Store
	Registry *circuit.Registry // defaults to circuit.Builtin()
	Logger   *log.Logger       // defaults to log.Default()
}

// Server is the HTTP front end.
type Server struct {
	runner   *pipeline.Runner
	store    store.Store
	registry *circuit.Registry
	logger   *log.Logger
	router   chi.Router
}

// New assembles the routing table.
func New(cfg Config) *Server {
	s := &Server{
		runner:   cfg.Runner,
		store:    cfg.Store,
		registry: cfg.Registry,
		logger:   cfg.Logger,
	}
	if s.registry == nil {
		s.registry = circuit.Builtin()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
		r.Get("/elements", s.handleElements)
		r.Route("/circuits", func(r chi.Router) {
			r.Get("/", s.handleListCircuits)
			r.Post("/", s.handleCreateCircuit)
			r.Get("/{id}", s.handleGetCircuit)
			r.Put("/{id}", s.handleUpdateCircuit)
			r.Delete("/{id}", s.handleDeleteCircuit)
		})
	})
	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
