// Package api provides the REST server for the project tracker. Routes
// are registered on a method-qualified ServeMux; handlers translate
// between the wire shapes and the lifecycle engine.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mesh-intelligence/kindling/internal/engine"
)

// Server is the HTTP API server.
type Server struct {
	addr   string
	mux    *http.ServeMux
	engine *engine.Engine
	logger *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Addr   string
	Engine *engine.Engine
	Logger *slog.Logger
}

// New creates an API server over the given engine.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	addr := cfg.Addr
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		addr:   addr,
		mux:    http.NewServeMux(),
		engine: cfg.Engine,
		logger: logger,
	}
	s.registerRoutes()
	return s
}

// Handler exposes the routed mux, wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return s.requestID(s.mux)
}

// registerRoutes sets up all API routes.
func (s *Server) registerRoutes() {
	// CORS middleware wrapper
	cors := func(h http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
			h(w, r)
		}
	}

	// Health check
	s.mux.HandleFunc("GET /api/health", cors(s.handleHealth))

	// Incubator
	s.mux.HandleFunc("GET /api/incubator", cors(s.handleListIdeas))
	s.mux.HandleFunc("POST /api/incubator", cors(s.handleAddIdea))
	s.mux.HandleFunc("DELETE /api/incubator/{id}", cors(s.handleRemoveIdea))

	// Experiments
	s.mux.HandleFunc("GET /api/experiments", cors(s.handleListExperiments))
	s.mux.HandleFunc("POST /api/experiments", cors(s.handleStartExperiment))
	s.mux.HandleFunc("GET /api/experiments/{id}", cors(s.handleGetExperiment))
	s.mux.HandleFunc("POST /api/experiments/{id}/progress", cors(s.handleAddProgressNote))
	s.mux.HandleFunc("POST /api/experiments/{id}/complete", cors(s.handleCompleteExperiment))

	// Archive
	s.mux.HandleFunc("GET /api/archive", cors(s.handleListArchive))
	s.mux.HandleFunc("GET /api/archive/{id}", cors(s.handleGetArchiveEntry))
	s.mux.HandleFunc("DELETE /api/archive/{id}", cors(s.handleDeleteArchiveEntry))

	// Statistics
	s.mux.HandleFunc("GET /api/stats", cors(s.handleStatistics))
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

// StartContext starts the API server and shuts it down gracefully when
// ctx is canceled.
func (s *Server) StartContext(ctx context.Context) error {
	server := &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("starting API server", "addr", s.addr)
	return server.ListenAndServe()
}
