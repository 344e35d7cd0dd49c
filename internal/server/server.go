// Package server exposes the summarizer over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanonone/trustsum/internal/batch"
	"github.com/sanonone/trustsum/pkg/engine"
)

// Server holds the HTTP interface, the Engine and the batch Runner.
type Server struct {
	Engine *engine.Engine
	Runner *batch.Runner

	httpServer  *http.Server
	taskManager *TaskManager
	authToken   string

	// baseCtx outlives requests; background runs stop when it is canceled.
	baseCtx context.Context
	cancel  context.CancelFunc
}

// NewServer wires the routes. runner may be nil, which disables /runs.
func NewServer(eng *engine.Engine, runner *batch.Runner, httpAddr string, authToken string) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		Engine:      eng,
		Runner:      runner,
		taskManager: NewTaskManager(),
		authToken:   authToken,
		baseCtx:     ctx,
		cancel:      cancel,
	}

	mux := http.NewServeMux()
	s.registerHTTPHandlers(mux)

	// Recovery -> Logging -> Auth -> Mux
	var handler http.Handler = mux
	handler = s.authMiddleware(handler)
	handler = s.LoggingMiddleware(handler)
	handler = s.RecoveryMiddleware(handler)

	rootMux := http.NewServeMux()
	rootMux.HandleFunc("GET /healthz", s.handleHealthz)
	rootMux.Handle("GET /metrics", promhttp.Handler())
	rootMux.Handle("/", handler)
	s.httpServer = &http.Server{
		Addr:              httpAddr,
		Handler:           rootMux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run blocks serving HTTP until Shutdown.
func (s *Server) Run() error {
	slog.Info("[SERVER] HTTP server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server startup failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and cancels background runs.
func (s *Server) Shutdown() {
	slog.Info("[SERVER] Starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("[SERVER] HTTP server shutdown error", "error", err)
	}
	s.cancel()
}
