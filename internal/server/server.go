// Package server exposes the orchestration layer over HTTP: task execution,
// budget and usage views, the agent catalog, workflow history, a live
// progress stream, and an auto-refreshing cost dashboard.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prodigypm/orchestrator/internal/agents"
	"github.com/prodigypm/orchestrator/internal/config"
	"github.com/prodigypm/orchestrator/internal/gateway"
	"github.com/prodigypm/orchestrator/internal/workflow"
)

// Server is the HTTP front of the orchestrator.
type Server struct {
	gw       *gateway.Gateway
	engine   *workflow.Engine
	registry *agents.Registry
	hub      *Hub

	httpServer *http.Server
}

// New builds the server and its route table.
func New(cfg config.ServerConfig, gw *gateway.Gateway, engine *workflow.Engine, registry *agents.Registry, hub *Hub) *Server {
	s := &Server{gw: gw, engine: engine, registry: registry, hub: hub}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /api/v1/tasks/execute", s.handleExecute)
	mux.HandleFunc("GET /api/v1/budget", s.handleBudget)
	mux.HandleFunc("GET /api/v1/usage", s.handleUsage)
	mux.HandleFunc("GET /api/v1/agents/status", s.handleAgentStatus)
	mux.HandleFunc("GET /api/v1/workflows", s.handleWorkflowCatalog)
	mux.HandleFunc("GET /api/v1/workflows/history", s.handleWorkflowHistory)
	mux.HandleFunc("GET /api/v1/workflows/stream", s.handleStream)
	mux.HandleFunc("POST /api/v1/admin/reset", s.handleReset)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// ListenAndServe blocks serving HTTP until Shutdown or failure.
func (s *Server) ListenAndServe() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("orchestrator HTTP server listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests and closes stream subscribers.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the route table for tests.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("response encode failed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
