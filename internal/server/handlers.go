package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/prodigypm/orchestrator/internal/agents"
	"github.com/prodigypm/orchestrator/internal/gateway"
	"github.com/prodigypm/orchestrator/internal/workflow"
)

// maxRequestBody caps execute-request payloads at 1 MB.
const maxRequestBody = 1 << 20

// executeRequest is the POST /api/v1/tasks/execute payload.
type executeRequest struct {
	WorkflowType string       `json:"workflow_type"`
	Input        agents.Input `json:"input"`
	ProjectID    *int         `json:"project_id,omitempty"`
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read request body")
		return
	}

	var req executeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if req.WorkflowType == "" {
		writeError(w, http.StatusBadRequest, "workflow_type is required")
		return
	}
	if req.Input == nil {
		req.Input = agents.Input{}
	}
	if req.ProjectID != nil {
		req.Input["project_id"] = *req.ProjectID
	}

	run, err := s.engine.Execute(r.Context(), req.WorkflowType, req.Input)
	if err != nil {
		if errors.Is(err, gateway.ErrUnknownAgent) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error().Err(err).Str("workflow_type", req.WorkflowType).Msg("workflow execution failed")
		writeError(w, http.StatusInternalServerError, "workflow execution failed")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gw.BudgetStatus())
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.gw.Usage())
}

func (s *Server) handleAgentStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"agents": s.registry.Statuses(),
	})
}

// handleWorkflowCatalog lists workflow types; with ?describe=<text> it also
// returns the recommended type for that task description.
func (s *Server) handleWorkflowCatalog(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"workflows": workflow.Catalog(),
	}
	if describe := r.URL.Query().Get("describe"); describe != "" {
		resp["recommended"] = workflow.Recommend(describe)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleWorkflowHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	persisted, err := s.engine.PersistedHistory(limit)
	if err != nil {
		log.Warn().Err(err).Msg("persisted history read failed")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"recent":    s.engine.Recent(limit),
		"persisted": persisted,
	})
}

// handleReset clears the ledger and response cache. Admin operation for
// starting a fresh budget session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.gw.Reset()
	log.Info().Msg("budget ledger and response cache reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}
