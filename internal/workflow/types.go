// Package workflow coordinates multi-agent runs: fixed pipelines for the
// common product-management flows, and an adaptive mode that asks the
// reasoning layer to plan the agent sequence and self-corrects low-quality
// steps.
package workflow

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/prodigypm/orchestrator/internal/agents"
)

// Workflow type identifiers.
const (
	TypeFullFeaturePlanning = "full_feature_planning"
	TypeResearchAndStrategy = "research_and_strategy"
	TypeDevPlanning         = "dev_planning"
	TypeLaunchPlanning      = "launch_planning"
	TypeComplianceCheck     = "compliance_check"
	TypeCustom              = "custom"
	TypeAdaptive            = "adaptive"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// StepResult records one agent execution inside a run.
type StepResult struct {
	Agent      string         `json:"agent"`
	Status     string         `json:"status"`
	Output     map[string]any `json:"output,omitempty"`
	Error      string         `json:"error,omitempty"`
	Quality    float64        `json:"quality"`
	Cached     bool           `json:"cached"`
	Cost       float64        `json:"cost"`
	DurationMS int64          `json:"duration_ms"`
	Adapted    bool           `json:"adapted,omitempty"`
}

// Summary aggregates a finished run.
type Summary struct {
	TotalSteps int      `json:"total_steps"`
	Completed  int      `json:"completed"`
	Failed     int      `json:"failed"`
	AgentsUsed []string `json:"agents_used"`
	TotalCost  float64  `json:"total_cost"`
}

// Run is one workflow execution, fixed or adaptive.
type Run struct {
	WorkflowID    string         `json:"workflow_id"`
	WorkflowType  string         `json:"workflow_type"`
	ProjectID     int            `json:"project_id,omitempty"`
	Status        string         `json:"status"`
	StartedAt     time.Time      `json:"started_at"`
	FinishedAt    time.Time      `json:"finished_at"`
	Steps         []StepResult   `json:"steps"`
	Summary       Summary        `json:"summary"`
	SharedContext map[string]any `json:"shared_context,omitempty"`
}

// newWorkflowID builds IDs like wf_20250901T120000_a1b2c3d4: sortable by
// start time, unique via the UUID suffix.
func newWorkflowID(now time.Time) string {
	return fmt.Sprintf("wf_%s_%s", now.UTC().Format("20060102T150405"), uuid.NewString()[:8])
}

// projectID pulls an optional project identifier out of the task input.
// JSON-decoded numbers arrive as float64.
func projectID(in agents.Input) int {
	switch v := in["project_id"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	default:
		return 0
	}
}

// summarize computes the run summary from its steps.
func summarize(steps []StepResult) Summary {
	s := Summary{TotalSteps: len(steps)}
	seen := map[string]bool{}
	for _, step := range steps {
		if step.Status == agents.StatusDone {
			s.Completed++
		} else {
			s.Failed++
		}
		if !seen[step.Agent] {
			seen[step.Agent] = true
			s.AgentsUsed = append(s.AgentsUsed, step.Agent)
		}
		s.TotalCost += step.Cost
	}
	return s
}
