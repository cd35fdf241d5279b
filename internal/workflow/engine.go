package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prodigypm/orchestrator/internal/agents"
	"github.com/prodigypm/orchestrator/internal/gateway"
	"github.com/prodigypm/orchestrator/internal/history"
	"github.com/prodigypm/orchestrator/internal/memory"
	"github.com/prodigypm/orchestrator/internal/monitoring"
)

// ProgressFunc receives each step result as it completes, for live
// streaming. Called synchronously from the run goroutine; implementations
// must not block.
type ProgressFunc func(workflowID string, step StepResult)

// Engine executes workflows against the agent registry.
type Engine struct {
	registry *agents.Registry
	gw       *gateway.Gateway
	mem      *memory.Store
	store    *history.Store
	metrics  *monitoring.MetricsCollector

	qualityThreshold float64
	historyLimit     int
	progress         ProgressFunc

	mu     sync.Mutex
	recent []*Run
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithProgress registers a step-completion callback.
func WithProgress(fn ProgressFunc) EngineOption {
	return func(e *Engine) { e.progress = fn }
}

// WithQualityThreshold overrides the adaptive-mode quality floor.
func WithQualityThreshold(t float64) EngineOption {
	return func(e *Engine) { e.qualityThreshold = t }
}

// WithHistoryLimit caps the in-memory recent-run ring.
func WithHistoryLimit(n int) EngineOption {
	return func(e *Engine) { e.historyLimit = n }
}

// NewEngine wires the workflow engine. The history store may be nil
// (persistence disabled); everything else is required.
func NewEngine(reg *agents.Registry, gw *gateway.Gateway, mem *memory.Store, store *history.Store, metrics *monitoring.MetricsCollector, opts ...EngineOption) *Engine {
	e := &Engine{
		registry:         reg,
		gw:               gw,
		mem:              mem,
		store:            store,
		metrics:          metrics,
		qualityThreshold: 0.7,
		historyLimit:     50,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs a workflow of the given type. Unknown types run as custom
// pipelines built from the input's "agents" list. Step failures, including a
// pipeline entry naming an agent that does not exist, are recorded on the
// step and the run continues.
func (e *Engine) Execute(ctx context.Context, wfType string, input agents.Input) (*Run, error) {
	if wfType == TypeAdaptive {
		return e.ExecuteAdaptive(ctx, input)
	}

	pipeline, resolvedType := e.resolvePipeline(wfType, input)

	run := &Run{
		WorkflowID:   newWorkflowID(time.Now()),
		WorkflowType: resolvedType,
		ProjectID:    projectID(input),
		Status:       StatusRunning,
		StartedAt:    time.Now(),
	}
	log.Info().
		Str("workflow_id", run.WorkflowID).
		Str("workflow_type", resolvedType).
		Strs("pipeline", pipeline).
		Msg("workflow run started")

	sc := agents.NewSharedContext()
	for _, name := range pipeline {
		run.Steps = append(run.Steps, e.runStep(ctx, run.WorkflowID, name, input, sc))
	}

	e.finish(run, sc)
	return run, nil
}

// resolvePipeline maps a workflow type to its agent sequence. Custom (and
// any unknown type) uses the input's "agents" list as-is; names that do not
// resolve to a registered agent surface later as failed steps. An empty list
// falls back to a research-then-strategy pair.
func (e *Engine) resolvePipeline(wfType string, input agents.Input) ([]string, string) {
	if pipeline, ok := fixedPipelines[wfType]; ok {
		return pipeline, wfType
	}

	var requested []string
	switch v := input["agents"].(type) {
	case []string:
		requested = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				requested = append(requested, s)
			}
		}
	}

	if len(requested) == 0 {
		requested = []string{"research", "strategy"}
	}
	return requested, TypeCustom
}

// runStep executes one agent and converts the outcome into a StepResult.
func (e *Engine) runStep(ctx context.Context, workflowID, name string, input agents.Input, sc *agents.SharedContext) StepResult {
	agent, ok := e.registry.Get(name)
	if !ok {
		return e.emitStep(workflowID, StepResult{
			Agent:  name,
			Status: agents.StatusFailed,
			Error:  fmt.Sprintf("agent %s not registered", name),
		})
	}

	started := time.Now()
	out, err := agent.Execute(ctx, e.gw, input, sc)
	step := StepResult{
		Agent:      name,
		DurationMS: time.Since(started).Milliseconds(),
	}
	if err != nil {
		step.Status = agents.StatusFailed
		step.Error = err.Error()
		log.Warn().Err(err).Str("workflow_id", workflowID).Str("agent", name).Msg("workflow step failed")
	} else {
		step.Status = agents.StatusDone
		step.Output = out.Result
		step.Cached = out.Cached
		step.Cost = out.Cost
	}
	step.Quality = scoreQuality(step)
	return e.emitStep(workflowID, step)
}

func (e *Engine) emitStep(workflowID string, step StepResult) StepResult {
	if e.progress != nil {
		e.progress(workflowID, step)
	}
	return step
}

// finish seals the run: summary, status, persistence, and memory indexing.
func (e *Engine) finish(run *Run, sc *agents.SharedContext) {
	run.FinishedAt = time.Now()
	run.Summary = summarize(run.Steps)
	run.SharedContext = sc.Snapshot()

	// Once every declared step has executed the run is complete; per-step
	// outcomes live in the summary counts, not the run status.
	run.Status = StatusCompleted

	e.metrics.RecordWorkflowRun(run.Summary.Completed, run.Summary.Failed)

	e.mu.Lock()
	e.recent = append(e.recent, run)
	if len(e.recent) > e.historyLimit {
		e.recent = e.recent[len(e.recent)-e.historyLimit:]
	}
	e.mu.Unlock()

	e.mem.Add(
		fmt.Sprintf("workflow %s (%s): %d/%d steps completed, agents %v",
			run.WorkflowID, run.WorkflowType, run.Summary.Completed,
			run.Summary.TotalSteps, run.Summary.AgentsUsed),
		map[string]any{"kind": "workflow_run", "workflow_type": run.WorkflowType},
	)

	if e.store != nil {
		e.store.Save(history.Record{
			WorkflowID:   run.WorkflowID,
			WorkflowType: run.WorkflowType,
			Status:       run.Status,
			StartedAt:    run.StartedAt,
			FinishedAt:   run.FinishedAt,
			TotalCost:    run.Summary.TotalCost,
		}, run)
	}

	log.Info().
		Str("workflow_id", run.WorkflowID).
		Str("status", run.Status).
		Int("completed", run.Summary.Completed).
		Int("failed", run.Summary.Failed).
		Float64("total_cost", run.Summary.TotalCost).
		Msg("workflow run finished")
}

// Recent returns up to limit in-memory runs, newest first.
func (e *Engine) Recent(limit int) []*Run {
	e.mu.Lock()
	defer e.mu.Unlock()
	if limit <= 0 || limit > len(e.recent) {
		limit = len(e.recent)
	}
	out := make([]*Run, 0, limit)
	for i := len(e.recent) - 1; i >= len(e.recent)-limit; i-- {
		out = append(out, e.recent[i])
	}
	return out
}

// PersistedHistory returns runs from the SQLite store, newest first.
func (e *Engine) PersistedHistory(limit int) ([]history.Record, error) {
	if e.store == nil {
		return nil, nil
	}
	return e.store.Recent(limit)
}
