// Package agents defines the specialist agents and the registry that owns
// them. Each agent is a thin shell around a gateway invocation: it builds a
// prompt from the task input and prior outputs in the shared context, and
// shapes the reasoning text into a structured result.
package agents

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prodigypm/orchestrator/internal/gateway"
	"github.com/prodigypm/orchestrator/internal/task"
)

// Input is the task payload handed to an agent. Common keys are
// "description", "feature", and "task_type"; agents ignore keys they do not
// understand.
type Input map[string]any

// Str returns the string value for key, or fallback.
func (in Input) Str(key, fallback string) string {
	if v, ok := in[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// Output is what an agent writes into the shared context after executing.
type Output struct {
	Agent     string         `json:"agent"`
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Result    map[string]any `json:"result"`
	ModelUsed string         `json:"model_used"`
	Cached    bool           `json:"cached"`
	Cost      float64        `json:"cost"`
}

// Lifecycle stages, used for catalog grouping in the HTTP layer.
const (
	StageDiscovery  = "discovery"
	StagePlanning   = "planning"
	StageExecution  = "execution"
	StageLaunch     = "launch"
	StageGovernance = "governance"
)

// Agent statuses as reported by the registry.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusDone    = "completed"
	StatusFailed  = "failed"
)

// promptFunc builds the reasoning prompt from the task input and prior
// outputs. resultFunc shapes the reasoning text into the agent's structured
// result payload.
type promptFunc func(in Input, sc *SharedContext) string
type resultFunc func(text string, in Input) map[string]any

// Agent is one specialist in the orchestration layer.
type Agent struct {
	Name     string
	Goal     string
	Stage    string
	TaskType string
	Flags    task.Flags

	buildPrompt promptFunc
	shapeResult resultFunc

	mu     sync.Mutex
	status string
}

// Status returns the agent's last known execution status.
func (a *Agent) Status() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.status == "" {
		return StatusIdle
	}
	return a.status
}

func (a *Agent) setStatus(s string) {
	a.mu.Lock()
	a.status = s
	a.mu.Unlock()
}

// Execute runs the agent once: build the prompt, invoke the gateway, shape
// the result, and publish it to the shared context under "{name}_output".
// The only error surfaced is an unknown-agent gateway error; reasoning
// degradation is absorbed upstream by the gateway's fallback.
func (a *Agent) Execute(ctx context.Context, gw *gateway.Gateway, in Input, sc *SharedContext) (Output, error) {
	a.setStatus(StatusRunning)

	taskType := in.Str("task_type", a.TaskType)
	prompt := a.buildPrompt(in, sc)
	// An adaptation re-run carries a refinement hint. Prepended so it lands
	// inside the cached prompt prefix: the retry gets its own cache key and
	// is a genuine re-query, not a replay of the first attempt.
	if hint := in.Str("refinement", ""); hint != "" {
		prompt = "Refinement: " + hint + "\n\n" + prompt
	}

	res, err := gw.Invoke(ctx, gateway.Request{
		Agent:    a.Name,
		Prompt:   prompt,
		TaskType: taskType,
		Flags:    a.Flags,
	})
	if err != nil {
		a.setStatus(StatusFailed)
		return Output{}, fmt.Errorf("agent %s: %w", a.Name, err)
	}

	out := Output{
		Agent:     a.Name,
		Status:    StatusDone,
		Timestamp: time.Now(),
		Result:    a.shapeResult(res.Text, in),
		ModelUsed: res.ModelUsed,
		Cached:    res.Cached,
		Cost:      res.Cost,
	}
	sc.Set(a.Name+"_output", out.Result)
	a.setStatus(StatusDone)
	return out, nil
}
