package workflow

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prodigypm/orchestrator/internal/agents"
	"github.com/prodigypm/orchestrator/internal/gateway"
)

// parallelPairs lists agent pairs with no data dependency between them.
// When a planned sequence puts both members adjacent, they run concurrently.
var parallelPairs = [][2]string{
	{"research", "strategy"},
	{"dev", "prototype"},
	{"automation", "gtm"},
}

// defaultAdaptiveSequence is used when the planner's output yields fewer
// than two recognizable agents.
var defaultAdaptiveSequence = []string{"strategy", "research", "dev", "prototype", "gtm"}

// ExecuteAdaptive runs a planner-driven workflow: the reasoning layer picks
// the agent sequence, independent adjacent agents run in parallel, each step
// is quality-scored, and low-quality steps get one corrective re-run.
func (e *Engine) ExecuteAdaptive(ctx context.Context, input agents.Input) (*Run, error) {
	run := &Run{
		WorkflowID:   newWorkflowID(time.Now()),
		WorkflowType: TypeAdaptive,
		ProjectID:    projectID(input),
		Status:       StatusRunning,
		StartedAt:    time.Now(),
	}

	sequence := e.planSequence(ctx, input)
	log.Info().
		Str("workflow_id", run.WorkflowID).
		Strs("planned_sequence", sequence).
		Msg("adaptive workflow planned")

	sc := agents.NewSharedContext()
	for _, group := range groupParallel(sequence) {
		run.Steps = append(run.Steps, e.runGroup(ctx, run.WorkflowID, group, input, sc)...)
	}

	// Single adaptation pass: each below-threshold step is re-run once with
	// a refinement hint. No second pass regardless of the retry's score.
	for i, step := range run.Steps {
		if step.Quality >= e.qualityThreshold || step.Adapted {
			continue
		}
		log.Info().
			Str("workflow_id", run.WorkflowID).
			Str("agent", step.Agent).
			Float64("quality", step.Quality).
			Msg("step below quality threshold, re-running")

		refined := agents.Input{}
		for k, v := range input {
			refined[k] = v
		}
		refined["refinement"] = fmt.Sprintf(
			"The previous attempt scored %.2f on quality. Provide a more complete, structured answer.",
			step.Quality)

		retry := e.runStep(ctx, run.WorkflowID, step.Agent, refined, sc)
		retry.Adapted = true
		run.Steps[i] = retry
	}

	e.finish(run, sc)
	return run, nil
}

// planSequence asks the planner agent for an execution order and extracts
// known agent names from its answer, in order of first mention.
func (e *Engine) planSequence(ctx context.Context, input agents.Input) []string {
	goal := input.Str("feature", input.Str("description", "a product feature"))
	res, err := e.gw.Invoke(ctx, gateway.Request{
		Agent: "planner",
		Prompt: fmt.Sprintf(
			"Plan a multi-agent workflow for this goal: %s\n\n"+
				"Available agents: %s.\n"+
				"List the agents to run, in order, one per line.",
			goal, strings.Join(e.registry.Names(), ", ")),
		TaskType: "orchestration",
	})
	if err != nil {
		return defaultAdaptiveSequence
	}
	sequence := extractAgents(res.Text, e.registry.Names())
	if len(sequence) < 2 {
		return defaultAdaptiveSequence
	}
	return sequence
}

// extractAgents returns the known agent names mentioned in text, deduplicated
// and ordered by first occurrence.
func extractAgents(text string, known []string) []string {
	lower := strings.ToLower(text)
	type mention struct {
		name string
		pos  int
	}
	var found []mention
	for _, name := range known {
		if pos := strings.Index(lower, name); pos >= 0 {
			found = append(found, mention{name, pos})
		}
	}
	for i := range found {
		for j := i + 1; j < len(found); j++ {
			if found[j].pos < found[i].pos {
				found[i], found[j] = found[j], found[i]
			}
		}
	}
	out := make([]string, 0, len(found))
	for _, m := range found {
		out = append(out, m.name)
	}
	return out
}

// groupParallel splits a sequence into execution groups: adjacent agents
// forming a known independent pair share a group, everything else runs alone.
func groupParallel(sequence []string) [][]string {
	var groups [][]string
	for i := 0; i < len(sequence); i++ {
		if i+1 < len(sequence) && isParallelPair(sequence[i], sequence[i+1]) {
			groups = append(groups, []string{sequence[i], sequence[i+1]})
			i++
			continue
		}
		groups = append(groups, []string{sequence[i]})
	}
	return groups
}

func isParallelPair(a, b string) bool {
	for _, pair := range parallelPairs {
		if (pair[0] == a && pair[1] == b) || (pair[0] == b && pair[1] == a) {
			return true
		}
	}
	return false
}

// runGroup executes a group, fanning out when it holds more than one agent.
// Results come back in the group's declared order.
func (e *Engine) runGroup(ctx context.Context, workflowID string, group []string, input agents.Input, sc *agents.SharedContext) []StepResult {
	if len(group) == 1 {
		return []StepResult{e.runStep(ctx, workflowID, group[0], input, sc)}
	}

	results := make([]StepResult, len(group))
	var wg sync.WaitGroup
	for i, name := range group {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i] = e.runStep(ctx, workflowID, name, input, sc)
		}(i, name)
	}
	wg.Wait()
	return results
}

// scoreQuality grades a step result in [0, 1]. A failed step scores zero
// outright; otherwise the score starts at 1.0 and takes deductions for thin
// output.
func scoreQuality(step StepResult) float64 {
	if step.Status == agents.StatusFailed {
		return 0.0
	}
	score := 1.0
	if len(step.Output) == 0 {
		score -= 0.3
	} else if len(step.Output) < 3 {
		score -= 0.2
	}
	if score < 0 {
		score = 0
	}
	return score
}
