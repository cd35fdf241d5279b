package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigypm/orchestrator/internal/agents"
)

func TestExtractAgents_OrderedByFirstMention(t *testing.T) {
	known := []string{"dev", "gtm", "research", "strategy"}

	got := extractAgents("First run research, then strategy, and finally dev.", known)
	assert.Equal(t, []string{"research", "strategy", "dev"}, got)

	assert.Empty(t, extractAgents("nothing recognizable here", known))
}

func TestGroupParallel(t *testing.T) {
	tests := []struct {
		name     string
		sequence []string
		groups   [][]string
	}{
		{
			"independent pair fuses",
			[]string{"research", "strategy", "prd"},
			[][]string{{"research", "strategy"}, {"prd"}},
		},
		{
			"pair order reversed still fuses",
			[]string{"strategy", "research"},
			[][]string{{"strategy", "research"}},
		},
		{
			"dependent neighbors stay sequential",
			[]string{"prioritization", "dev", "gtm"},
			[][]string{{"prioritization"}, {"dev"}, {"gtm"}},
		},
		{
			"two pairs back to back",
			[]string{"research", "strategy", "dev", "prototype"},
			[][]string{{"research", "strategy"}, {"dev", "prototype"}},
		},
		{"empty", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.groups, groupParallel(tt.sequence))
		})
	}
}

func TestScoreQuality(t *testing.T) {
	full := map[string]any{"a": 1, "b": 2, "c": 3}

	tests := []struct {
		name string
		step StepResult
		want float64
	}{
		{"failed step scores zero", StepResult{Status: agents.StatusFailed}, 0.0},
		{"rich output full marks", StepResult{Status: agents.StatusDone, Output: full}, 1.0},
		{"empty output penalized", StepResult{Status: agents.StatusDone}, 0.7},
		{"thin output penalized", StepResult{Status: agents.StatusDone, Output: map[string]any{"a": 1}}, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, scoreQuality(tt.step), 1e-9)
		})
	}
}

func TestEngine_ExecuteAdaptive_FollowsPlannedSequence(t *testing.T) {
	// The planner's answer drives the sequence; research+strategy run as a
	// parallel group, dev alone.
	client := &scriptedClient{text: "Run research and strategy together, then dev."}
	engine, _ := newTestEngine(t, client)

	run, err := engine.Execute(context.Background(), TypeAdaptive, agents.Input{
		"feature": "adaptive planning",
	})
	require.NoError(t, err)

	assert.Equal(t, TypeAdaptive, run.WorkflowType)
	assert.Equal(t, StatusCompleted, run.Status)

	names := stepAgents(run.Steps)
	require.Len(t, names, 3)
	assert.ElementsMatch(t, []string{"research", "strategy"}, names[:2])
	assert.Equal(t, "dev", names[2])
}

func TestEngine_ExecuteAdaptive_DefaultSequenceWhenPlanUnusable(t *testing.T) {
	// Planner text mentions no agents, so the default sequence applies.
	client := &scriptedClient{text: "I cannot help with that."}
	engine, _ := newTestEngine(t, client)

	run, err := engine.Execute(context.Background(), TypeAdaptive, agents.Input{
		"feature": "fallback planning",
	})
	require.NoError(t, err)

	assert.Equal(t, len(defaultAdaptiveSequence), len(run.Steps))
	assert.ElementsMatch(t, defaultAdaptiveSequence, stepAgents(run.Steps))
}

func TestEngine_ExecuteAdaptive_LowQualityRetryIsFreshQuery(t *testing.T) {
	// A threshold above any reachable score forces the adaptation pass for
	// every step. Each retry must be a real re-query: the refinement hint
	// changes the prompt prefix, so the retry cannot replay the cached
	// first attempt.
	client := &scriptedClient{text: "Run research then dev."}
	engine, _ := newTestEngine(t, client, WithQualityThreshold(1.5))

	run, err := engine.Execute(context.Background(), TypeAdaptive, agents.Input{
		"feature": "needs rework",
	})
	require.NoError(t, err)

	require.Len(t, run.Steps, 2)
	for _, step := range run.Steps {
		assert.True(t, step.Adapted)
		assert.False(t, step.Cached, "retry replayed the cached first attempt")
	}
	// One planner call, two first attempts, two uncached retries.
	assert.Equal(t, 5, client.calls)
}

func TestEngine_ExecuteAdaptive_HighQualityStepsNotRerun(t *testing.T) {
	client := &scriptedClient{text: "Run research then dev."}
	engine, _ := newTestEngine(t, client)

	run, err := engine.Execute(context.Background(), TypeAdaptive, agents.Input{
		"feature": "no rework needed",
	})
	require.NoError(t, err)

	for _, step := range run.Steps {
		assert.False(t, step.Adapted)
		assert.GreaterOrEqual(t, step.Quality, 0.7)
	}
}
