package gateway

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prodigypm/orchestrator/internal/budget"
	"github.com/prodigypm/orchestrator/internal/cache"
	"github.com/prodigypm/orchestrator/internal/monitoring"
	"github.com/prodigypm/orchestrator/internal/provider"
	"github.com/prodigypm/orchestrator/internal/routing"
	"github.com/prodigypm/orchestrator/internal/task"
)

// stubClient is a scripted provider for gateway tests.
type stubClient struct {
	completion *provider.Completion
	err        error
	calls      int
}

func (s *stubClient) Name() string { return "stub" }

func (s *stubClient) Call(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*provider.Completion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.completion, nil
}

func newTestGateway(totalBudget float64, client provider.Client, opts ...Option) (*Gateway, *budget.Ledger) {
	ledger := budget.NewLedger(totalBudget)
	gw := New(ledger, cache.New(0), client, monitoring.NewMetricsCollector(), opts...)
	return gw, ledger
}

func TestGateway_Invoke_UnknownAgent(t *testing.T) {
	gw, _ := newTestGateway(40, &stubClient{})

	_, err := gw.Invoke(context.Background(), Request{Agent: "nonexistent", Prompt: "p"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownAgent)
}

func TestGateway_Invoke_RemoteForHighValue(t *testing.T) {
	client := &stubClient{completion: &provider.Completion{Text: "analysis", PromptTokens: 100, CompletionTokens: 200}}
	gw, ledger := newTestGateway(40, client)

	res, err := gw.Invoke(context.Background(), Request{
		Agent:    "strategy",
		Prompt:   "plan the roadmap",
		TaskType: "strategic_planning",
	})
	require.NoError(t, err)

	assert.Equal(t, "analysis", res.Text)
	assert.Equal(t, ModelUltra, res.ModelUsed)
	assert.False(t, res.Cached)
	assert.Equal(t, routing.ReasonHighValueBudgetOK, res.Reason)
	assert.Equal(t, 1.0, res.ValueScore)
	assert.Greater(t, res.Cost, 0.0)
	assert.Equal(t, 1, ledger.CallCount())
}

func TestGateway_Invoke_CacheHitIsFreeAndIdempotent(t *testing.T) {
	client := &stubClient{completion: &provider.Completion{Text: "answer", PromptTokens: 100, CompletionTokens: 100}}
	gw, ledger := newTestGateway(40, client)

	req := Request{Agent: "strategy", Prompt: "same prompt", TaskType: "strategic_planning"}

	first, err := gw.Invoke(context.Background(), req)
	require.NoError(t, err)
	require.False(t, first.Cached)

	second, err := gw.Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Zero(t, second.Cost)
	assert.Equal(t, routing.ReasonCached, second.Reason)

	// Exactly one paid call recorded across both invocations.
	assert.Equal(t, 1, ledger.CallCount())
	assert.Equal(t, 1, client.calls)
}

func TestGateway_Invoke_LowValueNeverPays(t *testing.T) {
	client := &stubClient{completion: &provider.Completion{Text: "x"}}
	gw, ledger := newTestGateway(40, client)

	res, err := gw.Invoke(context.Background(), Request{
		Agent:    "automation",
		Prompt:   "fill the template",
		TaskType: "template_filling",
	})
	require.NoError(t, err)

	assert.Equal(t, ModelFallback, res.ModelUsed)
	assert.Equal(t, routing.ReasonLowValueAlwaysLocal, res.Reason)
	assert.Zero(t, res.Cost)
	assert.Zero(t, ledger.Used())
	assert.Zero(t, client.calls)
}

func TestGateway_Invoke_FailsOpenOnProviderError(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"timeout", context.DeadlineExceeded},
		{"server error", errors.New("unexpected status 500")},
		{"malformed response", errors.New("no choices in response")},
		{"missing credentials", errors.New("missing API key")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw, ledger := newTestGateway(40, &stubClient{err: tt.err})

			res, err := gw.Invoke(context.Background(), Request{
				Agent:    "strategy",
				Prompt:   "plan",
				TaskType: "strategic_planning",
			})
			require.NoError(t, err)

			assert.Equal(t, ModelFallback, res.ModelUsed)
			assert.NotEmpty(t, res.Text)
			assert.Zero(t, res.Cost)
			assert.Zero(t, ledger.Used(), "failed calls must not consume budget")
		})
	}
}

func TestGateway_Invoke_DegradedModeStaysLocal(t *testing.T) {
	client := &stubClient{completion: &provider.Completion{Text: "remote"}}
	gw, ledger := newTestGateway(40, client, WithDegraded())

	res, err := gw.Invoke(context.Background(), Request{
		Agent:    "strategy",
		Prompt:   "plan",
		TaskType: "strategic_planning",
	})
	require.NoError(t, err)

	assert.Equal(t, ModelFallback, res.ModelUsed)
	assert.Zero(t, client.calls)
	assert.Zero(t, ledger.Used())
}

func TestGateway_Invoke_BudgetExhaustedDowngrades(t *testing.T) {
	client := &stubClient{completion: &provider.Completion{Text: "x", PromptTokens: 10, CompletionTokens: 10}}
	// Tiny budget: the 2000-token pre-check estimate is unaffordable, and a
	// 0.85-value task has no critical override.
	gw, ledger := newTestGateway(0.000001, client)

	res, err := gw.Invoke(context.Background(), Request{
		Agent:    "research",
		Prompt:   "investigate",
		TaskType: "research",
		Flags:    task.Flags{AffectsMultipleAgents: true, TimeSensitive: true, HighImpact: true},
	})
	require.NoError(t, err)

	assert.Equal(t, ModelFallback, res.ModelUsed)
	assert.Equal(t, routing.ReasonBudgetExhausted, res.Reason)
	assert.Zero(t, ledger.Used())
	assert.Zero(t, client.calls)
}

func TestGateway_Invoke_FallbackIsCached(t *testing.T) {
	gw, _ := newTestGateway(40, &stubClient{err: errors.New("down")})

	req := Request{Agent: "gtm", Prompt: "launch plan", TaskType: "launch_plan"}

	first, err := gw.Invoke(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, ModelFallback, first.ModelUsed)

	second, err := gw.Invoke(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
}

func TestGateway_Invoke_EstimatesPromptTokensWhenUsageMissing(t *testing.T) {
	client := &stubClient{completion: &provider.Completion{Text: "ok", CompletionTokens: 50}}
	gw, ledger := newTestGateway(40, client)

	_, err := gw.Invoke(context.Background(), Request{
		Agent:    "strategy",
		Prompt:   "a prompt long enough to produce a token estimate",
		TaskType: "strategic_planning",
	})
	require.NoError(t, err)

	history := ledger.History(1)
	require.Len(t, history, 1)
	assert.Greater(t, history[0].PromptTokens, 0)
}

func TestGateway_Usage_And_Reset(t *testing.T) {
	client := &stubClient{completion: &provider.Completion{Text: "x", PromptTokens: 10, CompletionTokens: 10}}
	gw, _ := newTestGateway(40, client)

	_, err := gw.Invoke(context.Background(), Request{
		Agent: "strategy", Prompt: "p", TaskType: "strategic_planning",
	})
	require.NoError(t, err)

	usage := gw.Usage()
	assert.Equal(t, 1, usage.CallsMade)
	assert.Equal(t, 1, usage.CachedResponses)
	assert.Len(t, usage.RecentCallHistory, 1)
	assert.Contains(t, usage.PerModelBreakdown, ModelUltra)
	assert.Equal(t, int64(1), usage.Counters["remote_calls"])

	gw.Reset()
	usage = gw.Usage()
	assert.Zero(t, usage.CallsMade)
	assert.Zero(t, usage.CachedResponses)
}

func TestModelFor(t *testing.T) {
	model, ok := ModelFor("strategy")
	require.True(t, ok)
	assert.Equal(t, ModelUltra, model)

	model, ok = ModelFor("research")
	require.True(t, ok)
	assert.Equal(t, Model70B, model)

	_, ok = ModelFor("unmapped")
	assert.False(t, ok)
}

func TestFallbackResponse_KeywordRouting(t *testing.T) {
	assert.Equal(t, fallbackResponses["planner"], fallbackResponse("mystery", "please orchestrate the team"))
	assert.Equal(t, fallbackResponses["strategy"], fallbackResponse("mystery", "quarterly planning review"))
	assert.NotEmpty(t, fallbackResponse("mystery", "unrelated"))
	assert.Equal(t, fallbackResponses["risk"], fallbackResponse("risk", "anything"))
}
