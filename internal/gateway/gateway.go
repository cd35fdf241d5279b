// Package gateway is the single choke point for all reasoning calls.
//
// DESIGN: Every agent goes through Invoke. The order of checks is fixed:
// cache first (free, bypasses everything), then value classification and the
// routing policy, then either the remote provider (cost recorded in the
// ledger) or a deterministic local fallback. Provider failures of any kind
// fail open to the fallback — the reasoning layer must never be the reason a
// workflow run fails. The only error Invoke returns is an unknown agent name,
// which is a programming error and should abort the run.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/prodigypm/orchestrator/internal/budget"
	"github.com/prodigypm/orchestrator/internal/cache"
	"github.com/prodigypm/orchestrator/internal/monitoring"
	"github.com/prodigypm/orchestrator/internal/provider"
	"github.com/prodigypm/orchestrator/internal/routing"
	"github.com/prodigypm/orchestrator/internal/task"
)

// ErrUnknownAgent is returned when an agent has no model mapping. This is
// the one failure Invoke does not recover from.
var ErrUnknownAgent = errors.New("unknown agent")

// Priority of a reasoning request.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// avgTokensPerCall is the fixed estimate for the pre-call affordability
// check. Deliberately not prompt-length based; see the ledger's overshoot
// note.
const avgTokensPerCall = 2000

const systemPrompt = "You are a strategic AI reasoning engine helping coordinate " +
	"multiple AI agents for product management tasks."

// Request describes one reasoning invocation.
type Request struct {
	Agent     string
	Prompt    string
	TaskType  string
	Priority  Priority
	Flags     task.Flags
	MaxTokens int
}

// Result is the outcome of a reasoning invocation.
type Result struct {
	Text       string  `json:"text"`
	ModelUsed  string  `json:"model_used"`
	Tokens     int     `json:"tokens"`
	Cost       float64 `json:"cost"`
	Cached     bool    `json:"cached"`
	ValueScore float64 `json:"value_score"`
	Reason     routing.Reason `json:"routing_reason"`
}

// UsageStats is the aggregate usage view exposed to the HTTP layer.
type UsageStats struct {
	CallsMade         int                          `json:"calls_made"`
	TotalTokens       int                          `json:"total_tokens"`
	CachedResponses   int                          `json:"cached_responses"`
	RecentCallHistory []budget.CallRecord          `json:"recent_call_history"`
	Budget            budget.Status                `json:"budget"`
	PerModelBreakdown map[string]budget.ModelUsage `json:"per_model_breakdown"`
	Counters          map[string]int64             `json:"counters"`
}

// Gateway routes reasoning requests between the remote provider and the
// local fallback, tracking spend in the ledger.
type Gateway struct {
	ledger     *budget.Ledger
	classifier *task.Classifier
	cache      *cache.ResponseCache
	client     provider.Client
	metrics    *monitoring.MetricsCollector

	temperature float64
	degraded    bool // no credentials: always-local from process start
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithDegraded forces always-local mode, used when the provider has no
// credentials.
func WithDegraded() Option {
	return func(g *Gateway) { g.degraded = true }
}

// WithTemperature overrides the sampling temperature for remote calls.
func WithTemperature(t float64) Option {
	return func(g *Gateway) { g.temperature = t }
}

// New creates a Gateway. All collaborators are injected so tests can supply
// a fresh ledger and a fake provider.
func New(ledger *budget.Ledger, respCache *cache.ResponseCache, client provider.Client, metrics *monitoring.MetricsCollector, opts ...Option) *Gateway {
	g := &Gateway{
		ledger:      ledger,
		classifier:  task.NewClassifier(),
		cache:       respCache,
		client:      client,
		metrics:     metrics,
		temperature: 0.7,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.degraded {
		log.Warn().Msg("reasoning provider credentials missing; gateway running in always-local mode")
	}
	return g
}

// Invoke runs one reasoning request through cache, routing, and either the
// remote provider or the local fallback.
func (g *Gateway) Invoke(ctx context.Context, req Request) (*Result, error) {
	g.metrics.RecordInvocation()

	model, ok := ModelFor(req.Agent)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, req.Agent)
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = avgTokensPerCall
	}

	// Cache hit: cost-free, bypasses ledger and policy entirely.
	key := cache.Key(req.Agent, req.Prompt, req.TaskType)
	if entry, hit := g.cache.Get(key); hit {
		g.metrics.RecordCacheHit()
		return &Result{
			Text:      entry.Text,
			ModelUsed: entry.Model,
			Tokens:    entry.PromptTokens + entry.CompletionTokens,
			Cached:    true,
			Reason:    routing.ReasonCached,
		}, nil
	}
	g.metrics.RecordCacheMiss()

	category := task.ParseCategory(req.TaskType)
	score := g.classifier.Score(category, req.Flags)

	decision := routing.Decide(score, g.ledger.RemainingRatio())

	// The affordability pre-check uses a fixed average-token estimate; the
	// critical override keeps its emergency allowance regardless.
	if decision.UseRemote &&
		decision.Reason != routing.ReasonCriticalOverride &&
		!g.ledger.CanAfford(avgTokensPerCall, model) {
		decision = routing.Decision{UseRemote: false, ValueScore: score, Reason: routing.ReasonBudgetExhausted}
	}

	if g.degraded || !decision.UseRemote {
		return g.fallback(req, key, decision), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, provider.TimeoutReasoningCall)
	defer cancel()

	completion, err := g.client.Call(callCtx, model, systemPrompt, req.Prompt, g.temperature, req.MaxTokens)
	if err != nil {
		// Fail open: provider errors never propagate to the caller.
		log.Warn().
			Err(err).
			Str("agent", req.Agent).
			Str("model", model).
			Msg("remote reasoning call failed, using local fallback")
		return g.fallback(req, key, decision), nil
	}

	promptTokens := completion.PromptTokens
	if promptTokens == 0 {
		// Some backends omit usage; estimate so call records stay useful.
		promptTokens = provider.EstimateTokens(req.Prompt)
	}

	cost := g.ledger.RecordCall(req.Agent, model, req.TaskType, promptTokens, completion.CompletionTokens)
	g.metrics.RecordRemoteCall(promptTokens, completion.CompletionTokens)

	g.cache.Put(key, cache.Entry{
		Text:             completion.Text,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completion.CompletionTokens,
	})

	log.Info().
		Str("agent", req.Agent).
		Str("model", model).
		Float64("cost", cost).
		Float64("value_score", score).
		Msg("remote reasoning call recorded")

	return &Result{
		Text:       completion.Text,
		ModelUsed:  model,
		Tokens:     promptTokens + completion.CompletionTokens,
		Cost:       cost,
		ValueScore: score,
		Reason:     decision.Reason,
	}, nil
}

// fallback synthesizes the deterministic zero-cost local response and caches
// it under the same key a remote response would use.
func (g *Gateway) fallback(req Request, key string, decision routing.Decision) *Result {
	g.metrics.RecordFallback()
	text := fallbackResponse(req.Agent, req.Prompt)

	g.cache.Put(key, cache.Entry{Text: text, Model: ModelFallback})

	log.Debug().
		Str("agent", req.Agent).
		Str("reason", string(decision.Reason)).
		Float64("value_score", decision.ValueScore).
		Msg("served local fallback response")

	return &Result{
		Text:       text,
		ModelUsed:  ModelFallback,
		ValueScore: decision.ValueScore,
		Reason:     decision.Reason,
	}
}

// BudgetStatus exposes the ledger status for the HTTP layer.
func (g *Gateway) BudgetStatus() budget.Status { return g.ledger.Status() }

// Usage returns the aggregate usage stats for the HTTP layer.
func (g *Gateway) Usage() UsageStats {
	return UsageStats{
		CallsMade:         g.ledger.CallCount(),
		TotalTokens:       g.ledger.TotalTokens(),
		CachedResponses:   g.cache.Len(),
		RecentCallHistory: g.ledger.History(10),
		Budget:            g.ledger.Status(),
		PerModelBreakdown: g.ledger.PerModelBreakdown(),
		Counters:          g.metrics.Stats(),
	}
}

// Reset clears the ledger and cache. Admin operation.
func (g *Gateway) Reset() {
	g.ledger.Reset()
	g.cache.Reset()
}
