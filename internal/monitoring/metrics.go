// Package monitoring provides lightweight in-memory counters for the
// orchestration core.
//
// DESIGN: Atomic counters only; no histograms, no export pipeline. For
// production, export these to Prometheus or similar.
package monitoring

import (
	"sync/atomic"
	"time"
)

// MetricsCollector collects operational metrics for the reasoning gateway
// and workflow engine.
type MetricsCollector struct {
	startedAt time.Time

	// Gateway counters
	invocations atomic.Int64
	remoteCalls atomic.Int64
	fallbacks   atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64

	// Token counters (actual billed usage from the provider)
	promptTokens     atomic.Int64
	completionTokens atomic.Int64

	// Workflow counters
	workflowRuns   atomic.Int64
	stepsCompleted atomic.Int64
	stepsFailed    atomic.Int64
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{startedAt: time.Now()}
}

// RecordInvocation records a gateway invocation.
func (mc *MetricsCollector) RecordInvocation() { mc.invocations.Add(1) }

// RecordRemoteCall records a paid remote reasoning call.
func (mc *MetricsCollector) RecordRemoteCall(promptTokens, completionTokens int) {
	mc.remoteCalls.Add(1)
	mc.promptTokens.Add(int64(promptTokens))
	mc.completionTokens.Add(int64(completionTokens))
}

// RecordFallback records a local fallback response.
func (mc *MetricsCollector) RecordFallback() { mc.fallbacks.Add(1) }

// RecordCacheHit records a response cache hit.
func (mc *MetricsCollector) RecordCacheHit() { mc.cacheHits.Add(1) }

// RecordCacheMiss records a response cache miss.
func (mc *MetricsCollector) RecordCacheMiss() { mc.cacheMisses.Add(1) }

// RecordWorkflowRun records a completed workflow run with its step outcome
// counts.
func (mc *MetricsCollector) RecordWorkflowRun(completed, failed int) {
	mc.workflowRuns.Add(1)
	mc.stepsCompleted.Add(int64(completed))
	mc.stepsFailed.Add(int64(failed))
}

// StartedAt returns when the collector was created.
func (mc *MetricsCollector) StartedAt() time.Time { return mc.startedAt }

// Stats returns current metrics as a flat map.
func (mc *MetricsCollector) Stats() map[string]int64 {
	return map[string]int64{
		"invocations":       mc.invocations.Load(),
		"remote_calls":      mc.remoteCalls.Load(),
		"fallbacks":         mc.fallbacks.Load(),
		"cache_hits":        mc.cacheHits.Load(),
		"cache_misses":      mc.cacheMisses.Load(),
		"prompt_tokens":     mc.promptTokens.Load(),
		"completion_tokens": mc.completionTokens.Load(),
		"workflow_runs":     mc.workflowRuns.Load(),
		"steps_completed":   mc.stepsCompleted.Load(),
		"steps_failed":      mc.stepsFailed.Load(),
	}
}
