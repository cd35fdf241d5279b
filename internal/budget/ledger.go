// Package budget implements the spend ledger for remote reasoning calls.
//
// DESIGN: Tracks cumulative cost against a fixed total budget. Cost is only
// recorded for calls that actually consumed a paid resource; cached and
// fallback responses are free. The affordability check is an estimate made
// before the call, so the ledger may overshoot the ceiling by at most one
// call's worth of cost.
package budget

import (
	"sync"
	"sync/atomic"
	"time"
)

// Level classifies how much of the budget has been consumed.
type Level string

const (
	LevelHealthy  Level = "healthy"
	LevelModerate Level = "moderate"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

// CallRecord is an immutable entry in the ledger's append-only history.
type CallRecord struct {
	Agent            string    `json:"agent"`
	Model            string    `json:"model"`
	TaskType         string    `json:"task_type"`
	Timestamp        time.Time `json:"timestamp"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	Cost             float64   `json:"cost"`
	CumulativeCost   float64   `json:"cumulative_cost"`
}

// Status is a point-in-time view of the ledger.
type Status struct {
	TotalBudget             float64  `json:"total_budget"`
	UsedBudget              float64  `json:"used_budget"`
	RemainingBudget         float64  `json:"remaining_budget"`
	PercentageUsed          float64  `json:"percentage_used"`
	Level                   Level    `json:"level"`
	EstimatedRemainingCalls float64  `json:"estimated_remaining_calls"`
	Recommendations         []string `json:"recommendations"`
}

// Ledger tracks cumulative spend against a fixed total budget.
// RecordCall is the single mutation point and is safe for concurrent use;
// the atomic nano-dollar accumulator keeps status reads lock-free.
type Ledger struct {
	totalBudget float64

	mu      sync.Mutex
	history []CallRecord

	// Stored as cost * 1e9 (nano-dollars) to use atomic int64 ops.
	usedNano atomic.Int64
}

// NewLedger creates a ledger with the given budget ceiling in USD.
func NewLedger(totalBudget float64) *Ledger {
	return &Ledger{totalBudget: totalBudget}
}

// RecordCall computes the cost of a completed remote call, adds it to the
// used budget, and appends a CallRecord. Returns the cost in USD.
func (l *Ledger) RecordCall(agent, model, taskType string, promptTokens, completionTokens int) float64 {
	totalTokens := promptTokens + completionTokens
	cost := CalculateCost(totalTokens, model)

	l.mu.Lock()
	defer l.mu.Unlock()

	used := l.usedNano.Add(int64(cost * 1e9))
	l.history = append(l.history, CallRecord{
		Agent:            agent,
		Model:            model,
		TaskType:         taskType,
		Timestamp:        time.Now(),
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      totalTokens,
		Cost:             cost,
		CumulativeCost:   float64(used) / 1e9,
	})

	return cost
}

// CanAfford reports whether an estimated call cost fits in the remaining
// budget. Never errors: unknown models price at the conservative default.
func (l *Ledger) CanAfford(estimatedTokens int, model string) bool {
	estimate := CalculateCost(estimatedTokens, model)
	return estimate <= l.totalBudget-l.Used()
}

// Used returns total spend so far in USD.
func (l *Ledger) Used() float64 {
	return float64(l.usedNano.Load()) / 1e9
}

// Remaining returns the unspent budget in USD (never negative).
func (l *Ledger) Remaining() float64 {
	remaining := l.totalBudget - l.Used()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RemainingRatio returns remaining budget as a fraction of the total.
func (l *Ledger) RemainingRatio() float64 {
	if l.totalBudget <= 0 {
		return 0
	}
	return l.Remaining() / l.totalBudget
}

// Status returns the current budget status with level and recommendations.
func (l *Ledger) Status() Status {
	used := l.Used()
	pct := 0.0
	if l.totalBudget > 0 {
		pct = used / l.totalBudget * 100
	}

	l.mu.Lock()
	calls := len(l.history)
	l.mu.Unlock()

	var estRemaining float64
	if calls > 0 && used > 0 {
		estRemaining = (l.totalBudget - used) / (used / float64(calls))
	}
	if estRemaining < 0 {
		estRemaining = 0
	}

	level := levelFor(pct)
	return Status{
		TotalBudget:             l.totalBudget,
		UsedBudget:              used,
		RemainingBudget:         l.totalBudget - used,
		PercentageUsed:          pct,
		Level:                   level,
		EstimatedRemainingCalls: estRemaining,
		Recommendations:         recommendationsFor(level),
	}
}

// History returns up to limit of the most recent call records, newest last.
func (l *Ledger) History(limit int) []CallRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 || limit > len(l.history) {
		limit = len(l.history)
	}
	out := make([]CallRecord, limit)
	copy(out, l.history[len(l.history)-limit:])
	return out
}

// CallCount returns the number of recorded remote calls.
func (l *Ledger) CallCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.history)
}

// TotalTokens returns the sum of tokens across all recorded calls.
func (l *Ledger) TotalTokens() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := 0
	for _, rec := range l.history {
		total += rec.TotalTokens
	}
	return total
}

// PerModelBreakdown aggregates calls, tokens, and cost per model.
func (l *Ledger) PerModelBreakdown() map[string]ModelUsage {
	l.mu.Lock()
	defer l.mu.Unlock()

	breakdown := make(map[string]ModelUsage)
	for _, rec := range l.history {
		usage := breakdown[rec.Model]
		usage.Calls++
		usage.Tokens += rec.TotalTokens
		usage.Cost += rec.Cost
		breakdown[rec.Model] = usage
	}
	return breakdown
}

// ModelUsage aggregates spend for a single model.
type ModelUsage struct {
	Calls  int     `json:"calls"`
	Tokens int     `json:"tokens"`
	Cost   float64 `json:"cost"`
}

// Reset clears spend and history. Admin operation only; outside of Reset the
// used budget is monotonically non-decreasing.
func (l *Ledger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.usedNano.Store(0)
	l.history = nil
}

func levelFor(percentageUsed float64) Level {
	switch {
	case percentageUsed >= 95:
		return LevelCritical
	case percentageUsed >= 85:
		return LevelWarning
	case percentageUsed >= 70:
		return LevelModerate
	default:
		return LevelHealthy
	}
}

func recommendationsFor(level Level) []string {
	switch level {
	case LevelCritical:
		return []string{
			"Budget critical! Use local fallback for all non-critical tasks",
			"Aggressively cache responses",
		}
	case LevelWarning:
		return []string{
			"Budget getting low - prioritize high-value tasks only",
			"Consider batching remaining tasks",
		}
	case LevelModerate:
		return []string{"Budget past 70% - continue smart allocation"}
	default:
		return []string{"Budget healthy - remote reasoning available for high-value tasks"}
	}
}
