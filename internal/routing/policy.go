// Package routing decides, per task, whether to pay for the remote reasoning
// model or use the local fallback.
//
// DESIGN: The policy is intentionally asymmetric. Strategic and compliance
// reasoning is the differentiator worth paying for, so high-value tasks keep
// access to the remote model deep into the budget, while routine work never
// spends at all. Critical tasks get an emergency allowance down to 10%
// remaining budget, but not below.
package routing

// Reason explains a routing decision.
type Reason string

const (
	ReasonCached                Reason = "cached"
	ReasonHighValueBudgetOK     Reason = "high_value_budget_ok"
	ReasonCriticalOverride      Reason = "high_value_critical_override"
	ReasonMediumBudgetHealthy   Reason = "medium_value_budget_healthy"
	ReasonLowValueAlwaysLocal   Reason = "low_value_always_local"
	ReasonBudgetExhausted       Reason = "budget_exhausted"
)

// Decision is the output of the routing policy for one task.
type Decision struct {
	UseRemote  bool
	ValueScore float64
	Reason     Reason
}

// Value score tier boundaries.
const (
	highValueScore     = 0.8
	criticalValueScore = 1.0
	mediumValueScore   = 0.5
)

// Remaining-budget ratio thresholds.
const (
	highValueBudgetRatio   = 0.3
	criticalBudgetRatio    = 0.1
	mediumValueBudgetRatio = 0.5
)

// Decide returns the routing decision for a task given its value score and
// the fraction of budget remaining. Evaluated top-down, first match wins.
func Decide(valueScore, remainingRatio float64) Decision {
	switch {
	case valueScore >= highValueScore:
		if remainingRatio > highValueBudgetRatio {
			return Decision{UseRemote: true, ValueScore: valueScore, Reason: ReasonHighValueBudgetOK}
		}
		if remainingRatio > criticalBudgetRatio && valueScore >= criticalValueScore {
			return Decision{UseRemote: true, ValueScore: valueScore, Reason: ReasonCriticalOverride}
		}
		return Decision{UseRemote: false, ValueScore: valueScore, Reason: ReasonBudgetExhausted}

	case valueScore >= mediumValueScore:
		if remainingRatio > mediumValueBudgetRatio {
			return Decision{UseRemote: true, ValueScore: valueScore, Reason: ReasonMediumBudgetHealthy}
		}
		return Decision{UseRemote: false, ValueScore: valueScore, Reason: ReasonBudgetExhausted}

	default:
		return Decision{UseRemote: false, ValueScore: valueScore, Reason: ReasonLowValueAlwaysLocal}
	}
}
