// Package task classifies incoming tasks by how much they benefit from the
// stronger (remote) reasoning path.
package task

// Category is the closed set of task categories. Free-text task types from
// callers are mapped into a Category once, at the gateway boundary, so the
// value taxonomy below is an exhaustive switch instead of string matching.
type Category int

const (
	// CategoryStrategic covers orchestration, strategic planning, risk,
	// prioritization, compliance, and the agent-specific planning types.
	CategoryStrategic Category = iota
	// CategoryAnalytical covers generic research and analysis.
	CategoryAnalytical
	// CategoryMechanical covers formatting, extraction, and templating.
	CategoryMechanical
	// CategoryUnknown is any task type outside the taxonomy; treated as
	// analytical so novel work is neither starved nor overfunded.
	CategoryUnknown
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryStrategic:
		return "strategic"
	case CategoryAnalytical:
		return "analytical"
	case CategoryMechanical:
		return "mechanical"
	default:
		return "unknown"
	}
}

var strategicTypes = map[string]struct{}{
	"orchestration":            {},
	"strategic_planning":       {},
	"prd_creation":             {},
	"risk_analysis":            {},
	"prioritization":           {},
	"prioritize":               {},
	"complex_reasoning":        {},
	"multi_agent_coordination": {},
	"launch_plan":              {},
	"marketing_strategy":       {},
	"pricing":                  {},
	"messaging":                {},
	"gtm":                      {},
	"idea_generation":          {},
	"competitive_analysis":     {},
	"user_research":            {},
	"user_stories":             {},
	"backlog":                  {},
	"mockup":                   {},
	"design":                   {},
	"compliance_check":         {},
	"regulation":               {},
	"workflow_automation":      {},
	"assess":                   {},
}

var analyticalTypes = map[string]struct{}{
	"market_sizing":           {},
	"user_research_synthesis": {},
	"research":                {},
	"analysis":                {},
}

var mechanicalTypes = map[string]struct{}{
	"formatting":        {},
	"simple_extraction": {},
	"data_aggregation":  {},
	"template_filling":  {},
}

// ParseCategory maps a free-text task type into the closed taxonomy.
// Unrecognized types come back as CategoryUnknown.
func ParseCategory(taskType string) Category {
	if _, ok := strategicTypes[taskType]; ok {
		return CategoryStrategic
	}
	if _, ok := analyticalTypes[taskType]; ok {
		return CategoryAnalytical
	}
	if _, ok := mechanicalTypes[taskType]; ok {
		return CategoryMechanical
	}
	return CategoryUnknown
}
