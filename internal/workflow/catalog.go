package workflow

import "strings"

// CatalogEntry describes one available workflow type.
type CatalogEntry struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Agents      []string `json:"agents"`
}

// fixedPipelines maps each fixed workflow type to its agent sequence.
// Order matters: downstream agents read upstream outputs from the shared
// context.
var fixedPipelines = map[string][]string{
	TypeFullFeaturePlanning: {
		"strategy", "research", "prioritization", "risk", "regulation",
		"dev", "prototype", "gtm", "automation", "prd",
	},
	TypeResearchAndStrategy: {"research", "strategy", "prioritization"},
	TypeDevPlanning:         {"prioritization", "dev", "prototype"},
	TypeLaunchPlanning:      {"gtm", "automation"},
	TypeComplianceCheck:     {"regulation"},
}

var catalogDescriptions = map[string]string{
	TypeFullFeaturePlanning: "End-to-end feature planning from strategy through PRD",
	TypeResearchAndStrategy: "Market research feeding strategic direction and priorities",
	TypeDevPlanning:         "Prioritized backlog into user stories and prototypes",
	TypeLaunchPlanning:      "Go-to-market plan with automated reporting",
	TypeComplianceCheck:     "Standalone regulatory and compliance review",
	TypeCustom:              "Caller-supplied agent sequence",
	TypeAdaptive:            "Planner-driven sequence with quality-based adaptation",
}

// Catalog lists every workflow type with its agent sequence.
func Catalog() []CatalogEntry {
	ordered := []string{
		TypeFullFeaturePlanning, TypeResearchAndStrategy, TypeDevPlanning,
		TypeLaunchPlanning, TypeComplianceCheck, TypeCustom, TypeAdaptive,
	}
	out := make([]CatalogEntry, 0, len(ordered))
	for _, t := range ordered {
		out = append(out, CatalogEntry{
			Type:        t,
			Description: catalogDescriptions[t],
			Agents:      fixedPipelines[t],
		})
	}
	return out
}

// recommendRules map description keywords to a workflow type; first match
// wins, checked in order.
var recommendRules = []struct {
	keywords []string
	wfType   string
}{
	{[]string{"compliance", "gdpr", "regulat", "legal"}, TypeComplianceCheck},
	{[]string{"launch", "go-to-market", "gtm", "marketing"}, TypeLaunchPlanning},
	{[]string{"story", "stories", "sprint", "backlog", "develop"}, TypeDevPlanning},
	{[]string{"research", "competitor", "market"}, TypeResearchAndStrategy},
	{[]string{"feature", "plan", "prd"}, TypeFullFeaturePlanning},
}

// Recommend picks a workflow type from a free-text task description.
// Unmatched descriptions get the full pipeline.
func Recommend(description string) string {
	d := strings.ToLower(description)
	for _, rule := range recommendRules {
		for _, kw := range rule.keywords {
			if strings.Contains(d, kw) {
				return rule.wfType
			}
		}
	}
	return TypeFullFeaturePlanning
}
