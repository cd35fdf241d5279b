package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/prodigypm/orchestrator/internal/memory"
	"github.com/prodigypm/orchestrator/internal/task"
)

// Registry owns the specialist agents. It is built once at startup and read
// concurrently by workflow runs; the per-agent status field carries its own
// lock.
type Registry struct {
	agents map[string]*Agent
	mem    *memory.Store
}

// AgentStatus is the catalog entry returned by Statuses.
type AgentStatus struct {
	Name   string `json:"name"`
	Goal   string `json:"goal"`
	Stage  string `json:"stage"`
	Status string `json:"status"`
}

// NewRegistry builds the full agent set. The memory store feeds the risk
// agent's similar-incident lookups.
func NewRegistry(mem *memory.Store) *Registry {
	r := &Registry{agents: make(map[string]*Agent), mem: mem}
	for _, a := range r.buildAgents() {
		r.agents[a.Name] = a
	}
	return r
}

// Get returns the named agent, or false when it does not exist.
func (r *Registry) Get(name string) (*Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Names returns all agent names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.agents))
	for name := range r.agents {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Statuses returns the catalog view of every agent, sorted by name.
func (r *Registry) Statuses() []AgentStatus {
	out := make([]AgentStatus, 0, len(r.agents))
	for _, name := range r.Names() {
		a := r.agents[name]
		out = append(out, AgentStatus{Name: a.Name, Goal: a.Goal, Stage: a.Stage, Status: a.Status()})
	}
	return out
}

func (r *Registry) buildAgents() []*Agent {
	return []*Agent{
		{
			Name:     "strategy",
			Goal:     "Define product vision and strategic direction",
			Stage:    StageDiscovery,
			TaskType: "strategic_planning",
			Flags:    task.Flags{AffectsMultipleAgents: true, HighImpact: true},
			buildPrompt: func(in Input, sc *SharedContext) string {
				return fmt.Sprintf(
					"Analyze the product opportunity and define a strategic approach.\n\n"+
						"Feature: %s\nContext: %s\n\n"+
						"Cover: market positioning, key objectives, success metrics, and major risks to strategy.",
					in.Str("feature", in.Str("description", "unspecified feature")),
					in.Str("context", "none provided"))
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"strategic_analysis": text,
					"feature":            in.Str("feature", in.Str("description", "")),
					"focus_areas":        []string{"market_positioning", "objectives", "success_metrics"},
				}
			},
		},
		{
			Name:     "research",
			Goal:     "Gather market intelligence and user insights",
			Stage:    StageDiscovery,
			TaskType: "user_research",
			buildPrompt: func(in Input, sc *SharedContext) string {
				var b strings.Builder
				fmt.Fprintf(&b, "Research the market and user landscape for: %s\n",
					in.Str("feature", in.Str("description", "the proposed feature")))
				if strat := sc.Output("strategy"); strat != nil {
					fmt.Fprintf(&b, "\nStrategic direction already set: %v\n", strat["strategic_analysis"])
				}
				b.WriteString("\nCover: competitor landscape, user pain points, and market sizing signals.")
				return b.String()
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"research_findings": text,
					"sources":           []string{"competitor_analysis", "user_feedback", "market_signals"},
					"confidence":        "moderate",
				}
			},
		},
		{
			Name:     "prioritization",
			Goal:     "Rank features by value, effort, and risk",
			Stage:    StagePlanning,
			TaskType: "prioritize",
			Flags:    task.Flags{HighImpact: true},
			buildPrompt: func(in Input, sc *SharedContext) string {
				var b strings.Builder
				fmt.Fprintf(&b, "Prioritize the work for: %s\n",
					in.Str("feature", in.Str("description", "the roadmap candidates")))
				if res := sc.Output("research"); res != nil {
					fmt.Fprintf(&b, "\nResearch findings: %v\n", res["research_findings"])
				}
				b.WriteString("\nProduce a ranked list with value/effort rationale per item.")
				return b.String()
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"ranked_items": text,
					"method":       "weighted value/effort",
					"criteria":     []string{"user_impact", "implementation_effort", "risk"},
				}
			},
		},
		{
			Name:     "risk",
			Goal:     "Identify delivery and market risks with mitigations",
			Stage:    StageGovernance,
			TaskType: "risk_analysis",
			Flags:    task.Flags{HighImpact: true},
			buildPrompt: func(in Input, sc *SharedContext) string {
				var b strings.Builder
				fmt.Fprintf(&b, "Assess risks for: %s\n",
					in.Str("feature", in.Str("description", "the initiative")))
				if r.mem != nil {
					similar := r.mem.Search(in.Str("feature", in.Str("description", "")), 3,
						map[string]any{"kind": "workflow_run"})
					for _, hit := range similar {
						fmt.Fprintf(&b, "\nPast related run: %s\n", hit.Text)
					}
				}
				b.WriteString("\nCover: technical, market, and operational risks, each with a mitigation.")
				return b.String()
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"risk_assessment": text,
					"categories":      []string{"technical", "market", "operational"},
					"overall_level":   "moderate",
				}
			},
		},
		{
			Name:     "regulation",
			Goal:     "Check compliance requirements before launch",
			Stage:    StageGovernance,
			TaskType: "compliance_check",
			Flags:    task.Flags{HighImpact: true},
			buildPrompt: func(in Input, sc *SharedContext) string {
				return fmt.Sprintf(
					"Run a compliance review for: %s\n\n"+
						"Check GDPR, SOC2, and accessibility obligations. "+
						"Flag anything that needs legal review before launch.",
					in.Str("feature", in.Str("description", "the product change")))
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"compliance_report":  text,
					"frameworks_checked": []string{"GDPR", "SOC2", "WCAG"},
					"blocking_issues":    0,
				}
			},
		},
		{
			Name:     "dev",
			Goal:     "Translate requirements into user stories and estimates",
			Stage:    StageExecution,
			TaskType: "user_stories",
			buildPrompt: func(in Input, sc *SharedContext) string {
				var b strings.Builder
				fmt.Fprintf(&b, "Write user stories for: %s\n",
					in.Str("feature", in.Str("description", "the planned feature")))
				if pri := sc.Output("prioritization"); pri != nil {
					fmt.Fprintf(&b, "\nPriorities: %v\n", pri["ranked_items"])
				}
				b.WriteString("\nEach story needs acceptance criteria and a point estimate.")
				return b.String()
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"user_stories": text,
					"format":       "as-a/i-want/so-that",
					"estimated":    true,
				}
			},
		},
		{
			Name:     "prototype",
			Goal:     "Produce wireframes and interaction flows",
			Stage:    StageExecution,
			TaskType: "mockup",
			buildPrompt: func(in Input, sc *SharedContext) string {
				var b strings.Builder
				fmt.Fprintf(&b, "Describe prototype screens for: %s\n",
					in.Str("feature", in.Str("description", "the feature")))
				if dev := sc.Output("dev"); dev != nil {
					fmt.Fprintf(&b, "\nUser stories to cover: %v\n", dev["user_stories"])
				}
				b.WriteString("\nCover the primary flow, empty state, and error state.")
				return b.String()
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"mockup_description": text,
					"screens":            []string{"primary_flow", "empty_state", "error_state"},
					"fidelity":           "wireframe",
				}
			},
		},
		{
			Name:     "gtm",
			Goal:     "Plan launch sequencing and go-to-market channels",
			Stage:    StageLaunch,
			TaskType: "launch_plan",
			Flags:    task.Flags{TimeSensitive: true, HighImpact: true},
			buildPrompt: func(in Input, sc *SharedContext) string {
				var b strings.Builder
				fmt.Fprintf(&b, "Build a go-to-market plan for: %s\n",
					in.Str("feature", in.Str("description", "the launch")))
				if strat := sc.Output("strategy"); strat != nil {
					fmt.Fprintf(&b, "\nStrategy context: %v\n", strat["strategic_analysis"])
				}
				b.WriteString("\nCover: launch phases, channels, and messaging.")
				return b.String()
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"gtm_plan": text,
					"phases":   []string{"beta", "announcement", "rollout"},
					"channels": []string{"product_led", "community", "email"},
				}
			},
		},
		{
			Name:     "automation",
			Goal:     "Set up recurring reports and routine workflows",
			Stage:    StageExecution,
			TaskType: "workflow_automation",
			buildPrompt: func(in Input, sc *SharedContext) string {
				return fmt.Sprintf(
					"Define the automated reporting for: %s\n\n"+
						"Include sprint summaries, standup digests, and stakeholder updates.",
					in.Str("feature", in.Str("description", "the project")))
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"automation_setup": text,
					"reports":          []string{"sprint_summary", "standup_digest", "stakeholder_update"},
					"cadence":          "weekly",
				}
			},
		},
		{
			Name:     "prd",
			Goal:     "Assemble the product requirements document from all outputs",
			Stage:    StagePlanning,
			TaskType: "prd_creation",
			Flags:    task.Flags{AffectsMultipleAgents: true, HighImpact: true},
			buildPrompt: func(in Input, sc *SharedContext) string {
				var b strings.Builder
				fmt.Fprintf(&b, "Assemble a PRD for: %s\n\nAvailable workflow outputs:\n",
					in.Str("feature", in.Str("description", "the feature")))
				for _, name := range []string{"strategy", "research", "prioritization", "risk", "regulation", "dev", "prototype", "gtm"} {
					if out := sc.Output(name); out != nil {
						fmt.Fprintf(&b, "- %s: %v\n", name, out)
					}
				}
				b.WriteString("\nSections: overview, goals, requirements, risks, open questions.")
				return b.String()
			},
			shapeResult: func(text string, in Input) map[string]any {
				return map[string]any{
					"prd_document": text,
					"sections":     []string{"overview", "goals", "requirements", "risks", "open_questions"},
					"status":       "draft",
				}
			},
		},
	}
}
