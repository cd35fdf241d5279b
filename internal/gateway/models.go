package gateway

// Model identifiers for the two reasoning tiers. Strategic agents get the
// large Nemotron model; routine agents get the faster 70B model.
const (
	ModelUltra = "nvidia/llama-3.1-nemotron-ultra-253b-v1"
	Model70B   = "meta/llama-3.1-70b-instruct"

	// ModelFallback marks responses synthesized locally at zero cost.
	ModelFallback = "local_fallback"
)

// agentModels assigns each agent a model tier based on task complexity.
var agentModels = map[string]string{
	"strategy":       ModelUltra, // complex strategic reasoning, market analysis
	"research":       Model70B,   // fast data synthesis
	"prioritization": ModelUltra, // multi-factor decision making
	"risk":           ModelUltra, // risk pattern recognition
	"regulation":     ModelUltra, // compliance reasoning
	"dev":            Model70B,   // technical specs, user stories
	"prototype":      Model70B,   // design and UI/UX tasks
	"gtm":            ModelUltra, // launch and market strategy
	"automation":     Model70B,   // routine reporting
	"prd":            ModelUltra, // document synthesis across all outputs
	"planner":        ModelUltra, // adaptive workflow planning
}

// ModelFor returns the model assigned to an agent, or false when the agent
// has no mapping.
func ModelFor(agent string) (string, bool) {
	model, ok := agentModels[agent]
	return model, ok
}
