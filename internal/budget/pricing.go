package budget

import "strings"

// modelPricingTable maps model identifiers to their USD cost per million
// tokens. Rates are blended (prompt + completion) because the ledger records
// a single token count per call.
var modelPricingTable = map[string]float64{
	"nvidia/llama-3.1-nemotron-ultra-253b-v1": 3.0,
	"nvidia/llama-3.1-nemotron-70b-instruct":  0.9,
	"meta/llama-3.1-70b-instruct":             0.9,
	"meta/llama-3.1-8b-instruct":              0.2,

	// Bedrock model identifiers
	"meta.llama3-1-70b-instruct-v1:0": 0.99,
	"meta.llama3-1-8b-instruct-v1:0":  0.22,
}

// defaultCostPerMTok is used for unknown models (conservative to prevent
// silent overspend).
const defaultCostPerMTok = 3.0

// modelFamilyPricing maps model family prefixes to pricing, used when no
// exact match exists. Longest prefix wins.
var modelFamilyPricing = map[string]float64{
	"nvidia/llama-3.1-nemotron-ultra": 3.0,
	"nvidia/llama-3.1-nemotron":       0.9,
	"meta/llama-3.1-70b":              0.9,
	"meta/llama-3.1":                  0.5,
	"meta.llama3":                     0.99,
}

// CostPerMillionTokens returns the per-million-token rate for a model.
// Tries exact match, then prefix/family match (longest prefix wins), then the
// conservative default. Local fallback responses are free.
func CostPerMillionTokens(model string) float64 {
	if model == "" || model == "local_fallback" {
		return 0
	}
	if rate, ok := modelPricingTable[model]; ok {
		return rate
	}

	bestPrefix := ""
	bestRate := 0.0
	for prefix, rate := range modelFamilyPricing {
		if strings.HasPrefix(model, prefix) && len(prefix) > len(bestPrefix) {
			bestPrefix = prefix
			bestRate = rate
		}
	}
	if bestPrefix != "" {
		return bestRate
	}

	return defaultCostPerMTok
}

// CalculateCost computes the USD cost for a token count on a model.
func CalculateCost(tokens int, model string) float64 {
	return float64(tokens) / 1_000_000 * CostPerMillionTokens(model)
}
