package provider

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// tokenEstimateRatio is the chars-per-token fallback when no encoder is
// available (encoder data may not be bundled in minimal deployments).
const tokenEstimateRatio = 4

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// EstimateTokens returns an approximate token count for text. Uses the
// cl100k_base encoder when available, otherwise a character-ratio estimate.
// This feeds metrics and fallback usage records only; the budget pre-check
// deliberately uses a fixed per-call average instead.
func EstimateTokens(text string) int {
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding("cl100k_base")
		if err == nil {
			encoder = enc
		}
	})

	if encoder != nil {
		return len(encoder.Encode(text, nil, nil))
	}
	return len(text) / tokenEstimateRatio
}
