// Package provider implements clients for the remote reasoning service.
//
// DESIGN: Every transport, auth, rate-limit, or parse problem collapses into
// a *ProviderError so the gateway can treat all of them identically (fail
// open to the local fallback). Callers never see raw HTTP details.
package provider

import (
	"context"
	"fmt"
	"time"
)

// TimeoutReasoningCall is the non-negotiable wall-clock ceiling on a single
// remote reasoning call.
const TimeoutReasoningCall = 30 * time.Second

// Client is the reasoning provider capability the gateway consumes.
type Client interface {
	// Name returns the backend identifier (e.g. "nvidia", "bedrock").
	Name() string
	// Call sends a completion request and returns the response text with
	// token usage. Any failure is a *ProviderError.
	Call(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*Completion, error)
}

// Completion is a successful reasoning response.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// TotalTokens returns the combined token count for the call.
func (c *Completion) TotalTokens() int {
	return c.PromptTokens + c.CompletionTokens
}

// ProviderError wraps any remote-call failure: network, auth, timeout,
// non-2xx, or malformed response.
type ProviderError struct {
	Backend string
	Op      string
	Err     error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func newProviderError(backend, op string, err error) *ProviderError {
	return &ProviderError{Backend: backend, Op: op, Err: err}
}
