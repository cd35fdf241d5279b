package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/gjson"
)

// maxResponseSize caps the provider response body read (1MB is generous for
// a chat completion).
const maxResponseSize = 1 * 1024 * 1024

// NVIDIAClient calls the NVIDIA integrate API (OpenAI-compatible chat
// completions).
type NVIDIAClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewNVIDIAClient creates a client for the NVIDIA integrate endpoint.
// An empty timeout uses TimeoutReasoningCall.
func NewNVIDIAClient(apiKey, baseURL string, timeout time.Duration) *NVIDIAClient {
	if baseURL == "" {
		baseURL = "https://integrate.api.nvidia.com/v1"
	}
	if timeout == 0 {
		timeout = TimeoutReasoningCall
	}
	return &NVIDIAClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Name returns the backend identifier.
func (c *NVIDIAClient) Name() string { return "nvidia" }

// HasCredentials reports whether an API key is configured.
func (c *NVIDIAClient) HasCredentials() bool { return c.apiKey != "" }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Call sends a chat-completions request and parses the first choice.
func (c *NVIDIAClient) Call(ctx context.Context, model, systemPrompt, userPrompt string, temperature float64, maxTokens int) (*Completion, error) {
	if c.apiKey == "" {
		return nil, newProviderError(c.Name(), "call", errors.New("missing API key"))
	}

	payload, err := json.Marshal(chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	if err != nil {
		return nil, newProviderError(c.Name(), "marshal request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, newProviderError(c.Name(), "build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, newProviderError(c.Name(), "http", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, newProviderError(c.Name(), "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Debug().
			Int("status", resp.StatusCode).
			Str("model", model).
			Msg("reasoning provider returned non-200")
		return nil, newProviderError(c.Name(), "status", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	text := gjson.GetBytes(body, "choices.0.message.content")
	if !text.Exists() {
		return nil, newProviderError(c.Name(), "parse response", errors.New("no choices in response"))
	}

	return &Completion{
		Text:             text.String(),
		PromptTokens:     int(gjson.GetBytes(body, "usage.prompt_tokens").Int()),
		CompletionTokens: int(gjson.GetBytes(body, "usage.completion_tokens").Int()),
	}, nil
}
