package providers

import (
	"context"
	"time"
)

// BaseConfig carries the settings shared by all provider implementations.
type BaseConfig struct {
	APIKey  string `json:"api_key,omitempty"`
	BaseURL string `json:"base_url,omitempty"`
	Model   string `json:"model,omitempty"`

	// Per-call timeout, applied through the request context.
	Timeout time.Duration `json:"timeout"`
}

// DefaultConfig returns a BaseConfig with a timeout generous enough for
// long chat-completion calls.
func DefaultConfig() BaseConfig {
	return BaseConfig{
		Timeout: 2 * time.Minute,
	}
}

// Provider is a chat-completion backend used for translation. Retries are
// the caller's responsibility; implementations do one call per Translate.
type Provider interface {
	// Translate sends one prompt pair and returns the raw model output.
	Translate(ctx context.Context, req *Request) (*Response, error)

	// Name identifies the provider in logs.
	Name() string
}

// Request is a single chat-completion call.
type Request struct {
	SystemPrompt string `json:"system_prompt"`
	UserPrompt   string `json:"user_prompt"`
	Temperature  float32
}

// Response is the model output of one call.
type Response struct {
	Text      string `json:"text"`
	Model     string `json:"model,omitempty"`
	TokensIn  int    `json:"tokens_in,omitempty"`
	TokensOut int    `json:"tokens_out,omitempty"`
}
