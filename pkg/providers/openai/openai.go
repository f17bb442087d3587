// Package openai implements the translation provider on top of any
// OpenAI-compatible chat-completions endpoint. Gemini's compatibility
// endpoint is the default deployment target.
package openai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rclifen122/Office-Document-Translator/pkg/providers"
)

// Config for the OpenAI-compatible provider.
type Config struct {
	providers.BaseConfig
}

// DefaultConfig returns a config pointed at the Gemini compatibility
// endpoint.
func DefaultConfig(apiKey string) Config {
	base := providers.DefaultConfig()
	base.APIKey = apiKey
	base.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	base.Model = "gemini-2.0-flash"
	return Config{BaseConfig: base}
}

// Provider talks to a chat-completions API.
type Provider struct {
	config Config
	client *openai.Client
}

// New creates a provider. The API key may be empty; calls then fail with a
// config error so the caller can degrade instead of crashing at startup.
func New(config Config) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	clientConfig.HTTPClient = &http.Client{
		Timeout: config.Timeout,
	}

	return &Provider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}
}

// Name implements providers.Provider.
func (p *Provider) Name() string {
	return "openai"
}

// Translate performs one chat-completion call.
func (p *Provider) Translate(ctx context.Context, req *providers.Request) (*providers.Response, error) {
	if p.config.APIKey == "" {
		return nil, providers.NewError(providers.ErrCodeConfig, "no API key configured", providers.ErrNoAPIKey)
	}

	messages := []openai.ChatCompletionMessage{}
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.UserPrompt,
	})

	if p.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.Timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.config.Model,
		Messages:    messages,
		Temperature: req.Temperature,
	})
	if err != nil {
		return nil, classifyError(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, providers.NewRetryableError(providers.ErrCodeResponse, "model returned no content", providers.ErrEmptyResponse)
	}

	return &providers.Response{
		Text:      resp.Choices[0].Message.Content,
		Model:     resp.Model,
		TokensIn:  resp.Usage.PromptTokens,
		TokensOut: resp.Usage.CompletionTokens,
	}, nil
}

// classifyError maps go-openai errors onto the provider error taxonomy so
// the retry layer can tell transient failures from permanent ones.
func classifyError(err error) *providers.Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return providers.NewRetryableError(providers.ErrCodeRateLimit, "rate limited", err)
		case apiErr.HTTPStatusCode >= 500:
			return providers.NewRetryableError(providers.ErrCodeAPI, "server error", err)
		case apiErr.HTTPStatusCode == http.StatusUnauthorized,
			apiErr.HTTPStatusCode == http.StatusForbidden:
			return providers.NewError(providers.ErrCodeConfig, "authentication failed", err)
		default:
			return providers.NewError(providers.ErrCodeAPI, "API request rejected", err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500 {
			return providers.NewRetryableError(providers.ErrCodeAPI, "request failed", err)
		}
		return providers.NewError(providers.ErrCodeAPI, "request failed", err)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return providers.NewRetryableError(providers.ErrCodeTimeout, "request timed out", err)
	}

	return providers.WrapError(err, providers.ErrCodeNetwork, "chat completion failed")
}
