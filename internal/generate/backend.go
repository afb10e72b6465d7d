// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/research-agent/pkg/types"
)

// Default model per provider.
const (
	DefaultGroqModel      = "llama-3.3-70b-versatile"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-20250514"
)

const defaultTimeout = 120 * time.Second

// NewBackend returns the Backend selected by cfg.Provider. An empty provider
// means Groq. A missing API key is an error.
func NewBackend(cfg types.AIConfig) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q", providerOrDefault(cfg.Provider))
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch providerOrDefault(cfg.Provider) {
	case types.ProviderGroq:
		return &ChatCompletionsBackend{
			BaseURL:     orDefault(cfg.BaseURL, groqBaseURL),
			APIKey:      cfg.APIKey,
			Model:       orDefault(cfg.Model, DefaultGroqModel),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Client:      client,
		}, nil
	case types.ProviderOpenAI:
		return &ChatCompletionsBackend{
			BaseURL:     orDefault(cfg.BaseURL, openAIBaseURL),
			APIKey:      cfg.APIKey,
			Model:       orDefault(cfg.Model, DefaultOpenAIModel),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Client:      client,
		}, nil
	case types.ProviderAnthropic:
		return &ClaudeBackend{
			APIKey:      cfg.APIKey,
			Model:       orDefault(cfg.Model, DefaultAnthropicModel),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			Client:      client,
		}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}

func providerOrDefault(p types.AIProvider) types.AIProvider {
	if p == "" {
		return types.ProviderGroq
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
