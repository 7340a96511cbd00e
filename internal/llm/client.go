// Package llm provides the text-completion clients used by the workflow
// agents. The model is treated as an opaque oracle: transport, auth and
// quota failures surface as errors and abort the run.
package llm

import (
	"context"
	"fmt"
	"time"
)

// Client is the completion interface consumed by the workflow agents.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Provider identifies a completion backend.
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

// ValidProviders lists the supported completion backends.
var ValidProviders = []Provider{ProviderGemini, ProviderOpenAI}

// ClientConfig holds the resolved settings for a completion client.
type ClientConfig struct {
	Provider    Provider
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	Timeout     time.Duration
}

// NewClient builds a completion client for the configured provider.
func NewClient(cfg ClientConfig) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key not configured for provider %s", cfg.Provider)
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiClient(cfg), nil
	case ProviderOpenAI:
		return NewOpenAIClient(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (valid: %v)", cfg.Provider, ValidProviders)
	}
}
