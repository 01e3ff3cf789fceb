// Package llm talks to the external text generation service. A Generator
// performs exactly one request per call; retry policy belongs to callers.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrConfiguration marks a generator that cannot be built from its config.
var ErrConfiguration = errors.New("llm: invalid configuration")

const (
	ProviderGroq   = "groq"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultGroqURL     = "https://api.groq.com/openai/v1/chat/completions"
	DefaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	DefaultGroqModel   = "llama-3.3-70b-versatile"
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"

	defaultHTTPTimeout = 30 * time.Second
)

// Request is a single generation call.
type Request struct {
	Model       string
	Prompt      string
	Temperature float32
	MaxTokens   int
}

// Generator returns the raw text the model produced for one request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider.
type Config struct {
	Provider       string
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// DefaultModel returns the model used when none is configured.
func DefaultModel(provider string) string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderGemini:
		return DefaultGeminiModel
	default:
		return DefaultGroqModel
	}
}

// New builds the generator for cfg.Provider.
func New(ctx context.Context, cfg Config) (Generator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderGroq
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: %s api key required", ErrConfiguration, provider)
	}
	switch provider {
	case ProviderGroq:
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultGroqURL
		}
		return NewChatClient(cfg), nil
	case ProviderOpenAI:
		if cfg.BaseURL == "" {
			cfg.BaseURL = DefaultOpenAIURL
		}
		return NewChatClient(cfg), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("%w: unknown provider %q", ErrConfiguration, cfg.Provider)
	}
}

func timeoutFor(cfg Config) time.Duration {
	if cfg.TimeoutSeconds > 0 {
		return time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	return defaultHTTPTimeout
}
