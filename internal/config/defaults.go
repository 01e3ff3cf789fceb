package config

import "github.com/rcliao/mind-note/internal/llm"

const (
	defaultConfigPath       = "~/.config/mind-note/config.toml"
	defaultStorePath        = "~/.mind-note/memos.db"
	defaultServerBind       = "127.0.0.1:8787"
	defaultTemperature      = 0.3
	defaultMaxTokens        = 1024
	defaultTimeoutSeconds   = 30
	defaultMaxAttempts      = 3
	defaultRetryDelayMS     = 1000
	defaultMaxRefinedLength = 1000
	defaultBatchConcurrency = 4
	defaultLogLevel         = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		LLM: LLM{
			Temperature:    defaultTemperature,
			MaxTokens:      defaultMaxTokens,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Refine: Refine{
			MaxAttempts:      defaultMaxAttempts,
			RetryDelayMS:     defaultRetryDelayMS,
			MaxRefinedLength: defaultMaxRefinedLength,
			BatchConcurrency: defaultBatchConcurrency,
		},
		Store: Store{Path: defaultStorePath},
		Server: Server{
			Bind:           defaultServerBind,
			AllowedOrigins: []string{"*"},
		},
		Logging: Logging{Level: defaultLogLevel},
	}
}

// providerKeyEnv lists the environment variables consulted for each
// provider's API key, in order.
var providerKeyEnv = map[string][]string{
	llm.ProviderGroq:   {"GROQ_API_KEY"},
	llm.ProviderOpenAI: {"OPENAI_API_KEY"},
	llm.ProviderGemini: {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// providerOrder decides which provider an unconfigured install picks when
// several keys are present.
var providerOrder = []string{llm.ProviderGroq, llm.ProviderOpenAI, llm.ProviderGemini}
