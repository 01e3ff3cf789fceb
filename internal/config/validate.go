package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rcliao/mind-note/internal/llm"
	"github.com/rcliao/mind-note/internal/logging"
)

// Validate ensures the configuration is usable. It does not require an API
// key; commands that call the generation service also run ValidateLLM.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateRefine(); err != nil {
		return err
	}
	if c.Store.Path == "" {
		return errors.New("store.path must be set")
	}
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if !logging.ValidFormat(c.Logging.Format) {
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// ValidateLLM reports a missing API key for the configured provider.
func (c *Config) ValidateLLM() error {
	if c.LLM.APIKey != "" {
		return nil
	}
	envs := strings.Join(providerKeyEnv[c.LLM.Provider], " or ")
	path, err := DefaultConfigPath()
	if err != nil {
		path = defaultConfigPath
	}
	return fmt.Errorf("%w: llm.api_key is required. Set %s or edit %s (create with 'mind-note config init')",
		llm.ErrConfiguration, envs, path)
}

func (c *Config) validateLLM() error {
	if _, ok := providerKeyEnv[c.LLM.Provider]; !ok {
		return fmt.Errorf("llm.provider must be one of groq, openai, gemini, got %q", c.LLM.Provider)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	if c.LLM.TimeoutSeconds <= 0 {
		return errors.New("llm.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateRefine() error {
	if c.Refine.MaxAttempts < 1 {
		return errors.New("refine.max_attempts must be at least 1")
	}
	if c.Refine.RetryDelayMS < 0 {
		return errors.New("refine.retry_delay_ms must not be negative")
	}
	if c.Refine.MaxRefinedLength < 1 {
		return errors.New("refine.max_refined_length must be positive")
	}
	if c.Refine.BatchConcurrency < 1 {
		return errors.New("refine.batch_concurrency must be at least 1")
	}
	return nil
}
