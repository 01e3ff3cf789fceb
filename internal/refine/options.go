package refine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/mind-note/internal/model"
)

const (
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = time.Second
	DefaultAttemptTimeout = 30 * time.Second
	DefaultTemperature    = 0.3
	DefaultMaxTokens      = 1024
	DefaultConcurrency    = 4
)

type settings struct {
	model          string
	temperature    float32
	maxTokens      int
	maxAttempts    int
	retryDelay     time.Duration
	attemptTimeout time.Duration
	maxLen         int
	sleep          func(context.Context, time.Duration) error
	logger         zerolog.Logger
}

func defaultSettings() settings {
	return settings{
		temperature:    DefaultTemperature,
		maxTokens:      DefaultMaxTokens,
		maxAttempts:    DefaultMaxAttempts,
		retryDelay:     DefaultRetryDelay,
		attemptTimeout: DefaultAttemptTimeout,
		maxLen:         model.MaxRefinedLength,
		sleep:          sleepContext,
		logger:         zerolog.Nop(),
	}
}

// Option customizes an Invoker or Pipeline.
type Option func(*settings)

// WithModel sets the model name sent with every request. Empty means the
// generator's own default.
func WithModel(name string) Option {
	return func(s *settings) { s.model = name }
}

// WithTemperature overrides the sampling temperature (defaults to 0.3).
func WithTemperature(t float32) Option {
	return func(s *settings) {
		if t >= 0 {
			s.temperature = t
		}
	}
}

// WithMaxTokens bounds the output length requested from the model.
func WithMaxTokens(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithMaxAttempts overrides the attempt budget (defaults to 3).
func WithMaxAttempts(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the fixed pause between attempts (defaults to 1s).
func WithRetryDelay(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}

// WithAttemptTimeout bounds each generation call. Zero disables the bound.
func WithAttemptTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.attemptTimeout = d
		}
	}
}

// WithMaxRefinedLength sets the rune limit on refined text (defaults to 1000).
func WithMaxRefinedLength(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxLen = n
		}
	}
}

// WithSleeper overrides how retry pauses are performed (useful for tests).
func WithSleeper(fn func(context.Context, time.Duration) error) Option {
	return func(s *settings) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// WithLogger sets the logger used for attempt and fallback events.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
