package refine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/mind-note/internal/llm"
	"github.com/rcliao/mind-note/internal/prompt"
)

// State is the terminal state of one invocation.
type State int

const (
	StateSucceeded State = iota + 1
	StateExhausted
)

func (s State) String() string {
	switch s {
	case StateSucceeded:
		return "succeeded"
	case StateExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Attempt records one generation call.
type Attempt struct {
	N        int
	Err      error
	Duration time.Duration
}

// Outcome is the result of Invoke. Value is set only when State is
// StateSucceeded.
type Outcome struct {
	State    State
	Value    Validated
	Attempts []Attempt
	cause    error
}

// Err returns nil on success, otherwise an error wrapping ErrExhausted and
// the last failure.
func (o Outcome) Err() error {
	if o.State == StateSucceeded {
		return nil
	}
	if o.cause == nil {
		return fmt.Errorf("%w after %d attempts", ErrExhausted, len(o.Attempts))
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrExhausted, len(o.Attempts), o.cause)
}

// Invoker calls the generator under a bounded retry policy and validates
// each response. Attempts run strictly one after another.
type Invoker struct {
	gen llm.Generator
	s   settings
}

// NewInvoker constructs an Invoker for gen.
func NewInvoker(gen llm.Generator, opts ...Option) *Invoker {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return &Invoker{gen: gen, s: s}
}

// MaxAttempts reports the attempt budget.
func (inv *Invoker) MaxAttempts() int { return inv.s.maxAttempts }

// Invoke runs attempts until one validates or the budget is spent. Caller
// cancellation ends the invocation immediately as exhausted.
func (inv *Invoker) Invoke(ctx context.Context, p prompt.Prompt) Outcome {
	log := zerolog.Ctx(ctx)
	out := Outcome{State: StateExhausted}
	for n := 1; n <= inv.s.maxAttempts; n++ {
		if err := ctx.Err(); err != nil {
			out.cause = err
			return out
		}
		start := time.Now()
		value, err := inv.attempt(ctx, p)
		out.Attempts = append(out.Attempts, Attempt{N: n, Err: err, Duration: time.Since(start)})
		if err == nil {
			out.State = StateSucceeded
			out.Value = value
			out.cause = nil
			return out
		}
		out.cause = err
		log.Warn().Err(err).
			Int("attempt", n).
			Int("max_attempts", inv.s.maxAttempts).
			Dur("elapsed", time.Since(start)).
			Msg("refinement attempt failed")

		if ctx.Err() != nil || n == inv.s.maxAttempts {
			return out
		}
		if err := inv.s.sleep(ctx, inv.s.retryDelay); err != nil {
			return out
		}
	}
	return out
}

func (inv *Invoker) attempt(ctx context.Context, p prompt.Prompt) (Validated, error) {
	actx := ctx
	if inv.s.attemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, inv.s.attemptTimeout)
		defer cancel()
	}
	raw, err := inv.gen.Generate(actx, llm.Request{
		Model:       inv.s.model,
		Prompt:      p.Text,
		Temperature: inv.s.temperature,
		MaxTokens:   inv.s.maxTokens,
	})
	if err != nil {
		return Validated{}, fmt.Errorf("generate: %w", err)
	}
	return Decode(raw, inv.s.maxLen)
}
