package refine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/mind-note/internal/language"
	"github.com/rcliao/mind-note/internal/llm"
	"github.com/rcliao/mind-note/internal/prompt"
)

func newTestInvoker(gen llm.Generator, sleeper *sleepRecorder, opts ...Option) *Invoker {
	base := []Option{WithSleeper(sleeper.sleep), WithModel("test-model")}
	return NewInvoker(gen, append(base, opts...)...)
}

func TestInvokeSucceedsFirstAttempt(t *testing.T) {
	gen := script(reply{text: okJSON})
	sleeper := &sleepRecorder{}
	inv := newTestInvoker(gen, sleeper)

	p := prompt.Build(language.English, "need buy milk bread eggs tmrw")
	out := inv.Invoke(context.Background(), p)

	require.Equal(t, StateSucceeded, out.State)
	require.NoError(t, out.Err())
	assert.Len(t, out.Attempts, 1)
	assert.Empty(t, sleeper.delays)
	assert.Equal(t, "Work Memo", out.Value.Context)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, p.Text, req.Prompt)
	assert.Equal(t, "test-model", req.Model)
	assert.InDelta(t, 0.3, req.Temperature, 1e-6)
	assert.Equal(t, 1024, req.MaxTokens)
}

func TestInvokeRetriesWithFixedDelay(t *testing.T) {
	gen := script(
		reply{err: errUnavailable},
		reply{text: "not json at all"},
		reply{text: okJSON},
	)
	sleeper := &sleepRecorder{}
	inv := newTestInvoker(gen, sleeper)

	p := prompt.Build(language.English, "memo")
	out := inv.Invoke(context.Background(), p)

	require.Equal(t, StateSucceeded, out.State)
	assert.Len(t, out.Attempts, 3)
	assert.ErrorIs(t, out.Attempts[0].Err, errUnavailable)
	assert.ErrorIs(t, out.Attempts[1].Err, ErrInvalidOutput)
	assert.NoError(t, out.Attempts[2].Err)
	assert.Equal(t, []time.Duration{time.Second, time.Second}, sleeper.delays)

	for _, req := range gen.requests {
		assert.Equal(t, p.Text, req.Prompt)
	}
}

func TestInvokeExhaustsBudget(t *testing.T) {
	gen := script(reply{err: errUnavailable})
	sleeper := &sleepRecorder{}
	inv := newTestInvoker(gen, sleeper)

	out := inv.Invoke(context.Background(), prompt.Build(language.English, "memo"))

	assert.Equal(t, StateExhausted, out.State)
	assert.Equal(t, 3, gen.calls())
	assert.Len(t, out.Attempts, 3)
	assert.Len(t, sleeper.delays, 2)
	err := out.Err()
	assert.ErrorIs(t, err, ErrExhausted)
	assert.ErrorIs(t, err, errUnavailable)
}

func TestInvokeOversizeIsRetriedNotTruncated(t *testing.T) {
	gen := script(reply{text: `{"refined":"way too long","tags":["#memo"],"context":"Idea"}`})
	sleeper := &sleepRecorder{}
	inv := newTestInvoker(gen, sleeper, WithMaxRefinedLength(5), WithMaxAttempts(2))

	out := inv.Invoke(context.Background(), prompt.Build(language.English, "memo"))
	assert.Equal(t, StateExhausted, out.State)
	assert.Equal(t, 2, gen.calls())
	assert.ErrorIs(t, out.Err(), ErrInvalidOutput)
}

func TestInvokeCustomBudgetAndDelay(t *testing.T) {
	gen := script(reply{err: errUnavailable})
	sleeper := &sleepRecorder{}
	inv := newTestInvoker(gen, sleeper, WithMaxAttempts(5), WithRetryDelay(250*time.Millisecond))

	out := inv.Invoke(context.Background(), prompt.Build(language.English, "memo"))
	assert.Equal(t, StateExhausted, out.State)
	assert.Equal(t, 5, gen.calls())
	assert.Equal(t, 5, inv.MaxAttempts())
	for _, d := range sleeper.delays {
		assert.Equal(t, 250*time.Millisecond, d)
	}
}

func TestInvokeCancelledBeforeStart(t *testing.T) {
	gen := script(reply{text: okJSON})
	inv := newTestInvoker(gen, &sleepRecorder{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := inv.Invoke(ctx, prompt.Build(language.English, "memo"))

	assert.Equal(t, StateExhausted, out.State)
	assert.Zero(t, gen.calls())
	assert.ErrorIs(t, out.Err(), context.Canceled)
}

func TestInvokeCancelledDuringBackoff(t *testing.T) {
	gen := script(reply{err: errUnavailable})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	inv := NewInvoker(gen, WithSleeper(func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}))

	out := inv.Invoke(ctx, prompt.Build(language.English, "memo"))
	assert.Equal(t, StateExhausted, out.State)
	assert.Equal(t, 1, gen.calls())
}

// blockingGenerator waits for its context, like a stalled HTTP call.
type blockingGenerator struct{ calls int }

func (b *blockingGenerator) Generate(ctx context.Context, _ llm.Request) (string, error) {
	b.calls++
	<-ctx.Done()
	return "", ctx.Err()
}

func TestInvokePerAttemptTimeout(t *testing.T) {
	gen := &blockingGenerator{}
	sleeper := &sleepRecorder{}
	inv := newTestInvoker(gen, sleeper, WithAttemptTimeout(10*time.Millisecond))

	out := inv.Invoke(context.Background(), prompt.Build(language.English, "memo"))
	assert.Equal(t, StateExhausted, out.State)
	assert.Equal(t, 3, gen.calls)
	for _, a := range out.Attempts {
		assert.ErrorIs(t, a.Err, context.DeadlineExceeded)
	}
}

func TestRealSleeperHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := sleepContext(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)

	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "succeeded", StateSucceeded.String())
	assert.Equal(t, "exhausted", StateExhausted.String())
	assert.Equal(t, "unknown", State(0).String())
}
