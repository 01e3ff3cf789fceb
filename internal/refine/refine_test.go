package refine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/rcliao/mind-note/internal/llm"
)

func TestMain(m *testing.M) {
	// genai pulls in opencensus, whose init starts a worker that never exits.
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))
}

type reply struct {
	text string
	err  error
}

// scriptedGenerator replays replies in order and repeats the last one.
type scriptedGenerator struct {
	mu       sync.Mutex
	replies  []reply
	requests []llm.Request
}

func script(replies ...reply) *scriptedGenerator {
	return &scriptedGenerator{replies: replies}
}

func (g *scriptedGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := len(g.requests)
	g.requests = append(g.requests, req)
	if i >= len(g.replies) {
		i = len(g.replies) - 1
	}
	return g.replies[i].text, g.replies[i].err
}

func (g *scriptedGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

// sleepRecorder stands in for real retry pauses.
type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

var errUnavailable = errors.New("service unavailable")

const okJSON = `{"refined":"Tomorrow's shopping list: milk, bread, and eggs.","tags":["#shopping","#daily-log"],"context":"Work Memo","insight":"Set a reminder."}`
