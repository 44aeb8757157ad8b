package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/telegram-copilot/briefing-api/internal/cache"
	"github.com/telegram-copilot/briefing-api/internal/events"
	"github.com/telegram-copilot/briefing-api/internal/llm"
	"github.com/telegram-copilot/briefing-api/pkg/logger"
)

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) published() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

// stubLLM answers completions from a respond function. Safe for concurrent use
// by the fan-out.
type stubLLM struct {
	mu      sync.Mutex
	calls   int
	lastReq *llm.CompletionRequest
	respond func(req *llm.CompletionRequest) (*llm.CompletionResponse, error)
}

func (s *stubLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	s.calls++
	s.lastReq = req
	s.mu.Unlock()

	if s.respond != nil {
		return s.respond(req)
	}
	return &llm.CompletionResponse{Content: "{}", Model: req.Model}, nil
}

func (s *stubLLM) Name() string { return "stub" }

func (s *stubLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return cache.NewStore(client, time.Hour, testLogger())
}

func testLogger() *logger.Logger {
	return &logger.Logger{Logger: zap.NewNop()}
}

// userContent returns the content of the user-role message in a request.
func userContent(req *llm.CompletionRequest) string {
	for _, m := range req.Messages {
		if m.Role == "user" {
			return m.Content
		}
	}
	return ""
}
