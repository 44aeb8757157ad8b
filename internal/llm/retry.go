package llm

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/telegram-copilot/briefing-api/pkg/logger"
	"github.com/telegram-copilot/briefing-api/pkg/metrics"
)

const (
	maxAttempts       = 3
	initialRetryDelay = 1 * time.Second
)

// RetryClient wraps a Client with bounded exponential backoff. Rate limits and
// server-side failures are retried; other client errors fail immediately.
type RetryClient struct {
	inner  Client
	logger *logger.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryClient wraps an LLM client with the retry policy.
func NewRetryClient(inner Client, log *logger.Logger) *RetryClient {
	return &RetryClient{
		inner:  inner,
		logger: log,
		sleep:  sleepContext,
	}
}

// Name returns the wrapped provider name.
func (c *RetryClient) Name() string {
	return c.inner.Name()
}

// Complete issues the request, retrying transient provider failures up to the
// attempt cap with doubling delays. The last error is surfaced on exhaustion.
func (c *RetryClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	var lastErr error
	delay := initialRetryDelay

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		resp, err := c.inner.Complete(ctx, req)
		if err == nil {
			metrics.RecordLLMCall(resp.Model, "success", float64(resp.LatencyMs)/1000.0, resp.TokensIn, resp.TokensOut)
			return resp, nil
		}

		lastErr = err
		reason, retryable := classify(err)
		if !retryable || attempt == maxAttempts {
			metrics.RecordLLMCall(req.Model, "error", 0, 0, 0)
			return nil, lastErr
		}

		c.logger.Warn("LLM call failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", maxAttempts),
			zap.String("reason", reason),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		metrics.LLMRetriesTotal.WithLabelValues(reason).Inc()

		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}

	return nil, lastErr
}

// classify decides whether an error is retryable and names the reason.
func classify(err error) (string, bool) {
	var provErr *ProviderError
	if errors.As(err, &provErr) {
		switch {
		case provErr.RateLimited():
			return "rate_limit", true
		case provErr.ServerError():
			return "server_error", true
		default:
			return "client_error", false
		}
	}
	// Transport-level failures (timeouts, connection resets) are retryable.
	return "transport", true
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
