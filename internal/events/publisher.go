package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/telegram-copilot/briefing-api/pkg/logger"
)

const (
	// StreamName is the name of the generation events stream.
	StreamName = "TRIAGE_EVENTS"

	// SubjectPrefix is the prefix for all generation event subjects.
	SubjectPrefix = "triage"
)

// Event kinds published by the services.
const (
	KindBriefing     = "briefing"
	KindBriefingV2   = "briefing_v2"
	KindSummary      = "summary"
	KindBatchSummary = "batch_summary"
	KindDraft        = "draft"
)

// Event records one completed generation or cache replay.
type Event struct {
	Kind        string    `json:"kind"`
	ChatCount   int       `json:"chat_count"`
	Cached      bool      `json:"cached"`
	DurationMs  int64     `json:"duration_ms"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Publisher emits generation events.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// NopPublisher discards events; used when no broker is configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(context.Context, Event) {}

// JetStreamPublisher publishes events to a JetStream stream.
type JetStreamPublisher struct {
	client *Client
	logger *logger.Logger
}

// NewPublisher creates a JetStream-backed publisher.
func NewPublisher(client *Client, log *logger.Logger) *JetStreamPublisher {
	return &JetStreamPublisher{client: client, logger: log}
}

// EnsureStream ensures the events stream exists.
func (p *JetStreamPublisher) EnsureStream(ctx context.Context) error {
	js := p.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Briefing and summary generation events",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}

	return nil
}

// Publish emits an event, best-effort.
func (p *JetStreamPublisher) Publish(ctx context.Context, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("event marshal failed", zap.String("kind", event.Kind), zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.%s.generated", SubjectPrefix, event.Kind)
	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		p.logger.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
