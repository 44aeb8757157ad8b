package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/telegram-copilot/briefing-api/internal/events"
	"github.com/telegram-copilot/briefing-api/internal/llm"
	"github.com/telegram-copilot/briefing-api/internal/model"
	"github.com/telegram-copilot/briefing-api/internal/prompt"
	"github.com/telegram-copilot/briefing-api/pkg/logger"
	"github.com/telegram-copilot/briefing-api/pkg/metrics"
)

// DraftService generates draft replies. Drafts are never cached: a draft for
// the same messages should still feel freshly written.
type DraftService struct {
	llmClient llm.Client
	publisher events.Publisher
	model     string
	logger    *logger.Logger
}

// NewDraftService creates a new draft service.
func NewDraftService(llmClient llm.Client, publisher events.Publisher, modelName string, log *logger.Logger) *DraftService {
	return &DraftService{
		llmClient: llmClient,
		publisher: publisher,
		model:     modelName,
		logger:    log,
	}
}

// Generate produces a draft reply for a conversation. Failures surface to the
// caller.
func (s *DraftService) Generate(ctx context.Context, req *model.DraftRequest) (*model.DraftResponse, error) {
	start := time.Now()

	title := llm.Sanitize(req.ChatTitle)
	lines := toLines(req.Messages, prompt.DraftWindow)
	for i := range lines {
		if lines[i].Outgoing {
			lines[i].Sender = "You"
		}
	}

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: prompt.SystemDraft},
			{Role: "user", Content: prompt.DraftUser(title, lines)},
		},
		Temperature: 0.7,
		MaxTokens:   300,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft: %w", err)
	}

	metrics.SummariesTotal.WithLabelValues("draft").Inc()
	s.publisher.Publish(ctx, events.Event{
		Kind:        events.KindDraft,
		ChatCount:   1,
		DurationMs:  time.Since(start).Milliseconds(),
		GeneratedAt: time.Now(),
	})

	return &model.DraftResponse{
		Draft:  strings.TrimSpace(resp.Content),
		ChatID: req.ChatID,
	}, nil
}
