package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/telegram-copilot/briefing-api/internal/cache"
	"github.com/telegram-copilot/briefing-api/internal/events"
	"github.com/telegram-copilot/briefing-api/internal/llm"
	"github.com/telegram-copilot/briefing-api/internal/model"
	"github.com/telegram-copilot/briefing-api/internal/prompt"
	"github.com/telegram-copilot/briefing-api/pkg/logger"
	"github.com/telegram-copilot/briefing-api/pkg/metrics"
)

// defaultSummaryLength is the character budget hint when the caller omits one.
const defaultSummaryLength = 200

// SummaryService generates single-chat and batch summaries.
type SummaryService struct {
	llmClient llm.Client
	store     *cache.Store
	publisher events.Publisher
	model     string
	cacheTTL  time.Duration
	logger    *logger.Logger
}

// NewSummaryService creates a new summary service.
func NewSummaryService(
	llmClient llm.Client,
	store *cache.Store,
	publisher events.Publisher,
	modelName string,
	cacheTTL time.Duration,
	log *logger.Logger,
) *SummaryService {
	return &SummaryService{
		llmClient: llmClient,
		store:     store,
		publisher: publisher,
		model:     modelName,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

// summaryModelOutput is the structured output expected from the model for
// detailed summaries. Missing optional fields keep their defaults.
type summaryModelOutput struct {
	Summary       string   `json:"summary"`
	KeyPoints     []string `json:"key_points"`
	ActionItems   []string `json:"action_items"`
	Sentiment     string   `json:"sentiment"`
	NeedsResponse bool     `json:"needs_response"`
}

// Generate produces a plain-text summary for one chat. Unlike the batch
// paths, a failed single-chat summary is surfaced to the caller.
func (s *SummaryService) Generate(ctx context.Context, req *model.SummaryRequest) (*model.SummaryResponse, error) {
	start := time.Now()

	messageIDs := make([]int64, len(req.Messages))
	for i, m := range req.Messages {
		messageIDs[i] = m.ID
	}
	key := cache.Fingerprint(cache.NamespaceSummary, map[string]any{
		"chat_id":     req.ChatID,
		"message_ids": messageIDs,
	})

	var cached model.SummaryResponse
	if s.store.GetJSON(ctx, key, &cached) {
		metrics.RecordCacheHit(cache.NamespaceSummary)
		cached.Cached = true
		s.publisher.Publish(ctx, events.Event{
			Kind:        events.KindSummary,
			ChatCount:   1,
			Cached:      true,
			DurationMs:  time.Since(start).Milliseconds(),
			GeneratedAt: time.Now(),
		})
		return &cached, nil
	}
	metrics.RecordCacheMiss(cache.NamespaceSummary)

	maxLength := req.MaxLength
	if maxLength <= 0 {
		maxLength = defaultSummaryLength
	}

	lines := toLines(req.Messages, prompt.SummaryWindow)

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: prompt.SystemSummary},
			{Role: "user", Content: prompt.SummaryUser(maxLength, lines)},
		},
		Temperature: 0.3,
		MaxTokens:   200,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary: %w", err)
	}

	result := &model.SummaryResponse{
		ChatID:      req.ChatID,
		Summary:     strings.TrimSpace(resp.Content),
		GeneratedAt: time.Now().Unix(),
		Cached:      false,
	}

	s.store.SetJSON(ctx, key, result, s.cacheTTL)
	metrics.SummariesTotal.WithLabelValues("single").Inc()
	s.publisher.Publish(ctx, events.Event{
		Kind:        events.KindSummary,
		ChatCount:   1,
		DurationMs:  time.Since(start).Milliseconds(),
		GeneratedAt: time.Now(),
	})

	return result, nil
}

// GenerateBatch produces detailed summaries for a batch of chats, with
// per-chat failure isolation.
func (s *SummaryService) GenerateBatch(ctx context.Context, req *model.BatchSummaryRequest) (*model.BatchSummaryResponse, error) {
	start := time.Now()

	chatIDs := collectChatIDs(req.Chats)
	key := cache.Fingerprint(cache.NamespaceBatchSummary, map[string]any{"chat_ids": chatIDs})

	if !req.Regenerate {
		var cached model.BatchSummaryResponse
		if s.store.GetJSON(ctx, key, &cached) {
			metrics.RecordCacheHit(cache.NamespaceBatchSummary)
			cached.Cached = true
			s.publisher.Publish(ctx, events.Event{
				Kind:        events.KindBatchSummary,
				ChatCount:   len(req.Chats),
				Cached:      true,
				DurationMs:  time.Since(start).Milliseconds(),
				GeneratedAt: time.Now(),
			})
			return &cached, nil
		}
		metrics.RecordCacheMiss(cache.NamespaceBatchSummary)
	}

	summaries := fanOut(ctx, req.Chats, s.summarizeChat)

	resp := &model.BatchSummaryResponse{
		Summaries:   summaries,
		TotalCount:  len(summaries),
		GeneratedAt: time.Now().Unix(),
		Cached:      false,
	}

	s.store.SetJSON(ctx, key, resp, s.cacheTTL)
	s.publisher.Publish(ctx, events.Event{
		Kind:        events.KindBatchSummary,
		ChatCount:   len(req.Chats),
		DurationMs:  time.Since(start).Milliseconds(),
		GeneratedAt: time.Now(),
	})

	return resp, nil
}

// ClearCache invalidates both summary namespaces.
func (s *SummaryService) ClearCache(ctx context.Context) int {
	count := s.store.Invalidate(ctx, cache.NamespaceSummary+":*")
	count += s.store.Invalidate(ctx, cache.NamespaceBatchSummary+":*")
	return count
}

// summarizeChat generates one detailed summary; any failure yields the
// fallback.
func (s *SummaryService) summarizeChat(ctx context.Context, chat model.ChatContext, _ int) model.ChatSummaryResult {
	title := llm.Sanitize(chat.ChatTitle)
	chatType := model.NormalizeChatType(chat.ChatType)
	lines := toLines(chat.Messages, prompt.BatchSummaryWindow)

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: prompt.SystemDetailedSummary},
			{Role: "user", Content: prompt.DetailedSummaryUser(title, string(chatType), lines)},
		},
		Temperature:  0.3,
		MaxTokens:    600,
		JSONResponse: true,
	})
	if err != nil {
		s.logger.Error("chat summary failed",
			zap.Int64("chat_id", chat.ChatID), zap.Error(err))
		return fallbackSummary(chat, chatType)
	}

	out := summaryModelOutput{Sentiment: string(model.SentimentNeutral)}
	if !llm.DecodeJSON(resp.Content, &out) || out.Summary == "" {
		s.logger.Warn("malformed summary output", zap.Int64("chat_id", chat.ChatID))
		return fallbackSummary(chat, chatType)
	}

	metrics.SummariesTotal.WithLabelValues("batch").Inc()

	return model.ChatSummaryResult{
		ChatID:          chat.ChatID,
		ChatTitle:       chat.ChatTitle,
		ChatType:        chatType,
		Summary:         out.Summary,
		KeyPoints:       orEmpty(out.KeyPoints),
		ActionItems:     orEmpty(out.ActionItems),
		Sentiment:       normalizeSentiment(out.Sentiment),
		NeedsResponse:   out.NeedsResponse,
		MessageCount:    len(chat.Messages),
		LastMessageDate: lastMessageDate(chat),
	}
}

// fallbackSummary is the placeholder result for a failed chat summary.
func fallbackSummary(chat model.ChatContext, chatType model.ChatType) model.ChatSummaryResult {
	return model.ChatSummaryResult{
		ChatID:          chat.ChatID,
		ChatTitle:       chat.ChatTitle,
		ChatType:        chatType,
		Summary:         "Unable to generate summary",
		KeyPoints:       []string{},
		ActionItems:     []string{},
		Sentiment:       model.SentimentNeutral,
		NeedsResponse:   false,
		MessageCount:    len(chat.Messages),
		LastMessageDate: lastMessageDate(chat),
	}
}

func normalizeSentiment(raw string) model.Sentiment {
	switch model.Sentiment(raw) {
	case model.SentimentPositive:
		return model.SentimentPositive
	case model.SentimentNegative:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}
