package service

import (
	"context"
	"sort"
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

// BriefingService generates prioritized chat briefings, memoized behind
// content-derived cache keys.
type BriefingService struct {
	llmClient llm.Client
	store     *cache.Store
	publisher events.Publisher
	model     string
	cacheTTL  time.Duration
	logger    *logger.Logger
}

// NewBriefingService creates a new briefing service.
func NewBriefingService(
	llmClient llm.Client,
	store *cache.Store,
	publisher events.Publisher,
	modelName string,
	cacheTTL time.Duration,
	log *logger.Logger,
) *BriefingService {
	return &BriefingService{
		llmClient: llmClient,
		store:     store,
		publisher: publisher,
		model:     modelName,
		cacheTTL:  cacheTTL,
		logger:    log,
	}
}

// briefingModelOutput is the structured output expected from the model for
// the legacy briefing.
type briefingModelOutput struct {
	Category        string   `json:"category"`
	Summary         string   `json:"summary"`
	KeyPoints       []string `json:"key_points"`
	SuggestedAction *string  `json:"suggested_action"`
}

// briefingV2ModelOutput is the structured output expected from the model for
// priority classification.
type briefingV2ModelOutput struct {
	Priority       string  `json:"priority"`
	Summary        string  `json:"summary"`
	SuggestedReply *string `json:"suggested_reply"`
}

// Generate produces the legacy category briefing for a batch of chats.
func (s *BriefingService) Generate(ctx context.Context, req *model.BriefingRequest) (*model.BriefingResponse, error) {
	start := time.Now()

	chatIDs := collectChatIDs(req.Chats)
	key := cache.Fingerprint(cache.NamespaceBriefing, map[string]any{"chat_ids": chatIDs})

	if !req.Regenerate {
		var cached model.BriefingResponse
		if s.store.GetJSON(ctx, key, &cached) {
			metrics.RecordCacheHit(cache.NamespaceBriefing)
			cached.Cached = true
			s.publisher.Publish(ctx, events.Event{
				Kind:        events.KindBriefing,
				ChatCount:   len(req.Chats),
				Cached:      true,
				DurationMs:  time.Since(start).Milliseconds(),
				GeneratedAt: time.Now(),
			})
			return &cached, nil
		}
		metrics.RecordCacheMiss(cache.NamespaceBriefing)
	}

	briefings := fanOut(ctx, req.Chats, s.briefChat)

	resp := &model.BriefingResponse{
		Briefings:   briefings,
		GeneratedAt: time.Now().Unix(),
		Cached:      false,
	}

	s.store.SetJSON(ctx, key, resp, s.cacheTTL)
	s.publisher.Publish(ctx, events.Event{
		Kind:        events.KindBriefing,
		ChatCount:   len(req.Chats),
		DurationMs:  time.Since(start).Milliseconds(),
		GeneratedAt: time.Now(),
	})

	return resp, nil
}

// briefChat generates one legacy briefing; any failure yields the fallback.
func (s *BriefingService) briefChat(ctx context.Context, chat model.ChatContext, _ int) model.ChatBriefing {
	title := llm.Sanitize(chat.ChatTitle)
	lines := toLines(chat.Messages, prompt.BriefingWindow)

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: prompt.SystemBriefing},
			{Role: "user", Content: prompt.BriefingUser(title, chat.ChatType, lines)},
		},
		Temperature:  0.3,
		MaxTokens:    500,
		JSONResponse: true,
	})

	if err != nil {
		s.logger.Error("briefing generation failed",
			zap.Int64("chat_id", chat.ChatID), zap.Error(err))
		return fallbackBriefing(chat)
	}

	var out briefingModelOutput
	if !llm.DecodeJSON(resp.Content, &out) {
		s.logger.Warn("malformed briefing output", zap.Int64("chat_id", chat.ChatID))
		return fallbackBriefing(chat)
	}

	category := normalizePriority(out.Category)
	metrics.BriefingsTotal.WithLabelValues(string(category)).Inc()

	return model.ChatBriefing{
		ChatID:          chat.ChatID,
		ChatTitle:       chat.ChatTitle,
		Category:        category,
		Summary:         out.Summary,
		KeyPoints:       orEmpty(out.KeyPoints),
		SuggestedAction: out.SuggestedAction,
		UnreadCount:     chat.UnreadCountTrailing(),
		LastMessageDate: lastMessageDate(chat),
	}
}

// GenerateV2 produces the priority-partitioned briefing for a batch of chats.
func (s *BriefingService) GenerateV2(ctx context.Context, req *model.BriefingV2Request) (*model.BriefingV2Response, error) {
	start := time.Now()

	chatIDs := collectChatIDs(req.Chats)
	key := cache.Fingerprint(cache.NamespaceBriefingV2, map[string]any{"chat_ids": chatIDs})

	if !req.ForceRefresh {
		var cached model.BriefingV2Response
		if s.store.GetJSON(ctx, key, &cached) {
			metrics.RecordCacheHit(cache.NamespaceBriefingV2)
			cached.Cached = true
			age := cache.FormatAge(cached.GeneratedAt)
			cached.CacheAge = &age
			s.publisher.Publish(ctx, events.Event{
				Kind:        events.KindBriefingV2,
				ChatCount:   len(req.Chats),
				Cached:      true,
				DurationMs:  time.Since(start).Milliseconds(),
				GeneratedAt: time.Now(),
			})
			return &cached, nil
		}
		metrics.RecordCacheMiss(cache.NamespaceBriefingV2)
	}

	results := fanOut(ctx, req.Chats, s.classifyChat)
	resp := aggregate(results)

	s.store.SetJSON(ctx, key, resp, s.cacheTTL)
	s.publisher.Publish(ctx, events.Event{
		Kind:        events.KindBriefingV2,
		ChatCount:   len(req.Chats),
		DurationMs:  time.Since(start).Milliseconds(),
		GeneratedAt: time.Now(),
	})

	return resp, nil
}

// ClearCache invalidates both briefing namespaces. Returns the number of
// entries removed.
func (s *BriefingService) ClearCache(ctx context.Context) int {
	count := s.store.Invalidate(ctx, cache.NamespaceBriefing+":*")
	count += s.store.Invalidate(ctx, cache.NamespaceBriefingV2+":*")
	return count
}

// briefingResult is the per-chat outcome of the v2 fan-out. Every chat yields
// exactly one result: a successful classification or the fallback. The
// aggregator never sees an error.
type briefingResult struct {
	ID              int
	ChatID          int64
	ChatName        string
	ChatType        model.ChatType
	UnreadCount     int
	LastMessage     *string
	LastMessageDate *string
	Priority        model.Priority
	Summary         string
	SuggestedReply  *string
}

// classifyChat runs one v2 classification; any failure yields the fallback
// result so one chat can never abort the batch.
func (s *BriefingService) classifyChat(ctx context.Context, chat model.ChatContext, idx int) briefingResult {
	result := briefingResult{
		ID:              idx + 1,
		ChatID:          chat.ChatID,
		ChatName:        displayName(chat.ChatTitle),
		ChatType:        model.NormalizeChatType(chat.ChatType),
		UnreadCount:     chat.UnreadCountTrailing(),
		LastMessage:     lastMessagePreview(chat),
		LastMessageDate: lastMessageRFC3339(chat),
		Priority:        model.PriorityFYI,
		Summary:         "Unable to analyze this chat",
	}

	title := llm.Sanitize(chat.ChatTitle)
	lines := toLines(chat.Messages, prompt.BriefingV2Window)
	user := prompt.BriefingV2User(
		title,
		string(result.ChatType),
		chat.UnreadCount,
		chat.LastMessageIsOutgoing,
		chat.HasUnansweredQuestion,
		chat.HoursSinceLastActivity,
		chat.IsPrivateChat,
		lines,
	)

	resp, err := s.llmClient.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{
			{Role: "system", Content: prompt.SystemBriefingV2},
			{Role: "user", Content: user},
		},
		Temperature:  0.3,
		MaxTokens:    500,
		JSONResponse: true,
	})
	if err != nil {
		s.logger.Error("chat classification failed",
			zap.Int64("chat_id", chat.ChatID), zap.Error(err))
		return result
	}

	var out briefingV2ModelOutput
	if !llm.DecodeJSON(resp.Content, &out) || out.Summary == "" {
		s.logger.Warn("malformed classification output",
			zap.Int64("chat_id", chat.ChatID))
		return result
	}

	result.Priority = normalizePriority(out.Priority)
	result.Summary = out.Summary
	result.SuggestedReply = out.SuggestedReply
	metrics.BriefingsTotal.WithLabelValues(string(result.Priority)).Inc()

	return result
}

// aggregate partitions per-chat results into the needs-response and FYI lists,
// sorts urgent ahead of needs_reply (stable), and computes statistics. FYI
// items keep input order.
func aggregate(results []briefingResult) *model.BriefingV2Response {
	// Both lists serialize as [] when empty, never null.
	needsResponse := make([]model.ResponseItem, 0, len(results))
	fyiSummaries := make([]model.FYIItem, 0, len(results))
	totalUnread := 0

	for _, r := range results {
		totalUnread += r.UnreadCount

		switch r.Priority {
		case model.PriorityUrgent, model.PriorityNeedsReply:
			needsResponse = append(needsResponse, model.ResponseItem{
				ID:              r.ID,
				ChatID:          r.ChatID,
				ChatName:        r.ChatName,
				ChatType:        r.ChatType,
				UnreadCount:     r.UnreadCount,
				LastMessage:     r.LastMessage,
				LastMessageDate: r.LastMessageDate,
				Priority:        r.Priority,
				Summary:         r.Summary,
				SuggestedReply:  r.SuggestedReply,
			})
		default:
			fyiSummaries = append(fyiSummaries, model.FYIItem{
				ID:              r.ID,
				ChatID:          r.ChatID,
				ChatName:        r.ChatName,
				ChatType:        r.ChatType,
				UnreadCount:     r.UnreadCount,
				LastMessage:     r.LastMessage,
				LastMessageDate: r.LastMessageDate,
				Priority:        model.PriorityFYI,
				Summary:         r.Summary,
			})
		}
	}

	sort.SliceStable(needsResponse, func(i, j int) bool {
		return needsResponse[i].Priority.Rank() < needsResponse[j].Priority.Rank()
	})

	return &model.BriefingV2Response{
		NeedsResponse: needsResponse,
		FYISummaries:  fyiSummaries,
		Stats: model.BriefingStats{
			NeedsResponseCount: len(needsResponse),
			FYICount:           len(fyiSummaries),
			TotalUnread:        totalUnread,
		},
		GeneratedAt: time.Now().Format(time.RFC3339),
		Cached:      false,
	}
}

// fallbackBriefing is the legacy-format placeholder for a failed chat.
func fallbackBriefing(chat model.ChatContext) model.ChatBriefing {
	return model.ChatBriefing{
		ChatID:          chat.ChatID,
		ChatTitle:       chat.ChatTitle,
		Category:        model.PriorityFYI,
		Summary:         "Unable to generate summary",
		KeyPoints:       []string{},
		UnreadCount:     0,
		LastMessageDate: lastMessageDate(chat),
	}
}
