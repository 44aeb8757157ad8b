package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telegram-copilot/briefing-api/internal/events"
	"github.com/telegram-copilot/briefing-api/internal/llm"
	"github.com/telegram-copilot/briefing-api/internal/model"
)

func newBriefingService(t *testing.T, stub *stubLLM) *BriefingService {
	t.Helper()
	return NewBriefingService(stub, newTestStore(t), events.NopPublisher{}, "test-model", 0, testLogger())
}

func chatWith(id int64, title string, messages ...model.ChatMessage) model.ChatContext {
	return model.ChatContext{
		ChatID:    id,
		ChatTitle: title,
		ChatType:  "private",
		Messages:  messages,
	}
}

func msg(id int64, text string, outgoing bool) model.ChatMessage {
	return model.ChatMessage{
		ID:         id,
		SenderName: "Alice",
		Text:       text,
		Date:       1700000000 + id,
		IsOutgoing: outgoing,
	}
}

// classifyByTitle answers v2 classifications with a priority chosen by which
// chat title appears in the prompt.
func classifyByTitle(priorities map[string]string) func(req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return func(req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
		content := userContent(req)
		for title, priority := range priorities {
			if strings.Contains(content, title) {
				if priority == "error" {
					return nil, errors.New("provider down")
				}
				return &llm.CompletionResponse{
					Content: fmt.Sprintf(`{"priority":%q,"summary":"about %s"}`, priority, title),
					Model:   req.Model,
				}, nil
			}
		}
		return &llm.CompletionResponse{Content: `{"priority":"fyi","summary":"misc"}`, Model: req.Model}, nil
	}
}

func TestGenerateV2_PartitionAndOrdering(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{
		"Alpha": "needs_reply",
		"Beta":  "urgent",
		"Gamma": "fyi",
		"Delta": "urgent",
	})}
	svc := newBriefingService(t, stub)

	resp, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{
		Chats: []model.ChatContext{
			chatWith(1, "Alpha", msg(1, "hi", false)),
			chatWith(2, "Beta", msg(2, "urgent thing", false)),
			chatWith(3, "Gamma", msg(3, "fyi", false)),
			chatWith(4, "Delta", msg(4, "also urgent", false)),
		},
	})
	require.NoError(t, err)

	require.Len(t, resp.NeedsResponse, 3)
	require.Len(t, resp.FYISummaries, 1)

	// Urgent chats first, ties in input order, needs_reply after.
	assert.Equal(t, int64(2), resp.NeedsResponse[0].ChatID)
	assert.Equal(t, int64(4), resp.NeedsResponse[1].ChatID)
	assert.Equal(t, int64(1), resp.NeedsResponse[2].ChatID)
	assert.Equal(t, int64(3), resp.FYISummaries[0].ChatID)

	// IDs reflect input position, 1-based.
	assert.Equal(t, 2, resp.NeedsResponse[0].ID)
	assert.Equal(t, 3, resp.FYISummaries[0].ID)

	assert.Equal(t, 3, resp.Stats.NeedsResponseCount)
	assert.Equal(t, 1, resp.Stats.FYICount)
	assert.False(t, resp.Cached)
	assert.Nil(t, resp.CacheAge)
}

func TestGenerateV2_EmptyPartitionsSerializeAsArrays(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{
		"Alpha": "urgent",
		"Beta":  "fyi",
	})}
	svc := newBriefingService(t, stub)

	// All chats land in needs_response; fyi_summaries must be [].
	resp, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{
		Chats: []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))},
	})
	require.NoError(t, err)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fyi_summaries":[]`)
	assert.NotContains(t, string(data), `"fyi_summaries":null`)

	// And the inverse: all fyi, needs_response must be [].
	resp, err = svc.GenerateV2(context.Background(), &model.BriefingV2Request{
		Chats: []model.ChatContext{chatWith(2, "Beta", msg(2, "b", false))},
	})
	require.NoError(t, err)

	data, err = json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"needs_response":[]`)
	assert.NotContains(t, string(data), `"needs_response":null`)
}

func TestGenerateV2_FailureIsolation(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{
		"Alpha": "urgent",
		"Beta":  "error",
		"Gamma": "fyi",
	})}
	svc := newBriefingService(t, stub)

	resp, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{
		Chats: []model.ChatContext{
			chatWith(1, "Alpha", msg(1, "a", false)),
			chatWith(2, "Beta", msg(2, "b", false)),
			chatWith(3, "Gamma", msg(3, "c", false)),
		},
	})
	require.NoError(t, err, "one failed chat must not fail the batch")

	total := len(resp.NeedsResponse) + len(resp.FYISummaries)
	assert.Equal(t, 3, total, "every chat yields a result")

	var failed *model.FYIItem
	for i := range resp.FYISummaries {
		if resp.FYISummaries[i].ChatID == 2 {
			failed = &resp.FYISummaries[i]
		}
	}
	require.NotNil(t, failed, "failed chat lands in fyi_summaries")
	assert.Equal(t, "Unable to analyze this chat", failed.Summary)
	assert.Equal(t, model.PriorityFYI, failed.Priority)
	assert.Equal(t, "Beta", failed.ChatName)
}

func TestGenerateV2_MalformedOutputFallsBack(t *testing.T) {
	stub := &stubLLM{respond: func(req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{Content: "not json at all", Model: req.Model}, nil
	}}
	svc := newBriefingService(t, stub)

	resp, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{
		Chats: []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))},
	})
	require.NoError(t, err)
	require.Len(t, resp.FYISummaries, 1)
	assert.Equal(t, "Unable to analyze this chat", resp.FYISummaries[0].Summary)
}

func TestGenerateV2_CachedReplay(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{"Alpha": "urgent"})}
	svc := newBriefingService(t, stub)

	req := &model.BriefingV2Request{
		Chats: []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))},
	}

	first, err := svc.GenerateV2(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	callsAfterFirst := stub.callCount()

	second, err := svc.GenerateV2(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	require.NotNil(t, second.CacheAge)
	assert.Equal(t, "just now", *second.CacheAge)
	assert.Equal(t, callsAfterFirst, stub.callCount(), "cache hit must not call the model")
	assert.Equal(t, first.NeedsResponse, second.NeedsResponse)
}

func TestGenerateV2_CacheHitPublishesCachedEvent(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{"Alpha": "urgent"})}
	rec := &recordingPublisher{}
	svc := NewBriefingService(stub, newTestStore(t), rec, "test-model", 0, testLogger())

	req := &model.BriefingV2Request{
		Chats: []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))},
	}

	_, err := svc.GenerateV2(context.Background(), req)
	require.NoError(t, err)
	_, err = svc.GenerateV2(context.Background(), req)
	require.NoError(t, err)

	published := rec.published()
	require.Len(t, published, 2)
	assert.Equal(t, events.KindBriefingV2, published[0].Kind)
	assert.False(t, published[0].Cached)
	assert.True(t, published[1].Cached)
	assert.Equal(t, 1, published[1].ChatCount)
}

func TestGenerateV2_ForceRefresh(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{"Alpha": "urgent"})}
	svc := newBriefingService(t, stub)

	chats := []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))}

	_, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{Chats: chats})
	require.NoError(t, err)
	callsAfterFirst := stub.callCount()

	resp, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{Chats: chats, ForceRefresh: true})
	require.NoError(t, err)
	assert.False(t, resp.Cached)
	assert.Greater(t, stub.callCount(), callsAfterFirst, "force refresh must call the model again")
}

func TestGenerateV2_TotalUnreadSumsTrailingRuns(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{"Alpha": "fyi", "Beta": "fyi"})}
	svc := newBriefingService(t, stub)

	resp, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{
		Chats: []model.ChatContext{
			// Trailing inbound run of 2: the outgoing message cuts the run.
			chatWith(1, "Alpha",
				msg(1, "in", false),
				msg(2, "out", true),
				msg(3, "in", false),
				msg(4, "in", false),
			),
			// Outgoing last message: nothing unread.
			chatWith(2, "Beta", msg(5, "in", false), msg(6, "out", true)),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stats.TotalUnread)
}

func TestGenerate_LegacyFormat(t *testing.T) {
	stub := &stubLLM{respond: func(req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{
			Content: `{"category":"urgent","summary":"rent is due","key_points":["rent"],"suggested_action":"reply today"}`,
			Model:   req.Model,
		}, nil
	}}
	svc := newBriefingService(t, stub)

	resp, err := svc.Generate(context.Background(), &model.BriefingRequest{
		Chats: []model.ChatContext{chatWith(1, "Landlord", msg(1, "rent?", false))},
	})
	require.NoError(t, err)
	require.Len(t, resp.Briefings, 1)

	b := resp.Briefings[0]
	assert.Equal(t, model.PriorityUrgent, b.Category)
	assert.Equal(t, "rent is due", b.Summary)
	assert.Equal(t, []string{"rent"}, b.KeyPoints)
	require.NotNil(t, b.SuggestedAction)
	assert.Equal(t, "reply today", *b.SuggestedAction)
	assert.Equal(t, 1, b.UnreadCount)
}

func TestGenerate_CacheAndRegenerate(t *testing.T) {
	stub := &stubLLM{respond: func(req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return &llm.CompletionResponse{Content: `{"category":"fyi","summary":"ok"}`, Model: req.Model}, nil
	}}
	svc := newBriefingService(t, stub)

	req := &model.BriefingRequest{
		Chats: []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))},
	}

	first, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, stub.callCount())

	third, err := svc.Generate(context.Background(), &model.BriefingRequest{Chats: req.Chats, Regenerate: true})
	require.NoError(t, err)
	assert.False(t, third.Cached)
	assert.Equal(t, 2, stub.callCount())
}

func TestGenerate_FallbackOnError(t *testing.T) {
	stub := &stubLLM{respond: func(req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return nil, errors.New("provider down")
	}}
	svc := newBriefingService(t, stub)

	resp, err := svc.Generate(context.Background(), &model.BriefingRequest{
		Chats: []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))},
	})
	require.NoError(t, err)
	require.Len(t, resp.Briefings, 1)

	b := resp.Briefings[0]
	assert.Equal(t, model.PriorityFYI, b.Category)
	assert.Equal(t, "Unable to generate summary", b.Summary)
	assert.Empty(t, b.KeyPoints)
	assert.NotNil(t, b.KeyPoints, "key_points serializes as [] not null")
}

func TestClearCache_OnlyBriefingNamespaces(t *testing.T) {
	stub := &stubLLM{respond: classifyByTitle(map[string]string{"Alpha": "fyi"})}
	store := newTestStore(t)
	svc := NewBriefingService(stub, store, events.NopPublisher{}, "test-model", 0, testLogger())

	chats := []model.ChatContext{chatWith(1, "Alpha", msg(1, "a", false))}
	_, err := svc.GenerateV2(context.Background(), &model.BriefingV2Request{Chats: chats})
	require.NoError(t, err)

	store.SetJSON(context.Background(), "summary:untouched", "keep", 0)

	cleared := svc.ClearCache(context.Background())
	assert.Equal(t, 1, cleared)

	var kept string
	assert.True(t, store.GetJSON(context.Background(), "summary:untouched", &kept))
}
