package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telegram-copilot/briefing-api/internal/events"
	"github.com/telegram-copilot/briefing-api/internal/model"
	"github.com/telegram-copilot/briefing-api/internal/service"
)

func newSummaryHandler(t *testing.T, content string) *SummaryHandler {
	t.Helper()
	svc := service.NewSummaryService(&fixedLLM{content: content}, newTestStore(t), events.NopPublisher{}, "test-model", 0, testLogger())
	return NewSummaryHandler(svc, testLogger())
}

func TestSummaryGenerate_OK(t *testing.T) {
	h := newSummaryHandler(t, "They agreed to meet Friday.")

	body := `{"chat_id":7,"messages":[{"id":1,"sender_name":"Alice","text":"friday?","date":1700000000,"is_outgoing":false}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/summary/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.SummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "They agreed to meet Friday.", resp.Summary)
	assert.Equal(t, int64(7), resp.ChatID)
}

func TestSummaryGenerate_EmptyMessages(t *testing.T) {
	h := newSummaryHandler(t, "unused")

	req := httptest.NewRequest(http.MethodPost, "/api/summary/generate", strings.NewReader(`{"chat_id":7,"messages":[]}`))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no messages provided")
}

func TestSummaryBatch_EmptyChats(t *testing.T) {
	h := newSummaryHandler(t, "unused")

	req := httptest.NewRequest(http.MethodPost, "/api/summary/batch", strings.NewReader(`{"chats":[]}`))
	rec := httptest.NewRecorder()

	h.GenerateBatch(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSummaryBatch_OK(t *testing.T) {
	h := newSummaryHandler(t, `{"summary":"trip planning","sentiment":"positive"}`)

	body := `{"chats":[{"chat_id":1,"chat_title":"Trip","chat_type":"group","messages":[{"id":1,"sender_name":"Alice","text":"june?","date":1700000000,"is_outgoing":false}]}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/summary/batch", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.GenerateBatch(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.BatchSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Summaries, 1)
	assert.Equal(t, "trip planning", resp.Summaries[0].Summary)
	assert.Equal(t, model.ChatTypeGroup, resp.Summaries[0].ChatType)
}
