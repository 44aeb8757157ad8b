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

func newDraftHandler(t *testing.T, content string) *DraftHandler {
	t.Helper()
	svc := service.NewDraftService(&fixedLLM{content: content}, events.NopPublisher{}, "test-model", testLogger())
	return NewDraftHandler(svc, testLogger())
}

func TestDraftGenerate_OK(t *testing.T) {
	h := newDraftHandler(t, "Sounds good, see you then!")

	body := `{"chat_id":9,"chat_title":"Alice","messages":[{"id":1,"sender_name":"Alice","text":"friday works?","date":1700000000,"is_outgoing":false}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/draft/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.DraftResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Sounds good, see you then!", resp.Draft)
	assert.Equal(t, int64(9), resp.ChatID)
}

func TestDraftGenerate_EmptyMessages(t *testing.T) {
	h := newDraftHandler(t, "unused")

	req := httptest.NewRequest(http.MethodPost, "/api/draft/generate", strings.NewReader(`{"chat_id":9,"messages":[]}`))
	rec := httptest.NewRecorder()

	h.Generate(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no messages provided")
}
