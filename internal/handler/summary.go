package handler

import (
	"encoding/json"
	"net/http"

	"github.com/telegram-copilot/briefing-api/internal/middleware"
	"github.com/telegram-copilot/briefing-api/internal/model"
	"github.com/telegram-copilot/briefing-api/internal/service"
	"github.com/telegram-copilot/briefing-api/pkg/logger"
)

// SummaryHandler handles summary endpoints.
type SummaryHandler struct {
	service *service.SummaryService
	logger  *logger.Logger
}

// NewSummaryHandler creates a new summary handler.
func NewSummaryHandler(svc *service.SummaryService, log *logger.Logger) *SummaryHandler {
	return &SummaryHandler{
		service: svc,
		logger:  log,
	}
}

// Generate handles POST /api/summary/generate
func (h *SummaryHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.SummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessages(req.Messages); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to generate summary")
		writeError(w, http.StatusInternalServerError, "failed to generate summary")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GenerateBatch handles POST /api/summary/batch
func (h *SummaryHandler) GenerateBatch(w http.ResponseWriter, r *http.Request) {
	var req model.BatchSummaryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateChats(req.Chats); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.GenerateBatch(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to generate batch summaries")
		writeError(w, http.StatusInternalServerError, "failed to generate batch summaries")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ClearCache handles DELETE /api/summary/cache
func (h *SummaryHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	count := h.service.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"cleared": count})
}
