package handler

import (
	"encoding/json"
	"net/http"

	"github.com/telegram-copilot/briefing-api/internal/middleware"
	"github.com/telegram-copilot/briefing-api/internal/model"
	"github.com/telegram-copilot/briefing-api/internal/service"
	"github.com/telegram-copilot/briefing-api/pkg/logger"
)

// DraftHandler handles reply drafting.
type DraftHandler struct {
	service *service.DraftService
	logger  *logger.Logger
}

// NewDraftHandler creates a new draft handler.
func NewDraftHandler(svc *service.DraftService, log *logger.Logger) *DraftHandler {
	return &DraftHandler{
		service: svc,
		logger:  log,
	}
}

// Generate handles POST /api/draft/generate
func (h *DraftHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.DraftRequest
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
		h.logger.Error("failed to draft reply")
		writeError(w, http.StatusInternalServerError, "failed to draft reply")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
