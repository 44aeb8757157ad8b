// Package handler provides HTTP handlers for the API.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/telegram-copilot/briefing-api/internal/middleware"
	"github.com/telegram-copilot/briefing-api/internal/model"
	"github.com/telegram-copilot/briefing-api/internal/service"
	"github.com/telegram-copilot/briefing-api/pkg/logger"
)

// BriefingHandler handles briefing endpoints.
type BriefingHandler struct {
	service *service.BriefingService
	logger  *logger.Logger
}

// NewBriefingHandler creates a new briefing handler.
func NewBriefingHandler(svc *service.BriefingService, log *logger.Logger) *BriefingHandler {
	return &BriefingHandler{
		service: svc,
		logger:  log,
	}
}

// Generate handles POST /api/briefing/generate
func (h *BriefingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req model.BriefingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateChats(req.Chats); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Generate(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to generate briefing")
		writeError(w, http.StatusInternalServerError, "failed to generate briefing")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// GenerateV2 handles POST /api/briefing/v2/generate
func (h *BriefingHandler) GenerateV2(w http.ResponseWriter, r *http.Request) {
	var req model.BriefingV2Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateChats(req.Chats); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.GenerateV2(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to generate briefing")
		writeError(w, http.StatusInternalServerError, "failed to generate briefing")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ClearCache handles DELETE /api/briefing/cache
func (h *BriefingHandler) ClearCache(w http.ResponseWriter, r *http.Request) {
	count := h.service.ClearCache(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"cleared": count})
}
