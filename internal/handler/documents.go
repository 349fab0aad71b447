package handler

import (
	"net/http"
	"strings"

	"github.com/capitalize-ai/finsight/internal/middleware"
	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/service"
)

// DocumentHandler handles the document registry, focus and settings endpoints.
type DocumentHandler struct {
	service *service.ConversationService
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(svc *service.ConversationService) *DocumentHandler {
	return &DocumentHandler{service: svc}
}

// List handles GET /api/documents
func (h *DocumentHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &model.DocumentsResponse{
		Documents: h.service.Documents(),
		Focus:     h.service.Focus(),
	})
}

// SetFocus handles PUT /api/focus
// An empty ticker clears the focus.
func (h *DocumentHandler) SetFocus(w http.ResponseWriter, r *http.Request) {
	var req model.FocusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker != "" {
		if err := middleware.ValidateTicker(ticker); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	h.service.SelectFocus(ticker)
	writeJSON(w, http.StatusOK, &model.DocumentsResponse{
		Documents: h.service.Documents(),
		Focus:     h.service.Focus(),
	})
}

// GetSettings handles GET /api/settings
func (h *DocumentHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Settings())
}

// PutSettings handles PUT /api/settings
func (h *DocumentHandler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req model.AppSettings
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateSettings(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid settings")
		return
	}

	writeJSON(w, http.StatusOK, h.service.Settings())
}
