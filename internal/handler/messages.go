package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/middleware"
	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/service"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// MessageHandler handles the live conversation endpoints.
type MessageHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc *service.ConversationService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  log,
	}
}

// QueryResponse is returned by POST /api/query.
type QueryResponse struct {
	SessionID string        `json:"sessionId"`
	Message   model.Message `json:"message"`
}

// List handles GET /api/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		SessionID: h.service.ActiveSessionID(),
		Messages:  h.service.Messages(),
	})
}

// Query handles POST /api/query
// It blocks until the analysis resolves and returns the agent message.
func (h *MessageHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitQueryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := middleware.ValidateQuery(req.Query); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	pending, err := h.service.StartQuery(r.Context(), req.Query)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg := h.service.ResolveQuery(r.Context(), pending)

	writeJSON(w, http.StatusOK, &QueryResponse{
		SessionID: pending.SessionID,
		Message:   msg,
	})
}

// Export handles GET /api/export
func (h *MessageHandler) Export(w http.ResponseWriter, r *http.Request) {
	report, ok := h.service.ExportTranscript()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	name := service.ReportFileName(time.Now())
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(report)); err != nil {
		h.logger.Warn("failed to write report", zap.Error(err))
	}
}
