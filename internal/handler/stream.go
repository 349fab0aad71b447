package handler

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/capitalize-ai/finsight/internal/ingest"
	"github.com/capitalize-ai/finsight/internal/middleware"
	"github.com/capitalize-ai/finsight/internal/model"
	"github.com/capitalize-ai/finsight/internal/service"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// StreamHandler relays ingestion jobs to the browser as NDJSON.
type StreamHandler struct {
	service      *service.ConversationService
	defaultDepth int
	logger       *logger.Logger
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(svc *service.ConversationService, defaultDepth int, log *logger.Logger) *StreamHandler {
	return &StreamHandler{
		service:      svc,
		defaultDepth: defaultDepth,
		logger:       log,
	}
}

// AddTicker handles POST /api/tickers
// Every backend event is forwarded as one line in receipt order. The last
// line is always a terminal event, even when the backend stream broke off.
func (h *StreamHandler) AddTicker(w http.ResponseWriter, r *http.Request) {
	var req ingest.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	if req.Depth == 0 {
		req.Depth = h.defaultDepth
	}
	if err := middleware.ValidateTicker(req.Ticker); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateDepth(req.Depth); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	terminal := false
	send := func(ev model.StreamEvent) {
		line, err := model.EncodeStreamEvent(ev)
		if err != nil {
			h.logger.Warn("failed to encode stream event", zap.Error(err))
			return
		}
		_, _ = w.Write(append(line, '\n'))
		flusher.Flush()
	}

	outcome := h.service.AddTicker(r.Context(), req.Ticker, req.Depth, func(ev model.StreamEvent) {
		if model.IsTerminal(ev) {
			terminal = true
		}
		send(ev)
	})

	if !terminal && outcome.State == ingest.StateError {
		send(&model.ErrorEvent{Message: outcome.Message})
	}
}
