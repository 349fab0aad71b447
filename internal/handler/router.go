package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/capitalize-ai/finsight/internal/middleware"
	"github.com/capitalize-ai/finsight/internal/service"
	"github.com/capitalize-ai/finsight/pkg/logger"
)

// RouterConfig configures the local API router.
type RouterConfig struct {
	CORSOrigins       []string
	RateLimitRequests int
	RateLimitWindow   time.Duration
	DefaultDepth      int
	Checks            map[string]ReadinessCheck
}

// NewRouter builds the chi router serving the local API.
func NewRouter(svc *service.ConversationService, cfg RouterConfig, log *logger.Logger) http.Handler {
	healthHandler := NewHealthHandler(cfg.Checks)
	sessionHandler := NewSessionHandler(svc, log)
	messageHandler := NewMessageHandler(svc, log)
	documentHandler := NewDocumentHandler(svc)
	streamHandler := NewStreamHandler(svc, cfg.DefaultDepth, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimitRequests > 0 {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		r.Route("/sessions", func(r chi.Router) {
			r.Get("/", sessionHandler.List)
			r.Post("/new", sessionHandler.New)
			r.Post("/{id}/load", sessionHandler.Load)
			r.Delete("/{id}", sessionHandler.Delete)
		})

		r.Get("/messages", messageHandler.List)
		r.Post("/query", messageHandler.Query)
		r.Get("/export", messageHandler.Export)

		r.Get("/documents", documentHandler.List)
		r.Put("/focus", documentHandler.SetFocus)
		r.Get("/settings", documentHandler.GetSettings)
		r.Put("/settings", documentHandler.PutSettings)

		r.Post("/tickers", streamHandler.AddTicker)
	})

	return r
}
