package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/coreledger/internal/adapter/http/handler"
	"github.com/iho/coreledger/internal/adapter/http/middleware"
	"github.com/iho/coreledger/internal/infrastructure/auth"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	EntryHandler   *handler.EntryHandler
	ReportHandler  *handler.ReportHandler
	BalanceHandler *handler.BalanceHandler
	PeriodHandler  *handler.PeriodHandler
	HealthHandler  *handler.HealthHandler
	Logger         zerolog.Logger
	JWTManager     *auth.JWTManager // nil disables authentication
}

// NewRouter creates the HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)

	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.AuthMiddleware(cfg.JWTManager))
		}

		r.Route("/journal-entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Post)
			r.Get("/", cfg.EntryHandler.Lookup)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Post("/{id}/reverse", cfg.EntryHandler.Reverse)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/trial-balance", cfg.ReportHandler.TrialBalance)
			r.Get("/balance-sheet/consolidated", cfg.ReportHandler.ConsolidatedBalanceSheet)
			r.Get("/closing-preview", cfg.ReportHandler.ClosingPreview)
			r.Get("/elimination-preview", cfg.ReportHandler.EliminationPreview)
		})

		r.Post("/periods/{id}/status", cfg.PeriodHandler.Transition)

		r.Get("/accounts/{code}/balance", cfg.BalanceHandler.Get)
	})

	return r
}
