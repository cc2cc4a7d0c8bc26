package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tallybooks/tallybooks/internal/adapter/http/handler"
	"github.com/tallybooks/tallybooks/internal/adapter/http/middleware"
	"github.com/tallybooks/tallybooks/internal/domain"
	"github.com/tallybooks/tallybooks/internal/infrastructure/auth"
	"github.com/tallybooks/tallybooks/internal/infrastructure/metrics"
	"github.com/tallybooks/tallybooks/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	AccountHandler        *handler.AccountHandler
	EntryHandler          *handler.EntryHandler
	PeriodHandler         *handler.PeriodHandler
	OpeningBalanceHandler *handler.OpeningBalanceHandler
	ReportHandler         *handler.ReportHandler
	HealthHandler         *handler.HealthHandler

	IdempotencyStore usecase.IdempotencyStore
	Logger           zerolog.Logger
	Metrics          *metrics.Metrics

	// JWTManager authenticates /api/v1 requests. When nil, DevUser is
	// attached to every request instead; only for local development.
	JWTManager *auth.JWTManager
	DevUser    domain.User
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	logging := middleware.NewLoggingMiddleware(cfg.Logger)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logging.Wrap)
	r.Use(logging.Recover)
	if cfg.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(cfg.Metrics).Wrap)
	}

	// Operational endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		if cfg.JWTManager != nil {
			r.Use(middleware.Auth(cfg.JWTManager))
		} else {
			r.Use(middleware.StaticUser(cfg.DevUser))
		}

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Chart of accounts
		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", cfg.AccountHandler.Create)
			r.Get("/", cfg.AccountHandler.List)
			r.Get("/hierarchy", cfg.AccountHandler.Hierarchy)
			r.Post("/seed", cfg.AccountHandler.SeedChart)
			r.Get("/code/{code}", cfg.AccountHandler.GetByCode)
			r.Get("/{id}", cfg.AccountHandler.Get)
			r.Patch("/{id}/active", cfg.AccountHandler.SetActive)
			r.Delete("/{id}", cfg.AccountHandler.Delete)
			r.Get("/{id}/activity", cfg.EntryHandler.Activity)
		})

		// Journal entries
		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
			r.Post("/{id}/reverse", cfg.EntryHandler.Reverse)
		})

		// Financial periods
		r.Route("/periods/{year}/{month}", func(r chi.Router) {
			r.Get("/", cfg.PeriodHandler.Get)
			r.Post("/lock", cfg.PeriodHandler.Lock)
			r.Post("/unlock", cfg.PeriodHandler.Unlock)
			r.Get("/summary", cfg.PeriodHandler.Summary)
			r.Post("/summary/recompute", cfg.PeriodHandler.RecomputeSummary)
		})

		// Opening-balance import
		r.Route("/opening-balances", func(r chi.Router) {
			r.Post("/", cfg.OpeningBalanceHandler.Stage)
			r.Get("/", cfg.OpeningBalanceHandler.ListUnposted)
			r.Post("/post", cfg.OpeningBalanceHandler.Post)
			r.Get("/{id}", cfg.OpeningBalanceHandler.Get)
		})

		// Reports
		r.Route("/reports", func(r chi.Router) {
			r.Get("/trial-balance", cfg.ReportHandler.TrialBalance)
			r.Get("/consistency", cfg.ReportHandler.Consistency)
		})
	})

	return r
}
