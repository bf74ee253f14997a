package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/catalog-accounts/internal/application/account"
	"github.com/catalog-accounts/internal/application/history"
	"github.com/catalog-accounts/internal/application/verification"
	"github.com/catalog-accounts/internal/config"
	jwtinfra "github.com/catalog-accounts/internal/infrastructure/jwt"
	"github.com/catalog-accounts/internal/infrastructure/metrics"
	"github.com/catalog-accounts/internal/pkg/otc"
	"github.com/catalog-accounts/internal/transport/http/handler"
	appmiddleware "github.com/catalog-accounts/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	Accounts    AccountRepository
	Codes       CodeRepository
	Notifier    Notifier
	Generator   CodeGenerator // defaults to an otc.Generator of cfg.OTCDigits
	Metrics     *metrics.Collector
	Gatherer    prometheus.Gatherer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router. Background work
// started for the router stops when ctx is cancelled.
func NewRouter(ctx context.Context, cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	collector, gatherer := deps.Metrics, deps.Gatherer
	if collector == nil {
		reg := prometheus.NewRegistry()
		collector, gatherer = metrics.NewCollector(reg), reg
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	generator := deps.Generator
	if generator == nil {
		generator = otc.NewGenerator(cfg.OTCDigits)
	}

	// Owner checks only make sense when callers carry a verified identity.
	userMw := []func(http.Handler) http.Handler{}
	var signer interface {
		Sign(accountID string, privileged bool) (string, error)
	}
	if deps.JWTProvider != nil {
		signer = deps.JWTProvider
		userMw = append(userMw, appmiddleware.Auth(deps.JWTProvider), appmiddleware.RequireOwnerOrPrivileged("id"))
	}

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	trusted, err := appmiddleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		slog.Warn("ignoring TRUSTED_PROXIES", "err", err)
	}
	sensitiveRL := appmiddleware.NewRateLimiter(ctx, rate.Limit(5), 10, trusted...)

	verificationSvc := verification.NewService(verification.ServiceDeps{
		Codes:     deps.Codes,
		Accounts:  deps.Accounts,
		Notifier:  deps.Notifier,
		Generator: generator,
		Metrics:   collector,
		CodeTTL:   cfg.OTCTTL,
	})
	accountSvc := account.NewService(account.ServiceDeps{AccountRepo: deps.Accounts, Metrics: collector})
	historySvc := history.NewService(history.ServiceDeps{
		AccountRepo:  deps.Accounts,
		Metrics:      collector,
		Max:          cfg.HistoryMax,
		DefaultLimit: cfg.HistoryDefaultLimit,
	})

	healthH := handler.NewHealthHandler()
	signupH := handler.NewSignupHandler(verificationSvc, signer)
	pwH := handler.NewPasswordRecoveryHandler(verificationSvc)
	sessionH := handler.NewSessionHandler(accountSvc, signer)
	userH := handler.NewUserHandler(accountSvc, historySvc)

	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes ────────────────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/signup/{action}", signupH.Action)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.With(sensitiveRL.Limit).Post("/password-recovery/{action}", pwH.Action)

		// ── Per-account routes ───────────────────────────────────────────────
		r.Route("/users/{id}", func(r chi.Router) {
			r.Use(userMw...)

			r.Get("/", userH.Get)
			r.Put("/interests", userH.UpdateInterests)
			r.Put("/views", userH.RecordView)
			r.Get("/history", userH.History)
		})
	})

	return r
}
