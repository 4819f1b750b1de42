package http

import (
	"net/http"
	"time"

	"github.com/dealradar/api/internal/application/arbiter"
	"github.com/dealradar/api/internal/application/fanout"
	"github.com/dealradar/api/internal/application/match"
	"github.com/dealradar/api/internal/application/notification"
	"github.com/dealradar/api/internal/application/reconcile"
	"github.com/dealradar/api/internal/application/retraction"
	"github.com/dealradar/api/internal/config"
	"github.com/dealradar/api/internal/transport/http/handler"
	appmiddleware "github.com/dealradar/api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}
	apiKeyMw := appmiddleware.APIKey(cfg.IngestAPIKeyHash)

	// 20 requests/second, burst of 40 — the crawlers batch their flushes.
	ingestRL := appmiddleware.NewRateLimiter(rate.Limit(20), 40)

	arb := arbiter.New(cfg.PriorityChannels)
	matchSvc := match.NewService(deps.FavoriteRepo, cfg.MatchBatchSize)
	fanoutSvc := fanout.NewService(deps.NotificationRepo, deps.ReceiptRepo, deps.DeviceRepo, deps.PushSender)
	retractSvc := retraction.NewService(deps.ReceiptRepo, deps.DeviceRepo, deps.PushSender)
	reconcileSvc := reconcile.NewService(reconcile.ServiceDeps{
		Offers:        deps.OfferRepo,
		Notifications: deps.NotificationRepo,
		Users:         deps.UserRepo,
		Arbiter:       arb,
		Matcher:       matchSvc,
		Dispatcher:    fanoutSvc,
		Retractor:     retractSvc,
	}, reconcile.Options{
		SuperOfferBroadcast: cfg.SuperOfferBroadcast,
		NotifLookback:       time.Duration(cfg.NotifLookbackDays) * 24 * time.Hour,
		SoftDeleteGrace:     time.Duration(cfg.SoftDeleteGraceDays) * 24 * time.Hour,
	})
	notifSvc := notification.NewService(deps.ReceiptRepo)

	// A nil *Archive must stay a nil interface or the handler would call it.
	var archive handler.EventArchiver
	if deps.Archive != nil {
		archive = deps.Archive
	}

	healthH := handler.NewHealthHandler()
	eventH := handler.NewEventHandler(reconcileSvc, archive, deps.Alerter)
	offerH := handler.NewOfferHandler(retractSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check", healthH.Ping)

		// ── Crawler / operator routes (shared API key) ───────────────────────
		r.Group(func(r chi.Router) {
			r.Use(apiKeyMw)

			r.With(ingestRL.Limit).Post("/events", eventH.Ingest)
			r.Post("/offers/{id}/retract", offerH.Retract)
		})

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/notifications", notifH.ListUnread)
			r.Put("/notifications/{id}/read", notifH.MarkAsRead)
		})
	})

	return r
}
