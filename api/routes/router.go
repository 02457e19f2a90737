package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/khidmaty/khidmaty-backend/api/controllers"
	"github.com/khidmaty/khidmaty-backend/api/middleware"
	"github.com/khidmaty/khidmaty-backend/internal/auth"
	"github.com/khidmaty/khidmaty-backend/internal/contracts"
	"github.com/khidmaty/khidmaty-backend/internal/engagements"
	"github.com/khidmaty/khidmaty-backend/internal/notifications"
	"github.com/khidmaty/khidmaty-backend/internal/reconcile"
	"github.com/khidmaty/khidmaty-backend/internal/users"
	"github.com/khidmaty/khidmaty-backend/pkg/auth/session"
	"github.com/khidmaty/khidmaty-backend/pkg/config"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient *redis.Client,
	sessionChecker session.AccessSessionChecker,
	authService auth.Service,
	engagementsService engagements.Service,
	contractsService contracts.Service,
	notificationsService notifications.Service,
	usersRepo *users.Repository,
	detector *reconcile.Detector,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	// A nil client disables the redis-backed middleware instead of letting a
	// typed nil slip through the interface conversions.
	var idempotencyStore redis.IdempotencyStore
	if redisClient != nil {
		idempotencyStore = redisClient
	}

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		login := controllers.AuthLogin(authService, logg)
		register := controllers.AuthRegister(authService, logg)
		if redisClient != nil {
			r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", login)
			r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).Post("/register", register)
		} else {
			r.Post("/login", login)
			r.Post("/register", register)
		}
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Post("/auth/logout", controllers.AuthLogout(authService, logg))

		r.Route("/bookings", func(r chi.Router) {
			r.With(middleware.RequireRole("buyer", logg)).Post("/", controllers.CreateBooking(engagementsService, logg))
			r.With(middleware.RequireRole("seller", logg)).Post("/{id}/respond", controllers.RespondBooking(engagementsService, logg))
		})
		r.Route("/requests", func(r chi.Router) {
			r.With(middleware.RequireRole("buyer", logg)).Post("/", controllers.CreateRequest(engagementsService, logg))
			r.With(middleware.RequireRole("seller", logg)).Post("/{id}/quotes", controllers.SubmitQuote(engagementsService, logg))
		})
		r.Get("/engagements", controllers.ListEngagements(engagementsService, logg))

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", controllers.CreateContract(contractsService, logg))
			r.Get("/", controllers.ListContracts(contractsService, logg))
			r.Get("/{id}", controllers.GetContract(contractsService, logg))
			r.Post("/{id}/sign", controllers.SignContract(contractsService, logg))
			r.Post("/{id}/withdraw", controllers.WithdrawContract(contractsService, logg))
			r.Post("/{id}/reject", controllers.RejectContract(contractsService, logg))
			r.Put("/{id}/terms", controllers.UpdateContractTerms(contractsService, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{id}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/me", func(r chi.Router) {
			r.Put("/signature", controllers.SaveSignatureProfile(contractsService, logg))
			r.Put("/locale", controllers.UpdatePreferredLocale(usersRepo, logg))
		})
	})

	// Reconciliation is operator-facing: tokens carrying the ops role are
	// minted out of band, never through registration.
	r.Route("/api/ops/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
		r.Use(middleware.RequireRole("ops", logg))
		r.Get("/orphaned-signatures", controllers.OrphanedSignatures(detector, logg))
	})

	return r
}
