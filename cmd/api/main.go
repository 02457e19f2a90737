package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khidmaty/khidmaty-backend/api/routes"
	"github.com/khidmaty/khidmaty-backend/internal/auth"
	"github.com/khidmaty/khidmaty-backend/internal/contracts"
	"github.com/khidmaty/khidmaty-backend/internal/engagements"
	"github.com/khidmaty/khidmaty-backend/internal/notifications"
	"github.com/khidmaty/khidmaty-backend/internal/reconcile"
	"github.com/khidmaty/khidmaty-backend/internal/users"
	"github.com/khidmaty/khidmaty-backend/pkg/auth/session"
	"github.com/khidmaty/khidmaty-backend/pkg/config"
	"github.com/khidmaty/khidmaty-backend/pkg/db"
	"github.com/khidmaty/khidmaty-backend/pkg/logger"
	"github.com/khidmaty/khidmaty-backend/pkg/metrics"
	"github.com/khidmaty/khidmaty-backend/pkg/migrate"
	"github.com/khidmaty/khidmaty-backend/pkg/outbox"
	"github.com/khidmaty/khidmaty-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		DB:             dbClient,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	engagementsRepo := engagements.NewRepository(dbClient.DB())
	engagementsService, err := engagements.NewService(engagementsRepo, outboxService, dbClient.DB(), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create engagements service", err)
		os.Exit(1)
	}
	propagator, err := engagements.NewPropagator(engagementsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create propagator", err)
		os.Exit(1)
	}

	contractMetrics := metrics.NewContractMetrics(prometheus.DefaultRegisterer)
	contractsService, err := contracts.NewService(
		contracts.NewRepository(dbClient.DB()),
		engagementsRepo,
		propagator,
		contracts.NewProfilesRepository(dbClient.DB()),
		outboxService,
		dbClient.DB(),
		logg,
		contracts.WithLocker(redisClient, cfg.Contracts.LockTTL),
		contracts.WithMetrics(contractMetrics),
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create contracts service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	detector, err := reconcile.NewDetector(dbClient.DB(), cfg.Contracts.OrphanGracePeriod, contractMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create reconcile detector", err)
		os.Exit(1)
	}

	router := routes.NewRouter(
		cfg,
		logg,
		redisClient,
		sessionManager,
		authService,
		engagementsService,
		contractsService,
		notificationsService,
		usersRepo,
		detector,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", router)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
