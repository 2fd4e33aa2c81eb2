package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/angelmondragon/hourstay-backend/api"
	"github.com/angelmondragon/hourstay-backend/api/routes"
	"github.com/angelmondragon/hourstay-backend/internal/auth"
	"github.com/angelmondragon/hourstay-backend/internal/ledger"
	"github.com/angelmondragon/hourstay-backend/internal/listings"
	"github.com/angelmondragon/hourstay-backend/internal/moderation"
	"github.com/angelmondragon/hourstay-backend/internal/users"
	"github.com/angelmondragon/hourstay-backend/internal/withdrawals"
	"github.com/angelmondragon/hourstay-backend/pkg/auth/session"
	"github.com/angelmondragon/hourstay-backend/pkg/config"
	"github.com/angelmondragon/hourstay-backend/pkg/db"
	"github.com/angelmondragon/hourstay-backend/pkg/env"
	"github.com/angelmondragon/hourstay-backend/pkg/instance"
	"github.com/angelmondragon/hourstay-backend/pkg/logger"
	"github.com/angelmondragon/hourstay-backend/pkg/metrics"
	"github.com/angelmondragon/hourstay-backend/pkg/migrate"
	"github.com/angelmondragon/hourstay-backend/pkg/notify"
	"github.com/angelmondragon/hourstay-backend/pkg/pubsub"
	"github.com/angelmondragon/hourstay-backend/pkg/redis"
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
		Fields:      map[string]any{"env": cfg.App.Env, "instance": instance.GetID()},
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(ctx, logg, "session manager", err)

	gateway, psClient, err := notificationGateway(ctx, cfg, logg)
	requireResource(ctx, logg, "notification gateway", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	domainMetrics := metrics.NewDomainMetrics(registry)

	usersRepo := users.NewRepository(dbClient.DB())
	listingsRepo := listings.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	requireResource(ctx, logg, "auth service", err)

	usersService, err := users.NewService(usersRepo, cfg.Password)
	requireResource(ctx, logg, "users service", err)

	listingsService, err := listings.NewService(listings.ServiceParams{
		Repo:     listingsRepo,
		Users:    usersRepo,
		TxRunner: dbClient,
		Logger:   logg,
		Metrics:  domainMetrics,
	})
	requireResource(ctx, logg, "listings service", err)

	moderationService, err := moderation.NewService(moderation.ServiceParams{
		Repo:     listingsRepo,
		TxRunner: dbClient,
		Gateway:  gateway,
		Logger:   logg,
		Metrics:  domainMetrics,
	})
	requireResource(ctx, logg, "moderation service", err)

	ledgerService, err := ledger.NewService(ledger.ServiceParams{
		Repo:     ledger.NewRepository(dbClient.DB()),
		Users:    usersRepo,
		TxRunner: dbClient,
		Logger:   logg,
		Metrics:  domainMetrics,
	})
	requireResource(ctx, logg, "ledger service", err)

	withdrawalsService, err := withdrawals.NewService(withdrawals.ServiceParams{
		Repo:     withdrawals.NewRepository(dbClient.DB()),
		Ledger:   ledgerService,
		TxRunner: dbClient,
		Logger:   logg,
		Metrics:  domainMetrics,
	})
	requireResource(ctx, logg, "withdrawals service", err)

	router := routes.NewRouter(routes.Params{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessionManager,
		Metrics:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		Auth:        authService,
		Users:       usersService,
		Listings:    listingsService,
		Moderation:  moderationService,
		Ledger:      ledgerService,
		Withdrawals: withdrawalsService,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	server := api.NewServer(addr, router)

	logCtx := logg.WithFields(ctx, map[string]any{
		"addr":   addr,
		"notify": cfg.Notify.Driver,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() { serveErr <- server.Start() }()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(logCtx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(logCtx, "shutdown signal received")
	}

	shutdownErr := multierr.Combine(
		server.Stop(context.Background()),
		psClient.Close(),
		redisClient.Close(),
		dbClient.Close(),
	)
	if shutdownErr != nil {
		logg.Error(logCtx, "errors during shutdown", shutdownErr)
		exitCode = 1
	}
	logg.Info(logCtx, "api server stopped")
	os.Exit(exitCode)
}

// notificationGateway selects the delivery driver. The returned client is nil
// for the log driver; its Close is nil-safe.
func notificationGateway(ctx context.Context, cfg *config.Config, logg *logger.Logger) (notify.Gateway, *pubsub.Client, error) {
	if cfg.Notify.Driver != config.NotifyDriverPubSub {
		return notify.NewLogGateway(logg), nil, nil
	}
	client, err := pubsub.NewClient(ctx, cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		return nil, nil, err
	}
	gateway, err := notify.NewPubSubGateway(client.ListingApprovedPublisher(), cfg.Notify.Timeout)
	if err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return gateway, client, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(ctx, "resource", name), "failed to initialize resource", err)
	os.Exit(1)
}
