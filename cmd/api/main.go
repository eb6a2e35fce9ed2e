package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/gsindri/kaupa-skil-sub004/api/routes"
	"github.com/gsindri/kaupa-skil-sub004/internal/delivery"
	"github.com/gsindri/kaupa-skil-sub004/internal/optimizer"
	"github.com/gsindri/kaupa-skil-sub004/internal/quote"
	"github.com/gsindri/kaupa-skil-sub004/internal/suppliers"
	"github.com/gsindri/kaupa-skil-sub004/internal/units"
	"github.com/gsindri/kaupa-skil-sub004/pkg/cache"
	"github.com/gsindri/kaupa-skil-sub004/pkg/config"
	"github.com/gsindri/kaupa-skil-sub004/pkg/db"
	"github.com/gsindri/kaupa-skil-sub004/pkg/env"
	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
	"github.com/gsindri/kaupa-skil-sub004/pkg/metrics"
	"github.com/gsindri/kaupa-skil-sub004/pkg/migrate"
	"github.com/gsindri/kaupa-skil-sub004/pkg/redis"
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	var (
		redisClient *redis.Client
		store       cache.Store
	)
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		store = redisClient
	} else {
		logg.Warn(ctx, "redis not configured, using in-process cache without rate limiting")
		mem := cache.NewMemory()
		go mem.Run(ctx)
		store = mem
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	quoteMetrics := metrics.NewQuoteMetrics(reg)

	location, err := cfg.Delivery.Location()
	if err != nil {
		logg.Error(ctx, "failed to resolve delivery timezone", err)
		os.Exit(1)
	}

	unitService, err := units.NewService(units.NewRepository(dbClient.DB()), cfg.Delivery.CatalogCacheTTL, nil)
	if err != nil {
		logg.Error(ctx, "failed to create unit service", err)
		os.Exit(1)
	}

	ruleCache := cache.NewJSON(store, cfg.Delivery.RuleCacheTTL)
	calc := delivery.NewCalculator(delivery.WithLocation(location))

	ruleRepo := delivery.NewRepository(dbClient.DB())
	ruleSource := delivery.NewCachedRuleSource(ruleRepo, ruleCache, quoteMetrics)
	profileRepo := suppliers.NewRepository(dbClient.DB())
	profileSource := suppliers.NewCachedSource(profileRepo, ruleCache, quoteMetrics)

	ruleAdmin, err := delivery.NewRuleAdmin(ruleRepo, dbClient, ruleSource)
	if err != nil {
		logg.Error(ctx, "failed to create delivery rule admin", err)
		os.Exit(1)
	}
	history, err := suppliers.NewOrderHistory(profileRepo, profileSource)
	if err != nil {
		logg.Error(ctx, "failed to create order history", err)
		os.Exit(1)
	}

	quoteService, err := quote.NewService(quote.Deps{
		Rules:     ruleSource,
		Profiles:  profileSource,
		Units:     unitService,
		Calc:      calc,
		Optimizer: optimizer.New(calc, optimizer.PolicyFromConfig(cfg.Optimizer)),
		Recorder:  quoteMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(ctx, "failed to create quote service", err)
		os.Exit(1)
	}

	deps := routes.Deps{
		Quote:       quoteService,
		Units:       unitService,
		Rules:       ruleAdmin,
		History:     history,
		DB:          dbClient,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
		Redis:       redisClient,
	}

	addr := ":" + env.First(cfg.App.Port, "PORT")
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": env.First("local", "DYNO"),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, deps),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
