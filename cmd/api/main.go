package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/salonpos/salonpos-backend/api/routes"
	"github.com/salonpos/salonpos-backend/internal/catalog"
	"github.com/salonpos/salonpos-backend/internal/promotions"
	"github.com/salonpos/salonpos-backend/internal/sales"
	"github.com/salonpos/salonpos-backend/internal/stock"
	"github.com/salonpos/salonpos-backend/pkg/config"
	"github.com/salonpos/salonpos-backend/pkg/db"
	"github.com/salonpos/salonpos-backend/pkg/instance"
	"github.com/salonpos/salonpos-backend/pkg/logger"
	"github.com/salonpos/salonpos-backend/pkg/metrics"
	"github.com/salonpos/salonpos-backend/pkg/migrate"
	"github.com/salonpos/salonpos-backend/pkg/outbox"
	"github.com/salonpos/salonpos-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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

	dbClient, err := db.New(context.Background(), cfg.DB, logg, db.WithLockTimeout(cfg.Sales.LockTimeout))
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	conn := dbClient.DB()
	promotionRepo := promotions.NewRepository(conn)

	salesService, err := sales.NewService(sales.ServiceParams{
		DB:            dbClient,
		Sales:         sales.NewRepository(conn),
		Catalog:       catalog.NewRepository(conn),
		Ledger:        stock.NewLedger(conn),
		Promotions:    promotionRepo,
		Outbox:        outbox.NewService(outbox.NewRepository(conn), logg),
		Metrics:       metrics.NewSalesMetrics(registry),
		Logger:        logg,
		AutoPromotion: cfg.Sales.AutoPromotion,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	promotionService, err := promotions.NewService(promotionRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create promotion service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":            cfg.App.Env,
		"addr":           addr,
		"auto_promotion": cfg.Sales.AutoPromotion,
		"instance":       instance.GetID(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:           cfg,
			Logger:           logg,
			DB:               dbClient,
			Redis:            redisClient,
			Idempotency:      redisClient,
			Metrics:          registry,
			SalesService:     salesService,
			PromotionService: promotionService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server stopped")
	}
}
