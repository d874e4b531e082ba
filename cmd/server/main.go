package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/exam-seating/internal/config"
	"github.com/iliyamo/exam-seating/internal/database"
	"github.com/iliyamo/exam-seating/internal/handler"
	"github.com/iliyamo/exam-seating/internal/middleware"
	"github.com/iliyamo/exam-seating/internal/observability"
	"github.com/iliyamo/exam-seating/internal/queue"
	"github.com/iliyamo/exam-seating/internal/repository"
	"github.com/iliyamo/exam-seating/internal/router"
	"github.com/iliyamo/exam-seating/internal/seating"
	"github.com/iliyamo/exam-seating/internal/service"
)

func main() {
	cfg := config.Load() // Load environment config

	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBOptions())
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.EnsureSchema(ctx, db); err != nil {
		logger.Fatal("database schema failed", zap.Error(err))
	}

	rdb := config.NewRedisClient() // nil disables cache and rate limiting
	if rdb == nil {
		logger.Warn("redis unavailable, cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}

	settings := handler.ChartSettings{
		Layout:           seating.Layout{GroupWidth: cfg.Chart.GroupWidth, TitleSpacing: cfg.Chart.TitleSpacing},
		ReplenishDrained: cfg.Chart.ReplenishDrained,
		Logger:           logger.Named("chart"),
	}
	if cfg.Chart.EventsEnabled {
		url := queue.BrokerURL()
		publisher := service.NewQueuePublisher(url, logger.Named("publisher"))
		settings.Events = publisher
		go func() {
			if err := publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("chart publisher stopped", zap.Error(err))
			}
		}()
		go func() {
			err := queue.NewConsumer(url, cfg.Chart.LogDir, logger.Named("consumer")).Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("chart consumer stopped", zap.Error(err))
			}
		}()
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	rooms := repository.NewRoomRepo(db)
	rosters := repository.NewRosterRepo(db)
	charts := repository.NewChartRepo(db)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.RequestLogger(logger.Named("http")))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger.Named("ratelimit"))
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger.Named("cache"))

	router.RegisterRoutes(e, &handler.HealthHandler{DB: db})
	router.RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens), cfg.JWTSecret)
	router.RegisterCoordinator(e, router.Coordinator{
		Rooms:   handler.NewRoomHandler(rooms),
		Rosters: handler.NewRosterHandler(rosters, cfg.Chart.MaxUploadBytes),
		Charts:  handler.NewChartHandler(rooms, rosters, charts, settings),
	}, cfg.JWTSecret, cache, limit)
	router.RegisterPublic(e, handler.NewUploadHandler(settings, cfg.Chart.MaxUploadBytes), limit)

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", zap.Error(err))
	}
	logger.Info("stopped")
}
