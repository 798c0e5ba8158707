package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/realestate-cinematic/cinematic-backend/config"
	"github.com/realestate-cinematic/cinematic-backend/internal/bootstrap"
	"github.com/realestate-cinematic/cinematic-backend/internal/cronjob"
	"github.com/realestate-cinematic/cinematic-backend/internal/logging"
	"github.com/realestate-cinematic/cinematic-backend/internal/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := bootstrap.OpenStore(ctx, bootstrap.StoreOptions{
		URL:  cfg.Store.URL,
		Name: cfg.Store.Name,
	}, logger)
	if err != nil {
		// the API still serves /, /test and /health without a store
		logger.Error("document store unavailable, starting without it", zap.Error(err))
	}
	if store != nil {
		defer func() { _ = store.Close() }()
	}

	m := metrics.New()
	m.SetStoreUp(store != nil)

	scheduler := cronjob.NewScheduler(store, m, logger)
	if err := scheduler.Start(cfg.Heartbeat.Schedule); err != nil {
		logger.Fatal("cron scheduler", zap.Error(err))
	}

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    cfg.App.ServiceName,
		Version:        cfg.App.Version,
		Store:          store,
		DatabaseURLSet: cfg.Store.URL != "",
		PublicBaseURL:  cfg.Media.PublicBaseURL,
		RenderRate:     cfg.Render.RatePerSecond,
		RenderBurst:    cfg.Render.Burst,
		CORSOrigins:    cfg.CORS.AllowOrigins,
		Metrics:        m,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Environment),
			zap.String("version", cfg.App.Version),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	scheduler.Stop(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
