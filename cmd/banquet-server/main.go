package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"banquet-planner/internal/api"
	"banquet-planner/internal/app"
	"banquet-planner/internal/config"
	"banquet-planner/internal/logging"
	"banquet-planner/internal/telegram"
)

const sessionCleanupInterval = time.Hour

func main() {
	// 1. Load Configuration
	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
	logger.Info("server exiting")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Metrics registry and application
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	application, err := app.Bootstrap(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer application.Close()

	// 3. Telegram Bot, when configured
	opts := api.Options{Gatherer: reg, Logger: logger.Named("http")}
	if cfg.RequireTelegram() == nil {
		sessions := telegram.NewSessionRepository(application.SQL())
		bot, err := telegram.NewBot(cfg, application, sessions, logger.Named("telegram"))
		if err != nil {
			return err
		}
		opts.Webhook = bot.WebhookHandler()
		go cleanupSessions(ctx, sessions, logger)
	} else {
		logger.Info("telegram bot disabled")
	}

	// 4. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(application, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctxShutdown)
}

func cleanupSessions(ctx context.Context, sessions *telegram.SessionRepository, logger *zap.Logger) {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.CleanupExpired(ctx)
			if err != nil {
				logger.Warn("failed to clean up sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Info("removed expired sessions", zap.Int64("count", n))
			}
		}
	}
}
