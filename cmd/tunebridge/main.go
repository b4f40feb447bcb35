package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tunebridge/internal/bot"
	"tunebridge/internal/config"
	"tunebridge/internal/music"
	"tunebridge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := storage.RunMigrations(cfg.DatabaseURL()); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	ctx := context.Background()
	store, err := storage.New(ctx, cfg.DatabaseURL(), storage.CustomSettings{
		Name:        cfg.Defaults.Name,
		Color:       cfg.Defaults.Color,
		EmbedSearch: cfg.Defaults.EmbedSearch,
		EmbedFinal:  cfg.Defaults.EmbedFinal,
	}, logger)
	if err != nil {
		logger.Fatal("storage init failed", zap.Error(err))
	}
	defer store.Close()

	if err := store.SeedPlatforms(ctx); err != nil {
		logger.Fatal("platform seed failed", zap.Error(err))
	}

	resolver := music.NewResolver(cfg.Lookup.BaseURL,
		time.Duration(cfg.Lookup.TimeoutSeconds)*time.Second, logger)

	botSvc, err := bot.New(cfg, logger, store, resolver)
	if err != nil {
		logger.Fatal("bot init failed", zap.Error(err))
	}

	if err := botSvc.Start(); err != nil {
		logger.Fatal("bot start failed", zap.Error(err))
	}
	logger.Info("bot started")

	stopHeartbeat := startHeartbeat(cfg.Heartbeat, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutdown requested")

	stopHeartbeat()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	botSvc.Close(shutdownCtx)
}

// startHeartbeat pings an external monitoring URL on an interval so an
// uptime service notices when the process dies. Returns a stop function.
func startHeartbeat(cfg config.HeartbeatConfig, logger *zap.Logger) func() {
	if cfg.URL == "" {
		return func() {}
	}
	interval := time.Duration(cfg.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	done := make(chan struct{})
	go func() {
		client := &http.Client{Timeout: 30 * time.Second}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				resp, err := client.Get(cfg.URL)
				if err != nil {
					logger.Warn("heartbeat ping failed", zap.Error(err))
					continue
				}
				_ = resp.Body.Close()
			}
		}
	}()
	return func() { close(done) }
}
