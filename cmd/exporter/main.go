package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stashmetrics/stash-exporter/internal/collect"
	"github.com/stashmetrics/stash-exporter/internal/config"
	"github.com/stashmetrics/stash-exporter/internal/promexport"
	"github.com/stashmetrics/stash-exporter/internal/stash"
)

const shutdownGrace = 5 * time.Second

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	level := new(slog.LevelVar)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("stash-exporter starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	level.Set(cfg.Exporter.SlogLevel())
	slog.Info("config loaded",
		"stash_url", cfg.Stash.URL,
		"listen_port", cfg.Exporter.ListenPort,
		"scrape_interval", cfg.Exporter.ScrapeInterval,
		"scene_page_size", cfg.Exporter.ScenePageSize,
		"max_scenes", cfg.Exporter.MaxScenes,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Watch the config file for hot-reload. Only the log level is applied at
	// runtime; endpoint or cadence changes need a restart.
	go func() {
		if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
			level.Set(updated.Exporter.SlogLevel())
		}); err != nil {
			slog.Error("config watcher stopped", "err", err)
		}
	}()

	client := stash.NewClient(cfg.Stash)
	fetcher := stash.NewFetcher(client)
	store := collect.NewStore()

	orch := collect.NewOrchestrator(fetcher, store, cfg.Exporter)
	go orch.Run(ctx)

	httpSrv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Exporter.ListenPort),
		Handler: promexport.New(store),
	}
	go func() {
		slog.Info("metrics server listening", "port", cfg.Exporter.ListenPort)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("metrics server stopped", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()
	slog.Info("stash-exporter shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("metrics server shutdown", "err", err)
	}
}
