package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auraxtools/auraxis/event"
	"github.com/auraxtools/auraxis/internal/logger"
	"github.com/auraxtools/auraxis/internal/track"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := track.LoadConfig()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "auraxtrack",
		Version:     version,
		Environment: cfg.Environment,
	})

	if err := run(cfg); err != nil {
		slog.Error("Tracker failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *track.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := track.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if _, err := pool.Exec(ctx, track.Schema); err != nil {
		return err
	}

	store := track.NewStore(pool)

	hub := track.NewHub()
	hub.Start()
	defer hub.Stop()

	client := event.NewClient(
		event.WithServiceID(cfg.ServiceID),
		event.WithEnvironment(cfg.Environment),
	)

	recorder := track.NewRecorder(client, store, hub, slog.Default())
	if err := recorder.Register(cfg); err != nil {
		return err
	}

	client.Start(ctx)
	defer client.Close()

	go recorder.RunCleanup(ctx,
		time.Duration(cfg.RetentionDays)*24*time.Hour, track.CleanupInterval)

	srv := track.NewServer(cfg.ListenAddr, pool, store, hub)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("Tracker running",
		"listen_addr", cfg.ListenAddr,
		"events", cfg.Events,
		"worlds", len(cfg.Worlds),
		"characters", len(cfg.Characters))

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)

	select {
	case err := <-errCh:
		return err
	case sig := <-sc:
		slog.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Warn("Server shutdown incomplete", "error", err)
	}

	return nil
}
