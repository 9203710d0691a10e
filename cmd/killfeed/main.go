package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auraxtools/auraxis"
	"github.com/auraxtools/auraxis/event"
	"github.com/auraxtools/auraxis/internal/bridge"
	"github.com/auraxtools/auraxis/internal/logger"
)

// startupTimeout bounds the roster resolution on boot. A big outfit is a
// couple of REST pages; anything past this is a stuck network.
const startupTimeout = 30 * time.Second

func main() {
	cfg, err := bridge.LoadConfig()
	if err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "killfeed",
		Version:     version,
		Environment: cfg.Environment,
	})

	if err := run(cfg); err != nil {
		slog.Error("Killfeed failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *bridge.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rest := auraxis.New(auraxis.WithServiceID(cfg.ServiceID))

	client := event.NewClient(
		event.WithServiceID(cfg.ServiceID),
		event.WithEnvironment(cfg.Environment),
	)

	feed, err := bridge.New(cfg, rest, client)
	if err != nil {
		return err
	}

	startCtx, startCancel := context.WithTimeout(ctx, startupTimeout)
	err = feed.Start(startCtx)
	startCancel()
	if err != nil {
		return err
	}
	defer feed.Stop()

	client.Start(ctx)
	defer client.Close()

	slog.Info("Killfeed running",
		"tracked", feed.TrackedCount(),
		"channel_id", cfg.ChannelID)

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	sig := <-sc
	slog.Info("Shutting down", "signal", sig.String())

	return nil
}
