// Command oasis-relay serves shared-space rooms: it accepts websocket
// connections, fans position events out to room members, and sweeps dead
// players by heartbeat timeout.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/c42705/stargety-oasis-sub005/internal/config"
	"github.com/c42705/stargety-oasis-sub005/internal/observability"
	"github.com/c42705/stargety-oasis-sub005/internal/relay"
	"github.com/c42705/stargety-oasis-sub005/internal/world"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	log, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		zap.NewExample().Fatal("failed to build logger", zap.Error(err))
	}
	defer log.Sync()

	store, err := loadWorld(cfg.World, log)
	if err != nil {
		log.Fatal("failed to load world geometry", zap.Error(err))
	}

	manager := relay.NewManager(log)
	server := relay.NewServer(manager, store, cfg.Engine.TickRate, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go manager.RunLivenessSweep(ctx, cfg.Relay.HeartbeatInterval, cfg.Relay.HeartbeatTimeout)

	httpServer := &http.Server{
		Addr:    cfg.Relay.Addr(),
		Handler: server.Routes(),
	}
	go func() {
		<-ctx.Done()
		httpServer.Shutdown(context.Background())
	}()

	log.Info("relay listening", zap.String("addr", cfg.Relay.Addr()))
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("relay failed", zap.Error(err))
	}
}

// loadWorld builds the geometry store from the configured file or the
// fallback bounds. The relay serves the snapshot on /world; clients and
// tooling fetch their geometry from there.
func loadWorld(cfg config.WorldConfig, log *zap.Logger) (*world.Store, error) {
	if cfg.File == "" {
		snap := &world.Snapshot{Bounds: world.Bounds{Width: cfg.Width, Height: cfg.Height}}
		return world.NewStore(snap, log)
	}

	data, err := os.ReadFile(cfg.File)
	if err != nil {
		return nil, err
	}
	snap, err := world.DecodeSnapshot(data, log)
	if err != nil {
		return nil, err
	}
	return world.NewStore(snap, log)
}
