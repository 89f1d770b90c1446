package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/netobserve/topoview/pkg/api"
	"github.com/netobserve/topoview/pkg/backend"
	"github.com/netobserve/topoview/pkg/config"
	"github.com/netobserve/topoview/pkg/events"
	"github.com/netobserve/topoview/pkg/layout"
	"github.com/netobserve/topoview/pkg/layoutstore"
	"github.com/netobserve/topoview/pkg/logging"
	"github.com/netobserve/topoview/pkg/metrics"
	"github.com/netobserve/topoview/pkg/reconcile"
	"github.com/netobserve/topoview/pkg/server"
	"github.com/netobserve/topoview/pkg/session"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	logger := logging.NewDefaultLogger()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config load failed", logging.Error(err))
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reg := metrics.NewRegistry()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("store init failed", logging.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	// Snapshot poller feeds the session loop through a buffered channel so a
	// slow layout pass never blocks the fetch.
	snapshots := make(chan *reconcile.Snapshot, 4)
	client := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.FetchTimeout, logger)
	poller := backend.NewPoller(client, cfg.Backend.PollInterval, func(snap *reconcile.Snapshot) {
		select {
		case snapshots <- snap:
		case <-ctx.Done():
		}
	}, logger)
	poller.SetMetrics(reg)

	bus := events.NewBus()
	defer bus.Shutdown()

	switch cfg.Events.Transport {
	case "nng":
		src := events.NewNNGSource(cfg.Events.URL, bus, logger)
		go func() {
			if err := src.Run(ctx); err != nil && ctx.Err() == nil {
				logger.Error("nng source stopped", logging.Error(err))
			}
		}()
	default:
		src := events.NewWSSource(cfg.Events.URL, bus, logger)
		go src.Run(ctx)
	}

	orchCfg := layout.DefaultConfig()
	if cfg.Layout.IterationBudget > 0 {
		orchCfg.IterationBudget = cfg.Layout.IterationBudget
	}

	sess := session.New(session.Config{
		Zones:        cfg.Layout.Zones,
		Orchestrator: orchCfg,
		DebounceQuiet:  cfg.Layout.DebounceQuiet,
		RequestRefetch: poller.ForceRefetch,
		Logger:         logger,
		Metrics:        reg,
	})

	sub := bus.Subscribe(ctx)
	go sess.Run(ctx, snapshots, sub.Channel())
	go poller.Run(ctx)

	apiServer := api.NewServer(store, sess, reg, logger)
	gs := server.NewGracefulServer(cfg.ListenAddr, apiServer.Handler(), logger)

	logger.Info("topoviewd starting",
		logging.String("addr", cfg.ListenAddr),
		logging.String("backend", cfg.Backend.BaseURL),
		logging.String("events", cfg.Events.Transport),
		logging.String("store", cfg.Store.Driver),
	)

	go func() {
		<-gs.Done()
		cancel()
	}()

	if err := gs.Start(); err != nil {
		logger.Error("server error", logging.Error(err))
		os.Exit(1)
	}
	logger.Info("topoviewd stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (layoutstore.Store, error) {
	if cfg.Store.Driver == "postgres" {
		initCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		logger.Info("connecting to postgres layout store")
		return layoutstore.NewPGStore(initCtx, cfg.Store.DatabaseURL)
	}
	return layoutstore.NewMemoryStore(), nil
}
