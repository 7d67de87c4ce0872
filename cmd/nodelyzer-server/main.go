package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/nodelyzer/pkg/analysis"
	"github.com/dd0wney/nodelyzer/pkg/api"
	"github.com/dd0wney/nodelyzer/pkg/config"
	"github.com/dd0wney/nodelyzer/pkg/events"
	"github.com/dd0wney/nodelyzer/pkg/graphql"
	"github.com/dd0wney/nodelyzer/pkg/health"
	"github.com/dd0wney/nodelyzer/pkg/logging"
	"github.com/dd0wney/nodelyzer/pkg/metrics"
	"github.com/dd0wney/nodelyzer/pkg/store"
)

var (
	configPath = flag.String("config", "", "YAML config file (or set NODELYZER_CONFIG)")
	addr       = flag.String("addr", "", "listen address, overrides config")
	driver     = flag.String("store", "", "store driver: memory, file, sqlite, postgres")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "nodelyzer-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	path := *configPath
	if path == "" {
		path = os.Getenv("NODELYZER_CONFIG")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *driver != "" {
		cfg.Store.Driver = *driver
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := logging.New(logging.Options{Level: cfg.Logging.Level, Service: "nodelyzer"})
	if err != nil {
		return err
	}
	logging.SetDefaultLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := metrics.DefaultRegistry()

	logger.Info("opening analysis store", logging.String("driver", cfg.Store.Driver))
	backend, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	st := store.Instrument(backend, cfg.Store.Driver, registry, logger)
	defer st.Close()

	bus := events.NewBus()
	sinks := []events.Sink{{Name: "bus", Publisher: bus}}
	if cfg.Events.NNGAddr != "" {
		pub, err := events.ListenNNG(cfg.Events.NNGAddr)
		if err != nil {
			return err
		}
		logger.Info("publishing analysis events", logging.String("addr", pub.Addr()))
		sinks = append(sinks, events.Sink{Name: "nng", Publisher: pub})
	}
	fanout := events.NewFanout(logger, registry, sinks...)
	defer fanout.Close()

	if err := logCompletedAnalyses(ctx, bus, logger); err != nil {
		return err
	}

	svc := analysis.NewService(analysis.Config{
		Logger:     logger,
		Metrics:    registry,
		Events:     fanout,
		Thresholds: cfg.Advisor,
	})

	checker := health.NewChecker()
	checker.Register("process", health.Static("running"), health.KindHealth, health.KindLiveness)
	checker.Register("store", health.StoreCheck(st.Driver(), st.Ping), health.KindHealth, health.KindReadiness)
	checker.Register("events", health.EventsCheck(func() (int, uint64) {
		return bus.SubscriberCount(events.TopicAnalysisCompleted), bus.Dropped()
	}))
	checker.Register("memory", health.MemoryCheck(nil))

	server, err := api.NewServer(api.Options{
		Config:   cfg.Server,
		Analysis: svc,
		Store:    st,
		Metrics:  registry,
		Health:   checker,
		GraphQL:  graphql.DefaultLimits(),
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	logger.Info("nodelyzer server starting",
		logging.String("addr", cfg.Server.Addr),
		logging.String("store", cfg.Store.Driver),
		logging.Bool("nng", cfg.Events.NNGAddr != ""),
	)
	if err := server.ListenAndServe(ctx); err != nil {
		return err
	}
	logger.Info("server exited")
	return nil
}

// logCompletedAnalyses mirrors completed analyses into the debug log
func logCompletedAnalyses(ctx context.Context, bus *events.Bus, logger logging.Logger) error {
	sub, err := bus.Subscribe(ctx, events.TopicAnalysisCompleted)
	if err != nil {
		return err
	}
	go func() {
		defer sub.Unsubscribe()
		for e := range sub.Events() {
			done, ok := e.Payload.(events.AnalysisCompleted)
			if !ok {
				continue
			}
			logger.Debug("analysis completed",
				logging.String("event_id", e.ID),
				logging.AnalysisID(done.AnalysisID),
				logging.Network(done.Network),
			)
		}
	}()
	return nil
}
