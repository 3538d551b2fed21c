// Package app wires the feed poller, store, planner, API and telemetry into
// a runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/kilianp07/dockflow/api/planning"
	"github.com/kilianp07/dockflow/config"
	"github.com/kilianp07/dockflow/core/events"
	coremetrics "github.com/kilianp07/dockflow/core/metrics"
	coremon "github.com/kilianp07/dockflow/core/monitoring"
	coremqtt "github.com/kilianp07/dockflow/core/mqtt"
	"github.com/kilianp07/dockflow/core/optimizer"
	"github.com/kilianp07/dockflow/core/planlog"
	"github.com/kilianp07/dockflow/infra/gbfs"
	"github.com/kilianp07/dockflow/infra/logger"
	"github.com/kilianp07/dockflow/infra/metrics"
	"github.com/kilianp07/dockflow/infra/monitoring"
	"github.com/kilianp07/dockflow/infra/mqtt"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

// Service orchestrates ingestion, planning and the surrounding servers.
type Service struct {
	cfg      *config.Config
	store    StoreRunner
	Ingester *Ingester
	Planner  *Planner
	Poller   *gbfs.Poller
	plans    planlog.Store
	mqtt     *mqtt.PahoClient
	bus      *eventbus.TypedBus[events.Event]
	sink     coremetrics.MetricsSink
	log      logger.Logger
}

// Options overrides collaborators, mainly for tests.
type Options struct {
	Fetcher   gbfs.Fetcher
	Publisher coremqtt.Publisher
}

// New creates a Service from the configuration.
func New(ctx context.Context, cfg *config.Config, opts Options) (*Service, error) {
	if err := logger.Configure(cfg.Log); err != nil {
		return nil, err
	}
	log := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	st, err := OpenStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	svc := &Service{cfg: cfg, store: st, bus: eventbus.NewTyped[events.Event](), sink: sink, log: log}

	svc.plans, err = planlog.New(cfg.PlanLog)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("plan log: %w", err)
	}

	pub := opts.Publisher
	if pub == nil && cfg.MQTT.Enabled() {
		svc.mqtt, err = mqtt.NewPahoClient(cfg.MQTT)
		if err != nil {
			_ = svc.Close()
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		pub = svc.mqtt
	}

	opt, err := optimizer.New(cfg.Planner)
	if err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("optimizer: %w", err)
	}
	svc.Planner = NewPlanner(st, opt, PlannerOptions{
		Plans:      svc.plans,
		Publisher:  pub,
		AckTimeout: time.Duration(cfg.MQTT.AckTimeoutMS) * time.Millisecond,
		Bus:        svc.bus,
		Window:     time.Duration(cfg.Planner.WindowMinutes) * time.Minute,
	}, logger.New("planner"))

	staleAfter := time.Duration(cfg.Feed.StaleAfterSeconds) * time.Second
	svc.Ingester = NewIngester(st, svc.bus, staleAfter, logger.New("ingest"))

	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = gbfs.NewClient(cfg.Feed)
	}
	svc.Poller = gbfs.NewPoller(cfg.Feed, fetcher, svc.handleSnapshot, logger.New("poller"))
	svc.Poller.OnError = svc.onPollError
	return svc, nil
}

// handleSnapshot stores a snapshot then runs a planning cycle on the new
// state.
func (s *Service) handleSnapshot(ctx context.Context, snap gbfs.Snapshot) error {
	if err := s.Ingester.Handle(ctx, snap); err != nil {
		return err
	}
	if _, err := s.Planner.Cycle(ctx); err != nil {
		return fmt.Errorf("plan cycle: %w", err)
	}
	return nil
}

func (s *Service) onPollError(err error) {
	s.bus.Publish(events.FeedEvent{Feed: "gbfs", Err: err, Time: time.Now().UTC()})
	coremon.Report("poller", err)
}

// Handler returns the planning API handler.
func (s *Service) Handler() http.Handler {
	return planning.NewRouter(apiBackend{p: s.Planner}, s.plans, s.cfg.API.Token)
}

// Run starts the poller, API and metrics servers and blocks until the
// context is cancelled or one of them fails, which stops the others.
func (s *Service) Run(ctx context.Context) error {
	defer coremon.Recover()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	metrics.StartEventCollector(ctx, s.bus, s.sink)

	var wg sync.WaitGroup
	errCh := make(chan error, 3)
	start := func(name string, fn func(context.Context) error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer coremon.Recover()
			if err := fn(ctx); err != nil {
				s.log.Errorf("%s: %v", name, err)
				errCh <- fmt.Errorf("%s: %w", name, err)
			}
		}()
	}

	start("poller", s.Poller.Start)
	if addr := s.cfg.Metrics.PrometheusAddr; addr != "" {
		start("prometheus", func(ctx context.Context) error { return metrics.StartPromServer(ctx, addr) })
	}
	if s.cfg.API.Enabled() {
		start("api", s.serveAPI)
	}
	s.log.Infof("service started")

	var err error
	select {
	case <-ctx.Done():
	case err = <-errCh:
	}
	cancel()
	wg.Wait()
	return err
}

func (s *Service) serveAPI(ctx context.Context) error {
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	var errs []error
	if s.mqtt != nil {
		s.mqtt.Disconnect()
	}
	if s.plans != nil {
		errs = append(errs, s.plans.Close())
	}
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	s.bus.Close()
	coremon.Flush(2 * time.Second)
	return errors.Join(errs...)
}
