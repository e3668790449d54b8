package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/front-depiction/cli-stock/internal/broker"
	"github.com/front-depiction/cli-stock/internal/config"
	"github.com/front-depiction/cli-stock/internal/indicator"
	"github.com/front-depiction/cli-stock/internal/metrics"
	"github.com/front-depiction/cli-stock/internal/model"
	"github.com/front-depiction/cli-stock/internal/provider"
	"github.com/front-depiction/cli-stock/internal/publish"
	"github.com/front-depiction/cli-stock/internal/signal"
	"github.com/front-depiction/cli-stock/internal/stats"
	"github.com/front-depiction/cli-stock/internal/view"
)

const (
	samplerInterval = 5 * time.Second
	publisherGrace  = 5 * time.Second
)

// Pipeline is the assembled streaming core, ready to Run.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger

	provider   provider.Provider
	metrics    *metrics.Metrics
	broker     *broker.Broker
	collector  *stats.Collector
	registry   *indicator.Registry
	runner     *signal.Runner
	indicators []indicator.Indicator
	viewModel  *view.Model
}

// Option adjusts pipeline assembly.
type Option func(*Pipeline)

// WithProvider substitutes a pre-built provider for the configured one.
func WithProvider(p provider.Provider) Option {
	return func(pl *Pipeline) { pl.provider = p }
}

// New assembles the pipeline from config. The handler receives the
// periodic view snapshots; external publishers connect later, in Run,
// so assembly itself never touches the network.
func New(cfg *config.Config, handler view.SnapshotHandler, logger *slog.Logger, opts ...Option) (*Pipeline, error) {
	if logger == nil {
		logger = slog.Default()
	}

	p := &Pipeline{
		cfg:     cfg,
		logger:  logger.With("component", "pipeline"),
		metrics: metrics.New(),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.provider == nil {
		prov, err := buildProvider(cfg,
			provider.WithLogger(logger),
			provider.WithParseErrorHook(func(error) {
				p.metrics.ParseErrors.WithLabelValues(cfg.Provider).Inc()
			}),
		)
		if err != nil {
			return nil, err
		}
		p.provider = prov
	}

	window, err := buildWindow(cfg.Stats.Window)
	if err != nil {
		return nil, err
	}

	p.indicators, err = buildIndicators(cfg)
	if err != nil {
		return nil, err
	}

	p.broker = broker.New(broker.Config{
		Capacity:      cfg.Broker.Capacity,
		SortBySource:  cfg.Broker.SortByTimestamp,
		SortChunkSize: cfg.Broker.SortChunk,
	}, logger)
	p.collector = stats.NewCollector(window, logger)
	p.registry = indicator.NewRegistry()
	p.runner = signal.NewRunner(signal.RunnerConfig{Interval: cfg.Signal.Interval}, logger)

	symbols := make([]model.Symbol, len(cfg.Symbols))
	for i, s := range cfg.Symbols {
		symbols[i] = model.Symbol(s)
	}
	p.viewModel = view.New(view.Config{
		Refresh:   cfg.View.Refresh,
		MaxTrades: cfg.View.MaxTrades,
	}, symbols, p.collector, handler, logger)

	return p, nil
}

// Registry exposes the indicator registry for the UI layer.
func (p *Pipeline) Registry() *indicator.Registry { return p.registry }

// Consensus exposes the signal runner for the UI layer.
func (p *Pipeline) Consensus() *signal.Runner { return p.runner }

// Run connects to the provider and drives the whole flow until ctx is
// cancelled or a stage fails hard. Provider end-of-stream is not a
// failure: the broker closes, consumers drain, and the view keeps
// serving frozen statistics until cancellation.
func (p *Pipeline) Run(ctx context.Context) error {
	symbols := make([]model.Symbol, len(p.cfg.Symbols))
	for i, s := range p.cfg.Symbols {
		symbols[i] = model.Symbol(s)
	}

	if err := p.provider.Authenticate(ctx); err != nil {
		return fmt.Errorf("authenticating with %s: %w", p.provider.Name(), err)
	}
	stream, err := p.provider.Subscribe(ctx, symbols)
	if err != nil {
		return fmt.Errorf("subscribing via %s: %w", p.provider.Name(), err)
	}
	p.logger.Info("trade stream opened", "provider", p.provider.Name(), "symbols", len(symbols))

	pubs, err := p.connectPublishers()
	if err != nil {
		return err
	}

	// Every consumer attaches before the first trade flows, so all of
	// them observe the full sequence.
	collectorSub, err := p.subscribe()
	if err != nil {
		return p.abort(err, pubs)
	}
	viewSub, err := p.subscribe()
	if err != nil {
		return p.abort(err, pubs)
	}
	indicatorSubs := make([]*broker.Subscription, len(p.indicators))
	for i := range p.indicators {
		if indicatorSubs[i], err = p.subscribe(); err != nil {
			return p.abort(err, pubs)
		}
	}
	var pubSub *broker.Subscription
	if len(pubs) > 0 {
		if pubSub, err = p.subscribe(); err != nil {
			return p.abort(err, pubs)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return p.ingest(gctx, stream) })
	g.Go(func() error {
		defer collectorSub.Unsubscribe()
		return p.collector.Run(gctx, collectorSub.C())
	})
	g.Go(func() error {
		defer viewSub.Unsubscribe()
		return p.viewModel.Run(gctx, viewSub.C())
	})
	for i, ind := range p.indicators {
		ind := ind
		sub := indicatorSubs[i]
		g.Go(func() error {
			defer sub.Unsubscribe()
			return p.runIndicator(gctx, ind, sub.C())
		})
	}
	g.Go(func() error { return p.forwardUpdates(gctx) })
	g.Go(func() error { return p.runner.Run(gctx) })
	g.Go(func() error { return p.observeConsensus(gctx) })
	g.Go(func() error { return p.sampleBrokerStats(gctx) })

	if pubSub != nil {
		forwarder := publish.NewForwarder(p.logger, pubs...)
		g.Go(func() error {
			defer pubSub.Unsubscribe()
			return forwarder.Run(gctx, pubSub.C())
		})
	}

	if p.cfg.Metrics.Enabled {
		server := metrics.NewServer(metrics.ServerConfig{Addr: p.cfg.Metrics.Addr}, p.metrics, p.logger)
		g.Go(func() error { return server.Run(gctx) })
	}

	waitErr := g.Wait()

	p.closePublishers(pubs)
	if err := p.provider.Close(); err != nil {
		p.logger.Warn("provider close failed", "error", err)
	}

	return waitErr
}

// abort releases already-connected publishers on a failed assembly.
func (p *Pipeline) abort(err error, pubs []publish.Publisher) error {
	p.closePublishers(pubs)
	return err
}

func (p *Pipeline) closePublishers(pubs []publish.Publisher) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), publisherGrace)
	defer cancel()
	for _, pub := range pubs {
		if err := pub.Close(shutdownCtx); err != nil {
			p.logger.Warn("publisher close failed", "publisher", pub.Name(), "error", err)
		}
	}
}

// subscribe attaches one broker consumer, translating a closed broker
// into a hard assembly error (it can only happen on a misused pipeline).
func (p *Pipeline) subscribe() (*broker.Subscription, error) {
	sub, err := p.broker.Subscribe()
	if err != nil {
		return nil, fmt.Errorf("attaching broker subscriber: %w", err)
	}
	return sub, nil
}

// ingest pumps provider trades into the broker. The broker closes when
// the provider stream ends, so every subscriber sees a finite sequence.
func (p *Pipeline) ingest(ctx context.Context, stream <-chan model.TradeRecord) error {
	defer p.broker.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case t, ok := <-stream:
			if !ok {
				p.logger.Info("provider stream ended, broker closing")
				return nil
			}
			p.metrics.TradesIngested.Inc()
			p.metrics.TradeLatency.Set(float64(t.LatencyMs))
			if err := p.broker.Publish(ctx, t); err != nil {
				if errors.Is(err, broker.ErrClosed) || errors.Is(err, context.Canceled) {
					return nil
				}
				return fmt.Errorf("publishing trade: %w", err)
			}
		}
	}
}

// runIndicator feeds one indicator from its own subscription and
// records every emitted state with its mapped signal.
func (p *Pipeline) runIndicator(ctx context.Context, ind indicator.Indicator, trades <-chan model.TradeRecord) error {
	states := ind.Process(ctx, trades)
	for state := range states {
		p.registry.Put(state, ind.Signal(state))
	}
	return nil
}

// forwardUpdates feeds registry updates into the consensus runner.
func (p *Pipeline) forwardUpdates(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-p.registry.Updates():
			p.runner.Offer(u.Signal)
		}
	}
}

// observeConsensus counts consensus outcomes into the metrics.
func (p *Pipeline) observeConsensus(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig := <-p.runner.C():
			p.metrics.Signals.WithLabelValues(sig.Action.String()).Inc()
		}
	}
}

// sampleBrokerStats mirrors broker counters into the metrics on an
// interval, adding deltas so the Prometheus counters stay monotonic.
func (p *Pipeline) sampleBrokerStats(ctx context.Context) error {
	ticker := time.NewTicker(samplerInterval)
	defer ticker.Stop()

	var last broker.Stats
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s := p.broker.Stats()
			p.metrics.BrokerSubscribers.Set(float64(s.Subscribers))
			p.metrics.BrokerPublished.Add(float64(s.Published - last.Published))
			p.metrics.BrokerDelivered.Add(float64(s.Delivered - last.Delivered))
			p.metrics.BrokerLost.Add(float64(s.Lost - last.Lost))
			last = s
		}
	}
}

// connectPublishers builds the enabled broadcast sinks. NATS connects
// eagerly, so a dead server fails startup; Redis connects lazily and
// surfaces failures through its flush counters.
func (p *Pipeline) connectPublishers() ([]publish.Publisher, error) {
	var pubs []publish.Publisher

	if p.cfg.Publish.NATS.Enabled {
		nc, err := publish.NewNATS(publish.NATSConfig{
			URL:           p.cfg.Publish.NATS.URL,
			SubjectPrefix: p.cfg.Publish.NATS.SubjectPrefix,
		}, p.logger)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, nc)
	}

	if p.cfg.Publish.Redis.Enabled {
		pubs = append(pubs, publish.NewRedis(publish.RedisConfig{
			Addr:          p.cfg.Publish.Redis.Addr,
			Password:      p.cfg.Publish.Redis.Password,
			DB:            p.cfg.Publish.Redis.DB,
			Channel:       p.cfg.Publish.Redis.Channel,
			FlushInterval: p.cfg.Publish.Redis.FlushInterval,
			BatchSize:     p.cfg.Publish.Redis.BatchSize,
		}, p.logger))
	}

	return pubs, nil
}
