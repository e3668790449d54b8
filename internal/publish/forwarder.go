package publish

import (
	"context"
	"log/slog"
	"sync"

	"github.com/front-depiction/cli-stock/internal/model"
)

// ForwarderStats counts the forwarder's deliveries.
type ForwarderStats struct {
	Forwarded int64 // trades offered to every publisher
	Errors    int64 // individual publisher failures
}

// Forwarder fans one trade stream out to a set of publishers. Each
// trade is offered to every publisher in turn; a failure is logged and
// counted, and the remaining publishers still get the trade.
type Forwarder struct {
	logger *slog.Logger
	pubs   []Publisher

	mu    sync.Mutex
	stats ForwarderStats
}

// NewForwarder wires the publishers. An empty set is legal; Run then
// just drains the stream.
func NewForwarder(logger *slog.Logger, pubs ...Publisher) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		logger: logger.With("component", "publish"),
		pubs:   pubs,
	}
}

// Run forwards until the stream closes or ctx is cancelled. Publisher
// lifecycle stays with the caller; Run never closes them.
func (f *Forwarder) Run(ctx context.Context, trades <-chan model.TradeRecord) error {
	f.logger.Info("forwarder started", "publishers", len(f.pubs))

	for {
		select {
		case <-ctx.Done():
			return nil
		case t, ok := <-trades:
			if !ok {
				f.logger.Info("forwarder finished, trade stream ended")
				return nil
			}
			f.forward(ctx, t)
		}
	}
}

// Stats returns a snapshot of the counters.
func (f *Forwarder) Stats() ForwarderStats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *Forwarder) forward(ctx context.Context, t model.TradeRecord) {
	var failed int64
	for _, p := range f.pubs {
		if err := p.Publish(ctx, t); err != nil {
			failed++
			f.logger.Warn("publisher failed, skipping",
				"publisher", p.Name(),
				"symbol", t.Symbol,
				"error", err,
			)
		}
	}

	f.mu.Lock()
	f.stats.Forwarded++
	f.stats.Errors += failed
	f.mu.Unlock()
}
