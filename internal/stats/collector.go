package stats

import (
	"context"
	"log/slog"
	"sync"

	"github.com/front-depiction/cli-stock/internal/model"
)

// Collector owns the per-symbol statistics map. Each trade is applied as
// an atomic read-modify-write under one lock; readers receive value
// snapshots, so concurrent update and display never interfere.
type Collector struct {
	window Window
	logger *slog.Logger

	mu     sync.Mutex
	states map[model.Symbol]State
}

// NewCollector creates a collector applying the given window policy.
func NewCollector(window Window, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		window: window,
		logger: logger.With("component", "stats"),
		states: make(map[model.Symbol]State),
	}
}

// Record applies one trade to its symbol's state.
func (c *Collector) Record(t model.TradeRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[t.Symbol] = c.window.Update(c.states[t.Symbol], t.Price, t.Volume, t.SourceTimestamp)
}

// State returns the current state for one symbol.
func (c *Collector) State(sym model.Symbol) (State, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.states[sym]
	return s, ok
}

// Snapshot returns a copy of the whole map. The contained states are
// values whose rings are rebuilt on every update, so the copy is frozen.
func (c *Collector) Snapshot() map[model.Symbol]State {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[model.Symbol]State, len(c.states))
	for sym, s := range c.states {
		out[sym] = s
	}
	return out
}

// Run consumes the trade stream until it closes or ctx is cancelled.
// Both are normal terminal conditions, not errors.
func (c *Collector) Run(ctx context.Context, trades <-chan model.TradeRecord) error {
	c.logger.Info("stats collector started", "window", c.window.Kind.String())
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stats collector stopped", "reason", "context cancelled")
			return nil
		case t, ok := <-trades:
			if !ok {
				c.logger.Info("stats collector stopped", "reason", "stream closed")
				return nil
			}
			c.Record(t)
		}
	}
}
