package view

import (
	"context"
	"log/slog"
	"time"

	"github.com/front-depiction/cli-stock/internal/model"
	"github.com/front-depiction/cli-stock/internal/stats"
)

// Snapshot is the UI-facing state of the stream at one instant.
type Snapshot struct {
	// Symbols lists the configured symbols in subscription order.
	Symbols []model.Symbol
	// RecentTrades holds the latest trades, newest first, at most
	// MaxTrades entries.
	RecentTrades []model.TradeRecord
	// Statistics maps each symbol to its windowed state.
	Statistics map[model.Symbol]stats.State
	// MaxTrades is the configured trade list cap.
	MaxTrades int
}

// StatsSource supplies the per-symbol statistics map.
type StatsSource interface {
	Snapshot() map[model.Symbol]stats.State
}

// SnapshotHandler receives built snapshots on every refresh tick.
type SnapshotHandler interface {
	HandleSnapshot(Snapshot) error
}

// SnapshotHandlerFunc is a function adapter for SnapshotHandler.
type SnapshotHandlerFunc func(Snapshot) error

func (f SnapshotHandlerFunc) HandleSnapshot(s Snapshot) error {
	return f(s)
}

// Config holds view tunables.
type Config struct {
	// Refresh is the snapshot cadence.
	Refresh time.Duration
	// MaxTrades caps the recent trade list.
	MaxTrades int
}

// DefaultConfig returns the standard view settings.
func DefaultConfig() Config {
	return Config{
		Refresh:   100 * time.Millisecond,
		MaxTrades: 20,
	}
}

// Model folds the trade stream and the statistics map into snapshots.
// All state is owned by the Run goroutine.
type Model struct {
	cfg     Config
	symbols []model.Symbol
	stats   StatsSource
	handler SnapshotHandler
	logger  *slog.Logger

	recent []model.TradeRecord
}

// New creates a view model. A nil logger falls back to the default
// logger.
func New(cfg Config, symbols []model.Symbol, source StatsSource, handler SnapshotHandler, logger *slog.Logger) *Model {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Refresh <= 0 {
		cfg.Refresh = def.Refresh
	}
	if cfg.MaxTrades <= 0 {
		cfg.MaxTrades = def.MaxTrades
	}
	return &Model{
		cfg:     cfg,
		symbols: append([]model.Symbol(nil), symbols...),
		stats:   source,
		handler: handler,
		logger:  logger.With("component", "view"),
	}
}

// Run drives the scan until the context ends. A closed trade stream
// freezes the trade list but the refresh tick keeps publishing.
func (m *Model) Run(ctx context.Context, trades <-chan model.TradeRecord) error {
	ticker := time.NewTicker(m.cfg.Refresh)
	defer ticker.Stop()

	m.logger.Info("view started", "refresh", m.cfg.Refresh, "maxTrades", m.cfg.MaxTrades)

	for {
		select {
		case <-ctx.Done():
			return nil
		case t, ok := <-trades:
			if !ok {
				m.logger.Info("trade stream ended, continuing with frozen trades")
				trades = nil
				continue
			}
			m.prepend(t)
		case <-ticker.C:
			m.publish()
		}
	}
}

// prepend puts the newest trade first and trims to the cap.
func (m *Model) prepend(t model.TradeRecord) {
	if len(m.recent) < m.cfg.MaxTrades {
		m.recent = append(m.recent, model.TradeRecord{})
	}
	copy(m.recent[1:], m.recent)
	m.recent[0] = t
}

func (m *Model) publish() {
	if m.handler == nil {
		return
	}

	snap := Snapshot{
		Symbols:      m.symbols,
		RecentTrades: append([]model.TradeRecord(nil), m.recent...),
		Statistics:   m.stats.Snapshot(),
		MaxTrades:    m.cfg.MaxTrades,
	}
	if err := m.handler.HandleSnapshot(snap); err != nil {
		m.logger.Warn("snapshot handler failed", "error", err)
	}
}
