package signal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/front-depiction/cli-stock/internal/model"
)

// consensusBuffer is the capacity of the consensus channel.
const consensusBuffer = 16

// RunnerConfig holds aggregation tunables.
type RunnerConfig struct {
	// Interval is the aggregation cadence.
	Interval time.Duration
	// BatchMax caps signals consumed per pass. Zero means no cap.
	BatchMax int
	// InitialCapacity sizes the queue between passes.
	InitialCapacity int
}

// DefaultRunnerConfig returns the standard aggregation settings.
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		Interval:        time.Second,
		BatchMax:        0,
		InitialCapacity: 64,
	}
}

// Runner batches incoming signals and emits a consensus every interval.
type Runner struct {
	cfg    RunnerConfig
	logger *slog.Logger
	buf    *Buffer

	mu         sync.RWMutex
	latest     model.Signal
	haveLatest bool

	out chan model.Signal
}

// NewRunner creates a consensus runner. A nil logger falls back to the
// default logger.
func NewRunner(cfg RunnerConfig, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultRunnerConfig().Interval
	}
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = DefaultRunnerConfig().InitialCapacity
	}
	return &Runner{
		cfg:    cfg,
		logger: logger.With("component", "signal"),
		buf:    NewBuffer(cfg.InitialCapacity),
		out:    make(chan model.Signal, consensusBuffer),
	}
}

// Offer queues a signal for the next aggregation pass. Signals offered
// after shutdown are dropped.
func (r *Runner) Offer(s model.Signal) {
	r.buf.Add(s)
}

// Latest returns the most recent consensus, if any pass has produced
// one.
func (r *Runner) Latest() (model.Signal, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.haveLatest
}

// C returns the consensus stream. Slow consumers lose superseded
// entries, never the newest.
func (r *Runner) C() <-chan model.Signal {
	return r.out
}

// Run aggregates queued signals every interval until the context ends.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()
	defer r.buf.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			batch := r.buf.Drain(r.cfg.BatchMax)
			if len(batch) == 0 {
				continue
			}
			r.publish(Aggregate(batch), len(batch))
		}
	}
}

func (r *Runner) publish(consensus model.Signal, batchSize int) {
	r.mu.Lock()
	r.latest = consensus
	r.haveLatest = true
	r.mu.Unlock()

	if consensus.Action == model.ActionHold {
		r.logger.Debug("consensus hold", "signals", batchSize)
	} else {
		r.logger.Info("consensus signal",
			"action", consensus.Action.String(),
			"strength", consensus.Strength,
			"signals", batchSize,
			"reason", consensus.Reason)
	}

	select {
	case r.out <- consensus:
	default:
		select {
		case <-r.out:
		default:
		}
		select {
		case r.out <- consensus:
		default:
		}
	}
}
