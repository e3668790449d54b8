package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/front-depiction/cli-stock/internal/model"
)

// RedisConfig configures the Redis publisher.
type RedisConfig struct {
	Addr          string        // host:port
	Password      string        // empty for no auth
	DB            int           // logical database
	Channel       string        // PUBLISH channel
	FlushInterval time.Duration // how often the batch is pipelined out
	BatchSize     int           // flush early once this many trades queue
}

// DefaultRedisConfig returns the stock settings.
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:          "127.0.0.1:6379",
		Channel:       "trades",
		FlushInterval: 250 * time.Millisecond,
		BatchSize:     100,
	}
}

// RedisStats counts what the publisher has done so far.
type RedisStats struct {
	Queued    int64 // trades accepted into the batch
	Published int64 // trades confirmed onto the channel
	Flushes   int64 // pipeline round trips
	Errors    int64 // failed round trips
}

// Redis queues trades and PUBLISHes them through a pipeline on an
// interval, so a chatty stream costs one round trip per flush instead
// of one per trade.
type Redis struct {
	cfg    RedisConfig
	logger *slog.Logger
	client *redis.Client

	mu     sync.Mutex
	batch  [][]byte
	stats  RedisStats
	closed bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewRedis builds the client and starts the flush loop. The connection
// itself is lazy; a dead server surfaces as flush errors, not here.
func NewRedis(cfg RedisConfig, logger *slog.Logger) *Redis {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Channel == "" {
		cfg.Channel = "trades"
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 250 * time.Millisecond
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}

	p := &Redis{
		cfg:    cfg,
		logger: logger.With("component", "publish", "sink", "redis"),
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		batch: make([][]byte, 0, cfg.BatchSize),
		done:  make(chan struct{}),
	}

	p.wg.Add(1)
	go p.flushLoop()

	p.logger.Info("publisher started",
		"addr", cfg.Addr,
		"channel", cfg.Channel,
		"flush_interval", cfg.FlushInterval,
	)
	return p
}

// Name implements Publisher.
func (p *Redis) Name() string { return "redis" }

// Publish queues one trade for the next flush. The batch-size trigger
// flushes inline so a burst does not wait out the interval.
func (p *Redis) Publish(ctx context.Context, t model.TradeRecord) error {
	data, err := encodeTrade(t)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.batch = append(p.batch, data)
	p.stats.Queued++
	full := len(p.batch) >= p.cfg.BatchSize
	p.mu.Unlock()

	if full {
		p.flush(ctx)
	}
	return nil
}

// Stats returns a snapshot of the counters.
func (p *Redis) Stats() RedisStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Close stops the flush loop, flushes the tail, and closes the client.
func (p *Redis) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	close(p.done)
	p.wg.Wait()

	p.flush(ctx)
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("publish: redis close: %w", err)
	}
	p.logger.Info("publisher stopped")
	return nil
}

// flushLoop pipelines whatever queued since the last interval.
func (p *Redis) flushLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.done:
			return
		case <-ticker.C:
			p.flush(context.Background())
		}
	}
}

// flush takes ownership of the current batch and PUBLISHes it in one
// pipeline. A failed round trip drops the batch instead of retrying
// stale trades.
func (p *Redis) flush(ctx context.Context) {
	p.mu.Lock()
	if len(p.batch) == 0 {
		p.mu.Unlock()
		return
	}
	batch := p.batch
	p.batch = make([][]byte, 0, p.cfg.BatchSize)
	p.mu.Unlock()

	start := time.Now()
	_, err := p.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, payload := range batch {
			pipe.Publish(ctx, p.cfg.Channel, payload)
		}
		return nil
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	if err != nil {
		p.stats.Errors++
		p.logger.Error("pipeline flush failed", "error", err, "count", len(batch))
		return
	}
	p.stats.Published += int64(len(batch))
	p.stats.Flushes++
	p.logger.Debug("flushed trades",
		"count", len(batch),
		"duration", time.Since(start),
	)
}

var _ Publisher = (*Redis)(nil)
