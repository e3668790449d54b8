package broker

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// ErrClosed is returned by Publish and Subscribe once the broker closed.
var ErrClosed = errors.New("broker: closed")

// Config controls queueing and ordering behavior.
type Config struct {
	Capacity      int  // Per-subscriber queue capacity
	SortBySource  bool // Reorder each drained chunk by source timestamp
	SortChunkSize int  // Max chunk the sorter drains at once
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Capacity:      1024,
		SortBySource:  false,
		SortChunkSize: 16,
	}
}

// Stats is a snapshot of broker counters.
type Stats struct {
	Published   uint64 // Publish calls accepted
	Delivered   uint64 // Successful per-subscriber enqueues
	Lost        uint64 // In-flight items dropped because the subscriber left
	Subscribers int    // Currently attached subscribers
}

// Broker is the multicast node between the provider and all consumers.
type Broker struct {
	cfg    Config
	logger *slog.Logger

	pubMu sync.Mutex // serializes broadcasts; guarantees publish order per subscriber

	mu     sync.RWMutex // guards subs and closed
	subs   map[uuid.UUID]*Subscription
	closed bool

	done      chan struct{} // closed when the broker closes
	closeOnce sync.Once

	statsMu sync.Mutex
	stats   Stats
}

// New creates an open broker. A non-positive capacity falls back to the
// default.
func New(cfg Config, logger *slog.Logger) *Broker {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = def.Capacity
	}
	if cfg.SortChunkSize <= 0 {
		cfg.SortChunkSize = def.SortChunkSize
	}
	return &Broker{
		cfg:    cfg,
		logger: logger.With("component", "broker"),
		subs:   make(map[uuid.UUID]*Subscription),
		done:   make(chan struct{}),
	}
}

// Subscribe attaches a new subscriber whose sequence begins now. Callers
// release the queue with Unsubscribe, typically deferred at acquisition.
func (b *Broker) Subscribe() (*Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrClosed
	}
	s := &Subscription{
		id:     uuid.New(),
		broker: b,
		ch:     make(chan model.TradeRecord, b.cfg.Capacity),
		done:   make(chan struct{}),
	}
	s.out = s.ch
	if b.cfg.SortBySource {
		s.out = sortBySourceTime(s.ch, s.done, b.cfg.SortChunkSize)
	}
	b.subs[s.id] = s
	b.logger.Debug("subscriber attached", "id", s.id, "capacity", b.cfg.Capacity)
	return s, nil
}

// Publish enqueues t onto every currently attached subscriber queue and
// returns once all of them accepted. A full queue blocks; a subscriber
// that unsubscribes while its enqueue is blocked is skipped and only it
// misses the item. Publishing on a closed broker returns ErrClosed.
func (b *Broker) Publish(ctx context.Context, t model.TradeRecord) error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrClosed
	}
	targets := make([]*Subscription, 0, len(b.subs))
	for _, s := range b.subs {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	b.statsMu.Lock()
	b.stats.Published++
	b.statsMu.Unlock()

	for _, s := range targets {
		switch err := s.send(ctx, t, b.done); err {
		case nil:
			b.statsMu.Lock()
			b.stats.Delivered++
			b.statsMu.Unlock()
		case errSubscriberGone:
			b.statsMu.Lock()
			b.stats.Lost++
			b.statsMu.Unlock()
		case ErrClosed:
			return ErrClosed
		default:
			return err // ctx cancelled mid-broadcast
		}
	}
	return nil
}

// Close moves the broker to Closed: pending enqueues abort, every
// subscriber queue drains then ends, and future Publish/Subscribe calls
// are rejected. Idempotent.
func (b *Broker) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		targets := make([]*Subscription, 0, len(b.subs))
		for _, s := range b.subs {
			targets = append(targets, s)
		}
		b.subs = make(map[uuid.UUID]*Subscription)
		b.mu.Unlock()

		close(b.done)
		// closeQueue rather than Unsubscribe: consumers still draining get
		// everything that was buffered before the close.
		for _, s := range targets {
			s.closeQueue()
		}
		b.logger.Info("broker closed", "subscribers_released", len(targets))
	})
}

// Stats returns a snapshot of the counters.
func (b *Broker) Stats() Stats {
	b.statsMu.Lock()
	out := b.stats
	b.statsMu.Unlock()

	b.mu.RLock()
	out.Subscribers = len(b.subs)
	b.mu.RUnlock()
	return out
}

func (b *Broker) remove(id uuid.UUID) {
	b.mu.Lock()
	delete(b.subs, id)
	b.mu.Unlock()
}
