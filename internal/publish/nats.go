package publish

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/front-depiction/cli-stock/internal/model"
)

const (
	natsConnectTimeout = 5 * time.Second
	natsDrainTimeout   = 10 * time.Second
)

// NATSConfig configures the NATS publisher.
type NATSConfig struct {
	URL           string // server URL, e.g. nats://127.0.0.1:4222
	SubjectPrefix string // subject is SubjectPrefix.SYMBOL
}

// DefaultNATSConfig returns the stock settings.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "trades",
	}
}

// NATS publishes each trade as a JSON message on a per-symbol subject.
type NATS struct {
	cfg    NATSConfig
	logger *slog.Logger

	conn    *nats.Conn
	drained chan struct{} // closed by the connection's closed handler

	mu     sync.Mutex
	closed bool
}

// NewNATS connects to the server and returns a ready publisher.
func NewNATS(cfg NATSConfig, logger *slog.Logger) (*NATS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.SubjectPrefix == "" {
		cfg.SubjectPrefix = "trades"
	}

	p := &NATS{
		cfg:     cfg,
		logger:  logger.With("component", "publish", "sink", "nats"),
		drained: make(chan struct{}),
	}

	conn, err := nats.Connect(cfg.URL,
		nats.Name("stockstream"),
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(natsDrainTimeout),
		nats.ClosedHandler(func(*nats.Conn) { close(p.drained) }),
	)
	if err != nil {
		return nil, fmt.Errorf("publish: nats connect: %w", err)
	}
	p.conn = conn

	p.logger.Info("connected", "url", cfg.URL, "subject_prefix", cfg.SubjectPrefix)
	return p, nil
}

// Name implements Publisher.
func (p *NATS) Name() string { return "nats" }

// Publish sends one trade on SubjectPrefix.SYMBOL. Delivery is
// fire-and-forget; the client buffers and flushes asynchronously.
func (p *NATS) Publish(_ context.Context, t model.TradeRecord) error {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return ErrClosed
	}

	data, err := encodeTrade(t)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(subjectFor(p.cfg.SubjectPrefix, t.Symbol), data); err != nil {
		return fmt.Errorf("publish: nats publish: %w", err)
	}
	return nil
}

// Close drains the connection so buffered messages flush, waiting up to
// the context deadline before forcing the connection shut.
func (p *NATS) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	if err := p.conn.Drain(); err != nil {
		p.conn.Close()
		return fmt.Errorf("publish: nats drain: %w", err)
	}
	select {
	case <-p.drained:
		p.logger.Info("drained")
		return nil
	case <-ctx.Done():
		p.conn.Close()
		return ctx.Err()
	}
}

// subjectFor builds the per-symbol subject name.
func subjectFor(prefix string, symbol model.Symbol) string {
	return prefix + "." + string(symbol)
}

var _ Publisher = (*NATS)(nil)
