package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/front-depiction/cli-stock/internal/model"
)

// finnhubMessage is the envelope shared by every Finnhub frame.
type finnhubMessage struct {
	Type string         `json:"type"`
	Data []finnhubTrade `json:"data"`
	Msg  string         `json:"msg"`
}

// finnhubTrade is one execution inside a trade frame.
type finnhubTrade struct {
	Symbol     string   `json:"s"`
	Price      float64  `json:"p"`
	Volume     float64  `json:"v"`
	Timestamp  int64    `json:"t"` // ms since epoch
	Conditions []string `json:"c"`
}

// finnhubCommand is an outbound subscribe/unsubscribe frame.
type finnhubCommand struct {
	Type   string `json:"type"`
	Symbol string `json:"symbol"`
}

// Finnhub streams trades from the Finnhub websocket API. Credentials
// travel as a query token on the handshake.
type Finnhub struct {
	wsURL string
	token string

	opts   settings
	logger *slog.Logger
	sock   *socket

	mu         sync.Mutex
	subscribed bool
	symbols    []model.Symbol
}

// NewFinnhub creates a Finnhub provider for the given endpoint. The
// connection is not opened until Authenticate.
func NewFinnhub(wsURL, token string, opts ...Option) *Finnhub {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	logger := s.logger.With("component", "provider", "provider", "finnhub")
	return &Finnhub{
		wsURL:  wsURL,
		token:  token,
		opts:   s,
		logger: logger,
		sock:   newSocket(s, logger),
	}
}

// Name implements Provider.
func (f *Finnhub) Name() string { return "finnhub" }

// Authenticate implements Provider. Finnhub authenticates on the
// handshake itself, so a successful dial is a successful login.
func (f *Finnhub) Authenticate(ctx context.Context) error {
	if f.token == "" {
		return fmt.Errorf("%w: missing api token", ErrUnauthenticated)
	}

	u, err := url.Parse(f.wsURL)
	if err != nil {
		return fmt.Errorf("%w: parse endpoint: %v", ErrConnectFailed, err)
	}
	q := u.Query()
	q.Set("token", f.token)
	u.RawQuery = q.Encode()

	if err := f.sock.dial(ctx, u.String()); err != nil {
		return err
	}

	f.logger.Info("connected", "host", u.Host)
	return nil
}

// Subscribe implements Provider.
func (f *Finnhub) Subscribe(ctx context.Context, symbols []model.Symbol) (<-chan model.TradeRecord, error) {
	if !f.sock.connected() {
		return nil, ErrNotConnected
	}

	f.mu.Lock()
	if f.subscribed {
		f.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}
	f.subscribed = true
	f.symbols = append([]model.Symbol(nil), symbols...)
	f.mu.Unlock()

	for _, sym := range symbols {
		if err := f.sock.sendJSON(finnhubCommand{Type: "subscribe", Symbol: string(sym)}); err != nil {
			return nil, fmt.Errorf("subscribe %s: %w", sym, err)
		}
	}

	out := make(chan model.TradeRecord, f.opts.bufferSize)
	go f.sock.watch(ctx)
	go f.sock.heartbeatLoop()
	go f.readLoop(ctx, out)

	f.logger.Info("subscribed", "symbols", len(symbols))
	return out, nil
}

// readLoop decodes frames until the connection ends, emitting validated
// records on out. Closing out is the stream's only terminal signal.
func (f *Finnhub) readLoop(ctx context.Context, out chan<- model.TradeRecord) {
	defer close(out)

	for {
		data, receivedAt, err := f.sock.read()
		if err != nil {
			if f.sock.closing() {
				f.logger.Info("stream closed")
			} else {
				f.logger.Warn("stream ended", "error", err)
			}
			return
		}

		var msg finnhubMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			perr := &ParseError{Provider: f.Name(), Frame: frameExcerpt(data), Cause: err}
			f.logger.Warn("dropping malformed frame", "error", err, "frame", perr.Frame)
			f.opts.noteParseError(perr)
			continue
		}

		switch msg.Type {
		case "trade":
			for _, tr := range msg.Data {
				rec, err := model.NewTradeRecord(model.Symbol(tr.Symbol), tr.Price, tr.Volume, tr.Timestamp, receivedAt, tr.Conditions)
				if err != nil {
					f.logger.Debug("dropping invalid trade", "symbol", tr.Symbol, "error", err)
					f.opts.noteParseError(err)
					continue
				}
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			}
		case "ping":
			// Keepalive, nothing to emit.
		case "error":
			f.logger.Warn("provider reported error", "message", msg.Msg)
		default:
			f.logger.Debug("ignoring frame", "type", msg.Type)
		}
	}
}

// Close implements Provider. Symbols are unsubscribed best-effort
// before the close frame goes out.
func (f *Finnhub) Close() error {
	f.mu.Lock()
	symbols := f.symbols
	subscribed := f.subscribed
	f.mu.Unlock()

	if subscribed && f.sock.connected() {
		for _, sym := range symbols {
			f.sock.sendJSON(finnhubCommand{Type: "unsubscribe", Symbol: string(sym)})
		}
	}

	return f.sock.close()
}

var _ Provider = (*Finnhub)(nil)
