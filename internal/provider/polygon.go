package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/front-depiction/cli-stock/internal/model"
)

// nsPerMs converts Polygon's nanosecond timestamps to milliseconds.
const nsPerMs = int64(1_000_000)

// polygonEvent is one entry of the event arrays Polygon sends. Status
// and trade events share the envelope; ev discriminates.
type polygonEvent struct {
	Event      string  `json:"ev"`
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	Symbol     string  `json:"sym"`
	Price      float64 `json:"p"`
	Size       float64 `json:"s"`
	Timestamp  int64   `json:"t"` // ns since epoch
	Conditions []int   `json:"c"`
}

// polygonCommand is an outbound auth/subscribe frame.
type polygonCommand struct {
	Action string `json:"action"`
	Params string `json:"params"`
}

// Polygon streams trades from the Polygon websocket API. Unlike
// Finnhub the login is an explicit frame exchange after the handshake.
type Polygon struct {
	wsURL  string
	apiKey string

	opts   settings
	logger *slog.Logger
	sock   *socket

	mu         sync.Mutex
	subscribed bool
}

// NewPolygon creates a Polygon provider for the given endpoint. The
// connection is not opened until Authenticate.
func NewPolygon(wsURL, apiKey string, opts ...Option) *Polygon {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	logger := s.logger.With("component", "provider", "provider", "polygon")
	return &Polygon{
		wsURL:  wsURL,
		apiKey: apiKey,
		opts:   s,
		logger: logger,
		sock:   newSocket(s, logger),
	}
}

// Name implements Provider.
func (p *Polygon) Name() string { return "polygon" }

// Authenticate implements Provider. The server speaks first with a
// connected status, then answers the auth frame with auth_success or
// auth_failed.
func (p *Polygon) Authenticate(ctx context.Context) error {
	if p.apiKey == "" {
		return fmt.Errorf("%w: missing api key", ErrUnauthenticated)
	}

	if err := p.sock.dial(ctx, p.wsURL); err != nil {
		return err
	}

	events, err := p.readEvents()
	if err != nil {
		return fmt.Errorf("%w: reading greeting: %v", ErrConnectFailed, err)
	}
	if status, msg := statusOf(events); status != "connected" {
		return fmt.Errorf("%w: unexpected greeting %q (%s)", ErrConnectFailed, status, msg)
	}

	if err := p.sock.sendJSON(polygonCommand{Action: "auth", Params: p.apiKey}); err != nil {
		return fmt.Errorf("%w: sending auth: %v", ErrConnectFailed, err)
	}

	events, err = p.readEvents()
	if err != nil {
		return fmt.Errorf("%w: reading auth response: %v", ErrConnectFailed, err)
	}
	status, msg := statusOf(events)
	switch status {
	case "auth_success":
		p.logger.Info("authenticated")
		return nil
	case "auth_failed":
		return fmt.Errorf("%w: %s", ErrUnauthenticated, msg)
	default:
		return fmt.Errorf("%w: unexpected auth response %q (%s)", ErrConnectFailed, status, msg)
	}
}

// Subscribe implements Provider. All symbols travel in one frame with
// the trades channel prefix, "T.AAPL,T.MSFT".
func (p *Polygon) Subscribe(ctx context.Context, symbols []model.Symbol) (<-chan model.TradeRecord, error) {
	if !p.sock.connected() {
		return nil, ErrNotConnected
	}

	p.mu.Lock()
	if p.subscribed {
		p.mu.Unlock()
		return nil, ErrAlreadySubscribed
	}
	p.subscribed = true
	p.mu.Unlock()

	params := make([]string, len(symbols))
	for i, sym := range symbols {
		params[i] = "T." + string(sym)
	}
	if err := p.sock.sendJSON(polygonCommand{Action: "subscribe", Params: strings.Join(params, ",")}); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan model.TradeRecord, p.opts.bufferSize)
	go p.sock.watch(ctx)
	go p.sock.heartbeatLoop()
	go p.readLoop(ctx, out)

	p.logger.Info("subscribed", "symbols", len(symbols))
	return out, nil
}

func (p *Polygon) readLoop(ctx context.Context, out chan<- model.TradeRecord) {
	defer close(out)

	for {
		data, receivedAt, err := p.sock.read()
		if err != nil {
			if p.sock.closing() {
				p.logger.Info("stream closed")
			} else {
				p.logger.Warn("stream ended", "error", err)
			}
			return
		}

		var events []polygonEvent
		if err := json.Unmarshal(data, &events); err != nil {
			perr := &ParseError{Provider: p.Name(), Frame: frameExcerpt(data), Cause: err}
			p.logger.Warn("dropping malformed frame", "error", err, "frame", perr.Frame)
			p.opts.noteParseError(perr)
			continue
		}

		for _, ev := range events {
			switch ev.Event {
			case "T":
				rec, err := model.NewTradeRecord(model.Symbol(ev.Symbol), ev.Price, ev.Size, ev.Timestamp/nsPerMs, receivedAt, conditionStrings(ev.Conditions))
				if err != nil {
					p.logger.Debug("dropping invalid trade", "symbol", ev.Symbol, "error", err)
					p.opts.noteParseError(err)
					continue
				}
				select {
				case out <- rec:
				case <-ctx.Done():
					return
				}
			case "status":
				p.logger.Debug("status event", "status", ev.Status, "message", ev.Message)
			default:
				p.logger.Debug("ignoring event", "type", ev.Event)
			}
		}
	}
}

// Close implements Provider.
func (p *Polygon) Close() error {
	return p.sock.close()
}

func (p *Polygon) readEvents() ([]polygonEvent, error) {
	data, err := p.sock.readWithDeadline(p.opts.handshakeTimeout)
	if err != nil {
		return nil, err
	}
	var events []polygonEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode %s: %w", frameExcerpt(data), err)
	}
	return events, nil
}

// statusOf returns the first status event's status and message.
func statusOf(events []polygonEvent) (string, string) {
	for _, ev := range events {
		if ev.Event == "status" {
			return ev.Status, ev.Message
		}
	}
	return "", ""
}

func conditionStrings(codes []int) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = strconv.Itoa(c)
	}
	return out
}

var _ Provider = (*Polygon)(nil)
