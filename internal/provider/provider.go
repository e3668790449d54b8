package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/front-depiction/cli-stock/internal/model"
)

// Provider errors.
var (
	// ErrUnauthenticated indicates rejected or missing credentials.
	// Retrying without new credentials will not succeed.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrConnectFailed indicates the upstream could not be reached or
	// the handshake failed for a reason other than credentials.
	ErrConnectFailed = errors.New("connect failed")

	// ErrNotConnected is returned when Subscribe is called before a
	// successful Authenticate.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadySubscribed is returned on a second Subscribe call.
	// Streams are single-use.
	ErrAlreadySubscribed = errors.New("already subscribed")
)

// ParseError wraps a provider frame that could not be decoded.
type ParseError struct {
	// Provider is the feed name ("finnhub", "polygon").
	Provider string
	// Frame is a truncated copy of the offending payload.
	Frame string
	// Cause is the underlying decode error.
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: malformed frame: %v", e.Provider, e.Cause)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Provider streams validated trades from one upstream market data feed.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string

	// Authenticate establishes the WebSocket connection and completes
	// the provider's credential exchange. It returns an error wrapping
	// ErrUnauthenticated when credentials are rejected and one wrapping
	// ErrConnectFailed for transport failures.
	Authenticate(ctx context.Context) error

	// Subscribe requests trades for the given symbols and returns the
	// record stream. The channel closes when the connection drops, the
	// context is cancelled, or Close is called. Subscribe may be called
	// at most once per connection.
	Subscribe(ctx context.Context, symbols []model.Symbol) (<-chan model.TradeRecord, error)

	// Close tears down the connection. Safe to call more than once.
	Close() error
}

// frameExcerpt truncates a raw frame for inclusion in logs and errors.
func frameExcerpt(data []byte) string {
	const max = 256
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
