package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/front-depiction/cli-stock/internal/model"
)

// ErrClosed is returned by Publish after Close.
var ErrClosed = errors.New("publish: closed")

// Publisher delivers trades to one external sink.
type Publisher interface {
	// Name identifies the sink in logs and stats.
	Name() string
	// Publish delivers one trade. Implementations may buffer; a nil
	// return means accepted, not necessarily on the wire.
	Publish(ctx context.Context, t model.TradeRecord) error
	// Close flushes buffered trades and releases the connection. The
	// context bounds how long the flush may take.
	Close(ctx context.Context) error
}

// tradePayload is the wire form of one trade on a broadcast channel.
type tradePayload struct {
	Symbol     string   `json:"symbol"`
	Price      float64  `json:"price"`
	Volume     float64  `json:"volume"`
	Timestamp  int64    `json:"timestamp"`  // source time, ms since epoch
	ReceivedAt int64    `json:"receivedAt"` // local receipt time, ms since epoch
	LatencyMs  int64    `json:"latencyMs"`
	Conditions []string `json:"conditions,omitempty"`
}

// encodeTrade renders the JSON payload shared by all publishers.
func encodeTrade(t model.TradeRecord) ([]byte, error) {
	payload := tradePayload{
		Symbol:     string(t.Symbol),
		Price:      t.Price,
		Volume:     t.Volume,
		Timestamp:  t.SourceTimestamp,
		ReceivedAt: t.ReceivedTimestamp,
		LatencyMs:  t.LatencyMs,
		Conditions: t.Conditions,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("publish: encoding trade: %w", err)
	}
	return data, nil
}
