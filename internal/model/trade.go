package model

import (
	"fmt"
	"math"
)

// Symbol identifies a tradeable instrument in the provider's native notation.
type Symbol string

// -----------------------------------------------------------------------------
// Trade Types
// -----------------------------------------------------------------------------

// TradeRecord is one executed trade as delivered by a market-data provider,
// validated and timestamped on receipt. Immutable once constructed.
type TradeRecord struct {
	Symbol            Symbol   // Instrument, non-empty
	Price             float64  // Execution price, finite and >= 0
	Volume            float64  // Executed quantity, finite and >= 0
	SourceTimestamp   int64    // Exchange wall-clock (ms since epoch), > 0
	ReceivedTimestamp int64    // Local clock when the record left the decoder (ms), > 0
	LatencyMs         int64    // ReceivedTimestamp - SourceTimestamp, >= 0
	Conditions        []string // Venue trade-condition codes, optional, order preserved
}

// PricePoint is the (price, volume, timestamp) triple retained by rolling
// statistics windows.
type PricePoint struct {
	Price     float64 // Trade price
	Volume    float64 // Trade volume
	Timestamp int64   // Source timestamp (ms since epoch)
}

// ValidationError reports a domain value whose field violates its constraint.
type ValidationError struct {
	Field  string // Field that failed (e.g. "price")
	Reason string // Constraint that was violated
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewTradeRecord validates the raw fields and returns the canonical record.
// Latency is derived, never supplied. A record that fails any constraint is
// rejected here so malformed payloads never reach downstream queues.
func NewTradeRecord(symbol Symbol, price, volume float64, sourceTS, receivedTS int64, conditions []string) (TradeRecord, error) {
	if symbol == "" {
		return TradeRecord{}, &ValidationError{Field: "symbol", Reason: "must be non-empty"}
	}
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return TradeRecord{}, &ValidationError{Field: "price", Reason: "must be finite"}
	}
	if price < 0 {
		return TradeRecord{}, &ValidationError{Field: "price", Reason: "must be >= 0"}
	}
	if math.IsNaN(volume) || math.IsInf(volume, 0) {
		return TradeRecord{}, &ValidationError{Field: "volume", Reason: "must be finite"}
	}
	if volume < 0 {
		return TradeRecord{}, &ValidationError{Field: "volume", Reason: "must be >= 0"}
	}
	if sourceTS <= 0 {
		return TradeRecord{}, &ValidationError{Field: "sourceTimestamp", Reason: "must be > 0"}
	}
	if receivedTS <= 0 {
		return TradeRecord{}, &ValidationError{Field: "receivedTimestamp", Reason: "must be > 0"}
	}
	latency := receivedTS - sourceTS
	if latency < 0 {
		return TradeRecord{}, &ValidationError{Field: "latencyMs", Reason: "must be >= 0"}
	}
	return TradeRecord{
		Symbol:            symbol,
		Price:             price,
		Volume:            volume,
		SourceTimestamp:   sourceTS,
		ReceivedTimestamp: receivedTS,
		LatencyMs:         latency,
		Conditions:        conditions,
	}, nil
}

// Point projects the record onto the triple retained by statistics windows.
func (t TradeRecord) Point() PricePoint {
	return PricePoint{Price: t.Price, Volume: t.Volume, Timestamp: t.SourceTimestamp}
}
