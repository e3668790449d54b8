package indicator

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// DefaultBandK is the standard deviation multiple for Bollinger bands.
const DefaultBandK = 2.0

// Bollinger tracks an SMA centerline with bands k standard deviations
// out. The signal works on %B, the price's position within the bands.
type Bollinger struct {
	plugin
	period int
	k      float64

	prices []float64 // oldest first
}

// NewBollinger creates a Bollinger band indicator with k = 2.
func NewBollinger(symbol model.Symbol, period int) (*Bollinger, error) {
	return NewBollingerWithK(symbol, period, DefaultBandK)
}

// NewBollingerWithK creates a Bollinger band indicator with a custom
// deviation multiple.
func NewBollingerWithK(symbol model.Symbol, period int, k float64) (*Bollinger, error) {
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	if period < 2 {
		return nil, fmt.Errorf("%w: got %d, need at least 2", ErrInvalidPeriod, period)
	}
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidBandWidth, k)
	}
	return &Bollinger{
		plugin: plugin{id: uuid.New().String(), symbol: symbol},
		period: period,
		k:      k,
	}, nil
}

// Name implements Indicator.
func (b *Bollinger) Name() string { return fmt.Sprintf("BB(%d,%.0f)", b.period, b.k) }

// Process implements Indicator.
func (b *Bollinger) Process(ctx context.Context, trades <-chan model.TradeRecord) <-chan model.IndicatorState {
	return scan(ctx, trades, b.symbol, b.observe)
}

func (b *Bollinger) observe(t model.TradeRecord) (model.IndicatorState, bool) {
	b.prices = append(b.prices, t.Price)
	if len(b.prices) > b.period {
		b.prices = b.prices[1:]
	}
	if len(b.prices) < b.period {
		return model.IndicatorState{}, false
	}

	middle := meanOf(b.prices)
	sigma := stddevOf(b.prices)
	upper := middle + b.k*sigma
	lower := middle - b.k*sigma

	// Flat ring collapses the bands; park %B mid-band so no signal fires.
	percentB := 0.5
	if upper > lower {
		percentB = (t.Price - lower) / (upper - lower)
	}
	bandwidth := 0.0
	if middle != 0 {
		bandwidth = (upper - lower) / middle * 100
	}

	return model.IndicatorState{
		ID:         b.id,
		Name:       b.Name(),
		Symbol:     b.symbol,
		LastUpdate: t.SourceTimestamp,
		Value:      middle,
		Metadata: map[string]any{
			"price":     t.Price,
			"volume":    t.Volume,
			"upper":     upper,
			"lower":     lower,
			"middle":    middle,
			"percentB":  percentB,
			"bandwidth": bandwidth,
		},
	}, true
}

// Signal implements Indicator. At or below the lower band reads as a
// Buy, at or above the upper as a Sell.
func (b *Bollinger) Signal(state model.IndicatorState) model.Signal {
	percentB, ok := metaFloat(state, "percentB")
	price, okPrice := metaFloat(state, "price")
	if !ok || !okPrice {
		return model.HoldSignal(state.LastUpdate)
	}

	switch {
	case percentB <= 0:
		lower, _ := metaFloat(state, "lower")
		strength := math.Min(1, math.Abs(percentB))
		reason := fmt.Sprintf("price %.2f at lower band %.2f", price, lower)
		return model.BuySignal(strength, state.LastUpdate, reason)
	case percentB >= 1:
		upper, _ := metaFloat(state, "upper")
		strength := math.Min(1, percentB)
		reason := fmt.Sprintf("price %.2f at upper band %.2f", price, upper)
		return model.SellSignal(strength, state.LastUpdate, reason)
	default:
		return model.HoldSignal(state.LastUpdate)
	}
}

var _ Indicator = (*Bollinger)(nil)
