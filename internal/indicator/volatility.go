package indicator

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// Method selects the volatility estimator. ATR and Parkinson are
// accepted names that currently share the close-to-close computation;
// trade streams carry no high/low range to feed the range estimators.
type Method string

const (
	MethodStdDev    Method = "stdDev"
	MethodATR       Method = "atr"
	MethodParkinson Method = "parkinson"
)

// tradingDaysPerYear annualizes per-trade return deviation.
const tradingDaysPerYear = 252

// Volatility estimates annualized volatility from simple returns over
// the last period prices and signals on threshold crossings combined
// with direction of change.
type Volatility struct {
	plugin
	period        int
	method        Method
	highThreshold float64

	prices   []float64
	previous float64
	havePrev bool
}

// NewVolatility creates a volatility indicator. highThreshold is the
// annualized percentage above which rising volatility reads as a Sell.
func NewVolatility(symbol model.Symbol, period int, method Method, highThreshold float64) (*Volatility, error) {
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	if period < 2 {
		return nil, fmt.Errorf("%w: got %d, need at least 2", ErrInvalidPeriod, period)
	}
	if highThreshold <= 0 {
		return nil, fmt.Errorf("%w: got %.2f", ErrInvalidThreshold, highThreshold)
	}
	switch method {
	case MethodStdDev, MethodATR, MethodParkinson:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMethod, method)
	}
	return &Volatility{
		plugin:        plugin{id: uuid.New().String(), symbol: symbol},
		period:        period,
		method:        method,
		highThreshold: highThreshold,
	}, nil
}

// Name implements Indicator.
func (v *Volatility) Name() string { return fmt.Sprintf("Volatility(%d)", v.period) }

// Process implements Indicator.
func (v *Volatility) Process(ctx context.Context, trades <-chan model.TradeRecord) <-chan model.IndicatorState {
	return scan(ctx, trades, v.symbol, v.observe)
}

func (v *Volatility) observe(t model.TradeRecord) (model.IndicatorState, bool) {
	v.prices = append(v.prices, t.Price)
	if len(v.prices) > v.period {
		v.prices = v.prices[1:]
	}
	if len(v.prices) < v.period {
		return model.IndicatorState{}, false
	}

	returns := make([]float64, 0, len(v.prices)-1)
	for i := 1; i < len(v.prices); i++ {
		if v.prices[i-1] == 0 {
			continue
		}
		returns = append(returns, v.prices[i]/v.prices[i-1]-1)
	}
	value := stddevOf(returns) * math.Sqrt(tradingDaysPerYear) * 100

	metadata := map[string]any{
		"price":      t.Price,
		"volume":     t.Volume,
		"volatility": value,
		"method":     string(v.method),
		"threshold":  v.highThreshold,
	}
	if v.havePrev {
		metadata["previous"] = v.previous
	}
	v.previous = value
	v.havePrev = true

	return model.IndicatorState{
		ID:         v.id,
		Name:       v.Name(),
		Symbol:     v.symbol,
		LastUpdate: t.SourceTimestamp,
		Value:      value,
		Metadata:   metadata,
	}, true
}

// Signal implements Indicator. Direction of change gates both sides:
// high volatility sells only while still climbing, calm buys only while
// still easing off.
func (v *Volatility) Signal(state model.IndicatorState) model.Signal {
	threshold, ok := metaFloat(state, "threshold")
	if !ok || threshold <= 0 {
		return model.HoldSignal(state.LastUpdate)
	}
	previous, hasPrev := metaFloat(state, "previous")
	if !hasPrev {
		return model.HoldSignal(state.LastUpdate)
	}

	vol := state.Value
	rising := vol > previous
	falling := vol < previous

	switch {
	case vol > threshold && rising:
		strength := math.Min(1, (vol-threshold)/threshold)
		reason := fmt.Sprintf("volatility %.1f above %.1f and rising", vol, threshold)
		return model.SellSignal(strength, state.LastUpdate, reason)
	case vol < threshold/2 && falling:
		calm := threshold / 2
		strength := math.Min(1, (calm-vol)/calm)
		reason := fmt.Sprintf("volatility %.1f below %.1f and falling", vol, calm)
		return model.BuySignal(strength, state.LastUpdate, reason)
	default:
		return model.HoldSignal(state.LastUpdate)
	}
}

var _ Indicator = (*Volatility)(nil)
