package indicator

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// Default RSI decision levels.
const (
	DefaultOversold   = 30.0
	DefaultOverbought = 70.0
)

// RSI is a relative strength index with Wilder smoothing. The first
// period deltas are averaged arithmetically, every delta after that
// blends into the running averages.
type RSI struct {
	plugin
	period     int
	oversold   float64
	overbought float64

	lastPrice float64
	havePrice bool
	deltas    int
	gainSum   float64
	lossSum   float64
	avgGain   float64
	avgLoss   float64
	ready     bool
}

// NewRSI creates an RSI indicator with the standard 30/70 levels.
func NewRSI(symbol model.Symbol, period int) (*RSI, error) {
	return NewRSIWithLevels(symbol, period, DefaultOversold, DefaultOverbought)
}

// NewRSIWithLevels creates an RSI indicator with custom decision levels.
func NewRSIWithLevels(symbol model.Symbol, period int, oversold, overbought float64) (*RSI, error) {
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	if period < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}
	if oversold <= 0 || overbought <= oversold || overbought >= 100 {
		return nil, fmt.Errorf("%w: oversold %.1f overbought %.1f", ErrInvalidLevels, oversold, overbought)
	}
	return &RSI{
		plugin:     plugin{id: uuid.New().String(), symbol: symbol},
		period:     period,
		oversold:   oversold,
		overbought: overbought,
	}, nil
}

// Name implements Indicator.
func (r *RSI) Name() string { return fmt.Sprintf("RSI(%d)", r.period) }

// Process implements Indicator.
func (r *RSI) Process(ctx context.Context, trades <-chan model.TradeRecord) <-chan model.IndicatorState {
	return scan(ctx, trades, r.symbol, r.observe)
}

func (r *RSI) observe(t model.TradeRecord) (model.IndicatorState, bool) {
	if !r.havePrice {
		r.lastPrice = t.Price
		r.havePrice = true
		return model.IndicatorState{}, false
	}

	delta := t.Price - r.lastPrice
	r.lastPrice = t.Price

	gain, loss := 0.0, 0.0
	if delta > 0 {
		gain = delta
	} else {
		loss = -delta
	}

	if !r.ready {
		r.deltas++
		r.gainSum += gain
		r.lossSum += loss
		if r.deltas < r.period {
			return model.IndicatorState{}, false
		}
		r.avgGain = r.gainSum / float64(r.period)
		r.avgLoss = r.lossSum / float64(r.period)
		r.ready = true
	} else {
		n := float64(r.period)
		r.avgGain = (r.avgGain*(n-1) + gain) / n
		r.avgLoss = (r.avgLoss*(n-1) + loss) / n
	}

	value := 100.0
	if r.avgLoss > 0 {
		rs := r.avgGain / r.avgLoss
		value = 100 - 100/(1+rs)
	}

	return model.IndicatorState{
		ID:         r.id,
		Name:       r.Name(),
		Symbol:     r.symbol,
		LastUpdate: t.SourceTimestamp,
		Value:      value,
		Metadata: map[string]any{
			"price":      t.Price,
			"volume":     t.Volume,
			"avgGain":    r.avgGain,
			"avgLoss":    r.avgLoss,
			"oversold":   r.oversold,
			"overbought": r.overbought,
		},
	}, true
}

// Signal implements Indicator. Strength grows with the distance past
// the decision level.
func (r *RSI) Signal(state model.IndicatorState) model.Signal {
	oversold, ok := metaFloat(state, "oversold")
	if !ok {
		oversold = DefaultOversold
	}
	overbought, ok := metaFloat(state, "overbought")
	if !ok {
		overbought = DefaultOverbought
	}

	rsi := state.Value
	switch {
	case rsi < oversold:
		strength := math.Min(1, (oversold-rsi)/oversold)
		reason := fmt.Sprintf("rsi %.1f oversold (<%.0f)", rsi, oversold)
		return model.BuySignal(strength, state.LastUpdate, reason)
	case rsi > overbought:
		strength := math.Min(1, (rsi-overbought)/(100-overbought))
		reason := fmt.Sprintf("rsi %.1f overbought (>%.0f)", rsi, overbought)
		return model.SellSignal(strength, state.LastUpdate, reason)
	default:
		return model.HoldSignal(state.LastUpdate)
	}
}

var _ Indicator = (*RSI)(nil)
