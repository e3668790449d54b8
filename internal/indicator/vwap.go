package indicator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// vwapBand is the breakout margin around the volume-weighted price.
const vwapBand = 0.015

// VWAP accumulates the volume-weighted average price, optionally
// resetting when the trade's UTC session date rolls over.
type VWAP struct {
	plugin
	resetDaily bool

	sumPV   float64
	sumV    float64
	session string // YYYY-MM-DD of the last accumulated trade
}

// NewVWAP creates a VWAP indicator. With resetDaily the accumulator
// restarts on the first trade of each UTC day.
func NewVWAP(symbol model.Symbol, resetDaily bool) (*VWAP, error) {
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	return &VWAP{
		plugin:     plugin{id: uuid.New().String(), symbol: symbol},
		resetDaily: resetDaily,
	}, nil
}

// Name implements Indicator.
func (v *VWAP) Name() string { return "VWAP" }

// Process implements Indicator. VWAP has no warm-up, it emits from the
// first matching trade.
func (v *VWAP) Process(ctx context.Context, trades <-chan model.TradeRecord) <-chan model.IndicatorState {
	return scan(ctx, trades, v.symbol, v.observe)
}

func (v *VWAP) observe(t model.TradeRecord) (model.IndicatorState, bool) {
	day := time.UnixMilli(t.SourceTimestamp).UTC().Format("2006-01-02")
	if v.resetDaily && v.session != "" && day != v.session {
		v.sumPV, v.sumV = 0, 0
	}
	v.session = day

	v.sumPV += t.Price * t.Volume
	v.sumV += t.Volume

	// No volume accumulated yet, fall back to the trade price.
	value := t.Price
	if v.sumV > 0 {
		value = v.sumPV / v.sumV
	}

	return model.IndicatorState{
		ID:         v.id,
		Name:       v.Name(),
		Symbol:     v.symbol,
		LastUpdate: t.SourceTimestamp,
		Value:      value,
		Metadata: map[string]any{
			"price":            t.Price,
			"volume":           t.Volume,
			"session":          day,
			"cumulativeVolume": v.sumV,
		},
	}, true
}

// Signal implements Indicator.
func (v *VWAP) Signal(state model.IndicatorState) model.Signal {
	return bandSignal(state, vwapBand)
}

var _ Indicator = (*VWAP)(nil)
