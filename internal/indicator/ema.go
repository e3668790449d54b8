package indicator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// EMA is an exponential moving average seeded with the simple mean of
// the first period prices.
type EMA struct {
	plugin
	period int
	alpha  float64

	warm  []float64
	value float64
	ready bool
}

// NewEMA creates an exponential moving average indicator for one symbol.
func NewEMA(symbol model.Symbol, period int) (*EMA, error) {
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	if period < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}
	return &EMA{
		plugin: plugin{id: uuid.New().String(), symbol: symbol},
		period: period,
		alpha:  2.0 / float64(period+1),
	}, nil
}

// Name implements Indicator.
func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.period) }

// Process implements Indicator.
func (e *EMA) Process(ctx context.Context, trades <-chan model.TradeRecord) <-chan model.IndicatorState {
	return scan(ctx, trades, e.symbol, e.observe)
}

func (e *EMA) observe(t model.TradeRecord) (model.IndicatorState, bool) {
	if !e.ready {
		e.warm = append(e.warm, t.Price)
		if len(e.warm) < e.period {
			return model.IndicatorState{}, false
		}
		e.value = meanOf(e.warm)
		e.warm = nil
		e.ready = true
	} else {
		e.value = t.Price*e.alpha + e.value*(1-e.alpha)
	}

	return model.IndicatorState{
		ID:         e.id,
		Name:       e.Name(),
		Symbol:     e.symbol,
		LastUpdate: t.SourceTimestamp,
		Value:      e.value,
		Metadata: map[string]any{
			"price":  t.Price,
			"volume": t.Volume,
		},
	}, true
}

// Signal implements Indicator.
func (e *EMA) Signal(state model.IndicatorState) model.Signal {
	return bandSignal(state, smaBand)
}

var _ Indicator = (*EMA)(nil)
