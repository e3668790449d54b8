package indicator

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// smaBand is the breakout margin around the moving average.
const smaBand = 0.02

// SMA is a simple moving average over the last period prices.
type SMA struct {
	plugin
	period int

	prices []float64 // oldest first
}

// NewSMA creates a simple moving average indicator for one symbol.
func NewSMA(symbol model.Symbol, period int) (*SMA, error) {
	if symbol == "" {
		return nil, ErrNoSymbol
	}
	if period < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPeriod, period)
	}
	return &SMA{
		plugin: plugin{id: uuid.New().String(), symbol: symbol},
		period: period,
	}, nil
}

// Name implements Indicator.
func (s *SMA) Name() string { return fmt.Sprintf("SMA(%d)", s.period) }

// Process implements Indicator.
func (s *SMA) Process(ctx context.Context, trades <-chan model.TradeRecord) <-chan model.IndicatorState {
	return scan(ctx, trades, s.symbol, s.observe)
}

func (s *SMA) observe(t model.TradeRecord) (model.IndicatorState, bool) {
	s.prices = append(s.prices, t.Price)
	if len(s.prices) > s.period {
		s.prices = s.prices[1:]
	}
	if len(s.prices) < s.period {
		return model.IndicatorState{}, false
	}

	return model.IndicatorState{
		ID:         s.id,
		Name:       s.Name(),
		Symbol:     s.symbol,
		LastUpdate: t.SourceTimestamp,
		Value:      meanOf(s.prices),
		Metadata: map[string]any{
			"price":  t.Price,
			"volume": t.Volume,
		},
	}, true
}

// Signal implements Indicator. Price clearing the average by 2% reads
// as upward momentum.
func (s *SMA) Signal(state model.IndicatorState) model.Signal {
	return bandSignal(state, smaBand)
}

var _ Indicator = (*SMA)(nil)
