package indicator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/front-depiction/cli-stock/internal/model"
)

const testBaseTS = int64(1_700_000_000_000)

// pricesToTrades builds a trade per price, one second apart.
func pricesToTrades(t *testing.T, sym model.Symbol, prices []float64) []model.TradeRecord {
	t.Helper()

	trades := make([]model.TradeRecord, len(prices))
	for i, p := range prices {
		ts := testBaseTS + int64(i)*1000
		rec, err := model.NewTradeRecord(sym, p, 100, ts, ts, nil)
		if err != nil {
			t.Fatalf("building trade %d: %v", i, err)
		}
		trades[i] = rec
	}
	return trades
}

// runStates feeds trades through Process and collects every emitted
// state.
func runStates(t *testing.T, ind Indicator, trades []model.TradeRecord) []model.IndicatorState {
	t.Helper()

	in := make(chan model.TradeRecord, len(trades))
	for _, tr := range trades {
		in <- tr
	}
	close(in)

	out := ind.Process(context.Background(), in)

	var states []model.IndicatorState
	timeout := time.After(2 * time.Second)
	for {
		select {
		case st, ok := <-out:
			if !ok {
				return states
			}
			states = append(states, st)
		case <-timeout:
			t.Fatal("timeout collecting states")
		}
	}
}

func TestProcessFiltersSymbol(t *testing.T) {
	sma, err := NewSMA("AAPL", 1)
	if err != nil {
		t.Fatalf("NewSMA failed: %v", err)
	}

	var trades []model.TradeRecord
	trades = append(trades, pricesToTrades(t, "AAPL", []float64{100})...)
	trades = append(trades, pricesToTrades(t, "MSFT", []float64{350})...)
	trades = append(trades, pricesToTrades(t, "AAPL", []float64{101})...)

	states := runStates(t, sma, trades)
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2 (non-matching symbol filtered)", len(states))
	}
	for _, st := range states {
		if st.Symbol != "AAPL" {
			t.Errorf("state symbol = %s, want AAPL", st.Symbol)
		}
	}
}

func TestProcessWarmUp(t *testing.T) {
	sma, err := NewSMA("AAPL", 3)
	if err != nil {
		t.Fatalf("NewSMA failed: %v", err)
	}

	states := runStates(t, sma, pricesToTrades(t, "AAPL", []float64{100, 101}))
	if len(states) != 0 {
		t.Errorf("got %d states during warm-up, want 0", len(states))
	}

	sma2, _ := NewSMA("AAPL", 3)
	states = runStates(t, sma2, pricesToTrades(t, "AAPL", []float64{100, 101, 102, 103, 104}))
	if len(states) != 3 {
		t.Errorf("got %d states, want 3 (one per trade once ready)", len(states))
	}
}

func TestProcessContextCancel(t *testing.T) {
	sma, err := NewSMA("AAPL", 1)
	if err != nil {
		t.Fatalf("NewSMA failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan model.TradeRecord)
	out := sma.Process(ctx, in)

	cancel()

	select {
	case _, ok := <-out:
		if ok {
			t.Error("expected closed channel after cancel")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for output to close")
	}
}

func TestCheckTrigger(t *testing.T) {
	state := model.IndicatorState{
		Metadata: map[string]any{
			"price":      105.0,
			"volume":     500.0,
			"volatility": 80.0,
			"fast":       10.0,
			"slow":       9.0,
		},
	}
	bare := model.IndicatorState{Metadata: map[string]any{}}

	sma, err := NewSMA("AAPL", 1)
	if err != nil {
		t.Fatalf("NewSMA failed: %v", err)
	}

	tests := []struct {
		name  string
		state model.IndicatorState
		cond  model.Trigger
		want  bool
	}{
		{"price above hit", state, model.PriceAbove(100), true},
		{"price above miss", state, model.PriceAbove(110), false},
		{"price below hit", state, model.PriceBelow(110), true},
		{"price below miss", state, model.PriceBelow(100), false},
		{"volume above hit", state, model.VolumeAbove(400), true},
		{"volume above miss", state, model.VolumeAbove(600), false},
		{"volatility above hit", state, model.VolatilityAbove(70), true},
		{"volatility above miss", state, model.VolatilityAbove(90), false},
		{"crossover hit", state, model.CrossOver(12, 26), true},
		{"crossover missing metadata", bare, model.CrossOver(12, 26), false},
		{"price missing metadata", bare, model.PriceAbove(1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sma.CheckTrigger(tt.state, tt.cond); got != tt.want {
				t.Errorf("CheckTrigger() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConstructorValidation(t *testing.T) {
	tests := []struct {
		name    string
		build   func() error
		wantErr error
	}{
		{"sma empty symbol", func() error { _, err := NewSMA("", 3); return err }, ErrNoSymbol},
		{"sma zero period", func() error { _, err := NewSMA("AAPL", 0); return err }, ErrInvalidPeriod},
		{"ema negative period", func() error { _, err := NewEMA("AAPL", -1); return err }, ErrInvalidPeriod},
		{"rsi zero period", func() error { _, err := NewRSI("AAPL", 0); return err }, ErrInvalidPeriod},
		{"rsi inverted levels", func() error { _, err := NewRSIWithLevels("AAPL", 14, 70, 30); return err }, ErrInvalidLevels},
		{"bollinger period one", func() error { _, err := NewBollinger("AAPL", 1); return err }, ErrInvalidPeriod},
		{"bollinger zero k", func() error { _, err := NewBollingerWithK("AAPL", 20, 0); return err }, ErrInvalidBandWidth},
		{"vwap empty symbol", func() error { _, err := NewVWAP("", true); return err }, ErrNoSymbol},
		{"volatility period one", func() error { _, err := NewVolatility("AAPL", 1, MethodStdDev, 50); return err }, ErrInvalidPeriod},
		{"volatility zero threshold", func() error { _, err := NewVolatility("AAPL", 10, MethodStdDev, 0); return err }, ErrInvalidThreshold},
		{"volatility unknown method", func() error { _, err := NewVolatility("AAPL", 10, "garch", 50); return err }, ErrUnknownMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestIndicatorIDsUnique(t *testing.T) {
	a, err := NewSMA("AAPL", 3)
	if err != nil {
		t.Fatalf("NewSMA failed: %v", err)
	}
	b, err := NewSMA("AAPL", 3)
	if err != nil {
		t.Fatalf("NewSMA failed: %v", err)
	}

	if a.ID() == b.ID() {
		t.Errorf("two instances share ID %s", a.ID())
	}
	if a.ID() == "" {
		t.Error("empty indicator ID")
	}
}
