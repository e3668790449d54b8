package indicator

import (
	"math"
	"strings"
	"testing"

	"github.com/front-depiction/cli-stock/internal/model"
)

func TestRSIAllGains(t *testing.T) {
	rsi, err := NewRSI("AAPL", 14)
	if err != nil {
		t.Fatalf("NewRSI failed: %v", err)
	}

	// Fifteen strictly rising prices give fourteen positive deltas:
	// average loss is zero, so RSI pins at 100.
	prices := make([]float64, 15)
	for i := range prices {
		prices[i] = 100 + float64(i)
	}

	states := runStates(t, rsi, pricesToTrades(t, "AAPL", prices))
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if states[0].Value != 100 {
		t.Errorf("RSI = %v, want 100", states[0].Value)
	}

	sig := rsi.Signal(states[0])
	if sig.Action != model.ActionSell {
		t.Errorf("Signal action = %v, want Sell", sig.Action)
	}
	if sig.Strength != 1 {
		t.Errorf("Signal strength = %v, want 1", sig.Strength)
	}
	if !strings.Contains(sig.Reason, "overbought") {
		t.Errorf("Signal reason = %q, want mention of overbought", sig.Reason)
	}
}

func TestRSIWilderSmoothing(t *testing.T) {
	rsi, err := NewRSI("AAPL", 2)
	if err != nil {
		t.Fatalf("NewRSI failed: %v", err)
	}

	// Deltas: +2, -1 (warm-up means), then +2 via Wilder smoothing.
	states := runStates(t, rsi, pricesToTrades(t, "AAPL", []float64{100, 102, 101, 103}))
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}

	// Warm-up: avgGain = 1, avgLoss = 0.5, RS = 2.
	if got, want := states[0].Value, 100-100/3.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("first RSI = %v, want %v", got, want)
	}

	// Wilder: avgGain = (1*1+2)/2 = 1.5, avgLoss = (0.5*1+0)/2 = 0.25.
	if got, want := states[1].Value, 100-100/7.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("second RSI = %v, want %v", got, want)
	}

	sig := rsi.Signal(states[1])
	if sig.Action != model.ActionSell {
		t.Fatalf("Signal action = %v, want Sell", sig.Action)
	}
	wantStrength := (states[1].Value - 70) / 30
	if math.Abs(sig.Strength-wantStrength) > 1e-9 {
		t.Errorf("Signal strength = %v, want %v", sig.Strength, wantStrength)
	}
}

func TestRSIOversold(t *testing.T) {
	rsi, err := NewRSI("AAPL", 2)
	if err != nil {
		t.Fatalf("NewRSI failed: %v", err)
	}

	states := runStates(t, rsi, pricesToTrades(t, "AAPL", []float64{100, 98, 97}))
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if states[0].Value != 0 {
		t.Errorf("RSI = %v, want 0 (all losses)", states[0].Value)
	}

	sig := rsi.Signal(states[0])
	if sig.Action != model.ActionBuy || sig.Strength != 1 {
		t.Errorf("Signal = %+v, want Buy at strength 1", sig)
	}
	if !strings.Contains(sig.Reason, "oversold") {
		t.Errorf("Signal reason = %q, want mention of oversold", sig.Reason)
	}
}

func TestRSINeutralHolds(t *testing.T) {
	rsi, err := NewRSI("AAPL", 2)
	if err != nil {
		t.Fatalf("NewRSI failed: %v", err)
	}

	// Equal gain and loss: RS = 1, RSI = 50.
	states := runStates(t, rsi, pricesToTrades(t, "AAPL", []float64{100, 102, 100}))
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if states[0].Value != 50 {
		t.Errorf("RSI = %v, want 50", states[0].Value)
	}
	if sig := rsi.Signal(states[0]); sig.Action != model.ActionHold {
		t.Errorf("Signal action = %v, want Hold", sig.Action)
	}
}
