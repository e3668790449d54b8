package indicator

import (
	"math"
	"strings"
	"testing"

	"github.com/front-depiction/cli-stock/internal/model"
)

func TestVolatilityValue(t *testing.T) {
	vol, err := NewVolatility("AAPL", 3, MethodStdDev, 50)
	if err != nil {
		t.Fatalf("NewVolatility failed: %v", err)
	}

	// Returns are exactly +0.1 and -0.1: mean 0, deviation 0.1.
	states := runStates(t, vol, pricesToTrades(t, "AAPL", []float64{100, 110, 99}))
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}

	want := 0.1 * math.Sqrt(252) * 100
	if math.Abs(states[0].Value-want) > 1e-9 {
		t.Errorf("volatility = %v, want %v", states[0].Value, want)
	}
	if method, _ := states[0].Metadata["method"].(string); method != "stdDev" {
		t.Errorf("metadata method = %q, want stdDev", method)
	}

	// First emission has no previous value to compare against.
	if sig := vol.Signal(states[0]); sig.Action != model.ActionHold {
		t.Errorf("first Signal action = %v, want Hold", sig.Action)
	}
}

func TestVolatilitySellOnRisingSpike(t *testing.T) {
	vol, err := NewVolatility("AAPL", 3, MethodStdDev, 100)
	if err != nil {
		t.Fatalf("NewVolatility failed: %v", err)
	}

	states := runStates(t, vol, pricesToTrades(t, "AAPL", []float64{100, 100, 100, 110, 80}))
	if len(states) != 3 {
		t.Fatalf("got %d states, want 3", len(states))
	}

	actions := make([]model.SignalAction, len(states))
	for i, st := range states {
		actions[i] = vol.Signal(st).Action
	}
	want := []model.SignalAction{model.ActionHold, model.ActionHold, model.ActionSell}
	for i := range want {
		if actions[i] != want[i] {
			t.Errorf("signal %d = %v, want %v", i, actions[i], want[i])
		}
	}

	last := vol.Signal(states[2])
	if last.Strength != 1 {
		t.Errorf("spike strength = %v, want 1 (capped)", last.Strength)
	}
	if !strings.Contains(last.Reason, "rising") {
		t.Errorf("reason = %q, want mention of rising", last.Reason)
	}
}

func TestVolatilityBuyOnCalmDecline(t *testing.T) {
	vol, err := NewVolatility("AAPL", 3, MethodStdDev, 50)
	if err != nil {
		t.Fatalf("NewVolatility failed: %v", err)
	}

	// Volatility walks down to zero, well under threshold/2 = 25.
	states := runStates(t, vol, pricesToTrades(t, "AAPL", []float64{100, 110, 99, 99, 99}))
	if len(states) != 3 {
		t.Fatalf("got %d states, want 3", len(states))
	}

	if states[2].Value != 0 {
		t.Errorf("final volatility = %v, want 0 (flat prices)", states[2].Value)
	}

	sig := vol.Signal(states[2])
	if sig.Action != model.ActionBuy {
		t.Errorf("Signal action = %v, want Buy", sig.Action)
	}
	if sig.Strength != 1 {
		t.Errorf("Signal strength = %v, want 1", sig.Strength)
	}
	if !strings.Contains(sig.Reason, "falling") {
		t.Errorf("reason = %q, want mention of falling", sig.Reason)
	}
}

func TestVolatilityAlternateMethodsReduceToStdDev(t *testing.T) {
	prices := []float64{100, 110, 99}

	byMethod := make(map[Method]float64)
	for _, method := range []Method{MethodStdDev, MethodATR, MethodParkinson} {
		vol, err := NewVolatility("AAPL", 3, method, 50)
		if err != nil {
			t.Fatalf("NewVolatility(%s) failed: %v", method, err)
		}
		states := runStates(t, vol, pricesToTrades(t, "AAPL", prices))
		if len(states) != 1 {
			t.Fatalf("method %s: got %d states, want 1", method, len(states))
		}
		byMethod[method] = states[0].Value
	}

	if byMethod[MethodATR] != byMethod[MethodStdDev] || byMethod[MethodParkinson] != byMethod[MethodStdDev] {
		t.Errorf("methods disagree: %v", byMethod)
	}
}

func TestVolatilityTriggersOnOwnValue(t *testing.T) {
	vol, err := NewVolatility("AAPL", 3, MethodStdDev, 50)
	if err != nil {
		t.Fatalf("NewVolatility failed: %v", err)
	}

	states := runStates(t, vol, pricesToTrades(t, "AAPL", []float64{100, 110, 99}))
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}

	// Annualized value is ~158.7 here.
	if !vol.CheckTrigger(states[0], model.VolatilityAbove(150)) {
		t.Error("VolatilityAbove(150) = false, want true")
	}
	if vol.CheckTrigger(states[0], model.VolatilityAbove(200)) {
		t.Error("VolatilityAbove(200) = true, want false")
	}
}
