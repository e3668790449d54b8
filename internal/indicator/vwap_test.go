package indicator

import (
	"math"
	"testing"
	"time"

	"github.com/front-depiction/cli-stock/internal/model"
)

func vwapTrade(t *testing.T, price, volume float64, ts int64) model.TradeRecord {
	t.Helper()
	rec, err := model.NewTradeRecord("AAPL", price, volume, ts, ts, nil)
	if err != nil {
		t.Fatalf("building trade: %v", err)
	}
	return rec
}

func TestVWAPAccumulates(t *testing.T) {
	vwap, err := NewVWAP("AAPL", false)
	if err != nil {
		t.Fatalf("NewVWAP failed: %v", err)
	}

	trades := []model.TradeRecord{
		vwapTrade(t, 100, 10, testBaseTS),
		vwapTrade(t, 110, 20, testBaseTS+1000),
	}
	states := runStates(t, vwap, trades)
	if len(states) != 2 {
		t.Fatalf("got %d states, want 2", len(states))
	}

	if states[0].Value != 100 {
		t.Errorf("first VWAP = %v, want 100", states[0].Value)
	}
	want := (100*10 + 110*20) / 30.0
	if math.Abs(states[1].Value-want) > 1e-9 {
		t.Errorf("second VWAP = %v, want %v", states[1].Value, want)
	}
}

func TestVWAPZeroVolumeFallsBackToPrice(t *testing.T) {
	vwap, err := NewVWAP("AAPL", false)
	if err != nil {
		t.Fatalf("NewVWAP failed: %v", err)
	}

	states := runStates(t, vwap, []model.TradeRecord{vwapTrade(t, 100, 0, testBaseTS)})
	if len(states) != 1 {
		t.Fatalf("got %d states, want 1", len(states))
	}
	if states[0].Value != 100 {
		t.Errorf("VWAP = %v, want 100 (trade price fallback)", states[0].Value)
	}
}

func TestVWAPDailyReset(t *testing.T) {
	dayMs := 24 * time.Hour.Milliseconds()

	t.Run("resets on new session", func(t *testing.T) {
		vwap, err := NewVWAP("AAPL", true)
		if err != nil {
			t.Fatalf("NewVWAP failed: %v", err)
		}

		trades := []model.TradeRecord{
			vwapTrade(t, 100, 10, testBaseTS),
			vwapTrade(t, 200, 10, testBaseTS+dayMs),
		}
		states := runStates(t, vwap, trades)
		if len(states) != 2 {
			t.Fatalf("got %d states, want 2", len(states))
		}
		if states[1].Value != 200 {
			t.Errorf("post-reset VWAP = %v, want 200 (only the new session's trade)", states[1].Value)
		}
	})

	t.Run("carries across days when disabled", func(t *testing.T) {
		vwap, err := NewVWAP("AAPL", false)
		if err != nil {
			t.Fatalf("NewVWAP failed: %v", err)
		}

		trades := []model.TradeRecord{
			vwapTrade(t, 100, 10, testBaseTS),
			vwapTrade(t, 200, 10, testBaseTS+dayMs),
		}
		states := runStates(t, vwap, trades)
		if states[1].Value != 150 {
			t.Errorf("VWAP = %v, want 150 (both sessions accumulated)", states[1].Value)
		}
	})
}

func TestVWAPSignal(t *testing.T) {
	vwap, err := NewVWAP("AAPL", true)
	if err != nil {
		t.Fatalf("NewVWAP failed: %v", err)
	}

	state := func(price float64) model.IndicatorState {
		return model.IndicatorState{
			Name:       vwap.Name(),
			Value:      100,
			LastUpdate: testBaseTS,
			Metadata:   map[string]any{"price": price},
		}
	}

	tests := []struct {
		name  string
		price float64
		want  model.SignalAction
	}{
		{"above band", 102, model.ActionBuy},
		{"below band", 98, model.ActionSell},
		{"inside band", 101, model.ActionHold},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig := vwap.Signal(state(tt.price))
			if sig.Action != tt.want {
				t.Errorf("Signal action = %v, want %v", sig.Action, tt.want)
			}
		})
	}
}
