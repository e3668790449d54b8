package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/front-depiction/cli-stock/internal/model"
	"github.com/front-depiction/cli-stock/internal/stats"
	"github.com/front-depiction/cli-stock/internal/view"
)

func sampleSnapshot() view.Snapshot {
	points := []model.PricePoint{
		{Price: 100, Volume: 10, Timestamp: 1_700_000_000_000},
		{Price: 110, Volume: 30, Timestamp: 1_700_000_001_000},
	}
	return view.Snapshot{
		Symbols: []model.Symbol{"AAPL", "MSFT"},
		RecentTrades: []model.TradeRecord{
			{
				Symbol:            "AAPL",
				Price:             110,
				Volume:            30,
				SourceTimestamp:   1_700_000_001_000,
				ReceivedTimestamp: 1_700_000_001_050,
				LatencyMs:         50,
			},
		},
		Statistics: map[model.Symbol]stats.State{
			"AAPL": {Count: 2, Points: points},
		},
		MaxTrades: 20,
	}
}

func renderTo(t *testing.T, enhanced bool, snap view.Snapshot) string {
	t.Helper()
	var buf bytes.Buffer
	r := newRenderer(&buf, enhanced)
	r.clear = false
	if err := r.HandleSnapshot(snap); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}
	return buf.String()
}

func TestRendererBasicFrame(t *testing.T) {
	out := renderTo(t, false, sampleSnapshot())

	for _, want := range []string{
		"SYMBOL", "AAPL", "MSFT",
		"110.00",  // last price
		"105.00",  // mean
		"5.0000",  // population stddev of {100, 110}
		"waiting", // MSFT has no trades yet
		"TIME", "LATENCY", "50ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("frame missing %q:\n%s", want, out)
		}
	}

	if strings.Contains(out, "VWAP") {
		t.Errorf("basic frame should not carry enhanced columns:\n%s", out)
	}
}

func TestRendererEnhancedColumns(t *testing.T) {
	out := renderTo(t, true, sampleSnapshot())

	for _, want := range []string{
		"VOLATILITY", "MOMENTUM", "VELOCITY", "SPREAD", "VWAP",
		"+10.00%", // momentum from 100 to 110
		"2.00/s",  // two points over one second
		"107.50",  // volume-weighted mean of the two points
	} {
		if !strings.Contains(out, want) {
			t.Errorf("enhanced frame missing %q:\n%s", want, out)
		}
	}
}

func TestRendererSkipsIdenticalFrames(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false)
	r.clear = false

	snap := sampleSnapshot()
	if err := r.HandleSnapshot(snap); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}
	first := buf.Len()

	if err := r.HandleSnapshot(snap); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}
	if buf.Len() != first {
		t.Errorf("identical frame was rewritten: %d bytes, want %d", buf.Len(), first)
	}
}

func TestRendererRepaintsChangedFrames(t *testing.T) {
	var buf bytes.Buffer
	r := newRenderer(&buf, false)

	snap := sampleSnapshot()
	if err := r.HandleSnapshot(snap); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}

	snap.RecentTrades = append([]model.TradeRecord{{
		Symbol:            "AAPL",
		Price:             111,
		Volume:            5,
		SourceTimestamp:   1_700_000_002_000,
		ReceivedTimestamp: 1_700_000_002_010,
		LatencyMs:         10,
	}}, snap.RecentTrades...)
	if err := r.HandleSnapshot(snap); err != nil {
		t.Fatalf("HandleSnapshot() error = %v", err)
	}

	if got := strings.Count(buf.String(), clearScreen); got != 2 {
		t.Errorf("clear sequences = %d, want 2", got)
	}
	if !strings.Contains(buf.String(), "111.00") {
		t.Errorf("second frame missing new trade:\n%s", buf.String())
	}
}

func TestRendererEmptySnapshot(t *testing.T) {
	out := renderTo(t, false, view.Snapshot{Symbols: []model.Symbol{"AAPL"}})

	if !strings.Contains(out, "waiting") {
		t.Errorf("frame missing waiting row:\n%s", out)
	}
	if strings.Contains(out, "TIME") {
		t.Errorf("empty snapshot should not carry a trade tape:\n%s", out)
	}
}
