package broker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/front-depiction/cli-stock/internal/model"
)

// TestFilterSymbols publishes AAPL, MSFT, GOOGL, TSLA, AAPL through a
// {AAPL, GOOGL} filter; only those three pass, order preserved.
func TestFilterSymbols(t *testing.T) {
	b := New(DefaultConfig(), nil)
	defer b.Close()
	ctx := context.Background()

	sub, err := b.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()

	filtered := FilterSymbols(ctx, sub.C(), "AAPL", "GOOGL")
	done := make(chan []model.TradeRecord, 1)
	go func() { done <- collect(filtered) }()

	for i, sym := range []model.Symbol{"AAPL", "MSFT", "GOOGL", "TSLA", "AAPL"} {
		if err := b.Publish(ctx, testTrade(t, sym, float64(i+1), int64(i+1))); err != nil {
			t.Fatalf("Publish(%s) error = %v", sym, err)
		}
	}
	b.Close()

	got := <-done
	want := []model.Symbol{"AAPL", "GOOGL", "AAPL"}
	if len(got) != len(want) {
		t.Fatalf("filtered %d trades, want %d", len(got), len(want))
	}
	for i, sym := range want {
		if got[i].Symbol != sym {
			t.Errorf("filtered[%d].Symbol = %s, want %s", i, got[i].Symbol, sym)
		}
	}
}

func TestFilterSymbolSingle(t *testing.T) {
	ctx := context.Background()
	in := make(chan model.TradeRecord, 4)
	in <- testTrade(t, "AAPL", 1, 1)
	in <- testTrade(t, "MSFT", 2, 2)
	in <- testTrade(t, "AAPL", 3, 3)
	close(in)

	got := collect(FilterSymbol(ctx, in, "AAPL"))
	if len(got) != 2 {
		t.Fatalf("filtered %d trades, want 2", len(got))
	}
	if got[0].Price != 1 || got[1].Price != 3 {
		t.Errorf("filtered prices = [%v %v], want [1 3]", got[0].Price, got[1].Price)
	}
}

func TestFilterCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan model.TradeRecord)
	out := FilterSymbols(ctx, in, "AAPL")

	cancel()
	select {
	case _, ok := <-out:
		if ok {
			t.Error("received a trade after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("filter output did not close after cancellation")
	}
}

// TestTap observes without consuming: every trade is both counted and
// forwarded unchanged.
func TestTap(t *testing.T) {
	ctx := context.Background()
	in := make(chan model.TradeRecord, 3)
	in <- testTrade(t, "AAPL", 1, 1)
	in <- testTrade(t, "AAPL", 2, 2)
	in <- testTrade(t, "AAPL", 3, 3)
	close(in)

	var seen atomic.Int64
	got := collect(Tap(ctx, in, func(model.TradeRecord) { seen.Add(1) }))

	if seen.Load() != 3 {
		t.Errorf("tap observed %d trades, want 3", seen.Load())
	}
	if len(got) != 3 {
		t.Fatalf("tap forwarded %d trades, want 3", len(got))
	}
	for i, rec := range got {
		if rec.Price != float64(i+1) {
			t.Errorf("forwarded[%d].Price = %v, want %v", i, rec.Price, i+1)
		}
	}
}

// TestSortBySourceTime preloads out-of-order trades so the stage drains
// them as one chunk and emits them ordered by source timestamp.
func TestSortBySourceTime(t *testing.T) {
	in := make(chan model.TradeRecord, 5)
	for _, ts := range []int64{5, 3, 4, 1, 2} {
		in <- testTrade(t, "AAPL", float64(ts), ts)
	}
	close(in)

	done := make(chan struct{})
	defer close(done)
	got := collect(sortBySourceTime(in, done, 8))

	if len(got) != 5 {
		t.Fatalf("sorted %d trades, want 5", len(got))
	}
	for i, rec := range got {
		if want := int64(i + 1); rec.SourceTimestamp != want {
			t.Errorf("sorted[%d].SourceTimestamp = %d, want %d", i, rec.SourceTimestamp, want)
		}
	}
}

// TestSortBySourceTimeChunked uses a chunk smaller than the batch: each
// chunk is ordered internally, and nothing is lost or duplicated.
func TestSortBySourceTimeChunked(t *testing.T) {
	in := make(chan model.TradeRecord, 5)
	for _, ts := range []int64{5, 4, 3, 1, 2} {
		in <- testTrade(t, "AAPL", float64(ts), ts)
	}
	close(in)

	done := make(chan struct{})
	defer close(done)
	got := collect(sortBySourceTime(in, done, 3))

	if len(got) != 5 {
		t.Fatalf("sorted %d trades, want 5", len(got))
	}
	// First chunk drains [5 4 3] -> [3 4 5], second [1 2] -> [1 2].
	want := []int64{3, 4, 5, 1, 2}
	for i, rec := range got {
		if rec.SourceTimestamp != want[i] {
			t.Errorf("sorted[%d].SourceTimestamp = %d, want %d", i, rec.SourceTimestamp, want[i])
		}
	}
}

// TestBrokerSortedSubscription smoke-tests the flag end to end: in-order
// input stays in order through the sorting stage.
func TestBrokerSortedSubscription(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SortBySource = true
	cfg.SortChunkSize = 4
	b := New(cfg, nil)
	defer b.Close()
	ctx := context.Background()

	sub, err := b.Subscribe()
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer sub.Unsubscribe()

	done := make(chan []model.TradeRecord, 1)
	go func() { done <- collect(sub.C()) }()

	const n = 20
	for i := 1; i <= n; i++ {
		if err := b.Publish(ctx, testTrade(t, "AAPL", float64(i), int64(i))); err != nil {
			t.Fatalf("Publish(%d) error = %v", i, err)
		}
	}
	b.Close()

	got := <-done
	if len(got) != n {
		t.Fatalf("observed %d trades, want %d", len(got), n)
	}
	for i, rec := range got {
		if want := int64(i + 1); rec.SourceTimestamp != want {
			t.Fatalf("trade[%d].SourceTimestamp = %d, want %d", i, rec.SourceTimestamp, want)
		}
	}
}
