package broker

import (
	"context"

	"github.com/front-depiction/cli-stock/internal/model"
)

// FilterSymbol forwards only trades for sym. The output closes when the
// input closes or ctx is cancelled.
func FilterSymbol(ctx context.Context, in <-chan model.TradeRecord, sym model.Symbol) <-chan model.TradeRecord {
	return FilterSymbols(ctx, in, sym)
}

// FilterSymbols forwards only trades whose symbol is in the given set.
func FilterSymbols(ctx context.Context, in <-chan model.TradeRecord, symbols ...model.Symbol) <-chan model.TradeRecord {
	set := make(map[model.Symbol]struct{}, len(symbols))
	for _, s := range symbols {
		set[s] = struct{}{}
	}
	out := make(chan model.TradeRecord)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case t, ok := <-in:
				if !ok {
					return
				}
				if _, want := set[t.Symbol]; !want {
					continue
				}
				select {
				case out <- t:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// Tap invokes fn on every trade passing through without consuming the
// stream: the trade is forwarded unchanged after fn returns.
func Tap(ctx context.Context, in <-chan model.TradeRecord, fn func(model.TradeRecord)) <-chan model.TradeRecord {
	out := make(chan model.TradeRecord)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case t, ok := <-in:
				if !ok {
					return
				}
				fn(t)
				select {
				case out <- t:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
