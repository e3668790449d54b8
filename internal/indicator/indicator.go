package indicator

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/front-depiction/cli-stock/internal/model"
)

// Construction errors.
var (
	ErrNoSymbol         = errors.New("indicator: symbol required")
	ErrInvalidPeriod    = errors.New("indicator: period must be positive")
	ErrInvalidLevels    = errors.New("indicator: levels must satisfy 0 < oversold < overbought < 100")
	ErrInvalidBandWidth = errors.New("indicator: band width must be positive")
	ErrInvalidThreshold = errors.New("indicator: threshold must be positive")
	ErrUnknownMethod    = errors.New("indicator: unknown volatility method")
)

// stateBuffer is the capacity of each plugin's output channel.
const stateBuffer = 64

// directionalStrength is the fixed strength of band-crossing signals.
const directionalStrength = 0.6

// Indicator is one technical indicator plugin.
type Indicator interface {
	// ID is the unique instance identity, stable for the plugin's lifetime.
	ID() string

	// Name is the human-readable name shown in the UI, e.g. "SMA(20)".
	Name() string

	// Process consumes the trade stream and emits indicator states for
	// trades matching the configured symbol. The returned channel
	// closes when the input closes or the context ends.
	Process(ctx context.Context, trades <-chan model.TradeRecord) <-chan model.IndicatorState

	// Signal maps a state to a Buy/Sell/Hold decision.
	Signal(state model.IndicatorState) model.Signal

	// CheckTrigger evaluates a trigger condition against a state.
	CheckTrigger(state model.IndicatorState, cond model.Trigger) bool
}

// plugin carries the identity and trigger evaluation shared by every
// implementation.
type plugin struct {
	id     string
	symbol model.Symbol
}

func (p plugin) ID() string { return p.id }

func (p plugin) CheckTrigger(state model.IndicatorState, cond model.Trigger) bool {
	return evalTrigger(state, cond)
}

// scan drives an accumulator over the trade stream. observe mutates
// plugin state and reports whether a state should be emitted.
func scan(ctx context.Context, trades <-chan model.TradeRecord, symbol model.Symbol,
	observe func(model.TradeRecord) (model.IndicatorState, bool)) <-chan model.IndicatorState {

	out := make(chan model.IndicatorState, stateBuffer)
	go func() {
		defer close(out)
		for {
			select {
			case t, ok := <-trades:
				if !ok {
					return
				}
				if t.Symbol != symbol {
					continue
				}
				state, ready := observe(t)
				if !ready {
					continue
				}
				select {
				case out <- state:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// evalTrigger evaluates a trigger against the observation carried in a
// state's metadata. Conditions whose inputs are absent are false.
func evalTrigger(state model.IndicatorState, cond model.Trigger) bool {
	switch cond.Kind {
	case model.TriggerPriceAbove:
		p, ok := metaFloat(state, "price")
		return ok && p > cond.Threshold
	case model.TriggerPriceBelow:
		p, ok := metaFloat(state, "price")
		return ok && p < cond.Threshold
	case model.TriggerVolumeAbove:
		v, ok := metaFloat(state, "volume")
		return ok && v > cond.Threshold
	case model.TriggerVolatilityAbove:
		v, ok := metaFloat(state, "volatility")
		return ok && v > cond.Threshold
	case model.TriggerCrossOver:
		fast, okFast := metaFloat(state, "fast")
		slow, okSlow := metaFloat(state, "slow")
		return okFast && okSlow && fast > slow
	default:
		return false
	}
}

// metaFloat reads a float64 metadata entry.
func metaFloat(state model.IndicatorState, key string) (float64, bool) {
	v, ok := state.Metadata[key].(float64)
	return v, ok
}

// bandSignal implements the shared price-versus-reference rule: Buy
// when price clears the reference by band, Sell when it drops below by
// the same margin, Hold inside the band.
func bandSignal(state model.IndicatorState, band float64) model.Signal {
	price, ok := metaFloat(state, "price")
	if !ok || state.Value <= 0 {
		return model.HoldSignal(state.LastUpdate)
	}
	switch {
	case price > state.Value*(1+band):
		reason := fmt.Sprintf("price %.2f above %s %.2f", price, state.Name, state.Value)
		return model.BuySignal(directionalStrength, state.LastUpdate, reason)
	case price < state.Value*(1-band):
		reason := fmt.Sprintf("price %.2f below %s %.2f", price, state.Name, state.Value)
		return model.SellSignal(directionalStrength, state.LastUpdate, reason)
	default:
		return model.HoldSignal(state.LastUpdate)
	}
}

func meanOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// stddevOf is the population standard deviation.
func stddevOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	mean := meanOf(xs)
	variance := 0.0
	for _, x := range xs {
		d := x - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(xs)))
}
