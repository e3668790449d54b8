package model

// -----------------------------------------------------------------------------
// Signal Types
// -----------------------------------------------------------------------------

// SignalAction is the direction of a trading signal.
type SignalAction int

const (
	ActionHold SignalAction = iota // No directional view
	ActionBuy                      // Long bias
	ActionSell                     // Short bias
)

func (a SignalAction) String() string {
	switch a {
	case ActionBuy:
		return "buy"
	case ActionSell:
		return "sell"
	default:
		return "hold"
	}
}

// Signal is a directional trading signal with a confidence in [0, 1].
// Hold carries strength 0 by definition.
type Signal struct {
	Action    SignalAction // Buy, Sell or Hold
	Strength  float64      // Confidence in [0, 1]; always 0 for Hold
	Timestamp int64        // Source timestamp of the observation (ms since epoch)
	Reason    string       // Human-readable explanation; empty for Hold
}

// BuySignal clamps strength into [0, 1] and builds a buy signal.
func BuySignal(strength float64, ts int64, reason string) Signal {
	return Signal{Action: ActionBuy, Strength: clamp01(strength), Timestamp: ts, Reason: reason}
}

// SellSignal clamps strength into [0, 1] and builds a sell signal.
func SellSignal(strength float64, ts int64, reason string) Signal {
	return Signal{Action: ActionSell, Strength: clamp01(strength), Timestamp: ts, Reason: reason}
}

// HoldSignal builds a neutral signal at the given timestamp.
func HoldSignal(ts int64) Signal {
	return Signal{Action: ActionHold, Timestamp: ts}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// -----------------------------------------------------------------------------
// Trigger Types
// -----------------------------------------------------------------------------

// TriggerKind discriminates the trigger condition variants.
type TriggerKind int

const (
	TriggerPriceAbove      TriggerKind = iota // Observed price strictly above Threshold
	TriggerPriceBelow                         // Observed price strictly below Threshold
	TriggerVolumeAbove                        // Observed volume strictly above Threshold
	TriggerVolatilityAbove                    // Observed volatility strictly above Threshold
	TriggerCrossOver                          // Fast average strictly above slow average
)

// Trigger is a condition evaluated against an indicator's current observation.
type Trigger struct {
	Kind      TriggerKind // Variant selector
	Threshold float64     // Bound for the *Above / *Below kinds
	Fast      int         // Fast period for CrossOver
	Slow      int         // Slow period for CrossOver
}

// PriceAbove triggers when the observed price exceeds t.
func PriceAbove(t float64) Trigger { return Trigger{Kind: TriggerPriceAbove, Threshold: t} }

// PriceBelow triggers when the observed price is under t.
func PriceBelow(t float64) Trigger { return Trigger{Kind: TriggerPriceBelow, Threshold: t} }

// VolumeAbove triggers when the observed volume exceeds t.
func VolumeAbove(t float64) Trigger { return Trigger{Kind: TriggerVolumeAbove, Threshold: t} }

// VolatilityAbove triggers when the observed volatility exceeds t.
func VolatilityAbove(t float64) Trigger { return Trigger{Kind: TriggerVolatilityAbove, Threshold: t} }

// CrossOver triggers when the fast moving average sits above the slow one.
func CrossOver(fast, slow int) Trigger { return Trigger{Kind: TriggerCrossOver, Fast: fast, Slow: slow} }

// -----------------------------------------------------------------------------
// Indicator State
// -----------------------------------------------------------------------------

// IndicatorState is the public snapshot an indicator emits per processed
// trade. The indicator's private accumulator never leaves the indicator;
// Metadata carries the per-plugin extras (observed price, bands, RSI, ...).
type IndicatorState struct {
	ID         string         // Unique instance ID, assigned at construction
	Name       string         // Plugin name (e.g. "SMA")
	Symbol     Symbol         // Instrument this state describes
	LastUpdate int64          // Source timestamp of the trade that produced it (ms)
	Value      float64        // Primary indicator value
	Metadata   map[string]any // Plugin-specific extras
}
