package stats

import "fmt"

// InsufficientDataError reports a derived metric requested with too few
// retained points. The plain accessors return a neutral 0 instead; only
// the -Safe variants surface this error.
type InsufficientDataError struct {
	Metric string // Metric that was requested
	Have   int    // Points currently retained
	Need   int    // Minimum points the metric requires
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %s: have %d points, need %d", e.Metric, e.Have, e.Need)
}

func (s State) check(metric string, need int) error {
	if have := len(s.Points); have < need {
		return &InsufficientDataError{Metric: metric, Have: have, Need: need}
	}
	return nil
}

// MeanSafe is Mean with an explicit error on an empty ring.
func (s State) MeanSafe() (float64, error) {
	if err := s.check("mean", 1); err != nil {
		return 0, err
	}
	return s.Mean(), nil
}

// StdDevSafe is StdDev with an explicit error on an empty ring.
func (s State) StdDevSafe() (float64, error) {
	if err := s.check("stddev", 1); err != nil {
		return 0, err
	}
	return s.StdDev(), nil
}

// VWAPSafe is VWAP with an explicit error on an empty ring.
func (s State) VWAPSafe() (float64, error) {
	if err := s.check("vwap", 1); err != nil {
		return 0, err
	}
	return s.VWAP(), nil
}

// VolatilitySafe is Volatility with an explicit error below two points.
func (s State) VolatilitySafe() (float64, error) {
	if err := s.check("volatility", 2); err != nil {
		return 0, err
	}
	return s.Volatility(), nil
}

// MomentumSafe is Momentum with an explicit error below two points.
func (s State) MomentumSafe() (float64, error) {
	if err := s.check("momentum", 2); err != nil {
		return 0, err
	}
	return s.Momentum(), nil
}

// TradeVelocitySafe is TradeVelocity with an explicit error below two points.
func (s State) TradeVelocitySafe() (float64, error) {
	if err := s.check("tradeVelocity", 2); err != nil {
		return 0, err
	}
	return s.TradeVelocity(), nil
}

// SpreadPctSafe is SpreadPct with an explicit error on an empty ring.
func (s State) SpreadPctSafe() (float64, error) {
	if err := s.check("spread", 1); err != nil {
		return 0, err
	}
	return s.SpreadPct(), nil
}
