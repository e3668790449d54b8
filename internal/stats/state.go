package stats

import (
	"math"

	"github.com/front-depiction/cli-stock/internal/model"
)

// Annualization constant: 252 trading days, in milliseconds.
const tradingYearMs = 252 * 24 * 60 * 60 * 1000

// State is the rolling statistics for one symbol. Count, Sum, SumSquares
// and the all-time Min/Max are maintained incrementally for debugging and
// forward extension; the derived metrics below read only the retained ring.
type State struct {
	Count      int64              // Total updates ever applied (monotonic)
	Sum        float64            // Running price sum (all-time)
	SumSquares float64            // Running sum of squared prices (all-time)
	Min        float64            // All-time minimum price
	Max        float64            // All-time maximum price
	Points     []model.PricePoint // Retained ring under the active window
	LastUpdate int64              // Timestamp of the newest update (ms)
}

// RecentPrices returns the ring's prices, oldest first.
func (s State) RecentPrices() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Price
	}
	return out
}

// Mean is the arithmetic mean over the ring. 0 on an empty ring.
func (s State) Mean() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	var sum float64
	for _, p := range s.Points {
		sum += p.Price
	}
	return sum / float64(len(s.Points))
}

// StdDev is the population standard deviation over the ring.
func (s State) StdDev() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	mean := s.Mean()
	var ss float64
	for _, p := range s.Points {
		d := p.Price - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(s.Points)))
}

// MinPrice is the minimum over the ring, not the all-time Min.
func (s State) MinPrice() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	min := s.Points[0].Price
	for _, p := range s.Points[1:] {
		if p.Price < min {
			min = p.Price
		}
	}
	return min
}

// MaxPrice is the maximum over the ring, not the all-time Max.
func (s State) MaxPrice() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	max := s.Points[0].Price
	for _, p := range s.Points[1:] {
		if p.Price > max {
			max = p.Price
		}
	}
	return max
}

// Volatility is the annualized log-return volatility over the ring, in
// percent: stddev(log returns) scaled by sqrt(tradingYear/elapsed) * 100.
// 0 when the ring has fewer than two points or spans no time.
func (s State) Volatility() float64 {
	n := len(s.Points)
	if n < 2 {
		return 0
	}
	elapsed := s.Points[n-1].Timestamp - s.Points[0].Timestamp
	if elapsed <= 0 {
		return 0
	}
	returns := make([]float64, 0, n-1)
	for i := 1; i < n; i++ {
		prev := s.Points[i-1].Price
		cur := s.Points[i].Price
		if prev <= 0 || cur <= 0 {
			continue
		}
		returns = append(returns, math.Log(cur/prev))
	}
	if len(returns) == 0 {
		return 0
	}
	var mean float64
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))
	var ss float64
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	sd := math.Sqrt(ss / float64(len(returns)))
	return sd * math.Sqrt(float64(tradingYearMs)/float64(elapsed)) * 100
}

// Momentum is the percent rate of change across the ring.
func (s State) Momentum() float64 {
	n := len(s.Points)
	if n < 2 {
		return 0
	}
	first := s.Points[0].Price
	if first == 0 {
		return 0
	}
	return (s.Points[n-1].Price - first) / first * 100
}

// TradeVelocity is the observed trade rate over the ring, in points/sec.
func (s State) TradeVelocity() float64 {
	n := len(s.Points)
	if n < 2 {
		return 0
	}
	elapsed := s.Points[n-1].Timestamp - s.Points[0].Timestamp
	if elapsed <= 0 {
		return 0
	}
	return float64(n) / float64(elapsed) * 1000
}

// VWAP is the volume-weighted average price over the ring. 0 when the
// ring carries no volume.
func (s State) VWAP() float64 {
	var pv, v float64
	for _, p := range s.Points {
		pv += p.Price * p.Volume
		v += p.Volume
	}
	if v == 0 {
		return 0
	}
	return pv / v
}

// SpreadPct approximates the spread as the ring's price range over its
// midpoint, in percent.
func (s State) SpreadPct() float64 {
	if len(s.Points) == 0 {
		return 0
	}
	min, max := s.MinPrice(), s.MaxPrice()
	mid := (min + max) / 2
	if mid == 0 {
		return 0
	}
	return (max - min) / mid * 100
}
