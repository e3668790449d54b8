package stats

import (
	"fmt"
	"time"

	"github.com/front-depiction/cli-stock/internal/model"
)

// WindowKind discriminates the retention policy variants.
type WindowKind int

const (
	EventBased WindowKind = iota // Keep the last Size points
	TimeBased                    // Keep points newer than LastUpdate - Duration
	Hybrid                       // Time filter first, then tail-truncate to Size
)

func (k WindowKind) String() string {
	switch k {
	case EventBased:
		return "event"
	case TimeBased:
		return "time"
	default:
		return "hybrid"
	}
}

// InvalidWindowError reports a window configuration that violates its
// invariants. Constructors return it so an invalid window never exists.
type InvalidWindowError struct {
	Reason string
}

func (e *InvalidWindowError) Error() string {
	return fmt.Sprintf("invalid window config: %s", e.Reason)
}

// Window is a validated retention policy. Build one through the
// constructors; the zero value is not a usable window.
type Window struct {
	Kind     WindowKind    // Policy variant
	Size     int           // Max retained points (EventBased, Hybrid)
	Duration time.Duration // Retention horizon (TimeBased, Hybrid)
}

// NewEventWindow keeps the most recent size points.
func NewEventWindow(size int) (Window, error) {
	if size <= 0 {
		return Window{}, &InvalidWindowError{Reason: fmt.Sprintf("event window size must be > 0, got %d", size)}
	}
	return Window{Kind: EventBased, Size: size}, nil
}

// NewTimeWindow keeps points within d of the newest update.
func NewTimeWindow(d time.Duration) (Window, error) {
	if d <= 0 {
		return Window{}, &InvalidWindowError{Reason: fmt.Sprintf("time window duration must be > 0, got %v", d)}
	}
	return Window{Kind: TimeBased, Duration: d}, nil
}

// NewHybridWindow applies the time horizon first, then caps at size.
func NewHybridWindow(size int, d time.Duration) (Window, error) {
	if size <= 0 {
		return Window{}, &InvalidWindowError{Reason: fmt.Sprintf("hybrid window size must be > 0, got %d", size)}
	}
	if d <= 0 {
		return Window{}, &InvalidWindowError{Reason: fmt.Sprintf("hybrid window duration must be > 0, got %v", d)}
	}
	return Window{Kind: Hybrid, Size: size, Duration: d}, nil
}

// Update applies one trade observation and returns the successor state.
// The input state is left untouched: the retained ring is rebuilt on a
// fresh backing array, so callers may hold old snapshots safely.
func (w Window) Update(s State, price, volume float64, ts int64) State {
	next := s
	if next.Count == 0 || price < next.Min {
		next.Min = price
	}
	if next.Count == 0 || price > next.Max {
		next.Max = price
	}
	next.Count++
	next.Sum += price
	next.SumSquares += price * price
	next.LastUpdate = ts
	next.Points = w.retain(s.Points, model.PricePoint{Price: price, Volume: volume, Timestamp: ts}, ts)
	return next
}

// retain rebuilds the ring with pt appended and the policy applied.
func (w Window) retain(points []model.PricePoint, pt model.PricePoint, ts int64) []model.PricePoint {
	kept := make([]model.PricePoint, 0, len(points)+1)
	if w.Kind == TimeBased || w.Kind == Hybrid {
		cutoff := ts - w.Duration.Milliseconds()
		for _, p := range points {
			if p.Timestamp >= cutoff {
				kept = append(kept, p)
			}
		}
	} else {
		kept = append(kept, points...)
	}
	kept = append(kept, pt)
	if w.Kind == EventBased || w.Kind == Hybrid {
		if over := len(kept) - w.Size; over > 0 {
			kept = kept[over:]
		}
	}
	return kept
}
