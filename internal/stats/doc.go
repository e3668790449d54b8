// Package stats implements rolling-window trade statistics.
//
// A Window is a retention policy over the most recent price points: by
// count, by duration, or both. Update is a pure transition (state in,
// state out); derived metrics are computed on demand from the retained
// ring and never stored. The Collector owns the per-symbol state map and
// applies updates under a single lock.
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch
//   - Durations: time.Duration, converted to ms at the comparison site
//   - Annualization: a trading year of 252 days
package stats
