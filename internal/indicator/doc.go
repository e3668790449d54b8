// Package indicator implements the technical indicator plugins.
//
// Every plugin:
//   - Filters the trade stream to its configured symbol
//   - Stays silent until its warm-up period is satisfied
//   - Emits one IndicatorState per matching trade once ready
//   - Derives Buy/Sell/Hold signals with strengths in [0,1]
//
// Accumulators are private to the goroutine driving Process, so the
// plugins themselves are lock-free. Signal and CheckTrigger work only
// on the emitted state, which carries the observed price, volume, and
// plugin extras in its metadata.
package indicator
