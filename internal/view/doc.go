// Package view maintains the terminal UI state.
//
// A single scan goroutine folds two inputs into one snapshot: trades
// prepend onto a capped newest-first list as they arrive, and a refresh
// tick copies the per-symbol statistics and hands the combined snapshot
// to the configured handler. The tick keeps firing after the trade
// stream ends, so a dropped feed shows as frozen numbers rather than a
// dead UI.
package view
