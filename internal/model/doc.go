// Package model defines shared data types used across the streaming pipeline.
//
// Conventions:
//   - Prices and volumes: float64 in the instrument's quote currency
//   - Timestamps: int64 milliseconds since Unix epoch
//   - Symbols: provider-native tickers (e.g. "AAPL", "BINANCE:BTCUSDT")
package model
