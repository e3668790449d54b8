// Package provider implements WebSocket clients for market data feeds.
//
// Each provider:
//   - Authenticates against its upstream (query token or auth frame)
//   - Subscribes to a fixed set of symbols for the life of the stream
//   - Decodes provider frames into validated TradeRecords
//   - Stamps receipt time immediately after each socket read
//   - Closes the output channel on terminal transport errors
//
// Malformed frames are logged and skipped; they never terminate the
// stream. A dropped connection does: providers perform no reconnection,
// the channel closes and downstream consumers keep running on whatever
// state they already hold.
package provider
