// Package publish broadcasts validated trades to external sinks.
//
// A Publisher delivers one trade to one backend. Two implementations are
// provided:
//
//   - NATS: fire-and-forget JSON messages on a per-symbol subject
//     (prefix.SYMBOL), drained on close so buffered messages flush.
//   - Redis: PUBLISH to a single channel, batched and flushed through a
//     pipeline on an interval to amortize round trips.
//
// The Forwarder fans one trade stream out to any number of publishers.
// A failing publisher is logged and skipped for that trade; it never
// stalls the stream or the other sinks.
package publish
