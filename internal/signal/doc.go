// Package signal turns per-indicator signals into a consensus.
//
// Indicator signals queue in a growable buffer and are aggregated on a
// fixed cadence: buy and sell strengths are summed separately, and a
// side wins only when it both beats the other side and clears 30% of
// the batch size. Everything else is a Hold.
package signal
