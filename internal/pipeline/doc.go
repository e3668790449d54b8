// Package pipeline assembles the streaming core from configuration.
//
// One Pipeline owns the whole data flow: provider → broker → the
// fan-out consumers (stats collector, view model, indicator engines,
// consensus runner, broadcast publishers, metrics). Run supervises
// every stage under a single errgroup; the first hard failure tears
// the group down, while normal terminations (provider end-of-stream,
// context cancel) unwind cleanly.
//
// When the provider stream ends the broker closes and every consumer
// drains, but the process keeps running with frozen statistics until
// the context is cancelled. There is no reconnection.
package pipeline
