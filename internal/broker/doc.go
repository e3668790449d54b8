// Package broker implements the in-process trade multicast.
//
// One publisher fans TradeRecords out to any number of subscribers, each
// holding an independent bounded queue. A full queue blocks the publisher
// (backpressure, never a silent drop); a subscriber that goes away mid
// enqueue loses only its own in-flight item. Subscriptions observe
// publishes made after Subscribe returns; nothing is replayed. Closing
// the broker ends every subscription normally: queues drain, channels
// close.
//
// Total memory is bounded by capacity x subscribers.
package broker
