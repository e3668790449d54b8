package broker

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/front-depiction/cli-stock/internal/model"
)

// errSubscriberGone marks a send aborted because the target unsubscribed.
var errSubscriberGone = errors.New("broker: subscriber gone")

// Subscription is one subscriber's handle on the broker: a bounded queue
// and the channel draining it. The channel closes when the subscription
// or the broker ends; on broker close, buffered items are delivered
// before the close is observed.
type Subscription struct {
	id     uuid.UUID
	broker *Broker

	ch  chan model.TradeRecord   // the bounded queue the broker fills
	out <-chan model.TradeRecord // what C returns; ch, or the sorter's output

	done     chan struct{} // closed once the consumer walked away
	doneOnce sync.Once

	sendMu    sync.Mutex // held for the duration of one enqueue
	dead      bool       // set under sendMu once ch may no longer be sent to
	queueOnce sync.Once
}

// ID identifies the subscriber in logs and stats.
func (s *Subscription) ID() uuid.UUID { return s.id }

// C is the subscription's lazy sequence of trades, publish-ordered.
func (s *Subscription) C() <-chan model.TradeRecord { return s.out }

// Unsubscribe detaches from the broker and ends the sequence. An enqueue
// blocked on this subscriber aborts; that item is lost for this
// subscriber only. Safe to call any number of times, from any goroutine,
// and the right thing to defer right after Subscribe.
func (s *Subscription) Unsubscribe() {
	s.broker.remove(s.id)
	s.doneOnce.Do(func() { close(s.done) }) // wakes a blocked enqueue and any stage
	s.closeQueue()
}

// closeQueue ends the queue without signalling consumer departure, so
// attached stages still drain what is buffered. Used by broker close.
func (s *Subscription) closeQueue() {
	s.queueOnce.Do(func() {
		s.sendMu.Lock()
		s.dead = true
		close(s.ch) // no enqueue can be in flight while sendMu is held
		s.sendMu.Unlock()
	})
}

// send enqueues one record, blocking while the queue is full. It aborts
// when the subscriber leaves, the broker closes, or ctx is cancelled.
func (s *Subscription) send(ctx context.Context, t model.TradeRecord, brokerDone <-chan struct{}) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if s.dead {
		return errSubscriberGone
	}
	select {
	case s.ch <- t:
		return nil
	case <-s.done:
		return errSubscriberGone
	case <-brokerDone:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// sortBySourceTime reorders bursts chronologically: one blocking receive,
// then a non-blocking drain up to chunkSize, sort by source timestamp,
// forward. Ordering holds within each chunk only. The stage ends when in
// closes and stops forwarding once done closes, so an abandoned
// subscription never strands it.
func sortBySourceTime(in <-chan model.TradeRecord, done <-chan struct{}, chunkSize int) <-chan model.TradeRecord {
	out := make(chan model.TradeRecord)
	go func() {
		defer close(out)
		chunk := make([]model.TradeRecord, 0, chunkSize)
		for first := range in {
			chunk = append(chunk[:0], first)
		fill:
			for len(chunk) < chunkSize {
				select {
				case t, ok := <-in:
					if !ok {
						break fill
					}
					chunk = append(chunk, t)
				default:
					break fill
				}
			}
			sort.SliceStable(chunk, func(i, j int) bool {
				return chunk[i].SourceTimestamp < chunk[j].SourceTimestamp
			})
			for _, t := range chunk {
				select {
				case out <- t:
				case <-done:
					return
				}
			}
		}
	}()
	return out
}
