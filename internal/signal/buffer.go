package signal

import (
	"sync"

	"github.com/front-depiction/cli-stock/internal/model"
)

// Buffer queues signals between aggregation passes. It is a ring that
// doubles its capacity when it reaches 70% full, so bursts between two
// ticks never drop a signal.
type Buffer struct {
	mu       sync.Mutex
	buf      []model.Signal
	head     int
	tail     int
	count    int
	capacity int
	closed   bool

	totalQueued  int64
	totalDrained int64
	resizeCount  int
}

// BufferStats is a point-in-time view of buffer activity.
type BufferStats struct {
	Count        int
	Capacity     int
	TotalQueued  int64
	TotalDrained int64
	ResizeCount  int
}

// NewBuffer creates a buffer with the given initial capacity.
func NewBuffer(initialCapacity int) *Buffer {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &Buffer{
		buf:      make([]model.Signal, initialCapacity),
		capacity: initialCapacity,
	}
}

// Add queues a signal. Returns false once the buffer is closed.
func (b *Buffer) Add(s model.Signal) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false
	}

	threshold := (b.capacity * 70) / 100
	if threshold < 1 {
		threshold = 1
	}
	if b.count+1 >= threshold {
		b.grow()
	}

	b.buf[b.tail] = s
	b.tail = (b.tail + 1) % b.capacity
	b.count++
	b.totalQueued++
	return true
}

// Drain removes up to max queued signals in arrival order. max <= 0
// drains everything. Returns nil when the buffer is empty.
func (b *Buffer) Drain(max int) []model.Signal {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}

	n := b.count
	if max > 0 && max < n {
		n = max
	}

	result := make([]model.Signal, n)
	for i := 0; i < n; i++ {
		result[i] = b.buf[b.head]
		b.buf[b.head] = model.Signal{}
		b.head = (b.head + 1) % b.capacity
		b.count--
		b.totalDrained++
	}
	return result
}

// Close rejects further Adds. Queued signals stay drainable.
func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Len returns the number of queued signals.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Cap returns the current capacity.
func (b *Buffer) Cap() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.capacity
}

// Stats returns buffer counters.
func (b *Buffer) Stats() BufferStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BufferStats{
		Count:        b.count,
		Capacity:     b.capacity,
		TotalQueued:  b.totalQueued,
		TotalDrained: b.totalDrained,
		ResizeCount:  b.resizeCount,
	}
}

// grow doubles capacity, unwrapping the ring. Caller holds the lock.
func (b *Buffer) grow() {
	newCapacity := b.capacity * 2
	newBuf := make([]model.Signal, newCapacity)

	if b.count > 0 {
		if b.head < b.tail {
			copy(newBuf, b.buf[b.head:b.tail])
		} else {
			n := copy(newBuf, b.buf[b.head:])
			copy(newBuf[n:], b.buf[:b.tail])
		}
	}

	b.buf = newBuf
	b.head = 0
	b.tail = b.count
	b.capacity = newCapacity
	b.resizeCount++
}
