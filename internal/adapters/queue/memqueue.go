package queue

import (
	"sync"
	"time"

	"github.com/maorga/beacon/internal/domain"
	"github.com/maorga/beacon/internal/ports"
)

// DefaultCapacity bounds the queue when the caller does not choose a size.
const DefaultCapacity = 100

// MemQueue is a bounded in-memory queue that preserves FIFO ordering.
// Producers never block: TryEnqueue rejects the newest event when the queue
// is full. The notify channel (capacity 1) wakes the single consumer blocked
// in Dequeue; any number of producers may enqueue concurrently.
type MemQueue struct {
	mu      sync.Mutex
	data    []*domain.Event
	cap     int
	dropped uint64
	notify  chan struct{}
}

func NewMemQueue(capacity int) *MemQueue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &MemQueue{
		data:   make([]*domain.Event, 0, capacity),
		cap:    capacity,
		notify: make(chan struct{}, 1),
	}
}

func (q *MemQueue) TryEnqueue(e *domain.Event) bool {
	q.mu.Lock()
	if len(q.data) >= q.cap {
		q.dropped++
		q.mu.Unlock()
		return false
	}
	q.data = append(q.data, e)
	q.mu.Unlock()

	// Non-blocking signal to the consumer.
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return true
}

// Dequeue returns the oldest buffered event, waiting up to wait for one to
// arrive. The false return means the wait elapsed with nothing buffered.
func (q *MemQueue) Dequeue(wait time.Duration) (*domain.Event, bool) {
	deadline := time.Now().Add(wait)
	for {
		if e, ok := q.pop(); ok {
			return e, true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, false
		}
		timer := time.NewTimer(remaining)
		select {
		case <-q.notify:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (q *MemQueue) pop() (*domain.Event, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil, false
	}
	e := q.data[0]
	q.data[0] = nil // release for GC
	q.data = append(q.data[:0], q.data[1:]...)
	return e, true
}

// DrainAvailable removes and returns all buffered events, oldest first.
func (q *MemQueue) DrainAvailable() []*domain.Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.data) == 0 {
		return nil
	}
	out := make([]*domain.Event, len(q.data))
	copy(out, q.data)
	for i := range q.data {
		q.data[i] = nil
	}
	q.data = q.data[:0]
	return out
}

func (q *MemQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.data)
}

// Dropped returns the number of events rejected since creation because the
// queue was at capacity.
func (q *MemQueue) Dropped() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}

var _ ports.EventQueue = (*MemQueue)(nil)
