package ports

import (
	"time"

	"github.com/maorga/beacon/internal/domain"
)

// EventQueue is the bounded, in-memory buffer that decouples event producers
// from the single delivery worker. Producers never block; the consumer may
// wait a bounded time for the next event.
type EventQueue interface {
	// TryEnqueue appends e if there is room and reports whether it was
	// accepted. A false return means the event was dropped.
	TryEnqueue(e *domain.Event) bool

	// Dequeue returns the oldest buffered event, blocking up to wait for one
	// to arrive. Safe for exactly one concurrent consumer.
	Dequeue(wait time.Duration) (*domain.Event, bool)

	// DrainAvailable removes and returns everything currently buffered
	// without blocking.
	DrainAvailable() []*domain.Event

	Len() int
	Dropped() uint64
}
