package ports

import (
	"context"

	"github.com/maorga/beacon/internal/domain"
)

// Sink performs one delivery attempt for one event. Delivery is at-most-once:
// the caller discards the event whether Deliver succeeds or not.
type Sink interface {
	Deliver(ctx context.Context, e *domain.Event) error
	Name() string
}
