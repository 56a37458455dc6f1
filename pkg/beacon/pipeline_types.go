package beacon

import (
	"github.com/maorga/beacon/internal/domain"
	"github.com/maorga/beacon/internal/ports"
)

// Event is one immutable usage-tracking record (name + parameters + capture
// time) flowing through the pipeline.
type Event = domain.Event

// EventQueue is the bounded buffer between Track callers and the worker.
type EventQueue = ports.EventQueue

// Sink performs one at-most-once delivery attempt per event.
type Sink = ports.Sink

// Observability emits the pipeline's own diagnostics.
type Observability = ports.Observability

// Field is a structured log field used by Observability implementations.
type Field = ports.Field
