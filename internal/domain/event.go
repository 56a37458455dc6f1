package domain

import "time"

// Event is the canonical unit of usage telemetry in Beacon: one immutable
// record of something the host application did.
type Event struct {
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewEvent builds an Event with its own copy of params so later mutation by
// the caller cannot leak into the queue. Params is never nil.
func NewEvent(name string, params map[string]any, ts time.Time) *Event {
	copied := make(map[string]any, len(params))
	for k, v := range params {
		copied[k] = v
	}
	return &Event{Name: name, Params: copied, Timestamp: ts}
}
