package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maorga/beacon/internal/domain"
	"github.com/maorga/beacon/internal/ports"
)

const (
	defaultDequeueWait    = time.Second
	defaultAttemptTimeout = 5 * time.Second
)

// Worker is the single background consumer of the event queue. It dequeues
// one event at a time and performs exactly one delivery attempt per event.
// Every failure mode is terminal for that event only: the loop exits on the
// stop signal and nothing else.
type Worker struct {
	queue ports.EventQueue
	sink  ports.Sink
	obs   ports.Observability

	dequeueWait    time.Duration
	attemptTimeout time.Duration

	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

func NewWorker(q ports.EventQueue, s ports.Sink, obs ports.Observability, dequeueWait, attemptTimeout time.Duration) *Worker {
	if dequeueWait <= 0 {
		dequeueWait = defaultDequeueWait
	}
	if attemptTimeout <= 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	return &Worker{
		queue:          q,
		sink:           s,
		obs:            obs,
		dequeueWait:    dequeueWait,
		attemptTimeout: attemptTimeout,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

// Start launches the delivery loop. Call at most once.
func (w *Worker) Start() {
	go w.run()
}

func (w *Worker) run() {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		default:
		}

		e, ok := w.queue.Dequeue(w.dequeueWait)
		if !ok {
			continue
		}
		w.Attempt(context.Background(), e)
		w.obs.SetGauge("beacon_queue_length", float64(w.queue.Len()))
	}
}

// Attempt performs one delivery attempt bounded by both ctx and the attempt
// timeout. The event is discarded whatever the outcome; failures are logged
// and counted, never propagated.
func (w *Worker) Attempt(ctx context.Context, e *domain.Event) {
	ctx, cancel := context.WithTimeout(ctx, w.attemptTimeout)
	defer cancel()

	start := time.Now()
	err := w.deliver(ctx, e)
	w.obs.ObserveLatency("beacon_delivery_latency_seconds", time.Since(start).Seconds())

	if err != nil {
		w.obs.IncCounter("beacon_deliveries_failed_total", 1)
		w.obs.LogWarn("delivery_failed", err,
			ports.Field{Key: "event", Value: e.Name},
			ports.Field{Key: "sink", Value: w.sink.Name()},
		)
		return
	}
	w.obs.IncCounter("beacon_events_delivered_total", 1)
}

// deliver isolates a panicking sink: the worker must outlive any transport
// fault.
func (w *Worker) deliver(ctx context.Context, e *domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sink panic: %v", r)
		}
	}()
	return w.sink.Deliver(ctx, e)
}

// Signal asks the loop to stop after its current cycle without waiting.
func (w *Worker) Signal() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

// Stop signals the loop and waits for it to exit, bounded by ctx.
func (w *Worker) Stop(ctx context.Context) error {
	w.Signal()
	select {
	case <-w.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
