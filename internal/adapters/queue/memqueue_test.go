package queue

import (
	"testing"
	"time"

	"github.com/maorga/beacon/internal/domain"
)

func TestMemQueueEnqueueDequeueOrder(t *testing.T) {
	q := NewMemQueue(4)

	e1 := &domain.Event{Name: "e1"}
	e2 := &domain.Event{Name: "e2"}

	if !q.TryEnqueue(e1) || !q.TryEnqueue(e2) {
		t.Fatalf("expected successful enqueue")
	}

	got, ok := q.Dequeue(0)
	if !ok || got.Name != "e1" {
		t.Fatalf("unexpected first event: %+v ok=%v", got, ok)
	}

	got, ok = q.Dequeue(0)
	if !ok || got.Name != "e2" {
		t.Fatalf("unexpected second event: %+v ok=%v", got, ok)
	}

	if q.Len() != 0 {
		t.Fatalf("queue should be empty, got %d", q.Len())
	}
}

func TestMemQueueCapacity(t *testing.T) {
	q := NewMemQueue(2)

	e := &domain.Event{Name: "cap"}

	if !q.TryEnqueue(e) || !q.TryEnqueue(e) {
		t.Fatalf("expected enqueue within capacity")
	}
	if q.TryEnqueue(e) {
		t.Fatalf("enqueue should fail when capacity exceeded")
	}
	if q.Dropped() != 1 {
		t.Fatalf("expected 1 dropped event, got %d", q.Dropped())
	}

	q.Dequeue(0)
	if !q.TryEnqueue(e) {
		t.Fatalf("expected enqueue to succeed after dequeue")
	}
}

func TestMemQueueDequeueTimeout(t *testing.T) {
	q := NewMemQueue(2)

	start := time.Now()
	if _, ok := q.Dequeue(20 * time.Millisecond); ok {
		t.Fatalf("expected empty result from Dequeue on empty queue")
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("Dequeue returned before the wait elapsed: %s", elapsed)
	}
}

func TestMemQueueDequeueWakesOnEnqueue(t *testing.T) {
	q := NewMemQueue(2)

	go func() {
		time.Sleep(10 * time.Millisecond)
		q.TryEnqueue(&domain.Event{Name: "late"})
	}()

	e, ok := q.Dequeue(5 * time.Second)
	if !ok || e.Name != "late" {
		t.Fatalf("expected event enqueued during wait, got %+v ok=%v", e, ok)
	}
}

func TestMemQueueDrainAvailable(t *testing.T) {
	q := NewMemQueue(4)

	for _, name := range []string{"a", "b", "c"} {
		if !q.TryEnqueue(&domain.Event{Name: name}) {
			t.Fatalf("enqueue %s failed", name)
		}
	}

	drained := q.DrainAvailable()
	if len(drained) != 3 {
		t.Fatalf("expected 3 drained events, got %d", len(drained))
	}
	for i, name := range []string{"a", "b", "c"} {
		if drained[i].Name != name {
			t.Fatalf("drain order broken at %d: got %s", i, drained[i].Name)
		}
	}

	if q.Len() != 0 {
		t.Fatalf("queue should be empty after drain, got %d", q.Len())
	}
	if drained = q.DrainAvailable(); drained != nil {
		t.Fatalf("expected nil from empty drain, got %v", drained)
	}
}
