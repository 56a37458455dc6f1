package beacon

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/maorga/beacon/internal/adapters/queue"
)

// recordingSink collects delivered event names and signals each attempt.
type recordingSink struct {
	mu     sync.Mutex
	names  []string
	called chan struct{}
}

func newRecordingSink() *recordingSink {
	return &recordingSink{called: make(chan struct{}, 256)}
}

func (s *recordingSink) Deliver(_ context.Context, e *Event) error {
	s.mu.Lock()
	s.names = append(s.names, e.Name)
	s.mu.Unlock()
	s.called <- struct{}{}
	return nil
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) delivered() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

func (s *recordingSink) waitForCalls(t *testing.T, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		select {
		case <-s.called:
		case <-time.After(5 * time.Second):
			t.Fatalf("timed out waiting for delivery %d", i+1)
		}
	}
}

// parkedSink blocks every delivery until its context expires, simulating a
// collector that never answers.
type parkedSink struct {
	calls atomic.Int64
}

func (s *parkedSink) Deliver(ctx context.Context, _ *Event) error {
	s.calls.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *parkedSink) Name() string { return "parked" }

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Collector.MeasurementID = "G-TEST123"
	cfg.Collector.APISecret = "secret"
	cfg.Identity.Path = filepath.Join(t.TempDir(), "user_config.json")
	cfg.Queue.DequeueWait = 10 * time.Millisecond
	cfg.Shutdown.JoinTimeout = 100 * time.Millisecond
	return cfg
}

func TestDisabledWithoutCredentials(t *testing.T) {
	cases := map[string]*Config{
		"no credentials":   DefaultConfig(),
		"secret only":      func() *Config { c := DefaultConfig(); c.Collector.APISecret = "s"; return c }(),
		"measurement only": func() *Config { c := DefaultConfig(); c.Collector.MeasurementID = "G-X"; return c }(),
	}

	for name, cfg := range cases {
		p, err := New(cfg)
		if err != nil {
			t.Fatalf("%s: construction must not fail: %v", name, err)
		}
		if p.Enabled() {
			t.Fatalf("%s: expected disabled pipeline", name)
		}
		if p.ClientID() != "" {
			t.Fatalf("%s: disabled pipeline must not load an identity", name)
		}

		// Every operation is a no-op, in any order, any number of times.
		p.Track("app_opened", nil)
		p.Shutdown(time.Millisecond)
		p.Track("app_closed", map[string]any{"k": 1})
		p.Shutdown(0)
	}
}

func TestNewDisabledIsNoOp(t *testing.T) {
	p := NewDisabled()
	if p.Enabled() {
		t.Fatalf("expected disabled pipeline")
	}
	p.Track("anything", nil)
	p.Shutdown(time.Millisecond)
}

func TestTrackDeliversInOrder(t *testing.T) {
	snk := newRecordingSink()
	p, err := New(testConfig(t), WithSink(snk))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Shutdown(time.Second)

	if !p.Enabled() {
		t.Fatalf("expected enabled pipeline")
	}

	p.Track("e1", nil)
	p.Track("e2", map[string]any{"n": 2})
	p.Track("e3", nil)
	snk.waitForCalls(t, 3)

	got := snk.delivered()
	want := []string{"e1", "e2", "e3"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("delivery order broken: got %v, want %v", got, want)
		}
	}
}

func TestQueueStaysBoundedUnderSlowSink(t *testing.T) {
	q := queue.NewMemQueue(100)
	snk := &parkedSink{}
	p, err := New(testConfig(t), WithSink(snk), WithQueue(q))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer p.Shutdown(10 * time.Millisecond)

	for i := 0; i < 150; i++ {
		p.Track("burst", nil)
		if q.Len() > 100 {
			t.Fatalf("queue exceeded capacity: %d", q.Len())
		}
	}

	// The worker can have pulled at most a handful of events; the rest of
	// the overflow had to be dropped, not buffered.
	if q.Dropped() < 40 {
		t.Fatalf("expected most overflow dropped, got %d", q.Dropped())
	}
}

func TestClientIDStableAcrossConstructions(t *testing.T) {
	cfg := testConfig(t)

	p1, err := New(cfg, WithSink(newRecordingSink()))
	if err != nil {
		t.Fatalf("first new: %v", err)
	}
	first := p1.ClientID()
	p1.Shutdown(time.Second)

	p2, err := New(cfg, WithSink(newRecordingSink()))
	if err != nil {
		t.Fatalf("second new: %v", err)
	}
	second := p2.ClientID()
	p2.Shutdown(time.Second)

	if first == "" || first != second {
		t.Fatalf("expected stable client id, got %q then %q", first, second)
	}
}

func TestShutdownIsBounded(t *testing.T) {
	snk := &parkedSink{}
	p, err := New(testConfig(t), WithSink(snk))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for i := 0; i < 50; i++ {
		p.Track("pending", nil)
	}

	start := time.Now()
	p.Shutdown(10 * time.Millisecond)
	elapsed := time.Since(start)

	// Flush budget 10ms plus the 100ms join bound, with scheduling slack.
	if elapsed > 2*time.Second {
		t.Fatalf("shutdown not bounded: took %s", elapsed)
	}
}

func TestTrackAfterShutdownIsNoOp(t *testing.T) {
	q := queue.NewMemQueue(10)
	snk := newRecordingSink()
	p, err := New(testConfig(t), WithSink(snk), WithQueue(q))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	p.Shutdown(time.Second)
	p.Track("late", nil)

	if q.Len() != 0 {
		t.Fatalf("expected no enqueue after shutdown, queue has %d", q.Len())
	}

	// Second shutdown is tolerated.
	p.Shutdown(time.Second)
}

// gateSink wedges the worker on its first delivery and records the rest, so
// later events stay buffered until the shutdown flush picks them up.
type gateSink struct {
	mu      sync.Mutex
	started bool
	names   []string
	wedged  chan struct{}
}

func (s *gateSink) Deliver(ctx context.Context, e *Event) error {
	s.mu.Lock()
	if !s.started {
		s.started = true
		s.mu.Unlock()
		close(s.wedged)
		<-ctx.Done()
		return ctx.Err()
	}
	s.names = append(s.names, e.Name)
	s.mu.Unlock()
	return nil
}

func (s *gateSink) Name() string { return "gate" }

func TestShutdownFlushesBufferedEvents(t *testing.T) {
	q := queue.NewMemQueue(10)
	snk := &gateSink{wedged: make(chan struct{})}
	p, err := New(testConfig(t), WithSink(snk), WithQueue(q))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	p.Track("f0", nil)
	select {
	case <-snk.wedged:
	case <-time.After(5 * time.Second):
		t.Fatalf("worker never attempted first event")
	}

	p.Track("f1", nil)
	p.Track("f2", nil)
	p.Shutdown(time.Second)

	snk.mu.Lock()
	got := append([]string(nil), snk.names...)
	snk.mu.Unlock()
	if len(got) != 2 || got[0] != "f1" || got[1] != "f2" {
		t.Fatalf("expected shutdown to flush f1,f2 in order, got %v", got)
	}
}
