package beacon

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/maorga/beacon/internal/adapters/identity"
	"github.com/maorga/beacon/internal/adapters/observability"
	"github.com/maorga/beacon/internal/adapters/queue"
	"github.com/maorga/beacon/internal/adapters/sink"
	"github.com/maorga/beacon/internal/app/config"
	"github.com/maorga/beacon/internal/app/pipeline"
	"github.com/maorga/beacon/internal/domain"
	"github.com/maorga/beacon/internal/ports"
)

// Option customizes the dependencies used by New.
type Option func(*overrides)

type overrides struct {
	queue    ports.EventQueue
	sink     ports.Sink
	obs      ports.Observability
	clientID string
}

// WithQueue injects a custom queue implementation.
func WithQueue(q EventQueue) Option {
	return func(o *overrides) { o.queue = q }
}

// WithSink injects a custom delivery sink so events can go to any backend.
func WithSink(s Sink) Option {
	return func(o *overrides) { o.sink = s }
}

// WithObservability plugs in a custom diagnostics backend.
func WithObservability(obs Observability) Option {
	return func(o *overrides) { o.obs = obs }
}

// WithClientID skips the identity file and uses the given id as-is.
func WithClientID(id string) Option {
	return func(o *overrides) { o.clientID = id }
}

// Pipeline is the public entry point for usage telemetry. Track never blocks
// and never fails the caller; Shutdown always returns in bounded time. A
// disabled pipeline (missing credentials) keeps the same surface where every
// method is a cheap no-op.
type Pipeline struct {
	cfg      *config.Config
	enabled  bool
	clientID string

	events ports.EventQueue
	worker *pipeline.Worker
	obs    ports.Observability

	db         *sql.DB
	metricsSrv *http.Server

	closed   atomic.Bool
	shutOnce sync.Once
}

// NewDisabled returns a pipeline in the disabled state: no identity, no
// queue, no worker, no network.
func NewDisabled() *Pipeline {
	return &Pipeline{cfg: config.Default()}
}

// New constructs a pipeline from cfg. When the collector credentials are
// absent the pipeline comes up disabled rather than failing; configuration
// absence is a supported mode, not an error.
func New(cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}

	var ov overrides
	for _, opt := range opts {
		if opt != nil {
			opt(&ov)
		}
	}

	obs := ov.obs
	if obs == nil {
		if cfg.Metrics.Addr != "" {
			obs = observability.NewPromObs()
		} else {
			obs = observability.NewLogObs()
		}
	}

	if ov.sink == nil && !cfg.CollectorConfigured() {
		obs.LogInfo("telemetry_disabled", ports.Field{Key: "reason", Value: "missing collector credentials"})
		return &Pipeline{cfg: cfg, obs: obs}, nil
	}

	clientID := ov.clientID
	if clientID == "" {
		clientID = identity.LoadOrCreate(cfg.Identity.Path, obs)
	}

	events := ov.queue
	if events == nil {
		events = queue.NewMemQueue(cfg.Queue.Capacity)
	}

	var db *sql.DB
	snk := ov.sink
	if snk == nil {
		switch cfg.Collector.Kind {
		case "postgres":
			var err error
			db, err = sql.Open("postgres", cfg.Postgres.ConnString)
			if err != nil {
				return nil, err
			}
			snk = sink.NewPostgresSink(db, cfg.Postgres.Table, clientID)
		default:
			snk = sink.NewGA4Sink(sink.GA4Config{
				Endpoint:      cfg.Collector.Endpoint,
				MeasurementID: cfg.Collector.MeasurementID,
				APISecret:     cfg.Collector.APISecret,
				ClientID:      clientID,
				Timeout:       cfg.Collector.Timeout,
			}, nil)
		}
	}

	w := pipeline.NewWorker(events, snk, obs, cfg.Queue.DequeueWait, cfg.Collector.Timeout)
	w.Start()

	p := &Pipeline{
		cfg:      cfg,
		enabled:  true,
		clientID: clientID,
		events:   events,
		worker:   w,
		obs:      obs,
		db:       db,
	}
	p.startMetrics()

	obs.LogInfo("telemetry_started",
		ports.Field{Key: "sink", Value: snk.Name()},
		ports.Field{Key: "queue_capacity", Value: cfg.Queue.Capacity},
	)
	return p, nil
}

// Enabled reports whether events are being collected at all.
func (p *Pipeline) Enabled() bool {
	return p != nil && p.enabled
}

// ClientID returns the anonymous installation identity, empty when disabled.
func (p *Pipeline) ClientID() string {
	if p == nil {
		return ""
	}
	return p.clientID
}

// Track records one usage event. It never blocks and never fails: when the
// pipeline is disabled, already shut down, or the queue is full, the event
// is silently absorbed.
func (p *Pipeline) Track(name string, params map[string]any) {
	if p == nil || !p.enabled || p.closed.Load() {
		return
	}

	e := domain.NewEvent(name, params, time.Now().UTC())
	if !p.events.TryEnqueue(e) {
		p.obs.IncCounter("beacon_events_dropped_total", 1)
		return
	}
	p.obs.IncCounter("beacon_events_enqueued_total", 1)
	p.obs.SetGauge("beacon_queue_length", float64(p.events.Len()))
}

// Shutdown stops the worker, synchronously flushes buffered events until
// timeout elapses, then waits briefly for the worker to exit. Events still
// unflushed at the deadline are counted as lost, not retried. Safe to call
// more than once; Track afterwards is a no-op.
func (p *Pipeline) Shutdown(timeout time.Duration) {
	if p == nil || !p.enabled {
		return
	}
	p.shutOnce.Do(func() {
		p.closed.Store(true)
		if timeout <= 0 {
			timeout = p.cfg.Shutdown.FlushTimeout
		}
		deadline := time.Now().Add(timeout)

		p.worker.Signal()

		pending := p.events.DrainAvailable()
		flushed := 0
		for _, e := range pending {
			remaining := time.Until(deadline)
			if remaining <= 0 {
				break
			}
			ctx, cancel := context.WithTimeout(context.Background(), remaining)
			p.worker.Attempt(ctx, e)
			cancel()
			flushed++
		}
		if lost := len(pending) - flushed; lost > 0 {
			p.obs.IncCounter("beacon_events_lost_total", float64(lost))
			p.obs.LogWarn("shutdown_flush_incomplete", nil,
				ports.Field{Key: "flushed", Value: flushed},
				ports.Field{Key: "lost", Value: lost},
			)
		}

		joinCtx, cancel := context.WithTimeout(context.Background(), p.cfg.Shutdown.JoinTimeout)
		defer cancel()
		if err := p.worker.Stop(joinCtx); err != nil {
			p.obs.LogWarn("worker_join_timed_out", err)
		}

		p.stopMetrics()
		if p.db != nil {
			_ = p.db.Close()
		}
	})
}

func (p *Pipeline) startMetrics() {
	pobs, ok := p.obs.(*observability.PromObs)
	if !ok || p.cfg.Metrics.Addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(pobs.Registry(), promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	p.metricsSrv = &http.Server{
		Addr:    p.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := p.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			p.obs.LogError("metrics_server_exited", err)
		}
	}()
}

func (p *Pipeline) stopMetrics() {
	if p.metricsSrv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_ = p.metricsSrv.Shutdown(ctx)
}
