package observability

import (
	"fmt"
	"log"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/maorga/beacon/internal/ports"
)

// PromObs records pipeline diagnostics as Prometheus metrics. Each instance
// owns its own registry so several pipelines can coexist in one process;
// expose Registry() through an HTTP handler to scrape it.
type PromObs struct {
	registry *prometheus.Registry
	counters map[string]prometheus.Counter
	gauges   map[string]prometheus.Gauge
	histos   map[string]prometheus.Observer
}

func NewPromObs() *PromObs {
	enqueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beacon_events_enqueued_total",
		Help: "Events accepted into the delivery queue.",
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beacon_events_dropped_total",
		Help: "Events rejected because the queue was full.",
	})
	delivered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beacon_events_delivered_total",
		Help: "Events accepted by the collector.",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beacon_deliveries_failed_total",
		Help: "Delivery attempts that ended in a transport or collector error.",
	})
	lost := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "beacon_events_lost_total",
		Help: "Events abandoned because the shutdown flush deadline elapsed.",
	})
	queueLen := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "beacon_queue_length",
		Help: "Current number of events buffered in the queue.",
	})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "beacon_delivery_latency_seconds",
		Help:    "Wall time of a single delivery attempt.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(enqueued, dropped, delivered, failed, lost, queueLen, latency)

	return &PromObs{
		registry: reg,
		counters: map[string]prometheus.Counter{
			"beacon_events_enqueued_total":   enqueued,
			"beacon_events_dropped_total":    dropped,
			"beacon_events_delivered_total":  delivered,
			"beacon_deliveries_failed_total": failed,
			"beacon_events_lost_total":       lost,
		},
		gauges: map[string]prometheus.Gauge{
			"beacon_queue_length": queueLen,
		},
		histos: map[string]prometheus.Observer{
			"beacon_delivery_latency_seconds": latency,
		},
	}
}

// Registry returns the metric registry backing this instance.
func (p *PromObs) Registry() *prometheus.Registry { return p.registry }

func (p *PromObs) LogInfo(msg string, fields ...ports.Field) {}

func (p *PromObs) LogWarn(msg string, err error, fields ...ports.Field) {
	log.Printf("WARN: %s%s%s", msg, errSuffix(err), fieldSuffix(fields))
}

func (p *PromObs) LogError(msg string, err error, fields ...ports.Field) {
	log.Printf("ERROR: %s%s%s", msg, errSuffix(err), fieldSuffix(fields))
}

func (p *PromObs) IncCounter(name string, v float64) {
	if c, ok := p.counters[name]; ok {
		c.Add(v)
	}
}

func (p *PromObs) SetGauge(name string, v float64) {
	if g, ok := p.gauges[name]; ok {
		g.Set(v)
	}
}

func (p *PromObs) ObserveLatency(name string, seconds float64) {
	if h, ok := p.histos[name]; ok {
		h.Observe(seconds)
	}
}

var _ ports.Observability = (*PromObs)(nil)

func errSuffix(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf(": %v", err)
}

func fieldSuffix(fields []ports.Field) string {
	if len(fields) == 0 {
		return ""
	}
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, " %s=%v", f.Key, f.Value)
	}
	return b.String()
}
