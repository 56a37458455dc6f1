package ports

// Observability emits the pipeline's diagnostics: logs about delivery
// outcomes plus counters/gauges for throughput and queue pressure. Telemetry
// about telemetry stays behind this port so failures here can never reach
// the host application either.
type Observability interface {
	LogInfo(msg string, fields ...Field)
	LogWarn(msg string, err error, fields ...Field)
	LogError(msg string, err error, fields ...Field)

	IncCounter(name string, v float64)
	SetGauge(name string, v float64)
	ObserveLatency(name string, seconds float64)
}

type Field struct {
	Key   string
	Value any
}
