package observability

import (
	"log"

	"github.com/maorga/beacon/internal/ports"
)

// LogObs is the fallback diagnostics backend used when metrics are disabled.
// Counters and gauges are discarded; log lines still reach stderr so delivery
// failures stay visible.
type LogObs struct{}

func NewLogObs() *LogObs { return &LogObs{} }

func (LogObs) LogInfo(msg string, fields ...ports.Field) {
	log.Printf("beacon: %s%s", msg, fieldSuffix(fields))
}

func (LogObs) LogWarn(msg string, err error, fields ...ports.Field) {
	log.Printf("beacon: WARN: %s%s%s", msg, errSuffix(err), fieldSuffix(fields))
}

func (LogObs) LogError(msg string, err error, fields ...ports.Field) {
	log.Printf("beacon: ERROR: %s%s%s", msg, errSuffix(err), fieldSuffix(fields))
}

func (LogObs) IncCounter(string, float64)     {}
func (LogObs) SetGauge(string, float64)       {}
func (LogObs) ObserveLatency(string, float64) {}

var _ ports.Observability = LogObs{}
