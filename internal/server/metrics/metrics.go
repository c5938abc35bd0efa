// Package metrics records the outcome and latency of lifecycle transitions.
package metrics

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OutcomeOK           = "ok"
	OutcomeNotFound     = "not_found"
	OutcomeAccessDenied = "access_denied"
	OutcomeConflict     = "conflict"
	OutcomeInvalidInput = "invalid_input"
	OutcomeError        = "error"
)

// Recorder is what the lifecycle services report to.
type Recorder interface {
	Observe(operation string, err error, elapsed time.Duration)
}

// Transitions holds the transition collectors of one registry.
type Transitions struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewTransitions registers the collectors on reg.
func NewTransitions(reg prometheus.Registerer) *Transitions {
	f := promauto.With(reg)
	return &Transitions{
		total: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "questkeeper",
			Name:      "transitions_total",
			Help:      "Lifecycle transitions by operation and outcome",
		}, []string{"operation", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "questkeeper",
			Name:      "transition_duration_seconds",
			Help:      "Lifecycle transition latency in seconds, transaction included",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
	}
}

func (t *Transitions) Observe(operation string, err error, elapsed time.Duration) {
	t.total.WithLabelValues(operation, Outcome(err)).Inc()
	t.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Outcome maps an operation error onto its label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, common.ErrorNotFound):
		return OutcomeNotFound
	case errors.Is(err, common.ErrorAccessDenied):
		return OutcomeAccessDenied
	case errors.Is(err, common.ErrorConflict):
		return OutcomeConflict
	case errors.Is(err, common.ErrorInvalidInput):
		return OutcomeInvalidInput
	}
	return OutcomeError
}

// Nop discards observations.
type Nop struct{}

func (Nop) Observe(string, error, time.Duration) {}
