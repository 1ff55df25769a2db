package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	runsStarted        *prometheus.CounterVec
	runsFinished       *prometheus.CounterVec
	eventsAppended     *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	phaseDuration      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		runsStarted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heliox_runs_started_total",
				Help: "Total number of runs accepted for execution",
			},
			[]string{"risk_tier"},
		),
		runsFinished: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heliox_runs_finished_total",
				Help: "Total number of runs reaching a terminal status",
			},
			[]string{"status"},
		),
		eventsAppended: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heliox_ledger_events_total",
				Help: "Total number of events appended to the ledger",
			},
			[]string{"type"},
		),
		validationFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heliox_validation_failures_total",
				Help: "Total number of artifact validation failures",
			},
			[]string{"entity"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "heliox_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		phaseDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "heliox_phase_duration_seconds",
				Help:    "Duration of pipeline phases in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
	}
}

// RecordRunStarted records a run entering RUNNING.
func (r *Recorder) RecordRunStarted(riskTier string) {
	r.runsStarted.WithLabelValues(riskTier).Inc()
}

// RecordRunFinished records a run reaching a terminal status.
func (r *Recorder) RecordRunFinished(status string) {
	r.runsFinished.WithLabelValues(status).Inc()
}

// RecordEventAppended records a committed ledger append.
func (r *Recorder) RecordEventAppended(eventType string) {
	r.eventsAppended.WithLabelValues(eventType).Inc()
}

// RecordValidationFailure records an artifact rejected by the validators.
func (r *Recorder) RecordValidationFailure(entity string) {
	r.validationFailures.WithLabelValues(entity).Inc()
}

// RecordPhaseDuration records how long a phase took.
func (r *Recorder) RecordPhaseDuration(phase string, seconds float64) {
	r.phaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
