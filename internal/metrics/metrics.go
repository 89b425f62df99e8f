// Package metrics exports run metrics in the Prometheus text format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ethpandaops/uimatrix/internal/report"
	"github.com/ethpandaops/uimatrix/internal/runner"
)

const namespace = "uimatrix"

// Recorder counts driver events into a registry owned by one run.
type Recorder struct {
	registry  *prometheus.Registry
	scenarios *prometheus.CounterVec
	durations *prometheus.HistogramVec
	retries   prometheus.Counter
	artifacts *prometheus.CounterVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		scenarios: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scenarios_total",
			Help:      "Scenarios finished, by outcome.",
		}, []string{"outcome"}),
		durations: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scenario_duration_seconds",
			Help:      "Wall time of executed scenarios, by device.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 120},
		}, []string{"device"}),
		retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "navigation_retries_total",
			Help:      "Navigations retried after a navigation error.",
		}),
		artifacts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "artifacts_total",
			Help:      "Failure artifacts captured, by result.",
		}, []string{"result"}),
	}
}

// Registry returns the registry the metrics are registered in.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ScenarioFinished(res *report.Result) {
	r.scenarios.WithLabelValues(string(res.Outcome)).Inc()

	if res.State != report.StateSkippedTimeout {
		r.durations.WithLabelValues(res.Device).Observe(res.Duration.Seconds())
	}
}

func (r *Recorder) NavigationRetried() {
	r.retries.Inc()
}

func (r *Recorder) ArtifactCaptured(ok bool) {
	result := "saved"
	if !ok {
		result = "failed"
	}

	r.artifacts.WithLabelValues(result).Inc()
}

// RecordSkipped counts excluded device pairs, which never reach a lane.
func (r *Recorder) RecordSkipped(n int) {
	if n > 0 {
		r.scenarios.WithLabelValues(string(report.OutcomeSkipped)).Add(float64(n))
	}
}

// WriteTextfile writes the metrics for a node-exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}

	return nil
}

var _ runner.Observer = (*Recorder)(nil)
