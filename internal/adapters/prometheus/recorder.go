package prometheus

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/emiliopalmerini/bayesab/internal/ports"
)

const namespace = "bayesab"

// Recorder keeps calculator metrics in a private registry served at /metrics.
type Recorder struct {
	registry     *prometheus.Registry
	calculations *prometheus.CounterVec
	failures     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	verdicts     *prometheus.CounterVec
	probability  prometheus.Histogram
}

// NewRecorder creates a recorder with its own registry, including Go runtime
// and process collectors.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Number of estimate and analyze calls.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculation_failures_total",
			Help:      "Number of estimate and analyze calls that returned an error.",
		}, []string{"operation"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_seconds",
			Help:      "Time spent per calculation.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14),
		}, []string{"operation"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Lift analysis outcomes.",
		}, []string{"verdict"}),
		probability: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lift_probability",
			Help:      "Probability that lift exceeds the minimum, per analysis.",
			Buckets:   prometheus.LinearBuckets(0.05, 0.1, 10),
		}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.calculations,
		r.failures,
		r.duration,
		r.verdicts,
		r.probability,
	)
	return r
}

func (r *Recorder) RecordCalculation(_ context.Context, c ports.Calculation) {
	r.calculations.WithLabelValues(c.Operation).Inc()
	r.duration.WithLabelValues(c.Operation).Observe(c.Duration.Seconds())
	if c.Err != nil {
		r.failures.WithLabelValues(c.Operation).Inc()
		return
	}
	if c.Operation == ports.OpAnalyze {
		r.verdicts.WithLabelValues(c.Verdict).Inc()
		r.probability.Observe(c.Probability)
	}
}

func (r *Recorder) Close(context.Context) error {
	return nil
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
