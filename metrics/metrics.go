// Package metrics records call counts and durations of the user function
// and exposes them in the Prometheus exposition format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const (
	CallsTotalName      = "function_calls_total"
	FailuresTotalName   = "function_failures_total"
	DurationSecondsName = "function_duration_seconds"
)

// Recorder holds the process-wide function metrics. All methods are safe
// for concurrent use.
type Recorder struct {
	registry *prometheus.Registry
	calls    prometheus.Counter
	failures prometheus.Counter
	duration prometheus.Histogram
}

// NewRecorder builds a Recorder backed by its own registry, which also
// carries the Go runtime and process collectors.
func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: CallsTotalName,
			Help: "Number of calls to user function",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: FailuresTotalName,
			Help: "Number of failed calls",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    DurationSecondsName,
			Help:    "Duration of user function in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}

	for _, c := range []prometheus.Collector{
		r.calls,
		r.failures,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	} {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Observe counts one call and times fn. The timer brackets fn only and is
// stopped even if fn panics.
func (r *Recorder) Observe(fn func()) {
	r.calls.Inc()
	timer := prometheus.NewTimer(r.duration)
	defer timer.ObserveDuration()

	fn()
}

// Failure counts a call that did not return normally.
func (r *Recorder) Failure() {
	r.failures.Inc()
}

// Calls returns the current value of the call counter.
func (r *Recorder) Calls() float64 {
	return counterValue(r.calls)
}

// Failures returns the current value of the failure counter.
func (r *Recorder) Failures() float64 {
	return counterValue(r.failures)
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the recorder's registry for scraping.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		Registry: r.registry,
	})
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
