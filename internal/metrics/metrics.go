// Package metrics records per-run pipeline metrics and pushes them to a
// Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job the metrics are grouped under.
const JobName = "stocketl"

// Recorder holds the metrics of a single pipeline run on a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	stageDuration *prometheus.HistogramVec
	rows          *prometheus.CounterVec
	runSuccess    prometheus.Gauge
	lastRun       prometheus.Gauge
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stocketl",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock duration of each pipeline stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stocketl",
			Name:      "rows_total",
			Help:      "Rows seen per dataset and pipeline phase.",
		}, []string{"dataset", "phase"}),
		runSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stocketl",
			Name:      "run_success",
			Help:      "1 if the last run succeeded, 0 otherwise.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stocketl",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.stageDuration, r.rows, r.runSuccess, r.lastRun)
	return r
}

// Registry returns the registry holding the run metrics.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// AddRows counts n rows of dataset at the given phase (extracted, cleaned, loaded).
func (r *Recorder) AddRows(dataset, phase string, n int) {
	r.rows.WithLabelValues(dataset, phase).Add(float64(n))
}

// SetOutcome records whether the run succeeded and when it finished.
func (r *Recorder) SetOutcome(success bool, finishedAt time.Time) {
	if success {
		r.runSuccess.Set(1)
	} else {
		r.runSuccess.Set(0)
	}
	r.lastRun.Set(float64(finishedAt.Unix()))
}

// Push replaces the job's metrics on the Pushgateway at url.
func (r *Recorder) Push(ctx context.Context, url string) error {
	if err := push.New(url, JobName).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
