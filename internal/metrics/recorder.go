// Package metrics records per-run counters and exports them in the
// Prometheus text format for node_exporter's textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "keyrotator"

// Recorder owns a private registry so runs never touch the global one.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	keysListed     prometheus.Counter
	keysDeleted    prometheus.Counter
	keysSkipped    prometheus.Counter
	deleteFailures prometheus.Counter
	retries        *prometheus.CounterVec
	lastRun        prometheus.Gauge
}

// NewRecorder creates a Recorder with all metrics registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		keysListed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_listed_total",
			Help:      "User-managed keys returned by list calls.",
		}),
		keysDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_deleted_total",
			Help:      "Expired keys deleted by cleanup.",
		}),
		keysSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "keys_skipped_total",
			Help:      "Keys skipped by cleanup because their creation time did not parse.",
		}),
		deleteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "key_delete_failures_total",
			Help:      "Expired keys cleanup failed to delete.",
		}),
		retries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "remote_retries_total",
			Help:      "Retries of remote IAM calls after a server error.",
		}, []string{"operation"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	r.registry.MustRegister(
		r.keysListed,
		r.keysDeleted,
		r.keysSkipped,
		r.deleteFailures,
		r.retries,
		r.lastRun,
	)
	return r
}

// KeysListed counts n keys returned by a list call.
func (r *Recorder) KeysListed(n int) {
	if r != nil {
		r.keysListed.Add(float64(n))
	}
}

// KeySkipped counts a key left alone because its creation time did not parse.
func (r *Recorder) KeySkipped() {
	if r != nil {
		r.keysSkipped.Inc()
	}
}

// KeyDeleted counts one deleted key.
func (r *Recorder) KeyDeleted() {
	if r != nil {
		r.keysDeleted.Inc()
	}
}

// KeyDeleteFailed counts one failed deletion.
func (r *Recorder) KeyDeleteFailed() {
	if r != nil {
		r.deleteFailures.Inc()
	}
}

// Retried counts one retry of the named remote operation.
func (r *Recorder) Retried(op string) {
	if r != nil {
		r.retries.WithLabelValues(op).Inc()
	}
}

// WriteTextfile stamps the run completion time and writes all metrics to
// path. The file is replaced atomically.
func (r *Recorder) WriteTextfile(path string, finished time.Time) error {
	if r == nil {
		return nil
	}
	r.lastRun.Set(float64(finished.Unix()))
	return prometheus.WriteToTextfile(path, r.registry)
}
