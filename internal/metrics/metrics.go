// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the warehouse pipeline.
//
// The package is intentionally minimal:
//
//   - It exposes a narrow interface (Backend) focused on counters and
//     timing data.
//   - It provides a global, pluggable backend that defaults to a no-op
//     implementation, so metrics are always safe to call even when no real
//     backend is configured.
//   - It mirrors the storage abstraction pattern used elsewhere in the
//     project: the pipeline depends only on this interface, while concrete
//     metric systems live in subpackages.
//
// The primary use case is instrumentation of the pipeline steps (extract,
// transform, star, schema, load) and of record-level outcomes (inserted,
// skipped, unresolved foreign keys) without coupling the core logic to a
// specific metrics system.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) Flush() error                                               { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStep measures latency plus success/failure for one pipeline step
// (extract, transform, star, schema, load).
func RecordStep(job, step string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}

	lbls := Labels{
		"job":    job,
		"step":   step,
		"status": status,
	}

	backend.IncCounter("warehouse_step_total", 1, lbls)
	backend.ObserveHistogram("warehouse_step_duration_seconds", d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for the given job and kind.
//
// Typical kinds mirror the run summary fields:
//   - "extracted"     records fetched from the source API
//   - "wide"          wide rows after the join
//   - "inserted"      rows written by the bulk loader
//   - "skipped"       rows the loader dropped for coercion errors
//   - "unresolved_fk" fact rows whose dimension lookup missed
func RecordRow(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("warehouse_records_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordTableLoad increments the per-table load counter for the given job.
func RecordTableLoad(job, tbl string, rows int64) {
	if rows < 0 {
		return
	}
	backend.IncCounter("warehouse_table_loads_total", 1, Labels{
		"job":   job,
		"table": tbl,
	})
	RecordRow(job, "inserted", rows)
}
