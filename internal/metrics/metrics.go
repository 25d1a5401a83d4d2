// Package metrics exposes export and catalog counters in Prometheus format. The
// CLI is short-lived, so metrics are written to a node_exporter textfile rather
// than served.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/snapetech/strmsync/internal/catalog"
	"github.com/snapetech/strmsync/internal/export"
)

const namespace = "strmsync"

// Recorder holds a private registry with the strm-sync collectors.
type Recorder struct {
	reg *prometheus.Registry

	batches      *prometheus.CounterVec
	written      *prometheus.CounterVec
	failed       *prometheus.CounterVec
	lastSuccess  *prometheus.GaugeVec
	lastDuration *prometheus.GaugeVec
	catalogItems *prometheus.GaugeVec

	textfile string
}

// New registers the collectors. When textfile is non-empty every recorded batch
// rewrites it.
func New(textfile string) *Recorder {
	r := &Recorder{
		reg: prometheus.NewRegistry(),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "export", Name: "batches_total",
			Help: "Export batches by kind and final state.",
		}, []string{"kind", "state"}),
		written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "export", Name: "items_written_total",
			Help: "Playlist entries, movie links and episodes written.",
		}, []string{"kind"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "export", Name: "items_failed_total",
			Help: "Items skipped because of per-item failures.",
		}, []string{"kind"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "export", Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last succeeded batch.",
		}, []string{"kind"}),
		lastDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "export", Name: "last_duration_seconds",
			Help: "Wall time of the last batch.",
		}, []string{"kind"}),
		catalogItems: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Subsystem: "catalog", Name: "items",
			Help: "Items in the last fetched catalog.",
		}, []string{"kind"}),
		textfile: textfile,
	}
	r.reg.MustRegister(r.batches, r.written, r.failed, r.lastSuccess, r.lastDuration, r.catalogItems)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// RecordBatch updates the export collectors and flushes the textfile.
func (r *Recorder) RecordBatch(_ context.Context, rep export.Report) error {
	kind := rep.Kind.String()
	r.batches.WithLabelValues(kind, string(rep.State)).Inc()
	if rep.State != export.StateRejected {
		r.written.WithLabelValues(kind).Add(float64(rep.Written))
		r.failed.WithLabelValues(kind).Add(float64(rep.Failed))
		r.lastDuration.WithLabelValues(kind).Set(rep.FinishedAt.Sub(rep.StartedAt).Seconds())
	}
	if rep.State == export.StateSucceeded {
		r.lastSuccess.WithLabelValues(kind).Set(float64(rep.FinishedAt.Unix()))
	}
	return r.Flush()
}

// ObserveSnapshot records catalog sizes and flushes the textfile.
func (r *Recorder) ObserveSnapshot(snap catalog.Snapshot) error {
	for _, k := range catalog.Kinds {
		r.catalogItems.WithLabelValues(k.String()).Set(float64(snap.Count(k)))
	}
	return r.Flush()
}

// Flush writes the textfile, if one is configured.
func (r *Recorder) Flush() error {
	if r.textfile == "" {
		return nil
	}
	return prometheus.WriteToTextfile(r.textfile, r.reg)
}
