package sync

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Metrics collects one Sync run's outcome for the node_exporter textfile
// collector. There is no long-running process to serve a /metrics endpoint,
// so a run dumps a snapshot to disk instead.
type Metrics struct {
	registry *prometheus.Registry

	lastSyncTimestamp *prometheus.GaugeVec
	syncCount         *prometheus.CounterVec
	unmanagedTotal    prometheus.Gauge
}

// NewMetrics registers the sync gauges/counters under namespace on a private
// registry, so a run never collides with any other registerer in-process.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		lastSyncTimestamp: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "repo_last_sync_timestamp",
			Help:      "Timestamp of the last successful repo sync",
		}, []string{"repo"}),
		syncCount: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repo_sync_count",
			Help:      "Count of repo sync operations",
		}, []string{"repo", "success"}),
		unmanagedTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unmanaged_paths_total",
			Help:      "Number of discovered paths not present in the managed config",
		}),
	}
	return m
}

// Observe records the outcome of one Sync call.
func (m *Metrics) Observe(result Result) {
	for _, rr := range result.Repos {
		success := rr.Err == nil
		m.syncCount.WithLabelValues(rr.Fullname, boolLabel(success)).Inc()
		if success {
			m.lastSyncTimestamp.WithLabelValues(rr.Fullname).SetToCurrentTime()
		}
	}
	m.unmanagedTotal.Set(float64(len(result.Unmanaged)))
}

// WriteTextfile renders the registry in the textfile-collector format and
// atomically replaces path, following node_exporter's own convention of
// writing to a sibling temp file first so a concurrent scrape never reads a
// half-written file.
func (m *Metrics) WriteTextfile(path string) error {
	mfs, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var buf bytes.Buffer
	enc := expfmt.NewEncoder(&buf, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}
	}

	tmp := path + ".tmp." + fmt.Sprint(time.Now().UnixNano())
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write temp metrics file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename metrics file into place: %w", err)
	}
	return nil
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
