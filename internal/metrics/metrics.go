// Package metrics exports the outcome of a run in the Prometheus text format,
// for collection by node_exporter's textfile collector.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/solvia-downloader/solvia/internal/engine/types"
)

// Run holds the collectors describing one run
type Run struct {
	Registry *prometheus.Registry

	Success  prometheus.Gauge
	Bytes    prometheus.Gauge
	Duration prometheus.Gauge
	Speed    prometheus.Gauge
	LastRun  prometheus.Gauge
	// Failure is 1 for the category of a failed run. Each run writes a fresh
	// file, so it describes only the last run.
	Failure *prometheus.GaugeVec
}

// NewRun creates collectors on a fresh registry
func NewRun() *Run {
	r := &Run{
		Registry: prometheus.NewRegistry(),
		Success: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solvia_download_success",
			Help: "1 if the last download succeeded, 0 otherwise.",
		}),
		Bytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solvia_download_bytes",
			Help: "Size of the downloaded file in bytes.",
		}),
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solvia_download_duration_seconds",
			Help: "Wall-clock duration of the last run.",
		}),
		Speed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solvia_download_speed_mbps",
			Help: "Average transfer speed of the last run in MiB/s.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solvia_download_last_run_timestamp_seconds",
			Help: "Unix time the last run finished.",
		}),
		Failure: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "solvia_download_last_failure",
			Help: "1 labelled with the error category when the last run failed.",
		}, []string{"category"}),
	}
	r.Registry.MustRegister(r.Success, r.Bytes, r.Duration, r.Speed, r.LastRun, r.Failure)
	return r
}

// Observe sets the collectors from a run outcome. category names the failure
// kind and is ignored on success.
func (r *Run) Observe(res types.DownloadResult, category string, finishedAt time.Time) {
	if res.Success {
		r.Success.Set(1)
	} else {
		r.Success.Set(0)
		r.Failure.WithLabelValues(category).Set(1)
	}
	r.Bytes.Set(float64(res.FileSize))
	r.Duration.Set(res.DurationSeconds)
	r.Speed.Set(res.AverageSpeedMBps)
	r.LastRun.Set(float64(finishedAt.Unix()))
}

// WriteTextfile atomically writes the registry to path
func (r *Run) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
