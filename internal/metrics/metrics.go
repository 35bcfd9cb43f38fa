// Package metrics exposes the probe outcome as Prometheus metrics, written
// to a node_exporter textfile after the run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/commity/backupcheck/internal/check"
)

// The probe is a one-shot process, so metrics live in a private registry
// and reach Prometheus through the textfile collector rather than a scrape
// endpoint.
var registry = prometheus.NewRegistry()

var (
	// FoldersExamined tracks how many folders matched the filter.
	FoldersExamined = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "backupcheck_folders_examined",
		Help: "Number of backup folders examined in the last run",
	})

	// MaxAgeBreaches tracks folders whose newest backup is too old.
	MaxAgeBreaches = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "backupcheck_max_age_breaches",
		Help: "Folders whose newest backup exceeds the max age threshold",
	})

	// MinAgeBreaches tracks folders whose oldest backup is too recent.
	MinAgeBreaches = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "backupcheck_min_age_breaches",
		Help: "Folders whose oldest backup is newer than the min age threshold",
	})

	// SizeWarnings tracks folders with an undersized latest backup.
	SizeWarnings = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "backupcheck_size_warnings",
		Help: "Folders whose latest backup is below half the folder average size",
	})

	// SizeErrors tracks folders with a zero-size latest backup.
	SizeErrors = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "backupcheck_size_errors",
		Help: "Folders whose latest backup has zero size",
	})

	// Status is the exit code of the last run.
	Status = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "backupcheck_status",
		Help: "Check status of the last run (0 OK, 1 WARNING, 2 CRITICAL, 3 UNKNOWN)",
	})

	// LastRunTimestamp records when the last run finished.
	LastRunTimestamp = promauto.With(registry).NewGauge(prometheus.GaugeOpts{
		Name: "backupcheck_last_run_timestamp_seconds",
		Help: "Unix timestamp of the last completed run",
	})
)

// Record sets the gauges from a finished run.
func Record(result check.Result, severity check.Severity, finishedAt int64) {
	FoldersExamined.Set(float64(result.FoldersExamined))
	MaxAgeBreaches.Set(float64(result.MaxAgeBreaches))
	MinAgeBreaches.Set(float64(result.MinAgeBreaches))
	SizeWarnings.Set(float64(result.SizeWarnings))
	SizeErrors.Set(float64(result.SizeErrors))
	Status.Set(float64(severity.ExitCode()))
	LastRunTimestamp.Set(float64(finishedAt))
}

// RecordFailure marks a run that aborted before producing a result.
func RecordFailure(severity check.Severity, finishedAt int64) {
	Status.Set(float64(severity.ExitCode()))
	LastRunTimestamp.Set(float64(finishedAt))
}

// WriteTextfile writes the registry to path in the textfile collector format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, registry)
}
