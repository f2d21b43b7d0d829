// Package metrics exposes the upload and sweep counters served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UploadsTotal counts successfully stored recordings.
	UploadsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerec_uploads_total",
		Help: "Number of recordings stored successfully.",
	})

	// UploadBytesTotal counts bytes written for stored recordings.
	UploadBytesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerec_upload_bytes_total",
		Help: "Total bytes of recording payloads written to disk.",
	})

	// UploadFailuresTotal counts uploads that ended in an error response.
	UploadFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerec_upload_failures_total",
		Help: "Number of uploads that failed.",
	})

	// SweepDeletedTotal counts files removed by the retention sweep.
	SweepDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerec_sweep_deleted_total",
		Help: "Number of recordings deleted by the retention sweep.",
	})

	// SweepErrorsTotal counts per-file and per-directory sweep failures.
	SweepErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "voicerec_sweep_errors_total",
		Help: "Number of errors encountered during retention sweeps.",
	})
)
