package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	FilesProcessed   *prometheus.CounterVec
	PointsExtracted  *prometheus.CounterVec
	ReadSeconds      *prometheus.HistogramVec
	ActiveWorkers    prometheus.Gauge
	ArtifactsWritten prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		FilesProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackmap_files_processed_total",
			Help: "Total number of processed track files.",
		}, []string{"format", "status"}),
		PointsExtracted: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "trackmap_points_extracted_total",
			Help: "Total number of track points extracted from source files.",
		}, []string{"format"}),
		ReadSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trackmap_file_read_duration_seconds",
			Help:    "Duration of reading and extracting one track file.",
			Buckets: prometheus.DefBuckets,
		}, []string{"format"}),
		ActiveWorkers: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "trackmap_active_workers",
			Help: "Current number of workers reading track files.",
		}),
		ArtifactsWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Name: "trackmap_artifacts_written_total",
			Help: "Total number of map artifacts written.",
		}),
	}
}
