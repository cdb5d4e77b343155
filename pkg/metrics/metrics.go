package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PublishTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crazzzytube_publish_total",
		Help: "Total number of publish operations, by outcome kind",
	}, []string{"result"})

	PublishStageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crazzzytube_publish_stage_duration_seconds",
		Help:    "Duration of each publish pipeline stage",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
	}, []string{"stage"})

	UploadedObjectsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crazzzytube_uploaded_objects_total",
		Help: "Total number of objects written to the blob store by the publish pipeline",
	})

	ViewsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crazzzytube_views_total",
		Help: "Total number of recorded video views",
	})

	CleanupObjectsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crazzzytube_cleanup_objects_total",
		Help: "Objects removed by the deleted-video sweep, by outcome",
	}, []string{"result"})

	ActivePublishes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crazzzytube_active_publishes",
		Help: "Number of publish operations currently running",
	})
)
