package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	ItemsScannedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taghelper_items_scanned_total",
			Help: "Images loaded while opening datasets.",
		},
	)

	ItemSavesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taghelper_item_saves_total",
			Help: "Sidecar JSON files written.",
		},
	)

	FeatureClicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taghelper_feature_clicks_total",
			Help: "Checklist node clicks by action.",
		},
		[]string{"action"},
	)

	FeatureRenamesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taghelper_feature_renames_total",
			Help: "Dataset-wide feature rename/delete operations.",
		},
		[]string{"kind"}, // rename, delete
	)

	SubsetImagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taghelper_subset_images_total",
			Help: "Images considered during subset export by outcome.",
		},
		[]string{"result"}, // written, filtered, low_rating
	)

	CaptionTruncationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "taghelper_caption_truncations_total",
			Help: "Captions shortened to fit the token budget.",
		},
	)

	ExportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taghelper_export_duration_seconds",
			Help:    "Duration of subset exports.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
	)

	InterrogationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taghelper_interrogations_total",
			Help: "Automatic tag interrogations by status.",
		},
		[]string{"status"}, // success, failure, fallback
	)

	KnownChecklistEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taghelper_known_checklist_entries",
			Help: "Entries in the known-feature checklists of the open dataset.",
		},
	)
)
