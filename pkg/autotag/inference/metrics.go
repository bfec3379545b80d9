package inference

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InferencesTotal counts Infer calls by outcome (ok, error)
	InferencesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotag_inferences_total",
			Help: "Total number of tag inference calls",
		},
		[]string{"outcome"},
	)

	// InferenceDuration tracks end-to-end inference latency
	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autotag_inference_duration_seconds",
			Help:    "Duration of tag inference in seconds",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
		},
	)

	// PredictedLabelsTotal counts predicted labels per attribute
	PredictedLabelsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotag_predicted_labels_total",
			Help: "Total number of predicted labels by attribute and label",
		},
		[]string{"attribute", "label"},
	)

	// ArtifactLoadsTotal counts artifact loads by outcome (ok, error)
	ArtifactLoadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autotag_artifact_loads_total",
			Help: "Total number of trained artifact loads",
		},
		[]string{"outcome"},
	)
)
