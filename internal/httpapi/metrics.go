package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Pipeline label values.
const (
	pipelineLabels = "labels"
	pipelineAnswer = "answer"
	pipelineBatch  = "batch"
)

// Outcome label values.
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
)

var (
	// PipelineRequests counts pipeline invocations by outcome.
	PipelineRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clinicalreport_pipeline_requests_total",
			Help: "Pipeline requests by pipeline and outcome (ok, invalid, error)",
		},
		[]string{"pipeline", "outcome"},
	)

	// PipelineDuration tracks pipeline latency.
	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clinicalreport_pipeline_duration_seconds",
			Help:    "Pipeline processing time in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"pipeline"},
	)
)
