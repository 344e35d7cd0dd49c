package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are registered on the default registry through promauto.

var (
	// HttpRequestsTotal counts API requests by method, path and status code.
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsum_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	// HttpRequestDuration measures API response time.
	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustsum_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	// DocumentsTotal counts summarized documents by outcome ("ok" or an error kind).
	DocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsum_documents_total",
			Help: "Total number of documents processed, by status",
		},
		[]string{"status"},
	)

	// StageDuration measures each pipeline stage (preprocess, build, rank, filter, generate, validate).
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustsum_stage_duration_seconds",
			Help:    "Duration of summarization pipeline stages in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		},
		[]string{"stage"},
	)

	// RankIterations records how many solver iterations each ranking needed.
	RankIterations = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "trustsum_rank_iterations",
			Help:    "Power iterations run per ranking",
			Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
		},
		[]string{"algorithm"},
	)

	// RankNotConverged counts rankings that hit the iteration cap.
	RankNotConverged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsum_rank_not_converged_total",
			Help: "Rankings that stopped at the iteration cap before reaching the threshold",
		},
		[]string{"algorithm"},
	)

	// CacheLookups counts artifact cache lookups by result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trustsum_cache_lookups_total",
			Help: "Bigram graph cache lookups by result",
		},
		[]string{"result"},
	)

	// GraphNodes tracks the size of the graphs being ranked.
	GraphNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trustsum_graph_nodes",
			Help:    "Number of bigram nodes per document graph",
			Buckets: prometheus.ExponentialBuckets(4, 4, 8),
		},
	)

	// Candidates tracks how many candidate summaries each document produced.
	Candidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "trustsum_candidates",
			Help:    "Number of candidate summaries per document",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)
)
