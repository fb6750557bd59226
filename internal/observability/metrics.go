package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// PFZ prediction service.
type Metrics struct {
	Predictions        prometheus.Counter
	PredictionDuration prometheus.Histogram
	StageFailures      *prometheus.CounterVec // labels: stage={habitat,front,eddy,weather}
	GridCellFailures   prometheus.Counter
	AlertsPublished    prometheus.Counter

	// Upstream data source metrics.
	FetchRequests  *prometheus.CounterVec   // labels: source={sst,chla,ssh,weather,typhoon}, outcome={success,error}
	FetchDuration  *prometheus.HistogramVec // labels: source
	SatelliteCache *prometheus.CounterVec   // labels: field={sst,chla,ssh}, result={hit,miss}
	TyphoonEnabled prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		Predictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pfz_engine",
			Name:      "predictions_total",
			Help:      "Total point predictions computed.",
		}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "pfz_engine",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of a complete point prediction including data fetches.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pfz_engine",
			Name:      "stage_failures_total",
			Help:      "Prediction stages degraded to their fallback score.",
		}, []string{"stage"}),
		GridCellFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pfz_engine",
			Name:      "grid_cell_failures_total",
			Help:      "Grid sweep cells recorded as unusable placeholders.",
		}),
		AlertsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pfz_engine",
			Name:      "alerts_published_total",
			Help:      "High-score prediction alerts written to the sink topic.",
		}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pfz_engine",
			Name:      "fetch_requests_total",
			Help:      "Upstream data fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pfz_engine",
			Name:      "fetch_duration_seconds",
			Help:      "Upstream data fetch duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"source"}),
		SatelliteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pfz_engine",
			Name:      "satellite_cache_total",
			Help:      "Satellite sample cache lookups by field and result.",
		}, []string{"field", "result"}),
		TyphoonEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pfz_engine",
			Name:      "typhoon_feed_enabled",
			Help:      "1 when the typhoon feed is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.Predictions,
		m.PredictionDuration,
		m.StageFailures,
		m.GridCellFailures,
		m.AlertsPublished,
		m.FetchRequests,
		m.FetchDuration,
		m.SatelliteCache,
		m.TyphoonEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Predictions:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "pfz_engine", Name: "predictions_total"}),
		PredictionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "pfz_engine", Name: "prediction_duration_seconds"}),
		StageFailures:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pfz_engine", Name: "stage_failures_total"}, []string{"stage"}),
		GridCellFailures:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "pfz_engine", Name: "grid_cell_failures_total"}),
		AlertsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "pfz_engine", Name: "alerts_published_total"}),
		FetchRequests:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pfz_engine", Name: "fetch_requests_total"}, []string{"source", "outcome"}),
		FetchDuration:      prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: "pfz_engine", Name: "fetch_duration_seconds"}, []string{"source"}),
		SatelliteCache:     prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "pfz_engine", Name: "satellite_cache_total"}, []string{"field", "result"}),
		TyphoonEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "pfz_engine", Name: "typhoon_feed_enabled"}),
	}
}
