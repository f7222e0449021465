package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "hospital_coverage"

// Metrics holds the Prometheus counters and histograms for coverage analysis.
type Metrics struct {
	Analyses          *prometheus.CounterVec // labels: outcome={success,query_failure,invalid_point,no_results}
	AnalysisDuration  prometheus.Histogram
	FacilitiesFound   prometheus.Histogram
	CoverageLevels    *prometheus.CounterVec // labels: level={low,moderate,good}
	StaleResults      prometheus.Counter
	POIQueries        *prometheus.CounterVec // labels: outcome={success,error}
	POIQueryDuration  prometheus.Histogram
	POIRateLimitWaits prometheus.Histogram

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec // labels: result={hit,miss}
	GeocodeAPIDuration prometheus.Histogram

	EventsPublished *prometheus.CounterVec // labels: outcome={success,error}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsWithRegistry creates all metrics and registers them with reg.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.Analyses,
		m.AnalysisDuration,
		m.FacilitiesFound,
		m.CoverageLevels,
		m.StaleResults,
		m.POIQueries,
		m.POIQueryDuration,
		m.POIRateLimitWaits,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.EventsPublished,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Coverage analyses by outcome.",
		}, []string{"outcome"}),
		AnalysisDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of a complete analysis including the POI query.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		FacilitiesFound: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "facilities_found",
			Help:      "Facilities counted within the search radius per analysis.",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		CoverageLevels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coverage_level_total",
			Help:      "Successful analyses by derived coverage level.",
		}, []string{"level"}),
		StaleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stale_results_discarded_total",
			Help:      "Analyses that finished after a newer one had been applied.",
		}),
		POIQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poi_queries_total",
			Help:      "Overpass queries by outcome.",
		}, []string{"outcome"}),
		POIQueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poi_query_duration_seconds",
			Help:      "Overpass API request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		POIRateLimitWaits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "poi_rate_limit_wait_seconds",
			Help:      "Time spent waiting for the Overpass rate limiter.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by outcome.",
		}, []string{"outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by result.",
		}, []string{"result"}),
		GeocodeAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Nominatim API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Analysis events written to Kafka by outcome.",
		}, []string{"outcome"}),
	}
}
