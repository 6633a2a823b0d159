package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docorchestrator"

var (
	documentsAnalyzed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_analyzed_total",
			Help:      "Documents analyzed by file type and recommended service",
		},
		[]string{"file_type", "service"},
	)

	complexityScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "complexity_score",
			Help:      "Distribution of document complexity scores",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	analysisLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of complexity analysis",
			Buckets:   prometheus.DefBuckets,
		},
	)

	analysisFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_fallbacks_total",
			Help:      "Analyses that degraded to the conservative default",
		},
	)

	routerReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "router_requests_total",
			Help:      "Downstream requests by service and result",
		},
		[]string{"service", "result"},
	)

	routerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "router_request_duration_seconds",
			Help:      "Duration of downstream requests by service",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service"},
	)

	breakerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_events_total",
			Help:      "Circuit breaker state transitions by service and new state",
		},
		[]string{"service", "state"},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "result_cache_lookups_total",
			Help:      "Result cache lookups by outcome (hit, miss, error)",
		},
		[]string{"outcome"},
	)

	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	initOnce sync.Once
)

// Init registers collectors with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(documentsAnalyzed, complexityScore, analysisLatency, analysisFallbacks,
			routerReqs, routerLatency, breakerEvents, cacheLookups, httpReqs)
	})
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveAnalysis(fileType, service string, score int, degraded bool, dur time.Duration) {
	documentsAnalyzed.WithLabelValues(fileType, service).Inc()
	complexityScore.Observe(float64(score))
	analysisLatency.Observe(dur.Seconds())
	if degraded {
		analysisFallbacks.Inc()
	}
}

func ObserveRoute(service, result string, dur time.Duration) {
	routerReqs.WithLabelValues(service, result).Inc()
	routerLatency.WithLabelValues(service).Observe(dur.Seconds())
}

func BreakerTransition(service, state string) { breakerEvents.WithLabelValues(service, state).Inc() }

func CacheLookup(outcome string) { cacheLookups.WithLabelValues(outcome).Inc() }

func ObserveHTTP(route string, code int) { httpReqs.WithLabelValues(route, strconv.Itoa(code)).Inc() }
