// Package metrics defines the Prometheus collectors for the recommendation server
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	RecommendationsTotal  *prometheus.CounterVec
	RecommendLatency      prometheus.Histogram
	RecommendResultsCount prometheus.Histogram
	CorpusBuildsTotal     *prometheus.CounterVec
	CorpusDocuments       prometheus.Gauge
	VocabularySize        prometheus.Gauge
}

// New creates all collectors and registers them on a fresh registry, so several
// instances can coexist (one per server, one per test).
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suisen_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "suisen_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),
		RecommendationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suisen_recommendations_total",
				Help: "Total recommendation queries by outcome (match, zero_match, error).",
			},
			[]string{"outcome"},
		),
		RecommendLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suisen_recommend_latency_seconds",
				Help:    "Recommendation query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
		),
		RecommendResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suisen_recommend_results_count",
				Help:    "Number of results returned per recommendation query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
			},
		),
		CorpusBuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suisen_corpus_builds_total",
				Help: "Total corpus index builds by status.",
			},
			[]string{"status"},
		),
		CorpusDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "suisen_corpus_documents",
				Help: "Number of documents in the active corpus.",
			},
		),
		VocabularySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "suisen_vocabulary_size",
				Help: "Number of distinct terms in the active corpus.",
			},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RecommendationsTotal,
		m.RecommendLatency,
		m.RecommendResultsCount,
		m.CorpusBuildsTotal,
		m.CorpusDocuments,
		m.VocabularySize,
	)
	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRecommendation records one served query.
func (m *Metrics) ObserveRecommendation(d time.Duration, results int, topScore float64) {
	outcome := "match"
	if topScore == 0 {
		outcome = "zero_match"
	}
	m.RecommendationsTotal.WithLabelValues(outcome).Inc()
	m.RecommendLatency.Observe(d.Seconds())
	m.RecommendResultsCount.Observe(float64(results))
}

// ObserveRecommendationError records a failed query.
func (m *Metrics) ObserveRecommendationError() {
	m.RecommendationsTotal.WithLabelValues("error").Inc()
}

// ObserveCorpusBuild records a build attempt and, on success, the new corpus size.
func (m *Metrics) ObserveCorpusBuild(err error, documents, vocabulary int) {
	if err != nil {
		m.CorpusBuildsTotal.WithLabelValues("error").Inc()
		return
	}
	m.CorpusBuildsTotal.WithLabelValues("ok").Inc()
	m.CorpusDocuments.Set(float64(documents))
	m.VocabularySize.Set(float64(vocabulary))
}

// ObserveHTTP records one HTTP request.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
