// Package metrics exposes Prometheus collectors for the portal.
package metrics

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Crawl outcome label values.
const (
	OutcomeExtracted = "extracted"
	OutcomeFallback  = "fallback"
	OutcomeError     = "error"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	crawlRequestsTotal         *prometheus.CounterVec
	crawlDurationSeconds       prometheus.Histogram
	crawlArticlesReturned      prometheus.Histogram
	loginAttemptsTotal         *prometheus.CounterVec
	rateLimitDelaysSeconds     *prometheus.HistogramVec
	httpRequestsInFlight       prometheus.Gauge
	sessionRejectionsTotal     *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		crawlRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_crawl_requests_total",
				Help: "Total number of crawl bridge invocations, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		crawlDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portal_crawl_duration_seconds",
				Help:    "Histogram of crawl bridge latencies including the external extraction call.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		)

		crawlArticlesReturned = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "portal_crawl_articles",
				Help:    "Number of articles returned per crawl.",
				Buckets: []float64{0, 1, 3, 5, 10},
			},
		)

		loginAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_login_attempts_total",
				Help: "Total number of login attempts, labeled by result.",
			},
			[]string{"result"},
		)

		rateLimitDelaysSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "portal_crawl_rate_limit_delays_seconds",
				Help:    "Histogram of outbound crawl rate limit wait durations.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"domain"},
		)

		httpRequestsInFlight = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being served.",
			},
		)

		sessionRejectionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_session_rejections_total",
				Help: "Requests turned away by the session gate, labeled by surface (page or api).",
			},
			[]string{"surface"},
		)
	})
}

// SanitizeSite sanitizes a URL to extract a lowercase hostname.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveCrawl records one crawl bridge invocation.
func ObserveCrawl(outcome string, articles int, duration time.Duration) {
	Init()
	crawlRequestsTotal.WithLabelValues(outcome).Inc()
	crawlDurationSeconds.Observe(duration.Seconds())
	if outcome != OutcomeError {
		crawlArticlesReturned.Observe(float64(articles))
	}
}

// ObserveLogin increments the login counter; result is "success" or "failure".
func ObserveLogin(result string) {
	Init()
	loginAttemptsTotal.WithLabelValues(result).Inc()
}

// ObserveSessionRejection counts a gated request without a live session.
// surface is "page" for redirects to the login page and "api" for 401s.
func ObserveSessionRejection(surface string) {
	Init()
	sessionRejectionsTotal.WithLabelValues(surface).Inc()
}

// ObserveRateLimitDelay records the duration of a rate limit wait.
func ObserveRateLimitDelay(domain string, duration time.Duration) {
	Init()
	rateLimitDelaysSeconds.WithLabelValues(domain).Observe(duration.Seconds())
}
