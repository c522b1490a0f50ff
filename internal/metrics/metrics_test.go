package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"firecrawl", "https://api.firecrawl.dev/v1/scrape", "api.firecrawl.dev"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestInitIdempotent(t *testing.T) {
	Init()
	Init()

	if httpRequestsTotal == nil || crawlRequestsTotal == nil || loginAttemptsTotal == nil {
		t.Fatal("Init() did not initialize metrics collectors")
	}
}

func TestObserveCrawl(t *testing.T) {
	before := testutil.ToFloat64(crawlRequestsTotalFor(OutcomeFallback))
	ObserveCrawl(OutcomeFallback, 3, 20*time.Millisecond)
	ObserveCrawl(OutcomeError, 0, time.Second)

	if got := testutil.ToFloat64(crawlRequestsTotalFor(OutcomeFallback)); got != before+1 {
		t.Errorf("expected fallback counter %v, got %v", before+1, got)
	}
	if got := testutil.CollectAndCount(crawlDurationSeconds); got != 1 {
		t.Errorf("expected one duration histogram, got %d", got)
	}
}

func TestObserveLogin(t *testing.T) {
	ObserveLogin("failure")
	if got := testutil.ToFloat64(loginAttemptsTotal.WithLabelValues("failure")); got < 1 {
		t.Errorf("expected failure counter >= 1, got %v", got)
	}
}

func crawlRequestsTotalFor(outcome string) prometheus.Counter {
	Init()
	return crawlRequestsTotal.WithLabelValues(outcome)
}
