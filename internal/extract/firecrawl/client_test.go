package firecrawl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

func newServer(t *testing.T, status int, body string, inspect func(*http.Request, []byte)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		if inspect != nil {
			inspect(r, payload)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(Config{BaseURL: baseURL, APIKey: "fc-test", PageTimeout: 30 * time.Second}, nil, zap.NewNop())
	require.NoError(t, err)
	return c
}

func TestExtractSendsSchemaAndDecodesArticles(t *testing.T) {
	t.Parallel()

	body := `{"success":true,"data":{"extract":{"articles":[
		{"title":"6G 표준화","summary":"s","url":"https://a.example/1","source":"A","date":"2024-01-01"},
		{"title":"","summary":"","url":"","source":"","date":""}
	]}}}`
	schema := map[string]any{"type": "object"}
	srv := newServer(t, http.StatusOK, body, func(r *http.Request, payload []byte) {
		require.Equal(t, "/v1/scrape", r.URL.Path)
		require.Equal(t, "Bearer fc-test", r.Header.Get("Authorization"))
		var req map[string]any
		require.NoError(t, json.Unmarshal(payload, &req))
		require.Equal(t, "https://www.google.com/search?q=6G&tbm=nws", req["url"])
		require.Equal(t, []any{"extract"}, req["formats"])
		require.Equal(t, map[string]any{"schema": map[string]any{"type": "object"}}, req["extract"])
		require.EqualValues(t, 30000, req["timeout"])
	})

	got, err := newClient(t, srv.URL).Extract(context.Background(), portal.ExtractRequest{
		URL:    "https://www.google.com/search?q=6G&tbm=nws",
		Schema: schema,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Articles, 1)
	require.Equal(t, "6G 표준화", got.Articles[0].Title)
}

func TestExtractMissingPayloadIsAbsent(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"no extract":        `{"success":true,"data":{}}`,
		"null extract":      `{"success":true,"data":{"extract":null}}`,
		"malformed extract": `{"success":true,"data":{"extract":{"articles":"nope"}}}`,
		"not json":          `<html>oops</html>`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			srv := newServer(t, http.StatusOK, body, nil)
			got, err := newClient(t, srv.URL).Extract(context.Background(), portal.ExtractRequest{URL: "https://x"})
			require.NoError(t, err)
			require.Nil(t, got)
		})
	}
}

func TestExtractFailures(t *testing.T) {
	t.Parallel()

	t.Run("non-2xx", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, http.StatusPaymentRequired, `{"error":"Insufficient credits"}`, nil)
		_, err := newClient(t, srv.URL).Extract(context.Background(), portal.ExtractRequest{URL: "https://x"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "402")
		require.Contains(t, err.Error(), "Insufficient credits")
	})

	t.Run("unsuccessful", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, http.StatusOK, `{"success":false,"error":"blocked"}`, nil)
		_, err := newClient(t, srv.URL).Extract(context.Background(), portal.ExtractRequest{URL: "https://x"})
		require.ErrorContains(t, err, "blocked")
	})

	t.Run("transport", func(t *testing.T) {
		t.Parallel()
		srv := newServer(t, http.StatusOK, `{}`, nil)
		c := newClient(t, srv.URL)
		srv.Close()
		_, err := c.Extract(context.Background(), portal.ExtractRequest{URL: "https://x"})
		require.Error(t, err)
	})
}

func TestNewRequiresAPIKey(t *testing.T) {
	t.Parallel()

	_, err := New(Config{}, nil, nil)
	require.Error(t, err)

	c, err := New(Config{APIKey: "k", BaseURL: "https://fc.example/"}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "https://fc.example", c.baseURL)
}

func TestExtractRejectsOversizedResponse(t *testing.T) {
	t.Parallel()

	body := `{"success":true,"data":{"extract":{"articles":[{"title":"6G 표준화","url":"https://a.example/1"}]}}}`
	srv := newServer(t, http.StatusOK, body, nil)

	c := newClient(t, srv.URL)
	c.maxBody = int64(len(body)) - 1
	got, err := c.Extract(context.Background(), portal.ExtractRequest{URL: "https://www.google.com/search?q=6G&tbm=nws"})
	require.ErrorIs(t, err, ErrResponseTooLarge)
	require.Nil(t, got)

	c.maxBody = int64(len(body))
	got, err = c.Extract(context.Background(), portal.ExtractRequest{URL: "https://www.google.com/search?q=6G&tbm=nws"})
	require.NoError(t, err)
	require.Len(t, got.Articles, 1)
}
