// Package firecrawl calls the Firecrawl scrape endpoint with a structured
// extraction schema and maps the result onto portal articles.
package firecrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

const (
	// DefaultBaseURL is the hosted Firecrawl API.
	DefaultBaseURL = "https://api.firecrawl.dev"

	scrapePath     = "/v1/scrape"
	maxErrorBody   = 2048
	maxSuccessBody = 8 << 20
)

// ErrResponseTooLarge is returned when a scrape response exceeds the read limit.
var ErrResponseTooLarge = errors.New("firecrawl response too large")

// Config captures the parameters required to reach Firecrawl.
type Config struct {
	BaseURL string
	APIKey  string
	// PageTimeout is forwarded as the service-side scrape timeout.
	PageTimeout time.Duration
}

// Client implements portal.Extractor against the Firecrawl HTTP API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeoutMs  int64
	maxBody    int64
	logger     *zap.Logger
}

// New creates a Client. httpClient may be nil to use a default client.
func New(cfg Config, httpClient *http.Client, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("firecrawl api key is required")
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		apiKey:     cfg.APIKey,
		timeoutMs:  cfg.PageTimeout.Milliseconds(),
		maxBody:    maxSuccessBody,
		logger:     logger,
	}, nil
}

type scrapeRequest struct {
	URL     string        `json:"url"`
	Formats []string      `json:"formats"`
	Extract extractOption `json:"extract"`
	Timeout int64         `json:"timeout,omitempty"`
}

type extractOption struct {
	Schema map[string]any `json:"schema"`
}

type scrapeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Extract json.RawMessage `json:"extract"`
	} `json:"data"`
}

// Extract scrapes req.URL and returns the extracted articles. Transport
// errors, non-2xx responses, and responses flagged unsuccessful are errors.
// A missing or undecodable extract payload returns (nil, nil).
func (c *Client) Extract(ctx context.Context, req portal.ExtractRequest) (*portal.Extraction, error) {
	body, err := json.Marshal(scrapeRequest{
		URL:     req.URL,
		Formats: []string{"extract"},
		Extract: extractOption{Schema: req.Schema},
		Timeout: c.timeoutMs,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal scrape request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+scrapePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build scrape request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("firecrawl request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Warn("close firecrawl response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("firecrawl returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read firecrawl response: %w", err)
	}
	if int64(len(raw)) > c.maxBody {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBody)
	}
	var decoded scrapeResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		c.logger.Warn("firecrawl response not decodable", zap.Error(err))
		return nil, nil
	}
	if !decoded.Success {
		msg := decoded.Error
		if msg == "" {
			msg = "unsuccessful scrape"
		}
		return nil, fmt.Errorf("firecrawl: %s", msg)
	}
	return decodeExtract(decoded.Data.Extract, c.logger), nil
}

func decodeExtract(raw json.RawMessage, logger *zap.Logger) *portal.Extraction {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var extraction portal.Extraction
	if err := json.Unmarshal(raw, &extraction); err != nil {
		logger.Warn("extract payload malformed", zap.Error(err))
		return nil
	}
	kept := extraction.Articles[:0]
	for _, a := range extraction.Articles {
		if strings.TrimSpace(a.Title) == "" && strings.TrimSpace(a.URL) == "" {
			continue
		}
		kept = append(kept, a)
	}
	extraction.Articles = kept
	return &extraction
}
