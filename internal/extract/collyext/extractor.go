// Package collyext fetches search-result pages with Colly and extracts
// articles locally, without a hosted extraction service.
package collyext

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/extract/htmlparse"
	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// Config controls collector behavior.
type Config struct {
	UserAgent     string
	RespectRobots bool
	Timeout       time.Duration
	Headers       http.Header
}

// Extractor implements portal.Extractor using the Colly collector.
type Extractor struct {
	cfg           Config
	baseCollector *colly.Collector
	logger        *zap.Logger
}

type collectorHooks interface {
	OnRequest(colly.RequestCallback)
	OnResponse(colly.ResponseCallback)
	OnError(colly.ErrorCallback)
}

type page struct {
	url  string
	body []byte
}

// New builds an Extractor.
func New(cfg Config, logger *zap.Logger) *Extractor {
	c := colly.NewCollector(colly.Async(false), colly.AllowURLRevisit())
	c.WithTransport(newHTTPTransport())
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{
		cfg:           cfg,
		baseCollector: c,
		logger:        logger,
	}
}

// Extract fetches req.URL and parses articles out of the returned HTML. The
// schema is implied by the parser; an unparseable page yields (nil, nil).
func (e *Extractor) Extract(ctx context.Context, req portal.ExtractRequest) (*portal.Extraction, error) {
	var (
		result   page
		fetchErr error
	)
	collector := e.buildCollector()
	e.configureCollectorHooks(collector, &result, &fetchErr)

	if err := runCollector(ctx, collector, req.URL, &fetchErr); err != nil {
		return nil, err
	}
	if result.url == "" {
		result.url = req.URL
	}
	articles, err := htmlparse.Parse(result.body, result.url)
	if err != nil {
		e.logger.Warn("search page not parseable", zap.String("url", result.url), zap.Error(err))
		return nil, nil
	}
	return &portal.Extraction{Articles: articles}, nil
}

func (e *Extractor) buildCollector() *colly.Collector {
	collector := e.baseCollector.Clone()
	if e.cfg.UserAgent != "" {
		collector.UserAgent = e.cfg.UserAgent
	}
	collector.IgnoreRobotsTxt = !e.cfg.RespectRobots
	timeout := e.cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collector.SetRequestTimeout(timeout)
	return collector
}

func (e *Extractor) configureCollectorHooks(hooks collectorHooks, result *page, fetchErr *error) {
	hooks.OnRequest(func(r *colly.Request) {
		for key, values := range e.cfg.Headers {
			for _, v := range values {
				r.Headers.Add(key, v)
			}
		}
	})

	hooks.OnResponse(func(r *colly.Response) {
		*result = page{
			url:  r.Request.URL.String(),
			body: append([]byte(nil), r.Body...),
		}
	})

	hooks.OnError(func(r *colly.Response, err error) {
		if r != nil && r.StatusCode != 0 {
			*fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
			return
		}
		*fetchErr = err
	})
}

func runCollector(ctx context.Context, collector *colly.Collector, url string, fetchErr *error) error {
	done := make(chan error, 1)
	go func() {
		done <- collector.Visit(url)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("colly fetch canceled: %w", ctx.Err())
	case err := <-done:
		if err != nil {
			return fmt.Errorf("colly visit failed: %w", err)
		}
		if *fetchErr != nil {
			return fmt.Errorf("colly response failed: %w", *fetchErr)
		}
		return nil
	}
}

func newHTTPTransport() *http.Transport {
	return &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
	}
}
