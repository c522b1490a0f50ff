// Package headless renders search pages in headless Chrome before extracting
// articles, for result pages that only populate via JavaScript.
package headless

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/extract/htmlparse"
	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// ErrInvalidConfig is returned when the extractor configuration is unusable.
var ErrInvalidConfig = errors.New("headless: invalid config")

// Config controls the behavior of the headless extractor.
type Config struct {
	MaxParallel       int
	UserAgent         string
	NavigationTimeout time.Duration
	Headers           http.Header
}

// Extractor implements portal.Extractor using chromedp.
type Extractor struct {
	cfg         Config
	limiter     chan struct{}
	allocator   context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
}

// New creates a headless extractor. Chrome is started lazily on first use.
func New(cfg Config, logger *zap.Logger) (*Extractor, error) {
	if cfg.MaxParallel < 0 {
		return nil, fmt.Errorf("%w: max parallel must be >= 0", ErrInvalidConfig)
	}
	if cfg.NavigationTimeout <= 0 {
		cfg.NavigationTimeout = 45 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var limiter chan struct{}
	if cfg.MaxParallel > 0 {
		limiter = make(chan struct{}, cfg.MaxParallel)
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", "new"),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("enable-automation", false),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Extractor{
		cfg:         cfg,
		limiter:     limiter,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
	}, nil
}

// Close shuts the browser down.
func (e *Extractor) Close() {
	e.allocCancel()
}

// Extract renders req.URL and parses the resulting DOM.
func (e *Extractor) Extract(ctx context.Context, req portal.ExtractRequest) (*portal.Extraction, error) {
	if err := e.acquire(ctx); err != nil {
		return nil, err
	}
	defer e.release()

	taskCtx, taskCancel := chromedp.NewContext(e.allocator)
	defer taskCancel()
	taskCtx, cancel := context.WithTimeout(taskCtx, e.cfg.NavigationTimeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	status := &documentStatus{}
	chromedp.ListenTarget(taskCtx, status.captureEvent)

	html, finalURL, err := e.render(taskCtx, req.URL)
	if err != nil {
		return nil, err
	}
	if code := status.get(); code >= http.StatusBadRequest {
		return nil, fmt.Errorf("headless navigation returned status %d", code)
	}
	if finalURL == "" {
		finalURL = req.URL
	}
	articles, err := parseRendered(html, finalURL)
	if err != nil {
		e.logger.Warn("rendered page not parseable", zap.String("url", finalURL), zap.Error(err))
		return nil, nil
	}
	return &portal.Extraction{Articles: articles}, nil
}

func (e *Extractor) render(ctx context.Context, target string) (string, string, error) {
	var (
		html     string
		finalURL string
	)
	actions := []chromedp.Action{
		e.networkSetupAction(),
		chromedp.Navigate(target),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(500 * time.Millisecond),
		chromedp.Location(&finalURL),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(ctx, actions...); err != nil {
		return "", "", fmt.Errorf("chromedp run: %w", err)
	}
	return html, finalURL, nil
}

func (e *Extractor) networkSetupAction() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if err := network.Enable().Do(ctx); err != nil {
			return fmt.Errorf("enable network domain: %w", err)
		}
		if e.cfg.UserAgent != "" {
			if err := emulation.SetUserAgentOverride(e.cfg.UserAgent).Do(ctx); err != nil {
				return fmt.Errorf("set user-agent: %w", err)
			}
		}
		if len(e.cfg.Headers) > 0 {
			if err := network.SetExtraHTTPHeaders(toNetworkHeaders(e.cfg.Headers)).Do(ctx); err != nil {
				return fmt.Errorf("set extra headers: %w", err)
			}
		}
		return nil
	})
}

func (e *Extractor) acquire(ctx context.Context) error {
	if e.limiter == nil {
		return nil
	}
	select {
	case e.limiter <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("headless slot wait canceled: %w", ctx.Err())
	}
}

func (e *Extractor) release() {
	if e.limiter == nil {
		return
	}
	select {
	case <-e.limiter:
	default:
	}
}

func parseRendered(html, pageURL string) ([]portal.Article, error) {
	if strings.TrimSpace(html) == "" {
		return nil, errors.New("empty document")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}
	return htmlparse.Parse([]byte(withoutScripts(doc)), pageURL)
}

// withoutScripts serializes doc minus script, style and noscript nodes.
func withoutScripts(doc *goquery.Document) string {
	doc.Find("script, style, noscript").Remove()
	out, err := doc.Html()
	if err != nil {
		return ""
	}
	return out
}

// documentStatus remembers the HTTP status of the top-level document.
type documentStatus struct {
	mu     sync.Mutex
	status int
}

func (d *documentStatus) captureEvent(ev any) {
	resp, ok := ev.(*network.EventResponseReceived)
	if !ok || resp.Type != network.ResourceTypeDocument || resp.Response == nil {
		return
	}
	d.mu.Lock()
	if d.status == 0 {
		d.status = int(resp.Response.Status)
	}
	d.mu.Unlock()
}

func (d *documentStatus) get() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.status
}

func toNetworkHeaders(h http.Header) network.Headers {
	headers := network.Headers{}
	for key, values := range h {
		if len(values) == 0 {
			continue
		}
		if len(values) == 1 {
			headers[key] = values[0]
		} else {
			headers[key] = append([]string(nil), values...)
		}
	}
	return headers
}
