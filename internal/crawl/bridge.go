// Package crawl implements the crawl bridge: it turns a keyword into a
// search-engine URL, asks an external scrape+extract backend for articles,
// and substitutes placeholder articles when extraction yields nothing.
package crawl

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/metrics"
	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

const (
	// DefaultKeyword is used when a request carries no keyword.
	DefaultKeyword = "ai"
	// DefaultSearchURLTemplate is a news search whose single %s receives the
	// query-escaped keyword.
	DefaultSearchURLTemplate = "https://www.google.com/search?q=%s&tbm=nws"
	// DefaultMaxArticles caps the extracted article list.
	DefaultMaxArticles = 10

	crawlTimeLayout = "2006-01-02 15:04:05"
)

// ErrExternalService marks failures of the extraction backend.
var ErrExternalService = errors.New("external extraction service failure")

// Config controls bridge behavior.
type Config struct {
	SearchURLTemplate string
	DefaultKeyword    string
	MaxArticles       int
	// Timeout bounds the extraction call; zero leaves it unbounded.
	Timeout  time.Duration
	Location *time.Location
}

// Bridge forwards crawl requests to an Extractor.
type Bridge struct {
	extractor portal.Extractor
	clock     portal.Clock
	limiter   *Limiter
	cfg       Config
	logger    *zap.Logger
}

// NewBridge wires the bridge. limiter may be nil.
func NewBridge(
	extractor portal.Extractor,
	clock portal.Clock,
	limiter *Limiter,
	cfg Config,
	logger *zap.Logger,
) (*Bridge, error) {
	if extractor == nil {
		return nil, errors.New("extractor is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if cfg.SearchURLTemplate == "" {
		cfg.SearchURLTemplate = DefaultSearchURLTemplate
	}
	if strings.Count(cfg.SearchURLTemplate, "%s") != 1 {
		return nil, fmt.Errorf("search url template must contain exactly one %%s: %q", cfg.SearchURLTemplate)
	}
	if cfg.DefaultKeyword == "" {
		cfg.DefaultKeyword = DefaultKeyword
	}
	if cfg.MaxArticles <= 0 {
		cfg.MaxArticles = DefaultMaxArticles
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bridge{
		extractor: extractor,
		clock:     clock,
		limiter:   limiter,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// NormalizeKeyword trims keyword and applies the default when it is empty.
func (b *Bridge) NormalizeKeyword(keyword string) string {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return b.cfg.DefaultKeyword
	}
	return keyword
}

// SearchURL embeds the query-escaped keyword into the search template.
func (b *Bridge) SearchURL(keyword string) string {
	return fmt.Sprintf(b.cfg.SearchURLTemplate, url.QueryEscape(keyword))
}

// Crawl runs one extraction for keyword. Empty or unusable extractions yield
// placeholder articles and no error; extractor failures yield an error
// wrapping ErrExternalService and no articles.
func (b *Bridge) Crawl(ctx context.Context, keyword string) (portal.CrawlResult, error) {
	start := time.Now()
	keyword = b.NormalizeKeyword(keyword)
	target := b.SearchURL(keyword)
	logger := b.logger.With(zap.String("keyword", keyword), zap.String("url", target))

	extraction, err := b.extract(ctx, target)
	if err != nil {
		metrics.ObserveCrawl(metrics.OutcomeError, 0, time.Since(start))
		logger.Warn("extraction failed", zap.Error(err))
		return portal.CrawlResult{}, fmt.Errorf("%w: %w", ErrExternalService, err)
	}

	now := b.clock.Now().In(b.cfg.Location)
	result := portal.CrawlResult{Keyword: keyword, CrawlTime: now.Format(crawlTimeLayout)}
	if extraction == nil || len(extraction.Articles) == 0 {
		result.Articles = Placeholders(keyword, now)
		result.Fallback = true
	} else {
		articles := extraction.Articles
		if len(articles) > b.cfg.MaxArticles {
			articles = articles[:b.cfg.MaxArticles]
		}
		result.Articles = append([]portal.Article(nil), articles...)
	}
	result.TotalCount = len(result.Articles)

	outcome := metrics.OutcomeExtracted
	if result.Fallback {
		outcome = metrics.OutcomeFallback
	}
	metrics.ObserveCrawl(outcome, result.TotalCount, time.Since(start))
	logger.Info("crawl finished",
		zap.String("outcome", outcome),
		zap.Int("articles", result.TotalCount),
		zap.Duration("duration", time.Since(start)),
	)
	return result, nil
}

func (b *Bridge) extract(ctx context.Context, target string) (*portal.Extraction, error) {
	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, target); err != nil {
			return nil, err
		}
	}
	extraction, err := b.extractor.Extract(ctx, portal.ExtractRequest{URL: target, Schema: ArticleSchema()})
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", target, err)
	}
	return extraction, nil
}
