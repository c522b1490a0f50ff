package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/api"
	"github.com/JakeFAU/trend-briefing-portal/internal/auth"
	"github.com/JakeFAU/trend-briefing-portal/internal/clock/system"
	"github.com/JakeFAU/trend-briefing-portal/internal/config"
	"github.com/JakeFAU/trend-briefing-portal/internal/crawl"
	"github.com/JakeFAU/trend-briefing-portal/internal/extract/collyext"
	"github.com/JakeFAU/trend-briefing-portal/internal/extract/firecrawl"
	"github.com/JakeFAU/trend-briefing-portal/internal/extract/headless"
	historymemory "github.com/JakeFAU/trend-briefing-portal/internal/history/memory"
	historypostgres "github.com/JakeFAU/trend-briefing-portal/internal/history/postgres"
	"github.com/JakeFAU/trend-briefing-portal/internal/id/uuid"
	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
	publishermemory "github.com/JakeFAU/trend-briefing-portal/internal/publisher/memory"
	publisherpubsub "github.com/JakeFAU/trend-briefing-portal/internal/publisher/pubsub"
	sessionmemory "github.com/JakeFAU/trend-briefing-portal/internal/session/memory"
	sessionredis "github.com/JakeFAU/trend-briefing-portal/internal/session/redis"
	"github.com/JakeFAU/trend-briefing-portal/internal/storage"
	"github.com/JakeFAU/trend-briefing-portal/internal/telemetry"
)

const serviceName = "trend-briefing-portal"

// app holds the wired services shared by the subcommands.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	bridge  *crawl.Bridge
	server  *api.Server
	closers []func() error
}

// buildApp wires every backend selected by cfg. On error, anything already
// opened is closed.
func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (_ *app, err error) {
	a := &app{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()
	ready := map[string]api.ReadinessCheck{}

	tp, err := telemetry.InitTracerProvider(ctx, serviceName)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error {
		return tp.Shutdown(context.WithoutCancel(ctx))
	})

	sessions, err := a.buildSessions(ready)
	if err != nil {
		return nil, err
	}
	verifier, err := auth.NewStaticVerifier(auth.Account{
		SubjectID:    cfg.Auth.EmployeeID,
		Password:     cfg.Auth.Password,
		PasswordHash: cfg.Auth.PasswordHash,
		DisplayName:  cfg.Auth.DisplayName,
		Department:   cfg.Auth.Department,
	})
	if err != nil {
		return nil, fmt.Errorf("init verifier: %w", err)
	}

	extractor, err := a.buildExtractor()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Crawl.Location()
	if err != nil {
		return nil, err
	}
	var limiter *crawl.Limiter
	if cfg.Crawl.RatePerSecond > 0 {
		limiter = crawl.NewLimiter(crawl.LimiterConfig{RPS: cfg.Crawl.RatePerSecond, Burst: cfg.Crawl.Burst})
	}
	clock := system.New()
	a.bridge, err = crawl.NewBridge(extractor, clock, limiter, crawl.Config{
		SearchURLTemplate: cfg.Crawl.SearchURLTemplate,
		DefaultKeyword:    cfg.Crawl.DefaultKeyword,
		MaxArticles:       cfg.Crawl.MaxArticles,
		Timeout:           cfg.Crawl.Timeout(),
		Location:          loc,
	}, logger.Named("crawl"))
	if err != nil {
		return nil, fmt.Errorf("init crawl bridge: %w", err)
	}

	blobs, closeBlobs, err := storage.Open(ctx, storage.Config{
		Backend:      cfg.Storage.Backend,
		Prefix:       cfg.Storage.Prefix,
		BaseDir:      cfg.Storage.BaseDir,
		Bucket:       cfg.Storage.GCSBucket,
		CacheControl: cfg.Storage.GCSCacheControl,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	a.closers = append(a.closers, closeBlobs)

	publisher, err := a.buildPublisher(ctx)
	if err != nil {
		return nil, err
	}
	history, err := a.buildHistory(ctx, ready)
	if err != nil {
		return nil, err
	}

	ids := uuid.New()
	a.server, err = api.NewServer(api.Deps{
		Sessions:  sessions,
		Verifier:  verifier,
		Crawler:   a.bridge,
		Catalog:   portal.NewCatalog(),
		Tokens:    ids,
		IDs:       ids,
		Clock:     clock,
		History:   history,
		Blobs:     blobs,
		Publisher: publisher,
		Ready:     ready,
	}, api.Options{
		CookieName:      cfg.Session.CookieName,
		CookieSecure:    cfg.Session.CookieSecure,
		HistoryPageSize: cfg.History.PageSize,
		ArchivePrefix:   cfg.Storage.Prefix,
		Topic:           cfg.PubSub.TopicName,
	}, logger.Named("api"))
	if err != nil {
		return nil, fmt.Errorf("init api server: %w", err)
	}

	logger.Info("application services initialized",
		zap.String("session_backend", cfg.Session.Backend),
		zap.String("extractor", cfg.Crawl.Extractor),
		zap.String("storage_backend", cfg.Storage.Backend),
		zap.String("pubsub_backend", cfg.PubSub.Backend),
		zap.String("history_backend", cfg.History.Backend),
	)
	return a, nil
}

// Close releases backends in reverse order of construction.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("close backend", zap.Error(err))
		}
	}
	a.closers = nil
}

func (a *app) buildSessions(ready map[string]api.ReadinessCheck) (portal.SessionStore, error) {
	switch a.cfg.Session.Backend {
	case "redis":
		rcfg := sessionredis.Config{
			Address:   a.cfg.Session.Redis.Address,
			Password:  a.cfg.Session.Redis.Password,
			DB:        a.cfg.Session.Redis.DB,
			KeyPrefix: a.cfg.Session.Redis.KeyPrefix,
			TTL:       a.cfg.Session.Redis.TTL(),
		}
		client, err := sessionredis.NewClient(rcfg)
		if err != nil {
			return nil, fmt.Errorf("init redis sessions: %w", err)
		}
		store, err := sessionredis.NewStore(client, rcfg)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("init redis sessions: %w", err)
		}
		a.closers = append(a.closers, store.Close)
		ready["redis"] = func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}
		return store, nil
	default:
		return sessionmemory.NewStore(), nil
	}
}

// buildExtractor picks the crawl backend. A Firecrawl backend without an API
// key still starts; its crawls fail until a key is configured.
func (a *app) buildExtractor() (portal.Extractor, error) {
	logger := a.logger.Named("extractor")
	switch a.cfg.Crawl.Extractor {
	case "colly":
		headers := http.Header{}
		if a.cfg.Collector.AcceptLanguage != "" {
			headers.Set("Accept-Language", a.cfg.Collector.AcceptLanguage)
		}
		return collyext.New(collyext.Config{
			UserAgent:     a.cfg.Collector.UserAgent,
			RespectRobots: a.cfg.Collector.RespectRobots,
			Timeout:       time.Duration(a.cfg.Collector.TimeoutSeconds) * time.Second,
			Headers:       headers,
		}, logger), nil
	case "headless":
		headers := http.Header{}
		if a.cfg.Collector.AcceptLanguage != "" {
			headers.Set("Accept-Language", a.cfg.Collector.AcceptLanguage)
		}
		ext, err := headless.New(headless.Config{
			MaxParallel:       a.cfg.Headless.MaxParallel,
			UserAgent:         a.cfg.Headless.UserAgent,
			NavigationTimeout: time.Duration(a.cfg.Headless.NavTimeoutSec) * time.Second,
			Headers:           headers,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("init headless extractor: %w", err)
		}
		a.closers = append(a.closers, func() error {
			ext.Close()
			return nil
		})
		return ext, nil
	default:
		client, err := firecrawl.New(firecrawl.Config{
			BaseURL:     a.cfg.Firecrawl.BaseURL,
			APIKey:      a.cfg.Firecrawl.APIKey,
			PageTimeout: time.Duration(a.cfg.Firecrawl.PageTimeoutSeconds) * time.Second,
		}, &http.Client{}, logger)
		if err != nil {
			logger.Warn("firecrawl extractor unavailable; crawls will fail", zap.Error(err))
			return crawl.Unavailable(err), nil
		}
		return client, nil
	}
}

func (a *app) buildPublisher(ctx context.Context) (portal.Publisher, error) {
	switch a.cfg.PubSub.Backend {
	case "memory":
		return publishermemory.New(), nil
	case "gcp":
		pub, err := publisherpubsub.Dial(ctx, a.cfg.PubSub.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("init pubsub publisher: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		return pub, nil
	default:
		return nil, nil
	}
}

func (a *app) buildHistory(ctx context.Context, ready map[string]api.ReadinessCheck) (portal.HistoryStore, error) {
	switch a.cfg.History.Backend {
	case "memory":
		return historymemory.NewStore(), nil
	case "postgres":
		store, err := historypostgres.New(ctx, historypostgres.Config{
			DSN:             a.cfg.DB.DSN,
			Table:           a.cfg.DB.Table,
			MaxConns:        a.cfg.DB.MaxConns,
			MinConns:        a.cfg.DB.MinConns,
			MaxConnLifetime: time.Duration(a.cfg.DB.MaxConnLifetimeMinutes) * time.Minute,
		})
		if err != nil {
			return nil, fmt.Errorf("init search history: %w", err)
		}
		a.closers = append(a.closers, func() error {
			store.Close()
			return nil
		})
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure search history schema: %w", err)
		}
		ready["postgres"] = store.Ping
		return store, nil
	default:
		return nil, nil
	}
}
