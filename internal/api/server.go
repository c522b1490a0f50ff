package api

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/JakeFAU/trend-briefing-portal/internal/metrics"
	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

// Crawler runs one crawl for a keyword.
type Crawler interface {
	NormalizeKeyword(keyword string) string
	Crawl(ctx context.Context, keyword string) (portal.CrawlResult, error)
}

// TokenGenerator mints opaque session tokens.
type TokenGenerator interface {
	NewToken() (string, error)
}

// ReadinessCheck reports whether a downstream dependency is usable.
type ReadinessCheck func(ctx context.Context) error

// Deps are the collaborators the server needs. History, Blobs and Publisher
// are optional; a nil value disables that crawl side effect.
type Deps struct {
	Sessions  portal.SessionStore
	Verifier  portal.CredentialVerifier
	Crawler   Crawler
	Catalog   *portal.Catalog
	Tokens    TokenGenerator
	IDs       portal.IDGenerator
	Clock     portal.Clock
	History   portal.HistoryStore
	Blobs     portal.BlobStore
	Publisher portal.Publisher
	Ready     map[string]ReadinessCheck
}

// Options carry the HTTP-facing settings.
type Options struct {
	CookieName      string
	CookieSecure    bool
	HistoryPageSize int
	ArchivePrefix   string
	Topic           string
}

// Server wires HTTP handlers to the session gate, crawl bridge and catalog.
type Server struct {
	router chi.Router
	deps   Deps
	opts   Options
	pages  *template.Template
	logger *zap.Logger
}

// NewServer constructs a Server with middleware and routes.
func NewServer(deps Deps, opts Options, logger *zap.Logger) (*Server, error) {
	if deps.Sessions == nil || deps.Verifier == nil || deps.Crawler == nil {
		return nil, errors.New("sessions, verifier and crawler are required")
	}
	if deps.Tokens == nil || deps.IDs == nil || deps.Clock == nil {
		return nil, errors.New("token generator, id generator and clock are required")
	}
	if deps.Catalog == nil {
		deps.Catalog = portal.NewCatalog()
	}
	if opts.CookieName == "" {
		opts.CookieName = "portal_session"
	}
	if opts.HistoryPageSize <= 0 {
		opts.HistoryPageSize = 20
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	s := &Server{
		deps:   deps,
		opts:   opts,
		pages:  pages,
		logger: logger,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(logger))
	r.Use(recoverMiddleware(logger))
	r.Use(metrics.Middleware)

	r.Get("/healthz", s.healthz)
	r.Get("/readyz", s.readyz)
	r.Handle("/metrics", metrics.Handler())

	r.Get("/", s.index)
	r.Get("/login", s.loginPage)
	r.Post("/login", s.login)
	r.Get("/logout", s.logout)

	r.Group(func(r chi.Router) {
		r.Use(s.requirePageSession)
		r.Get("/dashboard", s.dashboard)
		r.Get("/video/{id}", s.video)
		r.Get("/admin", s.admin)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireAPISession)
		r.Post("/change-character", s.changeCharacter)
		r.Get("/progress", s.progress)
		r.Post("/crawl", s.crawl)
		r.Get("/crawl-status", s.crawlStatus)
		r.Get("/search-history", s.searchHistory)
	})

	s.router = r
	return s, nil
}

// Handler returns the Router for use with http.Server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	failures := map[string]string{}
	for name, check := range s.deps.Ready {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}
	if len(failures) > 0 {
		s.logger.Warn("readiness check failed", zap.Any("failures", failures))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "unavailable", "failures": failures})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
