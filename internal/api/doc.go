// Package api hosts the HTTP server, middleware, pages and JSON handlers of
// the briefing portal. Notable routes:
//   - GET/POST /login, GET /logout for the session lifecycle.
//   - GET /dashboard, /video/{id}, /admin as session-gated pages.
//   - POST /api/crawl for an ad-hoc news crawl through the crawl bridge.
//   - GET /api/progress, /api/crawl-status, /api/search-history.
//   - GET /healthz, /readyz for probes and /metrics for Prometheus.
package api
