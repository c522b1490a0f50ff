// Package main hosts the portal entrypoint.
//
// Architecture overview:
//   - HTTP: internal/api.Server serves the login gate, the session-gated pages
//     (/dashboard, /video/{id}, /admin) and the JSON APIs under /api. Pages
//     redirect to /login without a session; APIs answer 401.
//   - Sessions: an opaque token cookie maps to a server-held record kept in
//     memory or in Redis (session.backend).
//   - Crawl bridge: internal/crawl builds a news search URL from the keyword and
//     asks the configured extractor (Firecrawl, Colly or headless Chrome) for
//     articles. Empty extractions become three placeholder articles; backend
//     failures surface as 500s.
//   - Side effects: each crawl is recorded in search history (memory or
//     Postgres), archived to the blob store (memory, local disk or GCS) and
//     announced on Pub/Sub when those backends are enabled. Their failures are
//     logged and never change the crawl response.
//   - Plumbing: Viper loads config from defaults, an optional file and PORTAL_*
//     env vars (plus PORT, FIRECRAWL_API_KEY and DATABASE_URL). zap provides
//     structured logging; Prometheus metrics are exported on /metrics.
//
// Quick checklist:
//   - Run locally: go run ./cmd/portal serve (optionally --config portal.yaml).
//   - One-off crawl: go run ./cmd/portal crawl 6G
//   - Cloud Run: the server listens on PORT and drains on SIGTERM.
package main
