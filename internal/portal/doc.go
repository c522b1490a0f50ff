// Package portal defines the core types and collaborator interfaces shared by
// the briefing portal: sessions, credential checks, crawl results, extractor
// backends, and the optional archive/notification/history sinks that hang off
// a crawl.
package portal
