// Package storage selects the blob store that archives crawl results and
// lays out the object paths they are written under.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	gcsclient "cloud.google.com/go/storage"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
	"github.com/JakeFAU/trend-briefing-portal/internal/storage/gcs"
	"github.com/JakeFAU/trend-briefing-portal/internal/storage/local"
	"github.com/JakeFAU/trend-briefing-portal/internal/storage/memory"
)

// Backend names accepted in configuration.
const (
	BackendNone   = "none"
	BackendMemory = "memory"
	BackendLocal  = "local"
	BackendGCS    = "gcs"
)

// Config selects and configures a backend.
type Config struct {
	Backend      string
	Prefix       string
	BaseDir      string
	Bucket       string
	// CacheControl applies to GCS objects only.
	CacheControl string
}

// Open builds the configured blob store. A nil store with a nil error means
// archiving is disabled. The returned close func is never nil.
func Open(ctx context.Context, cfg Config) (portal.BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(cfg.Backend)) {
	case "", BackendNone:
		return nil, noop, nil
	case BackendMemory:
		return memory.NewBlobStore(), noop, nil
	case BackendLocal:
		store, err := local.New(local.Config{BaseDir: cfg.BaseDir})
		if err != nil {
			return nil, noop, fmt.Errorf("local blob store: %w", err)
		}
		return store, noop, nil
	case BackendGCS:
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("create gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.Bucket, CacheControl: cfg.CacheControl})
		if err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("gcs blob store: %w", err)
		}
		return store, client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// ObjectPath returns {prefix}/{yyyy}/{mm}/{dd}/{id}.json in UTC.
func ObjectPath(prefix string, at time.Time, id string) string {
	at = at.UTC()
	return path.Join(
		strings.Trim(prefix, "/"),
		at.Format("2006"),
		at.Format("01"),
		at.Format("02"),
		id+".json",
	)
}
