// Package gcs archives crawl results to Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
)

const defaultContentType = "application/json"

// Config selects the bucket and the cache policy for archived crawls.
type Config struct {
	Bucket string
	// CacheControl is set on every archive object; empty leaves the bucket default.
	CacheControl string
}

// BlobStore writes crawl archives to one bucket.
type BlobStore struct {
	client       *storage.Client
	bucket       string
	cacheControl string
}

// New creates a GCS-backed archive. Authentication follows Application
// Default Credentials on the supplied client.
func New(client *storage.Client, cfg Config) (*BlobStore, error) {
	if client == nil {
		return nil, errors.New("storage client is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("bucket name is required")
	}
	return &BlobStore{
		client:       client,
		bucket:       bucket,
		cacheControl: cfg.CacheControl,
	}, nil
}

// PutObject uploads one archive in a single request and returns its gs:// URI.
// The object carries the archive id (the file name without extension) as
// metadata so archives can be matched to search history rows.
func (s *BlobStore) PutObject(ctx context.Context, objectPath string, contentType string, r io.Reader) (string, error) {
	objectPath = strings.TrimLeft(strings.TrimSpace(objectPath), "/")
	if objectPath == "" {
		return "", errors.New("path is required")
	}
	if contentType == "" {
		contentType = defaultContentType
	}

	w := s.client.Bucket(s.bucket).Object(objectPath).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = s.cacheControl
	w.Metadata = map[string]string{"archive-id": archiveID(objectPath)}
	// Archives are a few KB; skip the resumable session.
	w.ChunkSize = 0

	if _, err := io.Copy(w, r); err != nil {
		return "", errors.Join(fmt.Errorf("upload archive %s: %w", objectPath, err), w.Close())
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("finish archive %s: %w", objectPath, err)
	}
	return fmt.Sprintf("gs://%s/%s", s.bucket, objectPath), nil
}

func archiveID(objectPath string) string {
	base := path.Base(objectPath)
	return strings.TrimSuffix(base, path.Ext(base))
}
