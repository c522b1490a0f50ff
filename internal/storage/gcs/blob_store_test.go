package gcs_test

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/JakeFAU/trend-briefing-portal/internal/storage/gcs"
)

func newTestStore(t *testing.T, handler http.Handler) *gcs.BlobStore {
	t.Helper()
	return newTestStoreWithConfig(t, handler, gcs.Config{Bucket: "briefings"})
}

func newTestStoreWithConfig(t *testing.T, handler http.Handler, cfg gcs.Config) *gcs.BlobStore {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := storage.NewClient(context.Background(), option.WithEndpoint(server.URL), option.WithoutAuthentication())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	store, err := gcs.New(client, cfg)
	require.NoError(t, err)
	return store
}

func TestNewValidation(t *testing.T) {
	_, err := gcs.New(nil, gcs.Config{Bucket: "b"})
	require.Error(t, err)

	client, err := storage.NewClient(context.Background(), option.WithoutAuthentication())
	require.NoError(t, err)
	defer client.Close()
	_, err = gcs.New(client, gcs.Config{Bucket: " "})
	require.Error(t, err)
}

func TestPutObjectUploads(t *testing.T) {
	objectName := "crawls/2025/03/07/abc.json"
	payload := []byte(`{"keyword":"AI"}`)

	store := newTestStoreWithConfig(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/upload/storage/v1/b/briefings/o")
		assert.Equal(t, objectName, r.URL.Query().Get("name"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), string(payload))
		assert.Contains(t, string(body), "application/json")
		assert.Contains(t, string(body), `"archive-id":"abc"`)
		assert.Contains(t, string(body), `"cacheControl":"no-cache"`)

		fmt.Fprintln(w, `{"name":"`+objectName+`","bucket":"briefings"}`)
	}), gcs.Config{Bucket: "briefings", CacheControl: "no-cache"})

	uri, err := store.PutObject(context.Background(), objectName, "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	require.Equal(t, "gs://briefings/"+objectName, uri)
}

func TestPutObjectServerError(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))

	_, err := store.PutObject(context.Background(), "x.json", "application/json", bytes.NewReader([]byte("{}")))
	require.Error(t, err)
}

func TestPutObjectEmptyPath(t *testing.T) {
	store := newTestStore(t, http.NotFoundHandler())
	_, err := store.PutObject(context.Background(), "", "", bytes.NewReader(nil))
	require.Error(t, err)
}

func TestPutObjectDefaultsContentTypeAndTrimsSlash(t *testing.T) {
	store := newTestStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "crawls/x.json", r.URL.Query().Get("name"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.Contains(t, string(body), `"contentType":"application/json"`)
		fmt.Fprintln(w, `{"name":"crawls/x.json","bucket":"briefings"}`)
	}))

	uri, err := store.PutObject(context.Background(), "/crawls/x.json", "", bytes.NewReader([]byte("{}")))
	require.NoError(t, err)
	require.Equal(t, "gs://briefings/crawls/x.json", uri)
}
