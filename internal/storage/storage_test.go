package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/trend-briefing-portal/internal/storage"
	"github.com/JakeFAU/trend-briefing-portal/internal/storage/local"
	"github.com/JakeFAU/trend-briefing-portal/internal/storage/memory"
)

func TestObjectPath(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, time.March, 7, 23, 30, 0, 0, time.FixedZone("KST", 9*60*60))
	cases := []struct {
		name   string
		prefix string
		want   string
	}{
		{name: "plain", prefix: "crawls", want: "crawls/2025/03/07/abc.json"},
		{name: "slashes trimmed", prefix: "/crawls/", want: "crawls/2025/03/07/abc.json"},
		{name: "no prefix", prefix: "", want: "2025/03/07/abc.json"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, storage.ObjectPath(tc.prefix, at, "abc"))
		})
	}
}

func TestOpenBackends(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	store, closeFn, err := storage.Open(ctx, storage.Config{Backend: "none"})
	require.NoError(t, err)
	require.Nil(t, store)
	require.NoError(t, closeFn())

	store, _, err = storage.Open(ctx, storage.Config{Backend: "memory"})
	require.NoError(t, err)
	require.IsType(t, &memory.BlobStore{}, store)

	store, _, err = storage.Open(ctx, storage.Config{Backend: "local", BaseDir: t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &local.BlobStore{}, store)

	_, _, err = storage.Open(ctx, storage.Config{Backend: "local"})
	require.Error(t, err)

	_, _, err = storage.Open(ctx, storage.Config{Backend: "s3"})
	require.ErrorContains(t, err, "unknown storage backend")
}
