package memory

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStorePutObject(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	uri, err := store.PutObject(context.Background(), "crawls/2025/01/02/id.json", "application/json", bytes.NewReader([]byte(`{"ok":true}`)))
	require.NoError(t, err)
	require.Equal(t, "memory://crawls/2025/01/02/id.json", uri)

	got, ok := store.Object("crawls/2025/01/02/id.json")
	require.True(t, ok)
	require.JSONEq(t, `{"ok":true}`, string(got))
	got[0] = 'X'
	again, _ := store.Object("crawls/2025/01/02/id.json")
	require.Equal(t, byte('{'), again[0])
	require.Equal(t, []string{"crawls/2025/01/02/id.json"}, store.Paths())

	_, ok = store.Object("missing")
	require.False(t, ok)
}

func TestBlobStoreRejectsEmptyPath(t *testing.T) {
	t.Parallel()

	_, err := NewBlobStore().PutObject(context.Background(), "", "", bytes.NewReader(nil))
	require.Error(t, err)
}
