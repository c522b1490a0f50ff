package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

func TestStoreSetGetClear(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	sess := portal.Session{
		Token:     "tok-1",
		Identity:  portal.Identity{SubjectID: "2024001", DisplayName: "김전파"},
		CreatedAt: time.Unix(10, 0).UTC(),
	}
	require.NoError(t, store.Set(ctx, sess))
	require.Equal(t, 1, store.Len())

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, sess, got)

	require.NoError(t, store.Clear(ctx, "tok-1"))
	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, portal.ErrSessionNotFound)
}

func TestStoreSetRequiresToken(t *testing.T) {
	t.Parallel()

	require.Error(t, NewStore().Set(context.Background(), portal.Session{}))
}

func TestStoreClearUnknownToken(t *testing.T) {
	t.Parallel()

	require.NoError(t, NewStore().Clear(context.Background(), "missing"))
}

func TestStoreUpdate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Set(ctx, portal.Session{Token: "tok-1", Identity: portal.Identity{SubjectID: "2024001"}}))

	require.NoError(t, store.Update(ctx, "tok-1", func(s *portal.Session) {
		s.Character = "전파 연구원"
		s.Token = "ignored"
	}))
	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, "전파 연구원", got.Character)
	require.Equal(t, "tok-1", got.Token)
	require.Equal(t, 1, store.Len())
}

func TestStoreUpdateDoesNotRecreateClearedSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Set(ctx, portal.Session{Token: "tok-1"}))
	require.NoError(t, store.Clear(ctx, "tok-1"))

	called := false
	err := store.Update(ctx, "tok-1", func(*portal.Session) { called = true })
	require.ErrorIs(t, err, portal.ErrSessionNotFound)
	require.False(t, called)
	require.Zero(t, store.Len())
}
