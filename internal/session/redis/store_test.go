package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/trend-briefing-portal/internal/portal"
)

func newTestStore(t *testing.T, cfg Config) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	store, err := NewStore(client, cfg)
	require.NoError(t, err)
	return store, mr
}

func TestStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, Config{})
	ctx := context.Background()
	sess := portal.Session{
		Token:     "tok-1",
		Identity:  portal.Identity{SubjectID: "2024001", DisplayName: "김전파", Department: "전파기술팀"},
		Character: "귀여운 라마",
		CreatedAt: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, store.Set(ctx, sess))
	require.True(t, mr.Exists("portal:session:tok-1"))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.Equal(t, sess, got)

	require.NoError(t, store.Clear(ctx, "tok-1"))
	_, err = store.Get(ctx, "tok-1")
	require.ErrorIs(t, err, portal.ErrSessionNotFound)
}

func TestStoreAppliesTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, Config{KeyPrefix: "s:", TTL: time.Minute})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, portal.Session{Token: "tok"}))
	require.Equal(t, time.Minute, mr.TTL("s:tok"))

	mr.FastForward(2 * time.Minute)
	_, err := store.Get(ctx, "tok")
	require.ErrorIs(t, err, portal.ErrSessionNotFound)
}

func TestSessionsVisibleAcrossStores(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	ctx := context.Background()

	first := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer first.Close()
	a, err := NewStore(first, Config{})
	require.NoError(t, err)
	require.NoError(t, a.Set(ctx, portal.Session{Token: "shared"}))

	second := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer second.Close()
	b, err := NewStore(second, Config{})
	require.NoError(t, err)
	_, err = b.Get(ctx, "shared")
	require.NoError(t, err)
}

func TestStoreGetCorruptPayload(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, Config{})
	require.NoError(t, mr.Set("portal:session:bad", "{not json"))
	_, err := store.Get(context.Background(), "bad")
	require.Error(t, err)
	require.NotErrorIs(t, err, portal.ErrSessionNotFound)
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	_, err := NewClient(Config{})
	require.ErrorIs(t, err, ErrEmptyAddress)

	mr := miniredis.RunT(t)
	client, err := NewClient(Config{Address: mr.Addr()})
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestStoreUpdateKeepsTTL(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, Config{TTL: time.Hour})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, portal.Session{Token: "tok", Identity: portal.Identity{SubjectID: "2024001"}}))
	mr.FastForward(10 * time.Minute)

	require.NoError(t, store.Update(ctx, "tok", func(s *portal.Session) {
		s.Character = "친절한 아나운서"
	}))
	got, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	require.Equal(t, "친절한 아나운서", got.Character)
	require.Equal(t, "2024001", got.Identity.SubjectID)
	require.Equal(t, 50*time.Minute, mr.TTL("portal:session:tok"))
}

func TestStoreUpdateDoesNotRecreateClearedSession(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, Config{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, portal.Session{Token: "tok"}))
	require.NoError(t, store.Clear(ctx, "tok"))

	err := store.Update(ctx, "tok", func(s *portal.Session) { s.Character = "x" })
	require.ErrorIs(t, err, portal.ErrSessionNotFound)
	require.False(t, mr.Exists("portal:session:tok"))
}

func TestStoreUpdateLosesRaceToClear(t *testing.T) {
	t.Parallel()

	store, mr := newTestStore(t, Config{})
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, portal.Session{Token: "tok"}))

	// The key disappears between the read and the write.
	err := store.Update(ctx, "tok", func(s *portal.Session) {
		mr.Del("portal:session:tok")
		s.Character = "x"
	})
	require.ErrorIs(t, err, portal.ErrSessionNotFound)
	require.False(t, mr.Exists("portal:session:tok"))
}
