package redisinfra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*SessionStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewSessionStore(rdb, 7*24*time.Hour), mr
}

func TestSessionStore_CreateAndGetRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "acc-1", "10.0.0.1:4242")
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Len(t, sess.SessionToken, 64)
	assert.Equal(t, "acc-1", sess.AccountID)

	got, err := store.Get(ctx, "acc-1", sess.SessionToken)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sess.SessionToken, got.SessionToken)
	assert.Equal(t, "10.0.0.1:4242", got.IP)
}

func TestSessionStore_CreateSetsTTLOnBothKeys(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "acc-1", "ip")
	require.NoError(t, err)

	assert.Greater(t, mr.TTL(sessionKey("acc-1")), time.Duration(0))
	assert.Greater(t, mr.TTL(reverseKey(sess.SessionToken)), time.Duration(0))
}

func TestSessionStore_MultipleLoginsAccumulate(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Create(ctx, "acc-1", "ip-1")
	require.NoError(t, err)
	second, err := store.Create(ctx, "acc-1", "ip-2")
	require.NoError(t, err)
	assert.NotEqual(t, first.SessionToken, second.SessionToken)

	// The earlier session stays valid after the newer login.
	got, err := store.Get(ctx, "acc-1", first.SessionToken)
	require.NoError(t, err)
	assert.NotNil(t, got)

	sessions, err := store.ListByAccount(ctx, "acc-1")
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessionStore_GetMissIsNilNil(t *testing.T) {
	store, _ := newTestStore(t)

	got, err := store.Get(context.Background(), "acc-1", "no-such-token")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_GetCorruptPayloadIsNilNil(t *testing.T) {
	store, mr := newTestStore(t)

	mr.HSet(sessionKey("acc-1"), "tok", "{not json")
	got, err := store.Get(context.Background(), "acc-1", "tok")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSessionStore_ResolveAccount(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "acc-1", "ip")
	require.NoError(t, err)

	accountID, err := store.ResolveAccount(ctx, sess.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "acc-1", accountID)

	accountID, err = store.ResolveAccount(ctx, "unknown")
	require.NoError(t, err)
	assert.Equal(t, "", accountID)
}

func TestSessionStore_DestroyRemovesBothEntriesAndIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "acc-1", "ip")
	require.NoError(t, err)

	require.NoError(t, store.Destroy(ctx, sess.SessionToken))

	got, err := store.Get(ctx, "acc-1", sess.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, got)
	accountID, err := store.ResolveAccount(ctx, sess.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "", accountID)

	// Second destroy of the same token is not an error.
	require.NoError(t, store.Destroy(ctx, sess.SessionToken))
}

func TestSessionStore_ExpiryMakesSessionUnresolvable(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	sess, err := store.Create(ctx, "acc-1", "ip")
	require.NoError(t, err)

	mr.FastForward(7*24*time.Hour + time.Second)

	accountID, err := store.ResolveAccount(ctx, sess.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "", accountID)
	got, err := store.Get(ctx, "acc-1", sess.SessionToken)
	require.NoError(t, err)
	assert.Nil(t, got)
}
