package dialog_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/pxc1984/musicclubbot/core/dialog"
)

func newRedisStore(t *testing.T) *dialog.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return dialog.NewRedisStore(client)
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	engine, err := dialog.NewEngine(store, wizardDef())
	require.NoError(t, err)

	_, err = engine.Start(ctx, testUser, "wizard", "", nil)
	require.NoError(t, err)
	_, err = engine.HandleEvent(ctx, testUser, dialog.TextEvent("Stevie"))
	require.NoError(t, err)

	loaded, err := store.Load(ctx, testUser)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Depth())
	require.Equal(t, "wizard", loaded.Top().Dialog)
	require.Equal(t, "confirm", loaded.Top().State)
	name, _ := loaded.Top().Data.String("name")
	require.Equal(t, "Stevie", name)
}

func TestRedisStoreMissingKeyIsEmptySession(t *testing.T) {
	store := newRedisStore(t)

	sess, err := store.Load(context.Background(), 404)
	require.NoError(t, err)
	require.Equal(t, 0, sess.Depth())
	require.Nil(t, sess.Top())
}

func TestRedisStoreDelete(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	sess := dialog.NewSession()
	require.NoError(t, store.Save(ctx, testUser, sess))
	require.NoError(t, store.Delete(ctx, testUser))
	// Deleting a missing key is not an error.
	require.NoError(t, store.Delete(ctx, testUser))
}

func TestRedisStoreUsersAreIsolated(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	engine, err := dialog.NewEngine(store, wizardDef())
	require.NoError(t, err)
	_, err = engine.Start(ctx, 1, "wizard", "", nil)
	require.NoError(t, err)

	other, err := store.Load(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 0, other.Depth())
}
