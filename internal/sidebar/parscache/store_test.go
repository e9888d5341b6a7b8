package parscache

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chime-sidebar/internal/common/errors"
)

const blob = `{"population":3600000,"n_days":100}`

func newMiniredisStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, time.Hour), mr
}

func TestKey_IsContentAddressed(t *testing.T) {
	assert.Equal(t, Key(blob), Key(blob))
	assert.NotEqual(t, Key(blob), Key(blob+" "))
	assert.Len(t, Key(blob), len(KeyPrefix)+64)
}

func TestStore_PutGet(t *testing.T) {
	store, mr := newMiniredisStore(t)
	ctx := context.Background()

	key, err := store.Put(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, Key(blob), key)
	assert.Equal(t, time.Hour, mr.TTL(key))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, blob, got)

	bare, err := store.Get(ctx, key[len(KeyPrefix):])
	require.NoError(t, err)
	assert.Equal(t, blob, bare)
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newMiniredisStore(t)
	_, err := store.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_Expiry(t *testing.T) {
	store, mr := newMiniredisStore(t)
	key, err := store.Put(context.Background(), blob)
	require.NoError(t, err)

	mr.FastForward(2 * time.Hour)

	_, err = store.Get(context.Background(), key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RedisFailure(t *testing.T) {
	db, mock := redismock.NewClientMock()
	store := New(db, time.Minute)

	mock.ExpectSet(Key(blob), blob, time.Minute).SetErr(stderrors.New("connection refused"))
	_, err := store.Put(context.Background(), blob)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeCacheUnavailable))

	mock.ExpectGet(Key(blob)).SetErr(stderrors.New("connection refused"))
	_, err = store.Get(context.Background(), Key(blob))
	assert.True(t, errors.HasCode(err, errors.ErrCodeCacheUnavailable))

	mock.ExpectPing().SetErr(stderrors.New("connection refused"))
	assert.Error(t, store.Ping(context.Background()))

	assert.NoError(t, mock.ExpectationsWereMet())
}
