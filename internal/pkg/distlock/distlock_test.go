package distlock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestRedisLock_Exclusive(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	a := NewRedisLock(client, "newsletter:n1", time.Minute)
	b := NewRedisLock(client, "newsletter:n1", time.Minute)

	ok, err := a.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	// b does not own the key, so its release is a no-op.
	require.NoError(t, b.Release(ctx))
	ok, _ = b.Acquire(ctx)
	assert.False(t, ok)

	require.NoError(t, a.Release(ctx))
	ok, err = b.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_Extend(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	l := NewRedisLock(client, "k", time.Second)
	ok, err := l.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Extend(ctx, time.Hour))
	assert.Greater(t, mr.TTL("lock:k"), time.Minute)

	mr.Del("lock:k")
	assert.Error(t, l.Extend(ctx, time.Hour))
}

func TestFactory_WithLock(t *testing.T) {
	client, _ := setupTestRedis(t)
	f := NewFactory(client, nil, time.Minute)
	ctx := context.Background()

	err := f.WithLock(ctx, "job", func(ctx context.Context) error {
		inner := f.WithLock(ctx, "job", func(context.Context) error { return nil })
		assert.ErrorIs(t, inner, ErrNotAcquired)
		return nil
	})
	require.NoError(t, err)

	want := errors.New("boom")
	err = f.WithLock(ctx, "job", func(context.Context) error { return want })
	assert.ErrorIs(t, err, want, "lock must be free again after the first call")
}

func TestFactory_WithLockKeepsLockAlive(t *testing.T) {
	client, mr := setupTestRedis(t)
	f := NewFactory(client, nil, 90*time.Millisecond)

	err := f.WithLock(context.Background(), "job", func(ctx context.Context) error {
		// Simulate the TTL running down; the heartbeat must restore it.
		mr.SetTTL("lock:job", time.Millisecond)
		require.Eventually(t, func() bool {
			return mr.TTL("lock:job") > 10*time.Millisecond
		}, 2*time.Second, 5*time.Millisecond)
		return nil
	})
	require.NoError(t, err)
	assert.False(t, mr.Exists("lock:job"), "lock released after fn returns")
}

func TestPGAdvisoryLock_AcquireRelease(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	l := NewPGAdvisoryLock(db, "newsletter:n1")

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WithArgs(l.lockID).
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(true))
	mock.ExpectExec("SELECT pg_advisory_unlock").
		WithArgs(l.lockID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := l.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, l.Release(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPGAdvisoryLock_Busy(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT pg_try_advisory_lock").
		WillReturnRows(sqlmock.NewRows([]string{"pg_try_advisory_lock"}).AddRow(false))

	f := NewFactory(nil, db, time.Minute)
	called := false
	err = f.WithLock(context.Background(), "newsletter:n1", func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.False(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}
