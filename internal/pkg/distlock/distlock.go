// Package distlock guards work that must not run twice at once across
// server replicas, such as sending a given newsletter.
package distlock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/assoc-admin/internal/pkg/logger"
)

var log = logger.Named("distlock")

// ErrNotAcquired is returned by WithLock when another holder owns the lock.
var ErrNotAcquired = errors.New("lock held by another process")

// DistLock is the interface for distributed locking.
// A lock instance belongs to one goroutine; create one per critical section.
type DistLock interface {
	// Acquire tries to acquire the lock without blocking. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// Factory builds locks by key. It prefers Redis and falls back to
// PostgreSQL advisory locks when no Redis client is configured.
type Factory struct {
	redis *redis.Client
	db    *sql.DB
	ttl   time.Duration
}

// NewFactory returns a Factory. redisClient may be nil.
func NewFactory(redisClient *redis.Client, db *sql.DB, ttl time.Duration) *Factory {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Factory{redis: redisClient, db: db, ttl: ttl}
}

// NewLock creates a lock for key using the best available backend.
func (f *Factory) NewLock(key string) DistLock {
	if f.redis != nil {
		return NewRedisLock(f.redis, key, f.ttl)
	}
	return NewPGAdvisoryLock(f.db, key)
}

// WithLock runs fn while holding the lock for key. If the lock is taken it
// returns ErrNotAcquired without calling fn.
func (f *Factory) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	lock := f.NewLock(key)
	ok, err := lock.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire %s: %w", key, err)
	}
	if !ok {
		return ErrNotAcquired
	}
	defer func() {
		// Release on a fresh context so a canceled request still unlocks.
		relCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = lock.Release(relCtx)
	}()

	if ext, ok := lock.(extender); ok {
		stop := f.heartbeat(key, ext)
		defer stop()
	}
	return fn(ctx)
}

// extender is a lock whose TTL can be pushed out while it is held.
type extender interface {
	Extend(ctx context.Context, ttl time.Duration) error
}

// heartbeat extends the lock every ttl/3 until the returned func is called,
// so work that outlives the TTL keeps its lock.
func (f *Factory) heartbeat(key string, l extender) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(f.ttl / 3)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				err := l.Extend(ctx, f.ttl)
				cancel()
				if err != nil {
					log.Warn("lock extend failed", "key", key, "error", err)
				}
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// =============================================================================
// PostgreSQL Advisory Lock (fallback when Redis is unavailable)
// =============================================================================
// pg_try_advisory_lock is session-scoped, so the lock pins one pooled
// connection from Acquire until Release and unlocks on that same session.

// PGAdvisoryLock implements DistLock using PostgreSQL advisory locks.
type PGAdvisoryLock struct {
	db     *sql.DB
	conn   *sql.Conn
	lockID int64
}

// NewPGAdvisoryLock creates a PG advisory lock with a deterministic lock ID
// derived from the given key string.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire tries to acquire the advisory lock. Returns true if successful.
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("advisory lock conn: %w", err)
	}
	var acquired bool
	if err := conn.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired); err != nil {
		conn.Close()
		return false, err
	}
	if !acquired {
		conn.Close()
		return false, nil
	}
	l.conn = conn
	return true, nil
}

// Release releases the advisory lock and returns the pinned connection.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	if l.conn == nil {
		return nil
	}
	_, err := l.conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	l.conn.Close()
	l.conn = nil
	return err
}
