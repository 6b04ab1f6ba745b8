package postgresql

import (
	"context"
	"fmt"
	"sync"

	"github.com/cmlabs-hris/timesheet-go/internal/pkg/database"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryLocker holds session-level pg advisory locks. The lock and unlock of
// one key must run on the same connection, so each held key pins a pool
// connection until Unlock.
type AdvisoryLocker struct {
	db    *database.DB
	mu    sync.Mutex
	conns map[int64]*pgxpool.Conn
}

func NewAdvisoryLocker(db *database.DB) *AdvisoryLocker {
	return &AdvisoryLocker{db: db, conns: make(map[int64]*pgxpool.Conn)}
}

// TryLock reports whether the lock for key was acquired.
func (l *AdvisoryLocker) TryLock(ctx context.Context, key int64) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, held := l.conns[key]; held {
		return false, nil
	}
	conn, err := l.db.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	var ok bool
	if err := conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&ok); err != nil {
		conn.Release()
		return false, err
	}
	if !ok {
		conn.Release()
		return false, nil
	}
	l.conns[key] = conn
	return true, nil
}

func (l *AdvisoryLocker) Unlock(ctx context.Context, key int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	conn, held := l.conns[key]
	if !held {
		return nil
	}
	delete(l.conns, key)
	defer conn.Release()
	_, err := conn.Exec(ctx, `SELECT pg_advisory_unlock($1)`, key)
	return err
}
