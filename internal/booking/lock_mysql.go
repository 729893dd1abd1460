package booking

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sync"
	"time"
)

// MySQLLocker implements Locker with GET_LOCK.  Named locks belong to a
// session, so each lock pins one pooled connection until it is released.
// MySQL drops the lock by itself if that session dies.
type MySQLLocker struct {
	db     *sql.DB
	prefix string
	wait   time.Duration
}

// NewMySQLLocker returns a MySQLLocker.  wait is rounded up to whole seconds.
func NewMySQLLocker(db *sql.DB, prefix string, wait time.Duration) *MySQLLocker {
	if prefix == "" {
		prefix = "inn"
	}
	return &MySQLLocker{db: db, prefix: prefix, wait: wait}
}

func (l *MySQLLocker) Lock(ctx context.Context, key string) (func(), error) {
	name := l.prefix + ":" + key
	if len(name) > 64 {
		name = name[:64]
	}
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, err
	}
	secs := int(math.Ceil(l.wait.Seconds()))

	var got sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", name, secs).Scan(&got); err != nil {
		_ = conn.Close()
		return nil, err
	}
	switch {
	case !got.Valid:
		_ = conn.Close()
		return nil, fmt.Errorf("GET_LOCK(%q) returned NULL", name)
	case got.Int64 != 1:
		_ = conn.Close()
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_, _ = conn.ExecContext(ctx, "DO RELEASE_LOCK(?)", name)
			_ = conn.Close()
		})
	}, nil
}
