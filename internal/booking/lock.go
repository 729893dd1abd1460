package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrLockTimeout is returned by a Locker when the key stayed held for longer
// than the configured wait.
var ErrLockTimeout = errors.New("lock wait timed out")

// Locker grants exclusive access to a key.  Admission holds the room's key
// across the capacity check and the insert so two guests cannot both take
// the last unit.  The returned unlock func is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

func roomLockKey(roomID uint64) string {
	return fmt.Sprintf("room:%d", roomID)
}

// LocalLocker is an in-process keyed mutex.  It serialises admission within
// a single replica only; multi-replica deployments use the Redis or MySQL
// locker.
type LocalLocker struct {
	wait  time.Duration
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker returns a LocalLocker.  A positive wait bounds how long
// Lock blocks; zero waits until ctx is done.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{wait: wait, slots: make(map[string]*slot)}
}

func (l *LocalLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	sl, ok := l.slots[key]
	if !ok {
		sl = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = sl
	}
	sl.refs++
	l.mu.Unlock()

	var timeout <-chan time.Time
	if l.wait > 0 {
		t := time.NewTimer(l.wait)
		defer t.Stop()
		timeout = t.C
	}
	select {
	case sl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, sl, false)
		return nil, ctx.Err()
	case <-timeout:
		l.release(key, sl, false)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() {
		once.Do(func() { l.release(key, sl, true) })
	}, nil
}

func (l *LocalLocker) release(key string, sl *slot, held bool) {
	if held {
		<-sl.ch
	}
	l.mu.Lock()
	sl.refs--
	if sl.refs == 0 {
		delete(l.slots, key)
	}
	l.mu.Unlock()
}
