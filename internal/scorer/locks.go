package scorer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// lockTable hands out one single-slot semaphore per match. Entries are dropped once nobody
// holds or waits for them.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*matchLock
}

type matchLock struct {
	sem  *semaphore.Weighted
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{
		locks: make(map[string]*matchLock),
	}
}

// acquire blocks until matchID is free or timeout elapses. The returned func releases the lock.
func (t *lockTable) acquire(ctx context.Context, matchID string, timeout time.Duration) (func(), error) {
	t.mu.Lock()
	l, ok := t.locks[matchID]
	if !ok {
		l = &matchLock{sem: semaphore.NewWeighted(1)}
		t.locks[matchID] = l
	}
	l.refs++
	t.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		t.unref(matchID, l)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s still locked after %s", ErrBusy, matchID, timeout)
		}
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.sem.Release(1)
			t.unref(matchID, l)
		})
	}, nil
}

func (t *lockTable) unref(matchID string, l *matchLock) {
	t.mu.Lock()
	defer t.mu.Unlock()
	l.refs--
	if l.refs == 0 && t.locks[matchID] == l {
		delete(t.locks, matchID)
	}
}

// size is the number of matches with a holder or waiter.
func (t *lockTable) size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.locks)
}
