// Package lock serializes work on a set of keys, either inside one process
// or across replicas through Redis.
package lock

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var ErrLockTimeout = errors.New("lock wait timed out")

// Locker acquires every key or none. The returned unlock releases all of them.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// normalizeKeys sorts and de-duplicates keys so that concurrent callers
// always acquire in the same order.
func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// LocalLocker holds one channel-based mutex per key.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*slot
	wait  time.Duration
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{slots: make(map[string]*slot), wait: wait}
}

func (l *LocalLocker) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		s := l.acquireSlot(key)
		select {
		case s.ch <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.releaseSlot(key, false)
			l.unlock(held)
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, ErrLockTimeout
			}
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(func() { l.unlock(held) }) }, nil
}

func (l *LocalLocker) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLocker) releaseSlot(key string, drain bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := l.slots[key]
	if drain {
		<-s.ch
	}
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

func (l *LocalLocker) unlock(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		l.releaseSlot(keys[i], true)
	}
}
