package memory

import (
	"context"
	"sync"
	"time"

	"github.com/techwithparamesh/agentflow/pkg/ports"
)

var _ ports.DistributedLocker = (*Locker)(nil)

// lockEntry is a one-slot semaphore shared by everyone waiting on a key.
type lockEntry struct {
	slot chan struct{}
	refs int
}

// Locker implements ports.DistributedLocker within a single process.
// Entries are reference counted and dropped once nobody holds or waits
// for them. The ttl is ignored: a lock is held until unlocked.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

// NewLocker creates an in-process locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*lockEntry)}
}

// Lock blocks until key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	entry := l.acquire(key)
	select {
	case entry.slot <- struct{}{}:
	case <-ctx.Done():
		l.release(key)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-entry.slot
			l.release(key)
		})
		return nil
	}, nil
}

// Held reports how many callers hold or wait for key.
func (l *Locker) Held(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok := l.locks[key]; ok {
		return e.refs
	}
	return 0
}

func (l *Locker) acquire(key string) *lockEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[key]
	if !ok {
		entry = &lockEntry{slot: make(chan struct{}, 1)}
		l.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (l *Locker) release(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.locks[key]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(l.locks, key)
	}
}
