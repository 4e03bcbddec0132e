//go:build !unix && !windows

package lock

import (
	"context"
	"sync"
	"time"
)

// Targets without flock or LockFileEx only serialize callers inside this process.
var (
	mu    sync.Mutex
	table = map[string]*sync.RWMutex{}
)

func rwFor(path string) *sync.RWMutex {
	mu.Lock()
	defer mu.Unlock()
	rw, ok := table[path]
	if !ok {
		rw = &sync.RWMutex{}
		table[path] = rw
	}
	return rw
}

func acquireFile(ctx context.Context, path string, m mode, poll time.Duration) (func() error, error) {
	rw := rwFor(path)

	try, unlock := rw.TryLock, rw.Unlock
	if m == shared {
		try, unlock = rw.TryRLock, rw.RUnlock
	}

	for !try() {
		if err := wait(ctx, poll); err != nil {
			return nil, err
		}
	}
	return func() error {
		unlock()
		return nil
	}, nil
}
