// Package lock implements advisory locks shared between conde processes.
package lock

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/zerr"
)

type mode int

const (
	exclusive mode = iota
	shared
)

// Locker hands out file-backed advisory locks under a lock directory.
type Locker struct {
	dir  string
	poll time.Duration
}

// New returns a Locker keeping its lock files in dir.
func New(dir string, poll time.Duration) *Locker {
	if poll <= 0 {
		poll = domain.DefaultLockPollInterval
	}
	return &Locker{dir: dir, poll: poll}
}

// Lock acquires key exclusively.
func (l *Locker) Lock(ctx context.Context, key string) (ports.Lock, error) {
	return l.acquire(ctx, key, exclusive)
}

// RLock acquires key shared.
func (l *Locker) RLock(ctx context.Context, key string) (ports.Lock, error) {
	return l.acquire(ctx, key, shared)
}

func (l *Locker) acquire(ctx context.Context, key string, m mode) (ports.Lock, error) {
	if err := os.MkdirAll(l.dir, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "key", key)
	}

	path := l.path(key)
	h, err := acquireFile(ctx, path, m, l.poll)
	if err != nil {
		return nil, zerr.With(zerr.With(zerr.Wrap(err, domain.ErrLockFailed.Error()), "key", key), "path", path)
	}
	return &heldLock{release: h}, nil
}

// path maps a key to its lock file. Keys contain characters that are not
// filesystem safe, so the file is named by the key's hash.
func (l *Locker) path(key string) string {
	return filepath.Join(l.dir, strconv.FormatUint(xxhash.Sum64String(key), 16)+".lock")
}

type heldLock struct {
	once    sync.Once
	release func() error
	err     error
}

// Release unlocks. Subsequent calls return the first result.
func (h *heldLock) Release() error {
	h.once.Do(func() {
		h.err = h.release()
	})
	return h.err
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
