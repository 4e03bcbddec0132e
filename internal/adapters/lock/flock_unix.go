//go:build unix

package lock

import (
	"context"
	"errors"
	"os"
	"time"

	"go.trai.ch/conde/internal/core/domain"
	"golang.org/x/sys/unix"
)

// acquireFile opens (or creates) the lock file and takes a flock on it.
// The kernel drops the flock when the descriptor closes, including on crash,
// so an orphaned lock file never blocks later processes.
func acquireFile(ctx context.Context, path string, m mode, poll time.Duration) (func() error, error) {
	//nolint:gosec // Path is built from the lock directory and a hashed key
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.PrivateFilePerm)
	if err != nil {
		return nil, err
	}

	how := unix.LOCK_EX
	if m == shared {
		how = unix.LOCK_SH
	}

	for {
		err := unix.Flock(int(f.Fd()), how|unix.LOCK_NB)
		if err == nil {
			break
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			_ = f.Close()
			return nil, err
		}
		if werr := wait(ctx, poll); werr != nil {
			_ = f.Close()
			return nil, werr
		}
	}

	return func() error {
		uerr := unix.Flock(int(f.Fd()), unix.LOCK_UN)
		cerr := f.Close()
		return errors.Join(uerr, cerr)
	}, nil
}
