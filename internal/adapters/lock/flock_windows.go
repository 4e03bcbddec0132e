//go:build windows

package lock

import (
	"context"
	"errors"
	"math"
	"os"
	"time"

	"go.trai.ch/conde/internal/core/domain"
	"golang.org/x/sys/windows"
)

// acquireFile opens (or creates) the lock file and takes a LockFileEx range lock
// over the whole file. Windows releases the lock when the handle closes, including
// when the process dies.
func acquireFile(ctx context.Context, path string, m mode, poll time.Duration) (func() error, error) {
	//nolint:gosec // Path is built from the lock directory and a hashed key
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, domain.PrivateFilePerm)
	if err != nil {
		return nil, err
	}

	flags := uint32(windows.LOCKFILE_FAIL_IMMEDIATELY)
	if m == exclusive {
		flags |= windows.LOCKFILE_EXCLUSIVE_LOCK
	}
	handle := windows.Handle(f.Fd())

	for {
		ol := new(windows.Overlapped)
		err := windows.LockFileEx(handle, flags, 0, math.MaxUint32, math.MaxUint32, ol)
		if err == nil {
			break
		}
		if !errors.Is(err, windows.ERROR_LOCK_VIOLATION) && !errors.Is(err, windows.ERROR_IO_PENDING) {
			_ = f.Close()
			return nil, err
		}
		if werr := wait(ctx, poll); werr != nil {
			_ = f.Close()
			return nil, werr
		}
	}

	return func() error {
		uerr := windows.UnlockFileEx(handle, 0, math.MaxUint32, math.MaxUint32, new(windows.Overlapped))
		cerr := f.Close()
		return errors.Join(uerr, cerr)
	}, nil
}
