package ports

import "context"

// Lock is a held advisory lock.
type Lock interface {
	// Release unlocks. Calling it more than once is a no-op.
	Release() error
}

// Locker hands out advisory locks shared between processes.
//
//go:generate mockgen -source=locker.go -destination=mocks/mock_locker.go -package=mocks
type Locker interface {
	// Lock acquires key exclusively, blocking until it is free or ctx is done.
	Lock(ctx context.Context, key string) (Lock, error)

	// RLock acquires key shared.
	RLock(ctx context.Context, key string) (Lock, error)
}
