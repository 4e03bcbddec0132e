package ports

import "context"

// Linker projects store packages into environments.
//
//go:generate mockgen -source=linker.go -destination=mocks/mock_linker.go -package=mocks
type Linker interface {
	// Link projects the package at storeRoot into the environment at envRoot.
	Link(ctx context.Context, storeRoot, envRoot string) error

	// Open starts an edit session on an environment. The environment stays locked until Close.
	Open(ctx context.Context, envRoot string) (LinkSession, error)
}

// LinkSession edits one environment under its lock.
type LinkSession interface {
	// Packages returns the linked packages as name to declared version.
	Packages() (map[string]string, error)

	// Link projects the package at storeRoot, replacing any linked version of the same name.
	Link(ctx context.Context, storeRoot string) error

	// Unlink removes the projection of name and its shims.
	Unlink(name string) error

	// Close releases the environment.
	Close() error
}
