package ports

import (
	"context"

	"go.trai.ch/conde/internal/core/domain"
)

// PackageStore is the content-keyed package store shared by every environment.
//
//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type PackageStore interface {
	// Resolve maps a version spec to a concrete version.
	// A concrete version is returned unchanged without contacting the registry.
	Resolve(ctx context.Context, name, spec string) (string, error)

	// EnsureInstalled returns the store root of id, fetching it if absent.
	EnsureInstalled(ctx context.Context, id domain.PackageID) (string, error)

	// Installed lists every identity present in the store.
	Installed(ctx context.Context) ([]domain.PackageID, error)

	// Remove evicts id from the store. The caller holds the store lock exclusively.
	Remove(ctx context.Context, id domain.PackageID) error

	// Root returns the store root of id without checking that it exists.
	Root(id domain.PackageID) string

	// Manifest reads the manifest of an installed package.
	Manifest(id domain.PackageID) (*domain.Manifest, error)
}
