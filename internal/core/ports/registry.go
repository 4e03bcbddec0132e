package ports

import (
	"context"

	"go.trai.ch/conde/internal/core/domain"
)

// RegistryClient talks to a package registry.
//
//go:generate mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type RegistryClient interface {
	// ListVersions returns every published version of the named package.
	ListVersions(ctx context.Context, name string) ([]string, error)

	// Fetch downloads the package and extracts its contents into dest.
	// dest must not exist; on success it holds the package root (package.json at its top).
	Fetch(ctx context.Context, id domain.PackageID, dest string) error
}
