package ports

import (
	"context"

	"go.trai.ch/conde/internal/core/domain"
)

// EnvironmentRegistry manages the set of environments.
//
//go:generate mockgen -source=environment.go -destination=mocks/mock_environment.go -package=mocks
type EnvironmentRegistry interface {
	// List returns every complete environment sorted by name.
	List(ctx context.Context, session domain.Session) ([]domain.Environment, error)

	// Get returns a single environment.
	Get(name string) (*domain.Environment, error)

	// Resolve returns the root directory of the named environment.
	Resolve(name string) (string, error)

	// Active returns the active environment of the session.
	Active(session domain.Session) (string, bool)

	// Create creates an empty environment, provisioning runtimeVersion when it is not empty.
	Create(ctx context.Context, name, runtimeVersion string) (*domain.Environment, error)

	// Remove deletes an environment. It refuses the active environment.
	Remove(ctx context.Context, name string, session domain.Session) error

	// Packages returns the linked packages of an environment as name to version.
	Packages(ctx context.Context, name string) (map[string]string, error)

	// Activation returns what a shell needs to enter the environment.
	Activation(name string) (*domain.Activation, error)
}

// RuntimeProvisioner installs a language runtime into an environment.
type RuntimeProvisioner interface {
	// Provision installs the runtime matching version into root and returns the concrete version.
	Provision(ctx context.Context, version, root string) (string, error)
}
