package wiring_test

import (
	"context"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/conde/internal/app"
	"go.trai.ch/conde/internal/core/domain"
	_ "go.trai.ch/conde/internal/wiring"
)

// TestGraftDependencies ensures that the dependency injection graph is valid
// at compile/test time. It checks that every node declaring a dependency
// actually uses it, and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// graft.AssertDepsValid infers the dependency ID from the package name of
	// the type used in Dep[T]. Every adapter here is resolved through an
	// interface of the shared `ports` package, so it expects a node named "ports".
	t.Skip("Skipping Graft validation due to static analysis limitation with shared ports package")
	graft.AssertDepsValid(t, "../../internal")
}

// TestGraftExecute resolves the full graph against an empty base directory.
func TestGraftExecute(t *testing.T) {
	t.Setenv(domain.HomeEnvVar, t.TempDir())

	components, _, err := graft.ExecuteFor[*app.Components](context.Background())
	require.NoError(t, err)
	require.NotNil(t, components)
	assert.NotNil(t, components.App)
	assert.NotNil(t, components.Logger)
}
