// Package app implements the application layer for conde.
package app

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/conde/internal/build"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/conde/internal/engine/gc"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	envs      ports.EnvironmentRegistry
	store     ports.PackageStore
	linker    ports.Linker
	locker    ports.Locker
	collector *gc.Collector
	marker    ports.VersionMarker
	logger    ports.Logger

	// engineWarned records package/runtime pairs already warned about.
	engineWarned sync.Map
}

// New creates a new App instance.
func New(
	envs ports.EnvironmentRegistry,
	store ports.PackageStore,
	linker ports.Linker,
	locker ports.Locker,
	collector *gc.Collector,
	marker ports.VersionMarker,
	log ports.Logger,
) *App {
	return &App{
		envs:      envs,
		store:     store,
		linker:    linker,
		locker:    locker,
		collector: collector,
		marker:    marker,
		logger:    log,
	}
}

// CreateOptions configuration for the Create method.
type CreateOptions struct {
	// Node is the runtime version to provision. Empty creates an environment without a runtime.
	Node string
}

// Create makes a new environment.
func (a *App) Create(ctx context.Context, name string, opts CreateOptions) (*domain.Environment, error) {
	env, err := a.envs.Create(ctx, name, opts.Node)
	if err != nil {
		return nil, err
	}

	msg := "created environment " + name
	if env.RuntimeVersion != "" {
		msg += " (node " + env.RuntimeVersion + ")"
	}
	a.logger.Success(msg)
	return env, nil
}

// Activate returns what a shell needs to enter the environment.
func (a *App) Activate(_ context.Context, name string) (*domain.Activation, error) {
	return a.envs.Activation(name)
}

// Deactivate returns the activation the shell should leave. With no active
// environment it warns and returns nil.
func (a *App) Deactivate(_ context.Context, session domain.Session) (*domain.Activation, error) {
	name, ok := a.envs.Active(session)
	if !ok {
		a.logger.Warn("no environment is currently active")
		return nil, nil
	}

	act, err := a.envs.Activation(name)
	if domain.IsNotFound(err) {
		// The environment was removed from another shell; there is still something to leave.
		return &domain.Activation{Env: name}, nil
	}
	if err != nil {
		return nil, err
	}
	return act, nil
}

// Remove deletes an environment.
func (a *App) Remove(ctx context.Context, session domain.Session, name string) error {
	if err := a.envs.Remove(ctx, name, session); err != nil {
		return err
	}
	a.logger.Success("removed environment " + name)
	return nil
}

// ListEnvs returns every environment, marking the active one.
func (a *App) ListEnvs(ctx context.Context, session domain.Session) ([]domain.Environment, error) {
	return a.envs.List(ctx, session)
}

// ListPackages returns the packages linked into the active environment, sorted by name.
func (a *App) ListPackages(ctx context.Context, session domain.Session) (string, []domain.PackageID, error) {
	name, err := a.activeEnv(session)
	if err != nil {
		return "", nil, err
	}
	if _, err := a.envs.Resolve(name); err != nil {
		return "", nil, err
	}

	pkgs, err := a.envs.Packages(ctx, name)
	if err != nil {
		return "", nil, err
	}

	ids := make([]domain.PackageID, 0, len(pkgs))
	for n, v := range pkgs {
		ids = append(ids, domain.PackageID{Name: n, Version: v})
	}
	slices.SortFunc(ids, func(x, y domain.PackageID) int { return strings.Compare(x.Name, y.Name) })
	return name, ids, nil
}

// VersionInfo describes the running binary and the recorded tool version.
type VersionInfo struct {
	Version   string
	Commit    string
	Date      string
	Installed string
}

// Version reports build information and the recorded tool version. The
// running version is recorded the first time a released binary runs.
func (a *App) Version(_ context.Context) (*VersionInfo, error) {
	installed, err := a.marker.Read()
	if err != nil {
		return nil, err
	}

	if installed == domain.DefaultToolVersion && build.Version != "dev" {
		if err := a.marker.Write(build.Version); err != nil {
			a.logger.Warn("failed to record tool version: " + err.Error())
		} else {
			installed = build.Version
		}
	}

	return &VersionInfo{
		Version:   build.Version,
		Commit:    build.Commit,
		Date:      build.Date,
		Installed: installed,
	}, nil
}

func (a *App) activeEnv(session domain.Session) (string, error) {
	name, ok := a.envs.Active(session)
	if !ok {
		return "", zerr.Wrap(domain.ErrNoActiveEnvironment, "an active environment is required")
	}
	return name, nil
}
