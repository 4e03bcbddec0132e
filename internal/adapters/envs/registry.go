// Package envs implements the environment registry on top of the environments directory.
package envs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/conde/internal/adapters/pkgtree"
	"go.trai.ch/conde/internal/adapters/projection"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/zerr"
)

// Registry implements ports.EnvironmentRegistry. An environment exists once
// its package tree exists; the tree is created last, so a directory without one
// is the remainder of an interrupted creation.
type Registry struct {
	layout      domain.Layout
	locker      ports.Locker
	provisioner ports.RuntimeProvisioner
	logger      ports.Logger
}

// New creates a Registry.
func New(layout domain.Layout, locker ports.Locker, provisioner ports.RuntimeProvisioner, logger ports.Logger) *Registry {
	return &Registry{layout: layout, locker: locker, provisioner: provisioner, logger: logger}
}

// List returns every complete environment sorted by name.
func (r *Registry) List(_ context.Context, session domain.Session) ([]domain.Environment, error) {
	dir := r.layout.EnvsDir()
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.Environment{}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read environments"), "path", dir)
	}

	envs := []domain.Environment{}
	for _, e := range entries {
		if domain.IsHidden(e.Name()) || !e.IsDir() {
			continue
		}
		root := filepath.Join(dir, e.Name())
		if !complete(root) {
			continue
		}
		env := r.describe(e.Name(), root)
		env.Active = session.IsActive(e.Name())
		envs = append(envs, env)
	}

	slices.SortFunc(envs, func(a, b domain.Environment) int { return strings.Compare(a.Name, b.Name) })
	return envs, nil
}

// Get returns the named environment. Active is never set; use List with a session for that.
func (r *Registry) Get(name string) (*domain.Environment, error) {
	root, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	env := r.describe(name, root)
	return &env, nil
}

func (r *Registry) describe(name, root string) domain.Environment {
	env := domain.Environment{Name: name, Root: root}
	//nolint:gosec // marker path is derived from the layout
	if data, err := os.ReadFile(domain.RuntimeMarker(root)); err == nil {
		env.RuntimeVersion = strings.TrimSpace(string(data))
	}
	return env
}

// Resolve returns the root of the named environment.
func (r *Registry) Resolve(name string) (string, error) {
	if err := domain.ValidateEnvName(name); err != nil {
		return "", err
	}
	root := r.layout.EnvRoot(name)
	if !complete(root) {
		return "", notFound(name)
	}
	return root, nil
}

// Active returns the active environment of the session.
func (r *Registry) Active(session domain.Session) (string, bool) {
	return session.ActiveEnv, session.HasActive()
}

// Create makes a new environment. A leftover of an interrupted creation is purged first.
func (r *Registry) Create(ctx context.Context, name, runtimeVersion string) (env *domain.Environment, err error) {
	if err := domain.ValidateEnvName(name); err != nil {
		return nil, err
	}

	lk, err := r.locker.Lock(ctx, domain.EnvLockKey(name))
	if err != nil {
		return nil, err
	}
	defer func() { _ = lk.Release() }()

	root := r.layout.EnvRoot(name)
	if complete(root) {
		return nil, zerr.With(zerr.Wrap(domain.ErrEnvironmentExists, "refusing to overwrite environment"), "env", name)
	}
	if _, statErr := os.Lstat(root); statErr == nil {
		r.logger.Warn("removing incomplete environment " + name)
		if err := purge(root); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to remove incomplete environment"), "env", name)
		}
	}

	if err := os.MkdirAll(root, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create environment"), "env", name)
	}
	defer func() {
		if err != nil {
			_ = purge(root)
		}
	}()

	if err := os.MkdirAll(domain.ShimDir(root), domain.ShimDirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create shim directory"), "env", name)
	}

	if runtimeVersion != "" {
		installed, err := r.provisioner.Provision(ctx, runtimeVersion, root)
		if err != nil {
			return nil, zerr.With(err, "env", name)
		}
		r.logger.Debug("provisioned node " + installed + " for " + name)
	}

	if err := os.MkdirAll(domain.PackageTree(root), domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create package tree"), "env", name)
	}

	created := r.describe(name, root)
	return &created, nil
}

// Remove deletes an environment. Projections are removed as links, so the
// store content they point at stays intact.
func (r *Registry) Remove(ctx context.Context, name string, session domain.Session) error {
	if err := domain.ValidateEnvName(name); err != nil {
		return err
	}
	if session.IsActive(name) {
		return zerr.With(zerr.Wrap(domain.ErrActiveEnvironment, "deactivate it before removing"), "env", name)
	}

	root := r.layout.EnvRoot(name)
	if _, err := os.Lstat(root); errors.Is(err, fs.ErrNotExist) {
		return notFound(name)
	}

	lk, err := r.locker.Lock(ctx, domain.EnvLockKey(name))
	if err != nil {
		return err
	}
	defer func() { _ = lk.Release() }()

	if err := purge(root); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to remove environment"), "env", name)
	}
	return nil
}

// Packages returns the linked packages of name. A vanished environment has none.
func (r *Registry) Packages(_ context.Context, name string) (map[string]string, error) {
	if err := domain.ValidateEnvName(name); err != nil {
		return nil, err
	}
	pkgs, err := pkgtree.Packages(r.layout.EnvRoot(name))
	if err != nil {
		return nil, zerr.With(err, "env", name)
	}
	return pkgs, nil
}

// Activation returns what a shell needs to enter the environment.
func (r *Registry) Activation(name string) (*domain.Activation, error) {
	root, err := r.Resolve(name)
	if err != nil {
		return nil, err
	}
	return &domain.Activation{Env: name, ShimDir: domain.ShimDir(root)}, nil
}

func complete(root string) bool {
	info, err := os.Stat(domain.PackageTree(root))
	return err == nil && info.IsDir()
}

func notFound(name string) error {
	return zerr.With(zerr.Wrap(domain.ErrEnvironmentNotFound, "no such environment"), "env", name)
}

// purge removes an environment root. Projections in the package tree are
// detached first so that removal never descends into the store.
func purge(root string) error {
	tree := domain.PackageTree(root)
	entries, err := os.ReadDir(tree)
	if err == nil {
		for _, e := range entries {
			path := filepath.Join(tree, e.Name())
			if strings.HasPrefix(e.Name(), "@") && e.IsDir() {
				if err := detachAll(path); err != nil {
					return err
				}
				continue
			}
			if err := detach(path); err != nil {
				return err
			}
		}
	}
	return os.RemoveAll(root)
}

func detachAll(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := detach(filepath.Join(dir, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

func detach(path string) error {
	isLink, err := projection.IsProjection(path)
	if err != nil || !isLink {
		return nil
	}
	return projection.Remove(path)
}

var _ ports.EnvironmentRegistry = (*Registry)(nil)
