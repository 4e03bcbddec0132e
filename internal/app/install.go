package app

import (
	"context"
	"os"
	"runtime"
	"slices"
	"strings"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/engine/conflict"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// InstallOptions configuration for the Install method.
type InstallOptions struct {
	// Packages are CLI references such as "lodash", "lodash@^4" or "@scope/pkg@1.0.0".
	Packages []string

	// Manifest installs the dependencies of this package.json instead of Packages.
	Manifest string
}

type request struct {
	name string
	spec string
}

// Install resolves, stores and links packages into the active environment.
// Every request is checked against the linked set first; any conflict
// rejects the whole install before anything is fetched.
func (a *App) Install(ctx context.Context, session domain.Session, opts InstallOptions) ([]domain.PackageID, error) {
	envName, err := a.activeEnv(session)
	if err != nil {
		return nil, err
	}
	env, err := a.envs.Get(envName)
	if err != nil {
		return nil, err
	}

	requests, err := parseRequests(opts)
	if err != nil {
		return nil, err
	}

	// Collection must not evict a package between publishing and linking.
	storeLock, err := a.locker.RLock(ctx, domain.StoreLockKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = storeLock.Release() }()

	s, err := a.linker.Open(ctx, env.Root)
	if err != nil {
		return nil, err
	}
	defer func() { _ = s.Close() }()

	linked, err := s.Packages()
	if err != nil {
		return nil, err
	}

	specs := make(map[string]string, len(requests))
	for _, r := range requests {
		specs[r.name] = r.spec
	}
	if err := conflict.Error(envName, conflict.Check(linked, specs)); err != nil {
		return nil, err
	}

	if opts.Manifest != "" {
		satisfied := conflict.Satisfied(linked, specs)
		requests = slices.DeleteFunc(requests, func(r request) bool {
			v, ok := satisfied[r.name]
			if ok {
				a.logger.Info(r.name + "@" + v + " already satisfies " + displaySpec(r.spec))
			}
			return ok
		})
	}

	ids, roots, err := a.fetch(ctx, requests)
	if err != nil {
		return nil, err
	}

	for i, id := range ids {
		if err := s.Link(ctx, roots[i]); err != nil {
			return nil, err
		}
		a.checkEngine(id, env.RuntimeVersion)
		a.logger.Success("installed " + id.String())
	}
	return ids, nil
}

// fetch resolves and stores every request concurrently, keeping request order.
func (a *App) fetch(ctx context.Context, requests []request) ([]domain.PackageID, []string, error) {
	ids := make([]domain.PackageID, len(requests))
	roots := make([]string, len(requests))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, r := range requests {
		g.Go(func() error {
			version, err := a.store.Resolve(ctx, r.name, r.spec)
			if err != nil {
				return err
			}
			id := domain.PackageID{Name: r.name, Version: version}
			root, err := a.store.EnsureInstalled(ctx, id)
			if err != nil {
				return err
			}
			ids[i], roots[i] = id, root
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return ids, roots, nil
}

// checkEngine warns once per package and runtime when the package declares a
// node engine range that the environment runtime does not satisfy.
func (a *App) checkEngine(id domain.PackageID, runtimeVersion string) {
	if runtimeVersion == "" {
		return
	}
	m, err := a.store.Manifest(id)
	if err != nil {
		return
	}
	want, ok := m.Engines["node"]
	if !ok || want == "" {
		return
	}
	if ok, err := domain.Satisfies(runtimeVersion, want); err == nil && ok {
		return
	}
	if _, seen := a.engineWarned.LoadOrStore(id.String()+"|"+runtimeVersion, struct{}{}); seen {
		return
	}
	a.logger.Warn(id.String() + " requires node " + want + " but the environment runs " + runtimeVersion +
		"; consider creating a new environment with a compatible runtime")
}

// Uninstall removes a package from the active environment. The store keeps it until collected.
func (a *App) Uninstall(ctx context.Context, session domain.Session, name string) error {
	envName, err := a.activeEnv(session)
	if err != nil {
		return err
	}
	root, err := a.envs.Resolve(envName)
	if err != nil {
		return err
	}

	storeLock, err := a.locker.RLock(ctx, domain.StoreLockKey)
	if err != nil {
		return err
	}
	defer func() { _ = storeLock.Release() }()

	s, err := a.linker.Open(ctx, root)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()

	if err := s.Unlink(name); err != nil {
		return zerr.With(err, "env", envName)
	}
	a.logger.Success("uninstalled " + name)
	return nil
}

func parseRequests(opts InstallOptions) ([]request, error) {
	if opts.Manifest != "" {
		return manifestRequests(opts.Manifest)
	}
	if len(opts.Packages) == 0 {
		return nil, domain.ErrNoPackagesSpecified
	}

	requests := make([]request, 0, len(opts.Packages))
	seen := map[string]int{}
	for _, ref := range opts.Packages {
		name, spec, err := domain.ParsePackageRef(ref)
		if err != nil {
			return nil, err
		}
		// A repeated name keeps its position and takes the last spec.
		if i, ok := seen[name]; ok {
			requests[i].spec = spec
			continue
		}
		seen[name] = len(requests)
		requests = append(requests, request{name: name, spec: spec})
	}
	return requests, nil
}

func manifestRequests(path string) ([]request, error) {
	//nolint:gosec // the manifest path is chosen by the user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrManifestReadFailed.Error()), "path", path)
	}
	m, err := domain.ParseManifest(data)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	if len(m.Dependencies) == 0 {
		return nil, zerr.With(zerr.Wrap(domain.ErrNoPackagesSpecified, "manifest declares no dependencies"), "path", path)
	}

	requests := make([]request, 0, len(m.Dependencies))
	for name, spec := range m.Dependencies {
		if err := domain.ValidatePackageName(name); err != nil {
			return nil, zerr.With(err, "path", path)
		}
		requests = append(requests, request{name: name, spec: spec})
	}
	slices.SortFunc(requests, func(x, y request) int { return strings.Compare(x.name, y.name) })
	return requests, nil
}

func displaySpec(spec string) string {
	if spec == "" {
		return "latest"
	}
	return spec
}
