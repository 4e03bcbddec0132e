// Package gc removes store packages that no environment links.
package gc

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Options controls a collection run.
type Options struct {
	// DryRun reports what would be removed without removing it.
	DryRun bool
}

// Collector sweeps the package store.
type Collector struct {
	store  ports.PackageStore
	envs   ports.EnvironmentRegistry
	locker ports.Locker
	logger ports.Logger
}

// NewCollector creates a Collector.
func NewCollector(
	store ports.PackageStore,
	envs ports.EnvironmentRegistry,
	locker ports.Locker,
	logger ports.Logger,
) *Collector {
	return &Collector{store: store, envs: envs, locker: locker, logger: logger}
}

// CollectUnused removes every store package that no environment links and
// returns the removed identities in store order. The store is locked
// exclusively for the whole run, so no install can publish or link meanwhile.
// A failed removal does not stop the sweep; all failures are joined.
func (c *Collector) CollectUnused(ctx context.Context, opts Options) ([]domain.PackageID, error) {
	lk, err := c.locker.Lock(ctx, domain.StoreLockKey)
	if err != nil {
		return nil, err
	}
	defer func() { _ = lk.Release() }()

	used, err := c.usedSet(ctx)
	if err != nil {
		return nil, err
	}

	installed, err := c.store.Installed(ctx)
	if err != nil {
		return nil, err
	}

	removed := []domain.PackageID{}
	var errs error
	for _, id := range installed {
		if _, ok := used[id]; ok {
			continue
		}
		if opts.DryRun {
			removed = append(removed, id)
			continue
		}
		if err := c.store.Remove(ctx, id); err != nil {
			errs = errors.Join(errs, zerr.With(err, "package", id.String()))
			continue
		}
		c.logger.Debug("removed " + id.String())
		removed = append(removed, id)
	}
	return removed, errs
}

// usedSet unions the linked identities of every environment.
func (c *Collector) usedSet(ctx context.Context) (map[domain.PackageID]struct{}, error) {
	envs, err := c.envs.List(ctx, domain.Session{})
	if err != nil {
		return nil, err
	}

	var mu sync.Mutex
	used := map[domain.PackageID]struct{}{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for _, env := range envs {
		g.Go(func() error {
			pkgs, err := c.envs.Packages(ctx, env.Name)
			if err != nil {
				return zerr.Wrap(err, "failed to read environment packages")
			}
			mu.Lock()
			defer mu.Unlock()
			for name, version := range pkgs {
				used[domain.PackageID{Name: name, Version: version}] = struct{}{}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return used, nil
}
