// Package cas implements the content-keyed package store shared by every environment.
package cas

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/conde/internal/adapters/pkgtree"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// InstallTimeout bounds a shared install once it no longer follows any caller's context.
const InstallTimeout = 10 * time.Minute

// Store implements ports.PackageStore. Every slot holds one name@version and
// is published with a single rename, so readers never observe a partial slot.
type Store struct {
	layout   domain.Layout
	registry ports.RegistryClient
	locker   ports.Locker
	logger   ports.Logger

	installGroup singleflight.Group
}

// NewStore creates a Store rooted at the layout's store directory.
func NewStore(layout domain.Layout, registry ports.RegistryClient, locker ports.Locker, logger ports.Logger) *Store {
	return &Store{
		layout:   layout,
		registry: registry,
		locker:   locker,
		logger:   logger,
	}
}

// Resolve maps a version spec to the greatest published version satisfying it.
func (s *Store) Resolve(ctx context.Context, name, spec string) (string, error) {
	if err := domain.ValidatePackageName(name); err != nil {
		return "", err
	}
	if v := strings.TrimPrefix(strings.TrimSpace(spec), "="); domain.IsExactVersion(v) {
		return v, nil
	}

	r, err := domain.ParseRange(spec)
	if err != nil {
		return "", zerr.With(err, "package", name)
	}

	versions, err := s.registry.ListVersions(ctx, name)
	if err != nil {
		return "", err
	}

	best, ok := domain.MaxSatisfying(versions, r)
	if !ok {
		notFound := zerr.Wrap(domain.ErrPackageVersionNotFound, "no published version satisfies the requested range")
		return "", zerr.With(zerr.With(notFound, "package", name), "spec", spec)
	}
	return best, nil
}

// Root returns the slot of id.
func (s *Store) Root(id domain.PackageID) string {
	return s.layout.StoreSlot(id)
}

// EnsureInstalled returns the slot of id, fetching and publishing it first if it is absent.
func (s *Store) EnsureInstalled(ctx context.Context, id domain.PackageID) (string, error) {
	if _, err := domain.NewPackageID(id.Name, id.Version); err != nil {
		return "", err
	}

	slot := s.Root(id)
	if complete(slot) {
		return slot, nil
	}

	// Concurrent requests for the same identity inside this process share one fetch.
	// The fetch is detached from the first caller so that its cancellation does not
	// fail the other waiters; each caller still stops waiting on its own context.
	ch := s.installGroup.DoChan(id.String(), func() (any, error) {
		installCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), InstallTimeout)
		defer cancel()
		return nil, s.install(installCtx, id, slot)
	})

	select {
	case <-ctx.Done():
		return "", installErr(ctx.Err(), id, "install cancelled")
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return slot, nil
	}
}

func (s *Store) install(ctx context.Context, id domain.PackageID, slot string) error {
	storeLock, err := s.locker.RLock(ctx, domain.StoreLockKey)
	if err != nil {
		return err
	}
	defer func() { _ = storeLock.Release() }()

	pkgLock, err := s.locker.Lock(ctx, domain.PackageLockKey(id))
	if err != nil {
		return err
	}
	defer func() { _ = pkgLock.Release() }()

	// Another process may have published the slot while we waited.
	if complete(slot) {
		return nil
	}
	// A slot without a manifest can only be left behind by an interrupted eviction.
	if err := os.RemoveAll(slot); err != nil {
		return installErr(err, id, "failed to clear incomplete slot")
	}

	tmpRoot := s.layout.StoreTmpDir()
	if err := os.MkdirAll(tmpRoot, domain.DirPerm); err != nil {
		return installErr(err, id, "failed to create store temp area")
	}
	work, err := os.MkdirTemp(tmpRoot, "install-")
	if err != nil {
		return installErr(err, id, "failed to create staging directory")
	}
	defer func() { _ = os.RemoveAll(work) }()

	s.logger.Info("fetching " + id.String())
	staging := filepath.Join(work, "package")
	if err := s.registry.Fetch(ctx, id, staging); err != nil {
		return installErr(err, id, "failed to fetch package")
	}

	if _, err := os.Stat(filepath.Join(staging, domain.ManifestFileName)); err != nil {
		return installErr(err, id, "package has no manifest")
	}

	if err := os.MkdirAll(filepath.Dir(slot), domain.DirPerm); err != nil {
		return installErr(err, id, "failed to create store directory")
	}
	if err := os.Rename(staging, slot); err != nil {
		return installErr(err, id, "failed to publish package")
	}

	s.logger.Debug("stored " + id.String() + " at " + slot)
	return nil
}

// Installed lists every identity in the store, sorted by name then version.
func (s *Store) Installed(_ context.Context) ([]domain.PackageID, error) {
	root := s.layout.StoreDir()
	entries, err := os.ReadDir(root)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.PackageID{}, nil
	}
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to read store"), "path", root)
	}

	ids := []domain.PackageID{}
	for _, e := range entries {
		if domain.IsHidden(e.Name()) || !e.IsDir() {
			continue
		}
		if strings.HasPrefix(e.Name(), "@") {
			scoped, err := os.ReadDir(filepath.Join(root, e.Name()))
			if err != nil {
				return nil, zerr.With(zerr.Wrap(err, "failed to read store scope"), "path", filepath.Join(root, e.Name()))
			}
			for _, se := range scoped {
				if id, ok := slotID(e.Name()+"/", se); ok {
					ids = append(ids, id)
				}
			}
			continue
		}
		if id, ok := slotID("", e); ok {
			ids = append(ids, id)
		}
	}

	slices.SortFunc(ids, func(a, b domain.PackageID) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return domain.CompareVersions(a.Version, b.Version)
	})
	return ids, nil
}

func slotID(scope string, e fs.DirEntry) (domain.PackageID, bool) {
	if domain.IsHidden(e.Name()) || !e.IsDir() {
		return domain.PackageID{}, false
	}
	name, version, ok := domain.ParseSlotName(e.Name())
	if !ok {
		return domain.PackageID{}, false
	}
	id, err := domain.NewPackageID(scope+name, version)
	if err != nil {
		return domain.PackageID{}, false
	}
	return id, true
}

// Remove evicts id. The slot is first renamed into the temp area so that it
// disappears atomically, then deleted.
func (s *Store) Remove(_ context.Context, id domain.PackageID) error {
	slot := s.Root(id)
	if _, err := os.Lstat(slot); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	tmpRoot := s.layout.StoreTmpDir()
	if err := os.MkdirAll(tmpRoot, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create store temp area"), "package", id.String())
	}
	trash, err := os.MkdirTemp(tmpRoot, "evict-")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create eviction directory"), "package", id.String())
	}
	defer func() { _ = os.RemoveAll(trash) }()

	if err := os.Rename(slot, filepath.Join(trash, "package")); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to evict package"), "package", id.String())
	}

	// Drop the scope directory once its last slot is gone.
	if id.Scope() != "" {
		_ = os.Remove(filepath.Dir(slot))
	}
	return nil
}

// Manifest reads the manifest of an installed package.
func (s *Store) Manifest(id domain.PackageID) (*domain.Manifest, error) {
	return pkgtree.ReadManifest(s.Root(id))
}

func complete(slot string) bool {
	info, err := os.Stat(filepath.Join(slot, domain.ManifestFileName))
	return err == nil && info.Mode().IsRegular()
}

func installErr(err error, id domain.PackageID, msg string) error {
	return zerr.With(zerr.Wrap(zerr.Wrap(err, msg), domain.ErrInstallFailed.Error()), "package", id.String())
}

var _ ports.PackageStore = (*Store)(nil)
