// Package linker projects store packages into environments and maintains their shims.
package linker

import (
	"context"
	"crypto/rand"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.trai.ch/conde/internal/adapters/pkgtree"
	"go.trai.ch/conde/internal/adapters/projection"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/zerr"
)

// Linker implements ports.Linker.
type Linker struct {
	projector projection.Projector
	locker    ports.Locker
	logger    ports.Logger
}

// New creates a Linker that projects with p.
func New(p projection.Projector, locker ports.Locker, logger ports.Logger) *Linker {
	return &Linker{projector: p, locker: locker, logger: logger}
}

// Link projects one package in its own session.
func (l *Linker) Link(ctx context.Context, storeRoot, envRoot string) error {
	s, err := l.Open(ctx, envRoot)
	if err != nil {
		return err
	}
	defer func() { _ = s.Close() }()
	return s.Link(ctx, storeRoot)
}

// Open locks the environment at envRoot for editing.
func (l *Linker) Open(ctx context.Context, envRoot string) (ports.LinkSession, error) {
	lk, err := l.locker.Lock(ctx, domain.EnvLockKey(filepath.Base(envRoot)))
	if err != nil {
		return nil, err
	}
	return &session{linker: l, envRoot: envRoot, lock: lk}, nil
}

type session struct {
	linker  *Linker
	envRoot string

	mu     sync.Mutex
	lock   ports.Lock
	closed bool
}

var errSessionClosed = zerr.New("link session is closed")

func (s *session) Packages() (map[string]string, error) {
	if s.isClosed() {
		return nil, errSessionClosed
	}
	return pkgtree.Packages(s.envRoot)
}

func (s *session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.lock.Release()
}

func (s *session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Link projects storeRoot under its declared name, replacing a linked version of that name.
func (s *session) Link(ctx context.Context, storeRoot string) error {
	if s.isClosed() {
		return errSessionClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m, err := pkgtree.ReadManifest(storeRoot)
	if err != nil {
		return linkErr(err, storeRoot, "failed to read store manifest")
	}
	if err := domain.ValidatePackageName(m.Name); err != nil {
		return linkErr(err, m.Name, "store manifest declares an invalid name")
	}

	dest := domain.PackagePath(s.envRoot, m.Name)
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
		return linkErr(err, m.Name, "failed to create package tree")
	}

	previous, _ := pkgtree.ReadManifest(dest)

	tmp := sibling(dest, "link")
	if err := s.linker.projector.Dir(storeRoot, tmp); err != nil {
		return linkErr(err, m.Name, "failed to project package")
	}

	restore, cleanup, err := replace(tmp, dest)
	if err != nil {
		_ = projection.Remove(tmp)
		return linkErr(err, m.Name, "failed to replace linked package")
	}

	if got, err := pkgtree.ReadManifest(dest); err != nil || got.ID() != m.ID() {
		if rerr := restore(); rerr != nil {
			s.linker.logger.Warn("failed to restore previous link of " + m.Name + ": " + rerr.Error())
		}
		if err == nil {
			err = zerr.With(zerr.New("projection resolves to a different package"), "path", dest)
		}
		return linkErr(err, m.Name, "failed to verify linked package")
	}
	cleanup()

	if err := s.linkShims(m, previous, storeRoot); err != nil {
		return err
	}

	s.linker.logger.Debug("linked " + m.ID().String() + " into " + s.envRoot)
	return nil
}

func (s *session) linkShims(m, previous *domain.Manifest, storeRoot string) error {
	binDir := domain.ShimDir(s.envRoot)
	if err := os.MkdirAll(binDir, domain.ShimDirPerm); err != nil {
		return linkErr(err, m.Name, "failed to create shim directory")
	}
	if err := os.Chmod(binDir, domain.ShimDirPerm); err != nil {
		return linkErr(err, m.Name, "failed to set shim directory mode")
	}

	declared := make([]string, 0, len(m.Bin))
	for _, e := range m.Bin {
		rel := filepath.Clean(filepath.FromSlash(e.Path))
		if !filepath.IsLocal(rel) {
			s.linker.logger.Warn("skipping entry point outside the package: " + m.Name + " " + e.Path)
			continue
		}
		target := filepath.Join(storeRoot, rel)
		if _, err := os.Stat(target); err != nil {
			s.linker.logger.Warn("skipping missing entry point: " + m.Name + " " + e.Path)
			continue
		}
		//nolint:gosec // entry points must be executable
		if err := os.Chmod(target, domain.ShimDirPerm); err != nil {
			return linkErr(err, m.Name, "failed to make entry point executable")
		}

		shim := filepath.Join(binDir, e.Name)
		if err := removeFile(shim); err != nil {
			return linkErr(err, m.Name, "failed to replace shim")
		}
		if err := s.linker.projector.File(target, shim); err != nil {
			return linkErr(err, m.Name, "failed to create shim")
		}
		//nolint:gosec // shims must be executable
		if err := os.Chmod(shim, domain.ShimDirPerm); err != nil {
			return linkErr(err, m.Name, "failed to make shim executable")
		}
		declared = append(declared, e.Name)
	}

	if previous == nil {
		return nil
	}
	for _, e := range previous.Bin {
		if slices.Contains(declared, e.Name) {
			continue
		}
		if err := removeFile(filepath.Join(binDir, e.Name)); err != nil {
			return linkErr(err, m.Name, "failed to remove stale shim")
		}
	}
	return nil
}

// Unlink removes the projection of name and the shims it declares.
func (s *session) Unlink(name string) error {
	if s.isClosed() {
		return errSessionClosed
	}
	if err := domain.ValidatePackageName(name); err != nil {
		return err
	}

	dest := domain.PackagePath(s.envRoot, name)
	if _, err := os.Lstat(dest); errors.Is(err, fs.ErrNotExist) {
		return zerr.With(zerr.Wrap(domain.ErrPackageNotLinked, "nothing to uninstall"), "package", name)
	}

	// A projection whose slot was already collected still gets removed.
	if m, err := pkgtree.ReadManifest(dest); err == nil {
		for _, e := range m.Bin {
			if err := removeFile(filepath.Join(domain.ShimDir(s.envRoot), e.Name)); err != nil {
				return linkErr(err, name, "failed to remove shim")
			}
		}
	}

	if err := removeEntry(dest); err != nil {
		return linkErr(err, name, "failed to remove linked package")
	}
	if scope, _ := domain.SplitScope(name); scope != "" {
		_ = os.Remove(filepath.Dir(dest))
	}

	s.linker.logger.Debug("unlinked " + name + " from " + s.envRoot)
	return nil
}

// replace moves tmp to dest. restore puts back whatever dest held before;
// cleanup discards it once the new projection is verified.
func replace(tmp, dest string) (restore func() error, cleanup func(), err error) {
	info, err := os.Lstat(dest)
	if errors.Is(err, fs.ErrNotExist) {
		if err := os.Rename(tmp, dest); err != nil {
			return nil, nil, err
		}
		return func() error { return projection.Remove(dest) }, func() {}, nil
	}
	if err != nil {
		return nil, nil, err
	}

	if info.Mode()&fs.ModeSymlink != 0 {
		old, rerr := os.Readlink(dest)
		if rerr == nil {
			// Renaming a symlink over a symlink is atomic.
			if err := os.Rename(tmp, dest); err == nil {
				return func() error { return relink(old, dest) }, func() {}, nil
			}
		}
	}

	// Real directories and junctions cannot be renamed over; move them aside first.
	aside := sibling(dest, "old")
	if err := os.Rename(dest, aside); err != nil {
		return nil, nil, err
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Rename(aside, dest)
		return nil, nil, err
	}
	restore = func() error {
		if err := projection.Remove(dest); err != nil {
			return err
		}
		return os.Rename(aside, dest)
	}
	return restore, func() { _ = removeEntry(aside) }, nil
}

func relink(old, dest string) error {
	tmp := sibling(dest, "restore")
	if err := os.Symlink(old, tmp); err != nil {
		return err
	}
	return os.Rename(tmp, dest)
}

// removeEntry deletes a projection, or a real directory that is not store content.
func removeEntry(path string) error {
	isLink, err := projection.IsProjection(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if isLink {
		return projection.Remove(path)
	}
	return os.RemoveAll(path)
}

func removeFile(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// sibling returns a hidden, unique name next to path, skipped by every tree scan.
func sibling(path, tag string) string {
	return filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+"."+tag+"-"+rand.Text()[:10])
}

func linkErr(err error, name, msg string) error {
	return zerr.With(zerr.Wrap(zerr.Wrap(err, msg), domain.ErrLinkFailed.Error()), "package", name)
}

var _ ports.Linker = (*Linker)(nil)
