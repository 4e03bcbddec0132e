// Package projection makes store content visible inside environments without copying it.
package projection

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/zerr"
)

// Projector creates and removes projections of store paths.
// Removing a projection never touches the store content it points at.
type Projector interface {
	// Mode reports the projection mode.
	Mode() domain.LinkMode

	// Dir projects the directory target at link. link must not exist.
	Dir(target, link string) error

	// File projects the regular file target at link. link must not exist.
	File(target, link string) error
}

// New returns the Projector for mode.
func New(mode domain.LinkMode) (Projector, error) {
	switch mode {
	case domain.LinkModeSymlink:
		return symlinker{}, nil
	case domain.LinkModeHardlink:
		return hardlinker{}, nil
	case domain.LinkModeJunction:
		return junctioner{}, nil
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "unknown link mode"), "link_mode", string(mode))
	}
}

type symlinker struct{}

func (symlinker) Mode() domain.LinkMode { return domain.LinkModeSymlink }

func (symlinker) Dir(target, link string) error { return symlink(target, link) }

func (symlinker) File(target, link string) error { return symlink(target, link) }

// hardlinker hard links files. Directories cannot be hard linked, so they are symlinked.
type hardlinker struct{}

func (hardlinker) Mode() domain.LinkMode { return domain.LinkModeHardlink }

func (hardlinker) Dir(target, link string) error { return symlink(target, link) }

func (hardlinker) File(target, link string) error {
	if err := os.Link(target, link); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to create hard link"), "target", target), "path", link)
	}
	return nil
}

// junctioner uses directory junctions, which need no privileges on Windows.
type junctioner struct{}

func (junctioner) Mode() domain.LinkMode { return domain.LinkModeJunction }

func (junctioner) Dir(target, link string) error { return junction(target, link) }

func (junctioner) File(target, link string) error { return hardlinker{}.File(target, link) }

// symlink links with a path relative to the link's directory so that a
// relocated base directory keeps every projection valid.
func symlink(target, link string) error {
	dest := target
	if rel, err := filepath.Rel(filepath.Dir(link), target); err == nil {
		dest = rel
	}
	if err := os.Symlink(dest, link); err != nil {
		return zerr.With(zerr.With(zerr.Wrap(err, "failed to create symlink"), "target", target), "path", link)
	}
	return nil
}

// IsProjection reports whether path is a link rather than real content.
func IsProjection(path string) (bool, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return false, err
	}
	return info.Mode()&(fs.ModeSymlink|fs.ModeIrregular) != 0, nil
}

// Remove deletes the projection at path. Real directories are refused so
// that store content reached through a projection is never deleted.
func Remove(path string) error {
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	if info.IsDir() && info.Mode()&(fs.ModeSymlink|fs.ModeIrregular) == 0 {
		return zerr.With(zerr.New("refusing to remove a real directory"), "path", path)
	}
	return os.Remove(path)
}
