package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/zerr"
)

// VersionMarker implements ports.VersionMarker with a plain text file.
type VersionMarker struct {
	path string
}

// NewVersionMarker returns a marker stored at path.
func NewVersionMarker(path string) *VersionMarker {
	return &VersionMarker{path: path}
}

// Read returns the recorded version, or domain.DefaultToolVersion when none is recorded.
func (m *VersionMarker) Read() (string, error) {
	// #nosec G304 -- path is derived from the base directory
	data, err := os.ReadFile(m.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.DefaultToolVersion, nil
		}
		return "", zerr.With(zerr.Wrap(err, domain.ErrConfigReadFailed.Error()), "path", m.path)
	}
	v := strings.TrimSpace(string(data))
	if v == "" {
		return domain.DefaultToolVersion, nil
	}
	return v, nil
}

// Write records version atomically.
func (m *VersionMarker) Write(version string) error {
	if err := os.MkdirAll(filepath.Dir(m.path), domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to create base directory"), "path", m.path)
	}

	tmp, err := os.CreateTemp(filepath.Dir(m.path), ".version-*")
	if err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write version marker"), "path", m.path)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(version + "\n"); err != nil {
		_ = tmp.Close()
		return zerr.With(zerr.Wrap(err, "failed to write version marker"), "path", m.path)
	}
	if err := tmp.Close(); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write version marker"), "path", m.path)
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write version marker"), "path", m.path)
	}
	if err := os.Rename(tmpName, m.path); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write version marker"), "path", m.path)
	}
	return nil
}
