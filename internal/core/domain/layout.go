package domain

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	// CondeDirName is the name of the conde base directory inside the user's home.
	CondeDirName = ".conde"

	// HomeEnvVar overrides the base directory.
	HomeEnvVar = "CONDE_HOME"

	// ActiveEnvVar carries the active environment name set by activation.
	ActiveEnvVar = "CONDE_ENV"

	// StoreDirName is the name of the shared package store directory.
	StoreDirName = "packages"

	// EnvsDirName is the name of the environments directory.
	EnvsDirName = "envs"

	// LocksDirName is the name of the advisory lock directory.
	LocksDirName = "locks"

	// CacheDirName is the name of the cache directory.
	CacheDirName = "cache"

	// RegistryCacheDirName is the name of the registry metadata cache directory.
	RegistryCacheDirName = "registry"

	// TmpDirName is the name of the private temp area inside the store.
	TmpDirName = ".tmp"

	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "config.yaml"

	// ToolVersionFileName is the name of the current tool version marker.
	ToolVersionFileName = "version"

	// ShimDirName is the name of the executable shim directory of an environment.
	ShimDirName = "bin"

	// PackageTreeDirName is the package tree of an environment, relative to its root.
	PackageTreeDirName = "lib/node_modules"

	// RuntimeMarkerFileName records the runtime version of an environment.
	RuntimeMarkerFileName = "node_version"

	// ManifestFileName is the name of a package manifest.
	ManifestFileName = "package.json"

	// DefaultToolVersion is reported when no tool version was recorded yet.
	DefaultToolVersion = "0.0.0"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// ShimDirPerm is the permission of shim directories and executables (rwxr-xr-x).
	ShimDirPerm = 0o755

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// Layout resolves every persisted path from a single base directory.
type Layout struct {
	Base string
}

// NewLayout returns a Layout rooted at base.
func NewLayout(base string) Layout {
	return Layout{Base: filepath.Clean(base)}
}

// DefaultBaseDir returns $CONDE_HOME, falling back to ~/.conde.
func DefaultBaseDir() (string, error) {
	return baseDirWith(os.Getenv, os.UserHomeDir)
}

func baseDirWith(getenv func(string) string, home func() (string, error)) (string, error) {
	if dir := getenv(HomeEnvVar); dir != "" {
		return filepath.Clean(dir), nil
	}
	h, err := home()
	if err != nil {
		return "", err
	}
	return filepath.Join(h, CondeDirName), nil
}

// StoreDir returns the shared package store.
func (l Layout) StoreDir() string {
	return filepath.Join(l.Base, StoreDirName)
}

// StoreTmpDir returns the temp area used for atomic publishing.
// It lives inside the store so that publishing is a same-filesystem rename.
func (l Layout) StoreTmpDir() string {
	return filepath.Join(l.StoreDir(), TmpDirName)
}

// EnvsDir returns the directory holding every environment.
func (l Layout) EnvsDir() string {
	return filepath.Join(l.Base, EnvsDirName)
}

// LocksDir returns the directory holding advisory lock files.
func (l Layout) LocksDir() string {
	return filepath.Join(l.Base, LocksDirName)
}

// RegistryCacheDir returns the registry metadata cache directory.
func (l Layout) RegistryCacheDir() string {
	return filepath.Join(l.Base, CacheDirName, RegistryCacheDirName)
}

// ConfigPath returns the path of the configuration file.
func (l Layout) ConfigPath() string {
	return filepath.Join(l.Base, ConfigFileName)
}

// ToolVersionPath returns the path of the tool version marker.
func (l Layout) ToolVersionPath() string {
	return filepath.Join(l.Base, ToolVersionFileName)
}

// EnvRoot returns the root directory of the named environment.
func (l Layout) EnvRoot(name string) string {
	return filepath.Join(l.EnvsDir(), name)
}

// StoreSlot returns the store directory of a package identity.
// Scoped packages keep their scope as a directory: @scope/pkg@1.0.0.
func (l Layout) StoreSlot(id PackageID) string {
	if scope := id.Scope(); scope != "" {
		return filepath.Join(l.StoreDir(), scope, id.BareName()+"@"+id.Version)
	}
	return filepath.Join(l.StoreDir(), id.Name+"@"+id.Version)
}

// PackageTree returns the package tree directory of an environment root.
func PackageTree(envRoot string) string {
	return filepath.Join(envRoot, filepath.FromSlash(PackageTreeDirName))
}

// ShimDir returns the executable shim directory of an environment root.
func ShimDir(envRoot string) string {
	return filepath.Join(envRoot, ShimDirName)
}

// RuntimeMarker returns the runtime version marker of an environment root.
func RuntimeMarker(envRoot string) string {
	return filepath.Join(envRoot, RuntimeMarkerFileName)
}

// PackagePath returns where a package named name is projected inside an environment root.
func PackagePath(envRoot, name string) string {
	return filepath.Join(PackageTree(envRoot), filepath.FromSlash(name))
}

// IsHidden reports whether a directory entry is a hidden or system entry.
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
