package domain

import (
	"runtime"
	"time"
)

// LinkMode selects how store packages are projected into environments.
type LinkMode string

const (
	// LinkModeSymlink projects every package as a symbolic link.
	LinkModeSymlink LinkMode = "symlink"

	// LinkModeHardlink hard links files and symlinks directories.
	LinkModeHardlink LinkMode = "hardlink"

	// LinkModeJunction uses directory junctions for packages and hard links for shims.
	LinkModeJunction LinkMode = "junction"
)

// DefaultLinkMode returns the projection mode used when none is configured.
func DefaultLinkMode() LinkMode {
	if runtime.GOOS == "windows" {
		return LinkModeJunction
	}
	return LinkModeSymlink
}

// Valid reports whether m names a known projection mode.
func (m LinkMode) Valid() bool {
	switch m {
	case LinkModeSymlink, LinkModeHardlink, LinkModeJunction:
		return true
	default:
		return false
	}
}

const (
	// DefaultRegistryURL is the public npm registry.
	DefaultRegistryURL = "https://registry.npmjs.org"

	// DefaultRuntimeDistURL is the Node.js distribution mirror.
	DefaultRuntimeDistURL = "https://nodejs.org/dist"

	// DefaultRegistryTimeout bounds a single registry or distribution request.
	DefaultRegistryTimeout = 30 * time.Second

	// DefaultRegistryCacheTTL is how long cached registry metadata stays fresh.
	DefaultRegistryCacheTTL = 5 * time.Minute

	// DefaultLockPollInterval is the retry interval of a contended lock.
	DefaultLockPollInterval = 50 * time.Millisecond
)

// Config is the resolved tool configuration.
type Config struct {
	BaseDir          string
	RegistryURL      string
	RegistryTimeout  time.Duration
	RegistryCacheTTL time.Duration
	RuntimeDistURL   string
	LinkMode         LinkMode
	LockPollInterval time.Duration
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig(baseDir string) *Config {
	return &Config{
		BaseDir:          baseDir,
		RegistryURL:      DefaultRegistryURL,
		RegistryTimeout:  DefaultRegistryTimeout,
		RegistryCacheTTL: DefaultRegistryCacheTTL,
		RuntimeDistURL:   DefaultRuntimeDistURL,
		LinkMode:         DefaultLinkMode(),
		LockPollInterval: DefaultLockPollInterval,
	}
}

// Layout returns the persisted layout rooted at the configured base directory.
func (c *Config) Layout() Layout {
	return NewLayout(c.BaseDir)
}
