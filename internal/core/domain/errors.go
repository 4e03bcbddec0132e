package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

var (
	// ErrEnvironmentNotFound is returned when an environment name does not resolve to a directory.
	ErrEnvironmentNotFound = zerr.New("environment not found")

	// ErrEnvironmentExists is returned when creating an environment whose name is already taken.
	ErrEnvironmentExists = zerr.New("environment already exists")

	// ErrActiveEnvironment is returned when an operation is refused because the environment is active.
	ErrActiveEnvironment = zerr.New("environment is active")

	// ErrNoActiveEnvironment is returned when an operation needs an active environment and none is set.
	ErrNoActiveEnvironment = zerr.New("no active environment, run 'conde activate <env>' first")

	// ErrInvalidEnvironmentName is returned when an environment name is not filesystem safe.
	ErrInvalidEnvironmentName = zerr.New("environment name can only contain alphanumeric characters, dots, hyphens and underscores")

	// ErrPackageVersionNotFound is returned when no published version matches a requested spec.
	ErrPackageVersionNotFound = zerr.New("package version not found")

	// ErrInvalidPackageName is returned when a package name is empty or would escape the store.
	ErrInvalidPackageName = zerr.New("invalid package name")

	// ErrInvalidVersion is returned when a version string is not a valid semantic version.
	ErrInvalidVersion = zerr.New("invalid version")

	// ErrInvalidRange is returned when a version spec cannot be parsed.
	ErrInvalidRange = zerr.New("invalid version range")

	// ErrConflict is the kind of every *ConflictError.
	ErrConflict = zerr.New("dependency conflicts detected")

	// ErrInstallFailed is returned when fetching, extracting or publishing a package fails.
	ErrInstallFailed = zerr.New("failed to install package")

	// ErrLinkFailed is returned when projecting a package into an environment fails.
	ErrLinkFailed = zerr.New("failed to link package")

	// ErrPackageNotLinked is returned when uninstalling a package the environment does not link.
	ErrPackageNotLinked = zerr.New("package is not installed in this environment")

	// ErrManifestReadFailed is returned when a package.json cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read package manifest")

	// ErrManifestParseFailed is returned when a package.json cannot be decoded.
	ErrManifestParseFailed = zerr.New("failed to parse package manifest")

	// ErrLockFailed is returned when an advisory lock cannot be acquired.
	ErrLockFailed = zerr.New("failed to acquire lock")

	// ErrRegistryRequestFailed is returned when a request to the package registry fails.
	ErrRegistryRequestFailed = zerr.New("package registry request failed")

	// ErrRegistryParseFailed is returned when a registry response cannot be decoded.
	ErrRegistryParseFailed = zerr.New("failed to parse package registry response")

	// ErrIntegrityMismatch is returned when a downloaded tarball does not match its published digest.
	ErrIntegrityMismatch = zerr.New("tarball integrity check failed")

	// ErrUnsafeArchivePath is returned when an archive entry would be extracted outside its destination.
	ErrUnsafeArchivePath = zerr.New("archive entry escapes destination")

	// ErrRuntimeProvisionFailed is returned when the runtime distribution cannot be installed.
	ErrRuntimeProvisionFailed = zerr.New("failed to provision runtime")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrInvalidConfig is returned when a config value is out of range.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrNoPackagesSpecified is returned when install is invoked without packages or a manifest.
	ErrNoPackagesSpecified = zerr.New("no packages specified")
)

// IsNotFound reports whether err is one of the not-found kinds.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEnvironmentNotFound) || errors.Is(err, ErrPackageVersionNotFound)
}
