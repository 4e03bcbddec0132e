package ports

import "go.trai.ch/conde/internal/core/domain"

// ConfigLoader loads the tool configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load reads the configuration rooted at baseDir, applying defaults and overrides.
	Load(baseDir string) (*domain.Config, error)
}

// VersionMarker persists the version of the tool that last ran against a base directory.
type VersionMarker interface {
	// Read returns the recorded version, or the default when none is recorded.
	Read() (string, error)

	// Write records version.
	Write(version string) error
}
