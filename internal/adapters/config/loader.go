// Package config provides the configuration loader for conde.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

const (
	// RegistryEnvVar overrides registry.url.
	RegistryEnvVar = "CONDE_REGISTRY"

	// LinkModeEnvVar overrides link_mode.
	LinkModeEnvVar = "CONDE_LINK_MODE"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	getenv func(string) string
}

// NewLoader creates a new Loader reading overrides from the process environment.
func NewLoader() *Loader {
	return NewLoaderWithEnv(os.Getenv)
}

// NewLoaderWithEnv creates a new Loader reading overrides through getenv.
func NewLoaderWithEnv(getenv func(string) string) *Loader {
	return &Loader{getenv: getenv}
}

// Load reads <baseDir>/config.yaml. A missing file yields the defaults.
func (l *Loader) Load(baseDir string) (*domain.Config, error) {
	cfg := domain.DefaultConfig(baseDir)
	path := cfg.Layout().ConfigPath()

	var file Configfile
	if err := readAndUnmarshalYAML(path, &file); err != nil {
		return nil, zerr.With(err, "path", path)
	}

	if err := apply(cfg, &file); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	l.applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is derived from the base directory
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	dec := yaml.NewDecoder(bytes.NewReader(configFile))
	dec.KnownFields(true)
	if parseErr := dec.Decode(target); parseErr != nil && !errors.Is(parseErr, io.EOF) {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

func apply(cfg *domain.Config, file *Configfile) error {
	if file.Registry.URL != "" {
		cfg.RegistryURL = file.Registry.URL
	}
	if file.Runtime.DistURL != "" {
		cfg.RuntimeDistURL = file.Runtime.DistURL
	}
	if file.LinkMode != "" {
		cfg.LinkMode = domain.LinkMode(file.LinkMode)
	}

	durations := []struct {
		field  string
		raw    string
		target *time.Duration
	}{
		{"registry.timeout", file.Registry.Timeout, &cfg.RegistryTimeout},
		{"registry.cache_ttl", file.Registry.CacheTTL, &cfg.RegistryCacheTTL},
		{"lock.poll_interval", file.Lock.PollInterval, &cfg.LockPollInterval},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := time.ParseDuration(d.raw)
		if err != nil {
			return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidConfig, "invalid duration"), "field", d.field),
				"value", d.raw)
		}
		*d.target = v
	}
	return nil
}

func (l *Loader) applyEnv(cfg *domain.Config) {
	if v := strings.TrimSpace(l.getenv(RegistryEnvVar)); v != "" {
		cfg.RegistryURL = v
	}
	if v := strings.TrimSpace(l.getenv(LinkModeEnvVar)); v != "" {
		cfg.LinkMode = domain.LinkMode(v)
	}
}

func validate(cfg *domain.Config) error {
	invalid := func(field string, value any, reason string) error {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrInvalidConfig, reason), "field", field), "value", value)
	}

	for _, f := range []struct{ field, raw string }{
		{"registry.url", cfg.RegistryURL},
		{"runtime.dist_url", cfg.RuntimeDistURL},
	} {
		u, err := url.Parse(f.raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return invalid(f.field, f.raw, "must be an absolute http(s) URL")
		}
	}
	if !cfg.LinkMode.Valid() {
		return invalid("link_mode", cfg.LinkMode, "must be one of symlink, hardlink, junction")
	}
	if cfg.RegistryTimeout <= 0 {
		return invalid("registry.timeout", cfg.RegistryTimeout, "must be positive")
	}
	if cfg.RegistryCacheTTL < 0 {
		return invalid("registry.cache_ttl", cfg.RegistryCacheTTL, "must not be negative")
	}
	if cfg.LockPollInterval <= 0 {
		return invalid("lock.poll_interval", cfg.LockPollInterval, "must be positive")
	}
	cfg.RegistryURL = strings.TrimRight(cfg.RegistryURL, "/")
	cfg.RuntimeDistURL = strings.TrimRight(cfg.RuntimeDistURL, "/")
	return nil
}
