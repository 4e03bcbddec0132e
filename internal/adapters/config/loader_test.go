package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/conde/internal/adapters/config"
	"go.trai.ch/conde/internal/core/domain"
)

func noEnv(string) string { return "" }

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	//nolint:gosec // 0644 is fine for test
	require.NoError(t, os.WriteFile(filepath.Join(dir, domain.ConfigFileName), []byte(content), 0o644))
}

func TestLoader_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg, err := config.NewLoaderWithEnv(noEnv).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.BaseDir)
	assert.Equal(t, domain.DefaultRegistryURL, cfg.RegistryURL)
	assert.Equal(t, domain.DefaultRuntimeDistURL, cfg.RuntimeDistURL)
	assert.Equal(t, domain.DefaultRegistryTimeout, cfg.RegistryTimeout)
	assert.Equal(t, domain.DefaultRegistryCacheTTL, cfg.RegistryCacheTTL)
	assert.Equal(t, domain.DefaultLockPollInterval, cfg.LockPollInterval)
	assert.Equal(t, domain.DefaultLinkMode(), cfg.LinkMode)
}

func TestLoader_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `
registry:
  url: https://npm.example.com/
  timeout: 10s
  cache_ttl: 0s
runtime:
  dist_url: https://mirror.example.com/node
link_mode: hardlink
lock:
  poll_interval: 20ms
`)

	cfg, err := config.NewLoaderWithEnv(noEnv).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "https://npm.example.com", cfg.RegistryURL)
	assert.Equal(t, 10*time.Second, cfg.RegistryTimeout)
	assert.Equal(t, time.Duration(0), cfg.RegistryCacheTTL)
	assert.Equal(t, "https://mirror.example.com/node", cfg.RuntimeDistURL)
	assert.Equal(t, domain.LinkModeHardlink, cfg.LinkMode)
	assert.Equal(t, 20*time.Millisecond, cfg.LockPollInterval)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "link_mode: hardlink\n")

	env := map[string]string{
		config.RegistryEnvVar: "http://localhost:4873",
		config.LinkModeEnvVar: "symlink",
	}
	cfg, err := config.NewLoaderWithEnv(func(k string) string { return env[k] }).Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:4873", cfg.RegistryURL)
	assert.Equal(t, domain.LinkModeSymlink, cfg.LinkMode)
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		content     string
		errContains string
	}{
		{
			name:        "unknown field",
			content:     "registery:\n  url: https://x\n",
			errContains: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:        "malformed yaml",
			content:     "registry: [",
			errContains: domain.ErrConfigParseFailed.Error(),
		},
		{
			name:        "bad duration",
			content:     "registry:\n  timeout: soon\n",
			errContains: domain.ErrInvalidConfig.Error(),
		},
		{
			name:        "bad link mode",
			content:     "link_mode: copy\n",
			errContains: domain.ErrInvalidConfig.Error(),
		},
		{
			name:        "relative registry url",
			content:     "registry:\n  url: registry.local\n",
			errContains: domain.ErrInvalidConfig.Error(),
		},
		{
			name:        "zero timeout",
			content:     "registry:\n  timeout: 0s\n",
			errContains: domain.ErrInvalidConfig.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, err := config.NewLoaderWithEnv(noEnv).Load(dir)
			require.Error(t, err)
			require.ErrorContains(t, err, tt.errContains)
		})
	}
}

func TestLoader_EmptyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, "")

	cfg, err := config.NewLoaderWithEnv(noEnv).Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultRegistryURL, cfg.RegistryURL)
}

func TestVersionMarker(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", domain.ToolVersionFileName)
	m := config.NewVersionMarker(path)

	v, err := m.Read()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultToolVersion, v)

	require.NoError(t, m.Write("1.4.0"))
	v, err = m.Read()
	require.NoError(t, err)
	assert.Equal(t, "1.4.0", v)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}
