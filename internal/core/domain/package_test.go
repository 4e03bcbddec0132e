package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/conde/internal/core/domain"
)

func TestPackageID(t *testing.T) {
	id := domain.PackageID{Name: "@babel/core", Version: "7.24.0"}
	assert.Equal(t, "@babel/core@7.24.0", id.String())
	assert.Equal(t, "@babel", id.Scope())
	assert.Equal(t, "core", id.BareName())

	plain := domain.PackageID{Name: "lodash", Version: "4.17.21"}
	assert.Empty(t, plain.Scope())
	assert.Equal(t, "lodash", plain.BareName())
}

func TestNewPackageID(t *testing.T) {
	_, err := domain.NewPackageID("lodash", "^4.0.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidVersion))

	_, err = domain.NewPackageID("../evil", "1.0.0")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidPackageName))

	id, err := domain.NewPackageID("lodash", "4.17.21")
	require.NoError(t, err)
	assert.Equal(t, "lodash@4.17.21", id.String())
}

func TestParsePackageRef(t *testing.T) {
	tests := []struct {
		ref      string
		wantName string
		wantSpec string
		wantErr  bool
	}{
		{ref: "lodash", wantName: "lodash"},
		{ref: "lodash@4.17.21", wantName: "lodash", wantSpec: "4.17.21"},
		{ref: "lodash@^4", wantName: "lodash", wantSpec: "^4"},
		{ref: "@types/node", wantName: "@types/node"},
		{ref: "@types/node@^20.1.0", wantName: "@types/node", wantSpec: "^20.1.0"},
		{ref: "", wantErr: true},
		{ref: "@types", wantErr: true},
		{ref: "@/pkg", wantErr: true},
		{ref: "../escape", wantErr: true},
		{ref: ".hidden", wantErr: true},
		{ref: "a/b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			name, spec, err := domain.ParsePackageRef(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidPackageName))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantSpec, spec)
		})
	}
}

func TestParseSlotName(t *testing.T) {
	name, version, ok := domain.ParseSlotName("lodash@4.17.21")
	require.True(t, ok)
	assert.Equal(t, "lodash", name)
	assert.Equal(t, "4.17.21", version)

	_, _, ok = domain.ParseSlotName("lodash")
	assert.False(t, ok)
	_, _, ok = domain.ParseSlotName("@1.0.0")
	assert.False(t, ok)
	_, _, ok = domain.ParseSlotName("lodash@")
	assert.False(t, ok)
}

func TestParseManifest(t *testing.T) {
	t.Run("string bin", func(t *testing.T) {
		m, err := domain.ParseManifest([]byte(`{"name":"@scope/tool","version":"1.0.0","bin":"./cli.js"}`))
		require.NoError(t, err)
		assert.Equal(t, domain.PackageID{Name: "@scope/tool", Version: "1.0.0"}, m.ID())
		assert.Equal(t, []domain.Entrypoint{{Name: "tool", Path: "./cli.js"}}, m.Bin)
	})

	t.Run("map bin is sorted", func(t *testing.T) {
		m, err := domain.ParseManifest([]byte(`{
			"name": "multi",
			"version": "2.0.0",
			"bin": {"zeta": "z.js", "alpha": "a.js", "": "skip.js", "../up": "evil.js"}
		}`))
		require.NoError(t, err)
		assert.Equal(t, []domain.Entrypoint{
			{Name: "alpha", Path: "a.js"},
			{Name: "zeta", Path: "z.js"},
		}, m.Bin)
	})

	t.Run("no bin", func(t *testing.T) {
		m, err := domain.ParseManifest([]byte(`{"name":"lib","version":"1.0.0"}`))
		require.NoError(t, err)
		assert.Empty(t, m.Bin)
		assert.NotNil(t, m.Dependencies)
		assert.NotNil(t, m.Engines)
	})

	t.Run("dependencies and engines", func(t *testing.T) {
		m, err := domain.ParseManifest([]byte(`{
			"name": "app",
			"dependencies": {"lodash": "^4.17.0"},
			"engines": {"node": ">=18"}
		}`))
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"lodash": "^4.17.0"}, m.Dependencies)
		assert.Equal(t, ">=18", m.Engines["node"])
	})

	t.Run("legacy engines array", func(t *testing.T) {
		m, err := domain.ParseManifest([]byte(`{"name":"old","version":"0.1.0","engines":["node >= 0.4"]}`))
		require.NoError(t, err)
		assert.Empty(t, m.Engines)
	})

	t.Run("invalid bin type", func(t *testing.T) {
		_, err := domain.ParseManifest([]byte(`{"name":"bad","bin":42}`))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrManifestParseFailed.Error())
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := domain.ParseManifest([]byte(`{ invalid`))
		require.Error(t, err)
		assert.ErrorContains(t, err, domain.ErrManifestParseFailed.Error())
	})
}
