package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/conde/internal/adapters/logger"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/zerr"
)

func newLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	l := logger.New()
	l.SetOutput(buf)
	return l, buf
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newLogger(t)

	l.Debug("hidden")
	l.Info("resolving")
	l.Success("installed")
	l.Warn("careful")

	assert.Equal(t, "resolving\n✓ installed\n! careful\n", buf.String())
}

func TestLogger_Verbose(t *testing.T) {
	l, buf := newLogger(t)

	l.SetVerbose(true)
	l.Debug("shown")
	l.SetVerbose(false)
	l.Debug("hidden")

	assert.Equal(t, "○ shown\n", buf.String())
}

func TestLogger_ErrorChain(t *testing.T) {
	l, buf := newLogger(t)

	err := zerr.With(zerr.Wrap(errors.New("disk full"), domain.ErrInstallFailed.Error()), "package", "lodash@4.17.21")
	l.Error(err)

	want := "✗ Error: failed to install package\n" +
		"       package: lodash@4.17.21\n\n" +
		"  Caused by:\n" +
		"    → disk full\n"
	assert.Equal(t, want, buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	l, buf := newLogger(t)
	l.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_ConflictHint(t *testing.T) {
	l, buf := newLogger(t)

	l.Error(&domain.ConflictError{
		Environment: "web",
		Conflicts:   []domain.Conflict{{Package: "lodash", Required: "^3.0.0", Installed: "4.17.21"}},
	})

	out := buf.String()
	assert.Contains(t, out, "lodash: requires ^3.0.0, but 4.17.21 is installed")
	assert.Contains(t, out, "conde create <name>")
}

func TestLogger_JSON(t *testing.T) {
	l, buf := newLogger(t)
	l.SetJSON(true)

	l.Success("installed")
	l.Error(errors.New("boom"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "SUCCESS", first["level"])
	assert.Equal(t, "installed", first["msg"])

	var second map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, "boom", second["error"])
}
