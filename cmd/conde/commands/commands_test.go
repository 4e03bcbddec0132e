package commands_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/conde/cmd/conde/commands"
	"go.trai.ch/conde/internal/app"
	"go.trai.ch/conde/internal/build"
	"go.trai.ch/conde/internal/core/domain"
)

type mockApp struct {
	createFunc       func(ctx context.Context, name string, opts app.CreateOptions) (*domain.Environment, error)
	activateFunc     func(ctx context.Context, name string) (*domain.Activation, error)
	deactivateFunc   func(ctx context.Context, session domain.Session) (*domain.Activation, error)
	installFunc      func(ctx context.Context, session domain.Session, opts app.InstallOptions) ([]domain.PackageID, error)
	uninstallFunc    func(ctx context.Context, session domain.Session, name string) error
	listEnvsFunc     func(ctx context.Context, session domain.Session) ([]domain.Environment, error)
	listPackagesFunc func(ctx context.Context, session domain.Session) (string, []domain.PackageID, error)
	cleanFunc        func(ctx context.Context, opts app.CleanOptions) ([]domain.PackageID, error)
	removeFunc       func(ctx context.Context, session domain.Session, name string) error
}

func (m *mockApp) Create(ctx context.Context, name string, opts app.CreateOptions) (*domain.Environment, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, name, opts)
	}
	return &domain.Environment{Name: name}, nil
}

func (m *mockApp) Activate(ctx context.Context, name string) (*domain.Activation, error) {
	if m.activateFunc != nil {
		return m.activateFunc(ctx, name)
	}
	return &domain.Activation{Env: name}, nil
}

func (m *mockApp) Deactivate(ctx context.Context, session domain.Session) (*domain.Activation, error) {
	if m.deactivateFunc != nil {
		return m.deactivateFunc(ctx, session)
	}
	return nil, nil
}

func (m *mockApp) Install(
	ctx context.Context, session domain.Session, opts app.InstallOptions,
) ([]domain.PackageID, error) {
	if m.installFunc != nil {
		return m.installFunc(ctx, session, opts)
	}
	return nil, nil
}

func (m *mockApp) Uninstall(ctx context.Context, session domain.Session, name string) error {
	if m.uninstallFunc != nil {
		return m.uninstallFunc(ctx, session, name)
	}
	return nil
}

func (m *mockApp) ListEnvs(ctx context.Context, session domain.Session) ([]domain.Environment, error) {
	if m.listEnvsFunc != nil {
		return m.listEnvsFunc(ctx, session)
	}
	return nil, nil
}

func (m *mockApp) ListPackages(ctx context.Context, session domain.Session) (string, []domain.PackageID, error) {
	if m.listPackagesFunc != nil {
		return m.listPackagesFunc(ctx, session)
	}
	return "", nil, nil
}

func (m *mockApp) Clean(ctx context.Context, opts app.CleanOptions) ([]domain.PackageID, error) {
	if m.cleanFunc != nil {
		return m.cleanFunc(ctx, opts)
	}
	return nil, nil
}

func (m *mockApp) Remove(ctx context.Context, session domain.Session, name string) error {
	if m.removeFunc != nil {
		return m.removeFunc(ctx, session, name)
	}
	return nil
}

func (m *mockApp) Version(_ context.Context) (*app.VersionInfo, error) {
	return &app.VersionInfo{
		Version:   build.Version,
		Commit:    build.Commit,
		Date:      build.Date,
		Installed: domain.DefaultToolVersion,
	}, nil
}

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func execute(t *testing.T, a commands.Application, getenv func(string) string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	cli := commands.New(a, commands.WithEnv(getenv))
	out := new(bytes.Buffer)
	cli.SetOutput(out, new(bytes.Buffer))
	cli.SetArgs(args)

	err := cli.Execute(context.Background())
	return out.String(), err
}

func TestCommands_Create(t *testing.T) {
	var captured app.CreateOptions
	mock := &mockApp{
		createFunc: func(_ context.Context, name string, opts app.CreateOptions) (*domain.Environment, error) {
			assert.Equal(t, "web", name)
			captured = opts
			return &domain.Environment{Name: name}, nil
		},
	}

	_, err := execute(t, mock, env(nil), "create", "web", "--node", "20")
	require.NoError(t, err)
	assert.Equal(t, "20", captured.Node)
}

func TestCommands_Create_RequiresName(t *testing.T) {
	_, err := execute(t, &mockApp{}, env(nil), "create")
	require.Error(t, err)
}

func TestCommands_Activate(t *testing.T) {
	mock := &mockApp{
		activateFunc: func(_ context.Context, name string) (*domain.Activation, error) {
			return &domain.Activation{Env: name, ShimDir: "/home/me/.conde/envs/web/bin"}, nil
		},
	}

	out, err := execute(t, mock, env(nil), "activate", "web")
	require.NoError(t, err)
	assert.Equal(t, "export CONDE_ENV='web'\nexport PATH='/home/me/.conde/envs/web/bin':\"$PATH\"\n", out)
}

func TestCommands_Activate_NotFound(t *testing.T) {
	mock := &mockApp{
		activateFunc: func(_ context.Context, _ string) (*domain.Activation, error) {
			return nil, domain.ErrEnvironmentNotFound
		},
	}

	out, err := execute(t, mock, env(nil), "activate", "ghost")
	require.ErrorIs(t, err, domain.ErrEnvironmentNotFound)
	assert.Empty(t, out)
}

func TestCommands_Deactivate(t *testing.T) {
	shims := "/home/me/.conde/envs/web/bin"
	vars := map[string]string{
		"CONDE_ENV": "web",
		"PATH":      shims + ":/usr/local/bin:/usr/bin",
	}

	t.Run("active environment", func(t *testing.T) {
		mock := &mockApp{
			deactivateFunc: func(_ context.Context, session domain.Session) (*domain.Activation, error) {
				assert.Equal(t, "web", session.ActiveEnv)
				return &domain.Activation{Env: "web", ShimDir: shims}, nil
			},
		}

		out, err := execute(t, mock, env(vars), "deactivate")
		require.NoError(t, err)
		assert.Equal(t, "unset CONDE_ENV\nexport PATH='/usr/local/bin:/usr/bin'\n", out)
	})

	t.Run("environment removed meanwhile", func(t *testing.T) {
		mock := &mockApp{
			deactivateFunc: func(_ context.Context, _ domain.Session) (*domain.Activation, error) {
				return &domain.Activation{Env: "web"}, nil
			},
		}

		out, err := execute(t, mock, env(vars), "deactivate")
		require.NoError(t, err)
		assert.Equal(t, "unset CONDE_ENV\nexport PATH='/usr/local/bin:/usr/bin'\n", out)
	})

	t.Run("nothing active", func(t *testing.T) {
		out, err := execute(t, &mockApp{}, env(nil), "deactivate")
		require.NoError(t, err)
		assert.Empty(t, out)
	})
}

func TestCommands_Install(t *testing.T) {
	t.Run("wires packages and session", func(t *testing.T) {
		var captured app.InstallOptions
		mock := &mockApp{
			installFunc: func(_ context.Context, session domain.Session, opts app.InstallOptions) ([]domain.PackageID, error) {
				assert.Equal(t, "web", session.ActiveEnv)
				captured = opts
				return nil, nil
			},
		}

		_, err := execute(t, mock, env(map[string]string{"CONDE_ENV": "web"}), "install", "lodash@^4", "chalk")
		require.NoError(t, err)
		assert.Equal(t, []string{"lodash@^4", "chalk"}, captured.Packages)
		assert.Empty(t, captured.Manifest)
	})

	t.Run("manifest", func(t *testing.T) {
		var captured app.InstallOptions
		mock := &mockApp{
			installFunc: func(_ context.Context, _ domain.Session, opts app.InstallOptions) ([]domain.PackageID, error) {
				captured = opts
				return nil, nil
			},
		}

		_, err := execute(t, mock, env(nil), "install", "--manifest", "package.json")
		require.NoError(t, err)
		assert.Equal(t, "package.json", captured.Manifest)
	})

	t.Run("manifest with packages", func(t *testing.T) {
		mock := &mockApp{
			installFunc: func(_ context.Context, _ domain.Session, _ app.InstallOptions) ([]domain.PackageID, error) {
				panic("should not be called")
			},
		}

		_, err := execute(t, mock, env(nil), "install", "--manifest", "package.json", "lodash")
		require.ErrorContains(t, err, "--manifest cannot be combined")
	})

	t.Run("shows usage when nothing requested", func(t *testing.T) {
		mock := &mockApp{
			installFunc: func(_ context.Context, _ domain.Session, _ app.InstallOptions) ([]domain.PackageID, error) {
				panic("should not be called")
			},
		}

		out, err := execute(t, mock, env(nil), "install")
		require.NoError(t, err)
		assert.Contains(t, out, "Usage:")
	})

	t.Run("returns conflict", func(t *testing.T) {
		mock := &mockApp{
			installFunc: func(_ context.Context, _ domain.Session, _ app.InstallOptions) ([]domain.PackageID, error) {
				return nil, &domain.ConflictError{Environment: "web"}
			},
		}

		_, err := execute(t, mock, env(nil), "install", "lodash@^4")
		require.ErrorIs(t, err, domain.ErrConflict)
	})
}

func TestCommands_Uninstall(t *testing.T) {
	var captured string
	mock := &mockApp{
		uninstallFunc: func(_ context.Context, _ domain.Session, name string) error {
			captured = name
			return nil
		},
	}

	_, err := execute(t, mock, env(nil), "uninstall", "@types/node")
	require.NoError(t, err)
	assert.Equal(t, "@types/node", captured)
}

func TestCommands_List(t *testing.T) {
	mock := &mockApp{
		listEnvsFunc: func(_ context.Context, _ domain.Session) ([]domain.Environment, error) {
			return []domain.Environment{
				{Name: "api"},
				{Name: "web", RuntimeVersion: "20.11.0", Active: true},
			}, nil
		},
		listPackagesFunc: func(_ context.Context, _ domain.Session) (string, []domain.PackageID, error) {
			return "web", []domain.PackageID{
				{Name: "@types/node", Version: "20.1.0"},
				{Name: "lodash", Version: "4.17.21"},
			}, nil
		},
	}

	t.Run("envs by default", func(t *testing.T) {
		out, err := execute(t, mock, env(nil), "list")
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(out), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "○ api  no runtime", lines[0])
		assert.Equal(t, "● web  node 20.11.0", lines[1])
	})

	t.Run("packages", func(t *testing.T) {
		out, err := execute(t, mock, env(nil), "list", "packages")
		require.NoError(t, err)
		assert.Equal(t, "@types/node  20.1.0\nlodash       4.17.21\n", out)
	})

	t.Run("rejects unknown kinds", func(t *testing.T) {
		_, err := execute(t, mock, env(nil), "list", "tasks")
		require.Error(t, err)
	})

	t.Run("no environments", func(t *testing.T) {
		out, err := execute(t, &mockApp{}, env(nil), "list", "envs")
		require.NoError(t, err)
		assert.Contains(t, out, "no environments")
	})
}

func TestCommands_Clean(t *testing.T) {
	var captured app.CleanOptions
	mock := &mockApp{
		cleanFunc: func(_ context.Context, opts app.CleanOptions) ([]domain.PackageID, error) {
			captured = opts
			return []domain.PackageID{{Name: "lodash", Version: "3.10.1"}}, nil
		},
	}

	out, err := execute(t, mock, env(nil), "clean", "--dry-run")
	require.NoError(t, err)
	assert.True(t, captured.DryRun)
	assert.Equal(t, "lodash  3.10.1\n", out)
}

func TestCommands_Remove(t *testing.T) {
	mock := &mockApp{
		removeFunc: func(_ context.Context, session domain.Session, name string) error {
			if session.IsActive(name) {
				return domain.ErrActiveEnvironment
			}
			return nil
		},
	}

	_, err := execute(t, mock, env(map[string]string{"CONDE_ENV": "web"}), "remove", "web")
	require.ErrorIs(t, err, domain.ErrActiveEnvironment)

	_, err = execute(t, mock, env(map[string]string{"CONDE_ENV": "web"}), "remove", "api")
	require.NoError(t, err)
}

func TestCommands_Version(t *testing.T) {
	out, err := execute(t, &mockApp{}, env(nil), "version")
	require.NoError(t, err)

	assert.Contains(t, out, build.Version)
	assert.Contains(t, out, "recorded version: "+domain.DefaultToolVersion)
}

func TestCommands_UnknownCommand(t *testing.T) {
	_, err := execute(t, &mockApp{}, env(nil), "frobnicate")
	require.ErrorContains(t, err, "unknown command")
}
