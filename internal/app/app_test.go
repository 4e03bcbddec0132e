package app_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/conde/internal/app"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports/mocks"
	"go.trai.ch/conde/internal/engine/gc"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	envs    *mocks.MockEnvironmentRegistry
	store   *mocks.MockPackageStore
	linker  *mocks.MockLinker
	session *mocks.MockLinkSession
	locker  *mocks.MockLocker
	lock    *mocks.MockLock
	marker  *mocks.MockVersionMarker
	logger  *mocks.MockLogger
	app     *app.App
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		envs:    mocks.NewMockEnvironmentRegistry(ctrl),
		store:   mocks.NewMockPackageStore(ctrl),
		linker:  mocks.NewMockLinker(ctrl),
		session: mocks.NewMockLinkSession(ctrl),
		locker:  mocks.NewMockLocker(ctrl),
		lock:    mocks.NewMockLock(ctrl),
		marker:  mocks.NewMockVersionMarker(ctrl),
		logger:  mocks.NewMockLogger(ctrl),
	}
	f.logger.EXPECT().Debug(gomock.Any()).AnyTimes()

	collector := gc.NewCollector(f.store, f.envs, f.locker, f.logger)
	f.app = app.New(f.envs, f.store, f.linker, f.locker, collector, f.marker, f.logger)
	return f
}

var (
	active = domain.Session{ActiveEnv: "web"}
	webEnv = &domain.Environment{Name: "web", Root: "/conde/envs/web", RuntimeVersion: "20.11.0", Active: true}
)

// expectSession sets up the active environment, the shared store lock and an open link session.
func (f *fixture) expectSession(linked map[string]string) {
	f.envs.EXPECT().Active(active).Return("web", true)
	f.envs.EXPECT().Get("web").Return(webEnv, nil)
	f.locker.EXPECT().RLock(gomock.Any(), domain.StoreLockKey).Return(f.lock, nil)
	f.lock.EXPECT().Release().Return(nil)
	f.linker.EXPECT().Open(gomock.Any(), webEnv.Root).Return(f.session, nil)
	f.session.EXPECT().Close().Return(nil)
	f.session.EXPECT().Packages().Return(linked, nil)
}

func (f *fixture) expectFetch(id domain.PackageID, spec string) {
	root := "/conde/packages/" + id.String()
	f.store.EXPECT().Resolve(gomock.Any(), id.Name, spec).Return(id.Version, nil)
	f.store.EXPECT().EnsureInstalled(gomock.Any(), id).Return(root, nil)
	f.session.EXPECT().Link(gomock.Any(), root).Return(nil)
}

func TestApp_Create(t *testing.T) {
	f := newFixture(t)

	f.envs.EXPECT().Create(gomock.Any(), "web", "20").
		Return(&domain.Environment{Name: "web", RuntimeVersion: "20.11.0"}, nil)
	f.logger.EXPECT().Success("created environment web (node 20.11.0)")

	env, err := f.app.Create(context.Background(), "web", app.CreateOptions{Node: "20"})
	require.NoError(t, err)
	assert.Equal(t, "20.11.0", env.RuntimeVersion)
}

func TestApp_Create_Exists(t *testing.T) {
	f := newFixture(t)

	f.envs.EXPECT().Create(gomock.Any(), "web", "").Return(nil, domain.ErrEnvironmentExists)

	_, err := f.app.Create(context.Background(), "web", app.CreateOptions{})
	require.ErrorIs(t, err, domain.ErrEnvironmentExists)
}

func TestApp_Deactivate(t *testing.T) {
	t.Run("no active environment", func(t *testing.T) {
		f := newFixture(t)
		f.envs.EXPECT().Active(domain.Session{}).Return("", false)
		f.logger.EXPECT().Warn("no environment is currently active")

		act, err := f.app.Deactivate(context.Background(), domain.Session{})
		require.NoError(t, err)
		assert.Nil(t, act)
	})

	t.Run("active environment", func(t *testing.T) {
		f := newFixture(t)
		want := &domain.Activation{Env: "web", ShimDir: "/conde/envs/web/bin"}
		f.envs.EXPECT().Active(active).Return("web", true)
		f.envs.EXPECT().Activation("web").Return(want, nil)

		act, err := f.app.Deactivate(context.Background(), active)
		require.NoError(t, err)
		assert.Equal(t, want, act)
	})

	t.Run("environment removed meanwhile", func(t *testing.T) {
		f := newFixture(t)
		f.envs.EXPECT().Active(active).Return("web", true)
		f.envs.EXPECT().Activation("web").Return(nil, domain.ErrEnvironmentNotFound)

		act, err := f.app.Deactivate(context.Background(), active)
		require.NoError(t, err)
		assert.Equal(t, &domain.Activation{Env: "web"}, act)
	})
}

func TestApp_Remove_Active(t *testing.T) {
	f := newFixture(t)
	f.envs.EXPECT().Remove(gomock.Any(), "web", active).Return(domain.ErrActiveEnvironment)

	err := f.app.Remove(context.Background(), active, "web")
	require.ErrorIs(t, err, domain.ErrActiveEnvironment)
}

func TestApp_ListPackages(t *testing.T) {
	f := newFixture(t)
	f.envs.EXPECT().Active(active).Return("web", true)
	f.envs.EXPECT().Resolve("web").Return(webEnv.Root, nil)
	f.envs.EXPECT().Packages(gomock.Any(), "web").
		Return(map[string]string{"lodash": "4.17.21", "@types/node": "20.1.0", "chalk": "5.3.0"}, nil)

	name, ids, err := f.app.ListPackages(context.Background(), active)
	require.NoError(t, err)
	assert.Equal(t, "web", name)
	assert.Equal(t, []domain.PackageID{
		{Name: "@types/node", Version: "20.1.0"},
		{Name: "chalk", Version: "5.3.0"},
		{Name: "lodash", Version: "4.17.21"},
	}, ids)
}

func TestApp_ListPackages_NoActive(t *testing.T) {
	f := newFixture(t)
	f.envs.EXPECT().Active(domain.Session{}).Return("", false)

	_, _, err := f.app.ListPackages(context.Background(), domain.Session{})
	require.ErrorIs(t, err, domain.ErrNoActiveEnvironment)
}

func TestApp_Install(t *testing.T) {
	f := newFixture(t)
	f.expectSession(map[string]string{})

	lodash := domain.PackageID{Name: "lodash", Version: "4.17.21"}
	types := domain.PackageID{Name: "@types/node", Version: "20.1.0"}
	f.expectFetch(lodash, "^4")
	f.expectFetch(types, "")
	f.store.EXPECT().Manifest(lodash).Return(&domain.Manifest{Engines: map[string]string{"node": ">=4"}}, nil)
	f.store.EXPECT().Manifest(types).Return(&domain.Manifest{Engines: map[string]string{}}, nil)
	f.logger.EXPECT().Success("installed lodash@4.17.21")
	f.logger.EXPECT().Success("installed @types/node@20.1.0")

	ids, err := f.app.Install(context.Background(), active, app.InstallOptions{
		Packages: []string{"lodash@^4", "@types/node"},
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.PackageID{lodash, types}, ids)
}

func TestApp_Install_Conflict(t *testing.T) {
	f := newFixture(t)
	f.expectSession(map[string]string{"lodash": "3.10.1"})

	_, err := f.app.Install(context.Background(), active, app.InstallOptions{Packages: []string{"lodash@^4"}})
	require.ErrorIs(t, err, domain.ErrConflict)

	var conflictErr *domain.ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, "web", conflictErr.Environment)
	assert.Equal(t, []domain.Conflict{{Package: "lodash", Required: "^4", Installed: "3.10.1"}}, conflictErr.Conflicts)
}

func TestApp_Install_EngineWarningOnce(t *testing.T) {
	f := newFixture(t)
	id := domain.PackageID{Name: "modern", Version: "2.0.0"}
	manifest := &domain.Manifest{Engines: map[string]string{"node": ">=22"}}

	f.logger.EXPECT().Warn(gomock.Any()).Times(1)
	f.logger.EXPECT().Success("installed modern@2.0.0").Times(2)

	for range 2 {
		f.expectSession(map[string]string{})
		f.expectFetch(id, "2.0.0")
		f.store.EXPECT().Manifest(id).Return(manifest, nil)

		_, err := f.app.Install(context.Background(), active, app.InstallOptions{Packages: []string{"modern@2.0.0"}})
		require.NoError(t, err)
	}
}

func TestApp_Install_Manifest(t *testing.T) {
	f := newFixture(t)

	path := filepath.Join(t.TempDir(), "package.json")
	doc := `{"name":"site","dependencies":{"chalk":"^5","lodash":"^4"}}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	f.expectSession(map[string]string{"lodash": "4.17.21"})
	chalk := domain.PackageID{Name: "chalk", Version: "5.3.0"}
	f.expectFetch(chalk, "^5")
	f.store.EXPECT().Manifest(chalk).Return(&domain.Manifest{}, nil)
	f.logger.EXPECT().Info("lodash@4.17.21 already satisfies ^4")
	f.logger.EXPECT().Success("installed chalk@5.3.0")

	ids, err := f.app.Install(context.Background(), active, app.InstallOptions{Manifest: path})
	require.NoError(t, err)
	assert.Equal(t, []domain.PackageID{chalk}, ids)
}

func TestApp_Install_RequestErrors(t *testing.T) {
	emptyManifest := filepath.Join(t.TempDir(), "package.json")
	require.NoError(t, os.WriteFile(emptyManifest, []byte(`{"name":"site"}`), 0o600))

	tests := []struct {
		name string
		opts app.InstallOptions
		want error
	}{
		{name: "nothing requested", opts: app.InstallOptions{}, want: domain.ErrNoPackagesSpecified},
		{name: "invalid name", opts: app.InstallOptions{Packages: []string{"../evil"}}, want: domain.ErrInvalidPackageName},
		{name: "manifest without dependencies", opts: app.InstallOptions{Manifest: emptyManifest}, want: domain.ErrNoPackagesSpecified},
		{
			name: "missing manifest",
			opts: app.InstallOptions{Manifest: filepath.Join(t.TempDir(), "missing.json")},
			want: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.envs.EXPECT().Active(active).Return("web", true)
			f.envs.EXPECT().Get("web").Return(webEnv, nil)

			_, err := f.app.Install(context.Background(), active, tt.opts)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApp_Install_FetchFailure(t *testing.T) {
	f := newFixture(t)
	f.expectSession(map[string]string{})

	f.store.EXPECT().Resolve(gomock.Any(), "ghost", "").Return("", domain.ErrPackageVersionNotFound)

	_, err := f.app.Install(context.Background(), active, app.InstallOptions{Packages: []string{"ghost"}})
	require.ErrorIs(t, err, domain.ErrPackageVersionNotFound)
}

func TestApp_Uninstall(t *testing.T) {
	t.Run("linked package", func(t *testing.T) {
		f := newFixture(t)
		f.envs.EXPECT().Active(active).Return("web", true)
		f.envs.EXPECT().Resolve("web").Return(webEnv.Root, nil)
		f.locker.EXPECT().RLock(gomock.Any(), domain.StoreLockKey).Return(f.lock, nil)
		f.lock.EXPECT().Release().Return(nil)
		f.linker.EXPECT().Open(gomock.Any(), webEnv.Root).Return(f.session, nil)
		f.session.EXPECT().Unlink("lodash").Return(nil)
		f.session.EXPECT().Close().Return(nil)
		f.logger.EXPECT().Success("uninstalled lodash")

		require.NoError(t, f.app.Uninstall(context.Background(), active, "lodash"))
	})

	t.Run("not linked", func(t *testing.T) {
		f := newFixture(t)
		f.envs.EXPECT().Active(active).Return("web", true)
		f.envs.EXPECT().Resolve("web").Return(webEnv.Root, nil)
		f.locker.EXPECT().RLock(gomock.Any(), domain.StoreLockKey).Return(f.lock, nil)
		f.lock.EXPECT().Release().Return(nil)
		f.linker.EXPECT().Open(gomock.Any(), webEnv.Root).Return(f.session, nil)
		f.session.EXPECT().Unlink("lodash").Return(domain.ErrPackageNotLinked)
		f.session.EXPECT().Close().Return(nil)

		err := f.app.Uninstall(context.Background(), active, "lodash")
		require.ErrorIs(t, err, domain.ErrPackageNotLinked)
	})
}

func TestApp_Clean(t *testing.T) {
	used := domain.PackageID{Name: "lodash", Version: "4.17.21"}
	unused := domain.PackageID{Name: "lodash", Version: "3.10.1"}

	expectSweep := func(f *fixture) {
		f.locker.EXPECT().Lock(gomock.Any(), domain.StoreLockKey).Return(f.lock, nil)
		f.lock.EXPECT().Release().Return(nil)
		f.envs.EXPECT().List(gomock.Any(), domain.Session{}).Return([]domain.Environment{{Name: "web"}}, nil)
		f.envs.EXPECT().Packages(gomock.Any(), "web").Return(map[string]string{"lodash": "4.17.21"}, nil)
		f.store.EXPECT().Installed(gomock.Any()).Return([]domain.PackageID{unused, used}, nil)
	}

	t.Run("dry run", func(t *testing.T) {
		f := newFixture(t)
		expectSweep(f)
		f.logger.EXPECT().Info("1 unused package(s) would be removed")

		removed, err := f.app.Clean(context.Background(), app.CleanOptions{DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, []domain.PackageID{unused}, removed)
	})

	t.Run("remove", func(t *testing.T) {
		f := newFixture(t)
		expectSweep(f)
		f.store.EXPECT().Remove(gomock.Any(), unused).Return(nil)
		f.logger.EXPECT().Success("removed 1 unused package(s)")

		removed, err := f.app.Clean(context.Background(), app.CleanOptions{})
		require.NoError(t, err)
		assert.Equal(t, []domain.PackageID{unused}, removed)
	})

	t.Run("partial failure", func(t *testing.T) {
		f := newFixture(t)
		expectSweep(f)
		errBusy := errors.New("device busy")
		f.store.EXPECT().Remove(gomock.Any(), unused).Return(errBusy)

		removed, err := f.app.Clean(context.Background(), app.CleanOptions{})
		require.ErrorIs(t, err, errBusy)
		assert.Empty(t, removed)
	})
}

func TestApp_Version(t *testing.T) {
	f := newFixture(t)
	f.marker.EXPECT().Read().Return(domain.DefaultToolVersion, nil)

	info, err := f.app.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, domain.DefaultToolVersion, info.Installed)
}
