package gc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports/mocks"
	"go.trai.ch/conde/internal/engine/gc"
	"go.uber.org/mock/gomock"
)

type fixture struct {
	store     *mocks.MockPackageStore
	envs      *mocks.MockEnvironmentRegistry
	collector *gc.Collector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockPackageStore(ctrl)
	envs := mocks.NewMockEnvironmentRegistry(ctrl)
	locker := mocks.NewMockLocker(ctrl)
	lk := mocks.NewMockLock(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()

	locker.EXPECT().Lock(gomock.Any(), domain.StoreLockKey).Return(lk, nil)
	lk.EXPECT().Release().Return(nil)

	return &fixture{store: store, envs: envs, collector: gc.NewCollector(store, envs, locker, log)}
}

var (
	lodash4 = domain.PackageID{Name: "lodash", Version: "4.17.21"}
	lodash3 = domain.PackageID{Name: "lodash", Version: "3.10.1"}
	react   = domain.PackageID{Name: "react", Version: "18.2.0"}
	scoped  = domain.PackageID{Name: "@types/node", Version: "20.1.0"}
)

func (f *fixture) expectEnvironments(pkgs map[string]map[string]string) {
	envs := make([]domain.Environment, 0, len(pkgs))
	for name, linked := range pkgs {
		envs = append(envs, domain.Environment{Name: name})
		f.envs.EXPECT().Packages(gomock.Any(), name).Return(linked, nil)
	}
	f.envs.EXPECT().List(gomock.Any(), domain.Session{}).Return(envs, nil)
}

func TestCollectUnused(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectEnvironments(map[string]map[string]string{
		"web": {"lodash": "4.17.21"},
		"api": {"lodash": "4.17.21", "@types/node": "20.1.0"},
	})
	f.store.EXPECT().Installed(gomock.Any()).Return([]domain.PackageID{scoped, lodash3, lodash4, react}, nil)
	f.store.EXPECT().Remove(gomock.Any(), lodash3).Return(nil)
	f.store.EXPECT().Remove(gomock.Any(), react).Return(nil)

	removed, err := f.collector.CollectUnused(context.Background(), gc.Options{})
	require.NoError(t, err)
	assert.Equal(t, []domain.PackageID{lodash3, react}, removed)
}

func TestCollectUnused_DryRun(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectEnvironments(map[string]map[string]string{"web": {"react": "18.2.0"}})
	f.store.EXPECT().Installed(gomock.Any()).Return([]domain.PackageID{lodash4, react}, nil)
	f.store.EXPECT().Remove(gomock.Any(), gomock.Any()).Times(0)

	removed, err := f.collector.CollectUnused(context.Background(), gc.Options{DryRun: true})
	require.NoError(t, err)
	assert.Equal(t, []domain.PackageID{lodash4}, removed)
}

func TestCollectUnused_NoEnvironments(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectEnvironments(map[string]map[string]string{})
	f.store.EXPECT().Installed(gomock.Any()).Return([]domain.PackageID{lodash4}, nil)
	f.store.EXPECT().Remove(gomock.Any(), lodash4).Return(nil)

	removed, err := f.collector.CollectUnused(context.Background(), gc.Options{})
	require.NoError(t, err)
	assert.Equal(t, []domain.PackageID{lodash4}, removed)
}

func TestCollectUnused_ContinuesAfterRemovalError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.expectEnvironments(map[string]map[string]string{})
	f.store.EXPECT().Installed(gomock.Any()).Return([]domain.PackageID{lodash3, lodash4, react}, nil)
	errBusy := errors.New("device busy")
	f.store.EXPECT().Remove(gomock.Any(), lodash3).Return(errBusy)
	f.store.EXPECT().Remove(gomock.Any(), lodash4).Return(nil)
	f.store.EXPECT().Remove(gomock.Any(), react).Return(errBusy)

	removed, err := f.collector.CollectUnused(context.Background(), gc.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBusy)
	assert.Equal(t, []domain.PackageID{lodash4}, removed)
}

func TestCollectUnused_RegistryError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.envs.EXPECT().List(gomock.Any(), domain.Session{}).Return([]domain.Environment{{Name: "web"}}, nil)
	f.envs.EXPECT().Packages(gomock.Any(), "web").Return(nil, errors.New("permission denied"))
	f.store.EXPECT().Installed(gomock.Any()).Times(0)

	_, err := f.collector.CollectUnused(context.Background(), gc.Options{})
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to read environment packages")
}
