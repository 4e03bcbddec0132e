package config

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
)

const (
	// NodeID is the unique identifier for the configuration Graft node.
	NodeID graft.ID = "adapter.config"

	// LoaderNodeID is the unique identifier for the configuration loader Graft node.
	LoaderNodeID graft.ID = "adapter.config_loader"

	// VersionMarkerNodeID is the unique identifier for the version marker Graft node.
	VersionMarkerNodeID graft.ID = "adapter.version_marker"
)

func init() {
	graft.Register(graft.Node[ports.ConfigLoader]{
		ID:        LoaderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ConfigLoader, error) {
			return NewLoader(), nil
		},
	})

	graft.Register(graft.Node[*domain.Config]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{LoaderNodeID},
		Run: func(ctx context.Context) (*domain.Config, error) {
			loader, err := graft.Dep[ports.ConfigLoader](ctx)
			if err != nil {
				return nil, err
			}
			base, err := domain.DefaultBaseDir()
			if err != nil {
				return nil, err
			}
			return loader.Load(base)
		},
	})

	graft.Register(graft.Node[ports.VersionMarker]{
		ID:        VersionMarkerNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{NodeID},
		Run: func(ctx context.Context) (ports.VersionMarker, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return NewVersionMarker(cfg.Layout().ToolVersionPath()), nil
		},
	})
}
