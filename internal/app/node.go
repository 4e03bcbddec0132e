package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/adapters/cas"    //nolint:depguard // Wired in app layer
	"go.trai.ch/conde/internal/adapters/config" //nolint:depguard // Wired in app layer
	"go.trai.ch/conde/internal/adapters/envs"   //nolint:depguard // Wired in app layer
	"go.trai.ch/conde/internal/adapters/linker" //nolint:depguard // Wired in app layer
	"go.trai.ch/conde/internal/adapters/lock"   //nolint:depguard // Wired in app layer
	"go.trai.ch/conde/internal/adapters/logger" //nolint:depguard // Wired in app layer
	"go.trai.ch/conde/internal/core/ports"
	"go.trai.ch/conde/internal/engine/gc"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			envs.NodeID,
			cas.NodeID,
			linker.NodeID,
			lock.NodeID,
			gc.NodeID,
			config.VersionMarkerNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return &Components{App: app, Logger: log}, nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	registry, err := graft.Dep[ports.EnvironmentRegistry](ctx)
	if err != nil {
		return nil, err
	}

	store, err := graft.Dep[ports.PackageStore](ctx)
	if err != nil {
		return nil, err
	}

	lnk, err := graft.Dep[ports.Linker](ctx)
	if err != nil {
		return nil, err
	}

	locker, err := graft.Dep[ports.Locker](ctx)
	if err != nil {
		return nil, err
	}

	collector, err := graft.Dep[*gc.Collector](ctx)
	if err != nil {
		return nil, err
	}

	marker, err := graft.Dep[ports.VersionMarker](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(registry, store, lnk, locker, collector, marker, log), nil
}
