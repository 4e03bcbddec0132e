package gc

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/adapters/cas"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/conde/internal/adapters/envs"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/conde/internal/adapters/lock"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/conde/internal/adapters/logger" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/conde/internal/core/ports"
)

// NodeID is the unique identifier for the collector Graft node.
const NodeID graft.ID = "engine.gc"

func init() {
	graft.Register(graft.Node[*Collector]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{cas.NodeID, envs.NodeID, lock.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (*Collector, error) {
			store, err := graft.Dep[ports.PackageStore](ctx)
			if err != nil {
				return nil, err
			}
			registry, err := graft.Dep[ports.EnvironmentRegistry](ctx)
			if err != nil {
				return nil, err
			}
			locker, err := graft.Dep[ports.Locker](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewCollector(store, registry, locker, log), nil
		},
	})
}
