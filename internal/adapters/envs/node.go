package envs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/adapters/config"
	"go.trai.ch/conde/internal/adapters/lock"
	"go.trai.ch/conde/internal/adapters/logger"
	"go.trai.ch/conde/internal/adapters/nodedist"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
)

// NodeID is the unique identifier for the environment registry Graft node.
const NodeID graft.ID = "adapter.environment_registry"

func init() {
	graft.Register(graft.Node[ports.EnvironmentRegistry]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, lock.NodeID, nodedist.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.EnvironmentRegistry, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			locker, err := graft.Dep[ports.Locker](ctx)
			if err != nil {
				return nil, err
			}
			provisioner, err := graft.Dep[ports.RuntimeProvisioner](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.Layout(), locker, provisioner, log), nil
		},
	})
}
