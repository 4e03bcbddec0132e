package nodedist

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/adapters/config"
	"go.trai.ch/conde/internal/adapters/logger"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
)

// NodeID is the unique identifier for the runtime provisioner Graft node.
const NodeID graft.ID = "adapter.nodedist"

func init() {
	graft.Register(graft.Node[ports.RuntimeProvisioner]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.RuntimeProvisioner, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg, log), nil
		},
	})
}
