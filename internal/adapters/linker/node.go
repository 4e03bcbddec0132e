package linker

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/adapters/config"
	"go.trai.ch/conde/internal/adapters/lock"
	"go.trai.ch/conde/internal/adapters/logger"
	"go.trai.ch/conde/internal/adapters/projection"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
)

// NodeID is the unique identifier for the linker Graft node.
const NodeID graft.ID = "adapter.linker"

func init() {
	graft.Register(graft.Node[ports.Linker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, lock.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.Linker, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
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
			p, err := projection.New(cfg.LinkMode)
			if err != nil {
				return nil, err
			}
			return New(p, locker, log), nil
		},
	})
}
