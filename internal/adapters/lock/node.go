package lock

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/adapters/config"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
)

// NodeID is the unique identifier for the locker Graft node.
const NodeID graft.ID = "adapter.locker"

func init() {
	graft.Register(graft.Node[ports.Locker]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID},
		Run: func(ctx context.Context) (ports.Locker, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			return New(cfg.Layout().LocksDir(), cfg.LockPollInterval), nil
		},
	})
}
