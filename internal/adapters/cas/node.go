package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/conde/internal/adapters/config"
	"go.trai.ch/conde/internal/adapters/lock"
	"go.trai.ch/conde/internal/adapters/logger"
	"go.trai.ch/conde/internal/adapters/registry"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
)

// NodeID is the unique identifier for the package store Graft node.
const NodeID graft.ID = "adapter.package_store"

func init() {
	graft.Register(graft.Node[ports.PackageStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.NodeID, registry.NodeID, lock.NodeID, logger.NodeID},
		Run: func(ctx context.Context) (ports.PackageStore, error) {
			cfg, err := graft.Dep[*domain.Config](ctx)
			if err != nil {
				return nil, err
			}
			client, err := graft.Dep[ports.RegistryClient](ctx)
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
			return NewStore(cfg.Layout(), client, locker, log), nil
		},
	})
}
