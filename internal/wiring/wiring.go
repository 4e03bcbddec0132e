// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/conde/internal/adapters/cas"
	_ "go.trai.ch/conde/internal/adapters/config"
	_ "go.trai.ch/conde/internal/adapters/envs"
	_ "go.trai.ch/conde/internal/adapters/linker"
	_ "go.trai.ch/conde/internal/adapters/lock"
	_ "go.trai.ch/conde/internal/adapters/logger"
	_ "go.trai.ch/conde/internal/adapters/nodedist"
	_ "go.trai.ch/conde/internal/adapters/registry"
	// Register app and engine nodes.
	_ "go.trai.ch/conde/internal/app"
	_ "go.trai.ch/conde/internal/engine/gc"
)
