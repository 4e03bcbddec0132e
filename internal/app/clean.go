package app

import (
	"context"
	"fmt"

	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/engine/gc"
)

// CleanOptions configuration for the Clean method.
type CleanOptions struct {
	// DryRun lists unused packages without removing them.
	DryRun bool
}

// Clean removes every store package that no environment links.
func (a *App) Clean(ctx context.Context, opts CleanOptions) ([]domain.PackageID, error) {
	removed, err := a.collector.CollectUnused(ctx, gc.Options{DryRun: opts.DryRun})

	switch {
	case len(removed) == 0 && err == nil:
		a.logger.Info("no unused packages")
	case opts.DryRun:
		a.logger.Info(fmt.Sprintf("%d unused package(s) would be removed", len(removed)))
	case len(removed) > 0:
		a.logger.Success(fmt.Sprintf("removed %d unused package(s)", len(removed)))
	}
	return removed, err
}
