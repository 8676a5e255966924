package shopapp

import (
	"context"
	"fmt"
	"time"

	"github.com/fullstack/shopapp/pkg/catalog"
)

// Backfill copies every stored shop into the search index unless a previous
// backfill completed. cmd.Force ignores that latch and cmd.Mode overrides the
// configured backfill path.
func (a *App) Backfill(ctx context.Context, cmd *BackfillCommand) error {
	modeName := a.config.Backfill.Mode
	if cmd.Mode != "" {
		modeName = cmd.Mode
	}
	mode, err := catalog.ParseBackfillMode(modeName)
	if err != nil {
		return err
	}

	result, err := catalog.NewBackfiller(a.service, catalog.BackfillOptions{
		Mode:    mode,
		Workers: a.config.Backfill.Workers,
		Force:   cmd.Force,
	}).Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed: %w", err)
	}
	if result.Failed > 0 {
		a.logger.Warn().
			Int64("failed", result.Failed).
			Msg("some shops were not indexed; run reconcile to retry them")
	}
	return nil
}

// Reconcile re-mirrors every shop modified at or after since.
func (a *App) Reconcile(ctx context.Context, since time.Time) error {
	result, err := catalog.NewReconciler(a.service, since).ReconcileSince(ctx, since)
	if err != nil {
		return fmt.Errorf("reconcile failed: %w", err)
	}
	if result.Failed > 0 {
		return fmt.Errorf("reconcile left %d of %d shops unindexed", result.Failed, result.Total)
	}
	return nil
}
