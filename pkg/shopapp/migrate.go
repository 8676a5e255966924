package shopapp

import (
	"context"
	"fmt"
)

// Migrate creates or updates the relational schema, then defines the search
// index table and its indexes.
func (a *App) Migrate(ctx context.Context, cmd *MigrateCommand) error {
	a.logger.Info().Msg("running relational migrations")
	if err := a.store.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run relational migrations: %w", err)
	}

	a.logger.Info().Msg("defining search index")
	if err := a.index.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to define search index: %w", err)
	}
	a.logger.Info().Msg("migrations completed successfully")
	return nil
}
