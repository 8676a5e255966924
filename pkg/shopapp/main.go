package shopapp

import (
	"context"
	"fmt"
	"time"
)

// Main is the entry point of the shopapp binary. It parses args, builds the
// application and executes the selected command until it finishes or ctx is
// cancelled.
//
// Main can be called from tests without building the binary.
//
//	shopapp migrate
//	shopapp --config shopapp.yaml run
//	SHOPAPP_INDEX_BACKEND=memory shopapp run --port 9090
//	shopapp backfill --force --mode create
//	shopapp reconcile --since 6h
func Main(ctx context.Context, args []string) error {
	cmd, config, err := Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse configuration: %w", err)
	}
	if cmd == nil {
		return nil
	}

	app, err := New(ctx, config)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}
	defer app.Close()

	switch c := cmd.(type) {
	case *MigrateCommand:
		if err := app.Migrate(ctx, c); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	case *RunCommand:
		if err := app.Run(ctx, c); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case *BackfillCommand:
		if err := app.Backfill(ctx, c); err != nil {
			return err
		}
	case *ReconcileCommand:
		now := time.Now().UTC()
		since, err := ParseSince(c.Since, now, now.Add(-24*time.Hour))
		if err != nil {
			return fmt.Errorf("invalid since time: %w", err)
		}
		if err := app.Reconcile(ctx, since); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown command type: %T", cmd)
	}

	return nil
}
