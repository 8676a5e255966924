package shopapp

// Command is one application operation together with its options. Parse
// produces a Command and Main dispatches it on its concrete type.
type Command interface {
	// Name returns the CLI sub-command name.
	Name() string
}

// RunCommand starts the HTTP server. Unless backfill.on_startup is disabled,
// the index backfill runs first.
type RunCommand struct{}

func (c *RunCommand) Name() string {
	return "run"
}

// MigrateCommand creates or updates the relational schema and defines the
// index table. It is safe to run repeatedly.
type MigrateCommand struct{}

func (c *MigrateCommand) Name() string {
	return "migrate"
}

// BackfillCommand populates the search index from the relational store.
type BackfillCommand struct {
	// Force ignores the completion latch.
	Force bool
	// Mode overrides backfill.mode when set.
	Mode string
}

func (c *BackfillCommand) Name() string {
	return "backfill"
}

// ReconcileCommand re-mirrors every shop modified since a point in time.
type ReconcileCommand struct {
	// Since is an RFC3339 timestamp, a YYYY-MM-DD date or a look-back
	// duration such as "6h". Empty means the last 24 hours.
	Since string
}

func (c *ReconcileCommand) Name() string {
	return "reconcile"
}
