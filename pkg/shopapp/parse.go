package shopapp

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/fullstack/shopapp/pkg/models"
)

// Parse parses command line arguments and returns the command to execute and
// the configuration shared by all commands.
//
// A nil Command with a nil error means nothing has to run, for example after
// --help.
func Parse(args []string) (Command, *Config, error) {
	v := newViper()

	var (
		cmd        Command
		configPath string
	)

	root := &cobra.Command{
		Use:           "shopapp",
		Short:         "Shop catalog backend with a SurrealDB search index",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			return fmt.Errorf("subcommand required\n\n%s", c.UsageString())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "YAML configuration file")
	flags.String("port", "", "HTTP server port")
	flags.String("db-driver", "", "Relational database driver: postgres or sqlite")
	flags.String("db-dsn", "", "Relational database DSN")
	flags.String("index-backend", "", "Search index backend: surreal or memory")
	flags.String("index-url", "", "SurrealDB URL")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("log-console", false, "Human readable log output")
	flags.Bool("read-only", false, "Start with writes rejected")

	for key, flag := range map[string]string{
		"server.port":     "port",
		"database.driver": "db-driver",
		"database.dsn":    "db-dsn",
		"index.backend":   "index-backend",
		"index.url":       "index-url",
		"log.level":       "log-level",
		"log.console":     "log-console",
		"read_only":       "read-only",
	} {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			return nil, nil, fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}

	backfill := &BackfillCommand{}
	reconcile := &ReconcileCommand{}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Backfill the search index if needed, then serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cmd = &RunCommand{}
			return nil
		},
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the relational schema and the index table",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cmd = &MigrateCommand{}
			return nil
		},
	}
	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Copy every stored shop into the search index",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cmd = backfill
			return nil
		},
	}
	backfillCmd.Flags().BoolVar(&backfill.Force, "force", false, "Run even if a previous backfill completed")
	backfillCmd.Flags().StringVar(&backfill.Mode, "mode", "", "Backfill path: sync or create (default from backfill.mode)")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Re-mirror shops modified since a point in time",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cmd = reconcile
			return nil
		},
	}
	reconcileCmd.Flags().StringVar(&reconcile.Since, "since", "", "RFC3339 time, YYYY-MM-DD date or look-back duration (default 24h)")

	root.AddCommand(runCmd, migrateCmd, backfillCmd, reconcileCmd)
	// A nil slice would make cobra fall back to os.Args.
	root.SetArgs(append([]string{}, args...))

	if err := root.Execute(); err != nil {
		return nil, nil, err
	}
	if cmd == nil {
		return nil, nil, nil
	}

	config, err := loadConfig(v, configPath)
	if err != nil {
		return nil, nil, err
	}
	return cmd, config, nil
}

// ParseSince resolves a reconcile starting point relative to now. It accepts
// an RFC3339 timestamp, a YYYY-MM-DD date (midnight UTC) or a positive
// duration to look back from now. An empty string yields defaultTime.
func ParseSince(s string, now, defaultTime time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultTime, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if d, err := models.ParseDate(s); err == nil {
		return d.Time(), nil
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return now.Add(-d), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: expected RFC3339, YYYY-MM-DD or a duration such as 6h", s)
}
