package shopapp_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullstack/shopapp/pkg/shopapp"
)

func TestParseDefaults(t *testing.T) {
	cmd, config, err := shopapp.Parse([]string{"migrate"})
	require.NoError(t, err)
	assert.IsType(t, &shopapp.MigrateCommand{}, cmd)
	assert.Equal(t, "migrate", cmd.Name())

	assert.Equal(t, "postgres", config.Database.Driver)
	assert.Equal(t, "surreal", config.Index.Backend)
	assert.Equal(t, "ws://localhost:8000/rpc", config.Index.URL)
	assert.Equal(t, "8080", config.Server.Port)
	assert.Equal(t, 5*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, "sync", config.Backfill.Mode)
	assert.Equal(t, 4, config.Backfill.Workers)
	assert.True(t, config.Backfill.OnStartup)
	assert.False(t, config.ReadOnly)
}

func TestParseEnvironmentAndFlags(t *testing.T) {
	t.Setenv("SHOPAPP_DATABASE_DRIVER", "sqlite")
	t.Setenv("SHOPAPP_DATABASE_DSN", "file:test.db")
	t.Setenv("SHOPAPP_INDEX_BACKEND", "memory")
	t.Setenv("SHOPAPP_SERVER_PORT", "7070")
	t.Setenv("SHOPAPP_BACKFILL_WORKERS", "8")

	cmd, config, err := shopapp.Parse([]string{"--port", "9090", "--read-only", "run"})
	require.NoError(t, err)
	assert.IsType(t, &shopapp.RunCommand{}, cmd)

	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "file:test.db", config.Database.DSN)
	assert.Equal(t, "memory", config.Index.Backend)
	assert.Equal(t, 8, config.Backfill.Workers)
	// Flags win over the environment.
	assert.Equal(t, "9090", config.Server.Port)
	assert.True(t, config.ReadOnly)
}

func TestParseConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shopapp.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  dsn: file:shop.db
index:
  backend: memory
  reconcile_schedule: "@every 10m"
backfill:
  mode: create
server:
  shutdown_timeout: 15s
log:
  level: debug
`), 0o600))

	_, config, err := shopapp.Parse([]string{"--config", path, "backfill"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", config.Database.Driver)
	assert.Equal(t, "@every 10m", config.Index.ReconcileSchedule)
	assert.Equal(t, "create", config.Backfill.Mode)
	assert.Equal(t, 15*time.Second, config.Server.ShutdownTimeout)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestParseCommands(t *testing.T) {
	cmd, _, err := shopapp.Parse([]string{"backfill", "--force", "--mode", "create"})
	require.NoError(t, err)
	require.IsType(t, &shopapp.BackfillCommand{}, cmd)
	backfill := cmd.(*shopapp.BackfillCommand)
	assert.True(t, backfill.Force)
	assert.Equal(t, "create", backfill.Mode)

	cmd, _, err = shopapp.Parse([]string{"reconcile", "--since", "6h"})
	require.NoError(t, err)
	require.IsType(t, &shopapp.ReconcileCommand{}, cmd)
	assert.Equal(t, "6h", cmd.(*shopapp.ReconcileCommand).Since)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want string
	}{
		{name: "no subcommand", args: nil, want: "subcommand required"},
		{name: "unknown subcommand", args: []string{"serve"}, want: "unknown command"},
		{name: "unknown flag", args: []string{"run", "--nope"}, want: "unknown flag"},
		{name: "bad driver", args: []string{"--db-driver", "mysql", "run"}, want: "database.driver"},
		{name: "driver alias", args: []string{"--db-driver", "postgresql", "run"}, want: "database.driver"},
		{name: "bad backend", args: []string{"--index-backend", "elastic", "run"}, want: "index.backend"},
		{name: "bad backfill mode", args: []string{"run"}, env: map[string]string{"SHOPAPP_BACKFILL_MODE": "copy"}, want: "backfill.mode"},
		{name: "bad schedule", args: []string{"run"}, env: map[string]string{"SHOPAPP_INDEX_RECONCILE_SCHEDULE": "sometimes"}, want: "reconcile_schedule"},
		{name: "missing config file", args: []string{"--config", "/does/not/exist.yaml", "run"}, want: "config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, _, err := shopapp.Parse(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseHelp(t *testing.T) {
	cmd, config, err := shopapp.Parse([]string{"--help"})
	require.NoError(t, err)
	assert.Nil(t, cmd)
	assert.Nil(t, config)
}

func TestParseSince(t *testing.T) {
	now := time.Date(2024, time.May, 10, 12, 0, 0, 0, time.UTC)
	fallback := now.Add(-24 * time.Hour)

	tests := []struct {
		in   string
		want time.Time
	}{
		{"", fallback},
		{"  ", fallback},
		{"2024-05-01T08:30:00Z", time.Date(2024, time.May, 1, 8, 30, 0, 0, time.UTC)},
		{"2024-05-01", time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)},
		{"6h", now.Add(-6 * time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := shopapp.ParseSince(tt.in, now, fallback)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	for _, bad := range []string{"yesterday", "-6h", "2024-05-32"} {
		_, err := shopapp.ParseSince(bad, now, fallback)
		assert.Error(t, err, bad)
	}
}

func TestMainCommands(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "shop.db")
	base := []string{"--db-driver", "sqlite", "--db-dsn", dsn, "--index-backend", "memory", "--log-level", "error"}
	ctx := context.Background()

	require.NoError(t, shopapp.Main(ctx, append(base, "migrate")))
	require.NoError(t, shopapp.Main(ctx, append(base, "backfill")))
	require.NoError(t, shopapp.Main(ctx, append(base, "backfill", "--force", "--mode", "create")))
	require.NoError(t, shopapp.Main(ctx, append(base, "reconcile", "--since", "1h")))

	err := shopapp.Main(ctx, append(base, "backfill", "--mode", "copy"))
	assert.Error(t, err)
}

func TestMainRunShutsDown(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "shop.db")
	base := []string{"--db-driver", "sqlite", "--db-dsn", dsn, "--index-backend", "memory", "--log-level", "error"}
	require.NoError(t, shopapp.Main(context.Background(), append(base, "migrate")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- shopapp.Main(ctx, append(base, "--port", "0", "run"))
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
