// Package testenv provides stores and loggers for tests.
//
// The relational store always runs on an in-memory SQLite database, so the
// default test run needs no external service. PostgreSQL and SurrealDB tests
// are enabled by pointing the environment variables below at live instances;
// without them those tests are skipped.
package testenv

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/fullstack/shopapp/pkg/store/relational"
	"github.com/fullstack/shopapp/pkg/store/surrealdb"
)

const (
	// EnvPostgresDSN is the environment variable holding a PostgreSQL DSN
	// for integration tests.
	EnvPostgresDSN = "SHOPAPP_TEST_POSTGRES_DSN"

	// EnvSurrealDBURL is the environment variable holding the SurrealDB URL
	// for integration tests.
	EnvSurrealDBURL = "SURREALDB_URL"

	// EnvSurrealDBUser and EnvSurrealDBPass default to root/root.
	EnvSurrealDBUser = "SURREALDB_USER"
	EnvSurrealDBPass = "SURREALDB_PASS"
)

// NewSQLiteStore opens a migrated store on a private in-memory database that
// is closed when the test ends.
func NewSQLiteStore(t testing.TB) *relational.Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	return open(t, relational.DriverSQLite, dsn)
}

// NewPostgresStore opens a migrated store on the database named by
// SHOPAPP_TEST_POSTGRES_DSN, or skips the test.
func NewPostgresStore(t testing.TB) *relational.Store {
	t.Helper()
	dsn := os.Getenv(EnvPostgresDSN)
	if dsn == "" {
		t.Skipf("%s not set", EnvPostgresDSN)
	}
	return open(t, relational.DriverPostgres, dsn)
}

func open(t testing.TB, driver, dsn string) *relational.Store {
	t.Helper()
	s, err := relational.Open(driver, dsn, relational.Options{})
	if err != nil {
		t.Fatalf("failed to open %s store: %v", driver, err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate %s store: %v", driver, err)
	}
	return s
}

// NewSurrealIndex connects to SURREALDB_URL, or skips the test. Each call
// uses its own table, which is removed when the test ends.
func NewSurrealIndex(t testing.TB) *surrealdb.ShopIndex {
	t.Helper()
	url := os.Getenv(EnvSurrealDBURL)
	if url == "" {
		t.Skipf("%s not set", EnvSurrealDBURL)
	}

	cfg := surrealdb.Config{
		URL:       url,
		Namespace: "shopapp_test",
		Database:  "shopapp_test",
		Username:  envOr(EnvSurrealDBUser, "root"),
		Password:  envOr(EnvSurrealDBPass, "root"),
		Table:     "shop_index_" + strings.ReplaceAll(uuid.NewString()[:8], "-", ""),
	}
	ctx := context.Background()
	idx, err := surrealdb.New(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect to SurrealDB: %v", err)
	}
	t.Cleanup(func() {
		_ = idx.Drop(context.Background())
		_ = idx.Close()
	})
	if err := idx.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate SurrealDB index: %v", err)
	}
	return idx
}

// Logger returns a logger that writes through t.Log, so output is only shown
// for failing or verbose tests.
func Logger(t testing.TB) zerolog.Logger {
	return zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
