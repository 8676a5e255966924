// Package shopapp wires the catalog into a runnable application: configuration,
// command line, HTTP API and index maintenance jobs.
//
// The relational store is canonical. Every committed shop write is mirrored
// into the search index, and shop listings are answered by the query router
// in [github.com/fullstack/shopapp/pkg/catalog], which sends name searches to
// the index and everything else to the relational store.
//
// # Commands
//
//	shopapp run         # backfill the index once, then serve the API
//	shopapp migrate     # create or update the relational schema and the index table
//	shopapp backfill    # populate the index now (--force ignores the latch)
//	shopapp reconcile   # re-mirror shops modified since --since
//
// # Configuration
//
// Settings are read, in increasing priority, from built-in defaults, an
// optional YAML file (--config), SHOPAPP_* environment variables and command
// line flags. Nested keys map to environment variables by upper-casing them
// and replacing dots with underscores:
//
//	database.driver            SHOPAPP_DATABASE_DRIVER        postgres | sqlite
//	database.dsn               SHOPAPP_DATABASE_DSN
//	index.backend              SHOPAPP_INDEX_BACKEND          surreal | memory
//	index.url                  SHOPAPP_INDEX_URL              ws://localhost:8000/rpc
//	index.reconcile_schedule   SHOPAPP_INDEX_RECONCILE_SCHEDULE
//	backfill.mode              SHOPAPP_BACKFILL_MODE          sync | create
//	server.port                SHOPAPP_SERVER_PORT            8080
//	read_only                  SHOPAPP_READ_ONLY
//
// Call [Main] from tests to exercise the whole application without building
// the binary.
package shopapp
