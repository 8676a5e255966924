package shopapp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/fullstack/shopapp/pkg/catalog"
	"github.com/fullstack/shopapp/pkg/logger"
	"github.com/fullstack/shopapp/pkg/store"
	"github.com/fullstack/shopapp/pkg/store/memindex"
	"github.com/fullstack/shopapp/pkg/store/relational"
	"github.com/fullstack/shopapp/pkg/store/surrealdb"
)

// App holds the application state shared by every command.
type App struct {
	config   *Config
	store    store.Store
	index    store.ShopIndex
	service  *catalog.Service
	registry *prometheus.Registry
	logs     *logger.LogData
	logger   zerolog.Logger
	readOnly atomic.Bool
}

// New builds the logger, connects both stores and wires the catalog.
func New(ctx context.Context, config *Config) (*App, error) {
	logs, err := logger.New().
		WithLevel(config.Log.Level).
		FromPath(config.Log.File).
		Console(config.Log.Console).
		Make()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	log := logs.Logger

	rel, err := relational.Open(config.Database.Driver, config.Database.DSN, relational.Options{
		MaxOpenConns:    config.Database.MaxOpenConns,
		MaxIdleConns:    config.Database.MaxIdleConns,
		ConnMaxLifetime: config.Database.ConnMaxLifetime,
		LogSQL:          config.Database.LogSQL,
	})
	if err != nil {
		_ = logs.Close()
		return nil, fmt.Errorf("failed to open %s database: %w", config.Database.Driver, err)
	}
	log.Info().Str("driver", rel.Driver()).Msg("connected to relational database")

	index, err := openIndex(ctx, config.Index)
	if err != nil {
		_ = rel.Close()
		_ = logs.Close()
		return nil, err
	}
	log.Info().Str("backend", config.Index.Backend).Msg("connected to search index")

	return NewWithStores(config, rel, index, logs), nil
}

func openIndex(ctx context.Context, config IndexConfig) (store.ShopIndex, error) {
	switch config.Backend {
	case IndexBackendMemory:
		return memindex.New(), nil
	case IndexBackendSurreal:
		index, err := surrealdb.New(ctx, surrealdb.Config{
			URL:       config.URL,
			Namespace: config.Namespace,
			Database:  config.Database,
			Username:  config.Username,
			Password:  config.Password,
			Table:     config.Table,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
		}
		return index, nil
	default:
		return nil, fmt.Errorf("unknown index backend %q", config.Backend)
	}
}

// NewWithStores wires an application on already opened stores. The App takes
// ownership of both stores and of logs.
func NewWithStores(config *Config, rel store.Store, index store.ShopIndex, logs *logger.LogData) *App {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	app := &App{
		config:   config,
		index:    index,
		registry: registry,
		logs:     logs,
		logger:   logs.Logger,
	}
	app.readOnly.Store(config.ReadOnly)

	// Writes are rejected at the store boundary while read-only mode is on.
	app.store = store.NewReadOnlyStore(rel, app.IsReadOnly)
	app.service = catalog.NewService(app.store, index, app.logger, catalog.NewMetrics(registry))
	return app
}

// Close closes both stores and the log file.
func (a *App) Close() error {
	var errs []error
	if a.index != nil {
		errs = append(errs, a.index.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logs != nil {
		errs = append(errs, a.logs.Close())
	}
	return errors.Join(errs...)
}

// Service returns the catalog service.
func (a *App) Service() *catalog.Service {
	return a.service
}

// Handler returns the HTTP handler serving the API.
func (a *App) Handler() http.Handler {
	return a.routes()
}

// SetReadOnly turns read-only mode on or off. The change applies to the next
// write without a restart.
func (a *App) SetReadOnly(readOnly bool) {
	a.readOnly.Store(readOnly)
	a.logger.Warn().Bool("read_only", readOnly).Msg("application read-only mode changed")
}

// IsReadOnly reports whether writes are currently rejected.
func (a *App) IsReadOnly() bool {
	return a.readOnly.Load()
}
