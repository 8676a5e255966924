// Package relational implements [github.com/fullstack/shopapp/pkg/store.Store]
// with GORM.
//
// PostgreSQL is the production database. SQLite (pure Go driver) is supported
// for local development and tests; both share every query in this package.
//
// # Transactions
//
// Writes that touch more than one row run inside a single GORM transaction:
// a shop and its opening hours, a product and the product counts of the shops
// it leaves and joins, a category and the products it is removed from.
//
// # Product counts
//
// shops.nb_products is a denormalized count of the products referencing the
// shop. It is recomputed with a correlated subquery after every write that can
// change it, and the shop's updated_at is bumped so the index reconciler
// picks the new count up.
package relational

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// LogSQL enables GORM statement logging.
	LogSQL bool
}

// Store implements the store.Store interface on top of GORM.
type Store struct {
	db     *gorm.DB
	driver string
}

var _ store.Store = (*Store)(nil)

// Open connects to the database selected by driver.
func Open(driver, dsn string, opts Options) (*Store, error) {
	dialector, err := dialectorFor(driver, dsn)
	if err != nil {
		return nil, err
	}

	logLevel := logger.Silent
	if opts.LogSQL {
		logLevel = logger.Info
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Default.LogMode(logLevel),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database handle: %w", err)
	}
	if driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and avoids
		// SQLITE_BUSY on concurrent writers.
		sqlDB.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	return &Store{db: db, driver: driver}, nil
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverPostgres:
		return postgres.Open(dsn), nil
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q (expected %s or %s)", driver, DriverPostgres, DriverSQLite)
	}
}

// Driver returns the name of the underlying database driver.
func (s *Store) Driver() string {
	return s.driver
}

// Migrate creates missing tables, columns and indexes with GORM AutoMigrate.
// It never drops data.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.Tables...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// IsSyncCompleted reports whether the backfill latch has been written.
func (s *Store) IsSyncCompleted(ctx context.Context) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.SyncTracker{}).
		Where("sync_completed = ?", true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to read sync tracker: %w", err)
	}
	return count > 0, nil
}

// MarkSyncCompleted writes the backfill latch.
func (s *Store) MarkSyncCompleted(ctx context.Context) error {
	tracker := &models.SyncTracker{
		SyncCompleted: true,
		CompletedAt:   time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(tracker).Error; err != nil {
		return fmt.Errorf("failed to write sync tracker: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// refreshProductCounts recomputes shops.nb_products for the given shops.
func refreshProductCounts(tx *gorm.DB, ids ...models.ShopID) error {
	var targets []models.ShopID
	for _, id := range ids {
		if !id.IsZero() {
			targets = append(targets, id)
		}
	}
	if len(targets) == 0 {
		return nil
	}
	return tx.Model(&models.Shop{}).
		Where("id IN ?", targets).
		UpdateColumns(map[string]any{
			"nb_products": gorm.Expr("(SELECT COUNT(*) FROM products WHERE products.shop_id = shops.id)"),
			"updated_at":  time.Now().UTC(),
		}).Error
}

// paginate applies offset and limit unless the request is unpaged.
func paginate(q *gorm.DB, page models.PageRequest) *gorm.DB {
	if page.Unpaged {
		return q
	}
	return q.Offset(page.Offset()).Limit(page.Size)
}
