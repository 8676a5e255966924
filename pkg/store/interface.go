// Package store defines the persistence abstractions of the catalog.
//
// Two kinds of stores exist and they are deliberately separate interfaces:
//
//   - [Store] is the relational, canonical store. It owns shops, products,
//     categories and the backfill latch, and is the only store with
//     transactional guarantees.
//   - [ShopIndex] is the search index: a denormalized, eventually consistent
//     copy of shops that supports substring name search combined with date
//     and vacation filters.
//
// Implementations live in sub-packages:
//
//   - [github.com/fullstack/shopapp/pkg/store/relational.Store]: GORM on
//     PostgreSQL (production) or SQLite (development and tests)
//   - [github.com/fullstack/shopapp/pkg/store/surrealdb.ShopIndex]: SurrealDB
//     through the official Go SDK
//   - [github.com/fullstack/shopapp/pkg/store/memindex.ShopIndex]: an in-memory
//     index for tests and local runs without SurrealDB
//
// # Missing records
//
// Get methods return (nil, nil) when the record does not exist. Callers
// decide whether absence is an error.
//
// # Context
//
// Every operation takes a context. Cancelling it aborts the underlying
// database call where the driver supports it.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/fullstack/shopapp/pkg/models"
)

// ErrReadOnly is returned by write operations while the application is in
// read-only mode.
var ErrReadOnly = errors.New("operation denied: application is in read-only mode")

// ErrNotFound is returned when a write targets a record that no longer exists.
var ErrNotFound = errors.New("record not found")

// ShopOrder selects the ordering of a shop listing.
type ShopOrder int

const (
	OrderByID ShopOrder = iota
	OrderByName
	OrderByCreatedAt
	OrderByNbProducts
)

func (o ShopOrder) String() string {
	switch o {
	case OrderByName:
		return "name"
	case OrderByCreatedAt:
		return "createdAt"
	case OrderByNbProducts:
		return "nbProducts"
	default:
		return "id"
	}
}

// ShopFilter holds the relational shop predicates. Nil fields do not filter.
//
// CreatedAfter and CreatedBefore are strict bounds unless InclusiveBounds is
// set, in which case both ends are included.
type ShopFilter struct {
	InVacations     *bool
	CreatedAfter    *models.Date
	CreatedBefore   *models.Date
	InclusiveBounds bool
}

// ShopSearch holds the search index predicates. All fields are required;
// defaults are applied by the caller.
type ShopSearch struct {
	Name          string
	CreatedAfter  models.Date
	CreatedBefore models.Date
	InVacations   bool
}

// ProductFilter narrows a product listing. Nil fields do not filter.
type ProductFilter struct {
	ShopID     *models.ShopID
	CategoryID *models.CategoryID
}

// ShopStore is the canonical store for shops.
type ShopStore interface {
	// SaveShop inserts the shop when its ID is zero and overwrites it
	// otherwise. The shop row and its opening hours are written in a single
	// transaction; previous opening hours are replaced. Overwriting a shop
	// that does not exist returns ErrNotFound.
	SaveShop(ctx context.Context, shop *models.Shop) error

	// GetShop loads a shop with its opening hours and products.
	GetShop(ctx context.Context, id models.ShopID) (*models.Shop, error)

	// DeleteShop removes the shop row and its opening hours. Products must
	// be detached first.
	DeleteShop(ctx context.Context, id models.ShopID) error

	// FindShops returns one page of shops matching the filter.
	FindShops(ctx context.Context, filter ShopFilter, order ShopOrder, page models.PageRequest) (*models.Page[models.Shop], error)

	// ListShopsUpdatedSince returns every shop modified at or after since,
	// oldest first.
	ListShopsUpdatedSince(ctx context.Context, since time.Time) ([]models.Shop, error)
}

// ProductStore is the canonical store for products.
type ProductStore interface {
	// SaveProduct inserts or overwrites a product and refreshes the product
	// count of the shops it leaves and joins.
	SaveProduct(ctx context.Context, product *models.Product) error
	GetProduct(ctx context.Context, id models.ProductID) (*models.Product, error)
	DeleteProduct(ctx context.Context, id models.ProductID) error
	FindProducts(ctx context.Context, filter ProductFilter, page models.PageRequest) (*models.Page[models.Product], error)

	// DetachProducts clears the shop reference of every product of the shop
	// and returns how many were detached.
	DetachProducts(ctx context.Context, shopID models.ShopID) (int64, error)
}

// CategoryStore is the canonical store for categories.
type CategoryStore interface {
	SaveCategory(ctx context.Context, category *models.Category) error
	GetCategory(ctx context.Context, id models.CategoryID) (*models.Category, error)

	// DeleteCategory clears the category of its products and removes it.
	DeleteCategory(ctx context.Context, id models.CategoryID) error
	FindCategories(ctx context.Context, page models.PageRequest) (*models.Page[models.Category], error)
}

// SyncStore persists the backfill latch.
type SyncStore interface {
	// IsSyncCompleted reports whether a completed sync tracker exists.
	IsSyncCompleted(ctx context.Context) (bool, error)

	// MarkSyncCompleted writes the completed sync tracker.
	MarkSyncCompleted(ctx context.Context) error
}

// Store is the relational store used by the catalog.
type Store interface {
	ShopStore
	ProductStore
	CategoryStore
	SyncStore

	// Migrate creates or updates the schema.
	Migrate(ctx context.Context) error
	// Ping checks connectivity.
	Ping(ctx context.Context) error
	Close() error
}

// ShopIndex is the search index mirror of shops.
type ShopIndex interface {
	// IndexShop writes the shop document. Indexing the same shop twice
	// replaces the document.
	IndexShop(ctx context.Context, shop *models.Shop) error

	// RemoveShop deletes the shop document. Removing an absent document is
	// not an error.
	RemoveShop(ctx context.Context, id models.ShopID) error

	// SearchShops matches name as a case-insensitive substring, created
	// dates strictly between the bounds, and the vacation flag.
	SearchShops(ctx context.Context, search ShopSearch, page models.PageRequest) (*models.Page[models.Shop], error)

	// Durable reports whether documents survive a restart. The backfill
	// latch is ignored for indexes that do not.
	Durable() bool

	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
