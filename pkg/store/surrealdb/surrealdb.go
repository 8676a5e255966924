// Package surrealdb implements the shop search index on SurrealDB.
//
// Each shop is mirrored as one document in the shop_index table, keyed by a
// RecordID built from the numeric shop ID, so writing the same shop twice
// replaces its document. The document is a flattened projection of the shop:
// the searchable fields (name, created_at, in_vacations) plus the product
// count and opening hours needed to render search results without a round
// trip to the relational store.
//
// # Encoding
//
// The connection uses the surrealcbor codec so time.Time values travel as
// native SurrealDB datetimes. Opening hours are encoded by
// [github.com/fullstack/shopapp/pkg/models.LocalTime] as milliseconds since
// midnight.
//
// # Query safety
//
// All user-provided values are bound as $parameters. The only interpolated
// identifier is the table name, which comes from configuration.
package surrealdb

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/connection/gorillaws"
	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
	"github.com/surrealdb/surrealdb.go/surrealcbor"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

// Config locates the SurrealDB instance holding the index.
type Config struct {
	URL       string
	Namespace string
	Database  string
	Username  string
	Password  string
	// Table defaults to models.ShopIndexTable.
	Table string
}

// ShopIndex implements store.ShopIndex on SurrealDB.
type ShopIndex struct {
	db    *surrealdb.DB
	table string
}

var _ store.ShopIndex = (*ShopIndex)(nil)

type hoursDocument struct {
	Day     int              `json:"day"`
	OpenAt  models.LocalTime `json:"open_at"`
	CloseAt models.LocalTime `json:"close_at"`
}

type shopDocument struct {
	ID           *surrealdb_models.RecordID `json:"id,omitempty"`
	ShopID       uint64                     `json:"shop_id"`
	Name         string                     `json:"name"`
	CreatedAt    time.Time                  `json:"created_at"`
	InVacations  bool                       `json:"in_vacations"`
	NbProducts   int64                      `json:"nb_products"`
	OpeningHours []hoursDocument            `json:"opening_hours"`
}

type countRow struct {
	Total int64 `json:"total"`
}

// New connects, signs in and selects the namespace and database.
func New(ctx context.Context, cfg Config) (*ShopIndex, error) {
	u, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	var db *surrealdb.DB
	switch u.Scheme {
	case "ws", "wss":
		conf := connection.NewConfig(u)
		codec := surrealcbor.New()
		conf.Marshaler = codec
		conf.Unmarshaler = codec
		db, err = surrealdb.FromConnection(ctx, gorillaws.New(conf))
	case "http", "https":
		db, err = surrealdb.FromEndpointURLString(ctx, cfg.URL)
	default:
		return nil, fmt.Errorf("unsupported SurrealDB URL scheme %q", u.Scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SurrealDB: %w", err)
	}

	if err := db.Use(ctx, cfg.Namespace, cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to use namespace/database: %w", err)
	}

	if cfg.Username != "" && cfg.Password != "" {
		token, err := db.SignIn(ctx, &surrealdb.Auth{
			Username: cfg.Username,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to sign in: %w", err)
		}
		if err := db.Authenticate(ctx, token); err != nil {
			return nil, fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	table := cfg.Table
	if table == "" {
		table = models.ShopIndexTable
	}
	return &ShopIndex{db: db, table: table}, nil
}

// Migrate defines the index table and the indexes used by SearchShops.
func (s *ShopIndex) Migrate(ctx context.Context) error {
	query := fmt.Sprintf(`
		DEFINE TABLE IF NOT EXISTS %[1]s SCHEMALESS;
		DEFINE INDEX IF NOT EXISTS %[1]s_shop_id ON %[1]s FIELDS shop_id UNIQUE;
		DEFINE INDEX IF NOT EXISTS %[1]s_created_at ON %[1]s FIELDS created_at;
		DEFINE INDEX IF NOT EXISTS %[1]s_in_vacations ON %[1]s FIELDS in_vacations;`, s.table)
	if _, err := surrealdb.Query[any](ctx, s.db, query, nil); err != nil {
		return fmt.Errorf("failed to define shop index: %w", err)
	}
	return nil
}

// Drop removes the index table and every document in it.
func (s *ShopIndex) Drop(ctx context.Context) error {
	if _, err := surrealdb.Query[[]any](ctx, s.db, "REMOVE TABLE IF EXISTS "+s.table, nil); err != nil {
		return fmt.Errorf("failed to remove table %s: %w", s.table, err)
	}
	return nil
}

func (s *ShopIndex) Durable() bool { return true }

func (s *ShopIndex) Ping(ctx context.Context) error {
	_, err := surrealdb.Query[bool](ctx, s.db, "RETURN true", nil)
	return err
}

// Close closes the database connection
func (s *ShopIndex) Close() error {
	return s.db.Close(context.Background())
}

func (s *ShopIndex) recordID(id models.ShopID) surrealdb_models.RecordID {
	return surrealdb_models.NewRecordID(s.table, uint64(id))
}

// IndexShop upserts the shop document.
func (s *ShopIndex) IndexShop(ctx context.Context, shop *models.Shop) error {
	doc := toDocument(shop)
	if _, err := surrealdb.Upsert[shopDocument](ctx, s.db, s.recordID(shop.ID), doc); err != nil {
		return fmt.Errorf("failed to index shop %s: %w", shop.ID, err)
	}
	return nil
}

// RemoveShop deletes the shop document if it exists.
func (s *ShopIndex) RemoveShop(ctx context.Context, id models.ShopID) error {
	if _, err := surrealdb.Delete[shopDocument](ctx, s.db, s.recordID(id)); err != nil {
		if handleNotFound(err) == nil {
			return nil
		}
		return fmt.Errorf("failed to remove shop %s from index: %w", id, err)
	}
	return nil
}

// SearchShops runs a case-insensitive substring search on name combined with
// strict created_at bounds and vacation equality.
func (s *ShopIndex) SearchShops(ctx context.Context, search store.ShopSearch, page models.PageRequest) (*models.Page[models.Shop], error) {
	where := `string::contains(string::lowercase(name), $name)
		AND created_at > $after
		AND created_at < $before
		AND in_vacations = $in_vacations`
	params := map[string]any{
		"name":         strings.ToLower(search.Name),
		"after":        search.CreatedAfter.Time(),
		"before":       search.CreatedBefore.Time(),
		"in_vacations": search.InVacations,
	}

	countQuery := fmt.Sprintf("SELECT count() AS total FROM %s WHERE %s GROUP ALL", s.table, where)
	counted, err := surrealdb.Query[[]countRow](ctx, s.db, countQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to count indexed shops: %w", err)
	}
	var total int64
	if counted != nil && len(*counted) > 0 && len((*counted)[0].Result) > 0 {
		total = (*counted)[0].Result[0].Total
	}

	selectQuery := fmt.Sprintf("SELECT * FROM %s WHERE %s ORDER BY shop_id ASC", s.table, where)
	if !page.Unpaged {
		selectQuery += " LIMIT $limit START $start"
		params["limit"] = page.Size
		params["start"] = page.Offset()
	}
	result, err := surrealdb.Query[[]shopDocument](ctx, s.db, selectQuery, params)
	if err != nil {
		return nil, fmt.Errorf("failed to search shops: %w", err)
	}

	var shops []models.Shop
	if result != nil && len(*result) > 0 {
		for i := range (*result)[0].Result {
			shops = append(shops, (*result)[0].Result[i].toShop())
		}
	}
	return models.NewPage(shops, page, total), nil
}

func toDocument(shop *models.Shop) shopDocument {
	hours := make([]hoursDocument, 0, len(shop.OpeningHours))
	for _, h := range shop.OpeningHours {
		hours = append(hours, hoursDocument{Day: h.Day, OpenAt: h.OpenAt, CloseAt: h.CloseAt})
	}
	return shopDocument{
		ShopID:       uint64(shop.ID),
		Name:         shop.Name,
		CreatedAt:    shop.CreatedAt.Time(),
		InVacations:  shop.InVacations,
		NbProducts:   shop.NbProducts,
		OpeningHours: hours,
	}
}

func (d *shopDocument) toShop() models.Shop {
	shop := models.Shop{
		ID:           models.ShopID(d.ShopID),
		Name:         d.Name,
		CreatedAt:    models.DateOf(d.CreatedAt),
		InVacations:  d.InVacations,
		NbProducts:   d.NbProducts,
		OpeningHours: make([]models.OpeningHours, 0, len(d.OpeningHours)),
	}
	for _, h := range d.OpeningHours {
		shop.OpeningHours = append(shop.OpeningHours, models.OpeningHours{
			ShopID:  shop.ID,
			Day:     h.Day,
			OpenAt:  h.OpenAt,
			CloseAt: h.CloseAt,
		})
	}
	return shop
}

// handleNotFound maps the SDK's empty-result errors to nil.
func handleNotFound(err error) error {
	if err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "Expected a single or multiple results but got 0") ||
			strings.Contains(errStr, "cannot unmarshal array into Go value") {
			return nil
		}
	}
	return err
}
