package catalog

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

// Service is the entry point of the catalog. It keeps the relational store
// canonical and mirrors committed shops into the search index.
type Service struct {
	store   store.Store
	index   store.ShopIndex
	router  *Router
	logger  zerolog.Logger
	metrics *Metrics
}

// NewService wires the catalog on top of the relational store and the search
// index. A nil metrics value records into unregistered collectors.
func NewService(st store.Store, index store.ShopIndex, logger zerolog.Logger, metrics *Metrics) *Service {
	if metrics == nil {
		metrics = NewMetrics(nil)
	}
	return &Service{
		store:   st,
		index:   index,
		router:  NewRouter(st, index),
		logger:  logger.With().Str("component", "catalog").Logger(),
		metrics: metrics,
	}
}

// Router returns the shop query router.
func (s *Service) Router() *Router {
	return s.router
}

// CreateShop validates and inserts a new shop, then mirrors the stored record
// into the search index. Any ID carried by shop is ignored.
//
// A failed index write does not undo the insert: it is logged and counted,
// and the committed shop is returned.
func (s *Service) CreateShop(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	shop.ID = 0
	saved, err := s.persistShop(ctx, "create shop", shop)
	if err != nil {
		return nil, err
	}
	_ = s.mirror(ctx, "create shop", saved)
	return saved, nil
}

// UpdateShop overwrites an existing shop with the full entity given. A zero
// CreatedAt keeps the stored creation date.
func (s *Service) UpdateShop(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	if shop.ID.IsZero() {
		return nil, &NotFoundError{Entity: "shop", ID: 0}
	}
	existing, err := s.GetShop(ctx, shop.ID)
	if err != nil {
		return nil, err
	}
	if shop.CreatedAt.IsZero() {
		shop.CreatedAt = existing.CreatedAt
	}
	saved, err := s.persistShop(ctx, "update shop", shop)
	if err != nil {
		return nil, err
	}
	_ = s.mirror(ctx, "update shop", saved)
	return saved, nil
}

// ReindexThroughCreate runs a stored shop through the create persistence
// path again: validation, save, re-read and mirror. Unlike CreateShop it keeps
// the shop ID and reports index failures.
func (s *Service) ReindexThroughCreate(ctx context.Context, shop *models.Shop) (*models.Shop, error) {
	saved, err := s.persistShop(ctx, "reindex shop", shop)
	if err != nil {
		return nil, err
	}
	if err := s.mirror(ctx, "reindex shop", saved); err != nil {
		return saved, persistenceError("reindex shop", err)
	}
	return saved, nil
}

// SyncShop writes shop to the search index as is.
func (s *Service) SyncShop(ctx context.Context, shop *models.Shop) error {
	if err := s.index.IndexShop(ctx, shop); err != nil {
		return persistenceError("sync shop", err)
	}
	return nil
}

// persistShop validates and saves shop, then re-reads it so the returned
// record carries every generated field.
func (s *Service) persistShop(ctx context.Context, op string, shop *models.Shop) (*models.Shop, error) {
	if err := validateShop(shop); err != nil {
		return nil, err
	}
	if err := s.store.SaveShop(ctx, shop); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, &NotFoundError{Entity: "shop", ID: uint64(shop.ID)}
		}
		return nil, persistenceError(op, err)
	}

	saved, err := s.store.GetShop(ctx, shop.ID)
	if err != nil {
		return nil, persistenceError(op, err)
	}
	if saved == nil {
		return nil, &NotFoundError{Entity: "shop", ID: uint64(shop.ID)}
	}
	return saved, nil
}

// mirror writes the shop to the index, logging and counting failures.
func (s *Service) mirror(ctx context.Context, op string, shop *models.Shop) error {
	err := s.index.IndexShop(ctx, shop)
	if err != nil {
		s.metrics.MirrorFailures.WithLabelValues("index").Inc()
		s.logger.Warn().Err(err).
			Str("op", op).
			Stringer("shop_id", shop.ID).
			Msg("search index write failed; relational write kept")
	}
	return err
}

// DeleteShop detaches the products of the shop, deletes it and removes its
// index document. A failed index removal is logged and counted only.
func (s *Service) DeleteShop(ctx context.Context, id models.ShopID) error {
	if _, err := s.GetShop(ctx, id); err != nil {
		return err
	}

	detached, err := s.store.DetachProducts(ctx, id)
	if err != nil {
		return persistenceError("delete shop", err)
	}
	if err := s.store.DeleteShop(ctx, id); err != nil {
		return persistenceError("delete shop", err)
	}
	s.logger.Debug().Stringer("shop_id", id).Int64("detached_products", detached).Msg("shop deleted")

	if err := s.index.RemoveShop(ctx, id); err != nil {
		s.metrics.MirrorFailures.WithLabelValues("remove").Inc()
		s.logger.Warn().Err(err).Stringer("shop_id", id).Msg("search index removal failed")
	}
	return nil
}

// GetShop returns the shop with its opening hours and products.
func (s *Service) GetShop(ctx context.Context, id models.ShopID) (*models.Shop, error) {
	shop, err := s.store.GetShop(ctx, id)
	if err != nil {
		return nil, persistenceError("get shop", err)
	}
	if shop == nil {
		return nil, &NotFoundError{Entity: "shop", ID: uint64(id)}
	}
	return shop, nil
}

// ListShops answers q through the router.
func (s *Service) ListShops(ctx context.Context, q ShopQuery, page models.PageRequest) (*models.Page[models.Shop], error) {
	rule := s.router.match(q)
	s.metrics.ShopQueries.WithLabelValues(rule.Name).Inc()

	result, err := rule.h(ctx, q, page)
	if err != nil {
		return nil, persistenceError("list shops", err)
	}
	return result, nil
}

// refreshShops re-mirrors shops whose product count may have changed.
func (s *Service) refreshShops(ctx context.Context, ids ...*models.ShopID) {
	seen := make(map[models.ShopID]bool)
	for _, id := range ids {
		if id == nil || id.IsZero() || seen[*id] {
			continue
		}
		seen[*id] = true

		shop, err := s.store.GetShop(ctx, *id)
		if err != nil || shop == nil {
			s.logger.Warn().Err(err).Stringer("shop_id", *id).Msg("failed to reload shop for index refresh")
			continue
		}
		_ = s.mirror(ctx, "refresh shop", shop)
	}
}
