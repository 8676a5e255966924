package relational

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

var shopOrderColumns = map[store.ShopOrder]string{
	store.OrderByID:         "id ASC",
	store.OrderByName:       "name ASC, id ASC",
	store.OrderByCreatedAt:  "created_at ASC, id ASC",
	store.OrderByNbProducts: "nb_products ASC, id ASC",
}

func orderHours(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

// SaveShop inserts or overwrites a shop together with its opening hours.
func (s *Store) SaveShop(ctx context.Context, shop *models.Shop) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if shop.ID.IsZero() {
			if err := tx.Omit(clause.Associations).Create(shop).Error; err != nil {
				return err
			}
		} else {
			if shop.CreatedAt.IsZero() {
				shop.CreatedAt = models.Today()
			}
			// Save would insert a row deleted since the caller read it.
			res := tx.Model(shop).Select("*").Omit(clause.Associations).Updates(shop)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return store.ErrNotFound
			}
			if err := tx.Where("shop_id = ?", shop.ID).Delete(&models.OpeningHours{}).Error; err != nil {
				return err
			}
		}

		for i := range shop.OpeningHours {
			shop.OpeningHours[i].ID = 0
			shop.OpeningHours[i].ShopID = shop.ID
		}
		if len(shop.OpeningHours) > 0 {
			if err := tx.Create(&shop.OpeningHours).Error; err != nil {
				return err
			}
		}

		return refreshProductCounts(tx, shop.ID)
	})
	if err != nil {
		return fmt.Errorf("failed to save shop: %w", err)
	}
	return nil
}

// GetShop loads a shop with its opening hours and products.
func (s *Store) GetShop(ctx context.Context, id models.ShopID) (*models.Shop, error) {
	var shop models.Shop
	err := s.db.WithContext(ctx).
		Preload("OpeningHours", orderHours).
		Preload("Products", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&shop, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

// DeleteShop removes the shop and its opening hours.
func (s *Store) DeleteShop(ctx context.Context, id models.ShopID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shop_id = ?", id).Delete(&models.OpeningHours{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Shop{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete shop: %w", err)
	}
	return nil
}

// FindShops returns a page of shops matching filter in the requested order.
func (s *Store) FindShops(ctx context.Context, filter store.ShopFilter, order store.ShopOrder, page models.PageRequest) (*models.Page[models.Shop], error) {
	base := func() *gorm.DB {
		return applyShopFilter(s.db.WithContext(ctx).Model(&models.Shop{}), filter)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count shops: %w", err)
	}

	orderBy, ok := shopOrderColumns[order]
	if !ok {
		orderBy = shopOrderColumns[store.OrderByID]
	}

	var shops []models.Shop
	err := paginate(base().Preload("OpeningHours", orderHours).Order(orderBy), page).
		Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return models.NewPage(shops, page, total), nil
}

func applyShopFilter(q *gorm.DB, filter store.ShopFilter) *gorm.DB {
	if filter.InVacations != nil {
		q = q.Where("in_vacations = ?", *filter.InVacations)
	}
	lower, upper := "created_at > ?", "created_at < ?"
	if filter.InclusiveBounds {
		lower, upper = "created_at >= ?", "created_at <= ?"
	}
	if filter.CreatedAfter != nil {
		q = q.Where(lower, *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		q = q.Where(upper, *filter.CreatedBefore)
	}
	return q
}

// ListShopsUpdatedSince returns shops modified at or after since, oldest first.
func (s *Store) ListShopsUpdatedSince(ctx context.Context, since time.Time) ([]models.Shop, error) {
	var shops []models.Shop
	err := s.db.WithContext(ctx).
		Preload("OpeningHours", orderHours).
		Where("updated_at >= ?", since.UTC()).
		Order("updated_at ASC, id ASC").
		Find(&shops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modified shops: %w", err)
	}
	return shops, nil
}
