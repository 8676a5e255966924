package relational

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

// SaveProduct inserts or overwrites a product and refreshes the product
// counts of its previous and current shop.
func (s *Store) SaveProduct(ctx context.Context, product *models.Product) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var previousShop models.ShopID
		if !product.ID.IsZero() {
			var existing models.Product
			err := tx.Select("id", "shop_id").First(&existing, "id = ?", product.ID).Error
			if err != nil && !isNotFound(err) {
				return err
			}
			if existing.ShopID != nil {
				previousShop = *existing.ShopID
			}
			if err := tx.Omit(clause.Associations).Save(product).Error; err != nil {
				return err
			}
		} else if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}

		var currentShop models.ShopID
		if product.ShopID != nil {
			currentShop = *product.ShopID
		}
		return refreshProductCounts(tx, previousShop, currentShop)
	})
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}
	return nil
}

func (s *Store) GetProduct(ctx context.Context, id models.ProductID) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).First(&product, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (s *Store) DeleteProduct(ctx context.Context, id models.ProductID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.First(&existing, "id = ?", id).Error; err != nil {
			if isNotFound(err) {
				return nil
			}
			return err
		}
		if err := tx.Delete(&models.Product{}, "id = ?", id).Error; err != nil {
			return err
		}
		if existing.ShopID != nil {
			return refreshProductCounts(tx, *existing.ShopID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (s *Store) FindProducts(ctx context.Context, filter store.ProductFilter, page models.PageRequest) (*models.Page[models.Product], error) {
	base := func() *gorm.DB {
		q := s.db.WithContext(ctx).Model(&models.Product{})
		if filter.ShopID != nil {
			q = q.Where("shop_id = ?", *filter.ShopID)
		}
		if filter.CategoryID != nil {
			q = q.Where("category_id = ?", *filter.CategoryID)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	if err := paginate(base().Order("id ASC"), page).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return models.NewPage(products, page, total), nil
}

// DetachProducts clears the shop reference of every product of the shop.
func (s *Store) DetachProducts(ctx context.Context, shopID models.ShopID) (int64, error) {
	var detached int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("shop_id = ?", shopID).
			Update("shop_id", nil)
		if res.Error != nil {
			return res.Error
		}
		detached = res.RowsAffected
		return refreshProductCounts(tx, shopID)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to detach products of shop %s: %w", shopID, err)
	}
	return detached, nil
}
