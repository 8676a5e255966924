package catalog

import (
	"context"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

func (s *Service) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	product.ID = 0
	return s.saveProduct(ctx, "create product", product, nil)
}

// UpdateProduct overwrites an existing product with the full entity given.
func (s *Service) UpdateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.ID.IsZero() {
		return nil, &NotFoundError{Entity: "product", ID: 0}
	}
	existing, err := s.GetProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = existing.CreatedAt
	}
	return s.saveProduct(ctx, "update product", product, existing.ShopID)
}

func (s *Service) saveProduct(ctx context.Context, op string, product *models.Product, previousShop *models.ShopID) (*models.Product, error) {
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.checkProductRefs(ctx, product); err != nil {
		return nil, err
	}
	if err := s.store.SaveProduct(ctx, product); err != nil {
		return nil, persistenceError(op, err)
	}

	saved, err := s.store.GetProduct(ctx, product.ID)
	if err != nil {
		return nil, persistenceError(op, err)
	}
	if saved == nil {
		return nil, &NotFoundError{Entity: "product", ID: uint64(product.ID)}
	}

	s.refreshShops(ctx, previousShop, saved.ShopID)
	return saved, nil
}

func (s *Service) checkProductRefs(ctx context.Context, product *models.Product) error {
	if product.ShopID != nil {
		if _, err := s.GetShop(ctx, *product.ShopID); err != nil {
			return err
		}
	}
	if product.CategoryID != nil {
		if _, err := s.GetCategory(ctx, *product.CategoryID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) DeleteProduct(ctx context.Context, id models.ProductID) error {
	existing, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteProduct(ctx, id); err != nil {
		return persistenceError("delete product", err)
	}
	s.refreshShops(ctx, existing.ShopID)
	return nil
}

func (s *Service) GetProduct(ctx context.Context, id models.ProductID) (*models.Product, error) {
	product, err := s.store.GetProduct(ctx, id)
	if err != nil {
		return nil, persistenceError("get product", err)
	}
	if product == nil {
		return nil, &NotFoundError{Entity: "product", ID: uint64(id)}
	}
	return product, nil
}

// ListProducts returns a page of products, optionally restricted to a shop
// and/or a category.
func (s *Service) ListProducts(ctx context.Context, filter store.ProductFilter, page models.PageRequest) (*models.Page[models.Product], error) {
	result, err := s.store.FindProducts(ctx, filter, page)
	if err != nil {
		return nil, persistenceError("list products", err)
	}
	return result, nil
}
