package catalog

import (
	"context"

	"github.com/fullstack/shopapp/pkg/models"
)

func (s *Service) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := validateCategory(category); err != nil {
		return nil, err
	}
	category.ID = 0
	if err := s.store.SaveCategory(ctx, category); err != nil {
		return nil, persistenceError("create category", err)
	}
	return category, nil
}

func (s *Service) GetCategory(ctx context.Context, id models.CategoryID) (*models.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, persistenceError("get category", err)
	}
	if category == nil {
		return nil, &NotFoundError{Entity: "category", ID: uint64(id)}
	}
	return category, nil
}

// DeleteCategory removes the category; its products are kept without one.
func (s *Service) DeleteCategory(ctx context.Context, id models.CategoryID) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	if err := s.store.DeleteCategory(ctx, id); err != nil {
		return persistenceError("delete category", err)
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context, page models.PageRequest) (*models.Page[models.Category], error) {
	result, err := s.store.FindCategories(ctx, page)
	if err != nil {
		return nil, persistenceError("list categories", err)
	}
	return result, nil
}
