package relational

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/fullstack/shopapp/pkg/models"
)

func (s *Store) SaveCategory(ctx context.Context, category *models.Category) error {
	db := s.db.WithContext(ctx)
	var err error
	if category.ID.IsZero() {
		err = db.Create(category).Error
	} else {
		err = db.Save(category).Error
	}
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id models.CategoryID) (*models.Category, error) {
	var category models.Category
	err := s.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes the category from its products, then deletes it.
func (s *Store) DeleteCategory(ctx context.Context, id models.CategoryID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, "id = ?", id).Error
	})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *Store) FindCategories(ctx context.Context, page models.PageRequest) (*models.Page[models.Category], error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Category{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count categories: %w", err)
	}

	var categories []models.Category
	q := s.db.WithContext(ctx).Model(&models.Category{}).Order("name ASC, id ASC")
	if err := paginate(q, page).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return models.NewPage(categories, page, total), nil
}
