package models

import (
	"fmt"
	"strconv"

	surrealdb_models "github.com/surrealdb/surrealdb.go/pkg/models"
)

// ShopID is a typed ID for shops
type ShopID uint64

func ParseShopID(s string) (ShopID, error) {
	id, err := parseID(s)
	if err != nil {
		return 0, fmt.Errorf("invalid shop ID: %w", err)
	}
	return ShopID(id), nil
}

func (s ShopID) String() string { return strconv.FormatUint(uint64(s), 10) }
func (s ShopID) IsZero() bool   { return s == 0 }

// RecordID addresses the shop document in the search index.
func (s ShopID) RecordID() surrealdb_models.RecordID {
	return surrealdb_models.NewRecordID(ShopIndexTable, uint64(s))
}

// ProductID is a typed ID for products
type ProductID uint64

func ParseProductID(s string) (ProductID, error) {
	id, err := parseID(s)
	if err != nil {
		return 0, fmt.Errorf("invalid product ID: %w", err)
	}
	return ProductID(id), nil
}

func (p ProductID) String() string { return strconv.FormatUint(uint64(p), 10) }
func (p ProductID) IsZero() bool   { return p == 0 }

// CategoryID is a typed ID for categories
type CategoryID uint64

func ParseCategoryID(s string) (CategoryID, error) {
	id, err := parseID(s)
	if err != nil {
		return 0, fmt.Errorf("invalid category ID: %w", err)
	}
	return CategoryID(id), nil
}

func (c CategoryID) String() string { return strconv.FormatUint(uint64(c), 10) }
func (c CategoryID) IsZero() bool   { return c == 0 }

// ShopIndexTable is the SurrealDB table holding shop documents.
const ShopIndexTable = "shop_index"

func parseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, fmt.Errorf("id must be positive")
	}
	return id, nil
}
