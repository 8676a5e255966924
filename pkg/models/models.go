package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Shop is the canonical shop record.
//
// OpeningHours are owned by the shop and are replaced as a whole on every
// save. Products are only loaded when a single shop is fetched.
type Shop struct {
	ID           ShopID         `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string         `gorm:"not null;index" json:"name"`
	CreatedAt    Date           `gorm:"type:date;not null;index" json:"createdAt"`
	InVacations  bool           `gorm:"not null;default:false;index" json:"inVacations"`
	OpeningHours []OpeningHours `gorm:"foreignKey:ShopID;constraint:OnDelete:CASCADE" json:"openingHours"`
	NbProducts   int64          `gorm:"not null;default:0;index" json:"nbProducts"`
	Products     []Product      `gorm:"foreignKey:ShopID;constraint:OnDelete:SET NULL" json:"products,omitempty"`
	UpdatedAt    time.Time      `gorm:"index" json:"-"`
}

// BeforeCreate hook to default the creation date
func (s *Shop) BeforeCreate(tx *gorm.DB) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = Today()
	}
	return nil
}

// OpeningHours is one opening interval of a shop on a given day (0-6).
type OpeningHours struct {
	ID      uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	ShopID  ShopID    `gorm:"not null;index" json:"-"`
	Day     int       `gorm:"not null" json:"day"`
	OpenAt  LocalTime `gorm:"type:varchar(8);not null" json:"openAt"`
	CloseAt LocalTime `gorm:"type:varchar(8);not null" json:"closeAt"`
}

func (OpeningHours) TableName() string { return "opening_hours" }

func (h OpeningHours) String() string {
	return fmt.Sprintf("{day=%d, openAt=%s, closeAt=%s}", h.Day, h.OpenAt, h.CloseAt)
}

// Product belongs to at most one shop and at most one category.
type Product struct {
	ID          ProductID   `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string      `gorm:"not null" json:"name"`
	Description string      `json:"description,omitempty"`
	Price       float64     `gorm:"not null;default:0" json:"price"`
	ShopID      *ShopID     `gorm:"index" json:"shopId"`
	CategoryID  *CategoryID `gorm:"index" json:"categoryId"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Category groups products.
type Category struct {
	ID        CategoryID `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string     `gorm:"not null;uniqueIndex" json:"name"`
	CreatedAt time.Time  `json:"createdAt"`
}

// SyncTracker records that the search index backfill completed.
type SyncTracker struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	SyncCompleted bool      `gorm:"not null;default:false;index"`
	CompletedAt   time.Time `gorm:"not null"`
}

// Tables lists every relational table in migration order.
var Tables = []any{
	&Shop{},
	&OpeningHours{},
	&Category{},
	&Product{},
	&SyncTracker{},
}
