// Package memindex is an in-memory store.ShopIndex with the same search
// semantics as the SurrealDB index. It backs tests and local runs without a
// SurrealDB instance.
package memindex

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

// ErrClosed is returned by every operation after Close.
var ErrClosed = errors.New("memindex: index is closed")

// ShopIndex keeps copies of indexed shops in a map.
type ShopIndex struct {
	mu     sync.RWMutex
	shops  map[models.ShopID]models.Shop
	closed bool

	// FailWith, when set, is returned by IndexShop and RemoveShop.
	FailWith error
}

var _ store.ShopIndex = (*ShopIndex)(nil)

func New() *ShopIndex {
	return &ShopIndex{shops: make(map[models.ShopID]models.Shop)}
}

func (s *ShopIndex) IndexShop(ctx context.Context, shop *models.Shop) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	doc := *shop
	doc.Products = nil
	doc.OpeningHours = append([]models.OpeningHours(nil), shop.OpeningHours...)
	s.shops[shop.ID] = doc
	return nil
}

func (s *ShopIndex) RemoveShop(ctx context.Context, id models.ShopID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(); err != nil {
		return err
	}
	delete(s.shops, id)
	return nil
}

func (s *ShopIndex) SearchShops(ctx context.Context, search store.ShopSearch, page models.PageRequest) (*models.Page[models.Shop], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	needle := strings.ToLower(search.Name)
	var matches []models.Shop
	for _, shop := range s.shops {
		if !strings.Contains(strings.ToLower(shop.Name), needle) {
			continue
		}
		if !shop.CreatedAt.After(search.CreatedAfter) || !shop.CreatedAt.Before(search.CreatedBefore) {
			continue
		}
		if shop.InVacations != search.InVacations {
			continue
		}
		matches = append(matches, shop)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	total := int64(len(matches))
	if !page.Unpaged {
		start := min(page.Offset(), len(matches))
		end := min(start+page.Size, len(matches))
		matches = matches[start:end]
	}
	return models.NewPage(matches, page, total), nil
}

// Get returns the indexed copy of a shop.
func (s *ShopIndex) Get(id models.ShopID) (models.Shop, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	shop, ok := s.shops[id]
	return shop, ok
}

// Len returns the number of indexed shops.
func (s *ShopIndex) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shops)
}

func (s *ShopIndex) Migrate(ctx context.Context) error { return nil }

// Durable is false: the map is lost when the process exits.
func (s *ShopIndex) Durable() bool { return false }

func (s *ShopIndex) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *ShopIndex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *ShopIndex) check() error {
	if s.closed {
		return ErrClosed
	}
	return s.FailWith
}
