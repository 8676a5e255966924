package surrealdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullstack/shopapp/internal/testenv"
	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

func TestShopIndexRoundTrip(t *testing.T) {
	idx := testenv.NewSurrealIndex(t)
	ctx := context.Background()

	shop := &models.Shop{
		ID:          42,
		Name:        "Corner Bakery",
		CreatedAt:   models.NewDate(2021, time.May, 4),
		NbProducts:  3,
		InVacations: false,
		OpeningHours: []models.OpeningHours{
			{Day: 1, OpenAt: models.MustLocalTime("08:00"), CloseAt: models.MustLocalTime("12:30")},
		},
	}
	require.NoError(t, idx.IndexShop(ctx, shop))

	search := store.ShopSearch{
		Name:          "bakery",
		CreatedAfter:  models.NewDate(1970, time.January, 1),
		CreatedBefore: models.NewDate(2060, time.January, 1),
	}
	page, err := idx.SearchShops(ctx, search, models.NewPageRequest(0, 10))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	got := page.Content[0]
	assert.Equal(t, shop.ID, got.ID)
	assert.Equal(t, "Corner Bakery", got.Name)
	assert.True(t, shop.CreatedAt.Equal(got.CreatedAt))
	assert.EqualValues(t, 3, got.NbProducts)
	require.Len(t, got.OpeningHours, 1)
	assert.Equal(t, "12:30", got.OpeningHours[0].CloseAt.String())
	assert.EqualValues(t, 1, page.TotalElements)

	search.InVacations = true
	page, err = idx.SearchShops(ctx, search, models.NewPageRequest(0, 10))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
	assert.EqualValues(t, 0, page.TotalElements)

	require.NoError(t, idx.RemoveShop(ctx, shop.ID))
	require.NoError(t, idx.RemoveShop(ctx, shop.ID))
}

func TestShopIndexPing(t *testing.T) {
	idx := testenv.NewSurrealIndex(t)
	assert.NoError(t, idx.Ping(context.Background()))
}
