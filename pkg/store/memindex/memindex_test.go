package memindex

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

func seed(t *testing.T, idx *ShopIndex) {
	t.Helper()
	shops := []models.Shop{
		{ID: 1, Name: "Bakery Central", CreatedAt: models.NewDate(2020, time.January, 10)},
		{ID: 2, Name: "Central Books", CreatedAt: models.NewDate(2021, time.March, 5), InVacations: true},
		{ID: 3, Name: "Hardware", CreatedAt: models.NewDate(2022, time.June, 1)},
		{ID: 4, Name: "central station kiosk", CreatedAt: models.NewDate(2023, time.July, 1)},
	}
	for i := range shops {
		require.NoError(t, idx.IndexShop(context.Background(), &shops[i]))
	}
}

func search(name string, vac bool) store.ShopSearch {
	return store.ShopSearch{
		Name:          name,
		CreatedAfter:  models.NewDate(1970, time.January, 1),
		CreatedBefore: models.NewDate(2060, time.January, 1),
		InVacations:   vac,
	}
}

func TestSearchShopsCaseInsensitiveSubstring(t *testing.T) {
	idx := New()
	seed(t, idx)

	page, err := idx.SearchShops(context.Background(), search("CENTRAL", false), models.NewPageRequest(0, 20))
	require.NoError(t, err)
	require.Len(t, page.Content, 2)
	assert.Equal(t, models.ShopID(1), page.Content[0].ID)
	assert.Equal(t, models.ShopID(4), page.Content[1].ID)
	assert.EqualValues(t, 2, page.TotalElements)

	page, err = idx.SearchShops(context.Background(), search("central", true), models.NewPageRequest(0, 20))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, models.ShopID(2), page.Content[0].ID)
}

func TestSearchShopsStrictDateBounds(t *testing.T) {
	idx := New()
	seed(t, idx)

	s := search("", false)
	s.CreatedAfter = models.NewDate(2020, time.January, 10)
	s.CreatedBefore = models.NewDate(2023, time.July, 1)
	page, err := idx.SearchShops(context.Background(), s, models.Unpaged())
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, models.ShopID(3), page.Content[0].ID)
}

func TestSearchShopsPaging(t *testing.T) {
	idx := New()
	seed(t, idx)

	page, err := idx.SearchShops(context.Background(), search("", false), models.NewPageRequest(1, 2))
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, models.ShopID(4), page.Content[0].ID)
	assert.EqualValues(t, 3, page.TotalElements)
	assert.Equal(t, 2, page.TotalPages)

	page, err = idx.SearchShops(context.Background(), search("", false), models.NewPageRequest(5, 2))
	require.NoError(t, err)
	assert.Empty(t, page.Content)
}

func TestIndexShopReplacesDocument(t *testing.T) {
	idx := New()
	shop := &models.Shop{ID: 7, Name: "Old", CreatedAt: models.Today()}
	require.NoError(t, idx.IndexShop(context.Background(), shop))
	shop.Name = "New"
	require.NoError(t, idx.IndexShop(context.Background(), shop))

	assert.Equal(t, 1, idx.Len())
	got, ok := idx.Get(7)
	require.True(t, ok)
	assert.Equal(t, "New", got.Name)

	require.NoError(t, idx.RemoveShop(context.Background(), 7))
	require.NoError(t, idx.RemoveShop(context.Background(), 7))
	assert.Equal(t, 0, idx.Len())
}

func TestFailWithAndClose(t *testing.T) {
	idx := New()
	boom := errors.New("boom")
	idx.FailWith = boom
	assert.ErrorIs(t, idx.IndexShop(context.Background(), &models.Shop{ID: 1}), boom)

	idx.FailWith = nil
	require.NoError(t, idx.Close())
	assert.ErrorIs(t, idx.Ping(context.Background()), ErrClosed)
	_, err := idx.SearchShops(context.Background(), search("", false), models.Unpaged())
	assert.ErrorIs(t, err, ErrClosed)
}
