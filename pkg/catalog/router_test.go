package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fullstack/shopapp/pkg/catalog"
	"github.com/fullstack/shopapp/pkg/models"
)

func shopNames(page *models.Page[models.Shop]) []string {
	names := make([]string, 0, len(page.Content))
	for _, s := range page.Content {
		names = append(names, s.Name)
	}
	return names
}

func TestRouterRulesOrder(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, []string{
		"sort",
		"search",
		"vacation+after+before",
		"vacation+before",
		"vacation+after",
		"after+before",
		"after",
		"vacation",
		"unfiltered",
	}, f.service.Router().Rules())
}

func TestRouterResolve(t *testing.T) {
	f := newFixture(t)
	r := f.service.Router()
	after := ptr(date(2020, time.January, 1))
	before := ptr(date(2024, time.January, 1))
	vac := ptr(true)

	tests := []struct {
		name  string
		query catalog.ShopQuery
		want  string
	}{
		{"nothing", catalog.ShopQuery{}, "unfiltered"},
		{"sort wins over everything", catalog.ShopQuery{SortBy: ptr("name"), Name: ptr("x"), InVacations: vac, CreatedAfter: after}, "sort"},
		{"name wins over filters", catalog.ShopQuery{Name: ptr("x"), InVacations: vac, CreatedAfter: after, CreatedBefore: before}, "search"},
		{"empty name is absent", catalog.ShopQuery{Name: ptr(""), InVacations: vac}, "vacation"},
		{"vacation after before", catalog.ShopQuery{InVacations: vac, CreatedAfter: after, CreatedBefore: before}, "vacation+after+before"},
		{"vacation before", catalog.ShopQuery{InVacations: vac, CreatedBefore: before}, "vacation+before"},
		{"vacation after", catalog.ShopQuery{InVacations: vac, CreatedAfter: after}, "vacation+after"},
		{"after before", catalog.ShopQuery{CreatedAfter: after, CreatedBefore: before}, "after+before"},
		{"after", catalog.ShopQuery{CreatedAfter: after}, "after"},
		{"vacation", catalog.ShopQuery{InVacations: vac}, "vacation"},
		{"before only falls through", catalog.ShopQuery{CreatedBefore: before}, "unfiltered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.query))
		})
	}
}

func TestListShopsSortByNameIgnoresFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createShop(t, "Charlie", date(2021, time.January, 1), false)
	f.createShop(t, "Alpha", date(2022, time.January, 1), true)
	f.createShop(t, "Bravo", date(2023, time.January, 1), false)

	page, err := f.service.ListShops(ctx, catalog.ShopQuery{
		SortBy:       ptr("name"),
		Name:         ptr("nomatch"),
		InVacations:  ptr(true),
		CreatedAfter: ptr(date(2030, time.January, 1)),
	}, models.NewPageRequest(0, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie"}, shopNames(page))
	assert.Zero(t, f.index.searches)
}

func TestListShopsSortByCreatedAtAndDefault(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	busy := f.createShop(t, "busy", date(2020, time.January, 1), false)
	f.createShop(t, "quiet", date(2021, time.January, 1), false)
	_, err := f.service.CreateProduct(ctx, &models.Product{Name: "p", ShopID: &busy.ID})
	require.NoError(t, err)

	byDate, err := f.service.ListShops(ctx, catalog.ShopQuery{SortBy: ptr("createdAt")}, models.NewPageRequest(0, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"busy", "quiet"}, shopNames(byDate))

	byCount, err := f.service.ListShops(ctx, catalog.ShopQuery{SortBy: ptr("whatever")}, models.NewPageRequest(0, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"quiet", "busy"}, shopNames(byCount))
}

func TestListShopsNameSearchDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createShop(t, "Corner Bakery", date(2021, time.January, 1), false)
	f.createShop(t, "Bakery on holiday", date(2021, time.January, 1), true)
	f.createShop(t, "Hardware", date(2021, time.January, 1), false)

	page, err := f.service.ListShops(ctx, catalog.ShopQuery{Name: ptr("bakery")}, models.NewPageRequest(0, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"Corner Bakery"}, shopNames(page))

	assert.Equal(t, 1, f.index.searches)
	assert.Equal(t, "1970-01-01", f.index.lastSearch.CreatedAfter.String())
	assert.Equal(t, "2060-01-01", f.index.lastSearch.CreatedBefore.String())
	assert.False(t, f.index.lastSearch.InVacations)
	assert.True(t, catalog.DefaultSearchBefore.Equal(f.index.lastSearch.CreatedBefore))

	page, err = f.service.ListShops(ctx, catalog.ShopQuery{Name: ptr("bakery"), InVacations: ptr(true)}, models.NewPageRequest(0, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"Bakery on holiday"}, shopNames(page))
}

func TestListShopsRelationalFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createShop(t, "old", date(2020, time.January, 1), false)
	f.createShop(t, "mid", date(2021, time.January, 1), true)
	f.createShop(t, "new", date(2022, time.January, 1), false)

	list := func(q catalog.ShopQuery) []string {
		page, err := f.service.ListShops(ctx, q, models.NewPageRequest(0, 20))
		require.NoError(t, err)
		return shopNames(page)
	}

	assert.Equal(t, []string{"mid"}, list(catalog.ShopQuery{InVacations: ptr(true)}))
	assert.Equal(t, []string{"new"}, list(catalog.ShopQuery{CreatedAfter: ptr(date(2021, time.January, 1))}))
	assert.Equal(t, []string{"mid", "new"}, list(catalog.ShopQuery{
		CreatedAfter:  ptr(date(2021, time.January, 1)),
		CreatedBefore: ptr(date(2022, time.January, 1)),
	}))
	assert.Equal(t, []string{"old"}, list(catalog.ShopQuery{
		InVacations:   ptr(false),
		CreatedBefore: ptr(date(2021, time.June, 1)),
	}))
	assert.Equal(t, []string{"new"}, list(catalog.ShopQuery{
		InVacations:  ptr(false),
		CreatedAfter: ptr(date(2020, time.January, 1)),
	}))
	assert.Equal(t, []string{"old", "new"}, list(catalog.ShopQuery{
		InVacations:   ptr(false),
		CreatedAfter:  ptr(date(2019, time.January, 1)),
		CreatedBefore: ptr(date(2023, time.January, 1)),
	}))
	assert.Zero(t, f.index.searches)
}

func TestListShopsCreatedBeforeOnlyIsUnfiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.createShop(t, "old", date(2020, time.January, 1), false)
	f.createShop(t, "recent", date(2025, time.January, 1), false)

	page, err := f.service.ListShops(ctx, catalog.ShopQuery{CreatedBefore: ptr(date(2024, time.January, 1))}, models.NewPageRequest(0, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"old", "recent"}, shopNames(page))
}
