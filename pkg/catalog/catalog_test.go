package catalog_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fullstack/shopapp/internal/testenv"
	"github.com/fullstack/shopapp/pkg/catalog"
	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
	"github.com/fullstack/shopapp/pkg/store/memindex"
	"github.com/fullstack/shopapp/pkg/store/relational"
)

// recordingIndex counts index writes and remembers the last search. It
// reports itself durable unless volatile is set, standing in for SurrealDB.
type recordingIndex struct {
	*memindex.ShopIndex
	volatile bool

	mu         sync.Mutex
	indexed    int
	searches   int
	lastSearch store.ShopSearch
}

func (r *recordingIndex) IndexShop(ctx context.Context, shop *models.Shop) error {
	r.mu.Lock()
	r.indexed++
	r.mu.Unlock()
	return r.ShopIndex.IndexShop(ctx, shop)
}

func (r *recordingIndex) SearchShops(ctx context.Context, search store.ShopSearch, page models.PageRequest) (*models.Page[models.Shop], error) {
	r.mu.Lock()
	r.searches++
	r.lastSearch = search
	r.mu.Unlock()
	return r.ShopIndex.SearchShops(ctx, search, page)
}

func (r *recordingIndex) Durable() bool { return !r.volatile }

func (r *recordingIndex) writes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.indexed
}

type fixture struct {
	service *catalog.Service
	store   *relational.Store
	index   *recordingIndex
	metrics *catalog.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testenv.NewSQLiteStore(t)
	idx := &recordingIndex{ShopIndex: memindex.New()}
	metrics := catalog.NewMetrics(prometheus.NewRegistry())
	return &fixture{
		service: catalog.NewService(st, idx, testenv.Logger(t), metrics),
		store:   st,
		index:   idx,
		metrics: metrics,
	}
}

func ptr[T any](v T) *T { return &v }

func openingHours(day int, openAt, closeAt string) models.OpeningHours {
	return models.OpeningHours{Day: day, OpenAt: models.MustLocalTime(openAt), CloseAt: models.MustLocalTime(closeAt)}
}

func date(year int, month time.Month, day int) models.Date {
	return models.NewDate(year, month, day)
}

func (f *fixture) createShop(t *testing.T, name string, created models.Date, vacation bool) *models.Shop {
	t.Helper()
	shop, err := f.service.CreateShop(context.Background(), &models.Shop{
		Name:         name,
		CreatedAt:    created,
		InVacations:  vacation,
		OpeningHours: []models.OpeningHours{openingHours(1, "09:00", "18:00")},
	})
	if err != nil {
		t.Fatalf("failed to create shop %s: %v", name, err)
	}
	return shop
}
