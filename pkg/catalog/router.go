package catalog

import (
	"context"
	"time"

	"github.com/fullstack/shopapp/pkg/models"
	"github.com/fullstack/shopapp/pkg/store"
)

// Defaults applied to name searches that omit a bound or the vacation flag.
var (
	DefaultSearchAfter  = models.NewDate(1970, time.January, 1)
	DefaultSearchBefore = DefaultSearchAfter.AddYears(90)
)

// Sort keys accepted in ShopQuery.SortBy. Any other value sorts by product
// count.
const (
	SortByName      = "name"
	SortByCreatedAt = "createdAt"
)

// ShopQuery holds the optional filters of a shop listing. A nil field is
// absent; an empty Name is treated as absent too.
type ShopQuery struct {
	Name          *string
	SortBy        *string
	InVacations   *bool
	CreatedAfter  *models.Date
	CreatedBefore *models.Date
}

func (q ShopQuery) hasName() bool   { return q.Name != nil && *q.Name != "" }
func (q ShopQuery) hasSort() bool   { return q.SortBy != nil && *q.SortBy != "" }
func (q ShopQuery) hasVac() bool    { return q.InVacations != nil }
func (q ShopQuery) hasAfter() bool  { return q.CreatedAfter != nil }
func (q ShopQuery) hasBefore() bool { return q.CreatedBefore != nil }

type routeHandler func(ctx context.Context, q ShopQuery, page models.PageRequest) (*models.Page[models.Shop], error)

// Rule is one entry of the routing table: the first rule whose Match returns
// true answers the query.
type Rule struct {
	Name  string
	Match func(ShopQuery) bool
	h     routeHandler
}

// Router dispatches shop listings to the relational store or the search
// index, depending on which filters a query carries.
//
// Precedence is sort, then name search, then relational filter combinations,
// then the unfiltered listing. A query carrying only CreatedBefore matches no
// filter rule and falls through to the unfiltered listing.
type Router struct {
	shops store.ShopStore
	index store.ShopIndex
	rules []Rule
}

func NewRouter(shops store.ShopStore, index store.ShopIndex) *Router {
	r := &Router{shops: shops, index: index}
	r.rules = []Rule{
		{Name: "sort", Match: ShopQuery.hasSort, h: r.sorted},
		{Name: "search", Match: ShopQuery.hasName, h: r.search},
		{
			Name:  "vacation+after+before",
			Match: func(q ShopQuery) bool { return q.hasVac() && q.hasAfter() && q.hasBefore() },
			h:     r.filtered(false),
		},
		{
			Name:  "vacation+before",
			Match: func(q ShopQuery) bool { return q.hasVac() && q.hasBefore() },
			h:     r.filtered(false),
		},
		{
			Name:  "vacation+after",
			Match: func(q ShopQuery) bool { return q.hasVac() && q.hasAfter() },
			h:     r.filtered(false),
		},
		{
			Name:  "after+before",
			Match: func(q ShopQuery) bool { return q.hasAfter() && q.hasBefore() },
			h:     r.filtered(true),
		},
		{Name: "after", Match: ShopQuery.hasAfter, h: r.filtered(false)},
		{Name: "vacation", Match: ShopQuery.hasVac, h: r.filtered(false)},
		{Name: "unfiltered", Match: func(ShopQuery) bool { return true }, h: r.unfiltered},
	}
	return r
}

// Rules returns the rule names in precedence order.
func (r *Router) Rules() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// Resolve returns the name of the rule that answers q.
func (r *Router) Resolve(q ShopQuery) string {
	return r.match(q).Name
}

// Route answers q with the first matching rule.
func (r *Router) Route(ctx context.Context, q ShopQuery, page models.PageRequest) (*models.Page[models.Shop], error) {
	return r.match(q).h(ctx, q, page)
}

func (r *Router) match(q ShopQuery) Rule {
	for _, rule := range r.rules {
		if rule.Match(q) {
			return rule
		}
	}
	return r.rules[len(r.rules)-1]
}

func (r *Router) sorted(ctx context.Context, q ShopQuery, page models.PageRequest) (*models.Page[models.Shop], error) {
	var order store.ShopOrder
	switch *q.SortBy {
	case SortByName:
		order = store.OrderByName
	case SortByCreatedAt:
		order = store.OrderByCreatedAt
	default:
		order = store.OrderByNbProducts
	}
	return r.shops.FindShops(ctx, store.ShopFilter{}, order, page)
}

func (r *Router) search(ctx context.Context, q ShopQuery, page models.PageRequest) (*models.Page[models.Shop], error) {
	search := store.ShopSearch{
		Name:          *q.Name,
		CreatedAfter:  DefaultSearchAfter,
		CreatedBefore: DefaultSearchBefore,
	}
	if q.hasAfter() {
		search.CreatedAfter = *q.CreatedAfter
	}
	if q.hasBefore() {
		search.CreatedBefore = *q.CreatedBefore
	}
	if q.hasVac() {
		search.InVacations = *q.InVacations
	}
	return r.index.SearchShops(ctx, search, page)
}

// filtered builds a relational handler passing the vacation flag and both
// date bounds of the query through unchanged.
func (r *Router) filtered(inclusive bool) routeHandler {
	return func(ctx context.Context, q ShopQuery, page models.PageRequest) (*models.Page[models.Shop], error) {
		filter := store.ShopFilter{
			InVacations:     q.InVacations,
			CreatedAfter:    q.CreatedAfter,
			CreatedBefore:   q.CreatedBefore,
			InclusiveBounds: inclusive,
		}
		return r.shops.FindShops(ctx, filter, store.OrderByID, page)
	}
}

func (r *Router) unfiltered(ctx context.Context, _ ShopQuery, page models.PageRequest) (*models.Page[models.Shop], error) {
	return r.shops.FindShops(ctx, store.ShopFilter{}, store.OrderByID, page)
}
