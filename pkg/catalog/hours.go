package catalog

import (
	"sort"
	"strings"

	"github.com/fullstack/shopapp/pkg/models"
)

// ValidateOpeningHours fails when two entries of the same day overlap.
//
// Entries are grouped by day and stably sorted by opening time. Two adjacent
// entries overlap unless the first one closes strictly before the second one
// opens, so intervals that touch are rejected too. Days are checked in
// ascending order and the first overlapping pair is reported.
func ValidateOpeningHours(hours []models.OpeningHours) error {
	byDay := make(map[int][]models.OpeningHours)
	for _, h := range hours {
		byDay[h.Day] = append(byDay[h.Day], h)
	}

	days := make([]int, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Ints(days)

	for _, day := range days {
		group := byDay[day]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].OpenAt.Before(group[j].OpenAt)
		})
		for i := 1; i < len(group); i++ {
			prev, next := group[i-1], group[i]
			if !prev.CloseAt.Before(next.OpenAt) {
				return newValidationError("overlapping hours on day %d: %s and %s", day, prev, next)
			}
		}
	}
	return nil
}

// validateShop checks the shop fields, then the opening hours schedule.
func validateShop(shop *models.Shop) error {
	var v violations
	if strings.TrimSpace(shop.Name) == "" {
		v.add("name must not be blank")
	}
	for i, h := range shop.OpeningHours {
		if h.Day < 0 || h.Day > 6 {
			v.add("openingHours[%d].day must be between 0 and 6", i)
		}
		if !h.OpenAt.Before(h.CloseAt) {
			v.add("openingHours[%d].openAt must be before closeAt", i)
		}
	}
	if err := v.err(); err != nil {
		return err
	}
	return ValidateOpeningHours(shop.OpeningHours)
}

func validateProduct(product *models.Product) error {
	var v violations
	if strings.TrimSpace(product.Name) == "" {
		v.add("name must not be blank")
	}
	if product.Price < 0 {
		v.add("price must not be negative")
	}
	return v.err()
}

func validateCategory(category *models.Category) error {
	var v violations
	if strings.TrimSpace(category.Name) == "" {
		v.add("name must not be blank")
	}
	return v.err()
}
