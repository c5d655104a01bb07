package products

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SortBy orders the visible products.
type SortBy string

const (
	SortNone      SortBy = ""
	SortPriceAsc  SortBy = "price-asc"
	SortPriceDesc SortBy = "price-desc"
	SortNameAsc   SortBy = "name-asc"
)

// ViewOptions filter and sort the currently cached page. This is a view
// transform over the cache, not a new fetch; it resets for free whenever
// the cache is replaced.
type ViewOptions struct {
	Search   string
	Category string
	Brand    string
	PriceMin decimal.Decimal
	PriceMax decimal.Decimal
	SortBy   SortBy
}

// Visible applies opts to the cached page and returns the result.
func (s *Service) Visible(opts ViewOptions) []Product {
	items := s.Snapshot().Items

	filtered := items[:0:0]
	for _, p := range items {
		if opts.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(opts.Search)) {
			continue
		}
		if opts.Category != "" && p.Category != opts.Category {
			continue
		}
		if opts.Brand != "" && p.Brand != opts.Brand {
			continue
		}
		if !opts.PriceMin.IsZero() && p.Price.LessThan(opts.PriceMin) {
			continue
		}
		if !opts.PriceMax.IsZero() && p.Price.GreaterThan(opts.PriceMax) {
			continue
		}
		filtered = append(filtered, p)
	}

	switch opts.SortBy {
	case SortPriceAsc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.LessThan(filtered[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return filtered[i].Price.GreaterThan(filtered[j].Price)
		})
	case SortNameAsc:
		sort.SliceStable(filtered, func(i, j int) bool {
			return strings.ToLower(filtered[i].Name) < strings.ToLower(filtered[j].Name)
		})
	}

	return filtered
}
