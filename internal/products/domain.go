package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// Size is one purchasable size of a product. A size with zero stock stays
// visible but cannot be added to the cart.
type Size struct {
	Size  string `json:"size"`
	Stock int    `json:"stock"`
}

func (s Size) Selectable() bool {
	return s.Stock > 0
}

type Product struct {
	ID          string          `json:"_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Brand       string          `json:"brand,omitempty"`
	Category    string          `json:"category"`
	Images      []string        `json:"images,omitempty"`
	Sizes       []Size          `json:"sizes,omitempty"`
	Rating      float64         `json:"rating,omitempty"`
	NumReviews  int             `json:"numReviews,omitempty"`
	Nouveaute   bool            `json:"nouveaute,omitempty"`
	Promotion   bool            `json:"promotion,omitempty"`
	CreatedAt   time.Time       `json:"createdAt,omitempty"`
}

// SizeAvailable reports whether the given size exists and has stock.
func (p Product) SizeAvailable(size string) bool {
	for _, s := range p.Sizes {
		if s.Size == size {
			return s.Selectable()
		}
	}
	return false
}

// valid reports whether a catalog record carries the required fields.
// One invalid record invalidates the whole page it arrived on.
func (p Product) valid() bool {
	return p.Name != "" && !p.Price.IsZero() && p.Category != ""
}

// State is the products domain's slice of the state tree. Items is a cache
// of the most recently settled list fetch, replaced wholesale, never merged.
type State struct {
	Items            []Product
	TotalPages       int
	CurrentPage      int
	SelectedCategory string
	CurrentProduct   *Product
	Loading          bool
	Err              string
}

// ListQuery are the catalog endpoint's query parameters.
type ListQuery struct {
	Page      int
	Limit     int
	Category  string
	Nouveaute bool
	Promotion bool
}

type listResponse struct {
	Products    []Product `json:"products"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
}
