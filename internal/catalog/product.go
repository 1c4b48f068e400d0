package catalog

import "errors"

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

type Category string

const (
	CategoryAll         Category = "all"
	CategorySupplements Category = "supplements"
	CategoryClothing    Category = "clothing"
	CategoryAccessories Category = "accessories"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAll, CategorySupplements, CategoryClothing, CategoryAccessories:
		return true
	}
	return false
}

// Product is a catalog item available for purchase. Products are immutable;
// the storefront only ever reads them.
type Product struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    Category `json:"category"`
	Colors      []string `json:"colors,omitempty"`
	Sizes       []string `json:"sizes,omitempty"`
	Rating      float64  `json:"rating"`
	ImageURL    string   `json:"image_url"`
	Features    []string `json:"features,omitempty"`
}

// DefaultColor is the color assigned to cart lines of products that ship in
// a single variant (empty Colors set).
const DefaultColor = "default"
