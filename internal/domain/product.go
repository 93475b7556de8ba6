package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Upstream and UI both expect prices as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups catalog products.
type Category string

const (
	CategoryBakery Category = "bakery"
	CategoryCake   Category = "cake"
)

// IsValid reports whether the value is a known Category.
func (c Category) IsValid() bool {
	return c == CategoryBakery || c == CategoryCake
}

// LowStockThreshold is the stock level at which admins are warned.
const LowStockThreshold = 10

type Product struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     Category        `json:"category"`
	SubCategory  string          `json:"subCategory,omitempty"`
	Flavor       string          `json:"flavor,omitempty"`
	Description  string          `json:"description,omitempty"`
	Image        string          `json:"image,omitempty"`
	CountInStock int             `json:"countInStock"`
	CreatedAt    time.Time       `json:"createdAt,omitzero"`
}

// InStock reports whether quantity units can be taken from stock.
func (p Product) InStock(quantity int) bool {
	return quantity <= p.CountInStock
}

// FilterByCategory returns products in the given category; empty category keeps all.
func FilterByCategory(products []Product, category Category) []Product {
	if category == "" {
		return products
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}
