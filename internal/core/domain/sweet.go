package domain

import "time"

// Category is the fixed set of sweet kinds the catalog accepts.
type Category string

const (
	CategoryCake   Category = "cake"
	CategoryCandy  Category = "candy"
	CategoryCookie Category = "cookie"
	CategoryPie    Category = "pie"
	CategoryOther  Category = "other"
)

// Categories lists every valid category in display order.
var Categories = []Category{CategoryCake, CategoryCandy, CategoryCookie, CategoryPie, CategoryOther}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Sweet is a product in the catalog. Quantity is never negative.
type Sweet struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Category  Category  `json:"category"`
	Price     float64   `json:"price"`
	Quantity  int       `json:"quantity"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// InStock reports whether at least n units can be purchased.
func (s *Sweet) InStock(n int) bool {
	return n > 0 && s.Quantity >= n
}
