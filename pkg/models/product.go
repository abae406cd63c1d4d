package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Product is an immutable snapshot of a catalog entry as served by the
// remote API. Prices arrive as either a JSON string or a number, so the
// field is decimal rather than float.
type Product struct {
	PID         int             `json:"pid"`
	ProductName string          `json:"productName"`
	Category    string          `json:"category"`
	Gender      string          `json:"gender"`
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	Inventory   int             `json:"inventory"`
	ThumbLink   string          `json:"thumbLink"`
	Description string          `json:"description"`
}

// Key is the product's identity as used by the persisted cart mapping.
func (p Product) Key() string {
	return strconv.Itoa(p.PID)
}

func (p Product) InStock() bool {
	return p.Inventory > 0
}

// AddProductRequest carries the new-product form fields. Validation is
// field-by-field in the handler so every problem is reported at once.
type AddProductRequest struct {
	Category    string `form:"category"`
	Gender      string `form:"gender"`
	ProductName string `form:"productName"`
	Size        string `form:"size"`
	Price       string `form:"price"`
	Count       string `form:"count"`
	Description string `form:"description"`
}
