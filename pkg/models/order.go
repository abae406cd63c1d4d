package models

import "github.com/shopspring/decimal"

// OrderLine is one product of a fetched order, priced at purchase time.
// The remote API serves quantity alongside the product snapshot.
type OrderLine struct {
	PID         int             `json:"pid"`
	Category    string          `json:"category"`
	Gender      string          `json:"gender"`
	ProductName string          `json:"productName"`
	Size        string          `json:"size"`
	Price       decimal.Decimal `json:"price"`
	ThumbLink   string          `json:"thumbLink"`
	Quantity    int             `json:"quantity"`
}

// Order mirrors the server-owned order record. The client never persists
// orders; this only holds the page's fetched state.
type Order struct {
	OrderID  int         `json:"order_id"`
	Products []OrderLine `json:"products"`
}

// Total sums price times quantity across all lines at full precision.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Products {
		qty := line.Quantity
		if qty < 1 {
			qty = 1
		}
		total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

type AddToCartRequest struct {
	PID string `json:"pid" binding:"required"`
}
