package cart

import (
	"github.com/shopspring/decimal"

	"github.com/cloudonauts/storefront/pkg/models"
)

// Line is one priced row of the cart joined against the catalog.
type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Breakdown is the priced expansion of the cart used for the cart page and
// checkout totals. Amounts stay at full precision; round only at display.
type Breakdown struct {
	Lines []Line          `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// DisplayTotal renders the total rounded to two fraction digits.
func (b Breakdown) DisplayTotal() string {
	return b.Total.StringFixed(2)
}

// TotalItemCount sums all quantities. The header badge derives from this
// on every cart signal; an empty or absent cart counts zero.
func TotalItemCount(items Items) int {
	total := 0
	for _, qty := range items {
		total += qty
	}
	return total
}

// PriceBreakdown joins the cart against the last-fetched catalog listing.
// A cart entry whose product is missing from the listing is silently left
// out of the lines and the total: the catalog cache can lag the cart, and
// an unpriceable entry still belongs to the persisted cart. The badge
// count and the priced total can therefore disagree; that mismatch is
// kept as-is.
func PriceBreakdown(items Items, listing []models.Product) Breakdown {
	breakdown := Breakdown{Lines: []Line{}, Total: decimal.Zero}
	for _, product := range listing {
		qty, ok := items[product.Key()]
		if !ok {
			continue
		}

		subtotal := product.Price.Mul(decimal.NewFromInt(int64(qty)))
		breakdown.Lines = append(breakdown.Lines, Line{
			ProductID: product.Key(),
			Name:      product.ProductName,
			UnitPrice: product.Price,
			Quantity:  qty,
			Subtotal:  subtotal,
		})
		breakdown.Total = breakdown.Total.Add(subtotal)
	}
	return breakdown
}
