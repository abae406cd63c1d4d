package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudonauts/storefront/pkg/models"
)

func product(pid int, name, price string, inventory int) models.Product {
	return models.Product{
		PID:         pid,
		ProductName: name,
		Price:       decimal.RequireFromString(price),
		Inventory:   inventory,
	}
}

func TestTotalItemCount(t *testing.T) {
	assert.Equal(t, 0, TotalItemCount(nil))
	assert.Equal(t, 0, TotalItemCount(Items{}))
	assert.Equal(t, 6, TotalItemCount(Items{"p1": 1, "p2": 2, "p3": 3}))
}

func TestPriceBreakdownExactTotal(t *testing.T) {
	listing := []models.Product{product(1, "Sneakers", "9.99", 10)}
	breakdown := PriceBreakdown(Items{"1": 3}, listing)

	require.Len(t, breakdown.Lines, 1)
	line := breakdown.Lines[0]
	assert.Equal(t, "1", line.ProductID)
	assert.Equal(t, "Sneakers", line.Name)
	assert.Equal(t, 3, line.Quantity)
	assert.True(t, line.Subtotal.Equal(decimal.RequireFromString("29.97")))
	assert.True(t, breakdown.Total.Equal(decimal.RequireFromString("29.97")))
	assert.Equal(t, "29.97", breakdown.DisplayTotal())
}

// Repeated float addition would drift; decimal summation must not.
func TestPriceBreakdownNoCompoundedRounding(t *testing.T) {
	listing := []models.Product{
		product(1, "A", "0.10", 100),
		product(2, "B", "0.20", 100),
		product(3, "C", "0.30", 100),
	}
	breakdown := PriceBreakdown(Items{"1": 1, "2": 1, "3": 1}, listing)
	assert.Equal(t, "0.60", breakdown.DisplayTotal())
}

func TestPriceBreakdownSkipsUncachedProducts(t *testing.T) {
	listing := []models.Product{product(1, "Cached", "5.00", 10)}
	items := Items{"1": 2, "2": 1}

	breakdown := PriceBreakdown(items, listing)
	require.Len(t, breakdown.Lines, 1)
	assert.Equal(t, "1", breakdown.Lines[0].ProductID)
	assert.Equal(t, "10.00", breakdown.DisplayTotal())

	// The missing product still counts toward the badge and stays in the
	// cart mapping untouched.
	assert.Equal(t, 3, TotalItemCount(items))
	assert.Equal(t, 1, items["2"])
}

func TestPriceBreakdownEmptyCart(t *testing.T) {
	breakdown := PriceBreakdown(Items{}, []models.Product{product(1, "A", "1.00", 1)})
	assert.Empty(t, breakdown.Lines)
	assert.Equal(t, "0.00", breakdown.DisplayTotal())
}
