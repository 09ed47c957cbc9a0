package invoice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{1.004, 1.0},
		{1.006, 1.01},
		{2.346, 2.35},
		{-2.344, -2.34},
		{1234.5678, 1234.57},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, Round2(tc.in), 0.0001, "Round2(%v)", tc.in)
	}
}

func TestCalculateFinancials(t *testing.T) {
	items := []LineItem{
		{Description: "Package", Quantity: 2, UnitPrice: 500, TotalPrice: 1000, Taxable: true},
		{Description: "Airport transfer", Quantity: 1, UnitPrice: 49.99, TotalPrice: 49.99, Taxable: true},
		{Description: "Visa handling", Quantity: 1, UnitPrice: 120, TotalPrice: 120, Taxable: false},
	}

	fin := CalculateFinancials(items, 13, 50)

	assert.InDelta(t, 1169.99, fin.Subtotal, 0.001)
	// Tax applies to the taxable base only: 1049.99 * 13%.
	assert.InDelta(t, 136.50, fin.TaxAmount, 0.001)
	assert.InDelta(t, 13, fin.TaxRate, 0.001)
	assert.InDelta(t, 50, fin.DiscountAmount, 0.001)
	assert.InDelta(t, 1256.49, fin.TotalAmount, 0.001)
}

func TestCalculateFinancialsNoTaxableItems(t *testing.T) {
	items := []LineItem{
		{Description: "Exempt service", Quantity: 1, UnitPrice: 200, TotalPrice: 200, Taxable: false},
	}
	fin := CalculateFinancials(items, 10, 0)
	assert.InDelta(t, 200, fin.Subtotal, 0.001)
	assert.InDelta(t, 0, fin.TaxAmount, 0.001)
	assert.InDelta(t, 200, fin.TotalAmount, 0.001)
}

func TestCalculateFinancialsZeroRate(t *testing.T) {
	items := []LineItem{
		{Description: "Trip", Quantity: 3, UnitPrice: 33.33, TotalPrice: 99.99, Taxable: true},
	}
	fin := CalculateFinancials(items, 0, 0)
	assert.InDelta(t, 99.99, fin.Subtotal, 0.001)
	assert.InDelta(t, 0, fin.TaxAmount, 0.001)
	assert.InDelta(t, 99.99, fin.TotalAmount, 0.001)
}

func TestCalculateFinancialsDiscountExceedsTotal(t *testing.T) {
	items := []LineItem{
		{Description: "Deposit", Quantity: 1, UnitPrice: 100, TotalPrice: 100, Taxable: false},
	}
	fin := CalculateFinancials(items, 0, 150)
	// Totals are not floored at zero.
	assert.InDelta(t, -50, fin.TotalAmount, 0.001)
}

func TestCalculateFinancialsEmpty(t *testing.T) {
	fin := CalculateFinancials(nil, 13, 0)
	assert.Zero(t, fin.Subtotal)
	assert.Zero(t, fin.TaxAmount)
	assert.Zero(t, fin.TotalAmount)
}

func TestNewLineItemID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		id := NewLineItemID()
		require.NotEmpty(t, id)
		require.True(t, strings.Contains(id, "-"), "id %q should contain separator", id)
		seen[id] = struct{}{}
	}
	// Collisions within a single millisecond are possible but should be rare
	// enough for a hundred draws to stay mostly unique.
	assert.Greater(t, len(seen), 90)
}
