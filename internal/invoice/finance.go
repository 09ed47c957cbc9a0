package invoice

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Round2 rounds a monetary amount half-up to 2 decimals.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// CalculateFinancials derives subtotal, tax and total from line items.
// The tax base excludes items flagged non-taxable; the discount is a flat
// amount subtracted after tax. The total is not floored at zero: a discount
// larger than subtotal plus tax yields a negative total.
func CalculateFinancials(items []LineItem, taxRate, discountAmount float64) Financials {
	var subtotal, taxableBase float64
	for _, item := range items {
		line := item.Quantity * item.UnitPrice
		subtotal += line
		if item.Taxable {
			taxableBase += line
		}
	}
	subtotal = Round2(subtotal)
	taxAmount := Round2(taxableBase * taxRate / 100)
	return Financials{
		Subtotal:       subtotal,
		TaxRate:        taxRate,
		TaxAmount:      taxAmount,
		DiscountAmount: discountAmount,
		TotalAmount:    Round2(subtotal + taxAmount - discountAmount),
	}
}

// NewLineItemID generates an opaque unique line-item id: epoch millis plus a
// random suffix. IDs are never reused.
func NewLineItemID() string {
	return fmt.Sprintf("%d-%04d", time.Now().UnixMilli(), rand.Intn(10000))
}
