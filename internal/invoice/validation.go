package invoice

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

// totalTolerance is the permitted drift between a stored line total and the
// recomputed quantity times unit price.
const totalTolerance = 0.01

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether the address is syntactically plausible.
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// ValidateLineItems checks structural rules on a line-item list. It returns
// one human-readable message per violation; an empty slice means valid.
func ValidateLineItems(items []LineItem) []string {
	if len(items) == 0 {
		return []string{"At least one line item is required"}
	}
	var errs []string
	for i, item := range items {
		label := fmt.Sprintf("Line item %d", i+1)
		if strings.TrimSpace(item.Description) == "" {
			errs = append(errs, label+": description is required")
		}
		if item.Quantity <= 0 {
			errs = append(errs, label+": quantity must be greater than zero")
		}
		if item.UnitPrice < 0 {
			errs = append(errs, label+": unit price cannot be negative")
		}
		expected := Round2(item.Quantity * item.UnitPrice)
		if math.Abs(item.TotalPrice-expected) > totalTolerance {
			errs = append(errs, fmt.Sprintf("%s: total price %.2f does not match quantity times unit price (expected %.2f)", label, item.TotalPrice, expected))
		}
	}
	return errs
}

// InvoiceData carries the fields checked by ValidateInvoiceData.
type InvoiceData struct {
	Type           Type
	CustomerName   string
	CustomerEmail  string
	IssueDate      time.Time
	DueDate        time.Time
	TaxRate        float64
	DiscountAmount float64
	LineItems      []LineItem
}

// ValidateInvoiceData checks a full invoice payload. Line-item violations are
// aggregated into the returned list. Validation is advisory: the caller
// decides whether to reject the write.
func ValidateInvoiceData(data InvoiceData) []string {
	var errs []string
	if data.Type == "" {
		errs = append(errs, "Invoice type is required")
	} else if !data.Type.IsValid() {
		errs = append(errs, fmt.Sprintf("Invoice type %q is not recognised", data.Type))
	}
	if strings.TrimSpace(data.CustomerName) == "" {
		errs = append(errs, "Customer name is required")
	}
	if !IsValidEmail(data.CustomerEmail) {
		errs = append(errs, "Customer email is invalid")
	}
	if data.IssueDate.IsZero() {
		errs = append(errs, "Issue date is required")
	}
	if data.DueDate.IsZero() {
		errs = append(errs, "Due date is required")
	}
	if !data.IssueDate.IsZero() && !data.DueDate.IsZero() && !data.DueDate.After(data.IssueDate) {
		errs = append(errs, "Due date must be after issue date")
	}
	if data.TaxRate < 0 || data.TaxRate > 100 {
		errs = append(errs, "Tax rate must be between 0 and 100")
	}
	if data.DiscountAmount < 0 {
		errs = append(errs, "Discount amount cannot be negative")
	}
	errs = append(errs, ValidateLineItems(data.LineItems)...)
	return errs
}
