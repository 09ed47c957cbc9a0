package invoice

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar date in API payloads, accepted as "2006-01-02" or full
// RFC3339 and always rendered date-only.
type Date struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Date) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "" || raw == "null" {
		d.Time = time.Time{}
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return fmt.Errorf("invalid date %q", raw)
	}
	d.Time = t
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`null`), nil
	}
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

// LineItemInput is a line item as supplied by API callers.
type LineItemInput struct {
	ID          string   `json:"id,omitempty"`
	Description string   `json:"description" validate:"required"`
	Quantity    float64  `json:"quantity" validate:"gt=0"`
	UnitPrice   float64  `json:"unitPrice" validate:"gte=0"`
	TotalPrice  *float64 `json:"totalPrice,omitempty"`
	Taxable     *bool    `json:"taxable,omitempty"`
	Category    string   `json:"category,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// ToLineItem converts the input to a model line item, applying defaults:
// taxable defaults to true, a missing total is computed, a missing id is
// generated. A supplied total is kept as-is so mismatches surface in
// validation instead of being silently repaired.
func (in LineItemInput) ToLineItem() LineItem {
	item := LineItem{
		ID:          in.ID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   in.UnitPrice,
		Taxable:     true,
		Category:    in.Category,
		Notes:       in.Notes,
	}
	if item.ID == "" {
		item.ID = NewLineItemID()
	}
	if in.Taxable != nil {
		item.Taxable = *in.Taxable
	}
	if in.TotalPrice != nil {
		item.TotalPrice = *in.TotalPrice
	} else {
		item.TotalPrice = Round2(in.Quantity * in.UnitPrice)
	}
	return item
}

func toLineItems(inputs []LineItemInput) []LineItem {
	items := make([]LineItem, 0, len(inputs))
	for _, in := range inputs {
		items = append(items, in.ToLineItem())
	}
	return items
}

// CreateRequest creates an invoice directly.
type CreateRequest struct {
	Type          Type   `json:"type" validate:"required"`
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"required"`

	CustomerPhone   string `json:"customerPhone,omitempty"`
	CustomerAddress string `json:"customerAddress,omitempty"`
	CustomerCountry string `json:"customerCountry,omitempty"`
	CustomerID      string `json:"customerId,omitempty"`

	BookingReference string `json:"bookingReference,omitempty"`
	BookingID        string `json:"bookingId,omitempty"`

	IssueDate *Date `json:"issueDate,omitempty"`
	DueDate   Date  `json:"dueDate" validate:"required"`

	LineItems      []LineItemInput `json:"lineItems" validate:"required,min=1,dive"`
	TaxRate        *float64        `json:"taxRate,omitempty"`
	DiscountAmount *float64        `json:"discountAmount,omitempty"`
	Currency       string          `json:"currency,omitempty"`

	TravelDate        *Date  `json:"travelDate,omitempty"`
	ReturnDate        *Date  `json:"returnDate,omitempty"`
	Destination       string `json:"destination,omitempty"`
	NumberOfTravelers int    `json:"numberOfTravelers,omitempty" validate:"gte=0"`

	Notes               string `json:"notes,omitempty"`
	Terms               string `json:"terms,omitempty"`
	PaymentInstructions string `json:"paymentInstructions,omitempty"`

	Company *CompanyProfile `json:"company,omitempty"`
}

// UpdateRequest mutates an existing invoice. Every field is optional; absent
// fields leave the stored value untouched.
type UpdateRequest struct {
	Status   *Status `json:"status,omitempty"`
	PaidDate *Date   `json:"paidDate,omitempty"`
	SentDate *Date   `json:"sentDate,omitempty"`
	DueDate  *Date   `json:"dueDate,omitempty"`

	PaidAmount       *float64 `json:"paidAmount,omitempty"`
	PaymentMethod    *string  `json:"paymentMethod,omitempty"`
	PaymentReference *string  `json:"paymentReference,omitempty"`

	LineItems      *[]LineItemInput `json:"lineItems,omitempty" validate:"omitempty,dive"`
	TaxRate        *float64         `json:"taxRate,omitempty"`
	DiscountAmount *float64         `json:"discountAmount,omitempty"`

	Notes               *string `json:"notes,omitempty"`
	Terms               *string `json:"terms,omitempty"`
	PaymentInstructions *string `json:"paymentInstructions,omitempty"`
}

// GenerateRequest builds an invoice from a booking.
type GenerateRequest struct {
	BookingID        string `json:"bookingId" validate:"required"`
	BookingReference string `json:"bookingReference" validate:"required"`
	DueDate          Date   `json:"dueDate" validate:"required"`

	TaxRate        *float64 `json:"taxRate,omitempty"`
	DiscountAmount *float64 `json:"discountAmount,omitempty"`

	Notes               *string `json:"notes,omitempty"`
	Terms               *string `json:"terms,omitempty"`
	PaymentInstructions *string `json:"paymentInstructions,omitempty"`

	AdditionalLineItems []LineItemInput `json:"additionalLineItems,omitempty" validate:"omitempty,dive"`
}

// ListFilter narrows List results.
type ListFilter struct {
	Status    Status
	Type      Type
	BookingID string
}

// StatusSummary aggregates one status bucket.
type StatusSummary struct {
	Status      Status  `json:"status"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"totalAmount"`
	BalanceDue  float64 `json:"balanceDue"`
}

// Summary aggregates the whole invoice book.
type Summary struct {
	Statuses    []StatusSummary `json:"statuses"`
	Count       int             `json:"count"`
	TotalAmount float64         `json:"totalAmount"`
	BalanceDue  float64         `json:"balanceDue"`
}

// Response decorates an invoice with derived presentation fields.
type Response struct {
	Invoice
	DisplayStatus    Status `json:"displayStatus"`
	FormattedTotal   string `json:"formattedTotal"`
	FormattedBalance string `json:"formattedBalance"`
}

// NewResponse builds the API view of an invoice.
func NewResponse(inv *Invoice, now time.Time) Response {
	return Response{
		Invoice:          *inv,
		DisplayStatus:    inv.DisplayStatus(now),
		FormattedTotal:   FormatAmount(inv.Currency, inv.TotalAmount),
		FormattedBalance: FormatAmount(inv.Currency, inv.BalanceDue),
	}
}

// ListResponse wraps a list call.
type ListResponse struct {
	Invoices []Response `json:"invoices"`
	Total    int        `json:"total"`
}
