// Package invoice provides the invoicing domain: models, validation,
// financial calculation, lifecycle transitions and booking generation.
package invoice

import (
	"time"
)

// Status represents the lifecycle of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"     // Initial creation, can be edited
	StatusSent      Status = "sent"      // Delivered to the customer
	StatusPaid      Status = "paid"      // Fully settled, terminal
	StatusOverdue   Status = "overdue"   // Past due date without full payment
	StatusCancelled Status = "cancelled" // Cancelled, terminal
	StatusPartial   Status = "partial"   // Partially settled
)

// IsValid checks if the status is part of the vocabulary.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusPaid, StatusOverdue, StatusCancelled, StatusPartial:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status rejects further mutation.
func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusCancelled
}

// CanCancel checks if an invoice in this status may be cancelled.
func (s Status) CanCancel() bool {
	return !s.IsTerminal()
}

// CanTransitionTo checks whether an explicit status change is legal.
// Payment-driven changes (paid, partial) are reachable from any non-terminal
// status; sent only from draft; overdue only from sent.
func (s Status) CanTransitionTo(next Status) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case s:
		return true
	case StatusSent:
		return s == StatusDraft
	case StatusOverdue:
		return s == StatusSent
	case StatusPaid, StatusPartial:
		return true
	case StatusCancelled:
		return s.CanCancel()
	default:
		return false
	}
}

// Type classifies what an invoice bills for.
type Type string

const (
	TypeTravel  Type = "travel"
	TypePackage Type = "package"
	TypeTrip    Type = "trip"
	TypeService Type = "service"
	TypeCustom  Type = "custom"
)

// IsValid checks if the type is part of the vocabulary.
func (t Type) IsValid() bool {
	switch t {
	case TypeTravel, TypePackage, TypeTrip, TypeService, TypeCustom:
		return true
	default:
		return false
	}
}

// LineItem is a single billable entry on an invoice.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
	TotalPrice  float64 `json:"totalPrice"`
	Taxable     bool    `json:"taxable"`
	Category    string  `json:"category,omitempty"`
	Notes       string  `json:"notes,omitempty"`
}

// Financials are the derived monetary fields of an invoice.
type Financials struct {
	Subtotal       float64 `json:"subtotal"`
	TaxRate        float64 `json:"taxRate"`
	TaxAmount      float64 `json:"taxAmount"`
	DiscountAmount float64 `json:"discountAmount"`
	TotalAmount    float64 `json:"totalAmount"`
}

// CompanyProfile is the issuer snapshot copied onto every invoice.
type CompanyProfile struct {
	Name    string `json:"companyName"`
	Address string `json:"companyAddress"`
	Phone   string `json:"companyPhone"`
	Email   string `json:"companyEmail"`
	Website string `json:"companyWebsite"`
	Logo    string `json:"companyLogo,omitempty"`
}

// Invoice is the invoicing aggregate. Line items live here as a typed slice;
// the repository serializes them to a JSON string at the store boundary.
type Invoice struct {
	ID            string `json:"id"`
	InvoiceNumber string `json:"invoiceNumber"`
	Type          Type   `json:"type"`
	Status        Status `json:"status"`

	CustomerName    string `json:"customerName"`
	CustomerEmail   string `json:"customerEmail"`
	CustomerPhone   string `json:"customerPhone,omitempty"`
	CustomerAddress string `json:"customerAddress,omitempty"`
	CustomerCountry string `json:"customerCountry,omitempty"`
	CustomerID      string `json:"customerId,omitempty"`

	BookingReference string `json:"bookingReference,omitempty"`
	BookingID        string `json:"bookingId,omitempty"`

	IssueDate        time.Time  `json:"issueDate"`
	DueDate          time.Time  `json:"dueDate"`
	PaidDate         *time.Time `json:"paidDate,omitempty"`
	SentDate         *time.Time `json:"sentDate,omitempty"`
	LastReminderDate *time.Time `json:"lastReminderDate,omitempty"`

	LineItems      []LineItem `json:"lineItems"`
	Subtotal       float64    `json:"subtotal"`
	TaxRate        float64    `json:"taxRate"`
	TaxAmount      float64    `json:"taxAmount"`
	DiscountAmount float64    `json:"discountAmount"`
	TotalAmount    float64    `json:"totalAmount"`
	PaidAmount     float64    `json:"paidAmount"`
	BalanceDue     float64    `json:"balancedue"`
	Currency       string     `json:"currency"`

	TravelDate        *time.Time `json:"travelDate,omitempty"`
	ReturnDate        *time.Time `json:"returnDate,omitempty"`
	Destination       string     `json:"destination,omitempty"`
	NumberOfTravelers int        `json:"numberOfTravelers,omitempty"`

	Notes               string `json:"notes,omitempty"`
	Terms               string `json:"terms,omitempty"`
	PaymentInstructions string `json:"paymentInstructions,omitempty"`
	PaymentMethod       string `json:"paymentMethod,omitempty"`
	PaymentReference    string `json:"paymentReference,omitempty"`

	ReminderCount int `json:"reminderCount"`

	Company CompanyProfile `json:"company"`
}

// IsOverdue reports whether the invoice is past due and still collectible.
// It is a derived property and never persisted.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	if inv.Status == StatusPaid || inv.Status == StatusCancelled {
		return false
	}
	return inv.DueDate.Before(today(now))
}

// DisplayStatus returns the status to present: a sent invoice past its due
// date shows as overdue without mutating the stored status.
func (inv *Invoice) DisplayStatus(now time.Time) Status {
	if inv.Status == StatusSent && inv.IsOverdue(now) {
		return StatusOverdue
	}
	return inv.Status
}

// today truncates a timestamp to its calendar date.
func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}
