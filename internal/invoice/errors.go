package invoice

import (
	"errors"
	"strings"
)

// Domain errors for invoices.
var (
	// ErrNotFound indicates the requested invoice was not found.
	ErrNotFound = errors.New("invoice not found")
	// ErrBookingNotFound indicates the referenced booking was not found.
	ErrBookingNotFound = errors.New("booking not found")

	// Status transition errors.
	ErrCannotUpdate      = errors.New("cannot update invoice in current status")
	ErrCannotCancel      = errors.New("cannot cancel invoice in current status")
	ErrIllegalTransition = errors.New("illegal status transition")

	// Validation errors.
	ErrInvalidPayload    = errors.New("invoice data is invalid")
	ErrDueDateNotFuture  = errors.New("due date must be in the future")
	ErrReferenceMismatch = errors.New("booking reference does not match booking record")

	// Business rule errors.
	ErrDuplicateBookingInvoice = errors.New("an invoice already exists for this booking")
	ErrDuplicateNumber         = errors.New("invoice number already exists")

	// ErrStore wraps underlying document-store failures with a generic message.
	ErrStore = errors.New("document store operation failed")
)

// ValidationErrors carries the itemized messages produced by the validator.
type ValidationErrors struct {
	Messages []string
}

func (e *ValidationErrors) Error() string {
	return "invoice data is invalid: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationErrors) Unwrap() error {
	return ErrInvalidPayload
}

// BookingConflictError reports a duplicate invoice for a booking and surfaces
// the invoice that already exists.
type BookingConflictError struct {
	Existing *Invoice
}

func (e *BookingConflictError) Error() string {
	return "an invoice already exists for this booking: " + e.Existing.InvoiceNumber
}

func (e *BookingConflictError) Unwrap() error {
	return ErrDuplicateBookingInvoice
}
