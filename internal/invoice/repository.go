package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/platform/docstore"
)

// CollectionInvoices is the document collection invoices persist into.
const CollectionInvoices = "invoices"

// Repository persists invoices in the document store. Documents are flat:
// line items ride in a single serialized JSON attribute, dates as strings.
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// Get fetches an invoice by document id.
func (r *Repository) Get(ctx context.Context, id string) (*Invoice, error) {
	doc, err := r.store.Get(ctx, CollectionInvoices, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("invoice %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load invoice: %w: %w", ErrStore, err)
	}
	return fromDoc(doc)
}

// List returns invoices matching the filter.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	var queries []docstore.Query
	if filter.Status != "" {
		queries = append(queries, docstore.Equal("status", string(filter.Status)))
	}
	if filter.Type != "" {
		queries = append(queries, docstore.Equal("type", string(filter.Type)))
	}
	if filter.BookingID != "" {
		queries = append(queries, docstore.Equal("bookingId", filter.BookingID))
	}
	docs, err := r.store.List(ctx, CollectionInvoices, queries...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w: %w", ErrStore, err)
	}
	out := make([]Invoice, 0, len(docs))
	for _, doc := range docs {
		inv, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, nil
}

// FindByBooking returns the invoice linked to a booking, or nil when none
// exists.
func (r *Repository) FindByBooking(ctx context.Context, bookingID string) (*Invoice, error) {
	docs, err := r.store.List(ctx, CollectionInvoices, docstore.Equal("bookingId", bookingID))
	if err != nil {
		return nil, fmt.Errorf("failed to query invoices by booking: %w: %w", ErrStore, err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return fromDoc(docs[0])
}

// Create persists a new invoice and returns it with its assigned id.
func (r *Repository) Create(ctx context.Context, inv *Invoice) (*Invoice, error) {
	fields, err := toFields(inv)
	if err != nil {
		return nil, err
	}
	doc, err := r.store.Create(ctx, CollectionInvoices, inv.ID, fields)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrConflict):
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNumber, inv.InvoiceNumber)
		case errors.Is(err, docstore.ErrInvalidSchema):
			return nil, fmt.Errorf("failed to create invoice: %w: %w", ErrStore, err)
		default:
			return nil, fmt.Errorf("failed to create invoice: %w: %w", ErrStore, err)
		}
	}
	created := *inv
	created.ID = doc.ID
	return &created, nil
}

// Update replaces the stored state of an invoice.
func (r *Repository) Update(ctx context.Context, inv *Invoice) (*Invoice, error) {
	fields, err := toFields(inv)
	if err != nil {
		return nil, err
	}
	doc, err := r.store.Update(ctx, CollectionInvoices, inv.ID, fields)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			return nil, fmt.Errorf("invoice %s: %w", inv.ID, ErrNotFound)
		case errors.Is(err, docstore.ErrConflict):
			return nil, fmt.Errorf("%w: %s", ErrDuplicateNumber, inv.InvoiceNumber)
		default:
			return nil, fmt.Errorf("failed to update invoice: %w: %w", ErrStore, err)
		}
	}
	return fromDoc(doc)
}

const (
	dateLayout = "2006-01-02"
)

func toFields(inv *Invoice) (docstore.Fields, error) {
	serialized, err := StringifyLineItems(inv.LineItems)
	if err != nil {
		return nil, fmt.Errorf("failed to encode invoice: %w: %w", ErrStore, err)
	}
	fields := docstore.Fields{
		"invoiceNumber": inv.InvoiceNumber,
		"type":          string(inv.Type),
		"status":        string(inv.Status),

		"customerName":    inv.CustomerName,
		"customerEmail":   inv.CustomerEmail,
		"customerPhone":   inv.CustomerPhone,
		"customerAddress": inv.CustomerAddress,
		"customerCountry": inv.CustomerCountry,
		"customerId":      inv.CustomerID,

		"bookingReference": inv.BookingReference,
		"bookingId":        inv.BookingID,

		"issueDate":        inv.IssueDate.Format(dateLayout),
		"dueDate":          inv.DueDate.Format(dateLayout),
		"paidDate":         encodeDate(inv.PaidDate),
		"sentDate":         encodeTimestamp(inv.SentDate),
		"lastReminderDate": encodeTimestamp(inv.LastReminderDate),

		"lineItems":      serialized,
		"subtotal":       inv.Subtotal,
		"taxRate":        inv.TaxRate,
		"taxAmount":      inv.TaxAmount,
		"discountAmount": inv.DiscountAmount,
		"totalAmount":    inv.TotalAmount,
		"paidAmount":     inv.PaidAmount,
		"balancedue":     inv.BalanceDue,
		"currency":       inv.Currency,

		"travelDate":        encodeDate(inv.TravelDate),
		"returnDate":        encodeDate(inv.ReturnDate),
		"destination":       inv.Destination,
		"numberOfTravelers": inv.NumberOfTravelers,

		"notes":               inv.Notes,
		"terms":               inv.Terms,
		"paymentInstructions": inv.PaymentInstructions,
		"paymentMethod":       inv.PaymentMethod,
		"paymentReference":    inv.PaymentReference,

		"reminderCount": inv.ReminderCount,

		"companyName":    inv.Company.Name,
		"companyAddress": inv.Company.Address,
		"companyPhone":   inv.Company.Phone,
		"companyEmail":   inv.Company.Email,
		"companyWebsite": inv.Company.Website,
		"companyLogo":    inv.Company.Logo,
	}
	return fields, nil
}

func fromDoc(doc docstore.Document) (*Invoice, error) {
	items, err := ParseLineItems(doc.String("lineItems"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode invoice %s: %w: %w", doc.ID, ErrStore, err)
	}
	issueDate, err := decodeRequiredDate(doc.String("issueDate"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode invoice %s issue date: %w: %w", doc.ID, ErrStore, err)
	}
	dueDate, err := decodeRequiredDate(doc.String("dueDate"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode invoice %s due date: %w: %w", doc.ID, ErrStore, err)
	}
	return &Invoice{
		ID:            doc.ID,
		InvoiceNumber: doc.String("invoiceNumber"),
		Type:          Type(doc.String("type")),
		Status:        Status(doc.String("status")),

		CustomerName:    doc.String("customerName"),
		CustomerEmail:   doc.String("customerEmail"),
		CustomerPhone:   doc.String("customerPhone"),
		CustomerAddress: doc.String("customerAddress"),
		CustomerCountry: doc.String("customerCountry"),
		CustomerID:      doc.String("customerId"),

		BookingReference: doc.String("bookingReference"),
		BookingID:        doc.String("bookingId"),

		IssueDate:        issueDate,
		DueDate:          dueDate,
		PaidDate:         decodeDate(doc.String("paidDate")),
		SentDate:         decodeDate(doc.String("sentDate")),
		LastReminderDate: decodeDate(doc.String("lastReminderDate")),

		LineItems:      items,
		Subtotal:       doc.Float("subtotal"),
		TaxRate:        doc.Float("taxRate"),
		TaxAmount:      doc.Float("taxAmount"),
		DiscountAmount: doc.Float("discountAmount"),
		TotalAmount:    doc.Float("totalAmount"),
		PaidAmount:     doc.Float("paidAmount"),
		BalanceDue:     doc.Float("balancedue"),
		Currency:       doc.String("currency"),

		TravelDate:        decodeDate(doc.String("travelDate")),
		ReturnDate:        decodeDate(doc.String("returnDate")),
		Destination:       doc.String("destination"),
		NumberOfTravelers: doc.Int("numberOfTravelers"),

		Notes:               doc.String("notes"),
		Terms:               doc.String("terms"),
		PaymentInstructions: doc.String("paymentInstructions"),
		PaymentMethod:       doc.String("paymentMethod"),
		PaymentReference:    doc.String("paymentReference"),

		ReminderCount: doc.Int("reminderCount"),

		Company: CompanyProfile{
			Name:    doc.String("companyName"),
			Address: doc.String("companyAddress"),
			Phone:   doc.String("companyPhone"),
			Email:   doc.String("companyEmail"),
			Website: doc.String("companyWebsite"),
			Logo:    doc.String("companyLogo"),
		},
	}, nil
}

func encodeDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateLayout)
}

func encodeTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func decodeRequiredDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing date")
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func decodeDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
