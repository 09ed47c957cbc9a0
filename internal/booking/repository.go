package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/platform/docstore"
)

// Collections read by this package.
const (
	CollectionBookings = "bookings"
	CollectionPackages = "packages"
)

// ErrNotFound indicates the requested booking or package was not found.
var ErrNotFound = errors.New("booking record not found")

// Repository reads booking and package documents from the store.
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new repository.
func NewRepository(store docstore.Store) *Repository {
	return &Repository{store: store}
}

// GetBooking fetches a booking by document id.
func (r *Repository) GetBooking(ctx context.Context, id string) (*Booking, error) {
	doc, err := r.store.Get(ctx, CollectionBookings, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get booking %s: %w", id, err)
	}
	return bookingFromDoc(doc), nil
}

// GetPackage fetches a travel package by document id.
func (r *Repository) GetPackage(ctx context.Context, id string) (*TravelPackage, error) {
	doc, err := r.store.Get(ctx, CollectionPackages, id)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get package %s: %w", id, err)
	}
	return &TravelPackage{
		ID:          doc.ID,
		Name:        doc.String("name"),
		Destination: doc.String("destination"),
		BasePrice:   doc.Float("basePrice"),
		Currency:    doc.String("currency"),
	}, nil
}

func bookingFromDoc(doc docstore.Document) *Booking {
	return &Booking{
		ID:               doc.ID,
		BookingReference: doc.String("bookingReference"),
		Status:           doc.String("status"),
		CustomerName:     doc.String("customerName"),
		CustomerEmail:    doc.String("customerEmail"),
		CustomerPhone:    doc.String("customerPhone"),
		CustomerAddress:  doc.String("customerAddress"),
		CustomerCountry:  doc.String("customerCountry"),
		CustomerID:       doc.String("customerId"),

		PackageID:         doc.String("packageId"),
		Destination:       doc.String("destination"),
		TravelDate:        parseDate(doc.String("travelDate")),
		ReturnDate:        parseDate(doc.String("returnDate")),
		NumberOfTravelers: doc.Int("numberOfTravelers"),

		TotalAmount:     doc.Float("totalAmount"),
		Currency:        doc.String("currency"),
		SpecialRequests: doc.String("specialRequests"),
	}
}

func parseDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	return nil
}
