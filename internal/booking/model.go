// Package booking provides read models for booking and travel-package
// documents. Bookings are owned by another subsystem; the invoicing service
// only ever reads them.
package booking

import "time"

// Booking is the subset of a booking document consumed during invoice
// generation.
type Booking struct {
	ID               string
	BookingReference string
	Status           string

	CustomerName    string
	CustomerEmail   string
	CustomerPhone   string
	CustomerAddress string
	CustomerCountry string
	CustomerID      string

	PackageID         string
	Destination       string
	TravelDate        *time.Time
	ReturnDate        *time.Time
	NumberOfTravelers int

	TotalAmount     float64
	Currency        string
	SpecialRequests string
}

// TravelPackage is the subset of a package document consumed during invoice
// generation.
type TravelPackage struct {
	ID          string
	Name        string
	Destination string
	BasePrice   float64
	Currency    string
}
