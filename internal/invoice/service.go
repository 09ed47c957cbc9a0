package invoice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/booking"
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	Get(ctx context.Context, id string) (*Invoice, error)
	List(ctx context.Context, filter ListFilter) ([]Invoice, error)
	FindByBooking(ctx context.Context, bookingID string) (*Invoice, error)
	Create(ctx context.Context, inv *Invoice) (*Invoice, error)
	Update(ctx context.Context, inv *Invoice) (*Invoice, error)
}

// BookingSource reads booking and package records.
type BookingSource interface {
	GetBooking(ctx context.Context, id string) (*booking.Booking, error)
	GetPackage(ctx context.Context, id string) (*booking.TravelPackage, error)
}

// SummaryCache caches the aggregated invoice summary.
type SummaryCache interface {
	GetSummary(ctx context.Context) (*Summary, bool)
	SetSummary(ctx context.Context, summary Summary)
	Invalidate(ctx context.Context)
}

// Defaults are the configuration-sourced values stamped onto new invoices.
type Defaults struct {
	Company             CompanyProfile
	Currency            string
	TaxRate             float64
	Terms               string
	PaymentInstructions string
}

// Service holds the invoice business logic: creation, lifecycle transitions,
// payment application and booking generation.
type Service struct {
	repo     RepositoryPort
	bookings BookingSource
	cache    SummaryCache
	defaults Defaults
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds a Service instance.
func NewService(repo RepositoryPort, bookings BookingSource, defaults Defaults, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// SetSummaryCache installs an optional summary cache.
func (s *Service) SetSummaryCache(cache SummaryCache) {
	s.cache = cache
}

// WithNow overrides the service clock for testing.
func (s *Service) WithNow(fn func() time.Time) {
	if fn != nil {
		s.now = fn
	}
}

// Get retrieves an invoice by id.
func (s *Service) Get(ctx context.Context, id string) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns invoices matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, error) {
	return s.repo.List(ctx, filter)
}

// Create builds and persists an invoice from a direct creation request.
// A request carrying a bookingId is held to the same one-invoice-per-booking
// rule as the generator.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Invoice, error) {
	now := s.now()
	issueDate := today(now)
	if req.IssueDate != nil && !req.IssueDate.IsZero() {
		issueDate = today(req.IssueDate.Time)
	}
	dueDate := today(req.DueDate.Time)

	items := toLineItems(req.LineItems)
	taxRate := s.defaults.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	var discount float64
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}

	if msgs := ValidateInvoiceData(InvoiceData{
		Type:           req.Type,
		CustomerName:   req.CustomerName,
		CustomerEmail:  req.CustomerEmail,
		IssueDate:      issueDate,
		DueDate:        dueDate,
		TaxRate:        taxRate,
		DiscountAmount: discount,
		LineItems:      items,
	}); len(msgs) > 0 {
		return nil, &ValidationErrors{Messages: msgs}
	}

	currency := s.defaults.Currency
	if req.Currency != "" {
		currency = req.Currency
	}
	if !IsValidCurrency(currency) {
		return nil, &ValidationErrors{Messages: []string{fmt.Sprintf("Currency %q is not supported", currency)}}
	}

	if req.BookingID != "" {
		existing, err := s.repo.FindByBooking(ctx, req.BookingID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, &BookingConflictError{Existing: existing}
		}
	}

	fin := CalculateFinancials(items, taxRate, discount)

	inv := &Invoice{
		InvoiceNumber: NewInvoiceNumber(now),
		Type:          req.Type,
		Status:        StatusDraft,

		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		CustomerCountry: req.CustomerCountry,
		CustomerID:      req.CustomerID,

		BookingReference: req.BookingReference,
		BookingID:        req.BookingID,

		IssueDate: issueDate,
		DueDate:   dueDate,

		LineItems:      items,
		Subtotal:       fin.Subtotal,
		TaxRate:        fin.TaxRate,
		TaxAmount:      fin.TaxAmount,
		DiscountAmount: fin.DiscountAmount,
		TotalAmount:    fin.TotalAmount,
		PaidAmount:     0,
		BalanceDue:     fin.TotalAmount,
		Currency:       currency,

		Destination:       req.Destination,
		NumberOfTravelers: req.NumberOfTravelers,

		Notes:               req.Notes,
		Terms:               orDefault(req.Terms, s.defaults.Terms),
		PaymentInstructions: orDefault(req.PaymentInstructions, s.defaults.PaymentInstructions),

		Company: s.defaults.Company,
	}
	if req.TravelDate != nil && !req.TravelDate.IsZero() {
		t := today(req.TravelDate.Time)
		inv.TravelDate = &t
	}
	if req.ReturnDate != nil && !req.ReturnDate.IsZero() {
		t := today(req.ReturnDate.Time)
		inv.ReturnDate = &t
	}
	if req.Company != nil {
		inv.Company = *req.Company
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	return created, nil
}

// Update applies a lifecycle update to an invoice: status transitions,
// payment application, line-item and tax edits. Paid and cancelled invoices
// reject every mutation.
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*Invoice, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: invoice is %s", ErrCannotUpdate, current.Status)
	}

	next := *current

	if req.Notes != nil {
		next.Notes = *req.Notes
	}
	if req.Terms != nil {
		next.Terms = *req.Terms
	}
	if req.PaymentInstructions != nil {
		next.PaymentInstructions = *req.PaymentInstructions
	}
	if req.PaymentMethod != nil {
		next.PaymentMethod = *req.PaymentMethod
	}
	if req.PaymentReference != nil {
		next.PaymentReference = *req.PaymentReference
	}
	if req.DueDate != nil && !req.DueDate.IsZero() {
		next.DueDate = today(req.DueDate.Time)
	}

	// Line-item edits recompute the financial fields. Tax or discount edits
	// without line items re-run the calculator against the stored items.
	if req.LineItems != nil {
		items := toLineItems(*req.LineItems)
		if msgs := ValidateLineItems(items); len(msgs) > 0 {
			return nil, &ValidationErrors{Messages: msgs}
		}
		if msgs := validateRates(req); len(msgs) > 0 {
			return nil, &ValidationErrors{Messages: msgs}
		}
		next.LineItems = items
		s.applyFinancials(&next, req)
	} else if req.TaxRate != nil || req.DiscountAmount != nil {
		if msgs := validateRates(req); len(msgs) > 0 {
			return nil, &ValidationErrors{Messages: msgs}
		}
		s.applyFinancials(&next, req)
	}

	// First sentDate on a draft promotes it to sent.
	if req.SentDate != nil && !req.SentDate.IsZero() {
		t := req.SentDate.Time
		next.SentDate = &t
		if current.SentDate == nil && current.Status == StatusDraft {
			next.Status = StatusSent
		}
	}

	if req.PaidDate != nil && !req.PaidDate.IsZero() {
		t := today(req.PaidDate.Time)
		next.PaidDate = &t
	}

	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, &ValidationErrors{Messages: []string{fmt.Sprintf("Status %q is not recognised", *req.Status)}}
		}
		if !current.Status.CanTransitionTo(*req.Status) {
			return nil, fmt.Errorf("%w: %s to %s", ErrIllegalTransition, current.Status, *req.Status)
		}
		next.Status = *req.Status
		if next.Status == StatusPaid {
			if next.PaidDate == nil {
				t := today(s.now())
				next.PaidDate = &t
			}
			if req.PaidAmount == nil {
				next.PaidAmount = next.TotalAmount
				next.BalanceDue = 0
			}
		}
	}

	// Payment application may force the status regardless of what the caller
	// asked for.
	if req.PaidAmount != nil {
		if *req.PaidAmount < 0 {
			return nil, &ValidationErrors{Messages: []string{"Paid amount cannot be negative"}}
		}
		next.PaidAmount = *req.PaidAmount
		next.BalanceDue = Round2(next.TotalAmount - next.PaidAmount)
		if next.PaidAmount >= next.TotalAmount {
			next.Status = StatusPaid
			if next.PaidDate == nil {
				t := today(s.now())
				next.PaidDate = &t
			}
			next.BalanceDue = 0
		} else if next.PaidAmount > 0 {
			next.Status = StatusPartial
		}
	}

	if next.Status != StatusPaid {
		next.BalanceDue = Round2(next.TotalAmount - next.PaidAmount)
	}

	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	return updated, nil
}

// Cancel transitions an invoice to cancelled. Cancellation is a status
// change, never a deletion.
func (s *Service) Cancel(ctx context.Context, id string) (*Invoice, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanCancel() {
		return nil, fmt.Errorf("%w: invoice is %s", ErrCannotCancel, current.Status)
	}
	next := *current
	next.Status = StatusCancelled
	updated, err := s.repo.Update(ctx, &next)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	return updated, nil
}

// GenerateFromBooking builds and persists a draft invoice from a booking
// record, enforcing at most one invoice per booking.
func (s *Service) GenerateFromBooking(ctx context.Context, req GenerateRequest) (*Invoice, error) {
	now := s.now()
	if !today(req.DueDate.Time).After(today(now)) {
		return nil, &ValidationErrors{Messages: []string{"Due date must be in the future"}}
	}

	existing, err := s.repo.FindByBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &BookingConflictError{Existing: existing}
	}

	bkg, err := s.bookings.GetBooking(ctx, req.BookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", req.BookingID, ErrBookingNotFound)
		}
		return nil, err
	}
	if bkg.BookingReference != req.BookingReference {
		return nil, fmt.Errorf("%w: got %q", ErrReferenceMismatch, req.BookingReference)
	}

	// A missing or broken package record is tolerated: the invoice falls back
	// to generic travel services.
	var pkg *booking.TravelPackage
	if bkg.PackageID != "" {
		pkg, err = s.bookings.GetPackage(ctx, bkg.PackageID)
		if err != nil {
			s.logger.Warn("package lookup failed, generating without package",
				slog.String("packageId", bkg.PackageID), slog.Any("error", err))
			pkg = nil
		}
	}

	items := s.buildLineItems(bkg, pkg, req)

	taxRate := s.defaults.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	var discount float64
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	fin := CalculateFinancials(items, taxRate, discount)

	invoiceType := TypeService
	if pkg != nil {
		invoiceType = TypeTravel
	}
	currency := bkg.Currency
	if !IsValidCurrency(currency) {
		currency = s.defaults.Currency
	}

	inv := &Invoice{
		InvoiceNumber: NewInvoiceNumber(now),
		Type:          invoiceType,
		Status:        StatusDraft,

		CustomerName:    bkg.CustomerName,
		CustomerEmail:   bkg.CustomerEmail,
		CustomerPhone:   bkg.CustomerPhone,
		CustomerAddress: bkg.CustomerAddress,
		CustomerCountry: bkg.CustomerCountry,
		CustomerID:      bkg.CustomerID,

		BookingReference: bkg.BookingReference,
		BookingID:        bkg.ID,

		IssueDate: today(now),
		DueDate:   today(req.DueDate.Time),

		LineItems:      items,
		Subtotal:       fin.Subtotal,
		TaxRate:        fin.TaxRate,
		TaxAmount:      fin.TaxAmount,
		DiscountAmount: fin.DiscountAmount,
		TotalAmount:    fin.TotalAmount,
		PaidAmount:     0,
		BalanceDue:     fin.TotalAmount,
		Currency:       currency,

		TravelDate:        bkg.TravelDate,
		ReturnDate:        bkg.ReturnDate,
		Destination:       bkg.Destination,
		NumberOfTravelers: bkg.NumberOfTravelers,

		Terms:               orDefaultPtr(req.Terms, s.defaults.Terms),
		PaymentInstructions: orDefaultPtr(req.PaymentInstructions, s.defaults.PaymentInstructions),

		Company: s.defaults.Company,
	}
	if req.Notes != nil {
		inv.Notes = *req.Notes
	}

	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, err
	}
	s.invalidateSummary(ctx)
	return created, nil
}

// RecordReminder bumps the reminder counter and timestamp on an invoice.
func (s *Service) RecordReminder(ctx context.Context, id string) (*Invoice, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: invoice is %s", ErrCannotUpdate, current.Status)
	}
	next := *current
	next.ReminderCount++
	now := s.now()
	next.LastReminderDate = &now
	return s.repo.Update(ctx, &next)
}

// OverdueCandidates lists sent invoices whose due date has passed.
func (s *Service) OverdueCandidates(ctx context.Context) ([]Invoice, error) {
	sent, err := s.repo.List(ctx, ListFilter{Status: StatusSent})
	if err != nil {
		return nil, err
	}
	now := s.now()
	var out []Invoice
	for _, inv := range sent {
		if inv.IsOverdue(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// MarkOverdue persists the overdue status on a sent, past-due invoice.
func (s *Service) MarkOverdue(ctx context.Context, id string) (*Invoice, error) {
	status := StatusOverdue
	return s.Update(ctx, id, UpdateRequest{Status: &status})
}

// allStatuses is the summary bucketing order.
var allStatuses = []Status{StatusDraft, StatusSent, StatusPartial, StatusOverdue, StatusPaid, StatusCancelled}

// Summarize aggregates counts and amounts per status, fanning the per-status
// queries out concurrently. Results are cached when a cache is installed.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	if s.cache != nil {
		if cached, ok := s.cache.GetSummary(ctx); ok {
			return *cached, nil
		}
	}

	buckets := make([]StatusSummary, len(allStatuses))
	g, gctx := errgroup.WithContext(ctx)
	for i, status := range allStatuses {
		g.Go(func() error {
			invoices, err := s.repo.List(gctx, ListFilter{Status: status})
			if err != nil {
				return err
			}
			bucket := StatusSummary{Status: status, Count: len(invoices)}
			for _, inv := range invoices {
				bucket.TotalAmount = Round2(bucket.TotalAmount + inv.TotalAmount)
				bucket.BalanceDue = Round2(bucket.BalanceDue + inv.BalanceDue)
			}
			buckets[i] = bucket
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	summary := Summary{Statuses: buckets}
	for _, bucket := range buckets {
		summary.Count += bucket.Count
		summary.TotalAmount = Round2(summary.TotalAmount + bucket.TotalAmount)
		summary.BalanceDue = Round2(summary.BalanceDue + bucket.BalanceDue)
	}

	if s.cache != nil {
		s.cache.SetSummary(ctx, summary)
	}
	return summary, nil
}

func (s *Service) buildLineItems(bkg *booking.Booking, pkg *booking.TravelPackage, req GenerateRequest) []LineItem {
	quantity := float64(bkg.NumberOfTravelers)
	if quantity <= 0 {
		quantity = 1
	}
	var unitPrice float64
	switch {
	case bkg.TotalAmount > 0:
		unitPrice = Round2(bkg.TotalAmount / quantity)
	case pkg != nil:
		unitPrice = pkg.BasePrice
	}

	var primary LineItem
	if pkg != nil {
		primary = LineItem{
			ID:          NewLineItemID(),
			Description: "Travel Package: " + pkg.Name,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  Round2(quantity * unitPrice),
			Taxable:     true,
			Category:    "Travel Package",
		}
	} else {
		primary = LineItem{
			ID:          NewLineItemID(),
			Description: "Travel Services - Booking " + bkg.BookingReference,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			TotalPrice:  Round2(quantity * unitPrice),
			Taxable:     true,
			Category:    "Travel Services",
		}
	}
	items := []LineItem{primary}

	// Special requests ride along as a zero-priced record-keeping item.
	if bkg.SpecialRequests != "" {
		items = append(items, LineItem{
			ID:          NewLineItemID(),
			Description: "Special Requests: " + bkg.SpecialRequests,
			Quantity:    1,
			UnitPrice:   0,
			TotalPrice:  0,
			Taxable:     false,
			Category:    "Additional Services",
		})
	}

	items = append(items, toLineItems(req.AdditionalLineItems)...)
	return items
}

func validateRates(req UpdateRequest) []string {
	var msgs []string
	if req.TaxRate != nil && (*req.TaxRate < 0 || *req.TaxRate > 100) {
		msgs = append(msgs, "Tax rate must be between 0 and 100")
	}
	if req.DiscountAmount != nil && *req.DiscountAmount < 0 {
		msgs = append(msgs, "Discount amount cannot be negative")
	}
	return msgs
}

func (s *Service) applyFinancials(next *Invoice, req UpdateRequest) {
	taxRate := next.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	discount := next.DiscountAmount
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}
	fin := CalculateFinancials(next.LineItems, taxRate, discount)
	next.Subtotal = fin.Subtotal
	next.TaxRate = fin.TaxRate
	next.TaxAmount = fin.TaxAmount
	next.DiscountAmount = fin.DiscountAmount
	next.TotalAmount = fin.TotalAmount
}

func (s *Service) invalidateSummary(ctx context.Context) {
	if s.cache == nil {
		return
	}
	s.cache.Invalidate(ctx)
}

func orDefault(value, def string) string {
	if value != "" {
		return value
	}
	return def
}

func orDefaultPtr(value *string, def string) string {
	if value != nil && *value != "" {
		return *value
	}
	return def
}
