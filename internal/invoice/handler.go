package invoice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rajanjha-rb/brothers-holidays-sub001/internal/platform/httpx"
)

// ReminderEnqueuer submits reminder jobs for asynchronous delivery.
type ReminderEnqueuer interface {
	EnqueueReminder(ctx context.Context, invoiceID, email string) error
}

// Handler manages invoice HTTP endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validate  *validator.Validate
	reminders ReminderEnqueuer
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
	}
}

// SetReminderEnqueuer installs the job queue used by the remind endpoint.
func (h *Handler) SetReminderEnqueuer(enqueuer ReminderEnqueuer) {
	h.reminders = enqueuer
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)
	r.Post("/generate", h.generate)
	r.Get("/{id}", h.show)
	r.Patch("/{id}", h.update)
	r.Post("/{id}/cancel", h.cancel)
	r.Post("/{id}/remind", h.remind)
}

// create handles POST /invoices
func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, "request body failed validation", fieldMessages(err))
		return
	}

	inv, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, "create invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewResponse(inv, time.Now()))
}

// list handles GET /invoices
func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Status:    Status(r.URL.Query().Get("status")),
		Type:      Type(r.URL.Query().Get("type")),
		BookingID: r.URL.Query().Get("bookingId"),
	}
	if filter.Status != "" && !filter.Status.IsValid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status filter")
		return
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown type filter")
		return
	}

	invoices, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.respondError(w, "list invoices", err)
		return
	}
	now := time.Now()
	resp := ListResponse{Invoices: make([]Response, 0, len(invoices)), Total: len(invoices)}
	for i := range invoices {
		resp.Invoices = append(resp.Invoices, NewResponse(&invoices[i], now))
	}
	httpx.JSON(w, http.StatusOK, resp)
}

// show handles GET /invoices/{id}
func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "get invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewResponse(inv, time.Now()))
}

// update handles PATCH /invoices/{id}
func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, "request body failed validation", fieldMessages(err))
		return
	}

	inv, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, "update invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewResponse(inv, time.Now()))
}

// cancel handles POST /invoices/{id}/cancel
func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "cancel invoice", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewResponse(inv, time.Now()))
}

// generate handles POST /invoices/generate
func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, "request body failed validation", fieldMessages(err))
		return
	}

	inv, err := h.service.GenerateFromBooking(r.Context(), req)
	if err != nil {
		h.respondError(w, "generate invoice", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, NewResponse(inv, time.Now()))
}

// remind handles POST /invoices/{id}/remind
func (h *Handler) remind(w http.ResponseWriter, r *http.Request) {
	inv, err := h.service.RecordReminder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, "record reminder", err)
		return
	}
	// Delivery is best-effort: a queue failure is logged, not surfaced.
	if h.reminders != nil {
		if err := h.reminders.EnqueueReminder(r.Context(), inv.ID, inv.CustomerEmail); err != nil {
			h.logger.Warn("enqueue reminder failed", slog.String("invoice", inv.ID), slog.Any("error", err))
		}
	}
	httpx.JSON(w, http.StatusAccepted, NewResponse(inv, time.Now()))
}

// summary handles GET /invoices/summary
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summarize(r.Context())
	if err != nil {
		h.respondError(w, "summarize invoices", err)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// respondError maps domain errors to problem responses. Store failures are
// logged in full and answered generically.
func (h *Handler) respondError(w http.ResponseWriter, op string, err error) {
	var validationErrs *ValidationErrors
	if errors.As(err, &validationErrs) {
		httpx.ValidationProblem(w, "invoice data is invalid", validationErrs.Messages)
		return
	}
	var conflict *BookingConflictError
	if errors.As(err, &conflict) {
		httpx.JSON(w, http.StatusConflict, map[string]any{
			"title":             "Conflict",
			"status":            http.StatusConflict,
			"detail":            conflict.Error(),
			"existingInvoiceId": conflict.Existing.ID,
		})
		return
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrBookingNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrDuplicateNumber), errors.Is(err, ErrDuplicateBookingInvoice):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	case errors.Is(err, ErrCannotUpdate), errors.Is(err, ErrCannotCancel), errors.Is(err, ErrIllegalTransition):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Illegal Transition", err.Error())
	case errors.Is(err, ErrReferenceMismatch), errors.Is(err, ErrInvalidPayload):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error(op+" failed", slog.Any("error", err))
		httpx.RespondError(w, err, "failed to "+op)
	}
}

func fieldMessages(err error) []string {
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		return []string{err.Error()}
	}
	msgs := make([]string, 0, len(invalid))
	for _, fe := range invalid {
		msgs = append(msgs, fe.Field()+" failed rule "+fe.Tag())
	}
	return msgs
}
