package invoice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type spyEnqueuer struct {
	calls []string
	err   error
}

func (e *spyEnqueuer) EnqueueReminder(ctx context.Context, invoiceID, email string) error {
	e.calls = append(e.calls, invoiceID+":"+email)
	return e.err
}

func newTestHandler(t *testing.T, repo RepositoryPort, bookings BookingSource) (*Handler, http.Handler) {
	t.Helper()
	svc := newTestService(repo, bookings)
	h := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	r.Route("/invoices", h.MountRoutes)
	return h, r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const createBody = `{
	"type": "travel",
	"customerName": "Sita Thapa",
	"customerEmail": "sita@example.com",
	"dueDate": "2026-09-15",
	"lineItems": [
		{"description": "Annapurna Circuit Trek", "quantity": 2, "unitPrice": 250}
	]
}`

func TestHandlerCreate(t *testing.T) {
	_, router := newTestHandler(t, newMemRepo(), &stubBookings{})

	rec := doJSON(t, router, http.MethodPost, "/invoices", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, StatusDraft, resp.Status)
	assert.InDelta(t, 565, resp.TotalAmount, 0.001)
	assert.Equal(t, "$565.00", resp.FormattedTotal)
	assert.Equal(t, StatusDraft, resp.DisplayStatus)
}

func TestHandlerCreateDuplicateBooking(t *testing.T) {
	_, router := newTestHandler(t, newMemRepo(), &stubBookings{})
	body := strings.Replace(createBody, `"type": "travel",`, `"type": "travel", "bookingId": "bk-99",`, 1)

	rec := doJSON(t, router, http.MethodPost, "/invoices", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/invoices", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "existingInvoiceId")
}

func TestHandlerCreateBadJSON(t *testing.T) {
	_, router := newTestHandler(t, newMemRepo(), &stubBookings{})
	rec := doJSON(t, router, http.MethodPost, "/invoices", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerCreateMissingFields(t *testing.T) {
	_, router := newTestHandler(t, newMemRepo(), &stubBookings{})
	rec := doJSON(t, router, http.MethodPost, "/invoices", `{"type": "travel"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "errors")
}

func TestHandlerCreateDomainValidation(t *testing.T) {
	_, router := newTestHandler(t, newMemRepo(), &stubBookings{})
	body := strings.Replace(createBody, "sita@example.com", "not-an-email", 1)
	rec := doJSON(t, router, http.MethodPost, "/invoices", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Customer email is invalid")
}

func TestHandlerShow(t *testing.T) {
	repo := newMemRepo()
	_, router := newTestHandler(t, repo, &stubBookings{})

	rec := doJSON(t, router, http.MethodPost, "/invoices", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodGet, "/invoices/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/invoices/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerListFilterValidation(t *testing.T) {
	_, router := newTestHandler(t, newMemRepo(), &stubBookings{})

	rec := doJSON(t, router, http.MethodGet, "/invoices?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/invoices?status=draft", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var resp ListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.Total)
	assert.NotNil(t, resp.Invoices)
}

func TestHandlerUpdateIllegalTransition(t *testing.T) {
	repo := newMemRepo()
	_, router := newTestHandler(t, repo, &stubBookings{})

	rec := doJSON(t, router, http.MethodPost, "/invoices", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPatch, "/invoices/"+created.ID, `{"status": "overdue"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerCancel(t *testing.T) {
	repo := newMemRepo()
	_, router := newTestHandler(t, repo, &stubBookings{})

	rec := doJSON(t, router, http.MethodPost, "/invoices", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/invoices/"+created.ID+"/cancel", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// A second cancel hits the terminal guard.
	rec = doJSON(t, router, http.MethodPost, "/invoices/"+created.ID+"/cancel", "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandlerGenerateConflict(t *testing.T) {
	repo := newMemRepo()
	_, router := newTestHandler(t, repo, testBookingSource())

	body := `{"bookingId": "bk-1", "bookingReference": "BH-2026-0042", "dueDate": "2026-09-15"}`

	rec := doJSON(t, router, http.MethodPost, "/invoices/generate", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/invoices/generate", body)
	require.Equal(t, http.StatusConflict, rec.Code)
	var conflict map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conflict))
	assert.Equal(t, created.ID, conflict["existingInvoiceId"])
}

func TestHandlerGenerateBookingNotFound(t *testing.T) {
	_, router := newTestHandler(t, newMemRepo(), testBookingSource())
	body := `{"bookingId": "missing", "bookingReference": "BH-2026-0042", "dueDate": "2026-09-15"}`
	rec := doJSON(t, router, http.MethodPost, "/invoices/generate", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerRemind(t *testing.T) {
	repo := newMemRepo()
	h, router := newTestHandler(t, repo, &stubBookings{})
	enqueuer := &spyEnqueuer{}
	h.SetReminderEnqueuer(enqueuer)

	rec := doJSON(t, router, http.MethodPost, "/invoices", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/invoices/"+created.ID+"/remind", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, enqueuer.calls, 1)
	assert.Equal(t, created.ID+":sita@example.com", enqueuer.calls[0])

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.ReminderCount)
}

func TestHandlerRemindEnqueueFailureStillAccepted(t *testing.T) {
	repo := newMemRepo()
	h, router := newTestHandler(t, repo, &stubBookings{})
	h.SetReminderEnqueuer(&spyEnqueuer{err: errors.New("queue down")})

	rec := doJSON(t, router, http.MethodPost, "/invoices", createBody)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	rec = doJSON(t, router, http.MethodPost, "/invoices/"+created.ID+"/remind", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandlerSummary(t *testing.T) {
	repo := newMemRepo()
	_, router := newTestHandler(t, repo, &stubBookings{})

	for i := 0; i < 2; i++ {
		rec := doJSON(t, router, http.MethodPost, "/invoices", createBody)
		require.Equal(t, http.StatusCreated, rec.Code, fmt.Sprintf("create %d", i))
	}

	rec := doJSON(t, router, http.MethodGet, "/invoices/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var summary Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Count)
	assert.InDelta(t, 1130, summary.TotalAmount, 0.001)
}
