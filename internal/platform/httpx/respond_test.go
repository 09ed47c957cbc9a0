package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	Problem(rec, http.StatusNotFound, "Not Found", "invoice missing")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var pd ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pd))
	assert.Equal(t, "Not Found", pd.Title)
	assert.Equal(t, http.StatusNotFound, pd.Status)
	assert.Equal(t, "invoice missing", pd.Detail)
	assert.Empty(t, pd.Errors)
}

func TestValidationProblem(t *testing.T) {
	rec := httptest.NewRecorder()
	ValidationProblem(rec, "invoice data is invalid", []string{"Line item 1: quantity must be greater than zero"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var pd ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pd))
	assert.Equal(t, "Validation Failed", pd.Title)
	require.Len(t, pd.Errors, 1)
	assert.Equal(t, "Line item 1: quantity must be greater than zero", pd.Errors[0])
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{fmt.Errorf("queue inspector: %w", ErrUnavailable), http.StatusServiceUnavailable},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, tc.err, "operation failed")
		assert.Equal(t, tc.status, rec.Code, "error %v", tc.err)
	}
}

func TestRespondErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, fmt.Errorf("dial tcp 10.0.0.5:5432: connection refused"), "failed to list invoices")

	var pd ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pd))
	assert.Equal(t, "failed to list invoices", pd.Detail)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
}
