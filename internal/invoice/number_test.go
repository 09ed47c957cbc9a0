package invoice

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var invoiceNumberPattern = regexp.MustCompile(`^INV-(\d{6})-(\d{8})$`)

func TestNewInvoiceNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 7, 15, 4, 5, 0, time.UTC)
	num := NewInvoiceNumber(now)

	m := invoiceNumberPattern.FindStringSubmatch(num)
	require.NotNil(t, m, "number %q does not match the stable format", num)
	assert.Equal(t, "202603", m[1])

	// The first six digits of the tail are the low digits of epoch millis.
	wantTail := fmt.Sprintf("%06d", now.UnixMilli()%1_000_000)
	assert.Equal(t, wantTail, m[2][:6])
}

func TestNewInvoiceNumberMonthPadding(t *testing.T) {
	num := NewInvoiceNumber(time.Date(2026, 11, 30, 0, 0, 0, 0, time.UTC))
	m := invoiceNumberPattern.FindStringSubmatch(num)
	require.NotNil(t, m)
	assert.Equal(t, "202611", m[1])
}
