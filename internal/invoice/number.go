package invoice

import (
	"fmt"
	"math/rand"
	"time"
)

// NewInvoiceNumber generates an invoice number in the stable format
// INV-{YYYY}{MM}-{last 6 of epoch millis}{2-digit random}. Existing numbers
// must keep parsing, so the format never changes.
func NewInvoiceNumber(now time.Time) string {
	tail := now.UnixMilli() % 1_000_000
	return fmt.Sprintf("INV-%s-%06d%02d", now.Format("200601"), tail, rand.Intn(100))
}
