package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	doc, err := store.Create(ctx, "invoices", "inv-1", Fields{"status": "draft", "totalAmount": 565.0})
	require.NoError(t, err)
	assert.Equal(t, "inv-1", doc.ID)

	got, err := store.Get(ctx, "invoices", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "draft", got.String("status"))
	assert.InDelta(t, 565, got.Float("totalAmount"), 0.001)
}

func TestMemoryStoreAutoID(t *testing.T) {
	store := NewMemoryStore()
	doc, err := store.Create(context.Background(), "invoices", "", Fields{"status": "draft"})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ID)
}

func TestMemoryStoreCreateConflict(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "invoices", "inv-1", Fields{})
	require.NoError(t, err)

	_, err = store.Create(ctx, "invoices", "inv-1", Fields{})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), "invoices", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUpdateMergesFields(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Create(ctx, "invoices", "inv-1", Fields{"status": "draft", "notes": "keep me"})
	require.NoError(t, err)

	doc, err := store.Update(ctx, "invoices", "inv-1", Fields{"status": "sent"})
	require.NoError(t, err)
	assert.Equal(t, "sent", doc.String("status"))
	assert.Equal(t, "keep me", doc.String("notes"))
}

func TestMemoryStoreUpdateNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Update(context.Background(), "invoices", "missing", Fields{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListFilters(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	seed := []Fields{
		{"status": "draft", "bookingId": "bk-1", "totalAmount": 100.0},
		{"status": "sent", "bookingId": "bk-2", "totalAmount": 200.0},
		{"status": "sent", "bookingId": "bk-3", "totalAmount": 300.0},
	}
	for i, fields := range seed {
		_, err := store.Create(ctx, "invoices", "", fields)
		require.NoError(t, err, "seed %d", i)
	}

	all, err := store.List(ctx, "invoices")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sent, err := store.List(ctx, "invoices", Equal("status", "sent"))
	require.NoError(t, err)
	assert.Len(t, sent, 2)

	both, err := store.List(ctx, "invoices", Equal("status", "sent"), Equal("bookingId", "bk-2"))
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.InDelta(t, 200, both[0].Float("totalAmount"), 0.001)

	cheap, err := store.List(ctx, "invoices", LessThan("totalAmount", 250))
	require.NoError(t, err)
	assert.Len(t, cheap, 2)

	none, err := store.List(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	fields := Fields{"status": "draft"}
	doc, err := store.Create(ctx, "invoices", "inv-1", fields)
	require.NoError(t, err)

	// Mutating inputs or outputs must not leak into the store.
	fields["status"] = "mutated"
	doc.Fields["status"] = "also mutated"

	got, err := store.Get(ctx, "invoices", "inv-1")
	require.NoError(t, err)
	assert.Equal(t, "draft", got.String("status"))
}

func TestMemoryStoreCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, "invoices", "inv-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDocumentCoercions(t *testing.T) {
	doc := Document{Fields: Fields{
		"str":      "hello",
		"strNum":   "42.5",
		"num":      13.0,
		"int":      7,
		"boolTrue": true,
		"boolStr":  "false",
	}}

	assert.Equal(t, "hello", doc.String("str"))
	assert.Equal(t, "13", doc.String("num"))
	assert.Equal(t, "", doc.String("missing"))

	assert.InDelta(t, 42.5, doc.Float("strNum"), 0.001)
	assert.InDelta(t, 13, doc.Float("num"), 0.001)
	assert.Equal(t, 7, doc.Int("int"))
	assert.Zero(t, doc.Float("missing"))

	assert.True(t, doc.Bool("boolTrue", false))
	assert.False(t, doc.Bool("boolStr", true))
	assert.True(t, doc.Bool("missing", true))
}
