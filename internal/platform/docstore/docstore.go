// Package docstore abstracts the hosted document database the invoicing
// service persists into. Collections hold flat documents keyed by string id;
// nested values are serialized by the caller before they reach this layer.
package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
)

// Sentinel errors shared by every backend.
var (
	// ErrNotFound indicates the document or collection does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrConflict indicates a unique constraint was violated.
	ErrConflict = errors.New("document conflict")
	// ErrInvalidSchema indicates the payload was rejected by the store schema.
	ErrInvalidSchema = errors.New("document schema invalid")
)

// Fields is a flat document payload.
type Fields map[string]any

// Document is a stored document together with its identity.
type Document struct {
	ID         string
	Collection string
	Fields     Fields
}

// String returns the named field coerced to string.
func (d Document) String(key string) string {
	switch v := d.Fields[key].(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the named field coerced to float64.
func (d Document) Float(key string) float64 {
	switch v := d.Fields[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// Int returns the named field coerced to int.
func (d Document) Int(key string) int {
	return int(d.Float(key))
}

// Bool returns the named field coerced to bool, falling back to def when absent.
func (d Document) Bool(key string, def bool) bool {
	switch v := d.Fields[key].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return def
		}
		return b
	default:
		return def
	}
}

// Op identifies a filter operator.
type Op string

const (
	OpEqual    Op = "equal"
	OpLessThan Op = "lessThan"
)

// Query filters a List call on a single attribute.
type Query struct {
	Field string
	Op    Op
	Value any
}

// Equal builds an equality filter.
func Equal(field string, value any) Query {
	return Query{Field: field, Op: OpEqual, Value: value}
}

// LessThan builds a less-than filter.
func LessThan(field string, value any) Query {
	return Query{Field: field, Op: OpLessThan, Value: value}
}

// Store is the document database port consumed by the repositories.
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string, queries ...Query) ([]Document, error)
	Create(ctx context.Context, collection, id string, data Fields) (Document, error)
	Update(ctx context.Context, collection, id string, data Fields) (Document, error)
}
