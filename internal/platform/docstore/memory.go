package docstore

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store used by tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]Fields
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]Fields)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	select {
	case <-ctx.Done():
		return Document{}, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	col, ok := s.data[collection]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	fields, ok := col[id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return Document{ID: id, Collection: collection, Fields: cloneFields(fields)}, nil
}

// List implements Store.
func (s *MemoryStore) List(ctx context.Context, collection string, queries ...Query) ([]Document, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Document
	for id, fields := range s.data[collection] {
		doc := Document{ID: id, Collection: collection, Fields: fields}
		if matchesAll(doc, queries) {
			out = append(out, Document{ID: id, Collection: collection, Fields: cloneFields(fields)})
		}
	}
	return out, nil
}

// Create implements Store. An empty id requests an auto-generated one.
func (s *MemoryStore) Create(ctx context.Context, collection, id string, data Fields) (Document, error) {
	select {
	case <-ctx.Done():
		return Document{}, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == "" {
		id = uuid.NewString()
	}
	col, ok := s.data[collection]
	if !ok {
		col = make(map[string]Fields)
		s.data[collection] = col
	}
	if _, exists := col[id]; exists {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrConflict)
	}
	col[id] = cloneFields(data)
	return Document{ID: id, Collection: collection, Fields: cloneFields(data)}, nil
}

// Update implements Store. Only the provided fields are replaced.
func (s *MemoryStore) Update(ctx context.Context, collection, id string, data Fields) (Document, error) {
	select {
	case <-ctx.Done():
		return Document{}, ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.data[collection]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	fields, ok := col[id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	for k, v := range data {
		fields[k] = v
	}
	return Document{ID: id, Collection: collection, Fields: cloneFields(fields)}, nil
}

func matchesAll(doc Document, queries []Query) bool {
	for _, q := range queries {
		if !matches(doc, q) {
			return false
		}
	}
	return true
}

func matches(doc Document, q Query) bool {
	switch q.Op {
	case OpEqual:
		return doc.String(q.Field) == toString(q.Value)
	case OpLessThan:
		if f, ok := toFloat(q.Value); ok {
			return doc.Float(q.Field) < f
		}
		return doc.String(q.Field) < toString(q.Value)
	default:
		return false
	}
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

func cloneFields(in Fields) Fields {
	out := make(Fields, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
