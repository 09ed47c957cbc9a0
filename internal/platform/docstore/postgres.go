package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps documents in a single JSONB table. It exists for
// deployments that want the booking uniqueness enforced by the database
// instead of the application-level check.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgresStore on an existing pool.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("docstore/postgres: parse config: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("docstore/postgres: new pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("docstore/postgres: ping: %w", err)
	}
	s := &PostgresStore{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
			PRIMARY KEY (collection, id)
		)`,
		// One invoice per booking, enforced by the database.
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_invoice_booking_uq
			ON documents ((data->>'bookingId'))
			WHERE collection = 'invoices' AND data->>'bookingId' IS NOT NULL AND data->>'bookingId' <> ''`,
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_invoice_number_uq
			ON documents ((data->>'invoiceNumber'))
			WHERE collection = 'invoices'`,
	}
	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("docstore/postgres: ensure schema: %w", err)
		}
	}
	return nil
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM documents WHERE collection = $1 AND id = $2`,
		collection, id,
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Document{}, fmt.Errorf("docstore/postgres: get: %w", err)
	}
	return decodeRow(collection, id, raw)
}

// List implements Store.
func (s *PostgresStore) List(ctx context.Context, collection string, queries ...Query) ([]Document, error) {
	sql := strings.Builder{}
	sql.WriteString(`SELECT id, data FROM documents WHERE collection = $1`)
	args := []any{collection}
	for _, q := range queries {
		args = append(args, q.Field, queryArg(q.Value))
		fieldRef := len(args) - 1
		valueRef := len(args)
		switch q.Op {
		case OpEqual:
			fmt.Fprintf(&sql, ` AND data->>$%d = $%d`, fieldRef, valueRef)
		case OpLessThan:
			fmt.Fprintf(&sql, ` AND data->>$%d < $%d`, fieldRef, valueRef)
		default:
			return nil, fmt.Errorf("docstore/postgres: unsupported op %q", q.Op)
		}
	}

	rows, err := s.pool.Query(ctx, sql.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("docstore/postgres: list: %w", err)
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		var id string
		var raw []byte
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("docstore/postgres: scan: %w", err)
		}
		doc, err := decodeRow(collection, id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Create implements Store.
func (s *PostgresStore) Create(ctx context.Context, collection, id string, data Fields) (Document, error) {
	if id == "" {
		id = uuid.NewString()
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("%v: %w", err, ErrInvalidSchema)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (collection, id, data) VALUES ($1, $2, $3)`,
		collection, id, raw,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrConflict)
		}
		return Document{}, fmt.Errorf("docstore/postgres: create: %w", err)
	}
	return Document{ID: id, Collection: collection, Fields: data}, nil
}

// Update implements Store. The patch is merged into the stored document.
func (s *PostgresStore) Update(ctx context.Context, collection, id string, data Fields) (Document, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Document{}, fmt.Errorf("%v: %w", err, ErrInvalidSchema)
	}
	var merged []byte
	err = s.pool.QueryRow(ctx,
		`UPDATE documents SET data = data || $3 WHERE collection = $1 AND id = $2 RETURNING data`,
		collection, id, raw,
	).Scan(&merged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrConflict)
		}
		return Document{}, fmt.Errorf("docstore/postgres: update: %w", err)
	}
	return decodeRow(collection, id, merged)
}

func decodeRow(collection, id string, raw []byte) (Document, error) {
	var fields Fields
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, fmt.Errorf("docstore/postgres: decode document %s/%s: %w", collection, id, err)
	}
	return Document{ID: id, Collection: collection, Fields: fields}, nil
}

func queryArg(v any) string {
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
