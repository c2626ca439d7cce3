package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
)

// Querier is the subset of *pgxpool.Pool the storage needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Storage keeps the booking list as one row of a key/value table, mirroring the
// single Redis key layout.
type Storage struct {
	db  Querier
	key string
}

func NewStorage(db Querier, key string) *Storage {
	return &Storage{db: db, key: key}
}

func EnsureSchema(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: ensure schema: %w", err)
	}
	return nil
}

func (s *Storage) Load(ctx context.Context) ([]byte, error) {
	var value string
	err := s.db.QueryRow(ctx, `SELECT value FROM kv_store WHERE key = $1`, s.key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, bookings.ErrNoData
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: load %s: %w", s.key, err)
	}
	return []byte(value), nil
}

func (s *Storage) Save(ctx context.Context, data []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, s.key, string(data))
	if err != nil {
		return fmt.Errorf("postgres: save %s: %w", s.key, err)
	}
	return nil
}
