package kv

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/hackgods/clinic-local-store/internal/db"
	"github.com/hackgods/clinic-local-store/internal/storage"
)

// SQLStore keeps blobs in the kv_store table next to the records.
type SQLStore struct {
	db      *sql.DB
	dialect db.Dialect
}

var _ Store = (*SQLStore)(nil)

func NewSQLStore(ctx context.Context, conn *sql.DB, d db.Dialect) (*SQLStore, error) {
	valueType := "BLOB"
	if d == db.Postgres {
		valueType = "BYTEA"
	}

	_, err := conn.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      `+valueType+` NOT NULL,
			updated_at TEXT NOT NULL
		)`)
	if err != nil {
		return nil, storage.Wrap("create kv_store", err)
	}

	return &SQLStore{db: conn, dialect: d}, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind("SELECT value FROM kv_store WHERE key = ?"), key,
	).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storage.Wrap("get "+key, err)
	}
	return value, true, nil
}

func (s *SQLStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind(`
		INSERT INTO kv_store (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`),
		key, value, time.Now().UTC().Format(time.RFC3339),
	)
	return storage.Wrap("put "+key, err)
}

func (s *SQLStore) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.dialect.Rebind("DELETE FROM kv_store WHERE key = ?"), key)
	return storage.Wrap("delete "+key, err)
}
