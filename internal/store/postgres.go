package store

import (
	"context"

	"github.com/jonathan/insight-journal/internal/db"
)

// PostgresStorage stores values in the kv_store table.
type PostgresStorage struct {
	db *db.DB
}

// NewPostgresStorage wraps a database handle. Call db.EnsureSchema before first use.
func NewPostgresStorage(database *db.DB) *PostgresStorage {
	return &PostgresStorage{db: database}
}

// Read returns the value stored under key.
func (s *PostgresStorage) Read(ctx context.Context, key string) (string, bool, error) {
	return s.db.GetValue(ctx, key)
}

// Write upserts value under key.
func (s *PostgresStorage) Write(ctx context.Context, key, value string) error {
	return s.db.PutValue(ctx, key, value)
}
