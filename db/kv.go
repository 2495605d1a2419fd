package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ghexplorer/logger"
)

const (
	schemaQuery = `
		CREATE TABLE IF NOT EXISTS kv_store (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	getQuery = `SELECT value FROM kv_store WHERE key = $1`
	setQuery = `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	removeQuery = `DELETE FROM kv_store WHERE key = $1`
)

// EnsureSchema creates the kv_store table if it does not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, schemaQuery); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	logger.Debug("kv_store schema ready")
	return nil
}

// Get returns the value stored under key. ok is false when the key is absent.
func (db *DB) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, fmt.Errorf("%w: key cannot be empty", ErrInvalidInput)
	}

	stmt, err := db.getStmt(ctx, getQuery)
	if err != nil {
		return nil, false, err
	}

	var value string
	if err := stmt.QueryRowxContext(ctx, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return []byte(value), true, nil
}

// Set inserts or replaces the value stored under key.
func (db *DB) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidInput)
	}

	stmt, err := db.getStmt(ctx, setQuery)
	if err != nil {
		return err
	}

	if _, err := stmt.ExecContext(ctx, key, string(value)); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	logger.Debug("Stored value", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (db *DB) Remove(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("%w: key cannot be empty", ErrInvalidInput)
	}

	res, err := db.conn.ExecContext(ctx, removeQuery, key)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}

	if n, err := res.RowsAffected(); err == nil {
		logger.Debug("Removed value", zap.String("key", key), zap.Int64("rows", n))
	}
	return nil
}
