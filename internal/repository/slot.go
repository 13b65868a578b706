// Package repository provides a storage slot backed by a PostgreSQL table.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds every slot call made without a context.
const DefaultTimeout = 5 * time.Second

// PostgresSlotRepository stores slot values in the account_slots table.
type PostgresSlotRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
	// Timeout applies to Get and Set.
	Timeout time.Duration
}

// NewPostgresSlotRepository creates a repository using the provided *sql.DB.
// db must be a valid connection to a PostgreSQL instance with the schema applied.
func NewPostgresSlotRepository(db *sql.DB) *PostgresSlotRepository {
	return &PostgresSlotRepository{DB: db, Timeout: DefaultTimeout}
}

// GetContext fetches the value stored under key.
//
//	ctx: context for cancellation and deadlines
//	key: slot key
//
// Returns nil, nil when the key does not exist.
func (r *PostgresSlotRepository) GetContext(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT value FROM account_slots WHERE key = $1
	`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get slot %s: %w", key, err)
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

// SetContext inserts or overwrites the value stored under key.
//
//	ctx:   context for cancellation and deadlines
//	key:   slot key
//	value: serialized payload
func (r *PostgresSlotRepository) SetContext(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO account_slots (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`, key, value)
	if err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

// Get implements storage.Slot with the repository timeout.
func (r *PostgresSlotRepository) Get(key string) ([]byte, error) {
	ctx, cancel := r.context()
	defer cancel()
	return r.GetContext(ctx, key)
}

// Set implements storage.Slot with the repository timeout.
func (r *PostgresSlotRepository) Set(key string, value []byte) error {
	ctx, cancel := r.context()
	defer cancel()
	return r.SetContext(ctx, key, value)
}

// Path returns a display name for the slot location.
func (r *PostgresSlotRepository) Path() string {
	return "postgres:account_slots"
}

func (r *PostgresSlotRepository) context() (context.Context, context.CancelFunc) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(context.Background(), timeout)
}
