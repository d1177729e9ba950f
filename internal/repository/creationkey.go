package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/threadline/threadline/internal/creationlink"
	"github.com/threadline/threadline/internal/model"
)

// Put inserts a creation key record.
func (r *Repository) Put(ctx context.Context, rec *model.CreationKey) error {
	query := `
		INSERT INTO realm_creation_keys (creation_key, created_at)
		VALUES ($1, $2)
	`

	_, err := r.pool.Exec(ctx, query, rec.Key, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create creation key: %w", err)
	}

	return nil
}

// Get retrieves a creation key record by its key.
func (r *Repository) Get(ctx context.Context, key string) (*model.CreationKey, error) {
	query := `
		SELECT creation_key, created_at
		FROM realm_creation_keys
		WHERE creation_key = $1
	`

	var rec model.CreationKey
	err := r.pool.QueryRow(ctx, query, key).Scan(&rec.Key, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, creationlink.ErrKeyNotFound
		}
		return nil, fmt.Errorf("failed to get creation key: %w", err)
	}

	return &rec, nil
}

// DeleteIfFresh deletes the key only if it exists and was created at or
// after notBefore. The single conditional DELETE is the atomic
// check-and-consume step: under concurrent redemption attempts only one
// caller sees a deleted row.
func (r *Repository) DeleteIfFresh(ctx context.Context, key string, notBefore time.Time) (bool, error) {
	query := `
		DELETE FROM realm_creation_keys
		WHERE creation_key = $1 AND created_at >= $2
	`

	result, err := r.pool.Exec(ctx, query, key, notBefore)
	if err != nil {
		return false, fmt.Errorf("failed to consume creation key: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// SetCreationKeyCreatedAt rewrites a key's creation timestamp.
// Used by integration tests and support tooling to force expiry.
func (r *Repository) SetCreationKeyCreatedAt(ctx context.Context, key string, createdAt time.Time) error {
	query := `
		UPDATE realm_creation_keys
		SET created_at = $2
		WHERE creation_key = $1
	`

	result, err := r.pool.Exec(ctx, query, key, createdAt)
	if err != nil {
		return fmt.Errorf("failed to update creation key timestamp: %w", err)
	}
	if result.RowsAffected() == 0 {
		return creationlink.ErrKeyNotFound
	}

	return nil
}

// PurgeStaleCreationKeys deletes keys created before the cutoff and
// returns how many were removed. Expired keys are invalid either way;
// this just keeps the table from growing unbounded.
func (r *Repository) PurgeStaleCreationKeys(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		DELETE FROM realm_creation_keys
		WHERE created_at < $1
	`

	result, err := r.pool.Exec(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge creation keys: %w", err)
	}

	return result.RowsAffected(), nil
}
