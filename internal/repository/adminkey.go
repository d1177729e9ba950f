package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/threadline/threadline/internal/model"
)

// Common errors for admin key repository operations.
var (
	ErrAdminKeyNotFound = errors.New("admin key not found")
)

// CreateAdminKey inserts a new admin API key into the database.
func (r *Repository) CreateAdminKey(ctx context.Context, key *model.AdminKey) error {
	query := `
		INSERT INTO admin_keys (id, name, key_hash, key_prefix, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		key.ID,
		key.Name,
		key.KeyHash,
		key.KeyPrefix,
		key.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create admin key: %w", err)
	}

	return nil
}

// GetAdminKeysByPrefix retrieves all active admin keys matching a prefix.
// Used during authentication to find candidate keys for verification.
func (r *Repository) GetAdminKeysByPrefix(ctx context.Context, prefix string) ([]*model.AdminKey, error) {
	query := `
		SELECT id, name, key_hash, key_prefix, revoked_at, last_used_at, created_at
		FROM admin_keys
		WHERE key_prefix = $1 AND revoked_at IS NULL
	`

	rows, err := r.pool.Query(ctx, query, prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to get admin keys by prefix: %w", err)
	}
	defer rows.Close()

	var keys []*model.AdminKey
	for rows.Next() {
		key, err := scanAdminKeyFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan admin key: %w", err)
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating admin keys: %w", err)
	}

	return keys, nil
}

// RevokeAdminKey revokes an admin key by setting revoked_at.
func (r *Repository) RevokeAdminKey(ctx context.Context, id string) error {
	query := `
		UPDATE admin_keys
		SET revoked_at = $2
		WHERE id = $1 AND revoked_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to revoke admin key: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrAdminKeyNotFound
	}

	return nil
}

// UpdateAdminKeyLastUsed updates the last_used_at timestamp.
// Called after successful authentication; failures are non-fatal.
func (r *Repository) UpdateAdminKeyLastUsed(ctx context.Context, id string) error {
	query := `
		UPDATE admin_keys
		SET last_used_at = $2
		WHERE id = $1
	`

	_, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update admin key last used: %w", err)
	}

	return nil
}

// scanAdminKeyFromRows scans a row from pgx.Rows into an AdminKey model.
func scanAdminKeyFromRows(rows pgx.Rows) (*model.AdminKey, error) {
	var key model.AdminKey

	err := rows.Scan(
		&key.ID,
		&key.Name,
		&key.KeyHash,
		&key.KeyPrefix,
		&key.RevokedAt,
		&key.LastUsedAt,
		&key.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &key, nil
}
