package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/threadline/threadline/internal/model"
)

// Common errors for realm repository operations.
var (
	ErrRealmNotFound = errors.New("realm not found")
	ErrRealmExists   = errors.New("realm string ID already exists")
)

// CreateRealm inserts a new realm into the database.
func (r *Repository) CreateRealm(ctx context.Context, realm *model.Realm) error {
	query := `
		INSERT INTO realms (id, string_id, name, domains, creator_email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		realm.ID,
		realm.StringID,
		realm.Name,
		pq.Array(realm.Domains),
		realm.CreatorEmail,
		realm.CreatedAt,
		realm.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrRealmExists
		}
		return fmt.Errorf("failed to create realm: %w", err)
	}

	return nil
}

// GetRealmByID retrieves a realm by its UUID.
func (r *Repository) GetRealmByID(ctx context.Context, id string) (*model.Realm, error) {
	query := `
		SELECT id, string_id, name, domains, creator_email, deactivated_at, created_at, updated_at
		FROM realms
		WHERE id = $1
	`

	return r.scanRealm(r.pool.QueryRow(ctx, query, id))
}

// GetRealmByStringID retrieves a realm by its subdomain string ID.
func (r *Repository) GetRealmByStringID(ctx context.Context, stringID string) (*model.Realm, error) {
	query := `
		SELECT id, string_id, name, domains, creator_email, deactivated_at, created_at, updated_at
		FROM realms
		WHERE string_id = $1
	`

	return r.scanRealm(r.pool.QueryRow(ctx, query, stringID))
}

// ListRealms retrieves all realms ordered by string ID.
func (r *Repository) ListRealms(ctx context.Context) ([]*model.Realm, error) {
	query := `
		SELECT id, string_id, name, domains, creator_email, deactivated_at, created_at, updated_at
		FROM realms
		ORDER BY string_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list realms: %w", err)
	}
	defer rows.Close()

	var realms []*model.Realm
	for rows.Next() {
		realm, err := scanRealmFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan realm: %w", err)
		}
		realms = append(realms, realm)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating realms: %w", err)
	}

	return realms, nil
}

// DeactivateRealm marks a realm as deactivated.
func (r *Repository) DeactivateRealm(ctx context.Context, id string) error {
	query := `
		UPDATE realms
		SET deactivated_at = $2, updated_at = $2
		WHERE id = $1 AND deactivated_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to deactivate realm: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRealmNotFound
	}

	return nil
}

// scanRealm scans a single row into a Realm model.
func (r *Repository) scanRealm(row pgx.Row) (*model.Realm, error) {
	var realm model.Realm
	var domains []string

	err := row.Scan(
		&realm.ID,
		&realm.StringID,
		&realm.Name,
		pq.Array(&domains),
		&realm.CreatorEmail,
		&realm.DeactivatedAt,
		&realm.CreatedAt,
		&realm.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRealmNotFound
		}
		return nil, fmt.Errorf("failed to scan realm: %w", err)
	}

	realm.Domains = domains
	return &realm, nil
}

// scanRealmFromRows scans a row from pgx.Rows into a Realm model.
func scanRealmFromRows(rows pgx.Rows) (*model.Realm, error) {
	var realm model.Realm
	var domains []string

	err := rows.Scan(
		&realm.ID,
		&realm.StringID,
		&realm.Name,
		pq.Array(&domains),
		&realm.CreatorEmail,
		&realm.DeactivatedAt,
		&realm.CreatedAt,
		&realm.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	realm.Domains = domains
	return &realm, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	// PostgreSQL error code 23505 is unique_violation
	return err != nil && (contains(err.Error(), "23505") || contains(err.Error(), "unique"))
}

// contains checks if a string contains a substring.
func contains(s, substr string) bool {
	return len(s) >= len(substr) && searchString(s, substr)
}

// searchString is a simple string search.
func searchString(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
