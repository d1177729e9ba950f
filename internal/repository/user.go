package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/threadline/threadline/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailExists   = errors.New("email already exists in realm")
	ErrMultipleUsers = errors.New("multiple users share this email")
)

const userColumns = "id, realm_id, email, full_name, is_active, is_admin, created_at"

// CreateUser inserts a new user profile into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.UserProfile) error {
	query := `
		INSERT INTO user_profiles (id, realm_id, email, full_name, is_active, is_admin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.RealmID,
		user.Email,
		user.FullName,
		user.IsActive,
		user.IsAdmin,
		user.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByEmailInRealm retrieves the user with the given email inside one realm.
func (r *Repository) GetUserByEmailInRealm(ctx context.Context, email, realmID string) (*model.UserProfile, error) {
	query := `
		SELECT ` + userColumns + `
		FROM user_profiles
		WHERE lower(email) = lower($1) AND realm_id = $2
	`

	return scanUser(r.pool.QueryRow(ctx, query, email, realmID))
}

// GetUserByEmail retrieves a user by email across all realms.
// Returns ErrMultipleUsers when the email exists in more than one realm;
// callers must then scope the lookup to a realm.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.UserProfile, error) {
	query := `
		SELECT ` + userColumns + `
		FROM user_profiles
		WHERE lower(email) = lower($1)
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	defer rows.Close()

	var users []*model.UserProfile
	for rows.Next() {
		user, err := scanUserFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	switch len(users) {
	case 0:
		return nil, ErrUserNotFound
	case 1:
		return users[0], nil
	default:
		return nil, ErrMultipleUsers
	}
}

// ListUsersByRealm retrieves all user profiles in a realm ordered by email.
func (r *Repository) ListUsersByRealm(ctx context.Context, realmID string) ([]*model.UserProfile, error) {
	query := `
		SELECT ` + userColumns + `
		FROM user_profiles
		WHERE realm_id = $1
		ORDER BY email
	`

	rows, err := r.pool.Query(ctx, query, realmID)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.UserProfile
	for rows.Next() {
		user, err := scanUserFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return users, nil
}

// scanUser scans a single row into a UserProfile model.
func scanUser(row pgx.Row) (*model.UserProfile, error) {
	var user model.UserProfile

	err := row.Scan(
		&user.ID,
		&user.RealmID,
		&user.Email,
		&user.FullName,
		&user.IsActive,
		&user.IsAdmin,
		&user.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

// scanUserFromRows scans a row from pgx.Rows into a UserProfile model.
func scanUserFromRows(rows pgx.Rows) (*model.UserProfile, error) {
	var user model.UserProfile

	err := rows.Scan(
		&user.ID,
		&user.RealmID,
		&user.Email,
		&user.FullName,
		&user.IsActive,
		&user.IsAdmin,
		&user.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &user, nil
}
