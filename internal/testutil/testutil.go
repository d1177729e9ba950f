package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/threadline/threadline/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// resetSchema applies the down then up migration pair with the given name.
func resetSchema(ctx context.Context, pool *pgxpool.Pool, name string) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", name+".down.sql")
	upPath := filepath.Join(root, "migrations", name+".up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// ResetRealmsSchema drops and recreates the realms schema for tests.
func ResetRealmsSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000001_realms")
}

// ResetUsersSchema drops and recreates the user_profiles schema for tests.
func ResetUsersSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000002_user_profiles")
}

// ResetCreationKeysSchema drops and recreates the creation keys schema for tests.
func ResetCreationKeysSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000003_realm_creation_keys")
}

// ResetAdminKeysSchema drops and recreates the admin keys schema for tests.
func ResetAdminKeysSchema(ctx context.Context, pool *pgxpool.Pool) error {
	return resetSchema(ctx, pool, "000004_admin_keys")
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestRealm creates a test realm with sensible defaults.
func NewTestRealm(t testing.TB, stringID string) *model.Realm {
	t.Helper()
	now := time.Now().UTC()
	return &model.Realm{
		ID:           uuid.NewString(),
		StringID:     stringID,
		Name:         "Realm " + stringID,
		Domains:      []string{stringID + ".example.com"},
		CreatorEmail: "owner@" + stringID + ".example.com",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestUser creates a test user profile in the given realm.
func NewTestUser(t testing.TB, realmID, email string) *model.UserProfile {
	t.Helper()
	return &model.UserProfile{
		ID:        uuid.NewString(),
		RealmID:   realmID,
		Email:     email,
		FullName:  "Test User",
		IsActive:  true,
		CreatedAt: time.Now().UTC(),
	}
}

// NewTestCreationKey creates a creation key record issued at the given time.
func NewTestCreationKey(t testing.TB, key string, createdAt time.Time) *model.CreationKey {
	t.Helper()
	return &model.CreationKey{
		Key:       key,
		CreatedAt: createdAt,
	}
}

// UniqueStringID generates a unique realm string ID for tests.
func UniqueStringID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
