package creationlink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/threadline/threadline/internal/model"
)

func TestMemoryStore_GetMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	if err := store.Put(ctx, &model.CreationKey{Key: "abc", CreatedAt: created}); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	rec, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	rec.CreatedAt = rec.CreatedAt.Add(-time.Hour)

	again, err := store.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !again.CreatedAt.Equal(created) {
		t.Error("mutating a returned record should not affect the store")
	}
}

func TestMemoryStore_DeleteIfFresh(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		createdAt time.Time
		notBefore time.Time
		want      bool
	}{
		{"fresh key", now.Add(-time.Hour), now.Add(-24 * time.Hour), true},
		{"created exactly at cutoff", now.Add(-24 * time.Hour), now.Add(-24 * time.Hour), true},
		{"stale key", now.Add(-48 * time.Hour), now.Add(-24 * time.Hour), false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewMemoryStore()
			ctx := context.Background()

			if err := store.Put(ctx, &model.CreationKey{Key: "k", CreatedAt: tt.createdAt}); err != nil {
				t.Fatalf("Put failed: %v", err)
			}

			deleted, err := store.DeleteIfFresh(ctx, "k", tt.notBefore)
			if err != nil {
				t.Fatalf("DeleteIfFresh failed: %v", err)
			}
			if deleted != tt.want {
				t.Errorf("expected deleted=%v, got %v", tt.want, deleted)
			}

			// A stale key must be left untouched.
			if !tt.want && store.Len() != 1 {
				t.Errorf("expected record to remain, store has %d keys", store.Len())
			}
		})
	}
}

func TestMemoryStore_DeleteIfFreshMissing(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()

	deleted, err := store.DeleteIfFresh(context.Background(), "missing", time.Now())
	if err != nil {
		t.Fatalf("DeleteIfFresh failed: %v", err)
	}
	if deleted {
		t.Error("expected no deletion for missing key")
	}
}
