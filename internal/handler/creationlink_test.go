package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/threadline/threadline/internal/creationlink"
)

func TestCreationLinkHandler_Create(t *testing.T) {
	t.Parallel()

	svc := creationlink.NewService(creationlink.NewMemoryStore(), "https://threadline.example", 7*24*time.Hour, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewCreationLinkHandler(svc, logger)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/creation_links", nil)
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}

	var resp creationLinkResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.HasPrefix(resp.URL, "https://threadline.example/create_realm/") {
		t.Errorf("URL = %q", resp.URL)
	}
	key := strings.TrimPrefix(resp.URL, "https://threadline.example/create_realm/")
	if len(key) != creationlink.KeyLength {
		t.Errorf("key length = %d, want %d", len(key), creationlink.KeyLength)
	}
	if got := resp.ExpiresAt.Sub(resp.CreatedAt); got != 7*24*time.Hour {
		t.Errorf("validity = %v, want 168h", got)
	}

	// The issued link is immediately redeemable.
	if err := svc.Validate(req.Context(), key); err != nil {
		t.Errorf("issued key not valid: %v", err)
	}
}
