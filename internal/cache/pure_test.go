package cache

import (
	"testing"
	"time"

	"github.com/threadline/threadline/internal/model"
)

func TestHashIP_Deterministic(t *testing.T) {
	t.Parallel()

	ip := "192.168.1.100"

	hash1 := hashIP(ip)
	hash2 := hashIP(ip)

	if hash1 != hash2 {
		t.Error("Same IP should produce same hash")
	}
}

func TestHashIP_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip   string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv4 localhost", "127.0.0.1"},
		{"IPv6 localhost", "::1"},
		{"IPv6 full", "2001:0db8:85a3:0000:0000:8a2e:0370:7334"},
		{"empty", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash := hashIP(tt.ip)
			// hashIP uses first 8 bytes of SHA256, encoded as 16 hex chars
			if len(hash) != 16 {
				t.Errorf("hashIP(%q) length = %d, want 16", tt.ip, len(hash))
			}
		})
	}
}

func TestHashIP_Different(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ip1  string
		ip2  string
	}{
		{"different IPv4", "192.168.1.1", "192.168.1.2"},
		{"different last octet", "10.0.0.1", "10.0.0.2"},
		{"IPv4 vs IPv6", "127.0.0.1", "::1"},
		{"public vs private", "8.8.8.8", "192.168.1.1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			hash1 := hashIP(tt.ip1)
			hash2 := hashIP(tt.ip2)

			if hash1 == hash2 {
				t.Errorf("Different IPs should produce different hashes: %q and %q both produced %s", tt.ip1, tt.ip2, hash1)
			}
		})
	}
}

func TestCachedRealm_RoundTrip(t *testing.T) {
	t.Parallel()

	deactivated := time.Unix(1767225600, 0) // 2026-01-01T00:00:00Z
	realm := &model.Realm{
		ID:            "8e2d7a52-1f0b-4c7e-9a3d-0b1f2c3d4e5f",
		StringID:      "acme",
		Name:          "Acme Corp",
		DeactivatedAt: &deactivated,
	}

	got := realm.ToCachedRealm().ToRealm("acme")

	if got.ID != realm.ID {
		t.Errorf("ID = %q, want %q", got.ID, realm.ID)
	}
	if got.Name != realm.Name {
		t.Errorf("Name = %q, want %q", got.Name, realm.Name)
	}
	if got.DeactivatedAt == nil || !got.DeactivatedAt.Equal(deactivated) {
		t.Errorf("DeactivatedAt = %v, want %v", got.DeactivatedAt, deactivated)
	}
	if got.IsActive() {
		t.Error("deactivated realm should not be active after round trip")
	}
}

func TestCachedRealm_ActiveRealm(t *testing.T) {
	t.Parallel()

	realm := &model.Realm{
		ID:       "8e2d7a52-1f0b-4c7e-9a3d-0b1f2c3d4e5f",
		StringID: "acme",
		Name:     "Acme Corp",
	}

	cached := realm.ToCachedRealm()
	if cached.DeactivatedAt != "" {
		t.Errorf("expected empty DeactivatedAt for active realm, got %q", cached.DeactivatedAt)
	}

	got := cached.ToRealm("acme")
	if !got.IsActive() {
		t.Error("active realm should remain active after round trip")
	}
}
