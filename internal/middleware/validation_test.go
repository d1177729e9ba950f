package middleware

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateCreationKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"valid key", "a1b2c3d4e5f6a1b2c3d4e5f6", nil},
		{"all digits", "012345678901234567890123", nil},
		{"too short", "a1b2c3", ErrCreationKeyInvalid},
		{"too long", "a1b2c3d4e5f6a1b2c3d4e5f6aa", ErrCreationKeyInvalid},
		{"uppercase hex", "A1B2C3D4E5F6A1B2C3D4E5F6", ErrCreationKeyInvalid},
		{"non-hex characters", "g1b2c3d4e5f6a1b2c3d4e5f6", ErrCreationKeyInvalid},
		{"empty", "", ErrCreationKeyInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateCreationKey(tt.key); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateCreationKey(%q) = %v, want %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSubdomain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		subdomain string
		wantErr   error
	}{
		{"simple", "acme", nil},
		{"with hyphen", "acme-corp", nil},
		{"with digits", "team42", nil},
		{"too short", "a", ErrSubdomainTooShort},
		{"too long", strings.Repeat("a", 41), ErrSubdomainTooLong},
		{"uppercase", "Acme", ErrSubdomainInvalid},
		{"leading hyphen", "-acme", ErrSubdomainInvalid},
		{"trailing hyphen", "acme-", ErrSubdomainInvalid},
		{"space", "acme corp", ErrSubdomainInvalid},
		{"reserved system route", "api", ErrSubdomainReserved},
		{"reserved brand", "threadline", ErrSubdomainReserved},
		{"reserved accounts", "accounts", ErrSubdomainReserved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateSubdomain(tt.subdomain); !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSubdomain(%q) = %v, want %v", tt.subdomain, err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "iago@acme.example", false},
		{"plus address", "iago+test@acme.example", false},
		{"empty", "", true},
		{"no at sign", "iago.acme.example", true},
		{"leading at sign", "@acme.example", true},
		{"trailing at sign", "iago@", true},
		{"contains space", "ia go@acme.example", true},
		{"too long", strings.Repeat("a", 250) + "@b.example", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}
