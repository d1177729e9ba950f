// Package model defines domain entities for the application.
package model

import "time"

// AdminKey represents an operator API key for the provisioning endpoints.
// Admin keys are all-or-nothing; there is no scope system.
type AdminKey struct {
	ID         string     `json:"id"`
	Name       string     `json:"name,omitempty"`
	KeyHash    string     `json:"-"` // Never serialize
	KeyPrefix  string     `json:"key_prefix"`
	RevokedAt  *time.Time `json:"revoked_at,omitempty"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsRevoked returns true if the key has been revoked.
func (k *AdminKey) IsRevoked() bool {
	return k.RevokedAt != nil
}

// AuthContext holds authenticated request context.
// This is injected into the request context by auth middleware.
type AuthContext struct {
	KeyID     string
	KeyPrefix string
	KeyName   string
}
