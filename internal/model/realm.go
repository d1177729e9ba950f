// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// Realm represents a tenant organization in the messaging system.
type Realm struct {
	ID            string     `json:"id"`
	StringID      string     `json:"string_id"` // Subdomain, unique across the deployment
	Name          string     `json:"name"`
	Domains       []string   `json:"domains,omitempty"` // Email domains allowed to join
	CreatorEmail  string     `json:"creator_email,omitempty"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsActive returns true if the realm has not been deactivated.
func (r *Realm) IsActive() bool {
	return r.DeactivatedAt == nil
}

// CachedRealm represents realm data stored in Redis cache.
// Uses string types for Redis hash compatibility.
type CachedRealm struct {
	ID            string `redis:"id"`
	Name          string `redis:"name"`
	DeactivatedAt string `redis:"deactivated_at"` // Unix timestamp or empty
}

// ToRealm converts CachedRealm to the Realm domain model.
// Only the fields the hot lookup path needs are carried in cache.
func (c *CachedRealm) ToRealm(stringID string) *Realm {
	realm := &Realm{
		ID:       c.ID,
		StringID: stringID,
		Name:     c.Name,
	}

	if c.DeactivatedAt != "" {
		if ts, err := strconv.ParseInt(c.DeactivatedAt, 10, 64); err == nil {
			t := time.Unix(ts, 0)
			realm.DeactivatedAt = &t
		}
	}

	return realm
}

// ToCachedRealm converts a Realm to its cache representation.
func (r *Realm) ToCachedRealm() *CachedRealm {
	cached := &CachedRealm{
		ID:   r.ID,
		Name: r.Name,
	}

	if r.DeactivatedAt != nil {
		cached.DeactivatedAt = strconv.FormatInt(r.DeactivatedAt.Unix(), 10)
	}

	return cached
}
