// Package model defines domain entities for the application.
package model

import "time"

// CreationKey is a single-use secret authorizing creation of one new realm.
// The key itself is the lookup identifier; there is no surrogate ID.
type CreationKey struct {
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}

// Age returns how long ago the key was issued, relative to now.
func (k *CreationKey) Age(now time.Time) time.Duration {
	return now.Sub(k.CreatedAt)
}

// IsExpired reports whether the key has aged past the validity window.
func (k *CreationKey) IsExpired(now time.Time, validity time.Duration) bool {
	return k.Age(now) > validity
}
