// Package model defines domain entities for the application.
package model

import "time"

// UserProfile represents a user account within a realm.
type UserProfile struct {
	ID        string    `json:"id"`
	RealmID   string    `json:"realm_id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}
