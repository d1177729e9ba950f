package middleware

import (
	"errors"
	"regexp"
	"strings"
)

// Validation limits.
const (
	// CreationKeyLength is the exact length of a realm creation key.
	CreationKeyLength = 24

	// MaxSubdomainLength is the maximum length for a realm subdomain.
	MaxSubdomainLength = 40

	// MinSubdomainLength is the minimum length for a realm subdomain.
	MinSubdomainLength = 2

	// MaxEmailLength is the maximum accepted email address length.
	MaxEmailLength = 254
)

// Validation errors.
var (
	ErrCreationKeyInvalid = errors.New("creation key has invalid format")
	ErrSubdomainTooLong   = errors.New("subdomain exceeds maximum length")
	ErrSubdomainTooShort  = errors.New("subdomain is too short")
	ErrSubdomainInvalid   = errors.New("subdomain contains invalid characters")
	ErrSubdomainReserved  = errors.New("subdomain is reserved")
	ErrEmailInvalid       = errors.New("email address is invalid")
)

// ReservedSubdomains contains realm subdomains that cannot be claimed.
// These collide with system routes or invite abuse.
var ReservedSubdomains = map[string]bool{
	// System routes
	"api":     true,
	"admin":   true,
	"healthz": true,
	"readyz":  true,
	"metrics": true,
	"static":  true,
	"assets":  true,
	"www":     true,

	// Auth and signup paths
	"login":    true,
	"logout":   true,
	"auth":     true,
	"oauth":    true,
	"accounts": true,
	"signup":   true,
	"register": true,

	// Brand protection
	"threadline": true,
	"thread":     true,

	// Common abuse targets
	"password":    true,
	"reset":       true,
	"verify":      true,
	"confirm":     true,
	"activate":    true,
	"unsubscribe": true,
	"support":     true,
	"billing":     true,
}

// creationKeyPattern matches a 24-char lowercase hex creation key.
var creationKeyPattern = regexp.MustCompile(`^[a-f0-9]{24}$`)

// subdomainPattern matches valid realm subdomains: lowercase
// alphanumeric with interior hyphens.
var subdomainPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateCreationKey checks that key looks like a creation key before
// it reaches the database.
func ValidateCreationKey(key string) error {
	if len(key) != CreationKeyLength || !creationKeyPattern.MatchString(key) {
		return ErrCreationKeyInvalid
	}
	return nil
}

// ValidateSubdomain validates a realm subdomain.
func ValidateSubdomain(subdomain string) error {
	if len(subdomain) > MaxSubdomainLength {
		return ErrSubdomainTooLong
	}
	if len(subdomain) < MinSubdomainLength {
		return ErrSubdomainTooShort
	}
	if !subdomainPattern.MatchString(subdomain) {
		return ErrSubdomainInvalid
	}
	if ReservedSubdomains[subdomain] {
		return ErrSubdomainReserved
	}
	return nil
}

// ValidateEmail performs a shallow email check. Real verification
// happens downstream when the confirmation email is sent.
func ValidateEmail(email string) error {
	if email == "" || len(email) > MaxEmailLength {
		return ErrEmailInvalid
	}
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		return ErrEmailInvalid
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return ErrEmailInvalid
	}
	return nil
}
