// Package webhook provides signed replay of webhook fixture payloads.
// Operators use it to post captured integration payloads at a running
// endpoint, reproducing what the upstream service would send.
package webhook

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrReplayWindowExceeded is returned when timestamp is outside replay window.
	ErrReplayWindowExceeded = errors.New("timestamp outside replay window")
	// ErrInvalidSignature is returned when signature verification fails.
	ErrInvalidSignature = errors.New("invalid signature")
)

const (
	// DefaultReplayWindow is the default replay protection window.
	DefaultReplayWindow = 5 * time.Minute
)

// GenerateSignature creates HMAC-SHA256 signature for a fixture payload.
// The canonical string format is: "{timestamp}.{payloadJSON}"
func GenerateSignature(secret string, timestamp int64, payloadJSON []byte) string {
	canonical := fmt.Sprintf("%d.%s", timestamp, string(payloadJSON))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))
}

// ValidateSignature verifies a fixture signature with replay protection.
// Receivers use this to check posts produced by the replay tooling.
func ValidateSignature(secret, signature string, timestamp int64, payloadJSON []byte, replayWindow time.Duration) error {
	// Check replay window
	now := time.Now().Unix()
	if abs(now-timestamp) > int64(replayWindow.Seconds()) {
		return ErrReplayWindowExceeded
	}

	expected := GenerateSignature(secret, timestamp, payloadJSON)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}

	return nil
}

// GenerateSecret creates a cryptographically secure random signing secret.
func GenerateSecret() (string, error) {
	// Generate 32 bytes = 256 bits of entropy
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	// Encode as hex for easy copy-paste (64 chars)
	return "whsec_" + hex.EncodeToString(b), nil
}

func abs(x int64) int64 {
	if x < 0 {
		return -x
	}
	return x
}
