// Package creationlink issues and redeems single-use, time-limited realm
// creation links. A link embeds a high-entropy key; the key is redeemable
// exactly once while it is inside its validity window.
package creationlink

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/threadline/threadline/internal/metrics"
	"github.com/threadline/threadline/internal/model"
)

// KeyLength is the length of a creation key in hex characters.
const KeyLength = 24

// CreationPath is the URL path prefix for link redemption.
const CreationPath = "/create_realm/"

// InvalidLinkMessage is the only failure text ever shown externally.
// Not-found, expired, and already-consumed keys must be indistinguishable
// to avoid leaking which links were ever issued.
const InvalidLinkMessage = "The organization creation link has expired or is not valid."

// Internal reason codes. These never reach users.
var (
	ErrKeyNotFound = errors.New("creation key not found")
	ErrKeyExpired  = errors.New("creation key expired")
	ErrKeyConsumed = errors.New("creation key already consumed")
)

// Store persists creation keys. DeleteIfFresh is the atomicity primitive:
// it deletes the key only if it exists and was created at or after
// notBefore, reporting whether a row was deleted. Under concurrent calls
// for the same key at most one caller observes true.
type Store interface {
	Get(ctx context.Context, key string) (*model.CreationKey, error)
	Put(ctx context.Context, rec *model.CreationKey) error
	DeleteIfFresh(ctx context.Context, key string, notBefore time.Time) (bool, error)
}

// Service issues and redeems creation links.
type Service struct {
	store    Store
	baseURL  string
	validity time.Duration
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewService creates a Service. baseURL is the deployment root the
// redemption URL is rendered against; validity is the window after which
// an unredeemed key expires.
func NewService(store Store, baseURL string, validity time.Duration, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Service{
		store:    store,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		validity: validity,
		metrics:  recorder,
		now:      time.Now,
	}
}

// GenerateKey creates a cryptographically random creation key.
func GenerateKey() (string, error) {
	buf := make([]byte, KeyLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate creation key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Issue generates a fresh key, persists it, and returns the record plus
// the redemption URL. Storage failures propagate to the caller; issuance
// is an administrative operation with no graceful degradation.
func (s *Service) Issue(ctx context.Context) (*model.CreationKey, string, error) {
	key, err := GenerateKey()
	if err != nil {
		return nil, "", err
	}

	rec := &model.CreationKey{
		Key:       key,
		CreatedAt: s.now().UTC(),
	}

	if err := s.store.Put(ctx, rec); err != nil {
		return nil, "", fmt.Errorf("persist creation key: %w", err)
	}

	s.metrics.IncLinkIssued()

	return rec, s.URL(key), nil
}

// URL renders the redemption URL for a key.
func (s *Service) URL(key string) string {
	return s.baseURL + CreationPath + key
}

// Validity returns the configured validity window.
func (s *Service) Validity() time.Duration {
	return s.validity
}

// Validate checks whether a key is currently redeemable. It is read-only
// and never consumes the key; a user may view the creation page any
// number of times before submitting the form that redeems it.
func (s *Service) Validate(ctx context.Context, key string) error {
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			s.metrics.IncLinkRejected("not_found")
			return ErrKeyNotFound
		}
		return fmt.Errorf("lookup creation key: %w", err)
	}

	if rec.IsExpired(s.now(), s.validity) {
		s.metrics.IncLinkRejected("expired")
		return ErrKeyExpired
	}

	return nil
}

// Redeem consumes a key. The existence and freshness checks and the
// deletion happen as one atomic conditional delete, so when N redemption
// attempts race on the same key exactly one succeeds and the rest fail.
// On failure the record is left untouched.
func (s *Service) Redeem(ctx context.Context, key string) error {
	start := s.now()
	defer func() {
		s.metrics.ObserveRedeemDuration(time.Since(start))
	}()

	// Pre-check so expiry is reported distinctly in metrics. The check
	// that matters for correctness is the conditional delete below.
	rec, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			s.metrics.IncLinkRejected("not_found")
			return ErrKeyNotFound
		}
		return fmt.Errorf("lookup creation key: %w", err)
	}

	now := s.now()
	if rec.IsExpired(now, s.validity) {
		s.metrics.IncLinkRejected("expired")
		return ErrKeyExpired
	}

	deleted, err := s.store.DeleteIfFresh(ctx, key, now.Add(-s.validity))
	if err != nil {
		return fmt.Errorf("consume creation key: %w", err)
	}
	if !deleted {
		// Lost a race: another redemption consumed the key between the
		// read above and the delete.
		s.metrics.IncLinkRejected("consumed")
		return ErrKeyConsumed
	}

	s.metrics.IncLinkRedeemed()
	return nil
}

// IsInvalid reports whether err is one of the redemption reason codes,
// as opposed to a storage failure.
func IsInvalid(err error) bool {
	return errors.Is(err, ErrKeyNotFound) ||
		errors.Is(err, ErrKeyExpired) ||
		errors.Is(err, ErrKeyConsumed)
}
