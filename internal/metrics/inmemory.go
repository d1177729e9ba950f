package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	LinksIssued           uint64
	LinksRedeemed         uint64
	LinksRejectedNotFound uint64
	LinksRejectedExpired  uint64
	LinksRejectedConsumed uint64
	RedeemDurationCount   uint64
	RedeemDurationTotalNs int64
	RealmCacheHits        uint64
	RealmCacheMisses      uint64
	RealmsCreated         uint64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	linksIssued           uint64
	linksRedeemed         uint64
	linksRejectedNotFound uint64
	linksRejectedExpired  uint64
	linksRejectedConsumed uint64
	redeemDurationCount   uint64
	redeemDurationTotalNs int64
	realmCacheHits        uint64
	realmCacheMisses      uint64
	realmsCreated         uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		LinksIssued:           atomic.LoadUint64(&m.linksIssued),
		LinksRedeemed:         atomic.LoadUint64(&m.linksRedeemed),
		LinksRejectedNotFound: atomic.LoadUint64(&m.linksRejectedNotFound),
		LinksRejectedExpired:  atomic.LoadUint64(&m.linksRejectedExpired),
		LinksRejectedConsumed: atomic.LoadUint64(&m.linksRejectedConsumed),
		RedeemDurationCount:   atomic.LoadUint64(&m.redeemDurationCount),
		RedeemDurationTotalNs: atomic.LoadInt64(&m.redeemDurationTotalNs),
		RealmCacheHits:        atomic.LoadUint64(&m.realmCacheHits),
		RealmCacheMisses:      atomic.LoadUint64(&m.realmCacheMisses),
		RealmsCreated:         atomic.LoadUint64(&m.realmsCreated),
	}
}

// IncLinkIssued increments the issued-link counter.
func (m *InMemoryRecorder) IncLinkIssued() {
	atomic.AddUint64(&m.linksIssued, 1)
}

// IncLinkRedeemed increments the redeemed-link counter.
func (m *InMemoryRecorder) IncLinkRedeemed() {
	atomic.AddUint64(&m.linksRedeemed, 1)
}

// IncLinkRejected increments the rejection counter for a reason.
func (m *InMemoryRecorder) IncLinkRejected(reason string) {
	switch reason {
	case "expired":
		atomic.AddUint64(&m.linksRejectedExpired, 1)
	case "consumed":
		atomic.AddUint64(&m.linksRejectedConsumed, 1)
	default:
		atomic.AddUint64(&m.linksRejectedNotFound, 1)
	}
}

// ObserveRedeemDuration records redeem duration.
func (m *InMemoryRecorder) ObserveRedeemDuration(duration time.Duration) {
	atomic.AddUint64(&m.redeemDurationCount, 1)
	atomic.AddInt64(&m.redeemDurationTotalNs, duration.Nanoseconds())
}

// IncRealmCacheHit increments the realm cache hit counter.
func (m *InMemoryRecorder) IncRealmCacheHit() {
	atomic.AddUint64(&m.realmCacheHits, 1)
}

// IncRealmCacheMiss increments the realm cache miss counter.
func (m *InMemoryRecorder) IncRealmCacheMiss() {
	atomic.AddUint64(&m.realmCacheMisses, 1)
}

// IncRealmCreated increments the created-realm counter.
func (m *InMemoryRecorder) IncRealmCreated() {
	atomic.AddUint64(&m.realmsCreated, 1)
}
