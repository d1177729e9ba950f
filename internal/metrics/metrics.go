// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Creation-link lifecycle metrics
	IncLinkIssued()
	IncLinkRedeemed()
	IncLinkRejected(reason string) // reason: "not_found", "expired", "consumed"
	ObserveRedeemDuration(duration time.Duration)

	// Realm lookup metrics
	IncRealmCacheHit()
	IncRealmCacheMiss()

	// Realm lifecycle metrics
	IncRealmCreated()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
