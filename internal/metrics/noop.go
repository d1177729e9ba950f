package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncLinkIssued is a no-op.
func (n *NoopRecorder) IncLinkIssued() {}

// IncLinkRedeemed is a no-op.
func (n *NoopRecorder) IncLinkRedeemed() {}

// IncLinkRejected is a no-op.
func (n *NoopRecorder) IncLinkRejected(reason string) {}

// ObserveRedeemDuration is a no-op.
func (n *NoopRecorder) ObserveRedeemDuration(duration time.Duration) {}

// IncRealmCacheHit is a no-op.
func (n *NoopRecorder) IncRealmCacheHit() {}

// IncRealmCacheMiss is a no-op.
func (n *NoopRecorder) IncRealmCacheMiss() {}

// IncRealmCreated is a no-op.
func (n *NoopRecorder) IncRealmCreated() {}
