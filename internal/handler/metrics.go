package handler

import (
	"fmt"
	"net/http"

	"github.com/threadline/threadline/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "threadline_creation_links_issued_total %d\n", snap.LinksIssued)
	writeMetric(w, "threadline_creation_links_redeemed_total %d\n", snap.LinksRedeemed)
	writeMetric(w, "threadline_creation_links_rejected_total{reason=\"not_found\"} %d\n", snap.LinksRejectedNotFound)
	writeMetric(w, "threadline_creation_links_rejected_total{reason=\"expired\"} %d\n", snap.LinksRejectedExpired)
	writeMetric(w, "threadline_creation_links_rejected_total{reason=\"consumed\"} %d\n", snap.LinksRejectedConsumed)
	writeMetric(w, "threadline_creation_link_redeem_duration_seconds_count %d\n", snap.RedeemDurationCount)
	writeMetric(w, "threadline_creation_link_redeem_duration_seconds_sum %.6f\n", float64(snap.RedeemDurationTotalNs)/1e9)

	writeMetric(w, "threadline_realm_cache_hits_total %d\n", snap.RealmCacheHits)
	writeMetric(w, "threadline_realm_cache_misses_total %d\n", snap.RealmCacheMisses)
	writeMetric(w, "threadline_realms_created_total %d\n", snap.RealmsCreated)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
