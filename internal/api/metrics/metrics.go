// Package metrics defines and registers the custom Prometheus metrics of the
// listing board API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default registry on import; HTTP request
// metrics come from echoprometheus in the router.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "listing_board"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts signup and login attempts.
// Labels:
//   - operation: "signup" or "login"
//   - result: "success", "invalid", "conflict", "rate_limited" or "error"
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of signup and login attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsStartedTotal counts server-side sessions opened by login.
var SessionsStartedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Total number of sessions started.",
	},
)

// SessionRejectionsTotal counts authenticated requests refused by the
// session check.
// Label:
//   - reason: "missing", "not_found" or "expired"
var SessionRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_rejections_total",
		Help:      "Total number of requests rejected because of the session state.",
	},
	[]string{"reason"},
)

// ── Listing metrics ───────────────────────────────────────────────────────────

// ListingMutationsTotal counts listing writes.
// Labels:
//   - operation: "create", "update" or "delete"
//   - result: "success", "invalid", "not_found", "capacity" or "error"
var ListingMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "listing_mutations_total",
		Help:      "Total number of listing create/update/delete calls, by outcome.",
	},
	[]string{"operation", "result"},
)

// ListingsStored reports the listing count seen by the last stats request.
var ListingsStored = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "listings_stored",
		Help:      "Number of listings as of the most recent admin stats request.",
	},
)
