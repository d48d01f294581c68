// Package metrics defines and registers all custom Prometheus metrics for the
// Point2Image walk feed. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics are registered with the default Prometheus registry on import via
// promauto and exposed on GET /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "point2image"

// ── Location metrics ──────────────────────────────────────────────────────────

// LocationFixesTotal counts raw fixes seen by the session aggregator.
// Label:
//   - result: "accepted" or "dropped" (closer than the minimum step)
var LocationFixesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_fixes_total",
		Help:      "Total number of location fixes seen by sessions, by result.",
	},
	[]string{"result"},
)

// LocationErrorsTotal counts location errors reported by the device.
// Label:
//   - kind: "permission_revoked" or "other"
var LocationErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_errors_total",
		Help:      "Total number of location errors reported by the device.",
	},
	[]string{"kind"},
)

// LocationUpdatesDropped counts updates discarded because a subscriber queue was full.
var LocationUpdatesDropped = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "location_updates_dropped_total",
		Help:      "Location updates dropped from full subscriber queues (oldest first).",
	},
)

// LocationUpdateRequests is the current start-updates reference count.
var LocationUpdateRequests = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "location_update_requests",
		Help:      "Outstanding start-updates requests against the location device.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionsStartedTotal counts tracking sessions that reached the timeline state.
var SessionsStartedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Total number of tracking sessions started.",
	},
)

// SessionsEndedTotal counts terminated location sessions.
// Label:
//   - reason: "cancelled", "permission_revoked", "source_closed", "unauthorized"
var SessionsEndedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_ended_total",
		Help:      "Total number of location sessions ended, by reason.",
	},
	[]string{"reason"},
)

// SnapshotsEmittedTotal counts session snapshots handed to the orchestrator.
var SnapshotsEmittedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_emitted_total",
		Help:      "Total number of session snapshots emitted.",
	},
)

// ── Photo metrics ─────────────────────────────────────────────────────────────

// PhotoSearchDuration measures a single photo search call.
// Label:
//   - result: "ok" or "error"
var PhotoSearchDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "photo_search_duration_seconds",
		Help:      "Duration of photo search requests.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// PhotosProcessedTotal counts the outcome of each snapshot's photo lookup.
// Label:
//   - result: "accepted", "no_new", "search_failed", "seen_store_failed"
var PhotosProcessedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "photos_processed_total",
		Help:      "Outcome of photo lookups per snapshot.",
	},
	[]string{"result"},
)
