// Package metrics defines the gateway's custom Prometheus metrics. It is the
// single source of truth for metric names, labels and help strings.
//
// All metrics are registered on the default registry through promauto when
// the package is imported.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

// ── Identity ──────────────────────────────────────────────────────────────────

// AuthFailuresTotal counts requests rejected by the identity resolver.
// Labels:
//   - mode: "header", "session" or "token"
//   - reason: "missing", "malformed", "unknown_session", "unknown_user", "invalid_token"
var AuthFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_failures_total",
		Help:      "Total number of requests rejected as unauthenticated.",
	},
	[]string{"mode", "reason"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "unknown_user", "rate_limited", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// SessionsCreatedTotal counts sessions opened by successful logins.
var SessionsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_created_total",
		Help:      "Total number of sessions created.",
	},
)

// ── Authorization ─────────────────────────────────────────────────────────────

// AccessDecisionsTotal counts ownership and role decisions.
// Labels:
//   - resource: "order", "users"
//   - decision: "allow", "deny", "not_found"
var AccessDecisionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_decisions_total",
		Help:      "Total number of access decisions on owner-scoped resources.",
	},
	[]string{"resource", "decision"},
)

// ── Files ─────────────────────────────────────────────────────────────────────

// FileRejectionsTotal counts refused file reads.
// Labels:
//   - endpoint: "read", "read_no_validate"
//   - reason: "traversal", "not_allowed", "invalid", "not_found"
var FileRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "file_rejections_total",
		Help:      "Total number of file reads refused, by endpoint and reason.",
	},
	[]string{"endpoint", "reason"},
)
