// Package metrics defines the business counters exported on /metrics next to
// the HTTP metrics from echoprometheus. Metrics register with the default
// registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
)

const namespace = "catalog"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// RegistrationsTotal counts registration attempts.
// Label:
//   - outcome: "success", "validation", or "error"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by outcome.",
	},
	[]string{"outcome"},
)

// LoginsTotal counts login attempts.
// Label:
//   - outcome: "success", "unauthorized", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by outcome.",
	},
	[]string{"outcome"},
)

// RoleChangesTotal counts membership changes.
// Labels:
//   - action: "assign" or "revoke"
//   - outcome: "success", "validation", "not_found", or "error"
var RoleChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "role_changes_total",
		Help:      "Total number of role assign/revoke requests, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts product writes.
// Labels:
//   - action: "create", "update", or "delete"
//   - outcome: as above
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of product create/update/delete requests, by action and outcome.",
	},
	[]string{"action", "outcome"},
)

// ProductEventsDroppedTotal counts change events dropped because the
// dispatcher buffer was full.
var ProductEventsDroppedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_events_dropped_total",
		Help:      "Total number of product events dropped by the dispatcher.",
	},
)

// Outcome maps a flow result to a low-cardinality label value.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	for _, k := range []domain.Kind{domain.KindValidation, domain.KindNotFound, domain.KindUnauthorized} {
		if domain.IsKind(err, k) {
			return k.String()
		}
	}
	return "error"
}
