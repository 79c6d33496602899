// Package metrics defines the custom Prometheus metrics of the sweet shop
// API. It is the single source of truth for metric names, labels, and help
// strings. HTTP request metrics come from echoprometheus and are not declared
// here.
//
// All metrics register with the default Prometheus registry on package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "sweetshop"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// UsersRegisteredTotal counts successful self-service registrations.
var UsersRegisteredTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_registered_total",
		Help:      "Total number of users registered.",
	},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by result.",
	},
	[]string{"result"},
)

// AuthorizationDeniedTotal counts requests rejected by the role table.
// Label:
//   - operation: the catalog operation that was denied (e.g. "sweet:delete")
var AuthorizationDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authorization_denied_total",
		Help:      "Total number of requests denied by role, by operation.",
	},
	[]string{"operation"},
)

// RateLimitedTotal counts requests rejected with 429.
var RateLimitedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rate_limited_total",
		Help:      "Total number of requests rejected by the rate limiter.",
	},
)

// ── Inventory metrics ─────────────────────────────────────────────────────────

// SweetsPurchasedTotal counts units sold.
// Label:
//   - category: the sweet category (e.g. "cake")
var SweetsPurchasedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweets_purchased_units_total",
		Help:      "Total number of sweet units purchased, by category.",
	},
	[]string{"category"},
)

// PurchasesRejectedTotal counts purchases that did not change stock.
// Label:
//   - reason: "insufficient_stock", "not_found" or "invalid_quantity"
var PurchasesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "purchases_rejected_total",
		Help:      "Total number of rejected purchases, by reason.",
	},
	[]string{"reason"},
)

// SweetsRestockedTotal counts units added back to stock.
// Label:
//   - category: the sweet category
var SweetsRestockedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sweets_restocked_units_total",
		Help:      "Total number of sweet units restocked, by category.",
	},
	[]string{"category"},
)
