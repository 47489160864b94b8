// Package metrics defines all custom Prometheus metrics for the storefront
// service. It is the single source of truth for metric names, labels, and
// help strings. Metrics register themselves with the default registry via
// promauto at package load.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// UpstreamRequestsTotal counts calls made to the upstream API.
// Labels:
//   - endpoint: logical endpoint name (e.g. "products", "auth_login")
//   - status: HTTP status code of the response, or "error" when the request
//     never produced a response
var UpstreamRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "upstream_requests_total",
		Help:      "Total number of requests issued to the upstream API.",
	},
	[]string{"endpoint", "status"},
)

// UpstreamRequestDuration measures upstream call latency per endpoint,
// including the transparent refresh-and-retry cycle.
var UpstreamRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "upstream_request_duration_seconds",
		Help:      "Duration of upstream API calls from send to decoded response.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"endpoint"},
)

// TokenRefreshTotal counts token refresh attempts.
// Label:
//   - result: "success" or "failure"
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of access token refresh attempts, by result.",
	},
	[]string{"result"},
)

// CatalogCacheTotal counts catalog cache decisions.
// Label:
//   - result: "hit" (snapshot served) or "miss" (upstream fetch issued)
var CatalogCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_total",
		Help:      "Total number of catalog cache lookups, labelled by result (hit/miss).",
	},
	[]string{"result"},
)

// LoginsTotal counts login attempts that reached the session service.
// Label:
//   - result: "success", "failure", or "invalid" (rejected by local validation)
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
