package litesoc

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts LiteSOC API calls by method, route and outcome
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "litesoc_requests_total",
			Help: "Total number of LiteSOC API requests",
		},
		[]string{"method", "route", "outcome"}, // outcome: "ok", "error"
	)

	// ErrorsTotal counts classified failures by HTTP code ("none" when unknown)
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "litesoc_errors_total",
			Help: "Total number of failed LiteSOC API requests",
		},
		[]string{"http_code"},
	)

	// PagesFetched counts list pages fetched while collecting all items
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "litesoc_pages_fetched_total",
			Help: "Total number of list pages fetched from the LiteSOC API",
		},
		[]string{"route"},
	)
)

// routeLabel replaces resource ids in endpoint so label cardinality stays
// bounded: /alerts/alt_1 becomes /alerts/{id}, /alerts/list is kept.
func routeLabel(endpoint string) string {
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}

	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		if i > 0 && s != "list" {
			segments[i] = "{id}"
		}
	}
	return "/" + strings.Join(segments, "/")
}
