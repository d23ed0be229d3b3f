// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orcid_logins_total",
			Help: "ORCID login attempts by outcome.",
		},
		[]string{"result"},
	)

	SessionsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_swept_total",
			Help: "Total number of expired sessions removed by the sweeper.",
		},
	)

	LibraryItemsAdded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "library_items_added_total",
			Help: "Total number of papers saved to a library.",
		},
	)

	UpstreamRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_retries_total",
			Help: "Retries of rate-limited upstream calls by host.",
		},
		[]string{"host"},
	)
)

func init() {
	prometheus.MustRegister(Logins, SessionsSwept, LibraryItemsAdded, UpstreamRetries)
}
