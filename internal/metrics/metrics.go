// Package metrics defines the Prometheus collectors for tripdesk.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts served requests by method, route pattern and status.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tripdesk_http_requests_total",
		Help: "Number of HTTP requests served.",
	}, []string{"method", "route", "code"})

	// HTTPDuration observes request latency by method and route pattern.
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tripdesk_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// FlightsExtracted counts flight records recovered from assistant replies.
	FlightsExtracted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripdesk_flights_extracted_total",
		Help: "Number of flight records extracted from assistant replies.",
	})

	// SettlementsComputed counts settlement plan computations.
	SettlementsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripdesk_settlements_computed_total",
		Help: "Number of settlement plan computations.",
	})

	// AssistantErrors counts failed completion calls.
	AssistantErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tripdesk_assistant_errors_total",
		Help: "Number of failed assistant completion calls.",
	})
)
