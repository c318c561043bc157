package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huddle_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Business metrics
	UsersRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_users_registered_total",
			Help: "Total users registered",
		},
	)

	RoomsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_rooms_created_total",
			Help: "Total rooms created",
		},
	)

	RoomsJoined = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_rooms_joined_total",
			Help: "Total successful room joins",
		},
	)

	OptionsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "huddle_options_submitted_total",
			Help: "Total options submitted",
		},
	)

	VotesCast = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_votes_cast_total",
			Help: "Total votes cast",
		},
		[]string{"kind"}, // "first" or "revote"
	)

	DecisionsRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_decisions_recorded_total",
			Help: "Total decisions recorded",
		},
		[]string{"tiebreaker"}, // "dice", "spinner", "coin" or "none"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	BlockedRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huddle_blocked_requests_total",
			Help: "Total blocked requests",
		},
		[]string{"reason"},
	)
)
