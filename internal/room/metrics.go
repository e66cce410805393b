package room

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	roomsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rooms_created_total",
			Help: "Rooms created",
		},
	)
	flipsAccepted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "flips_accepted_total",
			Help: "Flip intents accepted and written",
		},
	)
	flipsRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flips_rejected_total",
			Help: "Flip intents rejected at validation",
		},
		[]string{"reason"},
	)
	writeConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "room_write_conflicts_total",
			Help: "Versioned room writes retried after a conflict",
		},
	)
	resolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flip_resolutions_total",
			Help: "Pair resolutions applied",
		},
		[]string{"outcome"},
	)
	matchesFinished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "matches_finished_total",
			Help: "Matches that reached the finished status",
		},
	)
)

func init() {
	prometheus.MustRegister(roomsCreated)
	prometheus.MustRegister(flipsAccepted)
	prometheus.MustRegister(flipsRejected)
	prometheus.MustRegister(writeConflicts)
	prometheus.MustRegister(resolutions)
	prometheus.MustRegister(matchesFinished)
}
