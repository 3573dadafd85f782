package session

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionsLoaded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_sessions_loaded_total",
			Help: "Game sessions bound to an engine",
		},
		[]string{"variant"},
	)
	eventsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "game_events_total",
			Help: "Judge events by variant, kind and result",
		},
		[]string{"variant", "event", "result"},
	)
	gamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "games_finished_total",
			Help: "Games that reached a rated outcome",
		},
		[]string{"variant"},
	)
	ratingFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_update_failures_total",
			Help: "Finished games whose rating update was rejected",
		},
	)
	outcomeSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outcome_submissions_total",
			Help: "Outcome hand-offs to persistence by result",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(sessionsLoaded)
	prometheus.MustRegister(eventsApplied)
	prometheus.MustRegister(gamesFinished)
	prometheus.MustRegister(ratingFailures)
	prometheus.MustRegister(outcomeSubmissions)
}
