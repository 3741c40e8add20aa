// Package metrics exposes the Prometheus counters and histograms the
// table and tournament engines are instrumented with, in the same
// registration idiom as the prior internal/fraud/metrics.go
// (promauto.NewCounterVec/NewHistogramVec registered as package-level
// vars) — table/tournament domain instead of fraud domain.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HandsStarted counts StartHand calls per table and game type.
	HandsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_table_hands_started_total",
		Help: "Total number of hands started",
	}, []string{"table_id", "game_type"})

	HandDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poker_table_hand_duration_seconds",
		Help:    "Wall-clock time from StartHand to showdown or fold-out",
		Buckets: prometheus.DefBuckets,
	}, []string{"table_id"})

	ActionsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_table_actions_total",
		Help: "Total player actions processed",
	}, []string{"table_id", "action"})

	PotSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poker_table_pot_size",
		Help:    "Distribution of settled pot sizes",
		Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
	}, []string{"table_id", "currency"})

	RakeCollected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_table_rake_collected_total",
		Help: "Total house share of flushed rake deposited, in the currency's smallest unit",
	}, []string{"account", "currency"})

	PlayersKicked = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_table_players_kicked_total",
		Help: "Total players removed by startHand's kick scan or the kick endpoint",
	}, []string{"table_id", "reason"})

	// TournamentsStarted counts tournaments transitioning into Running.
	TournamentsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_tournament_started_total",
		Help: "Total tournaments that reached the running state",
	}, []string{"tournament_type"})

	TournamentEliminations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_tournament_eliminations_total",
		Help: "Total player eliminations across tournaments",
	}, []string{"tournament_id"})

	TournamentRebalances = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_tournament_rebalance_moves_total",
		Help: "Total table-balancer moves executed",
	}, []string{"tournament_id"})

	PrizePoolPaid = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_tournament_prize_pool_paid_total",
		Help: "Total prize money settled, in the currency's smallest unit",
	}, []string{"tournament_id"})
)
