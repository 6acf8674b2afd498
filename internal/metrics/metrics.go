package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"variantchess/internal/game"
)

var (
	GamesStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variantchess_games_started_total",
			Help: "Games created, by variant",
		},
		[]string{"variant"},
	)
	GamesFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variantchess_games_finished_total",
			Help: "Games finished, by variant, result and cause",
		},
		[]string{"variant", "result", "cause"},
	)
	Moves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "variantchess_moves_total",
			Help: "Plies applied, by variant",
		},
		[]string{"variant"},
	)
	MoveSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "variantchess_move_seconds",
			Help:    "Time taken to decide a move",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300},
		},
		[]string{"variant"},
	)
)

func init() {
	prometheus.MustRegister(GamesStarted)
	prometheus.MustRegister(GamesFinished)
	prometheus.MustRegister(Moves)
	prometheus.MustRegister(MoveSeconds)
}

// Started counts a new game of variant.
func Started(variant string) { GamesStarted.WithLabelValues(variant).Inc() }

// Observer feeds game events into the collectors.
type Observer struct{}

func (Observer) OnMove(g *game.Game, p game.Ply) {
	v := g.Variant().Name()
	Moves.WithLabelValues(v).Inc()
	MoveSeconds.WithLabelValues(v).Observe(p.Elapsed.Seconds())
}

func (Observer) OnFinish(g *game.Game, o game.Outcome) {
	cause := o.Cause.String()
	if cause == "" {
		cause = "none"
	}
	GamesFinished.WithLabelValues(g.Variant().Name(), o.Result.String(), cause).Inc()
}
