// Package source provides move-sources: simple built-in players, a human
// relay and a remote engine connector.
package source

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"variantchess/internal/board"
	"variantchess/internal/game"
)

// Resigner gives up on every move.
type Resigner struct{}

// Decide always resigns.
func (Resigner) Decide(context.Context, game.Input) (game.Decision, error) {
	return game.Decision{}, game.ErrResign
}

// Random plays a uniformly random legal move.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom returns a Random player seeded with seed.
func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

// Decide picks uniformly among the check-safe moves, resigning when there are none.
func (r *Random) Decide(ctx context.Context, in game.Input) (game.Decision, error) {
	moves, err := legal(in)
	if err != nil {
		return game.Decision{}, err
	}
	return game.Decision{Move: moves[r.intn(len(moves))]}, nil
}

func (r *Random) intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

// Greedy captures the most valuable piece it can, otherwise plays randomly.
type Greedy struct {
	Random
}

// NewGreedy returns a Greedy player seeded with seed.
func NewGreedy(seed int64) *Greedy {
	return &Greedy{Random: Random{rng: rand.New(rand.NewSource(seed))}}
}

// Decide takes the most valuable capture, breaking ties at random.
func (g *Greedy) Decide(ctx context.Context, in game.Input) (game.Decision, error) {
	moves, err := legal(in)
	if err != nil {
		return game.Decision{}, err
	}
	pieces := in.Board.Spec().Pieces
	best, bestValue := []board.Move(nil), 0
	for _, m := range moves {
		target := in.Board.Get(m.Dest)
		if target.IsEmpty() {
			continue
		}
		v := pieces[target.Type].Value
		switch {
		case v > bestValue:
			best, bestValue = []board.Move{m}, v
		case v == bestValue && v > 0:
			best = append(best, m)
		}
	}
	if len(best) == 0 {
		best = moves
	}
	return game.Decision{Move: best[g.intn(len(best))]}, nil
}

func legal(in game.Input) ([]board.Move, error) {
	moves := in.Variant.AllLegalMoves(&in.Board, in.Color)
	if len(moves) == 0 {
		return nil, fmt.Errorf("%w: %w", game.ErrResign, game.ErrNoLegalMoves)
	}
	return moves, nil
}

// New builds a named built-in source: "random", "greedy" or "resign".
func New(kind string, seed int64) (game.MoveSource, error) {
	switch kind {
	case "random":
		return NewRandom(seed), nil
	case "greedy":
		return NewGreedy(seed), nil
	case "resign":
		return Resigner{}, nil
	}
	return nil, fmt.Errorf("unknown source %q", kind)
}
