package source

import (
	"context"
	"errors"

	"variantchess/internal/board"
	"variantchess/internal/game"
)

var (
	// ErrNotYourTurn is returned by Submit while the seat is not being asked to move.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrIllegalMove is returned by Submit for a move that would not be accepted.
	ErrIllegalMove = errors.New("illegal move")
)

type submission struct {
	move   board.Move
	offer  bool
	resign bool
	reply  chan error
}

// Human relays moves submitted from outside (HTTP, a terminal) into the
// game. Rejected submissions are reported to the submitter and the seat
// keeps waiting.
type Human struct {
	inbox chan submission
}

// NewHuman returns a relay with no move pending.
func NewHuman() *Human {
	return &Human{inbox: make(chan submission)}
}

// Decide waits for a check-safe submission or a resignation.
func (h *Human) Decide(ctx context.Context, in game.Input) (game.Decision, error) {
	for {
		select {
		case <-ctx.Done():
			return game.Decision{}, ctx.Err()
		case s := <-h.inbox:
			if s.resign {
				s.reply <- nil
				return game.Decision{}, game.ErrResign
			}
			if !in.Variant.IsMoveSafe(&in.Board, in.Color, s.move) {
				s.reply <- ErrIllegalMove
				continue
			}
			s.reply <- nil
			return game.Decision{Move: s.move, OfferDraw: s.offer}, nil
		}
	}
}

// Submit hands m to a waiting Decide and reports whether it was accepted.
func (h *Human) Submit(ctx context.Context, m board.Move, offerDraw bool) error {
	return h.send(ctx, submission{move: m, offer: offerDraw})
}

// Resign gives up the game on this seat's turn.
func (h *Human) Resign(ctx context.Context) error {
	return h.send(ctx, submission{resign: true})
}

func (h *Human) send(ctx context.Context, s submission) error {
	s.reply = make(chan error, 1)
	select {
	case h.inbox <- s:
	default:
		return ErrNotYourTurn
	}
	select {
	case err := <-s.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
