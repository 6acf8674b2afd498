package game

import "errors"

var (
	// ErrFinished is returned by Advance once the game has an outcome.
	ErrFinished = errors.New("game finished")
	// ErrResign is returned (or wrapped) by a move-source that gives up.
	ErrResign = errors.New("resigned")
	// ErrNoLegalMoves is returned by sources that cannot find a move.
	ErrNoLegalMoves = errors.New("no legal moves")
	// ErrPlayerCount is returned by New when the sources do not match the board's colors.
	ErrPlayerCount = errors.New("player count does not match variant")
)
