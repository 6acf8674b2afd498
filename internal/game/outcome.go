package game

import (
	"fmt"

	"variantchess/internal/board"
)

// State is the lifecycle of a game.
type State uint8

const (
	NotStarted State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "not-started"
	}
}

// Result classifies a finished game.
type Result uint8

const (
	Draw Result = iota + 1
	Decisive
	Aborted
)

func (r Result) String() string {
	switch r {
	case Draw:
		return "draw"
	case Decisive:
		return "decisive"
	case Aborted:
		return "aborted"
	default:
		return "none"
	}
}

// Cause explains a Draw or Decisive result.
type Cause uint8

const (
	NoCause Cause = iota
	// draws
	Stalemate
	DeadPosition
	DrawOffer
	// decisive
	Resign
	Error
	Flag
	Checkmate
	Other
	IllegalMove
)

var causeNames = [...]string{
	NoCause:      "",
	Stalemate:    "stalemate",
	DeadPosition: "dead-position",
	DrawOffer:    "agreement",
	Resign:       "resignation",
	Error:        "error",
	Flag:         "flag",
	Checkmate:    "checkmate",
	Other:        "other",
	IllegalMove:  "illegal-move",
}

func (c Cause) String() string {
	if int(c) < len(causeNames) {
		return causeNames[c]
	}
	return fmt.Sprintf("cause(%d)", c)
}

// Outcome is how a game ended. Winner and Loser are meaningful for Decisive only;
// Move for IllegalMove and Err for Error or Aborted.
type Outcome struct {
	Result Result
	Cause  Cause
	Winner board.Color
	Loser  board.Color
	Move   board.Move
	Err    error
}

func (o Outcome) String() string {
	switch o.Result {
	case Decisive:
		return fmt.Sprintf("%d beats %d by %s", o.Winner, o.Loser, o.Cause)
	case Draw:
		return "draw by " + o.Cause.String()
	case Aborted:
		return "aborted"
	}
	return "in progress"
}
