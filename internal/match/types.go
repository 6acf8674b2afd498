package match

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"variantchess/internal/board"
	"variantchess/internal/game"
	"variantchess/internal/source"
	"variantchess/internal/storage"
	"variantchess/internal/variant"
)

var (
	// ErrNotFound is returned for unknown match ids.
	ErrNotFound = errors.New("match not found")
	// ErrBadSeat is returned when a token does not belong to a human seat of the match.
	ErrBadSeat = errors.New("no such seat")
	// ErrFENVariant is returned when a FEN start is requested for a non-chess variant.
	ErrFENVariant = errors.New("fen start positions are only supported for chess")
)

// Hub manages all live matches
type Hub struct {
	Mu      sync.Mutex
	Matches map[string]*Match
	store   *storage.Store
	idleTTL time.Duration
	now     func() time.Time
}

// Seat is one color's player.
type Seat struct {
	Kind   string // human, random, greedy, resign or remote
	Engine string // remote URL
	Token  string // human seats only
	human  *source.Human
	remote *source.Remote
}

// Match is a game in progress with its watchers. The embedded game is only
// touched by the run goroutine; everything else is guarded by Mu.
type Match struct {
	Mu       sync.Mutex
	ID       string
	Key      uuid.UUID
	Variant  *variant.Variant
	Format   game.TimeFormat
	Seats    []Seat
	Watchers map[chan []byte]struct{}
	LastSeen time.Time
	Created  time.Time

	game    *game.Game
	board   board.Board
	toMove  board.Color
	moves   []string
	clocks  []game.Clock
	outcome *game.Outcome
	store   *storage.Store
	cancel  context.CancelFunc
	done    chan struct{}
	changed chan struct{} // closed and replaced on every move and at the finish
}

// CreateRequest describes a new match.
type CreateRequest struct {
	Variant string          `json:"variant"`
	Seats   []string        `json:"seats"`
	Format  game.TimeFormat `json:"-"`
	FEN     string          `json:"fen,omitempty"`
	Seed    int64           `json:"seed,omitempty"`
}

// MoveRequest represents a move request from a client
type MoveRequest struct {
	Move      string `json:"move"`
	Token     string `json:"token"`
	OfferDraw bool   `json:"offerDraw,omitempty"`
	Resign    bool   `json:"resign,omitempty"`
}

// ClockView is a clock as shown to clients.
type ClockView struct {
	Color       string `json:"color"`
	RemainingMS int64  `json:"remainingMs"`
	Timed       bool   `json:"timed"`
}

// State represents the current state of a match
type State struct {
	Kind     string      `json:"kind"`
	ID       string      `json:"id"`
	Variant  string      `json:"variant"`
	Board    []string    `json:"board"`
	FEN      string      `json:"fen,omitempty"`
	Turn     string      `json:"turn"`
	Status   string      `json:"status"`
	Moves    []string    `json:"moves"`
	Clocks   []ClockView `json:"clocks"`
	Time     string      `json:"time"`
	LastSeen int64       `json:"lastSeen"`
	Watchers int         `json:"watchers"`
}

// ClientState is the state sent to a specific seat, including its color
type ClientState struct {
	State
	Color *string `json:"color"`
	Role  string  `json:"role"`
}
