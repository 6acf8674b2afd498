// Package protocol is the moderator/engine vocabulary: JSON messages tagged
// by "type", exchanged over a websocket.
package protocol

import (
	"time"

	"variantchess/internal/board"
	"variantchess/internal/coord"
	"variantchess/internal/game"
)

// Type tags every message on the wire.
type Type string

// moderator -> engine
const (
	TypeEngineInit     Type = "EngineInit"
	TypeGameStart      Type = "GameStart"
	TypeGameEnd        Type = "GameEnd"
	TypeEngineShutdown Type = "EngineShutdown"
	TypeInvalidRequest Type = "InvalidRequest"
)

// engine -> moderator
const TypeEngineInfo Type = "EngineInfo"

// per game, moderator -> engine
const (
	TypeOpponentMove      Type = "OpponentMove"
	TypeYourMove          Type = "YourMove"
	TypeOpponentDrawOffer Type = "OpponentDrawOffer"
	TypeGameOver          Type = "GameOver"
	TypeClocks            Type = "Clocks"
)

// per game, engine -> moderator
const (
	TypeResign          Type = "Resign"
	TypeDrawOffer       Type = "DrawOffer"
	TypeRejectDrawOffer Type = "RejectDrawOffer"
	TypeGetClocks       Type = "GetClocks"
	TypeMove            Type = "Move"
	TypeErr             Type = "Err"
)

// EngineInfo describes an engine.
type EngineInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author,omitempty"`
	Repo        string `json:"repo,omitempty"`
}

// RawMove carries storage values, not square names.
type RawMove struct {
	Src  coord.Pos `json:"src"`
	Dest coord.Pos `json:"dest"`
}

func RawFrom(m board.Move) RawMove { return RawMove{Src: m.Src, Dest: m.Dest} }

func (r RawMove) Move() board.Move { return board.Move{Src: r.Src, Dest: r.Dest} }

// Wire kinds of TimeFormat.
const (
	KindUnlimited = "Unlimited"
	KindTimed     = "Timed"
	KindPerMove   = "PerMove"
)

// TimeFormat is game.TimeFormat in nanoseconds.
type TimeFormat struct {
	Kind           string `json:"kind"`
	InitialNanos   int64  `json:"initial_nanos,omitempty"`
	IncrementNanos int64  `json:"increment_nanos,omitempty"`
	DelayNanos     int64  `json:"delay_nanos,omitempty"`
}

func FromTimeFormat(tf game.TimeFormat) TimeFormat {
	out := TimeFormat{
		InitialNanos:   tf.Initial.Nanoseconds(),
		IncrementNanos: tf.Increment.Nanoseconds(),
		DelayNanos:     tf.Delay.Nanoseconds(),
	}
	switch tf.Kind {
	case game.KindIncrement:
		out.Kind = KindTimed
	case game.KindFixed:
		out.Kind = KindPerMove
	default:
		return TimeFormat{Kind: KindUnlimited}
	}
	return out
}

// Game converts back; unknown kinds are untimed.
func (t TimeFormat) Game() game.TimeFormat {
	var tf game.TimeFormat
	switch t.Kind {
	case KindTimed:
		tf = game.Increment(time.Duration(t.InitialNanos), time.Duration(t.IncrementNanos))
	case KindPerMove:
		tf = game.FixedPerMove(time.Duration(t.InitialNanos))
	default:
		return game.Unlimited()
	}
	return tf.WithDelay(time.Duration(t.DelayNanos))
}

// ClockState is one entry of a Clocks reply.
type ClockState struct {
	Color          string `json:"color"`
	RemainingNanos int64  `json:"remaining_nanos"`
	Timed          bool   `json:"timed"`
}

// Message is the union of every message kind; only the fields of Type are set.
type Message struct {
	Type Type `json:"type"`

	// GameStart
	Variant    string      `json:"variant,omitempty"`
	Board      string      `json:"board,omitempty"`
	GameID     string      `json:"game_id,omitempty"`
	PlayingAs  string      `json:"playing_as,omitempty"`
	TimeFormat *TimeFormat `json:"time_format,omitempty"`

	// EngineInfo
	Info           *EngineInfo         `json:"info,omitempty"`
	SupportedGames map[string][]string `json:"supported_games,omitempty"`

	// OpponentMove, Move
	Move     *RawMove `json:"move,omitempty"`
	Opponent string   `json:"opponent,omitempty"`

	// YourMove; nil when untimed
	FlagInstant *time.Time `json:"flag_instant,omitempty"`

	// OpponentDrawOffer
	Player string `json:"player,omitempty"`

	// GameOver
	Winner *string `json:"winner,omitempty"`
	Cause  string  `json:"cause,omitempty"`

	// Clocks
	Clocks []ClockState `json:"clocks,omitempty"`

	// Err, InvalidRequest
	Message     string `json:"message,omitempty"`
	RequestJSON string `json:"request_json,omitempty"`
	RelatedGame string `json:"related_game,omitempty"`
}

// Moderator side constructors.

func EngineInit() Message { return Message{Type: TypeEngineInit} }

func GameEnd(id string) Message { return Message{Type: TypeGameEnd, GameID: id} }

func EngineShutdown() Message { return Message{Type: TypeEngineShutdown} }

func InvalidRequest(msg, request, gameID string) Message {
	return Message{Type: TypeInvalidRequest, Message: msg, RequestJSON: request, RelatedGame: gameID}
}

func OpponentMove(m board.Move, opponent string) Message {
	raw := RawFrom(m)
	return Message{Type: TypeOpponentMove, Move: &raw, Opponent: opponent}
}

func YourMove(flag time.Time) Message {
	msg := Message{Type: TypeYourMove}
	if !flag.IsZero() {
		f := flag.UTC()
		msg.FlagInstant = &f
	}
	return msg
}

func OpponentDrawOffer(player string) Message {
	return Message{Type: TypeOpponentDrawOffer, Player: player}
}

// GameOver reports o, naming colors through spec.
func GameOver(spec *board.Spec, o game.Outcome) Message {
	msg := Message{Type: TypeGameOver, Cause: o.Cause.String()}
	switch o.Result {
	case game.Decisive:
		w := spec.ColorName(o.Winner)
		msg.Winner = &w
	case game.Aborted:
		msg.Cause = "aborted"
	}
	return msg
}

func Clocks(spec *board.Spec, clocks []game.Clock) Message {
	out := make([]ClockState, len(clocks))
	for i, c := range clocks {
		out[i] = ClockState{Color: spec.ColorName(board.Color(i)), RemainingNanos: c.Remaining.Nanoseconds(), Timed: c.Timed}
	}
	return Message{Type: TypeClocks, Clocks: out}
}

// Engine side constructors.

func Info(info EngineInfo, supported map[string][]string) Message {
	return Message{Type: TypeEngineInfo, Info: &info, SupportedGames: supported}
}

func MoveMsg(m board.Move) Message {
	raw := RawFrom(m)
	return Message{Type: TypeMove, Move: &raw}
}

func Resign() Message          { return Message{Type: TypeResign} }
func DrawOffer() Message       { return Message{Type: TypeDrawOffer} }
func RejectDrawOffer() Message { return Message{Type: TypeRejectDrawOffer} }
func GetClocks() Message       { return Message{Type: TypeGetClocks} }
func Err(msg string) Message   { return Message{Type: TypeErr, Message: msg} }
