package source

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"variantchess/internal/game"
	"variantchess/internal/protocol"
	"variantchess/internal/variant"
)

// Remote asks an engine over the moderator protocol.
type Remote struct {
	conn    *protocol.Conn
	gameID  string
	info    protocol.EngineInfo
	started bool
	sent    int // plies already forwarded
	offer   bool

	closeMu sync.Mutex
	closed  bool
}

// DialRemote connects to an engine and performs the handshake.
func DialRemote(ctx context.Context, url, gameID string) (*Remote, error) {
	conn, err := protocol.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	info, err := conn.Handshake(ctx)
	if err != nil {
		conn.Close()
		return nil, err
	}
	r := NewRemote(conn, gameID)
	r.info = info
	return r, nil
}

// NewRemote wraps an already initialised connection.
func NewRemote(conn *protocol.Conn, gameID string) *Remote {
	return &Remote{conn: conn, gameID: gameID}
}

// Info returns what the engine reported in the handshake.
func (r *Remote) Info() protocol.EngineInfo { return r.info }

// Decide forwards the opponent plies since the last call and waits for the
// engine's reply, answering clock queries meanwhile.
func (r *Remote) Decide(ctx context.Context, in game.Input) (game.Decision, error) {
	spec := in.Variant.Spec
	if !r.started {
		tf := protocol.FromTimeFormat(in.TimeFormat)
		start := protocol.Message{
			Type:       protocol.TypeGameStart,
			Variant:    in.Variant.Name(),
			Board:      strings.Join(in.Board.Rows(), "/"),
			GameID:     r.gameID,
			PlayingAs:  spec.ColorName(in.Color),
			TimeFormat: &tf,
		}
		if err := r.conn.Send(start); err != nil {
			return game.Decision{}, err
		}
		r.started = true
	}
	for _, p := range in.History[r.sent:] {
		if p.Color == in.Color {
			continue
		}
		who := spec.ColorName(p.Color)
		if err := r.conn.Send(protocol.OpponentMove(p.Move, who)); err != nil {
			return game.Decision{}, err
		}
		if p.OfferDraw {
			if err := r.conn.Send(protocol.OpponentDrawOffer(who)); err != nil {
				return game.Decision{}, err
			}
		}
	}
	r.sent = len(in.History)
	if err := r.conn.Send(protocol.YourMove(in.FlagInstant)); err != nil {
		return game.Decision{}, err
	}

	r.offer = false
	for {
		m, err := r.conn.Receive(ctx)
		if err != nil {
			return game.Decision{}, err
		}
		switch m.Type {
		case protocol.TypeMove:
			if m.Move == nil {
				return game.Decision{}, fmt.Errorf("engine %s: Move without move", r.info.Name)
			}
			return game.Decision{Move: m.Move.Move(), OfferDraw: r.offer}, nil
		case protocol.TypeDrawOffer:
			r.offer = true
		case protocol.TypeRejectDrawOffer:
		case protocol.TypeGetClocks:
			if err := r.conn.Send(protocol.Clocks(spec, in.Clocks)); err != nil {
				return game.Decision{}, err
			}
		case protocol.TypeResign:
			return game.Decision{}, game.ErrResign
		case protocol.TypeErr:
			return game.Decision{}, fmt.Errorf("engine %s: %s", r.info.Name, m.Message)
		default:
			msg := fmt.Sprintf("unexpected %s during a move", m.Type)
			if err := r.conn.Send(protocol.InvalidRequest(msg, string(m.Type), r.gameID)); err != nil {
				return game.Decision{}, err
			}
		}
	}
}

// GameOver tells the engine how the game ended and closes the connection.
func (r *Remote) GameOver(v *variant.Variant, o game.Outcome) error {
	return r.finish(protocol.GameOver(v.Spec, o), protocol.GameEnd(r.gameID))
}

// Close tells the engine the game was dropped without a result and shuts
// the connection. It is a no-op after GameOver or a previous Close.
func (r *Remote) Close() error {
	return r.finish(protocol.GameEnd(r.gameID), protocol.EngineShutdown())
}

func (r *Remote) finish(msgs ...protocol.Message) error {
	r.closeMu.Lock()
	defer r.closeMu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	defer r.conn.Close()
	for _, m := range msgs {
		if err := r.conn.Send(m); err != nil {
			return err
		}
	}
	return nil
}
