package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"variantchess/internal/board"
	"variantchess/internal/game"
	"variantchess/internal/protocol"
	"variantchess/internal/variant"
)

func input(t *testing.T, b board.Board, color board.Color) game.Input {
	t.Helper()
	return game.Input{
		Board:      b,
		Color:      color,
		MoveStart:  time.Now(),
		TimeFormat: game.Unlimited(),
		Clocks:     []game.Clock{{}, {}},
		Variant:    variant.Chess,
	}
}

func mv(t *testing.T, b board.Board, s string) board.Move {
	t.Helper()
	m, err := b.ParseMove(s)
	if err != nil {
		t.Fatalf("ParseMove(%q): %v", s, err)
	}
	return m
}

func TestResigner(t *testing.T) {
	_, err := Resigner{}.Decide(context.Background(), input(t, variant.Chess.Default(), 0))
	if !errors.Is(err, game.ErrResign) {
		t.Fatalf("Resigner = %v", err)
	}
}

func TestRandomPlaysLegalMoves(t *testing.T) {
	r := NewRandom(7)
	in := input(t, variant.Chess.Default(), 0)
	for i := 0; i < 20; i++ {
		d, err := r.Decide(context.Background(), in)
		if err != nil {
			t.Fatalf("Decide: %v", err)
		}
		if !variant.Chess.IsMoveSafe(&in.Board, 0, d.Move) {
			t.Fatalf("illegal move %s", in.Board.MoveString(d.Move))
		}
	}
}

func TestRandomResignsWithoutMoves(t *testing.T) {
	v := variant.Chess
	b := v.New()
	g := b.Grid()
	h1, _ := g.Parse("h1")
	a1, _ := g.Parse("a1")
	b2, _ := g.Parse("b2")
	b.Set(h1, board.NewSquare(variant.King, 0))
	b.Set(a1, board.NewSquare(variant.Rook, 1))
	b.Set(b2, board.NewSquare(variant.Rook, 1))

	_, err := NewRandom(1).Decide(context.Background(), input(t, b, 0))
	if !errors.Is(err, game.ErrResign) || !errors.Is(err, game.ErrNoLegalMoves) {
		t.Fatalf("Decide = %v", err)
	}
}

func TestGreedyTakesMostValuable(t *testing.T) {
	v := variant.Chess
	b := v.New()
	set := func(name string, sq board.Square) {
		p, err := b.Grid().Parse(name)
		if err != nil {
			t.Fatalf("parse %s: %v", name, err)
		}
		b.Set(p, sq)
	}
	set("a1", board.NewSquare(variant.King, 0))
	set("h8", board.NewSquare(variant.King, 1))
	set("d4", board.NewSquare(variant.Rook, 0))
	set("d7", board.NewSquare(variant.Queen, 1))
	set("g4", board.NewSquare(variant.Pawn, 1))

	for seed := int64(0); seed < 5; seed++ {
		d, err := NewGreedy(seed).Decide(context.Background(), input(t, b, 0))
		if err != nil {
			t.Fatalf("Decide: %v", err)
		}
		if got := b.MoveString(d.Move); got != "d4d7" {
			t.Fatalf("greedy played %s", got)
		}
	}
}

func TestNewByName(t *testing.T) {
	for _, kind := range []string{"random", "greedy", "resign"} {
		if _, err := New(kind, 1); err != nil {
			t.Fatalf("New(%q): %v", kind, err)
		}
	}
	if _, err := New("oracle", 1); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}

// submitWhenWaiting retries until the seat is listening.
func submitWhenWaiting(t *testing.T, h *Human, m board.Move) error {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := h.Submit(context.Background(), m, false)
		if !errors.Is(err, ErrNotYourTurn) || time.Now().After(deadline) {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHumanRejectsThenAccepts(t *testing.T) {
	h := NewHuman()
	in := input(t, variant.Chess.Default(), 0)
	if err := h.Submit(context.Background(), mv(t, in.Board, "e2e4"), false); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("Submit while idle = %v", err)
	}

	type result struct {
		d   game.Decision
		err error
	}
	done := make(chan result, 1)
	go func() {
		d, err := h.Decide(context.Background(), in)
		done <- result{d, err}
	}()

	if err := submitWhenWaiting(t, h, mv(t, in.Board, "e2e5")); !errors.Is(err, ErrIllegalMove) {
		t.Fatalf("illegal submit = %v", err)
	}
	if err := submitWhenWaiting(t, h, mv(t, in.Board, "e2e4")); err != nil {
		t.Fatalf("legal submit = %v", err)
	}
	r := <-done
	if r.err != nil || in.Board.MoveString(r.d.Move) != "e2e4" {
		t.Fatalf("Decide = %+v", r)
	}
}

func TestHumanHonoursContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := NewHuman().Decide(ctx, input(t, variant.Chess.Default(), 0))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Decide = %v", err)
	}
}

func TestHumanResign(t *testing.T) {
	h := NewHuman()
	done := make(chan error, 1)
	go func() {
		_, err := h.Decide(context.Background(), input(t, variant.Chess.Default(), 1))
		done <- err
	}()
	deadline := time.Now().Add(2 * time.Second)
	for {
		err := h.Resign(context.Background())
		if err == nil {
			break
		}
		if !errors.Is(err, ErrNotYourTurn) || time.Now().After(deadline) {
			t.Fatalf("Resign = %v", err)
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := <-done; !errors.Is(err, game.ErrResign) {
		t.Fatalf("Decide = %v", err)
	}
}

// fakeEngine answers the handshake and then runs script on the game socket.
func fakeEngine(t *testing.T, script func(c *protocol.Conn)) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := protocol.Upgrade(w, r)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer c.Close()
		ctx := context.Background()
		if _, err := c.Expect(ctx, protocol.TypeEngineInit); err != nil {
			t.Errorf("engine: %v", err)
			return
		}
		_ = c.Send(protocol.Info(protocol.EngineInfo{Name: "fake", Version: "0.1"}, map[string][]string{"chess": nil}))
		script(c)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestRemoteMove(t *testing.T) {
	start := variant.Chess.Default()
	e2e4 := mv(t, start, "e2e4")
	e7e5 := mv(t, start, "e7e5")

	url := fakeEngine(t, func(c *protocol.Conn) {
		ctx := context.Background()
		gs, err := c.Expect(ctx, protocol.TypeGameStart)
		if err != nil || gs.PlayingAs != "black" || gs.Variant != "chess" || gs.GameID != "g1" {
			t.Errorf("GameStart = %+v, %v", gs, err)
			return
		}
		om, err := c.Expect(ctx, protocol.TypeOpponentMove)
		if err != nil || om.Move == nil || om.Move.Move() != e2e4 || om.Opponent != "white" {
			t.Errorf("OpponentMove = %+v, %v", om, err)
			return
		}
		if _, err := c.Expect(ctx, protocol.TypeYourMove); err != nil {
			t.Errorf("YourMove: %v", err)
			return
		}
		_ = c.Send(protocol.GetClocks())
		if cl, err := c.Expect(ctx, protocol.TypeClocks); err != nil || len(cl.Clocks) != 2 {
			t.Errorf("Clocks = %+v, %v", cl, err)
			return
		}
		_ = c.Send(protocol.DrawOffer())
		_ = c.Send(protocol.MoveMsg(e7e5))
		_, _ = c.Receive(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := DialRemote(ctx, url, "g1")
	if err != nil {
		t.Fatalf("DialRemote: %v", err)
	}
	if r.Info().Name != "fake" {
		t.Fatalf("info = %+v", r.Info())
	}

	b := start
	b.Apply(e2e4)
	in := input(t, b, 1)
	in.History = []game.Ply{{Color: 0, Move: e2e4}}
	d, err := r.Decide(ctx, in)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if d.Move != e7e5 || !d.OfferDraw {
		t.Fatalf("decision = %+v", d)
	}
	_ = r.GameOver(variant.Chess, game.Outcome{Result: game.Draw, Cause: game.DrawOffer})
}

func TestRemoteResignAndError(t *testing.T) {
	for _, tc := range []struct {
		reply protocol.Message
		check func(error) bool
	}{
		{protocol.Resign(), func(err error) bool { return errors.Is(err, game.ErrResign) }},
		{protocol.Err("out of memory"), func(err error) bool { return err != nil && strings.Contains(err.Error(), "out of memory") }},
	} {
		reply := tc.reply
		url := fakeEngine(t, func(c *protocol.Conn) {
			ctx := context.Background()
			for {
				m, err := c.Receive(ctx)
				if err != nil {
					return
				}
				if m.Type == protocol.TypeYourMove {
					_ = c.Send(reply)
				}
			}
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		r, err := DialRemote(ctx, url, "g2")
		if err != nil {
			cancel()
			t.Fatalf("DialRemote: %v", err)
		}
		_, err = r.Decide(ctx, input(t, variant.Chess.Default(), 0))
		if !tc.check(err) {
			t.Fatalf("%s reply gave %v", reply.Type, err)
		}
		_ = r.GameOver(variant.Chess, game.Outcome{Result: game.Aborted})
		cancel()
	}
}

func TestRemoteCloseAfterGameOverIsNoop(t *testing.T) {
	seen := make(chan protocol.Type, 8)
	url := fakeEngine(t, func(c *protocol.Conn) {
		defer close(seen)
		for {
			m, err := c.Receive(context.Background())
			if err != nil {
				return
			}
			seen <- m.Type
		}
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r, err := DialRemote(ctx, url, "g3")
	if err != nil {
		t.Fatalf("DialRemote: %v", err)
	}
	if err := r.GameOver(variant.Chess, game.Outcome{Result: game.Draw, Cause: game.Stalemate}); err != nil {
		t.Fatalf("GameOver: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("Close after GameOver: %v", err)
	}
	var got []protocol.Type
	for typ := range seen {
		got = append(got, typ)
	}
	if len(got) != 2 || got[0] != protocol.TypeGameOver || got[1] != protocol.TypeGameEnd {
		t.Fatalf("engine saw %v", got)
	}
}
