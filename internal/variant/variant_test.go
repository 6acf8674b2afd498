package variant

import (
	"errors"
	"testing"

	"github.com/corentings/chess/v2"

	"variantchess/internal/board"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

func TestLookup(t *testing.T) {
	v, err := Lookup("contrasting")
	if err != nil || v != Contrasting {
		t.Fatalf("Lookup(contrasting) = %v, %v", v, err)
	}
	if _, err := Lookup("shogi"); !errors.Is(err, ErrUnknown) {
		t.Fatalf("expected ErrUnknown, got %v", err)
	}
	names := Names()
	if len(names) != 2 || names[0] != "chess" || names[1] != "contrasting" {
		t.Fatalf("Names() = %v", names)
	}
	if tp, ok := Contrasting.Piece("RODENT"); !ok || tp != Rodent {
		t.Fatalf("Piece(RODENT) = %v, %v", tp, ok)
	}
}

func TestRodentSingleStep(t *testing.T) {
	g := Contrasting.Spec.Grid
	e2, _ := g.Parse("e2")
	e3, _ := g.Parse("e3")
	b := Contrasting.New()
	b.Set(e2, board.NewSquare(Rodent, 0))

	got := Contrasting.Generate(&b, e2)
	if len(got) != 1 || got[0] != e3 {
		t.Fatalf("rodent candidates = %v", got)
	}
	for _, c := range []board.Color{0, 1} {
		b.Set(e3, board.NewSquare(Horse, c))
		if got := Contrasting.Generate(&b, e2); len(got) != 0 {
			t.Fatalf("blocked by color %d, candidates = %v", c, got)
		}
	}
}

func TestElephantImmuneToRodent(t *testing.T) {
	g := Contrasting.Spec.Grid
	e5, _ := g.Parse("e5")
	b := Contrasting.New()
	b.Set(e5, board.NewSquare(Rodent, 0))
	f6, _ := g.Parse("f6")
	d6, _ := g.Parse("d6")
	b.Set(f6, board.NewSquare(Elephant, 1))
	b.Set(d6, board.NewSquare(Horse, 1))

	if Contrasting.IsMoveLegal(&b, 0, board.Move{Src: e5, Dest: f6}) {
		t.Fatalf("rodent must not capture an elephant")
	}
	if !Contrasting.IsMoveLegal(&b, 0, board.Move{Src: e5, Dest: d6}) {
		t.Fatalf("rodent should capture the horse")
	}
}

func TestContrastingDefault(t *testing.T) {
	b := Contrasting.Default()
	for _, c := range []board.Color{0, 1} {
		if n := b.Count(board.OfColor(c)); n != 20 {
			t.Fatalf("color %d has %d pieces", c, n)
		}
		if r := b.Royals(c); len(r) != 1 {
			t.Fatalf("color %d has %d royals", c, len(r))
		}
		if !Contrasting.HasLegalMove(&b, c) {
			t.Fatalf("color %d has no move in the starting position", c)
		}
	}
	rows := b.Rows()
	if rows[0] != "mhbekdebhm" || rows[9] != "MHBEKDEBHM" {
		t.Fatalf("back ranks = %q / %q", rows[0], rows[9])
	}
}

func TestChessDefaultMatchesFEN(t *testing.T) {
	want := Chess.Default()
	got, turn, err := FromFEN(startFEN)
	if err != nil {
		t.Fatalf("FromFEN: %v", err)
	}
	if turn != 0 || got.String() != want.String() {
		t.Fatalf("FromFEN start = %v (turn %d)", got.String(), turn)
	}
	fen, err := ToFEN(&want, 0)
	if err != nil || fen != startFEN {
		t.Fatalf("ToFEN = %q, %v", fen, err)
	}
	c := Contrasting.Default()
	if _, err := ToFEN(&c, 0); !errors.Is(err, ErrNotChess) {
		t.Fatalf("expected ErrNotChess, got %v", err)
	}
}

// Positions without castling, en passant or promotion must agree with the chess library.
func TestLegalMoveCountMatchesLibrary(t *testing.T) {
	fens := []string{
		startFEN,
		"r3k3/8/8/3q4/8/2N5/4P3/4K2R w - - 0 1",
		"4k3/8/3p4/8/2B5/8/8/4K3 b - - 0 1",
		"4k3/4r3/8/8/8/8/4B3/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		b, turn, err := FromFEN(fen)
		if err != nil {
			t.Fatalf("FromFEN(%q): %v", fen, err)
		}
		opt, err := chess.FEN(fen)
		if err != nil {
			t.Fatalf("chess.FEN(%q): %v", fen, err)
		}
		want := len(chess.NewGame(opt).ValidMoves())
		if got := len(Chess.AllLegalMoves(&b, turn)); got != want {
			t.Fatalf("%s: %d legal moves, library says %d", fen, got, want)
		}
	}
}
