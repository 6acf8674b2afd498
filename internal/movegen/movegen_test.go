package movegen

import (
	"sort"
	"testing"

	"variantchess/internal/board"
	"variantchess/internal/coord"
)

const (
	king board.PieceType = iota
	rook
	knight
	pawn
	wall // rook-like, immune to pawns and rooks
)

func testKind() (*board.Spec, *Generator) {
	spec := board.NewSpec("test", 8, []string{"white", "black"}, []int{1, -1}, []board.PieceInfo{
		{Name: "King", Symbol: 'k', Royal: true},
		{Name: "Rook", Symbol: 'r'},
		{Name: "Knight", Symbol: 'n'},
		{Name: "Pawn", Symbol: 'p'},
		{Name: "Wall", Symbol: 'w'},
	})
	rules := RuleSet{
		king:   {Steps: Steps(Concat(Orthogonal, Diagonal), MoveOrCapture)},
		rook:   {Rays: Rays(Orthogonal, 0, MoveOrCapture)},
		knight: {Steps: Leaper(1, 2, MoveOrCapture)},
		pawn: {
			Rays:     []Ray{{Delta: Delta{0, 1}, Range: 1, HomeRange: 2, Mode: MoveOnly}},
			Steps:    Steps([]Delta{{-1, 1}, {1, 1}}, CaptureOnly),
			HomeRank: 1,
		},
		wall: {Rays: Rays(Orthogonal, 0, MoveOrCapture), ImmuneTo: []board.PieceType{pawn, rook}},
	}
	return spec, NewGenerator(spec, rules)
}

func sq(g coord.Grid, name string) coord.Pos {
	p, err := g.Parse(name)
	if err != nil {
		panic(err)
	}
	return p
}

func names(g coord.Grid, ps []coord.Pos) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, g.Name(p))
	}
	sort.Strings(out)
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRookRayStopsAtFirstEnemy(t *testing.T) {
	spec, gen := testKind()
	b := board.New(spec)
	grid := spec.Grid
	b.Set(0, board.NewSquare(rook, 0))
	b.Set(grid.ToStorage(0, 3), board.NewSquare(pawn, 1))

	var file0 []coord.Pos
	for _, p := range gen.Generate(&b, 0) {
		if f, _ := grid.FromStorage(p); f == 0 {
			file0 = append(file0, p)
		}
	}
	if got := names(grid, file0); !equal(got, []string{"a2", "a3", "a4"}) {
		t.Fatalf("rook ray along the a-file = %v", got)
	}
}

func TestRayRejectsOwnPieceAndImmuneTarget(t *testing.T) {
	spec, gen := testKind()
	b := board.New(spec)
	grid := spec.Grid
	b.Set(sq(grid, "d4"), board.NewSquare(rook, 0))
	b.Set(sq(grid, "d6"), board.NewSquare(pawn, 0))   // own
	b.Set(sq(grid, "f4"), board.NewSquare(wall, 1))   // immune to rooks
	b.Set(sq(grid, "d2"), board.NewSquare(knight, 1)) // capturable

	got := names(grid, gen.Generate(&b, sq(grid, "d4")))
	want := []string{"a4", "b4", "c4", "d2", "d3", "d5", "e4"}
	if !equal(got, want) {
		t.Fatalf("candidates = %v want %v", got, want)
	}
}

func TestRayNeverPassesFirstOccupant(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	for _, blocker := range []board.Square{board.NewSquare(knight, 0), board.NewSquare(knight, 1), board.NewSquare(wall, 1)} {
		b := board.New(spec)
		b.Set(sq(grid, "a1"), board.NewSquare(rook, 0))
		b.Set(sq(grid, "a5"), blocker)
		got := gen.Generate(&b, sq(grid, "a1"))
		blockerIn := false
		for _, p := range got {
			f, r := grid.FromStorage(p)
			if f == 0 && r > 4 {
				t.Fatalf("candidate %s lies beyond the blocker", grid.Name(p))
			}
			if p == sq(grid, "a5") {
				blockerIn = true
			}
		}
		want := gen.CanCapture(board.NewSquare(rook, 0), blocker)
		if blockerIn != want {
			t.Fatalf("blocker %+v included=%v want %v", blocker, blockerIn, want)
		}
	}
}

func TestRangeLimitedRayAndHomeRange(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	b := board.New(spec)
	b.Set(sq(grid, "e2"), board.NewSquare(pawn, 0))
	b.Set(sq(grid, "e7"), board.NewSquare(pawn, 1))
	b.Set(sq(grid, "c3"), board.NewSquare(pawn, 0))

	if got := names(grid, gen.Generate(&b, sq(grid, "e2"))); !equal(got, []string{"e3", "e4"}) {
		t.Fatalf("white home pawn = %v", got)
	}
	if got := names(grid, gen.Generate(&b, sq(grid, "e7"))); !equal(got, []string{"e5", "e6"}) {
		t.Fatalf("black home pawn = %v", got)
	}
	if got := names(grid, gen.Generate(&b, sq(grid, "c3"))); !equal(got, []string{"c4"}) {
		t.Fatalf("advanced pawn = %v", got)
	}

	b.Set(sq(grid, "e3"), board.NewSquare(knight, 1))
	if got := gen.Generate(&b, sq(grid, "e2")); len(got) != 0 {
		t.Fatalf("blocked pawn should not move, got %v", names(grid, got))
	}
}

func TestStepCapturePolicy(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	b := board.New(spec)
	b.Set(sq(grid, "d4"), board.NewSquare(pawn, 0))
	b.Set(sq(grid, "c5"), board.NewSquare(knight, 1))
	b.Set(sq(grid, "e5"), board.NewSquare(wall, 1)) // pawns cannot take walls

	if got := names(grid, gen.Generate(&b, sq(grid, "d4"))); !equal(got, []string{"c5", "d5"}) {
		t.Fatalf("pawn candidates = %v", got)
	}
}

func TestKnightOffBoardExcluded(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	b := board.New(spec)
	b.Set(sq(grid, "a1"), board.NewSquare(knight, 0))
	if got := names(grid, gen.Generate(&b, sq(grid, "a1"))); !equal(got, []string{"b3", "c2"}) {
		t.Fatalf("corner knight = %v", got)
	}
	if n := len(Leaper(1, 2, MoveOrCapture)); n != 8 {
		t.Fatalf("knight leaper has %d offsets", n)
	}
	if n := len(Leaper(0, 2, MoveOrCapture)); n != 4 {
		t.Fatalf("orthogonal two-leaper has %d offsets", n)
	}
}

func TestIsMoveLegalConsistency(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	b := board.New(spec)
	b.Set(sq(grid, "d4"), board.NewSquare(rook, 0))
	b.Set(sq(grid, "g7"), board.NewSquare(knight, 1))
	b.Set(sq(grid, "d7"), board.NewSquare(pawn, 1))

	for src := 0; src < grid.Len(); src++ {
		for dest := 0; dest < grid.Len(); dest++ {
			for _, color := range []board.Color{0, 1} {
				m := board.Move{Src: coord.Pos(src), Dest: coord.Pos(dest)}
				s := b.Get(m.Src)
				want := !s.IsEmpty() && s.Color == color && contains(gen.Generate(&b, m.Src), m.Dest)
				if got := gen.IsMoveLegal(&b, color, m); got != want {
					t.Fatalf("IsMoveLegal(%d, %s) = %v want %v", color, b.MoveString(m), got, want)
				}
			}
		}
	}
}

func TestAttackers(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	b := board.New(spec)
	target := sq(grid, "e4")
	b.Set(target, board.NewSquare(king, 0))
	b.Set(sq(grid, "e8"), board.NewSquare(rook, 1))
	b.Set(sq(grid, "f6"), board.NewSquare(knight, 1))
	b.Set(sq(grid, "a4"), board.NewSquare(rook, 1))
	b.Set(sq(grid, "c4"), board.NewSquare(knight, 0)) // shields the a4 rook
	b.Set(sq(grid, "d3"), board.NewSquare(pawn, 1))   // captures towards rank 1, away from e4

	got := names(grid, gen.Attackers(&b, target))
	if !equal(got, []string{"e8", "f6"}) {
		t.Fatalf("attackers = %v", got)
	}
	if !gen.InCheck(&b, 0) {
		t.Fatalf("white king should be in check")
	}
}

func TestLegalMovesFiltersPinnedPiece(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	b := board.New(spec)
	b.Set(sq(grid, "e1"), board.NewSquare(king, 0))
	b.Set(sq(grid, "e2"), board.NewSquare(rook, 0))
	b.Set(sq(grid, "e8"), board.NewSquare(rook, 1))

	got := names(grid, gen.LegalMoves(&b, sq(grid, "e2")))
	if !equal(got, []string{"e3", "e4", "e5", "e6", "e7", "e8"}) {
		t.Fatalf("pinned rook legal moves = %v", got)
	}
	sideways := board.Move{Src: sq(grid, "e2"), Dest: sq(grid, "a2")}
	if !gen.IsMoveLegal(&b, 0, sideways) {
		t.Fatalf("sideways move is geometrically legal")
	}
	if gen.IsMoveSafe(&b, 0, sideways) {
		t.Fatalf("sideways move exposes the king")
	}
}

func TestCheckmateHasNoLegalMove(t *testing.T) {
	spec, gen := testKind()
	grid := spec.Grid
	b := board.New(spec)
	b.Set(sq(grid, "h1"), board.NewSquare(king, 0))
	b.Set(sq(grid, "a1"), board.NewSquare(rook, 1))
	b.Set(sq(grid, "b2"), board.NewSquare(rook, 1))

	if !gen.InCheck(&b, 0) {
		t.Fatalf("expected check")
	}
	if gen.HasLegalMove(&b, 0) {
		t.Fatalf("expected no legal move, got %v", gen.AllLegalMoves(&b, 0))
	}
	if !gen.HasLegalMove(&b, 1) {
		t.Fatalf("black should have moves")
	}
}

func TestVerdictString(t *testing.T) {
	if Continue.String() != "continue" || AcceptStop.String() != "accept-stop" || RejectStop.String() != "reject-stop" {
		t.Fatalf("unexpected verdict names")
	}
}
