// Package board holds the square table shared by every board kind.
package board

import (
	"fmt"
	"strings"

	"variantchess/internal/coord"
)

// MaxSquares is the capacity of a board; it covers the 10x10 kinds.
const MaxSquares = 100

// Color identifies a side. Values are sequential from 0 in turn order.
type Color uint8

// PieceType indexes into a Spec's piece table.
type PieceType uint8

// PieceInfo describes one piece kind of a board kind.
type PieceInfo struct {
	Name   string
	Symbol byte // lower case; upper case is used for color 0 in diagrams
	Value  int
	Royal  bool
}

// Spec is the immutable description of a board kind.
type Spec struct {
	Name       string
	Grid       coord.Grid
	Colors     []string
	Forward    []int // rank direction each color advances in
	Pieces     []PieceInfo
	PieceByKey map[string]PieceType
}

// NewSpec validates and indexes a board kind description.
func NewSpec(name string, side int, colors []string, forward []int, pieces []PieceInfo) *Spec {
	grid := coord.NewGrid(side)
	if grid.Len() > MaxSquares {
		panic(fmt.Sprintf("board: %s needs %d squares, capacity is %d", name, grid.Len(), MaxSquares))
	}
	if len(colors) != len(forward) {
		panic("board: colors and forward directions differ in length")
	}
	s := &Spec{
		Name:       name,
		Grid:       grid,
		Colors:     colors,
		Forward:    forward,
		Pieces:     pieces,
		PieceByKey: make(map[string]PieceType, len(pieces)),
	}
	for i, p := range pieces {
		s.PieceByKey[strings.ToLower(p.Name)] = PieceType(i)
	}
	return s
}

// ColorName returns the display name of c.
func (s *Spec) ColorName(c Color) string {
	if int(c) < len(s.Colors) {
		return s.Colors[c]
	}
	return fmt.Sprintf("color%d", c)
}

// PieceName returns the display name of t.
func (s *Spec) PieceName(t PieceType) string {
	if int(t) < len(s.Pieces) {
		return s.Pieces[t].Name
	}
	return fmt.Sprintf("piece%d", t)
}

// RelativeRank returns rank as seen from c's side of the board.
func (s *Spec) RelativeRank(c Color, rank int) int {
	if s.Forward[c] < 0 {
		return s.Grid.Side() - 1 - rank
	}
	return rank
}

// Square holds at most one piece. The zero value is empty.
type Square struct {
	occupied bool
	Type     PieceType
	Color    Color
}

// Empty returns an empty square.
func Empty() Square { return Square{} }

// NewSquare returns a square holding a piece of the given type and color.
func NewSquare(t PieceType, c Color) Square {
	return Square{occupied: true, Type: t, Color: c}
}

// IsEmpty reports whether the square holds no piece.
func (s Square) IsEmpty() bool { return !s.occupied }

// Move is a source and destination pair.
type Move struct {
	Src  coord.Pos
	Dest coord.Pos
}

// Board is a value: assigning it copies every square.
type Board struct {
	spec    *Spec
	squares [MaxSquares]Square
}

// New returns an empty board of the given kind.
func New(spec *Spec) Board {
	return Board{spec: spec}
}

// Spec returns the board kind.
func (b *Board) Spec() *Spec { return b.spec }

// Grid returns the coordinate system of the board.
func (b *Board) Grid() coord.Grid { return b.spec.Grid }

func (b *Board) check(p coord.Pos) {
	if !b.spec.Grid.Valid(p) {
		panic(fmt.Sprintf("board: storage value %d outside %s board", p, b.spec.Name))
	}
}

// Get returns the square at p.
func (b *Board) Get(p coord.Pos) Square {
	b.check(p)
	return b.squares[p]
}

// Set stores sq at p and returns the previous occupant.
func (b *Board) Set(p coord.Pos, sq Square) Square {
	b.check(p)
	prev := b.squares[p]
	b.squares[p] = sq
	return prev
}

// Swap exchanges the square at p with *sq.
func (b *Board) Swap(p coord.Pos, sq *Square) {
	b.check(p)
	b.squares[p], *sq = *sq, b.squares[p]
}

// Clear empties p and returns what was there.
func (b *Board) Clear(p coord.Pos) Square {
	return b.Set(p, Empty())
}

// Apply moves the piece on m.Src to m.Dest without any legality check and
// returns the captured occupant of m.Dest.
func (b *Board) Apply(m Move) Square {
	mover := b.Clear(m.Src)
	return b.Set(m.Dest, mover)
}

// Filter selects squares during iteration.
type Filter func(Square) bool

// All selects every square.
func All(Square) bool { return true }

// Occupied selects squares holding any piece.
func Occupied(sq Square) bool { return !sq.IsEmpty() }

// OfColor selects squares holding a piece of color c.
func OfColor(c Color) Filter {
	return func(sq Square) bool { return !sq.IsEmpty() && sq.Color == c }
}

// Squares returns the positions matching f in storage order.
func (b *Board) Squares(f Filter) []coord.Pos {
	n := b.spec.Grid.Len()
	out := make([]coord.Pos, 0, n)
	for i := 0; i < n; i++ {
		if f(b.squares[i]) {
			out = append(out, coord.Pos(i))
		}
	}
	return out
}

// Count returns how many squares match f.
func (b *Board) Count(f Filter) int {
	n := 0
	for i := 0; i < b.spec.Grid.Len(); i++ {
		if f(b.squares[i]) {
			n++
		}
	}
	return n
}

// Royals returns the squares holding royal pieces of color c.
func (b *Board) Royals(c Color) []coord.Pos {
	return b.Squares(func(sq Square) bool {
		return !sq.IsEmpty() && sq.Color == c && b.spec.Pieces[sq.Type].Royal
	})
}

// Symbol renders a square as a single character: '.' when empty, upper case for color 0.
func (b *Board) Symbol(sq Square) byte {
	if sq.IsEmpty() {
		return '.'
	}
	sym := b.spec.Pieces[sq.Type].Symbol
	if sq.Color == 0 && sym >= 'a' && sym <= 'z' {
		sym -= 'a' - 'A'
	}
	return sym
}

// Rows returns the board as text, highest rank first.
func (b *Board) Rows() []string {
	side := b.spec.Grid.Side()
	rows := make([]string, 0, side)
	for rank := side - 1; rank >= 0; rank-- {
		row := make([]byte, side)
		for file := 0; file < side; file++ {
			row[file] = b.Symbol(b.squares[b.spec.Grid.ToStorage(file, rank)])
		}
		rows = append(rows, string(row))
	}
	return rows
}

func (b *Board) String() string {
	return strings.Join(b.Rows(), "\n")
}

// MoveString renders m with square names of this board, e.g. "e2e4".
func (b *Board) MoveString(m Move) string {
	return b.spec.Grid.Name(m.Src) + b.spec.Grid.Name(m.Dest)
}

// ParseMove parses the output of MoveString.
func (b *Board) ParseMove(s string) (Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	// second square starts at the second letter
	for i := 1; i < len(s); i++ {
		if s[i] >= 'a' && s[i] <= 'z' {
			src, err := b.spec.Grid.Parse(s[:i])
			if err != nil {
				return Move{}, err
			}
			dest, err := b.spec.Grid.Parse(s[i:])
			if err != nil {
				return Move{}, err
			}
			return Move{Src: src, Dest: dest}, nil
		}
	}
	return Move{}, fmt.Errorf("invalid move %q", s)
}
