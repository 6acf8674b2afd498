// Package coord packs (file, rank) pairs into single storage values.
package coord

import (
	"fmt"
	"strconv"
)

// Pos is the storage value of a square. Packing is row-major: rank*side + file.
type Pos uint8

// MaxSide is the largest supported edge length.
const MaxSide = 15

// Grid describes a square board of a given edge length.
type Grid struct {
	side int
}

// NewGrid returns a grid with the given edge length. It panics on sizes that cannot be packed.
func NewGrid(side int) Grid {
	if side < 1 || side > MaxSide {
		panic(fmt.Sprintf("coord: unsupported side length %d", side))
	}
	return Grid{side: side}
}

// Side returns the edge length.
func (g Grid) Side() int { return g.side }

// Len returns the number of squares.
func (g Grid) Len() int { return g.side * g.side }

// Valid reports whether p addresses a square of this grid.
func (g Grid) Valid(p Pos) bool { return int(p) < g.Len() }

// ToStorage packs a file and rank. Out of range coordinates are a programmer error.
func (g Grid) ToStorage(file, rank int) Pos {
	if !g.inside(file, rank) {
		panic(fmt.Sprintf("coord: (%d,%d) outside %dx%d grid", file, rank, g.side, g.side))
	}
	return Pos(rank*g.side + file)
}

// FromStorage unpacks a storage value into file and rank.
func (g Grid) FromStorage(p Pos) (file, rank int) {
	if !g.Valid(p) {
		panic(fmt.Sprintf("coord: storage value %d outside %dx%d grid", p, g.side, g.side))
	}
	return int(p) % g.side, int(p) / g.side
}

// Offset moves p by df files and dr ranks. ok is false when the destination is off the board.
func (g Grid) Offset(p Pos, df, dr int) (dest Pos, ok bool) {
	file, rank := g.FromStorage(p)
	file += df
	rank += dr
	if !g.inside(file, rank) {
		return 0, false
	}
	return Pos(rank*g.side + file), true
}

func (g Grid) inside(file, rank int) bool {
	return file >= 0 && file < g.side && rank >= 0 && rank < g.side
}

// Name renders p as file letter plus 1-based rank, e.g. "e4" or "j10".
func (g Grid) Name(p Pos) string {
	if !g.Valid(p) {
		return "-"
	}
	file, rank := g.FromStorage(p)
	return string(rune('a'+file)) + strconv.Itoa(rank+1)
}

// Parse is the inverse of Name.
func (g Grid) Parse(s string) (Pos, error) {
	if len(s) < 2 {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	file := int(s[0] - 'a')
	rank, err := strconv.Atoi(s[1:])
	if err != nil || !g.inside(file, rank-1) {
		return 0, fmt.Errorf("invalid square %q", s)
	}
	return g.ToStorage(file, rank-1), nil
}
