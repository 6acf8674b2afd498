// Package variant bundles board kinds with their rule tables and starting positions.
package variant

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"variantchess/internal/board"
	"variantchess/internal/movegen"
)

// ErrUnknown is returned by Lookup for unregistered names.
var ErrUnknown = errors.New("unknown variant")

// Variant is a playable board kind: geometry, pieces, movement rules and setup.
type Variant struct {
	Spec *board.Spec
	*movegen.Generator
	setup func(b *board.Board)
}

func newVariant(spec *board.Spec, rules movegen.RuleSet, setup func(*board.Board)) *Variant {
	return &Variant{Spec: spec, Generator: movegen.NewGenerator(spec, rules), setup: setup}
}

// Name returns the registry name.
func (v *Variant) Name() string { return v.Spec.Name }

// SideLen returns the edge length of the board.
func (v *Variant) SideLen() int { return v.Spec.Grid.Side() }

// Players returns the number of colors.
func (v *Variant) Players() int { return len(v.Spec.Colors) }

// New returns an empty board.
func (v *Variant) New() board.Board { return board.New(v.Spec) }

// Default returns the starting position.
func (v *Variant) Default() board.Board {
	b := v.New()
	if v.setup != nil {
		v.setup(&b)
	}
	return b
}

// Piece returns the type registered under name (case-insensitive).
func (v *Variant) Piece(name string) (board.PieceType, bool) {
	t, ok := v.Spec.PieceByKey[strings.ToLower(name)]
	return t, ok
}

var registry = map[string]*Variant{}

func register(v *Variant) *Variant {
	if _, dup := registry[v.Name()]; dup {
		panic(fmt.Sprintf("variant: %s registered twice", v.Name()))
	}
	registry[v.Name()] = v
	return v
}

// Lookup returns the registered variant with the given name.
func Lookup(name string) (*Variant, error) {
	v, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	return v, nil
}

// Names lists the registered variants in alphabetical order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// mirror places the same rank layout for color 0 on rank r and for color 1 on the opposite rank.
func mirror(b *board.Board, rank int, layout []board.PieceType) {
	g := b.Grid()
	for file, t := range layout {
		b.Set(g.ToStorage(file, rank), board.NewSquare(t, 0))
		b.Set(g.ToStorage(file, g.Side()-1-rank), board.NewSquare(t, 1))
	}
}

func repeat(t board.PieceType, n int) []board.PieceType {
	out := make([]board.PieceType, n)
	for i := range out {
		out[i] = t
	}
	return out
}
