package movegen

import (
	"variantchess/internal/board"
	"variantchess/internal/coord"
)

// IsMoveLegal reports geometric legality: the origin holds a piece of color
// and the destination is one of its candidates. Royal safety is not checked;
// use IsMoveSafe for that.
func (g *Generator) IsMoveLegal(b *board.Board, color board.Color, m board.Move) bool {
	if !b.Grid().Valid(m.Src) || !b.Grid().Valid(m.Dest) {
		return false
	}
	sq := b.Get(m.Src)
	if sq.IsEmpty() || sq.Color != color {
		return false
	}
	return contains(g.Generate(b, m.Src), m.Dest)
}

// Attackers returns every occupied square whose piece could move to target.
// The cost is one generation per piece on the board.
func (g *Generator) Attackers(b *board.Board, target coord.Pos) []coord.Pos {
	return g.AttackersBy(b, target, board.Occupied)
}

// AttackersBy is Attackers restricted to origins matching f.
func (g *Generator) AttackersBy(b *board.Board, target coord.Pos, f board.Filter) []coord.Pos {
	var out []coord.Pos
	for _, origin := range b.Squares(f) {
		if origin == target {
			continue
		}
		sq := b.Get(origin)
		if sq.IsEmpty() {
			continue
		}
		if contains(g.Generate(b, origin), target) {
			out = append(out, origin)
		}
	}
	return out
}

func enemyOf(c board.Color) board.Filter {
	return func(sq board.Square) bool { return !sq.IsEmpty() && sq.Color != c }
}

// InCheck reports whether any royal piece of color is attacked by another color.
func (g *Generator) InCheck(b *board.Board, color board.Color) bool {
	for _, royal := range b.Royals(color) {
		if len(g.AttackersBy(b, royal, enemyOf(color))) > 0 {
			return true
		}
	}
	return false
}

// IsMoveSafe is IsMoveLegal plus the requirement that the mover's royal
// pieces are not attacked once the move is played.
func (g *Generator) IsMoveSafe(b *board.Board, color board.Color, m board.Move) bool {
	if !g.IsMoveLegal(b, color, m) {
		return false
	}
	return g.leavesRoyalSafe(b, color, m)
}

func (g *Generator) leavesRoyalSafe(b *board.Board, color board.Color, m board.Move) bool {
	scratch := *b
	scratch.Apply(m)
	return !g.InCheck(&scratch, color)
}

// LegalMoves returns the candidates of origin that do not leave the mover's
// royal pieces attacked.
func (g *Generator) LegalMoves(b *board.Board, origin coord.Pos) []coord.Pos {
	sq := b.Get(origin)
	if sq.IsEmpty() {
		return nil
	}
	candidates := g.Generate(b, origin)
	out := candidates[:0]
	for _, dest := range candidates {
		if g.leavesRoyalSafe(b, sq.Color, board.Move{Src: origin, Dest: dest}) {
			out = append(out, dest)
		}
	}
	return out
}

// AllLegalMoves returns every safe move of color.
func (g *Generator) AllLegalMoves(b *board.Board, color board.Color) []board.Move {
	var out []board.Move
	for _, origin := range b.Squares(board.OfColor(color)) {
		for _, dest := range g.LegalMoves(b, origin) {
			out = append(out, board.Move{Src: origin, Dest: dest})
		}
	}
	return out
}

// HasLegalMove reports whether color has at least one safe move.
func (g *Generator) HasLegalMove(b *board.Board, color board.Color) bool {
	for _, origin := range b.Squares(board.OfColor(color)) {
		if len(g.LegalMoves(b, origin)) > 0 {
			return true
		}
	}
	return false
}

func contains(list []coord.Pos, p coord.Pos) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
