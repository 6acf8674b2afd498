package movegen

import (
	"variantchess/internal/board"
	"variantchess/internal/coord"
)

// Generator enumerates candidate moves for a board kind.
type Generator struct {
	rules  RuleSet
	immune [][]bool // immune[target][attacker]
}

// NewGenerator indexes a rule set. It panics when rules and spec disagree on the piece count.
func NewGenerator(spec *board.Spec, rules RuleSet) *Generator {
	if len(rules) != len(spec.Pieces) {
		panic("movegen: " + spec.Name + " has a rule count different from its piece count")
	}
	g := &Generator{rules: rules, immune: make([][]bool, len(rules))}
	for target, r := range rules {
		g.immune[target] = make([]bool, len(rules))
		for _, attacker := range r.ImmuneTo {
			g.immune[target][attacker] = true
		}
	}
	return g
}

// Rule returns the rule of t.
func (g *Generator) Rule(t board.PieceType) Rule { return g.rules[t] }

// CanCapture reports whether mover may take the occupant target.
func (g *Generator) CanCapture(mover, target board.Square) bool {
	if mover.IsEmpty() || target.IsEmpty() || mover.Color == target.Color {
		return false
	}
	return !g.immune[target.Type][mover.Type]
}

// Generate returns every geometrically reachable destination of the piece on origin.
// Whether the move exposes the mover's royal piece is not considered here.
func (g *Generator) Generate(b *board.Board, origin coord.Pos) []coord.Pos {
	mover := b.Get(origin)
	if mover.IsEmpty() {
		return nil
	}
	spec := b.Spec()
	grid := spec.Grid
	forward := spec.Forward[mover.Color]
	rule := g.rules[mover.Type]
	out := make([]coord.Pos, 0, 32)

	for _, s := range rule.Steps {
		dest, ok := grid.Offset(origin, s.DF, s.DR*forward)
		if !ok {
			continue
		}
		target := b.Get(dest)
		switch {
		case target.IsEmpty():
			if s.Mode != CaptureOnly {
				out = append(out, dest)
			}
		case s.Mode != MoveOnly && g.CanCapture(mover, target):
			out = append(out, dest)
		}
	}

	onHome := false
	if len(rule.Rays) > 0 {
		_, rank := grid.FromStorage(origin)
		onHome = spec.RelativeRank(mover.Color, rank) == rule.HomeRank
	}
	for _, r := range rule.Rays {
		limit := r.Range
		if onHome && r.HomeRange > 0 {
			limit = r.HomeRange
		}
		out = g.walk(b, origin, mover, Delta{DF: r.DF, DR: r.DR * forward}, limit, r.continuation(), out)
	}
	return out
}

// walk is the one ray routine shared by every sliding piece.
func (g *Generator) walk(b *board.Board, origin coord.Pos, mover board.Square, d Delta, limit int, cont Continuation, out []coord.Pos) []coord.Pos {
	grid := b.Grid()
	pos := origin
	for step := 1; limit == 0 || step <= limit; step++ {
		dest, ok := grid.Offset(pos, d.DF, d.DR)
		if !ok {
			return out
		}
		target := b.Get(dest)
		switch cont(Probe{Mover: mover, Target: target, Capturable: g.CanCapture(mover, target), Step: step}) {
		case Continue:
			out = append(out, dest)
		case AcceptStop:
			return append(out, dest)
		default:
			return out
		}
		pos = dest
	}
	return out
}
