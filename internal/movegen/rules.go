// Package movegen derives candidate destinations from per-piece rule tables.
package movegen

import "variantchess/internal/board"

// Delta is a file/rank offset. DR is measured in the mover's forward direction.
type Delta struct {
	DF, DR int
}

// Mode is the capture policy of a primitive.
type Mode uint8

const (
	MoveOrCapture Mode = iota
	MoveOnly
	CaptureOnly
)

// Verdict is what a ray continuation decides about one destination.
type Verdict uint8

const (
	// Continue adds the destination and keeps walking.
	Continue Verdict = iota
	// AcceptStop adds the destination and ends the ray.
	AcceptStop
	// RejectStop ends the ray without adding the destination.
	RejectStop
)

func (v Verdict) String() string {
	switch v {
	case Continue:
		return "continue"
	case AcceptStop:
		return "accept-stop"
	case RejectStop:
		return "reject-stop"
	}
	return "unknown"
}

// Probe is the information a continuation sees for one destination.
type Probe struct {
	Mover      board.Square
	Target     board.Square
	Capturable bool // enemy occupant that the mover is allowed to capture
	Step       int  // 1 for the first square of the ray
}

// Continuation decides how a ray treats one destination.
type Continuation func(Probe) Verdict

// Slide walks through empty squares and stops on the first occupant,
// taking it when it is capturable.
func Slide(p Probe) Verdict {
	switch {
	case p.Target.IsEmpty():
		return Continue
	case p.Capturable:
		return AcceptStop
	default:
		return RejectStop
	}
}

// SlideQuiet walks through empty squares and never captures.
func SlideQuiet(p Probe) Verdict {
	if p.Target.IsEmpty() {
		return Continue
	}
	return RejectStop
}

// continuationFor maps a capture mode onto the shared ray walker.
func continuationFor(m Mode) Continuation {
	switch m {
	case MoveOnly:
		return SlideQuiet
	case CaptureOnly:
		return func(p Probe) Verdict {
			if p.Target.IsEmpty() {
				return RejectStop
			}
			if p.Capturable {
				return AcceptStop
			}
			return RejectStop
		}
	default:
		return Slide
	}
}

// Step is a fixed offset primitive.
type Step struct {
	Delta
	Mode Mode
}

// Ray is a directional primitive.
type Ray struct {
	Delta
	// Range caps the number of squares walked; 0 is unlimited.
	Range int
	// HomeRange replaces Range while the mover stands on its home rank.
	HomeRange int
	Mode      Mode
	// Continue overrides the continuation derived from Mode.
	Continue Continuation
}

func (r Ray) continuation() Continuation {
	if r.Continue != nil {
		return r.Continue
	}
	return continuationFor(r.Mode)
}

// Rule is the movement description of one piece kind.
type Rule struct {
	Steps []Step
	Rays  []Ray
	// HomeRank is the relative rank that enables Ray.HomeRange.
	HomeRank int
	// ImmuneTo lists the piece kinds that cannot capture this kind.
	ImmuneTo []board.PieceType
}

// RuleSet holds one rule per piece type of a board kind.
type RuleSet []Rule

// Leaper builds steps for every sign combination of (a, b) and (b, a).
func Leaper(a, b int, mode Mode) []Step {
	seen := make(map[Delta]bool)
	var out []Step
	for _, d := range []Delta{{a, b}, {b, a}} {
		for _, sf := range []int{1, -1} {
			for _, sr := range []int{1, -1} {
				nd := Delta{DF: d.DF * sf, DR: d.DR * sr}
				if seen[nd] || (nd.DF == 0 && nd.DR == 0) {
					continue
				}
				seen[nd] = true
				out = append(out, Step{Delta: nd, Mode: mode})
			}
		}
	}
	return out
}

// Orthogonal and Diagonal are the unit directions used by rook- and bishop-like rays.
var (
	Orthogonal = []Delta{{0, 1}, {1, 0}, {0, -1}, {-1, 0}}
	Diagonal   = []Delta{{1, 1}, {1, -1}, {-1, -1}, {-1, 1}}
)

// Rays builds one ray per direction with a shared range and mode.
func Rays(dirs []Delta, rng int, mode Mode) []Ray {
	out := make([]Ray, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, Ray{Delta: d, Range: rng, Mode: mode})
	}
	return out
}

// Steps builds one step per offset with a shared mode.
func Steps(deltas []Delta, mode Mode) []Step {
	out := make([]Step, 0, len(deltas))
	for _, d := range deltas {
		out = append(out, Step{Delta: d, Mode: mode})
	}
	return out
}

// Concat joins delta lists.
func Concat(lists ...[]Delta) []Delta {
	var out []Delta
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
