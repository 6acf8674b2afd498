package variant

import (
	"variantchess/internal/board"
	mg "variantchess/internal/movegen"
)

// Piece types of Contrasting chess.
const (
	CKing board.PieceType = iota
	Elephant
	Bear
	Horse
	Dragon
	Moose
	Rodent
)

var contrastingSpec = board.NewSpec("contrasting", 10, []string{"white", "black"}, []int{1, -1}, []board.PieceInfo{
	CKing:    {Name: "King", Symbol: 'k', Royal: true},
	Elephant: {Name: "Elephant", Symbol: 'e', Value: 5},
	Bear:     {Name: "Bear", Symbol: 'b', Value: 4},
	Horse:    {Name: "Horse", Symbol: 'h', Value: 3},
	Dragon:   {Name: "Dragon", Symbol: 'd', Value: 9},
	Moose:    {Name: "Moose", Symbol: 'm', Value: 3},
	Rodent:   {Name: "Rodent", Symbol: 'r', Value: 1},
})

var contrastingRules = mg.RuleSet{
	CKing: {Steps: mg.Steps(mg.Concat(mg.Orthogonal, mg.Diagonal), mg.MoveOrCapture)},
	// Elephants shrug off rodents.
	Elephant: {Rays: mg.Rays(mg.Orthogonal, 3, mg.MoveOrCapture), ImmuneTo: []board.PieceType{Rodent}},
	Bear: {Steps: append(
		mg.Steps(mg.Concat(mg.Orthogonal, mg.Diagonal), mg.MoveOrCapture),
		mg.Leaper(0, 2, mg.MoveOrCapture)...,
	)},
	Horse:  {Steps: mg.Leaper(1, 2, mg.MoveOrCapture)},
	Dragon: {Rays: mg.Rays(mg.Concat(mg.Orthogonal, mg.Diagonal), 0, mg.MoveOrCapture)},
	Moose: {
		Rays:  mg.Rays(mg.Diagonal, 2, mg.MoveOrCapture),
		Steps: mg.Steps(mg.Orthogonal, mg.MoveOrCapture),
	},
	Rodent: {
		Steps: append(
			mg.Steps([]mg.Delta{{DF: 0, DR: 1}}, mg.MoveOnly),
			mg.Steps([]mg.Delta{{DF: -1, DR: 1}, {DF: 1, DR: 1}}, mg.CaptureOnly)...,
		),
	},
}

// Contrasting is the 10x10 variant.
var Contrasting = register(newVariant(contrastingSpec, contrastingRules, func(b *board.Board) {
	mirror(b, 0, []board.PieceType{Moose, Horse, Bear, Elephant, CKing, Dragon, Elephant, Bear, Horse, Moose})
	mirror(b, 1, repeat(Rodent, 10))
}))
