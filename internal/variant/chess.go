package variant

import (
	"variantchess/internal/board"
	mg "variantchess/internal/movegen"
)

// Piece types of Chess.
const (
	King board.PieceType = iota
	Queen
	Rook
	Bishop
	Knight
	Pawn
)

var chessSpec = board.NewSpec("chess", 8, []string{"white", "black"}, []int{1, -1}, []board.PieceInfo{
	King:   {Name: "King", Symbol: 'k', Royal: true},
	Queen:  {Name: "Queen", Symbol: 'q', Value: 9},
	Rook:   {Name: "Rook", Symbol: 'r', Value: 5},
	Bishop: {Name: "Bishop", Symbol: 'b', Value: 3},
	Knight: {Name: "Knight", Symbol: 'n', Value: 3},
	Pawn:   {Name: "Pawn", Symbol: 'p', Value: 1},
})

// Castling, en passant and promotion depend on history and are not modelled.
var chessRules = mg.RuleSet{
	King:   {Steps: mg.Steps(mg.Concat(mg.Orthogonal, mg.Diagonal), mg.MoveOrCapture)},
	Queen:  {Rays: mg.Rays(mg.Concat(mg.Orthogonal, mg.Diagonal), 0, mg.MoveOrCapture)},
	Rook:   {Rays: mg.Rays(mg.Orthogonal, 0, mg.MoveOrCapture)},
	Bishop: {Rays: mg.Rays(mg.Diagonal, 0, mg.MoveOrCapture)},
	Knight: {Steps: mg.Leaper(1, 2, mg.MoveOrCapture)},
	Pawn: {
		Rays:     []mg.Ray{{Delta: mg.Delta{DF: 0, DR: 1}, Range: 1, HomeRange: 2, Mode: mg.MoveOnly}},
		Steps:    mg.Steps([]mg.Delta{{DF: -1, DR: 1}, {DF: 1, DR: 1}}, mg.CaptureOnly),
		HomeRank: 1,
	},
}

// Chess is the 8x8 base variant.
var Chess = register(newVariant(chessSpec, chessRules, func(b *board.Board) {
	mirror(b, 0, []board.PieceType{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook})
	mirror(b, 1, repeat(Pawn, 8))
}))
