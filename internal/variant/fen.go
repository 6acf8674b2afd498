package variant

import (
	"errors"
	"fmt"
	"strings"

	"github.com/corentings/chess/v2"

	"variantchess/internal/board"
)

// ErrNotChess is returned when a FEN conversion is attempted on a non-chess board.
var ErrNotChess = errors.New("fen: only 8x8 chess boards are supported")

var toLib = map[board.PieceType]chess.PieceType{
	King:   chess.King,
	Queen:  chess.Queen,
	Rook:   chess.Rook,
	Bishop: chess.Bishop,
	Knight: chess.Knight,
	Pawn:   chess.Pawn,
}

var fromLib = map[chess.PieceType]board.PieceType{
	chess.King:   King,
	chess.Queen:  Queen,
	chess.Rook:   Rook,
	chess.Bishop: Bishop,
	chess.Knight: Knight,
	chess.Pawn:   Pawn,
}

func libColor(c board.Color) chess.Color {
	if c == 0 {
		return chess.White
	}
	return chess.Black
}

// FromFEN parses a FEN record into a Chess board and the color to move.
// Castling and en passant fields are accepted but ignored.
func FromFEN(fen string) (board.Board, board.Color, error) {
	opt, err := chess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return board.Board{}, 0, fmt.Errorf("fen: %w", err)
	}
	pos := chess.NewGame(opt).Position()
	b := Chess.New()
	g := b.Grid()
	for sq, pc := range pos.Board().SquareMap() {
		t, ok := fromLib[pc.Type()]
		if !ok {
			continue
		}
		c := board.Color(0)
		if pc.Color() == chess.Black {
			c = 1
		}
		b.Set(g.ToStorage(int(sq.File()), int(sq.Rank())), board.NewSquare(t, c))
	}
	turn := board.Color(0)
	if pos.Turn() == chess.Black {
		turn = 1
	}
	return b, turn, nil
}

// ToFEN renders a Chess board as a FEN record with turn to move.
func ToFEN(b *board.Board, turn board.Color) (string, error) {
	if b.Spec() != Chess.Spec {
		return "", ErrNotChess
	}
	g := b.Grid()
	m := make(map[chess.Square]chess.Piece)
	for _, p := range b.Squares(board.Occupied) {
		sq := b.Get(p)
		f, r := g.FromStorage(p)
		m[chess.NewSquare(chess.File(f), chess.Rank(r))] = chess.NewPiece(toLib[sq.Type], libColor(sq.Color))
	}
	side := "w"
	if turn == 1 {
		side = "b"
	}
	return fmt.Sprintf("%s %s - - 0 1", chess.NewBoard(m).String(), side), nil
}
