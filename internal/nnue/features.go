package nnue

import "github.com/mvander/riptide/internal/board"

// featureIndex maps a piece on a square to its input index as seen from
// one side's perspective. The perspective owner's pieces come first, and
// black sees the board vertically flipped, so the two perspectives are
// exact mirrors of each other.
func featureIndex(perspective board.Color, pc board.Piece, sq board.Square) int {
	rel := 0
	if pc.Color() != perspective {
		rel = 1
	}
	if perspective == board.Black {
		sq = sq.Flip()
	}
	return (rel*6+int(pc.Type()-board.Pawn))*64 + int(sq)
}
