package search

import "github.com/mvander/riptide/internal/board"

// see runs static exchange evaluation on a capture: the material balance
// of the full capture sequence on the target square, assuming both sides
// always recapture with their least valuable attacker and may stand pat.
func see(b *board.Board, m board.Move) int {
	to := m.To()
	victim := b.PieceOn(to).Type()
	attacker := b.PieceOn(m.From()).Type()
	if m.IsEnPassant() {
		victim = board.Pawn
	}

	var gain [32]int
	depth := 0
	gain[0] = board.PieceValue[victim]

	occ := b.Occupied() &^ board.SquareBB(m.From())
	if m.IsEnPassant() {
		capSq := to - 8
		if b.Side == board.Black {
			capSq = to + 8
		}
		occ &^= board.SquareBB(capSq)
	}

	side := b.Side.Other()
	cur := attacker
	for {
		from, pt := leastValuableAttacker(b, to, side, occ)
		if from == board.NoSquare {
			break
		}
		depth++
		gain[depth] = board.PieceValue[cur] - gain[depth-1]
		// Neither a win nor a recapture can help from here.
		if max(-gain[depth-1], gain[depth]) < 0 {
			break
		}
		occ &^= board.SquareBB(from)
		side = side.Other()
		cur = pt
	}

	for depth > 0 {
		gain[depth-1] = -max(-gain[depth-1], gain[depth])
		depth--
	}
	return gain[0]
}

// leastValuableAttacker finds the cheapest piece of color c attacking sq
// under occ, skipping pieces already used in the exchange. Sliding
// attacks are recomputed against occ so x-ray attackers appear as the
// blockers in front of them are consumed.
func leastValuableAttacker(b *board.Board, sq board.Square, c board.Color, occ board.Bitboard) (board.Square, board.PieceType) {
	attackers := b.AttackersBy(c, sq, occ) & occ
	if attackers == 0 {
		return board.NoSquare, board.NoPieceType
	}
	for pt := board.Pawn; pt <= board.King; pt++ {
		if bb := attackers & b.Pieces(c, pt); bb != 0 {
			return bb.LSB(), pt
		}
	}
	return board.NoSquare, board.NoPieceType
}
