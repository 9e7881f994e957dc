package board

// Mirror returns the color-flipped position: every piece moves to its
// vertically mirrored square with the opposite color, side to move,
// castling rights and en passant flip accordingly. A symmetric evaluation
// must score a position and its mirror identically from the mover's point
// of view.
func (b *Board) Mirror() *Board {
	m := &Board{
		Side:     b.Side.Other(),
		EPSquare: NoSquare,
		Rule50:   b.Rule50,
		FullMove: b.FullMove,
	}
	m.KingSq[White], m.KingSq[Black] = NoSquare, NoSquare

	for sq := A1; sq <= H8; sq++ {
		p := b.Squares[sq]
		if p == NoPiece {
			continue
		}
		m.putPiece(MakePiece(p.Color().Other(), p.Type()), sq.Flip())
	}

	if b.Castling&WhiteOO != 0 {
		m.Castling |= BlackOO
	}
	if b.Castling&WhiteOOO != 0 {
		m.Castling |= BlackOOO
	}
	if b.Castling&BlackOO != 0 {
		m.Castling |= WhiteOO
	}
	if b.Castling&BlackOOO != 0 {
		m.Castling |= WhiteOOO
	}

	if b.EPSquare != NoSquare {
		m.EPSquare = b.EPSquare.Flip()
	}

	m.Hash = m.RecomputeHash()
	m.UpdateCheckers()
	return m
}

// Copy returns an independent copy of the board.
func (b *Board) Copy() *Board {
	c := *b
	c.outstanding = 0
	return &c
}
