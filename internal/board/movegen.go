package board

// Legal move generation: pseudo-legal sets per piece type, restricted up
// front by pin rays and check evasion masks, so no make/unmake probing is
// needed. En passant is the one case that gets explicit occupancy surgery.

// LegalMoves appends every strictly legal move to ml (cleared first).
func (b *Board) LegalMoves(ml *MoveList) {
	ml.Clear()
	b.genMoves(ml, false)
}

// LegalCaptures appends legal captures plus queen promotions, the move set
// quiescence search explores. Callers use it only when not in check.
func (b *Board) LegalCaptures(ml *MoveList) {
	ml.Clear()
	b.genMoves(ml, true)
}

func (b *Board) GenerateLegalMoves() MoveList {
	var ml MoveList
	b.LegalMoves(&ml)
	return ml
}

func (b *Board) genMoves(ml *MoveList, quiesce bool) {
	us := b.Side
	them := us.Other()
	own := b.ByColor[us]
	enemies := b.ByColor[them]
	occ := b.Occupied()
	ksq := b.KingSq[us]
	pinnedBB := b.pinned(us)

	// King moves. Attack checks exclude the king from occupancy so a king
	// cannot step away along a checking slider's ray.
	kingTargets := KingAttacks(ksq) &^ own
	if quiesce {
		kingTargets &= enemies
	}
	occNoKing := occ &^ SquareBB(ksq)
	for t := kingTargets; t != 0; {
		to := t.PopLSB()
		if !b.IsAttacked(to, them, occNoKing) {
			ml.Add(NewMove(ksq, to))
		}
	}

	// In double check only the king can move.
	allowed := ^Bitboard(0)
	if b.Checkers != 0 {
		if b.Checkers.Count() > 1 {
			return
		}
		csq := b.Checkers.LSB()
		allowed = Between(csq, ksq) | SquareBB(csq)
	}

	targets := allowed &^ own
	if quiesce {
		targets &= enemies
	}

	for bbs := b.Pieces(us, Knight) &^ pinnedBB; bbs != 0; {
		from := bbs.PopLSB()
		for t := KnightAttacks(from) & targets; t != 0; {
			ml.Add(NewMove(from, t.PopLSB()))
		}
	}

	for bbs := b.Pieces(us, Bishop); bbs != 0; {
		from := bbs.PopLSB()
		t := BishopAttacks(from, occ) & targets
		if pinnedBB.Has(from) {
			t &= Line(ksq, from)
		}
		for t != 0 {
			ml.Add(NewMove(from, t.PopLSB()))
		}
	}

	for bbs := b.Pieces(us, Rook); bbs != 0; {
		from := bbs.PopLSB()
		t := RookAttacks(from, occ) & targets
		if pinnedBB.Has(from) {
			t &= Line(ksq, from)
		}
		for t != 0 {
			ml.Add(NewMove(from, t.PopLSB()))
		}
	}

	for bbs := b.Pieces(us, Queen); bbs != 0; {
		from := bbs.PopLSB()
		t := QueenAttacks(from, occ) & targets
		if pinnedBB.Has(from) {
			t &= Line(ksq, from)
		}
		for t != 0 {
			ml.Add(NewMove(from, t.PopLSB()))
		}
	}

	b.genPawnMoves(ml, allowed, pinnedBB, quiesce)

	if b.Checkers == 0 && !quiesce {
		b.genCastles(ml)
	}
}

func (b *Board) genPawnMoves(ml *MoveList, allowed, pinnedBB Bitboard, quiesce bool) {
	us := b.Side
	them := us.Other()
	pawns := b.Pieces(us, Pawn)
	empty := ^b.Occupied()
	enemies := b.ByColor[them]
	ksq := b.KingSq[us]

	var push1, push2, capW, capE Bitboard
	var up, dW, dE int
	var promoRank Bitboard
	if us == White {
		push1 = pawns.North() & empty
		push2 = (push1 & Rank3BB).North() & empty
		capW = pawns.NorthWest() & enemies
		capE = pawns.NorthEast() & enemies
		up, dW, dE = 8, 7, 9
		promoRank = Rank8BB
	} else {
		push1 = pawns.South() & empty
		push2 = (push1 & Rank6BB).South() & empty
		capW = pawns.SouthWest() & enemies
		capE = pawns.SouthEast() & enemies
		up, dW, dE = -8, -9, -7
		promoRank = Rank1BB
	}

	emit := func(bb Bitboard, delta int) {
		for bb != 0 {
			to := bb.PopLSB()
			from := Square(int(to) - delta)
			if pinnedBB.Has(from) && !Aligned(ksq, from, to) {
				continue
			}
			switch {
			case !promoRank.Has(to):
				ml.Add(NewMove(from, to))
			case quiesce:
				ml.Add(NewPromotion(from, to, Queen))
			default:
				ml.Add(NewPromotion(from, to, Queen))
				ml.Add(NewPromotion(from, to, Rook))
				ml.Add(NewPromotion(from, to, Bishop))
				ml.Add(NewPromotion(from, to, Knight))
			}
		}
	}

	pushes1, pushes2 := push1&allowed, push2&allowed
	if quiesce {
		pushes1 &= promoRank
		pushes2 = 0
	}
	emit(pushes1, up)
	emit(pushes2, 2*up)
	emit(capW&allowed, dW)
	emit(capE&allowed, dE)

	if b.EPSquare != NoSquare {
		b.genEnPassant(ml, up)
	}
}

// genEnPassant validates each en passant candidate by rebuilding the
// post-capture occupancy and checking the king is not attacked on it. This
// covers the horizontal pin case, diagonal pins, and evasion by en passant
// in one test.
func (b *Board) genEnPassant(ml *MoveList, up int) {
	us := b.Side
	them := us.Other()
	ep := b.EPSquare
	ksq := b.KingSq[us]
	capSq := Square(int(ep) - up)
	occ := b.Occupied()

	for cands := b.Pieces(us, Pawn) & PawnAttacks(them, ep); cands != 0; {
		from := cands.PopLSB()
		occ2 := (occ &^ SquareBB(from) &^ SquareBB(capSq)) | SquareBB(ep)
		att := RookAttacks(ksq, occ2) & (b.Pieces(them, Rook) | b.Pieces(them, Queen))
		att |= BishopAttacks(ksq, occ2) & (b.Pieces(them, Bishop) | b.Pieces(them, Queen))
		att |= KnightAttacks(ksq) & b.Pieces(them, Knight)
		att |= PawnAttacks(us, ksq) & (b.Pieces(them, Pawn) &^ SquareBB(capSq))
		if att == 0 {
			ml.Add(NewEnPassant(from, ep))
		}
	}
}

func (b *Board) genCastles(ml *MoveList) {
	us := b.Side
	them := us.Other()
	occ := b.Occupied()
	if us == White {
		if b.Castling&WhiteOO != 0 && occ&(SquareBB(F1)|SquareBB(G1)) == 0 &&
			!b.IsAttacked(F1, them, occ) && !b.IsAttacked(G1, them, occ) {
			ml.Add(NewCastle(E1, G1))
		}
		if b.Castling&WhiteOOO != 0 && occ&(SquareBB(B1)|SquareBB(C1)|SquareBB(D1)) == 0 &&
			!b.IsAttacked(D1, them, occ) && !b.IsAttacked(C1, them, occ) {
			ml.Add(NewCastle(E1, C1))
		}
	} else {
		if b.Castling&BlackOO != 0 && occ&(SquareBB(F8)|SquareBB(G8)) == 0 &&
			!b.IsAttacked(F8, them, occ) && !b.IsAttacked(G8, them, occ) {
			ml.Add(NewCastle(E8, G8))
		}
		if b.Castling&BlackOOO != 0 && occ&(SquareBB(B8)|SquareBB(C8)|SquareBB(D8)) == 0 &&
			!b.IsAttacked(D8, them, occ) && !b.IsAttacked(C8, them, occ) {
			ml.Add(NewCastle(E8, C8))
		}
	}
}

// Perft counts leaf nodes of the legal move tree at the given depth, the
// standard oracle for move generator correctness.
func Perft(b *Board, depth int) int64 {
	if depth == 0 {
		return 1
	}
	var ml MoveList
	b.LegalMoves(&ml)
	if depth == 1 {
		return int64(ml.Len())
	}
	var nodes int64
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		u := b.MakeMove(m)
		nodes += Perft(b, depth-1)
		b.UnmakeMove(m, u)
	}
	return nodes
}

// FindMove resolves coordinate notation like "e2e4" or "e7e8q" against
// the legal moves of this position, recovering the move kind. NoMove
// means the string is malformed or the move is not legal here.
func (b *Board) FindMove(coord string) Move {
	from, to, promo, err := ParseCoord(coord)
	if err != nil {
		return NoMove
	}
	var ml MoveList
	b.LegalMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if m.From() == from && m.To() == to && m.Promotion() == promo {
			return m
		}
	}
	return NoMove
}

func (b *Board) HasLegalMoves() bool {
	var ml MoveList
	b.LegalMoves(&ml)
	return ml.Len() > 0
}

func (b *Board) IsCheckmate() bool {
	return b.InCheck() && !b.HasLegalMoves()
}

func (b *Board) IsStalemate() bool {
	return !b.InCheck() && !b.HasLegalMoves()
}

// IsPseudoLegal checks that m is plausible in this position: right piece,
// right geometry, destination not blocked. Transposition table probes run
// it on stored moves before trusting them, since a key collision can hand
// back a move from an unrelated position.
func (b *Board) IsPseudoLegal(m Move) bool {
	if m == NoMove {
		return false
	}
	from, to := m.From(), m.To()
	p := b.Squares[from]
	if p == NoPiece || p.Color() != b.Side {
		return false
	}
	occ := b.Occupied()

	switch m.Kind() {
	case CastleMove:
		var ml MoveList
		if b.InCheck() {
			return false
		}
		b.genCastles(&ml)
		return ml.Contains(m)

	case EnPassantMove:
		return p.Type() == Pawn && to == b.EPSquare && PawnAttacks(b.Side, from).Has(to)

	case PromotionMove, NormalMove:
		if b.ByColor[b.Side].Has(to) {
			return false
		}
		if p.Type() != Pawn {
			if m.Kind() == PromotionMove {
				return false
			}
			switch p.Type() {
			case Knight:
				return KnightAttacks(from).Has(to)
			case Bishop:
				return BishopAttacks(from, occ).Has(to)
			case Rook:
				return RookAttacks(from, occ).Has(to)
			case Queen:
				return QueenAttacks(from, occ).Has(to)
			default: // King
				return KingAttacks(from).Has(to)
			}
		}

		promoRank := Rank8BB
		up := 8
		if b.Side == Black {
			promoRank = Rank1BB
			up = -8
		}
		if promoRank.Has(to) != (m.Kind() == PromotionMove) {
			return false
		}
		switch int(to) - int(from) {
		case up:
			return !occ.Has(to)
		case 2 * up:
			mid := Square(int(from) + up)
			startRank := Rank2BB
			if b.Side == Black {
				startRank = Rank7BB
			}
			return startRank.Has(from) && !occ.Has(mid) && !occ.Has(to)
		default:
			return PawnAttacks(b.Side, from).Has(to) && b.ByColor[b.Side.Other()].Has(to)
		}
	}
	return false
}
