package board

// Undo carries everything MakeMove destroys that cannot be rederived from
// the move itself.
type Undo struct {
	Captured   Piece
	CapturedSq Square
	Castling   CastleRights
	EPSquare   Square
	Rule50     int
	Hash       uint64
	Checkers   Bitboard
}

// castleMask[sq] holds the castling rights that die when a move touches sq,
// as origin or destination.
var castleMask = func() [64]CastleRights {
	var m [64]CastleRights
	m[A1] = WhiteOOO
	m[H1] = WhiteOO
	m[E1] = WhiteOO | WhiteOOO
	m[A8] = BlackOOO
	m[H8] = BlackOO
	m[E8] = BlackOO | BlackOOO
	return m
}()

// RookCastleSquares maps the king's castling destination to the rook's
// origin and destination.
func RookCastleSquares(kingTo Square) (from, to Square) {
	switch kingTo {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	default: // C8
		return A8, D8
	}
}

// MakeMove applies a legal move and returns the undo record. Hash, castling
// rights, en passant state and checkers are maintained incrementally; the
// caller is responsible for only passing moves from the legal generator.
func (b *Board) MakeMove(m Move) Undo {
	u := Undo{
		Captured:   NoPiece,
		CapturedSq: NoSquare,
		Castling:   b.Castling,
		EPSquare:   b.EPSquare,
		Rule50:     b.Rule50,
		Hash:       b.Hash,
		Checkers:   b.Checkers,
	}
	from, to := m.From(), m.To()
	us := b.Side
	moved := b.Squares[from]

	if b.EPSquare != NoSquare {
		b.Hash ^= zobristEnPassant[b.EPSquare.File()]
		b.EPSquare = NoSquare
	}
	b.Rule50++

	switch m.Kind() {
	case CastleMove:
		b.movePiece(from, to)
		rf, rt := RookCastleSquares(to)
		b.movePiece(rf, rt)

	case EnPassantMove:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		u.Captured = b.removePiece(capSq)
		u.CapturedSq = capSq
		b.movePiece(from, to)
		b.Rule50 = 0

	default:
		if b.Squares[to] != NoPiece {
			u.Captured = b.removePiece(to)
			u.CapturedSq = to
			b.Rule50 = 0
		}
		b.movePiece(from, to)
		if m.IsPromotion() {
			b.removePiece(to)
			b.putPiece(MakePiece(us, m.Promotion()), to)
		}
		if moved.Type() == Pawn {
			b.Rule50 = 0
			if from^to == 16 { // double push
				ep := (from + to) / 2
				b.EPSquare = ep
				b.Hash ^= zobristEnPassant[ep.File()]
			}
		}
	}

	if newRights := b.Castling &^ (castleMask[from] | castleMask[to]); newRights != b.Castling {
		b.Hash ^= zobristCastling[b.Castling] ^ zobristCastling[newRights]
		b.Castling = newRights
	}

	b.Side = us.Other()
	b.Hash ^= zobristSide
	if us == Black {
		b.FullMove++
	}
	b.UpdateCheckers()
	b.outstanding++
	return u
}

// UnmakeMove reverts the most recent MakeMove. Calling it with no move
// outstanding is a contract violation and panics.
func (b *Board) UnmakeMove(m Move, u Undo) {
	if b.outstanding == 0 {
		panic("board: UnmakeMove without matching MakeMove")
	}
	b.outstanding--

	us := b.Side.Other() // the side that made the move
	from, to := m.From(), m.To()

	switch m.Kind() {
	case CastleMove:
		rf, rt := RookCastleSquares(to)
		b.movePiece(rt, rf)
		b.movePiece(to, from)

	default:
		if m.IsPromotion() {
			b.removePiece(to)
			b.putPiece(MakePiece(us, Pawn), from)
		} else {
			b.movePiece(to, from)
		}
		if u.Captured != NoPiece {
			b.putPiece(u.Captured, u.CapturedSq)
		}
	}

	b.Side = us
	if us == Black {
		b.FullMove--
	}
	b.Castling = u.Castling
	b.EPSquare = u.EPSquare
	b.Rule50 = u.Rule50
	b.Hash = u.Hash
	b.Checkers = u.Checkers
}

// NullUndo is the undo record for a null move.
type NullUndo struct {
	EPSquare Square
	Rule50   int
	Hash     uint64
	Checkers Bitboard
}

// MakeNull passes the move without touching any piece. Only valid when the
// side to move is not in check.
func (b *Board) MakeNull() NullUndo {
	u := NullUndo{EPSquare: b.EPSquare, Rule50: b.Rule50, Hash: b.Hash, Checkers: b.Checkers}
	if b.EPSquare != NoSquare {
		b.Hash ^= zobristEnPassant[b.EPSquare.File()]
		b.EPSquare = NoSquare
	}
	b.Rule50++
	b.Side = b.Side.Other()
	b.Hash ^= zobristSide
	b.UpdateCheckers()
	b.outstanding++
	return u
}

func (b *Board) UnmakeNull(u NullUndo) {
	if b.outstanding == 0 {
		panic("board: UnmakeNull without matching MakeNull")
	}
	b.outstanding--
	b.Side = b.Side.Other()
	b.EPSquare = u.EPSquare
	b.Rule50 = u.Rule50
	b.Hash = u.Hash
	b.Checkers = u.Checkers
}
