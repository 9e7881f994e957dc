package board

import "strings"

// CastleRights is a bitmask of the four castling permissions.
type CastleRights uint8

const (
	WhiteOO CastleRights = 1 << iota
	WhiteOOO
	BlackOO
	BlackOOO
)

// Board is the complete game state: bitboards plus a mailbox for O(1)
// piece lookup, side to move, castling rights, en passant target, move
// clocks and the incrementally maintained zobrist hash.
type Board struct {
	ByPiece [7]Bitboard // by piece type, color-agnostic; index 0 unused
	ByColor [2]Bitboard
	Squares [64]Piece

	Side     Color
	Castling CastleRights
	EPSquare Square // NoSquare when no en passant is possible
	Rule50   int
	FullMove int

	Hash     uint64
	KingSq   [2]Square
	Checkers Bitboard // pieces giving check to the side to move

	// outstanding counts moves made but not yet unmade, to catch
	// unbalanced make/unmake sequences.
	outstanding int
}

func (b *Board) Occupied() Bitboard {
	return b.ByColor[White] | b.ByColor[Black]
}

// Pieces returns the bitboard of one piece kind of one color.
func (b *Board) Pieces(c Color, pt PieceType) Bitboard {
	return b.ByPiece[pt] & b.ByColor[c]
}

func (b *Board) PieceOn(sq Square) Piece {
	return b.Squares[sq]
}

func (b *Board) putPiece(p Piece, sq Square) {
	bb := SquareBB(sq)
	b.ByPiece[p.Type()] |= bb
	b.ByColor[p.Color()] |= bb
	b.Squares[sq] = p
	b.Hash ^= pieceKey(p, sq)
	if p.Type() == King {
		b.KingSq[p.Color()] = sq
	}
}

func (b *Board) removePiece(sq Square) Piece {
	p := b.Squares[sq]
	bb := SquareBB(sq)
	b.ByPiece[p.Type()] &^= bb
	b.ByColor[p.Color()] &^= bb
	b.Squares[sq] = NoPiece
	b.Hash ^= pieceKey(p, sq)
	return p
}

func (b *Board) movePiece(from, to Square) {
	p := b.removePiece(from)
	b.putPiece(p, to)
}

// AttackersTo returns all pieces of either color attacking sq under the
// given occupancy.
func (b *Board) AttackersTo(sq Square, occ Bitboard) Bitboard {
	return b.AttackersBy(White, sq, occ) | b.AttackersBy(Black, sq, occ)
}

// AttackersBy returns the pieces of color c attacking sq under the given
// occupancy.
func (b *Board) AttackersBy(c Color, sq Square, occ Bitboard) Bitboard {
	them := c.Other()
	att := PawnAttacks(them, sq) & b.Pieces(c, Pawn)
	att |= KnightAttacks(sq) & b.Pieces(c, Knight)
	att |= KingAttacks(sq) & b.Pieces(c, King)
	att |= BishopAttacks(sq, occ) & (b.Pieces(c, Bishop) | b.Pieces(c, Queen))
	att |= RookAttacks(sq, occ) & (b.Pieces(c, Rook) | b.Pieces(c, Queen))
	return att
}

// IsAttacked reports whether sq is attacked by any piece of color c.
func (b *Board) IsAttacked(sq Square, c Color, occ Bitboard) bool {
	return b.AttackersBy(c, sq, occ) != 0
}

// UpdateCheckers recomputes the checkers bitboard for the side to move.
func (b *Board) UpdateCheckers() {
	b.Checkers = b.AttackersBy(b.Side.Other(), b.KingSq[b.Side], b.Occupied())
}

func (b *Board) InCheck() bool { return b.Checkers != 0 }

// pinned returns the pieces of color c that are absolutely pinned against
// their own king: x-ray from the king through exactly one piece of c to an
// enemy slider.
func (b *Board) pinned(c Color) Bitboard {
	var p Bitboard
	ksq := b.KingSq[c]
	them := c.Other()
	occ := b.Occupied()

	snipers := RookAttacks(ksq, 0)&(b.Pieces(them, Rook)|b.Pieces(them, Queen)) |
		BishopAttacks(ksq, 0)&(b.Pieces(them, Bishop)|b.Pieces(them, Queen))

	for snipers != 0 {
		s := snipers.PopLSB()
		blockers := Between(s, ksq) & occ
		if blockers.Count() == 1 && blockers&b.ByColor[c] != 0 {
			p |= blockers
		}
	}
	return p
}

// HasNonPawnMaterial reports whether c has any piece besides pawns and the
// king. Null-move pruning is unsound without it.
func (b *Board) HasNonPawnMaterial(c Color) bool {
	return b.ByColor[c]&^(b.ByPiece[Pawn]|b.ByPiece[King]) != 0
}

// RecomputeHash derives the zobrist hash from scratch. MakeMove maintains
// the hash incrementally; this is the reference the tests check it against.
func (b *Board) RecomputeHash() uint64 {
	var h uint64
	for sq := A1; sq <= H8; sq++ {
		if p := b.Squares[sq]; p != NoPiece {
			h ^= pieceKey(p, sq)
		}
	}
	h ^= zobristCastling[b.Castling]
	if b.EPSquare != NoSquare {
		h ^= zobristEnPassant[b.EPSquare.File()]
	}
	if b.Side == Black {
		h ^= zobristSide
	}
	return h
}

// IsInsufficientMaterial reports dead positions: bare kings, or king and a
// single minor piece against a bare king.
func (b *Board) IsInsufficientMaterial() bool {
	if b.ByPiece[Pawn]|b.ByPiece[Rook]|b.ByPiece[Queen] != 0 {
		return false
	}
	minors := b.ByPiece[Knight] | b.ByPiece[Bishop]
	return minors.Count() <= 1
}

// String renders the board with rank 8 on top, plus the FEN.
func (b *Board) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			sb.WriteRune(b.Squares[MakeSquare(File(f), Rank(r))].Rune())
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(b.FEN())
	sb.WriteByte('\n')
	return sb.String()
}
