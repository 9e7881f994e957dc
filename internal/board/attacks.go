package board

// Precomputed leaper attack tables and square geometry. Everything here is
// filled once at package init; lookups are plain array reads.

var (
	pawnAttackBB   [2][64]Bitboard
	knightAttackBB [64]Bitboard
	kingAttackBB   [64]Bitboard

	// betweenBB[a][b] holds the squares strictly between a and b when they
	// share a rank, file or diagonal, else empty. lineBB[a][b] is the full
	// line through both, endpoints included.
	betweenBB [64][64]Bitboard
	lineBB    [64][64]Bitboard
)

func init() {
	initMagics()
	initLeapers()
	initLines()
}

func initLeapers() {
	for sq := A1; sq <= H8; sq++ {
		b := SquareBB(sq)
		pawnAttackBB[White][sq] = b.NorthEast() | b.NorthWest()
		pawnAttackBB[Black][sq] = b.SouthEast() | b.SouthWest()

		knightAttackBB[sq] = b.North().NorthEast() | b.North().NorthWest() |
			b.South().SouthEast() | b.South().SouthWest() |
			b.East().NorthEast() | b.East().SouthEast() |
			b.West().NorthWest() | b.West().SouthWest()

		kingAttackBB[sq] = b.North() | b.South() | b.East() | b.West() |
			b.NorthEast() | b.NorthWest() | b.SouthEast() | b.SouthWest()
	}
}

func initLines() {
	for a := A1; a <= H8; a++ {
		for b := A1; b <= H8; b++ {
			if a == b {
				continue
			}
			switch {
			case RookAttacks(a, 0).Has(b):
				lineBB[a][b] = (RookAttacks(a, 0) & RookAttacks(b, 0)) | SquareBB(a) | SquareBB(b)
				betweenBB[a][b] = RookAttacks(a, SquareBB(b)) & RookAttacks(b, SquareBB(a))
			case BishopAttacks(a, 0).Has(b):
				lineBB[a][b] = (BishopAttacks(a, 0) & BishopAttacks(b, 0)) | SquareBB(a) | SquareBB(b)
				betweenBB[a][b] = BishopAttacks(a, SquareBB(b)) & BishopAttacks(b, SquareBB(a))
			}
		}
	}
}

func PawnAttacks(c Color, sq Square) Bitboard { return pawnAttackBB[c][sq] }
func KnightAttacks(sq Square) Bitboard        { return knightAttackBB[sq] }
func KingAttacks(sq Square) Bitboard          { return kingAttackBB[sq] }

// Between returns the squares strictly between a and b, or empty when they
// are not aligned.
func Between(a, b Square) Bitboard { return betweenBB[a][b] }

// Line returns the full rank, file or diagonal through a and b, endpoints
// included, or empty when unaligned.
func Line(a, b Square) Bitboard { return lineBB[a][b] }

// Aligned reports whether c lies on the line through a and b.
func Aligned(a, b, c Square) bool { return lineBB[a][b].Has(c) }
