package board

import (
	"math/bits"
	"strings"
)

// Bitboard is a set of squares, one bit per square. Bit 0 is a1, bit 7 is
// h1, bit 63 is h8.
type Bitboard uint64

const (
	FileABB Bitboard = 0x0101010101010101
	FileBBB Bitboard = FileABB << 1
	FileCBB Bitboard = FileABB << 2
	FileDBB Bitboard = FileABB << 3
	FileEBB Bitboard = FileABB << 4
	FileFBB Bitboard = FileABB << 5
	FileGBB Bitboard = FileABB << 6
	FileHBB Bitboard = FileABB << 7

	Rank1BB Bitboard = 0x00000000000000FF
	Rank2BB Bitboard = Rank1BB << 8
	Rank3BB Bitboard = Rank1BB << 16
	Rank4BB Bitboard = Rank1BB << 24
	Rank5BB Bitboard = Rank1BB << 32
	Rank6BB Bitboard = Rank1BB << 40
	Rank7BB Bitboard = Rank1BB << 48
	Rank8BB Bitboard = Rank1BB << 56
)

// SquareBB returns the bitboard with only sq set.
func SquareBB(sq Square) Bitboard {
	return 1 << sq
}

func (b Bitboard) Has(sq Square) bool {
	return b&SquareBB(sq) != 0
}

func (b *Bitboard) Set(sq Square) {
	*b |= SquareBB(sq)
}

func (b *Bitboard) Clear(sq Square) {
	*b &^= SquareBB(sq)
}

// LSB returns the lowest set square. b must be non-empty.
func (b Bitboard) LSB() Square {
	return Square(bits.TrailingZeros64(uint64(b)))
}

// PopLSB removes and returns the lowest set square.
func (b *Bitboard) PopLSB() Square {
	sq := b.LSB()
	*b &= *b - 1
	return sq
}

func (b Bitboard) Count() int {
	return bits.OnesCount64(uint64(b))
}

// Single shift steps. East and west variants mask the wrapping file.

func (b Bitboard) North() Bitboard { return b << 8 }
func (b Bitboard) South() Bitboard { return b >> 8 }
func (b Bitboard) East() Bitboard  { return (b &^ FileHBB) << 1 }
func (b Bitboard) West() Bitboard  { return (b &^ FileABB) >> 1 }

func (b Bitboard) NorthEast() Bitboard { return (b &^ FileHBB) << 9 }
func (b Bitboard) NorthWest() Bitboard { return (b &^ FileABB) << 7 }
func (b Bitboard) SouthEast() Bitboard { return (b &^ FileHBB) >> 7 }
func (b Bitboard) SouthWest() Bitboard { return (b &^ FileABB) >> 9 }

// String renders the set rank by rank for debugging, rank 8 on top.
func (b Bitboard) String() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		for f := 0; f < 8; f++ {
			if b.Has(MakeSquare(File(f), Rank(r))) {
				sb.WriteString("X ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
