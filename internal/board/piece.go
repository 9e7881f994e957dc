package board

// Color of a side. White moves first.
type Color uint8

const (
	White Color = 0
	Black Color = 1
)

func (c Color) Other() Color { return c ^ 1 }

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// PieceType enumerates the six piece kinds. Zero means no piece, so a
// cleared mailbox entry is meaningful.
type PieceType uint8

const (
	NoPieceType PieceType = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Piece packs color and type: low three bits type, bit three color.
type Piece uint8

const NoPiece Piece = 0

func MakePiece(c Color, pt PieceType) Piece {
	return Piece(uint8(c)<<3 | uint8(pt))
}

func (p Piece) Type() PieceType { return PieceType(p & 7) }
func (p Piece) Color() Color    { return Color(p >> 3) }

const (
	WhitePawn   = Piece(Pawn)
	WhiteKnight = Piece(Knight)
	WhiteBishop = Piece(Bishop)
	WhiteRook   = Piece(Rook)
	WhiteQueen  = Piece(Queen)
	WhiteKing   = Piece(King)
	BlackPawn   = Piece(Pawn) | 8
	BlackKnight = Piece(Knight) | 8
	BlackBishop = Piece(Bishop) | 8
	BlackRook   = Piece(Rook) | 8
	BlackQueen  = Piece(Queen) | 8
	BlackKing   = Piece(King) | 8
)

var pieceRunes = map[Piece]rune{
	WhitePawn: 'P', WhiteKnight: 'N', WhiteBishop: 'B',
	WhiteRook: 'R', WhiteQueen: 'Q', WhiteKing: 'K',
	BlackPawn: 'p', BlackKnight: 'n', BlackBishop: 'b',
	BlackRook: 'r', BlackQueen: 'q', BlackKing: 'k',
}

var runePieces = map[rune]Piece{}

func init() {
	for p, r := range pieceRunes {
		runePieces[r] = p
	}
}

func (p Piece) Rune() rune {
	if r, ok := pieceRunes[p]; ok {
		return r
	}
	return '.'
}

var promoRunes = [...]rune{Knight: 'n', Bishop: 'b', Rook: 'r', Queen: 'q'}

// PieceValue gives rough material values in centipawns, indexed by
// PieceType. Used for MVV-LVA ordering and exchange evaluation, not for
// position evaluation.
var PieceValue = [7]int{0, 100, 320, 330, 500, 900, 20000}
