package board

import "fmt"

// Move packs a move into sixteen bits:
//
//	bits  0-5   destination square
//	bits  6-11  origin square
//	bits 12-13  promotion piece (0=knight .. 3=queen), promotions only
//	bits 14-15  kind
type Move uint16

type MoveKind uint16

const (
	NormalMove    MoveKind = 0
	PromotionMove MoveKind = 1 << 14
	EnPassantMove MoveKind = 2 << 14
	CastleMove    MoveKind = 3 << 14
)

// NoMove is not a legal move (a1a1) and marks "no move known".
const NoMove Move = 0

func NewMove(from, to Square) Move {
	return Move(uint16(from)<<6 | uint16(to))
}

func NewPromotion(from, to Square, promo PieceType) Move {
	return NewMove(from, to) | Move(PromotionMove) | Move(uint16(promo-Knight)<<12)
}

func NewEnPassant(from, to Square) Move {
	return NewMove(from, to) | Move(EnPassantMove)
}

func NewCastle(from, to Square) Move {
	return NewMove(from, to) | Move(CastleMove)
}

func (m Move) To() Square     { return Square(m & 63) }
func (m Move) From() Square   { return Square(m >> 6 & 63) }
func (m Move) Kind() MoveKind { return MoveKind(m) & (3 << 14) }

// Promotion returns the promotion piece type, or NoPieceType for
// non-promotions.
func (m Move) Promotion() PieceType {
	if m.Kind() != PromotionMove {
		return NoPieceType
	}
	return Knight + PieceType(m>>12&3)
}

func (m Move) IsPromotion() bool { return m.Kind() == PromotionMove }
func (m Move) IsEnPassant() bool { return m.Kind() == EnPassantMove }
func (m Move) IsCastle() bool    { return m.Kind() == CastleMove }

// String renders coordinate notation, e.g. "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promoRunes[m.Promotion()])
	}
	return s
}

// ParseCoord splits coordinate notation into its components without
// consulting a position. The caller matches the result against generated
// legal moves to recover the move kind.
func ParseCoord(s string) (from, to Square, promo PieceType, err error) {
	if len(s) != 4 && len(s) != 5 {
		return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid move %q", s)
	}
	if from, err = ParseSquare(s[:2]); err != nil {
		return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid move %q", s)
	}
	if to, err = ParseSquare(s[2:4]); err != nil {
		return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid move %q", s)
	}
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoSquare, NoSquare, NoPieceType, fmt.Errorf("invalid promotion in %q", s)
		}
	}
	return from, to, promo, nil
}

// MoveList is a fixed-capacity move buffer. 256 covers any reachable
// position.
type MoveList struct {
	moves [256]Move
	n     int
}

func (l *MoveList) Add(m Move)        { l.moves[l.n] = m; l.n++ }
func (l *MoveList) Len() int          { return l.n }
func (l *MoveList) Get(i int) Move    { return l.moves[i] }
func (l *MoveList) Set(i int, m Move) { l.moves[i] = m }
func (l *MoveList) Clear()            { l.n = 0 }

func (l *MoveList) Swap(i, j int) {
	l.moves[i], l.moves[j] = l.moves[j], l.moves[i]
}

// Contains reports whether m is in the list.
func (l *MoveList) Contains(m Move) bool {
	for i := 0; i < l.n; i++ {
		if l.moves[i] == m {
			return true
		}
	}
	return false
}
