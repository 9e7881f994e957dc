package board

import "fmt"

// Square indexes the board a1=0 .. h8=63. NoSquare marks an absent square
// (for example no en passant target).
type Square uint8

type (
	File uint8
	Rank uint8
)

const (
	A1 Square = iota
	B1
	C1
	D1
	E1
	F1
	G1
	H1
	A2
	B2
	C2
	D2
	E2
	F2
	G2
	H2
	A3
	B3
	C3
	D3
	E3
	F3
	G3
	H3
	A4
	B4
	C4
	D4
	E4
	F4
	G4
	H4
	A5
	B5
	C5
	D5
	E5
	F5
	G5
	H5
	A6
	B6
	C6
	D6
	E6
	F6
	G6
	H6
	A7
	B7
	C7
	D7
	E7
	F7
	G7
	H7
	A8
	B8
	C8
	D8
	E8
	F8
	G8
	H8
	NoSquare
)

func MakeSquare(f File, r Rank) Square {
	return Square(uint8(r)<<3 | uint8(f))
}

func (sq Square) File() File { return File(sq & 7) }
func (sq Square) Rank() Rank { return Rank(sq >> 3) }

// Flip mirrors the square vertically (a1 <-> a8).
func (sq Square) Flip() Square { return sq ^ 56 }

func (sq Square) IsValid() bool { return sq < NoSquare }

func (sq Square) String() string {
	if sq == NoSquare {
		return "-"
	}
	return string([]byte{'a' + byte(sq.File()), '1' + byte(sq.Rank())})
}

// ParseSquare parses coordinate notation such as "e4".
func ParseSquare(s string) (Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return NoSquare, fmt.Errorf("invalid square %q", s)
	}
	return MakeSquare(File(s[0]-'a'), Rank(s[1]-'1')), nil
}
