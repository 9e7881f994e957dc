package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// NewBoard returns the starting position.
func NewBoard() *Board {
	b, err := ParseFEN(StartFEN)
	if err != nil {
		panic(err)
	}
	return b
}

// ParseFEN builds a board from Forsyth-Edwards notation. The halfmove and
// fullmove fields may be omitted, as some GUIs do.
func ParseFEN(fen string) (*Board, error) {
	fields := strings.Fields(fen)
	if len(fields) < 4 {
		return nil, fmt.Errorf("fen %q: need at least 4 fields, got %d", fen, len(fields))
	}

	b := &Board{EPSquare: NoSquare, FullMove: 1}
	b.KingSq[White], b.KingSq[Black] = NoSquare, NoSquare

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("fen %q: need 8 ranks, got %d", fen, len(ranks))
	}
	for i, rankStr := range ranks {
		r := Rank(7 - i)
		f := 0
		for _, ch := range rankStr {
			switch {
			case ch >= '1' && ch <= '8':
				f += int(ch - '0')
			default:
				p, ok := runePieces[ch]
				if !ok || f > 7 {
					return nil, fmt.Errorf("fen %q: bad rank %q", fen, rankStr)
				}
				b.putPiece(p, MakeSquare(File(f), r))
				f++
			}
		}
		if f != 8 {
			return nil, fmt.Errorf("fen %q: rank %q covers %d files", fen, rankStr, f)
		}
	}
	if b.KingSq[White] == NoSquare || b.KingSq[Black] == NoSquare ||
		b.Pieces(White, King).Count() != 1 || b.Pieces(Black, King).Count() != 1 {
		return nil, fmt.Errorf("fen %q: each side needs exactly one king", fen)
	}

	switch fields[1] {
	case "w":
		b.Side = White
	case "b":
		b.Side = Black
	default:
		return nil, fmt.Errorf("fen %q: bad side to move %q", fen, fields[1])
	}

	if fields[2] != "-" {
		for _, ch := range fields[2] {
			switch ch {
			case 'K':
				b.Castling |= WhiteOO
			case 'Q':
				b.Castling |= WhiteOOO
			case 'k':
				b.Castling |= BlackOO
			case 'q':
				b.Castling |= BlackOOO
			default:
				return nil, fmt.Errorf("fen %q: bad castling field %q", fen, fields[2])
			}
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("fen %q: %w", fen, err)
		}
		b.EPSquare = sq
	}

	if len(fields) > 4 {
		n, err := strconv.Atoi(fields[4])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("fen %q: bad halfmove clock %q", fen, fields[4])
		}
		b.Rule50 = n
	}
	if len(fields) > 5 {
		n, err := strconv.Atoi(fields[5])
		if err != nil || n < 1 {
			return nil, fmt.Errorf("fen %q: bad fullmove number %q", fen, fields[5])
		}
		b.FullMove = n
	}

	b.Hash = b.RecomputeHash()
	b.UpdateCheckers()
	return b, nil
}

// FEN formats the position in Forsyth-Edwards notation.
func (b *Board) FEN() string {
	var sb strings.Builder
	for r := 7; r >= 0; r-- {
		empty := 0
		for f := 0; f < 8; f++ {
			p := b.Squares[MakeSquare(File(f), Rank(r))]
			if p == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteRune(p.Rune())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if r > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if b.Side == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	if b.Castling == 0 {
		sb.WriteByte('-')
	} else {
		for _, cr := range []struct {
			r  CastleRights
			ch byte
		}{{WhiteOO, 'K'}, {WhiteOOO, 'Q'}, {BlackOO, 'k'}, {BlackOOO, 'q'}} {
			if b.Castling&cr.r != 0 {
				sb.WriteByte(cr.ch)
			}
		}
	}

	fmt.Fprintf(&sb, " %s %d %d", b.EPSquare, b.Rule50, b.FullMove)
	return sb.String()
}
