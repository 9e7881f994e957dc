package nnue

import "github.com/mvander/riptide/internal/board"

// Accumulator is the hidden layer state, one vector per perspective.
type Accumulator struct {
	Values [2][HiddenSize]int16
}

// Refresh computes the accumulator from scratch. Incremental updates must
// always agree with this; the tests enforce it.
func (n *Network) Refresh(acc *Accumulator, b *board.Board) {
	acc.Values[board.White] = n.FeatureBias
	acc.Values[board.Black] = n.FeatureBias
	for sq := board.A1; sq <= board.H8; sq++ {
		if pc := b.PieceOn(sq); pc != board.NoPiece {
			n.addFeature(acc, pc, sq)
		}
	}
}

func (n *Network) addFeature(acc *Accumulator, pc board.Piece, sq board.Square) {
	for p := board.White; p <= board.Black; p++ {
		col := featureIndex(p, pc, sq) * HiddenSize
		v := &acc.Values[p]
		for i := 0; i < HiddenSize; i++ {
			v[i] += n.FeatureWeights[col+i]
		}
	}
}

func (n *Network) subFeature(acc *Accumulator, pc board.Piece, sq board.Square) {
	for p := board.White; p <= board.Black; p++ {
		col := featureIndex(p, pc, sq) * HiddenSize
		v := &acc.Values[p]
		for i := 0; i < HiddenSize; i++ {
			v[i] -= n.FeatureWeights[col+i]
		}
	}
}

// ApplyMove updates the accumulator for m. It must be called with the
// board still in its pre-move state; the caller makes the move on the
// board afterwards. Unmaking is handled by the stack, not by reversing
// the arithmetic.
func (n *Network) ApplyMove(acc *Accumulator, b *board.Board, m board.Move) {
	from, to := m.From(), m.To()
	us := b.Side
	moved := b.PieceOn(from)

	switch m.Kind() {
	case board.CastleMove:
		n.subFeature(acc, moved, from)
		n.addFeature(acc, moved, to)
		rf, rt := board.RookCastleSquares(to)
		rook := b.PieceOn(rf)
		n.subFeature(acc, rook, rf)
		n.addFeature(acc, rook, rt)

	case board.EnPassantMove:
		capSq := to - 8
		if us == board.Black {
			capSq = to + 8
		}
		n.subFeature(acc, b.PieceOn(capSq), capSq)
		n.subFeature(acc, moved, from)
		n.addFeature(acc, moved, to)

	default:
		if cap := b.PieceOn(to); cap != board.NoPiece {
			n.subFeature(acc, cap, to)
		}
		n.subFeature(acc, moved, from)
		if promo := m.Promotion(); promo != board.NoPieceType {
			n.addFeature(acc, board.MakePiece(us, promo), to)
		} else {
			n.addFeature(acc, moved, to)
		}
	}
}

// StackDepth bounds make-depth from a single root position, comfortably
// above the deepest search line.
const StackDepth = 256

// AccumulatorStack pairs the accumulator with search make/unmake: Push
// snapshots the current state before a move is applied, Pop restores it
// bit-exactly on unmake.
type AccumulatorStack struct {
	accs [StackDepth]Accumulator
	top  int
}

// Reset refreshes the bottom of the stack from b and discards everything
// else.
func (s *AccumulatorStack) Reset(n *Network, b *board.Board) {
	s.top = 0
	n.Refresh(&s.accs[0], b)
}

func (s *AccumulatorStack) Current() *Accumulator {
	return &s.accs[s.top]
}

// Push duplicates the current accumulator. The caller then applies a move
// to the new top.
func (s *AccumulatorStack) Push() {
	s.accs[s.top+1] = s.accs[s.top]
	s.top++
}

// Pop discards the top accumulator, restoring the pre-move state.
func (s *AccumulatorStack) Pop() {
	if s.top == 0 {
		panic("nnue: Pop on empty accumulator stack")
	}
	s.top--
}
