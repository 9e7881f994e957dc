package search

import "github.com/mvander/riptide/internal/board"

// Move ordering. Scores are bands, best first: transposition table move,
// winning or equal captures by MVV-LVA, killers, then quiet history. Bad
// captures sink below the quiet band so SEE losers are tried last.
const (
	scoreTTMove     int32 = 1 << 30
	scoreGoodCap    int32 = 1 << 24
	scoreKiller1    int32 = 1<<24 - 1
	scoreKiller2    int32 = 1<<24 - 2
	scoreBadCapBase int32 = -(1 << 24)
)

// mvvLva[victim][attacker]: prefer big victims, then cheap attackers.
var mvvLva [7][7]int32

func init() {
	for v := board.Pawn; v <= board.Queen; v++ {
		for a := board.Pawn; a <= board.King; a++ {
			mvvLva[v][a] = int32(v)*100 - int32(a)
		}
	}
}

// orderer holds the per-worker ordering state. Nothing in it is shared;
// helper workers diverge from the primary through the jitter seed alone.
type orderer struct {
	killers [MaxPly + 2][2]board.Move
	history [2][64][64]int32
	jitter  uint64
}

func (o *orderer) clear() {
	*o = orderer{jitter: o.jitter}
}

// noteCutoff rewards a quiet move that caused a beta cutoff: killer slot
// plus a depth-squared history bonus, halving everything on overflow to
// age old statistics out.
func (o *orderer) noteCutoff(side board.Color, m board.Move, ply, depth int) {
	if o.killers[ply][0] != m {
		o.killers[ply][1] = o.killers[ply][0]
		o.killers[ply][0] = m
	}
	h := &o.history[side][m.From()][m.To()]
	*h += int32(depth * depth)
	if *h > 1<<20 {
		for f := 0; f < 64; f++ {
			for t := 0; t < 64; t++ {
				o.history[side][f][t] /= 2
			}
		}
	}
}

// scoredMoves wraps a move list with lazy selection-sort picking.
type scoredMoves struct {
	ml     *board.MoveList
	scores [256]int32
	next   int
}

func (o *orderer) rank(b *board.Board, ml *board.MoveList, ttMove board.Move, ply int) scoredMoves {
	sm := scoredMoves{ml: ml}
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		var s int32
		switch {
		case m == ttMove:
			s = scoreTTMove
		case b.PieceOn(m.To()) != board.NoPiece || m.IsEnPassant():
			victim := b.PieceOn(m.To()).Type()
			if m.IsEnPassant() {
				victim = board.Pawn
			}
			attacker := b.PieceOn(m.From()).Type()
			if gain := see(b, m); gain < 0 {
				s = scoreBadCapBase + mvvLva[victim][attacker]
			} else {
				s = scoreGoodCap + mvvLva[victim][attacker]
			}
		case m == o.killers[ply][0]:
			s = scoreKiller1
		case m == o.killers[ply][1]:
			s = scoreKiller2
		default:
			s = o.history[b.Side][m.From()][m.To()]
			if o.jitter != 0 {
				s += int32((o.jitter ^ uint64(m)*0x9E3779B97F4A7C15) >> 61)
			}
		}
		if m.IsPromotion() {
			s += int32(board.PieceValue[m.Promotion()])
		}
		sm.scores[i] = s
	}
	return sm
}

// pick returns the highest-scored remaining move, or NoMove when
// exhausted.
func (sm *scoredMoves) pick() board.Move {
	n := sm.ml.Len()
	if sm.next >= n {
		return board.NoMove
	}
	best := sm.next
	for i := sm.next + 1; i < n; i++ {
		if sm.scores[i] > sm.scores[best] {
			best = i
		}
	}
	sm.ml.Swap(sm.next, best)
	sm.scores[sm.next], sm.scores[best] = sm.scores[best], sm.scores[sm.next]
	m := sm.ml.Get(sm.next)
	sm.next++
	return m
}
