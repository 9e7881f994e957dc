package search

import (
	"math"

	"github.com/mvander/riptide/internal/board"
	"github.com/mvander/riptide/internal/nnue"
)

// lmrTable[depth][moveCount] is the late move reduction in plies.
var lmrTable [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrTable[d][m] = int(math.Log(float64(d)) * math.Log(float64(m)) / 2.0)
		}
	}
}

// lmpThreshold[depth]: quiet moves tried before late move pruning kicks in.
var lmpThreshold = [8]int{0, 3, 5, 9, 15, 23, 33, 45}

// worker is one search thread. It owns its board copy, accumulator stack
// and ordering state outright; the transposition table and the stop flag
// are the only state shared between workers.
type worker struct {
	id     int
	eng    *Engine
	tm     *timeManager
	limits Limits

	pos    *board.Board
	stack  nnue.AccumulatorStack
	ord    orderer
	pv     pvTable
	hashes []uint64

	rootHint board.Move

	nodes   int64
	aborted bool

	bestMove  board.Move
	bestScore int
	completed int
}

// iterate runs iterative deepening and returns the result of the deepest
// fully completed iteration. An abort mid-iteration never disturbs the
// answer from the previous one.
func (w *worker) iterate() Result {
	maxDepth := w.limits.Depth
	if maxDepth <= 0 || maxDepth >= MaxPly {
		maxDepth = MaxPly - 1
	}

	prev := 0
	for depth := 1; depth <= maxDepth; depth++ {
		score := w.aspirate(depth, prev)
		if w.aborted {
			break
		}
		prev = score
		w.bestScore = score
		w.completed = depth
		if w.pv.length[0] > 0 {
			w.bestMove = w.pv.moves[0][0]
		}

		if w.id == 0 {
			w.flushNodes()
			w.eng.report(w, depth, score)
			if !w.tm.shouldStartNext(w.bestMove) {
				w.eng.stop.Store(true)
				break
			}
		}
	}
	w.flushNodes()
	return Result{Move: w.bestMove, Score: w.bestScore, Depth: w.completed}
}

// aspirate searches depth with a window around the previous score, and
// re-searches with a widened window on a fail high or low.
func (w *worker) aspirate(depth, prev int) int {
	alpha, beta := -Infinity, Infinity
	delta := 25
	if depth >= 5 {
		alpha, beta = prev-delta, prev+delta
	}
	for {
		score := w.negamax(depth, 0, alpha, beta, true)
		if w.aborted {
			return score
		}
		switch {
		case score <= alpha:
			beta = (alpha + beta + 1) / 2
			alpha = max(score-delta, -Infinity)
		case score >= beta:
			beta = min(score+delta, Infinity)
		default:
			return score
		}
		delta += delta / 2
	}
}

func (w *worker) negamax(depth, ply, alpha, beta int, pvNode bool) int {
	w.pv.clear(ply)
	w.tick()
	if w.aborted {
		return 0
	}

	inCheck := w.pos.InCheck()
	if inCheck {
		depth++ // check extension
	}
	if depth <= 0 {
		return w.qsearch(ply, alpha, beta, 0)
	}

	isRoot := ply == 0
	if !isRoot {
		if w.isDraw() {
			return 0
		}
		if ply >= MaxPly {
			return w.evaluate()
		}
		// Mate distance pruning: no line from here can beat a mate
		// already found closer to the root.
		alpha = max(alpha, -MateScore+ply)
		beta = min(beta, MateScore-ply-1)
		if alpha >= beta {
			return alpha
		}
	}

	key := w.pos.Hash
	ttMove := board.NoMove
	if e, ok := w.eng.tt.Probe(key); ok {
		if w.pos.IsPseudoLegal(e.Move) {
			ttMove = e.Move
		}
		if !pvNode && !isRoot && int(e.Depth) >= depth {
			score := scoreFromTT(e.Score, ply)
			switch e.Bound {
			case BoundExact:
				return score
			case BoundLower:
				if score >= beta {
					return score
				}
			case BoundUpper:
				if score <= alpha {
					return score
				}
			}
		}
	}
	if isRoot && ttMove == board.NoMove {
		ttMove = w.rootHint
	}

	eval := w.evaluate()

	if !pvNode && !inCheck && !IsMateScore(beta) {
		// Reverse futility: a comfortable static margin above beta at
		// shallow depth fails high without searching.
		if depth <= 6 && eval-80*depth >= beta {
			return eval
		}
		// Null move: hand the opponent a free move; if the position still
		// beats beta, a real move will too. Unsound in pawn-only endings.
		if depth >= 3 && eval >= beta && w.pos.HasNonPawnMaterial(w.pos.Side) {
			r := 2 + depth/4
			u := w.doNull()
			score := -w.negamax(depth-1-r, ply+1, -beta, -beta+1, false)
			w.undoNull(u)
			if w.aborted {
				return 0
			}
			if score >= beta {
				if IsMateScore(score) {
					score = beta
				}
				return score
			}
		}
	}

	var ml board.MoveList
	w.pos.LegalMoves(&ml)
	if ml.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	sm := w.ord.rank(w.pos, &ml, ttMove, ply)

	origAlpha := alpha
	bestScore := -Infinity
	bestMove := board.NoMove
	moveCount := 0
	futile := !pvNode && !inCheck && depth <= 3 && eval+100+120*depth <= alpha

	for m := sm.pick(); m != board.NoMove; m = sm.pick() {
		moveCount++
		isCapture := w.pos.PieceOn(m.To()) != board.NoPiece || m.IsEnPassant()
		isQuiet := !isCapture && !m.IsPromotion()

		if !isRoot && isQuiet && bestScore > -mateBound {
			if !pvNode && !inCheck && depth < len(lmpThreshold) && moveCount > lmpThreshold[depth] {
				continue
			}
			if futile && moveCount > 1 {
				continue
			}
		}

		u := w.doMove(m)
		givesCheck := w.pos.InCheck()

		var score int
		if moveCount == 1 {
			score = -w.negamax(depth-1, ply+1, -beta, -alpha, pvNode)
		} else {
			r := 0
			if depth >= 3 && moveCount > 3 && isQuiet && !inCheck && !givesCheck {
				r = lmrTable[min(depth, 63)][min(moveCount, 63)]
				if pvNode && r > 0 {
					r--
				}
				if r > depth-2 {
					r = depth - 2
				}
			}
			score = -w.negamax(depth-1-r, ply+1, -alpha-1, -alpha, false)
			if score > alpha && r > 0 {
				score = -w.negamax(depth-1, ply+1, -alpha-1, -alpha, false)
			}
			if pvNode && score > alpha && score < beta {
				score = -w.negamax(depth-1, ply+1, -beta, -alpha, true)
			}
		}

		w.undoMove(m, u)
		if w.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = m
			if score > alpha {
				alpha = score
				if pvNode {
					w.pv.update(ply, m)
				}
				if alpha >= beta {
					if isQuiet {
						w.ord.noteCutoff(w.pos.Side, m, ply, depth)
					}
					break
				}
			}
		}
	}

	bound := BoundUpper
	switch {
	case bestScore >= beta:
		bound = BoundLower
	case alpha > origAlpha:
		bound = BoundExact
	}
	w.eng.tt.Store(key, Entry{
		Move:  bestMove,
		Score: scoreToTT(bestScore, ply),
		Depth: int8(depth),
		Bound: bound,
	})
	return bestScore
}

// qsearch resolves tactical noise before the static evaluation is
// trusted: captures and promotions everywhere, plus checking quiet moves
// on the first quiescence ply, and full evasion search while in check.
func (w *worker) qsearch(ply, alpha, beta, qsPly int) int {
	w.tick()
	if w.aborted {
		return 0
	}
	if ply >= MaxPly {
		return w.evaluate()
	}
	if w.isDraw() {
		return 0
	}

	inCheck := w.pos.InCheck()
	var ml board.MoveList
	bestScore := -Infinity
	standPat := 0

	if inCheck {
		w.pos.LegalMoves(&ml)
		if ml.Len() == 0 {
			return -MateScore + ply
		}
	} else {
		standPat = w.evaluate()
		if standPat >= beta {
			return standPat
		}
		if standPat > alpha {
			alpha = standPat
		}
		bestScore = standPat
		if qsPly == 0 {
			w.pos.LegalMoves(&ml)
		} else {
			w.pos.LegalCaptures(&ml)
		}
	}

	sm := w.ord.rank(w.pos, &ml, board.NoMove, ply)

	for m := sm.pick(); m != board.NoMove; m = sm.pick() {
		isCapture := w.pos.PieceOn(m.To()) != board.NoPiece || m.IsEnPassant()
		tactical := isCapture || m.IsPromotion()

		if !inCheck && isCapture && !m.IsPromotion() {
			if see(w.pos, m) < 0 {
				continue
			}
			victim := w.pos.PieceOn(m.To()).Type()
			if m.IsEnPassant() {
				victim = board.Pawn
			}
			// Delta pruning: even winning this piece cannot lift alpha.
			if standPat+board.PieceValue[victim]+200 <= alpha {
				continue
			}
		}

		u := w.doMove(m)
		if !inCheck && !tactical && !w.pos.InCheck() {
			// Quiets survive only as checking moves on the first ply.
			w.undoMove(m, u)
			continue
		}
		score := -w.qsearch(ply+1, -beta, -alpha, qsPly+1)
		w.undoMove(m, u)
		if w.aborted {
			return 0
		}

		if score > bestScore {
			bestScore = score
			if score > alpha {
				alpha = score
				if alpha >= beta {
					break
				}
			}
		}
	}
	return bestScore
}

func (w *worker) evaluate() int {
	score := w.eng.net.Evaluate(w.stack.Current(), w.pos.Side)
	if score >= mateBound {
		score = mateBound - 1
	} else if score <= -mateBound {
		score = -mateBound + 1
	}
	return score
}

func (w *worker) isDraw() bool {
	return w.pos.Rule50 >= 100 || w.pos.IsInsufficientMaterial() || w.isRepetition()
}

// isRepetition scans same-side positions back through the reversible-move
// window for the current hash. One earlier occurrence counts as a draw
// inside the tree.
func (w *worker) isRepetition() bool {
	n := len(w.hashes)
	h := w.hashes[n-1]
	limit := n - 1 - w.pos.Rule50
	if limit < 0 {
		limit = 0
	}
	for i := n - 3; i >= limit; i -= 2 {
		if w.hashes[i] == h {
			return true
		}
	}
	return false
}

// tick counts a node and periodically checks the shared stop flag plus
// the node and time budgets.
func (w *worker) tick() {
	w.nodes++
	if w.nodes&2047 != 0 {
		return
	}
	w.eng.nodes.Add(2048)
	switch {
	case w.eng.stop.Load():
		w.aborted = true
	case w.limits.Nodes > 0 && w.eng.nodes.Load() >= w.limits.Nodes:
		w.eng.stop.Store(true)
		w.aborted = true
	case w.tm.hardExpired():
		w.eng.stop.Store(true)
		w.aborted = true
	}
}

func (w *worker) flushNodes() {
	w.eng.nodes.Add(w.nodes & 2047)
	w.nodes &^= 2047
}

func (w *worker) doMove(m board.Move) board.Undo {
	w.stack.Push()
	w.eng.net.ApplyMove(w.stack.Current(), w.pos, m)
	u := w.pos.MakeMove(m)
	w.hashes = append(w.hashes, w.pos.Hash)
	return u
}

func (w *worker) undoMove(m board.Move, u board.Undo) {
	w.hashes = w.hashes[:len(w.hashes)-1]
	w.pos.UnmakeMove(m, u)
	w.stack.Pop()
}

// Null moves leave every piece in place, so the accumulator needs no
// update, only the hash history grows.
func (w *worker) doNull() board.NullUndo {
	u := w.pos.MakeNull()
	w.hashes = append(w.hashes, w.pos.Hash)
	return u
}

func (w *worker) undoNull(u board.NullUndo) {
	w.hashes = w.hashes[:len(w.hashes)-1]
	w.pos.UnmakeNull(u)
}
