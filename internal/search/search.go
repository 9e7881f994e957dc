// Package search implements iterative deepening alpha-beta search with a
// shared lockless transposition table and Lazy SMP helper workers.
package search

import (
	"time"

	"github.com/mvander/riptide/internal/board"
)

const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	// Scores beyond this are mate scores and carry a ply distance.
	mateBound = MateScore - MaxPly
)

// Limits bounds a search. Zero values mean unbounded; Infinite overrides
// everything except an explicit stop.
type Limits struct {
	Depth     int
	Nodes     int64
	MoveTime  time.Duration
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
	Infinite  bool
}

// Info is a completed-depth report from the primary worker.
type Info struct {
	Depth    int
	Score    int
	MateIn   int // plies to mate when Score is a mate score, else 0
	Nodes    int64
	Time     time.Duration
	NPS      int64
	HashFull int
	PV       []board.Move
}

// Result is the final outcome of a search: the best move of the deepest
// fully completed iteration.
type Result struct {
	Move  board.Move
	Score int
	Depth int
	Nodes int64
}

// IsMateScore reports whether score encodes a forced mate.
func IsMateScore(score int) bool {
	return score > mateBound || score < -mateBound
}

// MatePlies returns the signed distance to mate in plies for a mate score.
func MatePlies(score int) int {
	if score > 0 {
		return MateScore - score
	}
	return -(MateScore + score)
}

// pvTable is a triangular principal variation table.
type pvTable struct {
	length [MaxPly + 1]int
	moves  [MaxPly + 1][MaxPly + 1]board.Move
}

func (pv *pvTable) clear(ply int) {
	pv.length[ply] = 0
}

// update prepends m at ply to the variation collected one ply deeper.
func (pv *pvTable) update(ply int, m board.Move) {
	pv.moves[ply][0] = m
	copy(pv.moves[ply][1:], pv.moves[ply+1][:pv.length[ply+1]])
	pv.length[ply] = pv.length[ply+1] + 1
}

func (pv *pvTable) line() []board.Move {
	out := make([]board.Move, pv.length[0])
	copy(out, pv.moves[0][:pv.length[0]])
	return out
}
