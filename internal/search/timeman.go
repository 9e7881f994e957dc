package search

import (
	"time"

	"github.com/mvander/riptide/internal/board"
)

// timeManager splits the clock into an optimum budget, after which no new
// iteration starts, and a maximum budget, past which the search is cut
// off mid-iteration. Best-move stability between iterations shrinks the
// optimum so settled positions move fast.
type timeManager struct {
	start    time.Time
	optimum  time.Duration
	maximum  time.Duration
	limited  bool
	lastBest board.Move
	stable   int
}

const moveOverhead = 30 * time.Millisecond

func newTimeManager(limits Limits, side board.Color) *timeManager {
	tm := &timeManager{start: time.Now()}

	if limits.Infinite {
		return tm
	}
	if limits.MoveTime > 0 {
		budget := limits.MoveTime - moveOverhead
		if budget < time.Millisecond {
			budget = time.Millisecond
		}
		tm.optimum, tm.maximum = budget, budget
		tm.limited = true
		return tm
	}

	remaining, inc := limits.WTime, limits.WInc
	if side == board.Black {
		remaining, inc = limits.BTime, limits.BInc
	}
	if remaining <= 0 {
		return tm
	}

	mtg := limits.MovesToGo
	if mtg <= 0 || mtg > 40 {
		mtg = 30
	}

	base := remaining/time.Duration(mtg) + inc*3/4
	tm.optimum = base
	tm.maximum = min(5*base, remaining*4/5)
	if tm.maximum <= moveOverhead {
		tm.maximum = remaining / 2
	}
	tm.limited = true
	return tm
}

func (tm *timeManager) elapsed() time.Duration {
	return time.Since(tm.start)
}

// hardExpired is the mid-search cutoff checked from the node loop.
func (tm *timeManager) hardExpired() bool {
	return tm.limited && tm.elapsed() >= tm.maximum
}

// shouldStartNext decides whether another iteration is worth beginning
// after a depth completed with best move m.
func (tm *timeManager) shouldStartNext(m board.Move) bool {
	if !tm.limited {
		return true
	}
	if m == tm.lastBest {
		if tm.stable < 8 {
			tm.stable++
		}
	} else {
		tm.stable = 0
		tm.lastBest = m
	}

	// 100% of optimum at stability 0 down to 60% when the move has not
	// changed for many iterations.
	budget := tm.optimum - tm.optimum*time.Duration(tm.stable)/20
	return tm.elapsed() < budget
}
