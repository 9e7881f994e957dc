package search

import (
	"fmt"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/mvander/riptide/internal/board"
	"github.com/mvander/riptide/internal/nnue"
	"github.com/mvander/riptide/internal/store"
)

// Engine ties the searcher together: the shared transposition table, the
// evaluation network, worker count and the optional experience store.
// One search runs at a time; Stop may be called from any goroutine.
type Engine struct {
	tt      *Table
	net     *nnue.Network
	exp     *store.Store
	threads int

	nodes atomic.Int64
	stop  atomic.Bool

	// OnInfo receives a report after every completed depth of the primary
	// worker. OnDiag receives free-form diagnostics. Both may be nil and
	// must not block.
	OnInfo func(Info)
	OnDiag func(string)
}

func NewEngine(net *nnue.Network, hashMB, threads int) *Engine {
	if threads < 1 {
		threads = 1
	}
	return &Engine{tt: NewTable(hashMB), net: net, threads: threads}
}

// NewGame clears the transposition table between games.
func (e *Engine) NewGame() {
	e.tt.Clear()
}

// SetHashSize replaces the table. Never called mid-search.
func (e *Engine) SetHashSize(mb int) {
	e.tt = NewTable(mb)
}

func (e *Engine) SetThreads(n int) {
	if n < 1 {
		n = 1
	}
	e.threads = n
}

// SetNetwork swaps the evaluation network. Never called mid-search.
func (e *Engine) SetNetwork(net *nnue.Network) {
	e.net = net
}

// SetExperience attaches a persistent store of past root results. nil
// detaches it.
func (e *Engine) SetExperience(s *store.Store) {
	e.exp = s
}

// Stop aborts the running search. Workers observe it within a bounded
// number of nodes and unwind to their last completed depth.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

func (e *Engine) Nodes() int64 {
	return e.nodes.Load()
}

func (e *Engine) diag(format string, args ...any) {
	if e.OnDiag != nil {
		e.OnDiag(fmt.Sprintf(format, args...))
	}
}

// Search runs iterative deepening on b within limits and returns the best
// move of the deepest fully completed depth. history holds the zobrist
// hashes of the game so far, the current position last; repetition
// detection runs against it.
func (e *Engine) Search(b *board.Board, history []uint64, limits Limits) Result {
	e.stop.Store(false)
	e.nodes.Store(0)
	e.tt.NextGeneration()
	tm := newTimeManager(limits, b.Side)

	hint := e.probeExperience(b)

	workers := make([]*worker, e.threads)
	for i := range workers {
		workers[i] = e.newWorker(i, b, history, limits, tm, hint)
	}

	results := make([]Result, e.threads)
	var g errgroup.Group
	for i := 1; i < e.threads; i++ {
		w := workers[i]
		i := i
		g.Go(func() error {
			results[i] = w.iterate()
			return nil
		})
	}
	results[0] = workers[0].iterate()
	e.stop.Store(true)
	g.Wait()

	res := results[0]
	// The primary can be stopped before finishing depth 1; any helper
	// with a completed depth is better than nothing.
	for _, r := range results[1:] {
		if res.Move == board.NoMove && r.Move != board.NoMove {
			res = r
		}
	}
	res.Nodes = e.nodes.Load()

	e.recordExperience(b, res)
	return res
}

func (e *Engine) newWorker(id int, b *board.Board, history []uint64, limits Limits, tm *timeManager, hint board.Move) *worker {
	w := &worker{
		id:       id,
		eng:      e,
		tm:       tm,
		limits:   limits,
		pos:      b.Copy(),
		rootHint: hint,
	}
	w.hashes = make([]uint64, 0, len(history)+MaxPly+8)
	w.hashes = append(w.hashes, history...)
	if n := len(w.hashes); n == 0 || w.hashes[n-1] != b.Hash {
		w.hashes = append(w.hashes, b.Hash)
	}
	w.stack.Reset(e.net, w.pos)
	if id > 0 {
		w.ord.jitter = uint64(id) * 0x9E3779B97F4A7C15
	}
	return w
}

func (e *Engine) report(w *worker, depth, score int) {
	if e.OnInfo == nil {
		return
	}
	elapsed := w.tm.elapsed()
	nodes := e.nodes.Load()
	nps := int64(0)
	if ns := elapsed.Nanoseconds(); ns > 0 {
		nps = nodes * 1e9 / ns
	}
	info := Info{
		Depth:    depth,
		Score:    score,
		Nodes:    nodes,
		Time:     elapsed,
		NPS:      nps,
		HashFull: e.tt.HashFull(),
		PV:       w.pv.line(),
	}
	if IsMateScore(score) {
		info.MateIn = MatePlies(score)
	}
	e.OnInfo(info)
}

// probeExperience looks the root position up in the experience store and
// returns a move to try first, when a past search of meaningful depth
// recorded one.
func (e *Engine) probeExperience(b *board.Board) board.Move {
	if e.exp == nil {
		return board.NoMove
	}
	ent, ok, err := e.exp.Lookup(b.Hash)
	if err != nil {
		e.diag("experience lookup failed: %v", err)
		return board.NoMove
	}
	if !ok || ent.Depth < 4 {
		return board.NoMove
	}
	m := b.FindMove(ent.Move)
	if m == board.NoMove {
		return board.NoMove
	}
	e.diag("experience: %s depth %d score %d", ent.Move, ent.Depth, ent.Score)
	return m
}

func (e *Engine) recordExperience(b *board.Board, res Result) {
	if e.exp == nil || res.Move == board.NoMove || res.Depth < 4 {
		return
	}
	err := e.exp.Record(b.Hash, store.Entry{
		Move:  res.Move.String(),
		Score: res.Score,
		Depth: res.Depth,
	})
	if err != nil {
		e.diag("experience record failed: %v", err)
	}
}
