package search

import (
	"testing"
	"time"

	"github.com/mvander/riptide/internal/board"
	"github.com/mvander/riptide/internal/nnue"
)

func newTestEngine(threads int) *Engine {
	return NewEngine(nnue.InitRandom(7), 16, threads)
}

func mustFEN(t *testing.T, fen string) *board.Board {
	t.Helper()
	b, err := board.ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	return b
}

func isLegal(b *board.Board, m board.Move) bool {
	var ml board.MoveList
	b.LegalMoves(&ml)
	return ml.Contains(m)
}

func TestMateInOne(t *testing.T) {
	// Back-rank mate: only Re8 delivers it.
	b := mustFEN(t, "6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1")
	eng := newTestEngine(1)

	res := eng.Search(b, nil, Limits{Depth: 5})
	if want := board.NewMove(board.E1, board.E8); res.Move != want {
		t.Errorf("best move = %s, want %s", res.Move, want)
	}
	if res.Score != MateScore-1 {
		t.Errorf("score = %d, want mate in 1 (%d)", res.Score, MateScore-1)
	}
}

func TestMateInTwo(t *testing.T) {
	// Ladder mate: Ra7 boxes the king in, Rb8 mates.
	b := mustFEN(t, "6k1/8/8/8/8/8/R7/1R4K1 w - - 0 1")
	eng := newTestEngine(1)

	res := eng.Search(b, nil, Limits{Depth: 6})
	if res.Score != MateScore-3 {
		t.Errorf("score = %d, want mate in 2 (%d)", res.Score, MateScore-3)
	}
	if want := board.NewMove(board.A2, board.A7); res.Move != want {
		t.Errorf("best move = %s, want %s", res.Move, want)
	}
}

func TestMatedScore(t *testing.T) {
	// Black to move, already in a mating net: every reply loses, the score
	// is negative and a mate score.
	b := mustFEN(t, "6k1/R7/1R6/8/8/8/8/6K1 b - - 0 1")
	eng := newTestEngine(1)

	res := eng.Search(b, nil, Limits{Depth: 6})
	if !IsMateScore(res.Score) || res.Score > 0 {
		t.Errorf("score = %d, want a getting-mated score", res.Score)
	}
	if !isLegal(b, res.Move) {
		t.Errorf("best move %s is not legal", res.Move)
	}
}

// TestDeterministicSearch runs the same single-threaded search twice on
// fresh engines and expects identical results, node counts included.
func TestDeterministicSearch(t *testing.T) {
	fen := "r1bqkbnr/pppp1ppp/2n5/4p3/2B1P3/5N2/PPPP1PPP/RNBQK2R w KQkq - 4 4"

	run := func() Result {
		eng := newTestEngine(1)
		return eng.Search(mustFEN(t, fen), nil, Limits{Depth: 6})
	}

	a, b := run(), run()
	if a.Move != b.Move || a.Score != b.Score || a.Depth != b.Depth || a.Nodes != b.Nodes {
		t.Errorf("searches diverged:\n first  %+v\n second %+v", a, b)
	}
}

// Reference searchers for the pruning-soundness check below. Both score
// leaves with a full accumulator refresh and use no table, no extensions
// and no pruning beyond the alpha-beta bound itself.
func refEval(net *nnue.Network, b *board.Board) int {
	var acc nnue.Accumulator
	net.Refresh(&acc, b)
	return net.Evaluate(&acc, b.Side)
}

func refNegamax(net *nnue.Network, b *board.Board, depth int) int {
	if depth == 0 {
		return refEval(net, b)
	}
	var ml board.MoveList
	b.LegalMoves(&ml)
	if ml.Len() == 0 {
		if b.InCheck() {
			return -MateScore
		}
		return 0
	}
	best := -Infinity
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		u := b.MakeMove(m)
		score := -refNegamax(net, b, depth-1)
		b.UnmakeMove(m, u)
		if score > best {
			best = score
		}
	}
	return best
}

func refAlphaBeta(net *nnue.Network, b *board.Board, depth, alpha, beta int) int {
	if depth == 0 {
		return refEval(net, b)
	}
	var ml board.MoveList
	b.LegalMoves(&ml)
	if ml.Len() == 0 {
		if b.InCheck() {
			return -MateScore
		}
		return 0
	}
	best := -Infinity
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		u := b.MakeMove(m)
		score := -refAlphaBeta(net, b, depth-1, -beta, -alpha)
		b.UnmakeMove(m, u)
		if score > best {
			best = score
			if score > alpha {
				alpha = score
				if alpha >= beta {
					break
				}
			}
		}
	}
	return best
}

// TestAlphaBetaMatchesFullWidth: pruning on the window alone never changes
// the root value.
func TestAlphaBetaMatchesFullWidth(t *testing.T) {
	net := nnue.InitRandom(3)
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		"6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1",
	}
	for _, fen := range fens {
		b := mustFEN(t, fen)
		full := refNegamax(net, b.Copy(), 3)
		ab := refAlphaBeta(net, b.Copy(), 3, -Infinity, Infinity)
		if full != ab {
			t.Errorf("%s: full-width %d, alpha-beta %d", fen, full, ab)
		}
	}
}

func TestNodeLimit(t *testing.T) {
	eng := newTestEngine(1)
	b := board.NewBoard()

	limit := int64(20000)
	res := eng.Search(b, nil, Limits{Nodes: limit})

	// The budget check runs every 2048 nodes, so allow that much slack.
	if got := eng.Nodes(); got > limit+4096 {
		t.Errorf("searched %d nodes, limit %d", got, limit)
	}
	if !isLegal(b, res.Move) {
		t.Errorf("best move %s is not legal", res.Move)
	}
}

func TestMoveTime(t *testing.T) {
	eng := newTestEngine(1)
	b := board.NewBoard()

	start := time.Now()
	res := eng.Search(b, nil, Limits{MoveTime: 100 * time.Millisecond})
	elapsed := time.Since(start)

	if elapsed > 600*time.Millisecond {
		t.Errorf("movetime 100ms search took %v", elapsed)
	}
	if !isLegal(b, res.Move) {
		t.Errorf("best move %s is not legal", res.Move)
	}
}

func TestStopUnwinds(t *testing.T) {
	eng := newTestEngine(1)
	b := board.NewBoard()

	results := make(chan Result, 1)
	go func() {
		results <- eng.Search(b, nil, Limits{Infinite: true})
	}()

	time.Sleep(100 * time.Millisecond)
	eng.Stop()

	select {
	case res := <-results:
		if !isLegal(b, res.Move) {
			t.Errorf("best move %s is not legal", res.Move)
		}
		if res.Depth < 1 {
			t.Errorf("no completed depth after 100ms, got %d", res.Depth)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("search did not stop")
	}
}

// TestLazySMP runs the helper-thread configuration over positions with a
// forced result the threads must all agree on.
func TestLazySMP(t *testing.T) {
	eng := newTestEngine(4)

	b := mustFEN(t, "6k1/5ppp/8/8/8/8/8/4R1K1 w - - 0 1")
	res := eng.Search(b, nil, Limits{Depth: 6})
	if want := board.NewMove(board.E1, board.E8); res.Move != want {
		t.Errorf("best move = %s, want %s", res.Move, want)
	}
	if res.Score != MateScore-1 {
		t.Errorf("score = %d, want %d", res.Score, MateScore-1)
	}

	eng.NewGame()
	b = board.NewBoard()
	res = eng.Search(b, nil, Limits{Depth: 8})
	if !isLegal(b, res.Move) {
		t.Errorf("best move %s is not legal", res.Move)
	}
}

func TestRepetitionDetected(t *testing.T) {
	eng := newTestEngine(1)
	b := board.NewBoard()

	history := []uint64{b.Hash}
	for _, coord := range []string{"g1f3", "g8f6", "f3g1", "f6g8"} {
		m := b.FindMove(coord)
		if m == board.NoMove {
			t.Fatalf("move %s not found", coord)
		}
		b.MakeMove(m)
		history = append(history, b.Hash)
	}
	if b.Hash != history[0] {
		t.Fatal("knight shuffle should return to the starting hash")
	}

	tm := newTimeManager(Limits{Infinite: true}, b.Side)
	w := eng.newWorker(0, b, history, Limits{Infinite: true}, tm, board.NoMove)
	if !w.isRepetition() {
		t.Error("repeated position not detected")
	}

	// A fresh game with no history behind it is not a repetition.
	w2 := eng.newWorker(0, board.NewBoard(), nil, Limits{Infinite: true}, tm, board.NoMove)
	if w2.isRepetition() {
		t.Error("start position flagged as repetition")
	}
}

// TestSearchAfterStopReset: a stopped engine searches normally again.
func TestSearchAfterStopReset(t *testing.T) {
	eng := newTestEngine(1)
	eng.Stop()

	b := board.NewBoard()
	res := eng.Search(b, nil, Limits{Depth: 4})
	if res.Depth < 4 {
		t.Errorf("completed depth %d, want 4", res.Depth)
	}
	if !isLegal(b, res.Move) {
		t.Errorf("best move %s is not legal", res.Move)
	}
}
