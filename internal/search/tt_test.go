package search

import (
	"sync"
	"testing"

	"github.com/mvander/riptide/internal/board"
)

func TestTableStoreProbe(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0xABCDEF0123456789)

	if _, ok := tt.Probe(hash); ok {
		t.Fatal("probe of empty table should miss")
	}

	want := Entry{Move: board.NewMove(board.E2, board.E4), Score: 42, Depth: 7, Bound: BoundExact}
	tt.Store(hash, want)

	got, ok := tt.Probe(hash)
	if !ok {
		t.Fatal("expected a hit")
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}

	if _, ok := tt.Probe(hash ^ 1); ok {
		t.Error("different hash should miss")
	}
}

func TestTableDepthPreferred(t *testing.T) {
	tt := NewTable(1)
	hash := uint64(0x1111111111111111)
	other := hash + uint64(len(tt.slots)) // same slot, different hash

	deep := Entry{Move: board.NewMove(board.D2, board.D4), Score: 10, Depth: 12, Bound: BoundExact}
	tt.Store(hash, deep)

	// A shallower entry for a different position must not evict it.
	tt.Store(other, Entry{Move: board.NewMove(board.A2, board.A3), Score: -5, Depth: 3, Bound: BoundUpper})
	if got, ok := tt.Probe(hash); !ok || got != deep {
		t.Errorf("shallow entry evicted a deep one: ok=%v got=%+v", ok, got)
	}

	// The same position always updates, even at lower depth.
	update := Entry{Move: board.NewMove(board.D2, board.D4), Score: 20, Depth: 5, Bound: BoundLower}
	tt.Store(hash, update)
	if got, _ := tt.Probe(hash); got != update {
		t.Errorf("same-position update was refused: %+v", got)
	}

	// After aging, the old entry loses its priority.
	tt.NextGeneration()
	shallow := Entry{Move: board.NewMove(board.A2, board.A3), Score: -5, Depth: 3, Bound: BoundUpper}
	tt.Store(other, shallow)
	if got, ok := tt.Probe(other); !ok || got != shallow {
		t.Errorf("stale entry survived a generation change: ok=%v got=%+v", ok, got)
	}
}

func TestTableClear(t *testing.T) {
	tt := NewTable(1)
	tt.Store(99, Entry{Move: board.NewMove(board.E2, board.E4), Depth: 5, Bound: BoundExact})
	tt.Clear()
	if _, ok := tt.Probe(99); ok {
		t.Error("entry survived Clear")
	}
	if tt.HashFull() != 0 {
		t.Error("cleared table should report empty")
	}
}

func TestMateScoreAdjustment(t *testing.T) {
	// A mate found 5 plies into this subtree, stored at ply 3 and probed
	// at ply 7, must still mean "mate in 5 from the probing node".
	score := MateScore - 8 // mate at ply 8, seen from ply 3
	stored := scoreToTT(score, 3)
	if got := scoreFromTT(stored, 3); got != score {
		t.Errorf("round trip at same ply: got %d, want %d", got, score)
	}
	if got := scoreFromTT(stored, 7); got != MateScore-12 {
		t.Errorf("probe at deeper ply: got %d, want %d", got, MateScore-12)
	}

	negScore := -(MateScore - 8)
	if got := scoreFromTT(scoreToTT(negScore, 3), 3); got != negScore {
		t.Errorf("negative mate round trip: got %d, want %d", got, negScore)
	}
}

// TestTableNoTornReads hammers one small table from racing writers and
// readers. Every stored entry satisfies Score == int16(Move), so a probe
// returning an entry that violates the relation observed a torn write.
// Readers walk the same hash streams as the writers so they actually hit.
func TestTableNoTornReads(t *testing.T) {
	next := func(x uint64) uint64 {
		return x*6364136223846793005 + 1442695040888963407
	}

	tt := NewTable(1)
	stop := make(chan struct{})
	var writers, readers sync.WaitGroup

	for w := 1; w <= 4; w++ {
		writers.Add(1)
		go func(seed uint64) {
			defer writers.Done()
			rng := seed
			for {
				select {
				case <-stop:
					return
				default:
				}
				rng = next(rng)
				mv := board.Move(rng >> 32)
				tt.Store(rng, Entry{Move: mv, Score: int16(mv), Depth: int8(rng >> 56), Bound: Bound(rng>>48) & 3})
			}
		}(uint64(w))
	}

	for w := 1; w <= 4; w++ {
		readers.Add(1)
		go func(seed uint64) {
			defer readers.Done()
			rng := seed
			for i := 0; i < 300000; i++ {
				rng = next(rng)
				if e, ok := tt.Probe(rng); ok {
					if e.Score != int16(e.Move) {
						t.Errorf("torn entry: move %v score %d", e.Move, e.Score)
						return
					}
				}
			}
		}(uint64(w))
	}

	readers.Wait()
	close(stop)
	writers.Wait()
}
