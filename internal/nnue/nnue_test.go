package nnue

import (
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/mvander/riptide/internal/board"
)

// TestIncrementalMatchesRefresh plays random games and checks the
// incrementally updated accumulator stays bit-identical to a from-scratch
// refresh at every ply, and that popping restores the pre-move state.
func TestIncrementalMatchesRefresh(t *testing.T) {
	net := InitRandom(1)
	rng := rand.New(rand.NewSource(99))

	for game := 0; game < 10; game++ {
		b := board.NewBoard()
		var stack AccumulatorStack
		stack.Reset(net, b)

		for ply := 0; ply < 80; ply++ {
			var ml board.MoveList
			b.LegalMoves(&ml)
			if ml.Len() == 0 {
				break
			}
			m := ml.Get(rng.Intn(ml.Len()))
			before := *stack.Current()

			stack.Push()
			net.ApplyMove(stack.Current(), b, m)
			u := b.MakeMove(m)

			var fresh Accumulator
			net.Refresh(&fresh, b)
			if *stack.Current() != fresh {
				t.Fatalf("game %d ply %d: incremental accumulator diverged after %v in %s",
					game, ply, m, b.FEN())
			}

			b.UnmakeMove(m, u)
			stack.Pop()
			if *stack.Current() != before {
				t.Fatalf("game %d ply %d: pop did not restore the accumulator", game, ply)
			}

			stack.Push()
			net.ApplyMove(stack.Current(), b, m)
			b.MakeMove(m)
		}
	}
}

// TestMirrorSymmetry checks the mover-relative score of a position equals
// that of its color-flipped mirror, which holds for any weights because
// the two perspectives are exact mirrors of each other.
func TestMirrorSymmetry(t *testing.T) {
	net := InitRandom(2)
	fens := []string{
		board.StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		"4k3/8/8/8/8/8/4P3/4K3 w - - 0 1",
	}
	for _, fen := range fens {
		b, err := board.ParseFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		m := b.Mirror()

		var accB, accM Accumulator
		net.Refresh(&accB, b)
		net.Refresh(&accM, m)

		if got, want := net.Evaluate(&accM, m.Side), net.Evaluate(&accB, b.Side); got != want {
			t.Errorf("%s: eval %d but mirror evals to %d", fen, want, got)
		}
	}
}

func TestWeightsRoundTrip(t *testing.T) {
	net := InitRandom(3)
	path := filepath.Join(t.TempDir(), "test.rptn")

	if err := net.Save(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if *loaded != *net {
		t.Error("loaded network differs from saved one")
	}
}

func TestLoadFailsFast(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing", func(t *testing.T) {
		if _, err := Load(filepath.Join(dir, "nope.rptn")); err == nil {
			t.Error("loading a missing file should fail")
		}
	})

	t.Run("bad magic", func(t *testing.T) {
		path := filepath.Join(dir, "magic.rptn")
		if err := os.WriteFile(path, make([]byte, 64), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("zeroed header should be rejected")
		}
	})

	t.Run("wrong architecture", func(t *testing.T) {
		path := filepath.Join(dir, "arch.rptn")
		var buf [16]byte
		binary.LittleEndian.PutUint32(buf[0:], weightsMagic)
		binary.LittleEndian.PutUint32(buf[4:], weightsVersion)
		binary.LittleEndian.PutUint32(buf[8:], 40960)
		binary.LittleEndian.PutUint32(buf[12:], HiddenSize)
		if err := os.WriteFile(path, buf[:], 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); err == nil {
			t.Error("foreign architecture should be rejected")
		}
	})

	t.Run("truncated", func(t *testing.T) {
		good := filepath.Join(dir, "good.rptn")
		if err := InitRandom(4).Save(good); err != nil {
			t.Fatal(err)
		}
		data, err := os.ReadFile(good)
		if err != nil {
			t.Fatal(err)
		}
		bad := filepath.Join(dir, "short.rptn")
		if err := os.WriteFile(bad, data[:len(data)/2], 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(bad); err == nil {
			t.Error("truncated file should be rejected")
		}
	})
}

func TestInitRandomDeterministic(t *testing.T) {
	if *InitRandom(7) != *InitRandom(7) {
		t.Error("same seed should give the same network")
	}
	if *InitRandom(7) == *InitRandom(8) {
		t.Error("different seeds should differ")
	}
}
