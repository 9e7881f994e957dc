package board

import "testing"

func runPerft(t *testing.T, fen string, counts []int64) {
	t.Helper()
	b, err := ParseFEN(fen)
	if err != nil {
		t.Fatalf("ParseFEN(%q): %v", fen, err)
	}
	for depth, want := range counts {
		if got := Perft(b, depth+1); got != want {
			t.Errorf("perft(%d) = %d, want %d", depth+1, got, want)
		}
	}
}

func TestPerftStartingPosition(t *testing.T) {
	runPerft(t, StartFEN, []int64{20, 400, 8902, 197281})
	// Depth 5 is 4865609, enable for thorough runs.
}

// Kiwipete exercises castling, en passant, promotions and pins all at once.
func TestPerftKiwipete(t *testing.T) {
	runPerft(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		[]int64{48, 2039, 97862})
}

func TestPerftPosition3(t *testing.T) {
	runPerft(t, "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -",
		[]int64{14, 191, 2812, 43238})
}

func TestPerftPromotions(t *testing.T) {
	runPerft(t, "n1n5/PPPk4/8/8/8/8/4Kppp/5N1N b - - 0 1",
		[]int64{24, 496, 9483})
}

// The black pawn on e4 may not capture d4 en passant: the capture removes
// both pawns from the fourth rank and exposes the black king to the rook.
func TestPerftEnPassantPin(t *testing.T) {
	b, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatal(err)
	}
	var ml MoveList
	b.LegalMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i).IsEnPassant() {
			t.Errorf("en passant %v should be illegal here", ml.Get(i))
		}
	}
	runPerft(t, "8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1", []int64{6, 94})
}
