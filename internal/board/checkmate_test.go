package board

import "testing"

func TestCheckmate(t *testing.T) {
	// Back rank mate: the black king on h8 is boxed in by its own pawns.
	b, err := ParseFEN("R6k/6pp/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if !b.InCheck() {
		t.Error("black should be in check")
	}
	if b.HasLegalMoves() {
		var ml MoveList
		b.LegalMoves(&ml)
		for i := 0; i < ml.Len(); i++ {
			t.Logf("unexpected move: %v", ml.Get(i))
		}
	}
	if !b.IsCheckmate() {
		t.Error("expected checkmate")
	}
	if b.IsStalemate() {
		t.Error("checkmate is not stalemate")
	}
}

func TestNotCheckmateKingTakes(t *testing.T) {
	// The checking rook on g8 is undefended and adjacent, so Kxg8 escapes.
	b, err := ParseFEN("6Rk/8/8/8/8/8/8/K7 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if b.IsCheckmate() {
		t.Error("king can capture the rook, not checkmate")
	}
}

func TestStalemate(t *testing.T) {
	// Classic corner stalemate: black to move, no check, no moves.
	b, err := ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if b.InCheck() {
		t.Error("stalemated king is not in check")
	}
	if !b.IsStalemate() {
		t.Error("expected stalemate")
	}
	if b.IsCheckmate() {
		t.Error("stalemate is not checkmate")
	}
}

func TestDoubleCheckOnlyKingMoves(t *testing.T) {
	// Knight on f6 and rook on e1 both check the king on e8.
	b, err := ParseFEN("4k3/8/5N2/8/8/8/8/K3R3 b - - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Checkers.Count() != 2 {
		t.Fatalf("expected double check, checkers = %d", b.Checkers.Count())
	}
	var ml MoveList
	b.LegalMoves(&ml)
	for i := 0; i < ml.Len(); i++ {
		if ml.Get(i).From() != E8 {
			t.Errorf("only king moves escape double check, got %v", ml.Get(i))
		}
	}
}
