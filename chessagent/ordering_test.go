package chessagent

import (
	"testing"

	chess "github.com/corentings/chess/v2"
)

func moveIndex(moves []chess.Move, uci string) int {
	for i := range moves {
		if moves[i].String() == uci {
			return i
		}
	}
	return -1
}

func TestStandardOrderingCapturesFirst(t *testing.T) {
	b := mustBoard(t, afterE4D5FEN)
	moves := b.LegalMoves()
	ordered := StandardOrdering(b, moves)

	if len(ordered) != len(moves) {
		t.Fatalf("ordering changed move count: %d != %d", len(ordered), len(moves))
	}
	if ordered[0].String() != "e4d5" {
		t.Errorf("expected the capture e4d5 first, got %s", ordered[0].String())
	}
}

func TestMVVLVAPrefersCheapAttacker(t *testing.T) {
	// Both the e4 pawn and the d1 queen can take the d5 queen. The pawn
	// capture scores 900-100/10=890, the queen capture 900-900/10=810.
	b := mustBoard(t, "k7/8/8/3q4/4P3/8/8/3QK3 w - - 0 1")
	ordered := StandardOrdering(b, b.LegalMoves())

	pawnTakes := moveIndex(ordered, "e4d5")
	queenTakes := moveIndex(ordered, "d1d5")
	if pawnTakes == -1 || queenTakes == -1 {
		t.Fatalf("expected both captures in %v", ordered)
	}
	if pawnTakes > queenTakes {
		t.Errorf("pawn capture at %d should come before queen capture at %d", pawnTakes, queenTakes)
	}
}

func TestAggressiveOrderingPrefersAttackingMoves(t *testing.T) {
	// After 1...e5 the knight jump g1f3 attacks the e5 pawn while a2a3
	// attacks nothing.
	b := mustBoard(t, "rnbqkbnr/pppp1ppp/8/4p3/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 2")
	ordered := AggressiveOrdering(b, b.LegalMoves())

	knight := moveIndex(ordered, "g1f3")
	rookPawn := moveIndex(ordered, "a2a3")
	if knight == -1 || rookPawn == -1 {
		t.Fatalf("expected both moves in %v", ordered)
	}
	if knight > rookPawn {
		t.Errorf("attacking move g1f3 at %d should come before quiet a2a3 at %d", knight, rookPawn)
	}
}

func TestOrderingDoesNotMutateBoard(t *testing.T) {
	b := mustBoard(t, afterE4D5FEN)
	StandardOrdering(b, b.LegalMoves())
	AggressiveOrdering(b, b.LegalMoves())
	if b.FEN() != afterE4D5FEN {
		t.Errorf("ordering mutated the position: %q", b.FEN())
	}
}
