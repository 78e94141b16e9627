package chessagent

import (
	"math/rand"
	"testing"
	"time"

	chess "github.com/corentings/chess/v2"
)

func newTestAgent(t *testing.T, difficulty Difficulty, color chess.Color, seed int64) *Agent {
	t.Helper()
	a, err := NewAgent(difficulty, color, WithRand(rand.New(rand.NewSource(seed))))
	if err != nil {
		t.Fatalf("failed to build agent: %v", err)
	}
	return a
}

func containsMove(moves []chess.Move, m *chess.Move) bool {
	for i := range moves {
		if moves[i].String() == m.String() {
			return true
		}
	}
	return false
}

func TestSelectMoveReturnsLegalMove(t *testing.T) {
	b := NewBoard()
	before := b.FEN()
	agent := newTestAgent(t, DifficultyMedium, chess.White, 1)

	move := agent.SelectMove(b, WithTimeLimit(2*time.Second))
	if move == nil {
		t.Fatal("expected a move from the starting position")
	}
	if !containsMove(b.LegalMoves(), move) {
		t.Errorf("selected move %s is not legal", move)
	}
	if after := b.FEN(); after != before {
		t.Errorf("search mutated the position: %q != %q", after, before)
	}
	if agent.NodesSearched() == 0 {
		t.Error("expected search to visit nodes")
	}
}

func TestSelectMoveNoLegalMoves(t *testing.T) {
	t.Run("stalemate", func(t *testing.T) {
		b := mustBoard(t, stalemateFEN)
		agent := newTestAgent(t, DifficultyMedium, chess.Black, 1)
		if move := agent.SelectMove(b); move != nil {
			t.Errorf("expected nil move in stalemate, got %s", move)
		}
	})

	t.Run("checkmate", func(t *testing.T) {
		b := mustBoard(t, foolsMateFEN)
		agent := newTestAgent(t, DifficultyMedium, chess.White, 1)
		if move := agent.SelectMove(b); move != nil {
			t.Errorf("expected nil move in checkmate, got %s", move)
		}
	})
}

func TestSelectMoveFindsMateInOne(t *testing.T) {
	b := mustBoard(t, mateInOneFEN)
	before := b.FEN()
	agent := newTestAgent(t, DifficultyExpert, chess.White, 1)

	move := agent.SelectMove(b, WithTimeLimit(2*time.Second))
	if move == nil {
		t.Fatal("expected a move")
	}
	if move.String() != "a1a8" {
		t.Fatalf("expected the mating move a1a8, got %s", move)
	}

	e := &Evaluator{}
	b.WithMove(move, func() {
		if score := e.Evaluate(b, chess.White); score != MateScore {
			t.Errorf("expected mate sentinel %d after mating move, got %d", MateScore, score)
		}
	})
	if after := b.FEN(); after != before {
		t.Errorf("search mutated the position: %q != %q", after, before)
	}
}

func TestExpertIsDeterministic(t *testing.T) {
	b := mustBoard(t, mateInOneFEN)
	first := newTestAgent(t, DifficultyExpert, chess.White, 7).SelectMove(b, WithTimeLimit(2*time.Second))
	second := newTestAgent(t, DifficultyExpert, chess.White, 99).SelectMove(b, WithTimeLimit(2*time.Second))
	if first == nil || second == nil {
		t.Fatal("expected moves from both runs")
	}
	if first.String() != second.String() {
		t.Errorf("expert runs disagreed: %s vs %s", first, second)
	}
}

func TestEasyProducesVariedMoves(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	agent, err := NewAgent(DifficultyEasy, chess.White, WithRand(rng))
	if err != nil {
		t.Fatalf("failed to build agent: %v", err)
	}

	seen := map[string]bool{}
	for i := 0; i < 12; i++ {
		b := NewBoard()
		move := agent.SelectMove(b, WithTimeLimit(time.Second))
		if move == nil {
			t.Fatal("expected a move")
		}
		seen[move.String()] = true
	}
	if len(seen) < 2 {
		t.Errorf("easy difficulty should vary its moves, got only %v", seen)
	}
}

func TestDeeperSearchNeverScoresWorse(t *testing.T) {
	b := mustBoard(t, mateInOneFEN)
	agent := newTestAgent(t, DifficultyExpert, chess.White, 1)
	deadline := time.Now().Add(time.Hour)

	previous := 0
	for depth := 1; depth <= 3; depth++ {
		move, score := agent.searchRoot(b, depth, deadline)
		if move == nil {
			t.Fatalf("expected a move at depth %d", depth)
		}
		t.Logf("depth %d: %s scores %d", depth, move, score)
		if depth > 1 && score < previous {
			t.Errorf("depth %d scored %d, worse than depth %d's %d", depth, score, depth-1, previous)
		}
		previous = score
	}
}

func TestRandomAgentReturnsLegalMove(t *testing.T) {
	b := NewBoard()
	agent := NewRandomAgent(chess.White, WithRand(rand.New(rand.NewSource(1))))
	move := agent.SelectMove(b)
	if move == nil {
		t.Fatal("expected a move")
	}
	if !containsMove(b.LegalMoves(), move) {
		t.Errorf("random move %s is not legal", move)
	}
	if agent.NodesSearched() != 0 {
		t.Error("random agent should not search")
	}
}

func TestAggressiveAgentFindsMateInOne(t *testing.T) {
	b := mustBoard(t, mateInOneFEN)
	agent, err := NewAggressiveAgent(DifficultyExpert, chess.White, WithRand(rand.New(rand.NewSource(1))))
	if err != nil {
		t.Fatalf("failed to build agent: %v", err)
	}
	move := agent.SelectMove(b, WithTimeLimit(2*time.Second))
	if move == nil || move.String() != "a1a8" {
		t.Errorf("expected a1a8, got %v", move)
	}
}

func TestUnknownDifficulty(t *testing.T) {
	if _, err := NewAgent(Difficulty("grandmaster"), chess.White); err == nil {
		t.Error("expected error for unknown difficulty")
	}
}
