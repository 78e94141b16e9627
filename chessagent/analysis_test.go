package chessagent

import (
	"encoding/json"
	"testing"
	"time"

	chess "github.com/corentings/chess/v2"
)

func TestAnalyzeCapture(t *testing.T) {
	b := mustBoard(t, afterE4D5FEN)
	agent := newTestAgent(t, DifficultyMedium, chess.White, 1)

	m, err := b.FindMove(chess.NewSquare(chess.FileE, chess.Rank4), chess.NewSquare(chess.FileD, chess.Rank5), chess.NoPieceType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	analysis := agent.AnalyzeMove(b, m)

	if !analysis.IsCapture {
		t.Error("exd5 should be flagged as a capture")
	}
	if analysis.SAN != "exd5" {
		t.Errorf("expected SAN exd5, got %s", analysis.SAN)
	}
	if !containsComment(analysis.Comments, "Captures pawn") {
		t.Errorf("expected a capture comment, got %v", analysis.Comments)
	}
	if b.FEN() != afterE4D5FEN {
		t.Error("analysis mutated the position")
	}
}

func TestAnalyzeCastling(t *testing.T) {
	b := mustBoard(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	agent := newTestAgent(t, DifficultyMedium, chess.White, 1)

	m, err := b.FindMove(chess.NewSquare(chess.FileE, chess.Rank1), chess.NewSquare(chess.FileG, chess.Rank1), chess.NoPieceType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	analysis := agent.AnalyzeMove(b, m)

	if !analysis.IsCastle {
		t.Error("O-O should be flagged as castling")
	}
	if analysis.SAN != "O-O" {
		t.Errorf("expected SAN O-O, got %s", analysis.SAN)
	}
	if !containsComment(analysis.Comments, "Castling") {
		t.Errorf("expected a castling comment, got %v", analysis.Comments)
	}
}

func TestAnalyzePromotion(t *testing.T) {
	b := mustBoard(t, promotionFEN)
	agent := newTestAgent(t, DifficultyMedium, chess.White, 1)

	m, err := b.FindMove(chess.NewSquare(chess.FileA, chess.Rank7), chess.NewSquare(chess.FileA, chess.Rank8), chess.NoPieceType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	analysis := agent.AnalyzeMove(b, m)

	if analysis.Promotion != chess.Queen {
		t.Errorf("expected queen promotion, got %v", analysis.Promotion)
	}
	if !containsComment(analysis.Comments, "Promotes to queen") {
		t.Errorf("expected a promotion comment, got %v", analysis.Comments)
	}
}

func TestSuggestMoveAnnotates(t *testing.T) {
	b := NewBoard()
	before := b.FEN()
	agent := newTestAgent(t, DifficultyMedium, chess.White, 1)

	suggestion := agent.SuggestMove(b, WithTimeLimit(2*time.Second))
	if suggestion.Move == nil || suggestion.Analysis == nil {
		t.Fatal("expected a move with analysis")
	}
	if suggestion.Analysis.NodesSearched == 0 {
		t.Error("expected search diagnostics in the analysis")
	}
	if suggestion.Analysis.Difficulty != DifficultyMedium {
		t.Errorf("expected difficulty medium, got %s", suggestion.Analysis.Difficulty)
	}
	if b.FEN() != before {
		t.Error("suggestion mutated the position")
	}
}

func TestSuggestMoveNoLegalMoves(t *testing.T) {
	b := mustBoard(t, stalemateFEN)
	agent := newTestAgent(t, DifficultyMedium, chess.Black, 1)

	suggestion := agent.SuggestMove(b)
	if suggestion.Move != nil || suggestion.Analysis != nil {
		t.Errorf("expected empty suggestion, got %+v", suggestion)
	}
}

func TestMoveAnalysisJSON(t *testing.T) {
	b := mustBoard(t, afterE4D5FEN)
	agent := newTestAgent(t, DifficultyMedium, chess.White, 1)

	m, err := b.FindMove(chess.NewSquare(chess.FileE, chess.Rank4), chess.NewSquare(chess.FileD, chess.Rank5), chess.NoPieceType)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(agent.AnalyzeMove(b, m))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["move"] != "e4d5" {
		t.Errorf("expected move e4d5, got %v", decoded["move"])
	}
	if decoded["san"] != "exd5" {
		t.Errorf("expected san exd5, got %v", decoded["san"])
	}
	if decoded["isCapture"] != true {
		t.Error("expected isCapture true")
	}
}

func containsComment(comments []string, want string) bool {
	for _, c := range comments {
		if c == want {
			return true
		}
	}
	return false
}
