package chessagent

import (
	"encoding/json"
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// MoveAnalysis is a read-only diagnostic report for a single move in a
// given position. It is not part of the search algorithm.
type MoveAnalysis struct {
	Move          *chess.Move
	SAN           string
	IsCapture     bool
	IsCheck       bool
	IsCastle      bool
	Promotion     chess.PieceType
	ScoreChange   int
	Evaluation    int
	Comments      []string
	NodesSearched int
	Difficulty    Difficulty
	SearchDepth   int
}

func (m *MoveAnalysis) String() string {
	return fmt.Sprintf("%s (eval: %d, change: %+d, comments: %s)",
		m.SAN, m.Evaluation, m.ScoreChange, strings.Join(m.Comments, "; "))
}

// moveAnalysisJSON is the JSON representation of MoveAnalysis
type moveAnalysisJSON struct {
	Move          string   `json:"move"`
	SAN           string   `json:"san"`
	IsCapture     bool     `json:"isCapture"`
	IsCheck       bool     `json:"isCheck"`
	IsCastle      bool     `json:"isCastle"`
	Promotion     string   `json:"promotion,omitempty"`
	ScoreChange   int      `json:"scoreChange"`
	Evaluation    int      `json:"evaluation"`
	Comments      []string `json:"comments"`
	NodesSearched int      `json:"nodesSearched,omitempty"`
	Difficulty    string   `json:"difficulty,omitempty"`
	SearchDepth   int      `json:"searchDepth,omitempty"`
}

// MarshalJSON implements custom JSON serialization for MoveAnalysis
func (m *MoveAnalysis) MarshalJSON() ([]byte, error) {
	moveText := ""
	if m.Move != nil {
		moveText = m.Move.String()
	}
	return json.Marshal(moveAnalysisJSON{
		Move:          moveText,
		SAN:           m.SAN,
		IsCapture:     m.IsCapture,
		IsCheck:       m.IsCheck,
		IsCastle:      m.IsCastle,
		Promotion:     pieceName(m.Promotion),
		ScoreChange:   m.ScoreChange,
		Evaluation:    m.Evaluation,
		Comments:      m.Comments,
		NodesSearched: m.NodesSearched,
		Difficulty:    string(m.Difficulty),
		SearchDepth:   m.SearchDepth,
	})
}

// AnalyzeMove reports what m does in the current position: its notation,
// capture/check/castle/promotion flags, and the one-ply evaluation change
// it causes. The board is unchanged afterwards.
func (a *Agent) AnalyzeMove(b *Board, m *chess.Move) *MoveAnalysis {
	analysis := &MoveAnalysis{
		Move:      m,
		SAN:       b.SAN(m),
		IsCapture: b.IsCapture(m),
		IsCheck:   b.GivesCheck(m),
		IsCastle:  b.IsCastle(m),
		Promotion: m.Promo(),
	}

	initial := a.evaluator.Evaluate(b, a.color)
	var final int
	b.WithMove(m, func() {
		final = a.evaluator.Evaluate(b, a.color)
	})
	analysis.ScoreChange = final - initial
	analysis.Evaluation = final

	if analysis.IsCapture {
		if victim := b.PieceAt(m.S2()); victim != chess.NoPiece {
			analysis.Comments = append(analysis.Comments, "Captures "+pieceName(victim.Type()))
		}
	}
	if analysis.IsCheck {
		analysis.Comments = append(analysis.Comments, "Gives check")
	}
	if analysis.IsCastle {
		analysis.Comments = append(analysis.Comments, "Castling")
	}
	if analysis.Promotion != chess.NoPieceType {
		analysis.Comments = append(analysis.Comments, "Promotes to "+pieceName(analysis.Promotion))
	}

	return analysis
}

// MoveSuggestion pairs a selected move with its analysis.
type MoveSuggestion struct {
	Move     *chess.Move
	Analysis *MoveAnalysis
}

// SuggestMove selects a move and annotates it with analysis and search
// diagnostics. Move and Analysis are nil when there is no legal move.
func (a *Agent) SuggestMove(b *Board, opts ...SearchOption) *MoveSuggestion {
	move := a.SelectMove(b, opts...)
	if move == nil {
		return &MoveSuggestion{}
	}

	analysis := a.AnalyzeMove(b, move)
	analysis.NodesSearched = a.nodesSearched
	analysis.Difficulty = a.difficulty
	analysis.SearchDepth = a.depth

	log.Info("move suggested",
		"move", analysis.SAN, "difficulty", a.difficulty, "nodes", a.nodesSearched)
	return &MoveSuggestion{Move: move, Analysis: analysis}
}

func pieceName(pt chess.PieceType) string {
	switch pt {
	case chess.King:
		return "king"
	case chess.Queen:
		return "queen"
	case chess.Rook:
		return "rook"
	case chess.Bishop:
		return "bishop"
	case chess.Knight:
		return "knight"
	case chess.Pawn:
		return "pawn"
	}
	return ""
}
