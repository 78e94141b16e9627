package chessagent

import (
	"sort"

	chess "github.com/corentings/chess/v2"
)

// OrderMoves reorders legal moves to tighten alpha-beta pruning. It never
// affects search correctness, only how quickly cutoffs happen.
type OrderMoves func(b *Board, moves []chess.Move) []chess.Move

// StandardOrdering puts captures first (best victims first), then checks,
// then everything else. Relative order within checks and quiet moves is
// preserved.
func StandardOrdering(b *Board, moves []chess.Move) []chess.Move {
	var captures, checks, quiet []chess.Move
	for i := range moves {
		m := &moves[i]
		switch {
		case b.IsCapture(m):
			captures = append(captures, moves[i])
		case b.GivesCheck(m):
			checks = append(checks, moves[i])
		default:
			quiet = append(quiet, moves[i])
		}
	}
	sortByMVVLVA(b, captures)

	ordered := make([]chess.Move, 0, len(moves))
	ordered = append(ordered, captures...)
	ordered = append(ordered, checks...)
	ordered = append(ordered, quiet...)
	return ordered
}

// AggressiveOrdering additionally pulls moves that attack an enemy piece
// ahead of the remaining quiet moves.
func AggressiveOrdering(b *Board, moves []chess.Move) []chess.Move {
	var captures, checks, attacks, quiet []chess.Move
	for i := range moves {
		m := &moves[i]
		switch {
		case b.IsCapture(m):
			captures = append(captures, moves[i])
		case b.GivesCheck(m):
			checks = append(checks, moves[i])
		case attacksEnemyAfter(b, m):
			attacks = append(attacks, moves[i])
		default:
			quiet = append(quiet, moves[i])
		}
	}
	sortByMVVLVA(b, captures)

	ordered := make([]chess.Move, 0, len(moves))
	ordered = append(ordered, captures...)
	ordered = append(ordered, checks...)
	ordered = append(ordered, attacks...)
	ordered = append(ordered, quiet...)
	return ordered
}

func sortByMVVLVA(b *Board, captures []chess.Move) {
	sort.SliceStable(captures, func(i, j int) bool {
		return mvvLVAScore(b, &captures[i]) > mvvLVAScore(b, &captures[j])
	})
}

// mvvLVAScore is the Most Valuable Victim - Least Valuable Attacker
// heuristic. The attacker value is divided by 10 with truncation; the
// exact arithmetic is load-bearing for move order.
func mvvLVAScore(b *Board, m *chess.Move) int {
	victim := b.PieceAt(m.S2())
	attacker := b.PieceAt(m.S1())
	if victim == chess.NoPiece || attacker == chess.NoPiece {
		return 0
	}
	return pieceValues[victim.Type()] - pieceValues[attacker.Type()]/10
}

// attacksEnemyAfter reports whether the moved piece attacks at least one
// enemy piece once m has been played.
func attacksEnemyAfter(b *Board, m *chess.Move) bool {
	attacking := false
	b.WithMove(m, func() {
		attacking = len(b.AttacksFrom(m.S2())) > 0
	})
	return attacking
}
