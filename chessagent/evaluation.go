package chessagent

import (
	chess "github.com/corentings/chess/v2"
)

// MateScore is the sentinel returned for decisive checkmate positions.
const MateScore = 20000

const (
	mobilityWeight       = 2
	checkPenalty         = 50
	kingsideCastleBonus  = 20
	queensideCastleBonus = 15
	doubledPawnPenalty   = 20
	isolatedPawnPenalty  = 15
)

// pieceValues are the material values in centipawns.
var pieceValues = map[chess.PieceType]int{
	chess.Pawn:   100,
	chess.Knight: 320,
	chess.Bishop: 330,
	chess.Rook:   500,
	chess.Queen:  900,
	chess.King:   20000,
}

// Piece-square tables indexed by [rank][file] for White; Black mirrors
// the rank index.
var pawnTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{50, 50, 50, 50, 50, 50, 50, 50},
	{10, 10, 20, 30, 30, 20, 10, 10},
	{5, 5, 10, 25, 25, 10, 5, 5},
	{0, 0, 0, 20, 20, 0, 0, 0},
	{5, -5, -10, 0, 0, -10, -5, 5},
	{5, 10, 10, -20, -20, 10, 10, 5},
	{0, 0, 0, 0, 0, 0, 0, 0},
}

var knightTable = [8][8]int{
	{-50, -40, -30, -30, -30, -30, -40, -50},
	{-40, -20, 0, 0, 0, 0, -20, -40},
	{-30, 0, 10, 15, 15, 10, 0, -30},
	{-30, 5, 15, 20, 20, 15, 5, -30},
	{-30, 0, 15, 20, 20, 15, 0, -30},
	{-30, 5, 10, 15, 15, 10, 5, -30},
	{-40, -20, 0, 5, 5, 0, -20, -40},
	{-50, -40, -30, -30, -30, -30, -40, -50},
}

var bishopTable = [8][8]int{
	{-20, -10, -10, -10, -10, -10, -10, -20},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-10, 0, 5, 10, 10, 5, 0, -10},
	{-10, 5, 5, 10, 10, 5, 5, -10},
	{-10, 0, 10, 10, 10, 10, 0, -10},
	{-10, 10, 10, 10, 10, 10, 10, -10},
	{-10, 5, 0, 0, 0, 0, 5, -10},
	{-20, -10, -10, -10, -10, -10, -10, -20},
}

var rookTable = [8][8]int{
	{0, 0, 0, 0, 0, 0, 0, 0},
	{5, 10, 10, 10, 10, 10, 10, 5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{-5, 0, 0, 0, 0, 0, 0, -5},
	{0, 0, 0, 5, 5, 0, 0, 0},
}

var queenTable = [8][8]int{
	{-20, -10, -10, -5, -5, -10, -10, -20},
	{-10, 0, 0, 0, 0, 0, 0, -10},
	{-10, 0, 5, 5, 5, 5, 0, -10},
	{-5, 0, 5, 5, 5, 5, 0, -5},
	{0, 0, 5, 5, 5, 5, 0, -5},
	{-10, 5, 5, 5, 5, 5, 0, -10},
	{-10, 0, 5, 0, 0, 0, 0, -10},
	{-20, -10, -10, -5, -5, -10, -10, -20},
}

var kingMiddlegameTable = [8][8]int{
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-30, -40, -40, -50, -50, -40, -40, -30},
	{-20, -30, -30, -40, -40, -30, -30, -20},
	{-10, -20, -20, -20, -20, -20, -20, -10},
	{20, 20, 0, 0, 0, 0, 20, 20},
	{20, 30, 10, 0, 0, 10, 30, 20},
}

var kingEndgameTable = [8][8]int{
	{-50, -40, -30, -20, -20, -30, -40, -50},
	{-30, -20, -10, 0, 0, -10, -20, -30},
	{-30, -10, 20, 30, 30, 20, -10, -30},
	{-30, -10, 30, 40, 40, 30, -10, -30},
	{-30, -10, 30, 40, 40, 30, -10, -30},
	{-30, -10, 20, 30, 30, 20, -10, -30},
	{-30, -30, 0, 0, 0, 0, -30, -30},
	{-50, -30, -30, -30, -30, -30, -30, -50},
}

// Evaluator scores positions statically in centipawns. It holds no state;
// a zero value is ready to use.
type Evaluator struct{}

// Evaluate returns the position's score from the given perspective.
// Positive favors that color. Checkmate and draw states short-circuit to
// the sentinel values; otherwise material, piece placement, mobility,
// king safety, and pawn structure are summed.
func (e *Evaluator) Evaluate(b *Board, perspective chess.Color) int {
	if b.IsCheckmate() {
		// The side to move is the one being mated.
		if b.SideToMove() == perspective {
			return -MateScore
		}
		return MateScore
	}
	if b.IsStalemate() || b.HasInsufficientMaterial() {
		return 0
	}

	score := e.materialAndPosition(b)
	score += e.mobility(b)
	score += e.kingSafety(b)
	score += e.pawnStructure(b)

	if perspective == chess.Black {
		score = -score
	}
	return score
}

func (e *Evaluator) materialAndPosition(b *Board) int {
	score := 0
	endgame := e.isEndgame(b)
	for sq, piece := range b.Position().Board().SquareMap() {
		value := pieceValues[piece.Type()]
		table := pieceSquareTable(piece.Type(), endgame)
		rank, file := int(sq)/8, int(sq)%8
		if piece.Color() == chess.White {
			score += value + table[rank][file]
		} else {
			score -= value + table[7-rank][file]
		}
	}
	return score
}

func (e *Evaluator) mobility(b *Board) int {
	return (b.MobilityCount(chess.White) - b.MobilityCount(chess.Black)) * mobilityWeight
}

func (e *Evaluator) kingSafety(b *Board) int {
	score := 0
	if b.InCheck() {
		if b.SideToMove() == chess.White {
			score -= checkPenalty
		} else {
			score += checkPenalty
		}
	}
	if b.CanCastleKingside(chess.White) {
		score += kingsideCastleBonus
	}
	if b.CanCastleQueenside(chess.White) {
		score += queensideCastleBonus
	}
	if b.CanCastleKingside(chess.Black) {
		score -= kingsideCastleBonus
	}
	if b.CanCastleQueenside(chess.Black) {
		score -= queensideCastleBonus
	}
	return score
}

func (e *Evaluator) pawnStructure(b *Board) int {
	var whiteFiles, blackFiles [8]int
	for sq, piece := range b.Position().Board().SquareMap() {
		if piece.Type() != chess.Pawn {
			continue
		}
		if piece.Color() == chess.White {
			whiteFiles[int(sq)%8]++
		} else {
			blackFiles[int(sq)%8]++
		}
	}

	score := 0
	for file := 0; file < 8; file++ {
		if whiteFiles[file] > 1 {
			score -= doubledPawnPenalty * (whiteFiles[file] - 1)
		}
		if blackFiles[file] > 1 {
			score += doubledPawnPenalty * (blackFiles[file] - 1)
		}
	}
	score -= isolatedPawnPenalty * countIsolated(whiteFiles)
	score += isolatedPawnPenalty * countIsolated(blackFiles)
	return score
}

// countIsolated returns the number of pawns with no friendly pawn on an
// adjacent file.
func countIsolated(files [8]int) int {
	count := 0
	for file := 0; file < 8; file++ {
		if files[file] == 0 {
			continue
		}
		hasNeighbor := false
		if file > 0 && files[file-1] > 0 {
			hasNeighbor = true
		}
		if file < 7 && files[file+1] > 0 {
			hasNeighbor = true
		}
		if !hasNeighbor {
			count += files[file]
		}
	}
	return count
}

// isEndgame declares the endgame once the queens are gone or only a few
// rooks and minor pieces remain.
func (e *Evaluator) isEndgame(b *Board) bool {
	queens := b.CountPieces(chess.Queen, chess.White) + b.CountPieces(chess.Queen, chess.Black)
	if queens == 0 {
		return true
	}
	majors := b.CountPieces(chess.Rook, chess.White) + b.CountPieces(chess.Rook, chess.Black) +
		b.CountPieces(chess.Bishop, chess.White) + b.CountPieces(chess.Bishop, chess.Black) +
		b.CountPieces(chess.Knight, chess.White) + b.CountPieces(chess.Knight, chess.Black)
	return majors <= 6
}

func pieceSquareTable(pt chess.PieceType, endgame bool) *[8][8]int {
	switch pt {
	case chess.Pawn:
		return &pawnTable
	case chess.Knight:
		return &knightTable
	case chess.Bishop:
		return &bishopTable
	case chess.Rook:
		return &rookTable
	case chess.Queen:
		return &queenTable
	case chess.King:
		if endgame {
			return &kingEndgameTable
		}
		return &kingMiddlegameTable
	}
	return &emptyTable
}

var emptyTable [8][8]int
