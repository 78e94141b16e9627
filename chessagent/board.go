package chessagent

import (
	"fmt"
	"strings"

	chess "github.com/corentings/chess/v2"
)

// Board is the position handle the agent searches on. It wraps a
// chess.Position with an apply/undo stack: Push records the current
// position before advancing, Pop restores it, so any balanced sequence of
// pushes and pops leaves the handle exactly as it was.
type Board struct {
	pos   *chess.Position
	stack []*chess.Position
}

// NewBoard returns a board at the standard starting position.
func NewBoard() *Board {
	return &Board{pos: chess.StartingPosition()}
}

// NewBoardFromFEN returns a board at the position described by fen.
func NewBoardFromFEN(fen string) (*Board, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("parse FEN %q: %w", fen, err)
	}
	return &Board{pos: chess.NewGame(opt).Position()}, nil
}

// Position returns the current position.
func (b *Board) Position() *chess.Position {
	return b.pos
}

// FEN returns the current position serialized as a FEN string.
func (b *Board) FEN() string {
	return b.pos.String()
}

// LegalMoves returns the legal moves for the side to move.
func (b *Board) LegalMoves() []chess.Move {
	return b.pos.ValidMoves()
}

// Push applies m to the board. The move must be legal in the current
// position.
func (b *Board) Push(m *chess.Move) {
	b.stack = append(b.stack, b.pos)
	b.pos = b.pos.Update(m)
}

// Pop undoes the most recently pushed move. It panics if there is nothing
// to undo; an unbalanced Pop is a programming error, not a runtime
// condition.
func (b *Board) Pop() {
	n := len(b.stack)
	if n == 0 {
		panic("chessagent: Pop on empty move stack")
	}
	b.pos = b.stack[n-1]
	b.stack = b.stack[:n-1]
}

// WithMove applies m, runs fn, and undoes the move again. The undo happens
// even if fn panics, so search code stays balanced on every exit path.
func (b *Board) WithMove(m *chess.Move, fn func()) {
	b.Push(m)
	defer b.Pop()
	fn()
}

// SideToMove returns the color whose turn it is.
func (b *Board) SideToMove() chess.Color {
	return b.pos.Turn()
}

// PieceAt returns the piece on sq, or chess.NoPiece.
func (b *Board) PieceAt(sq chess.Square) chess.Piece {
	return b.pos.Board().Piece(sq)
}

// CountPieces returns the number of pieces of the given type and color on
// the board.
func (b *Board) CountPieces(pt chess.PieceType, c chess.Color) int {
	count := 0
	for _, p := range b.pos.Board().SquareMap() {
		if p.Type() == pt && p.Color() == c {
			count++
		}
	}
	return count
}

// InCheck reports whether the side to move is in check. The library keeps
// its check state private, so this asks the attack map whether any enemy
// piece reaches the king's square.
func (b *Board) InCheck() bool {
	side := b.SideToMove()
	king := b.kingSquare(side)
	if king == chess.NoSquare {
		return false
	}
	for sq, p := range b.pos.Board().SquareMap() {
		if p.Color() == side {
			continue
		}
		for _, target := range b.attackSquares(sq, p) {
			if target == king {
				return true
			}
		}
	}
	return false
}

// kingSquare returns the square of c's king, or chess.NoSquare.
func (b *Board) kingSquare(c chess.Color) chess.Square {
	for sq, p := range b.pos.Board().SquareMap() {
		if p.Type() == chess.King && p.Color() == c {
			return sq
		}
	}
	return chess.NoSquare
}

// IsCheckmate reports whether the side to move is checkmated.
func (b *Board) IsCheckmate() bool {
	return b.pos.Status() == chess.Checkmate
}

// IsStalemate reports whether the side to move is stalemated.
func (b *Board) IsStalemate() bool {
	return b.pos.Status() == chess.Stalemate
}

// HasInsufficientMaterial reports whether neither side can possibly
// deliver checkmate: bare kings, a lone minor piece, or same-colored
// bishops only.
func (b *Board) HasInsufficientMaterial() bool {
	pieces := b.pos.Board().SquareMap()
	counts := map[chess.PieceType]int{}
	lightBishops, darkBishops := 0, 0
	for sq, p := range pieces {
		counts[p.Type()]++
		if p.Type() == chess.Bishop {
			if (int(sq)/8+int(sq)%8)%2 == 0 {
				darkBishops++
			} else {
				lightBishops++
			}
		}
	}
	if counts[chess.Queen] > 0 || counts[chess.Rook] > 0 || counts[chess.Pawn] > 0 {
		return false
	}
	if counts[chess.Bishop]+counts[chess.Knight] <= 1 {
		return true
	}
	// bishops only, all on the same square color
	if counts[chess.Knight] == 0 && (lightBishops == 0 || darkBishops == 0) {
		return true
	}
	return false
}

// IsGameOver reports whether the position is terminal for search purposes.
func (b *Board) IsGameOver() bool {
	return b.IsCheckmate() || b.IsStalemate() || b.HasInsufficientMaterial()
}

// Outcome returns the game result once the position is terminal, and
// chess.NoOutcome otherwise.
func (b *Board) Outcome() chess.Outcome {
	switch {
	case b.IsCheckmate():
		if b.SideToMove() == chess.White {
			return chess.BlackWon
		}
		return chess.WhiteWon
	case b.IsStalemate(), b.HasInsufficientMaterial():
		return chess.Draw
	}
	return chess.NoOutcome
}

// CanCastleKingside reports whether c retains kingside castling rights.
func (b *Board) CanCastleKingside(c chess.Color) bool {
	return b.pos.CastleRights().CanCastle(c, chess.KingSide)
}

// CanCastleQueenside reports whether c retains queenside castling rights.
func (b *Board) CanCastleQueenside(c chess.Color) bool {
	return b.pos.CastleRights().CanCastle(c, chess.QueenSide)
}

// IsCapture reports whether m takes a piece, en passant included.
func (b *Board) IsCapture(m *chess.Move) bool {
	return m.HasTag(chess.Capture) || m.HasTag(chess.EnPassant)
}

// GivesCheck reports whether m puts the opponent in check.
func (b *Board) GivesCheck(m *chess.Move) bool {
	return m.HasTag(chess.Check)
}

// IsCastle reports whether m castles on either side.
func (b *Board) IsCastle(m *chess.Move) bool {
	return m.HasTag(chess.KingSideCastle) || m.HasTag(chess.QueenSideCastle)
}

// SAN returns m in standard algebraic notation for the current position.
func (b *Board) SAN(m *chess.Move) string {
	return chess.AlgebraicNotation{}.Encode(b.pos, m)
}

// UCI returns m in UCI notation.
func (b *Board) UCI(m *chess.Move) string {
	return chess.UCINotation{}.Encode(b.pos, m)
}

// FindMove resolves an origin/destination pair to a legal move. If promo is
// set, the matching promotion variant is returned; otherwise a promoting
// pair defaults to the queen.
func (b *Board) FindMove(from, to chess.Square, promo chess.PieceType) (*chess.Move, error) {
	moves := b.pos.ValidMoves()
	for i := range moves {
		m := &moves[i]
		if m.S1() != from || m.S2() != to {
			continue
		}
		if promo != chess.NoPieceType {
			if m.Promo() != promo {
				continue
			}
		} else if m.Promo() != chess.NoPieceType && m.Promo() != chess.Queen {
			continue
		}
		return m, nil
	}
	return nil, fmt.Errorf("no legal move from %s to %s", from, to)
}

// MobilityCount returns the number of legal moves c would have if it were
// its turn. For the side not on move the position is rebuilt with the turn
// flag flipped; the original position is untouched.
func (b *Board) MobilityCount(c chess.Color) int {
	if b.pos.Turn() == c {
		return len(b.pos.ValidMoves())
	}
	pos, err := b.withTurn(c)
	if err != nil {
		log.Warn("mobility probe failed", "fen", b.FEN(), "error", err)
		return 0
	}
	return len(pos.ValidMoves())
}

// AttacksFrom returns the squares holding enemy pieces attacked by the
// piece on sq. Attacks are raw: pins and the side to move are ignored, so
// a pinned piece still reports its targets.
func (b *Board) AttacksFrom(sq chess.Square) []chess.Square {
	piece := b.PieceAt(sq)
	if piece == chess.NoPiece {
		return nil
	}
	var targets []chess.Square
	for _, target := range b.attackSquares(sq, piece) {
		if victim := b.PieceAt(target); victim != chess.NoPiece && victim.Color() != piece.Color() {
			targets = append(targets, target)
		}
	}
	return targets
}

var knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
var kingSteps = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
var rookDirections = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
var bishopDirections = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// attackSquares returns every square piece attacks from sq on the current
// board, pins and turn ignored. Sliding pieces stop at the first occupied
// square, which is included. The library does not export its attack maps,
// so the geometry lives here.
func (b *Board) attackSquares(sq chess.Square, piece chess.Piece) []chess.Square {
	rank, file := int(sq)/8, int(sq)%8
	var out []chess.Square
	add := func(r, f int) {
		if r >= 0 && r < 8 && f >= 0 && f < 8 {
			out = append(out, chess.Square(r*8+f))
		}
	}
	slide := func(directions [4][2]int) {
		for _, d := range directions {
			for r, f := rank+d[0], file+d[1]; r >= 0 && r < 8 && f >= 0 && f < 8; r, f = r+d[0], f+d[1] {
				target := chess.Square(r*8 + f)
				out = append(out, target)
				if b.PieceAt(target) != chess.NoPiece {
					break
				}
			}
		}
	}

	switch piece.Type() {
	case chess.Pawn:
		forward := 1
		if piece.Color() == chess.Black {
			forward = -1
		}
		add(rank+forward, file-1)
		add(rank+forward, file+1)
	case chess.Knight:
		for _, s := range knightSteps {
			add(rank+s[0], file+s[1])
		}
	case chess.King:
		for _, s := range kingSteps {
			add(rank+s[0], file+s[1])
		}
	case chess.Rook:
		slide(rookDirections)
	case chess.Bishop:
		slide(bishopDirections)
	case chess.Queen:
		slide(rookDirections)
		slide(bishopDirections)
	}
	return out
}

// withTurn rebuilds the current position with c to move. The en passant
// field is cleared since a target square is meaningless for the other
// mover.
func (b *Board) withTurn(c chess.Color) (*chess.Position, error) {
	fields := strings.Fields(b.pos.String())
	if len(fields) != 6 {
		return nil, fmt.Errorf("malformed FEN %q", b.pos.String())
	}
	if c == chess.White {
		fields[1] = "w"
	} else {
		fields[1] = "b"
	}
	fields[3] = "-"
	opt, err := chess.FEN(strings.Join(fields, " "))
	if err != nil {
		return nil, fmt.Errorf("flip turn: %w", err)
	}
	return chess.NewGame(opt).Position(), nil
}
