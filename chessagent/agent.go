package chessagent

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	chess "github.com/corentings/chess/v2"
)

var log = slog.Default().With("package", "chessagent")

// Difficulty names one of the fixed playing-strength profiles.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

type difficultyProfile struct {
	depth      int
	randomness float64
}

var difficultyProfiles = map[Difficulty]difficultyProfile{
	DifficultyEasy:   {depth: 2, randomness: 0.3},
	DifficultyMedium: {depth: 3, randomness: 0.1},
	DifficultyHard:   {depth: 4, randomness: 0.05},
	DifficultyExpert: {depth: 5, randomness: 0.0},
}

const (
	// easyBlunderChance is how often the easy level skips search entirely
	// and plays a random legal move.
	easyBlunderChance = 0.2
	// goodMoveWindow is the centipawn band around the best score inside
	// which a move still counts as "good" for the diversity fallback.
	goodMoveWindow = 50
)

// DefaultTimeLimit is the wall-clock budget for one SelectMove call.
const DefaultTimeLimit = 5 * time.Second

// DefaultDeepeningCutoff is the fraction of the budget after which no new
// iterative-deepening pass is started.
const DefaultDeepeningCutoff = 0.8

// SearchOptions bound a single move-selection call.
type SearchOptions struct {
	TimeLimit       time.Duration
	DeepeningCutoff float64
}

// SearchOption mutates SearchOptions before a search.
type SearchOption func(*SearchOptions)

// WithTimeLimit overrides the wall-clock budget for one call.
func WithTimeLimit(d time.Duration) SearchOption {
	return func(opts *SearchOptions) {
		opts.TimeLimit = d
	}
}

// WithDeepeningCutoff overrides the fraction of the budget after which no
// deeper search pass is started.
func WithDeepeningCutoff(frac float64) SearchOption {
	return func(opts *SearchOptions) {
		opts.DeepeningCutoff = frac
	}
}

// Agent selects moves with iterative-deepening alpha-beta search over a
// static evaluation. Difficulty is fixed at construction; build a new
// agent to change it.
type Agent struct {
	difficulty    Difficulty
	color         chess.Color
	evaluator     *Evaluator
	depth         int
	randomness    float64
	ordering      OrderMoves
	uniformRandom bool
	rng           *rand.Rand
	nodesSearched int
}

// AgentOption mutates an Agent during construction.
type AgentOption func(*Agent)

// WithRand injects the randomness source, letting tests fix the seed.
func WithRand(rng *rand.Rand) AgentOption {
	return func(a *Agent) {
		a.rng = rng
	}
}

// WithOrdering replaces the move-ordering policy.
func WithOrdering(ordering OrderMoves) AgentOption {
	return func(a *Agent) {
		a.ordering = ordering
	}
}

// NewAgent returns an agent playing color at the named difficulty.
func NewAgent(difficulty Difficulty, color chess.Color, opts ...AgentOption) (*Agent, error) {
	profile, ok := difficultyProfiles[difficulty]
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q", difficulty)
	}
	a := &Agent{
		difficulty: difficulty,
		color:      color,
		evaluator:  &Evaluator{},
		depth:      profile.depth,
		randomness: profile.randomness,
		ordering:   StandardOrdering,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// NewAggressiveAgent returns an agent that orders attacking moves ahead of
// quiet ones but otherwise searches identically.
func NewAggressiveAgent(difficulty Difficulty, color chess.Color, opts ...AgentOption) (*Agent, error) {
	opts = append([]AgentOption{WithOrdering(AggressiveOrdering)}, opts...)
	return NewAgent(difficulty, color, opts...)
}

// NewRandomAgent returns an agent that ignores search and plays uniformly
// random legal moves.
func NewRandomAgent(color chess.Color, opts ...AgentOption) *Agent {
	a, err := NewAgent(DifficultyEasy, color, opts...)
	if err != nil {
		panic(err)
	}
	a.uniformRandom = true
	return a
}

// Difficulty returns the agent's difficulty profile name.
func (a *Agent) Difficulty() Difficulty {
	return a.difficulty
}

// Color returns the side the agent plays.
func (a *Agent) Color() chess.Color {
	return a.color
}

// SearchDepth returns the profile's maximum search depth in plies.
func (a *Agent) SearchDepth() int {
	return a.depth
}

// NodesSearched returns the node count of the most recent search.
func (a *Agent) NodesSearched() int {
	return a.nodesSearched
}

// SelectMove picks a move for the current position, or nil when there are
// no legal moves (checkmate or stalemate at the root; callers must branch
// on nil). The board is returned to its original state.
func (a *Agent) SelectMove(b *Board, opts ...SearchOption) *chess.Move {
	cfg := SearchOptions{TimeLimit: DefaultTimeLimit, DeepeningCutoff: DefaultDeepeningCutoff}
	for _, opt := range opts {
		opt(&cfg)
	}

	moves := b.LegalMoves()
	if len(moves) == 0 {
		return nil
	}

	if a.uniformRandom {
		return &moves[a.rng.Intn(len(moves))]
	}

	// The easiest level sometimes just blunders.
	if a.difficulty == DifficultyEasy && a.rng.Float64() < easyBlunderChance {
		return &moves[a.rng.Intn(len(moves))]
	}

	start := time.Now()
	deadline := start.Add(cfg.TimeLimit)
	cutoff := time.Duration(float64(cfg.TimeLimit) * cfg.DeepeningCutoff)
	a.nodesSearched = 0

	var best *chess.Move
	bestScore := math.MinInt32
	if b.SideToMove() != a.color {
		bestScore = math.MaxInt32
	}

	for depth := 1; depth <= a.depth; depth++ {
		if time.Since(start) > cutoff {
			break
		}
		move, score := a.searchRoot(b, depth, deadline)
		if move != nil {
			best = move
			bestScore = score
			log.Debug("depth completed",
				"depth", depth, "move", move.String(), "score", score, "nodes", a.nodesSearched)
		}
	}

	// Lower difficulties sometimes swap in another move that evaluates
	// close to the best one.
	if a.randomness > 0 && a.rng.Float64() < a.randomness {
		if good := a.goodMoves(b, bestScore); len(good) > 0 {
			best = &good[a.rng.Intn(len(good))]
		}
	}

	return best
}

// searchRoot runs a fixed-depth search over the root moves and returns the
// best move/score pair found before the deadline. It maximizes when the
// side to move is the agent's color and minimizes otherwise; scores are
// always from the agent's perspective.
func (a *Agent) searchRoot(b *Board, depth int, deadline time.Time) (*chess.Move, int) {
	maximizing := b.SideToMove() == a.color
	moves := a.ordering(b, b.LegalMoves())

	var best *chess.Move
	bestScore := math.MinInt32
	if !maximizing {
		bestScore = math.MaxInt32
	}

	for i := range moves {
		if time.Now().After(deadline) {
			break
		}
		m := &moves[i]
		var score int
		b.WithMove(m, func() {
			score = a.minimax(b, depth-1, math.MinInt32, math.MaxInt32, !maximizing, deadline)
		})
		if maximizing {
			if score > bestScore {
				bestScore = score
				best = m
			}
		} else if score < bestScore {
			bestScore = score
			best = m
		}
	}
	return best, bestScore
}

// minimax is depth-limited alpha-beta search. Expired deadlines, exhausted
// depth, and terminal positions all fall through to the static evaluation;
// that is the only leaf value source.
func (a *Agent) minimax(b *Board, depth, alpha, beta int, maximizing bool, deadline time.Time) int {
	a.nodesSearched++

	if time.Now().After(deadline) {
		return a.evaluator.Evaluate(b, a.color)
	}
	if depth == 0 || b.IsGameOver() {
		return a.evaluator.Evaluate(b, a.color)
	}

	moves := a.ordering(b, b.LegalMoves())

	if maximizing {
		maxEval := math.MinInt32
		for i := range moves {
			m := &moves[i]
			var score int
			b.WithMove(m, func() {
				score = a.minimax(b, depth-1, alpha, beta, false, deadline)
			})
			if score > maxEval {
				maxEval = score
			}
			if score > alpha {
				alpha = score
			}
			if beta <= alpha {
				break
			}
		}
		return maxEval
	}

	minEval := math.MaxInt32
	for i := range moves {
		m := &moves[i]
		var score int
		b.WithMove(m, func() {
			score = a.minimax(b, depth-1, alpha, beta, true, deadline)
		})
		if score < minEval {
			minEval = score
		}
		if score < beta {
			beta = score
		}
		if beta <= alpha {
			break
		}
	}
	return minEval
}

// goodMoves returns the legal moves whose one-ply evaluation lands within
// goodMoveWindow of bestScore. If none qualify it falls back to a single
// random legal move.
func (a *Agent) goodMoves(b *Board, bestScore int) []chess.Move {
	moves := b.LegalMoves()
	var good []chess.Move
	for i := range moves {
		m := &moves[i]
		var score int
		b.WithMove(m, func() {
			score = a.evaluator.Evaluate(b, a.color)
		})
		diff := score - bestScore
		if diff < 0 {
			diff = -diff
		}
		if diff <= goodMoveWindow {
			good = append(good, moves[i])
		}
	}
	if len(good) == 0 && len(moves) > 0 {
		good = []chess.Move{moves[a.rng.Intn(len(moves))]}
	}
	return good
}
