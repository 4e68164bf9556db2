// Package game wraps a board.Position with the history a single game
// needs but a bare position cannot track on its own: hash history for
// repetition detection, and a move/undo stack so a game can be stepped
// backward as well as forward.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/hailam/chessengine/internal/board"
	"github.com/hailam/chessengine/internal/engine"
)

// Status describes why a game has (or has not) ended.
type Status int

const (
	StatusPlaying Status = iota
	StatusCheckmate
	StatusStalemate
	StatusDrawFiftyMove
	StatusDrawInsufficientMaterial
	StatusDrawThreefoldRepetition
)

// String names the status, e.g. for logging by a host application.
func (s Status) String() string {
	switch s {
	case StatusPlaying:
		return "playing"
	case StatusCheckmate:
		return "checkmate"
	case StatusStalemate:
		return "stalemate"
	case StatusDrawFiftyMove:
		return "draw (fifty-move rule)"
	case StatusDrawInsufficientMaterial:
		return "draw (insufficient material)"
	case StatusDrawThreefoldRepetition:
		return "draw (threefold repetition)"
	default:
		return "unknown"
	}
}

// IsOver reports whether this status ends the game.
func (s Status) IsOver() bool {
	return s != StatusPlaying
}

// historyEntry pairs a made move with the undo information needed to
// reverse it, so Undo can walk the stack back exactly one ply at a time.
type historyEntry struct {
	move board.Move
	undo board.UndoInfo
}

// defaultHashMB is the transposition table size a Game allocates for
// itself. A host that wants a different size can bypass Game and drive
// board.Position plus engine.Searcher directly.
const defaultHashMB = 64

// Game is a played-out chess game: the current position, the hash history
// needed to detect threefold repetition, the move/undo stack needed to
// support Undo, and a Searcher scoped to this game's own transposition
// table.
type Game struct {
	pos         *board.Position
	hashHistory []uint64
	moves       []historyEntry

	tt       *engine.TranspositionTable
	searcher *engine.Searcher
}

// New creates a Game at the standard starting position.
func New() *Game {
	return newGame(board.NewPosition())
}

// NewFromFEN creates a Game from a FEN string.
func NewFromFEN(fen string) (*Game, error) {
	pos, err := board.ParseFEN(fen)
	if err != nil {
		return nil, fmt.Errorf("game: %w", err)
	}
	return newGame(pos), nil
}

func newGame(pos *board.Position) *Game {
	tt := engine.NewTranspositionTable(defaultHashMB)
	return &Game{
		pos:         pos,
		hashHistory: []uint64{pos.Hash},
		tt:          tt,
		searcher:    engine.NewSearcher(tt),
	}
}

// Position returns the current position. Callers must not mutate it
// directly; use MakeMove/Undo so the game's history stacks stay in sync.
func (g *Game) Position() *board.Position {
	return g.pos
}

// FEN renders the current position as a FEN string.
func (g *Game) FEN() string {
	return g.pos.ToFEN()
}

// LegalMoves returns the legal moves in the current position.
func (g *Game) LegalMoves() *board.MoveList {
	return g.pos.GenerateLegalMoves()
}

// LegalMoveStrings returns the legal moves in canonical long-algebraic
// (UCI-style) notation, e.g. "e2e4", "e7e8q".
func (g *Game) LegalMoveStrings() []string {
	moves := g.pos.GenerateLegalMoves()
	out := make([]string, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		out[i] = moves.Get(i).String()
	}
	return out
}

// MakeMove applies a legal move, pushing it onto the undo stack and its
// resulting hash onto the repetition-history stack. It returns an error
// and leaves the game unchanged if the move is not legal in the current
// position.
func (g *Game) MakeMove(m board.Move) error {
	if !g.pos.GenerateLegalMoves().Contains(m) {
		return fmt.Errorf("game: illegal move %s", m)
	}

	undo := g.pos.MakeMove(m)
	if !undo.Valid {
		return fmt.Errorf("game: move %s could not be applied", m)
	}

	g.moves = append(g.moves, historyEntry{move: m, undo: undo})
	g.hashHistory = append(g.hashHistory, g.pos.Hash)
	return nil
}

// MakeUCIMove parses a long-algebraic move string relative to the current
// position and applies it.
func (g *Game) MakeUCIMove(s string) (board.Move, error) {
	m, err := board.ParseMove(s, g.pos)
	if err != nil {
		return board.NoMove, fmt.Errorf("game: %w", err)
	}
	if err := g.MakeMove(m); err != nil {
		return board.NoMove, err
	}
	return m, nil
}

// MakeSAN parses a Standard Algebraic Notation move string relative to the
// current position and applies it.
func (g *Game) MakeSAN(s string) (board.Move, error) {
	m, err := board.ParseSAN(s, g.pos)
	if err != nil {
		return board.NoMove, fmt.Errorf("game: %w", err)
	}
	if m == board.NoMove {
		return board.NoMove, fmt.Errorf("game: no legal move matches %q", s)
	}
	if err := g.MakeMove(m); err != nil {
		return board.NoMove, err
	}
	return m, nil
}

// Undo reverses the most recently made move. It returns an error if no
// move has been made.
func (g *Game) Undo() error {
	if len(g.moves) == 0 {
		return errors.New("game: no move to undo")
	}

	last := g.moves[len(g.moves)-1]
	g.pos.UnmakeMove(last.move, last.undo)

	g.moves = g.moves[:len(g.moves)-1]
	g.hashHistory = g.hashHistory[:len(g.hashHistory)-1]
	return nil
}

// MoveCount returns the number of moves made so far (the length of the
// undo stack).
func (g *Game) MoveCount() int {
	return len(g.moves)
}

// ToSAN renders a move relative to the current position.
func (g *Game) ToSAN(m board.Move) string {
	return m.ToSAN(g.pos)
}

// IsThreefoldRepetition reports whether the current position's hash has
// occurred at least three times across this game's history. A bare
// board.Position cannot answer this on its own since it holds no history;
// that is the reason this wrapper exists.
func (g *Game) IsThreefoldRepetition() bool {
	current := g.pos.Hash
	count := 0
	for _, h := range g.hashHistory {
		if h == current {
			count++
			if count >= 3 {
				return true
			}
		}
	}
	return false
}

// IsFiftyMoveRule reports whether the fifty-move rule applies.
func (g *Game) IsFiftyMoveRule() bool {
	return g.pos.HalfMoveClock >= 100
}

// IsInsufficientMaterial reports whether neither side has enough material
// to force checkmate.
func (g *Game) IsInsufficientMaterial() bool {
	return g.pos.IsInsufficientMaterial()
}

// IsCheckmate reports whether the side to move is checkmated.
func (g *Game) IsCheckmate() bool {
	return g.pos.IsCheckmate()
}

// IsStalemate reports whether the side to move is stalemated.
func (g *Game) IsStalemate() bool {
	return g.pos.IsStalemate()
}

// Status classifies why the game has ended, or StatusPlaying if it hasn't.
func (g *Game) Status() Status {
	if g.pos.IsCheckmate() {
		return StatusCheckmate
	}
	if g.pos.IsStalemate() {
		return StatusStalemate
	}
	if g.IsThreefoldRepetition() {
		return StatusDrawThreefoldRepetition
	}
	if g.IsFiftyMoveRule() {
		return StatusDrawFiftyMove
	}
	if g.pos.IsInsufficientMaterial() {
		return StatusDrawInsufficientMaterial
	}
	return StatusPlaying
}

// Evaluate returns the static evaluation of the current position from the
// side to move's perspective.
func (g *Game) Evaluate() int {
	return engine.Evaluate(g.pos)
}

// SearchDepth runs a fixed-depth search from the current position.
func (g *Game) SearchDepth(depth int) (board.Move, int) {
	return g.searcher.Search(g.pos, depth)
}

// SearchResult reports the outcome of a time-bounded search, including
// throughput so a host can log nodes-per-second the way a UCI "info"
// line would.
type SearchResult struct {
	Move           board.Move
	Score          int
	Depth          int
	Nodes          uint64
	Elapsed        time.Duration
	NodesPerSecond float64
}

// SearchTimed runs iterative deepening under a wall-clock budget and
// reports the deepest completed iteration's result.
func (g *Game) SearchTimed(budget time.Duration) SearchResult {
	start := time.Now()
	move, score, depth := g.searcher.SearchTimed(g.pos, budget)
	elapsed := time.Since(start)

	nodes := g.searcher.Nodes()
	var nps float64
	if elapsed > 0 {
		nps = float64(nodes) / elapsed.Seconds()
	}

	return SearchResult{
		Move:           move,
		Score:          score,
		Depth:          depth,
		Nodes:          nodes,
		Elapsed:        elapsed,
		NodesPerSecond: nps,
	}
}

// Perft counts leaf nodes reachable in exactly depth plies from the
// current position - the standard move-generator correctness benchmark.
func (g *Game) Perft(depth int) int64 {
	return perft(g.pos, depth)
}

// PerftDivide breaks a Perft count down by the first move played, which is
// the usual way to localize a move-generator bug against a reference.
func (g *Game) PerftDivide(depth int) map[string]int64 {
	result := make(map[string]int64)
	if depth <= 0 {
		return result
	}

	moves := g.pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := g.pos.MakeMove(m)
		result[m.String()] = perft(g.pos, depth-1)
		g.pos.UnmakeMove(m, undo)
	}
	return result
}

func perft(pos *board.Position, depth int) int64 {
	if depth == 0 {
		return 1
	}

	moves := pos.GenerateLegalMoves()
	if depth == 1 {
		return int64(moves.Len())
	}

	var nodes int64
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes += perft(pos, depth-1)
		pos.UnmakeMove(m, undo)
	}
	return nodes
}
