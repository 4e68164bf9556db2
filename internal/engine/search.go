package engine

import (
	"sync/atomic"
	"time"

	"github.com/hailam/chessengine/internal/board"
)

// Search constants
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128
)

// PVTable stores the principal variation.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Searcher performs the alpha-beta search.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	tm      *TimeManager

	// Search state
	nodes    uint64
	stopFlag atomic.Bool

	// PV tracking
	pv PVTable

	// Undo stack
	undoStack [MaxPly]board.UndoInfo
}

// NewSearcher creates a new searcher.
func NewSearcher(tt *TranspositionTable) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		tm:      NewTimeManager(),
	}
}

// Stop signals the search to stop.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset resets the searcher for a new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes searched.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Search performs a fixed-depth search.
func (s *Searcher) Search(pos *board.Position, depth int) (board.Move, int) {
	s.pos = pos.Copy()
	s.Reset()
	s.tt.NewSearch()
	s.tm.Start(0) // no budget: clear any left over from SearchTimed

	score := s.negamax(depth, 0, -Infinity, Infinity)
	return s.bestMove(), score
}

// SearchTimed runs iterative deepening under a wall-clock time budget,
// returning the best move and score found by the deepest completed
// iteration. Each iteration searches one ply deeper than the last; a new
// iteration is only started if TimeManager judges there is likely enough
// budget left to finish it, and an iteration already in flight can be cut
// short by the node-count stop-flag check inside negamax.
func (s *Searcher) SearchTimed(pos *board.Position, budget time.Duration) (board.Move, int, int) {
	s.pos = pos.Copy()
	s.Reset()
	s.tt.NewSearch()
	s.tm.Start(budget)

	var (
		bestMove      board.Move
		bestScore     int
		completeDepth int
		lastIterTime  time.Duration
	)

	for depth := 1; depth < MaxPly; depth++ {
		iterStart := time.Now()
		score := s.negamax(depth, 0, -Infinity, Infinity)
		lastIterTime = time.Since(iterStart)

		if s.stopFlag.Load() {
			break
		}

		bestMove = s.bestMove()
		bestScore = score
		completeDepth = depth

		if s.tm.ShouldStop() {
			break
		}
		if !s.tm.ShouldStartNextIteration(lastIterTime) {
			break
		}
	}

	return bestMove, bestScore, completeDepth
}

func (s *Searcher) bestMove() board.Move {
	if s.pv.length[0] > 0 {
		return s.pv.moves[0][0]
	}
	return board.NoMove
}

// negamax implements the negamax algorithm with alpha-beta pruning.
func (s *Searcher) negamax(depth, ply int, alpha, beta int) int {
	// Check for stop signal periodically
	if s.nodes&4095 == 0 {
		if s.tm != nil && s.tm.budget > 0 && s.tm.ShouldStop() {
			s.stopFlag.Store(true)
		}
		if s.stopFlag.Load() {
			return 0
		}
	}

	s.nodes++

	// Initialize PV length for this ply
	s.pv.length[ply] = ply

	// Check for draw
	if ply > 0 && s.isDraw() {
		return 0
	}

	// Probe transposition table
	var ttMove board.Move
	ttEntry, found := s.tt.Probe(s.pos.Hash)
	if found {
		ttMove = ttEntry.BestMove
		if int(ttEntry.Depth) >= depth {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	// Quiescence search at depth 0
	if depth <= 0 {
		return s.quiescence(ply, alpha, beta)
	}

	// Check if in check
	inCheck := s.pos.InCheck()

	// Generate moves
	moves := s.pos.GenerateLegalMoves()

	// Check for checkmate or stalemate
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply // Checkmate
		}
		return 0 // Stalemate
	}

	// Score and sort moves
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, ttMove)

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		// Pick the best remaining move
		PickMove(moves, scores, i)
		move := moves.Get(i)

		// Make move
		s.undoStack[ply] = s.pos.MakeMove(move)

		// Skip if move was invalid (no piece at from square)
		if !s.undoStack[ply].Valid {
			continue
		}

		// Recursive search
		score := -s.negamax(depth-1, ply+1, -beta, -alpha)

		// Unmake move
		s.pos.UnmakeMove(move, s.undoStack[ply])

		// Check for stop
		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move

			if score > alpha {
				alpha = score
				flag = TTExact

				// Update PV
				s.pv.moves[ply][ply] = move
				for j := ply + 1; j < s.pv.length[ply+1]; j++ {
					s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
				}
				s.pv.length[ply] = s.pv.length[ply+1]
			}
		}

		// Beta cutoff
		if score >= beta {
			s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)

			if !move.IsCapture(s.pos) {
				s.orderer.UpdateKillers(move, ply)
			}

			return score
		}
	}

	// Store in TT
	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)

	return bestScore
}

// quiescence searches captures (and, when in check, every legal evasion) to
// avoid the horizon effect. A position in check cannot stand pat: being in
// check means the side to move must respond, so quiescence falls back to
// full legal move generation and can detect checkmate exactly like negamax.
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	if s.stopFlag.Load() {
		return 0
	}

	s.nodes++

	if s.pos.InCheck() {
		return s.quiescenceInCheck(ply, alpha, beta)
	}

	// Depth limit to prevent runaway recursion in captures-only lines
	const maxQuiescencePly = 32
	if ply >= MaxPly || ply > maxQuiescencePly {
		return Evaluate(s.pos)
	}

	standPat := Evaluate(s.pos)

	if standPat >= beta {
		return beta
	}

	if standPat > alpha {
		alpha = standPat
	}

	// Delta pruning: if we're far enough behind that no capture can help, stop
	bigDelta := QueenValue
	if standPat+bigDelta < alpha {
		return alpha
	}

	moves := s.pos.GenerateCaptures()
	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		// Delta pruning for individual moves
		var captureValue int
		if move.IsEnPassant() {
			captureValue = PawnValue
		} else {
			capturedPiece := s.pos.PieceAt(move.To())
			if capturedPiece != board.NoPiece {
				captureValue = pieceValues[capturedPiece.Type()]
			}
		}
		if move.IsPromotion() {
			captureValue += QueenValue - PawnValue
		}
		if standPat+captureValue+200 < alpha {
			continue
		}

		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			continue
		}

		score := -s.quiescence(ply+1, -beta, -alpha)

		s.pos.UnmakeMove(move, undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// quiescenceInCheck handles the in-check case of quiescence: every legal
// move is a forced response, so there is no stand-pat and no captures-only
// restriction. No legal moves means checkmate.
func (s *Searcher) quiescenceInCheck(ply int, alpha, beta int) int {
	if ply >= MaxPly {
		return Evaluate(s.pos)
	}

	moves := s.pos.GenerateLegalMoves()
	if moves.Len() == 0 {
		return -MateScore + ply
	}

	scores := s.orderer.ScoreMoves(s.pos, moves, ply, board.NoMove)

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		undo := s.pos.MakeMove(move)
		if !undo.Valid {
			continue
		}

		score := -s.quiescence(ply+1, -beta, -alpha)

		s.pos.UnmakeMove(move, undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// isDraw checks for draw by the 50-move rule or insufficient material.
// Repetition cannot be detected from a bare Position (it has no history),
// so the game-level wrapper is responsible for that check.
func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	return s.pos.IsInsufficientMaterial()
}

// GetPV returns the principal variation from the last search.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	for i := 0; i < s.pv.length[0]; i++ {
		pv[i] = s.pv.moves[0][i]
	}
	return pv
}
