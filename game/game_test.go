package game

import (
	"testing"

	"github.com/hailam/chessengine/internal/board"
)

func TestNewGameStartingPosition(t *testing.T) {
	g := New()
	if got, want := g.FEN(), board.StartFEN; got != want {
		t.Errorf("FEN() = %q, want %q", got, want)
	}
	if g.Status() != StatusPlaying {
		t.Errorf("Status() = %v, want StatusPlaying", g.Status())
	}
	if g.MoveCount() != 0 {
		t.Errorf("MoveCount() = %d, want 0", g.MoveCount())
	}
}

func TestNewFromFENRoundTrip(t *testing.T) {
	fen := "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1"
	g, err := NewFromFEN(fen)
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}
	if got := g.FEN(); got != fen {
		t.Errorf("FEN() = %q, want %q", got, fen)
	}
}

func TestNewFromFENInvalid(t *testing.T) {
	if _, err := NewFromFEN("not a fen"); err == nil {
		t.Fatal("expected error for invalid FEN")
	}
}

func TestMakeMoveAndUndoRestoresExactly(t *testing.T) {
	g := New()
	startFEN := g.FEN()

	m, err := g.MakeUCIMove("e2e4")
	if err != nil {
		t.Fatalf("MakeUCIMove: %v", err)
	}
	if m.String() != "e2e4" {
		t.Errorf("move = %v, want e2e4", m)
	}
	if g.MoveCount() != 1 {
		t.Errorf("MoveCount() = %d, want 1", g.MoveCount())
	}
	if g.FEN() == startFEN {
		t.Error("FEN did not change after a move")
	}

	if err := g.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := g.FEN(); got != startFEN {
		t.Errorf("after undo: FEN() = %q, want %q", got, startFEN)
	}
	if g.MoveCount() != 0 {
		t.Errorf("after undo: MoveCount() = %d, want 0", g.MoveCount())
	}
}

func TestUndoWithNoMovesErrors(t *testing.T) {
	g := New()
	if err := g.Undo(); err == nil {
		t.Fatal("expected error undoing with an empty history")
	}
}

func TestMakeMoveRejectsIllegalMove(t *testing.T) {
	g := New()
	// e2e5 is not a legal pawn move from the starting position.
	illegal := board.NewMove(board.E2, board.E5)
	if err := g.MakeMove(illegal); err == nil {
		t.Fatal("expected error for illegal move")
	}
	if g.MoveCount() != 0 {
		t.Error("illegal move must not be recorded in history")
	}
}

func TestMakeSAN(t *testing.T) {
	g := New()
	if _, err := g.MakeSAN("e4"); err != nil {
		t.Fatalf("MakeSAN(e4): %v", err)
	}
	if _, err := g.MakeSAN("e5"); err != nil {
		t.Fatalf("MakeSAN(e5): %v", err)
	}
	if _, err := g.MakeSAN("Nf3"); err != nil {
		t.Fatalf("MakeSAN(Nf3): %v", err)
	}
	if g.MoveCount() != 3 {
		t.Errorf("MoveCount() = %d, want 3", g.MoveCount())
	}
}

// TestThreefoldRepetition shuffles knights back and forth to the same
// position three times and checks the game reports it as a draw.
func TestThreefoldRepetition(t *testing.T) {
	g := New()
	shuffle := []string{"g1f3", "g8f6", "f3g1", "f6g8"}

	for i := 0; i < 2; i++ {
		for _, mv := range shuffle {
			if _, err := g.MakeUCIMove(mv); err != nil {
				t.Fatalf("MakeUCIMove(%s): %v", mv, err)
			}
		}
	}

	if !g.IsThreefoldRepetition() {
		t.Fatal("expected threefold repetition after shuffling back to the starting position three times")
	}
	if g.Status() != StatusDrawThreefoldRepetition {
		t.Errorf("Status() = %v, want StatusDrawThreefoldRepetition", g.Status())
	}
}

// TestFoolsMate plays 1.f3 e5 2.g4 Qh4# and checks the resulting status.
func TestFoolsMate(t *testing.T) {
	g := New()
	moves := []string{"f2f3", "e7e5", "g2g4", "d8h4"}
	for _, mv := range moves {
		if _, err := g.MakeUCIMove(mv); err != nil {
			t.Fatalf("MakeUCIMove(%s): %v", mv, err)
		}
	}

	if !g.IsCheckmate() {
		t.Fatal("expected checkmate after fool's mate")
	}
	if g.Status() != StatusCheckmate {
		t.Errorf("Status() = %v, want StatusCheckmate", g.Status())
	}
	if len(g.LegalMoveStrings()) != 0 {
		t.Error("checkmated side should have no legal moves")
	}
}

// TestStalemate sets up a known stalemate position directly via FEN and
// checks the wrapper reports it correctly.
func TestStalemate(t *testing.T) {
	// Black king on a8 has no legal moves and is not in check.
	g, err := NewFromFEN("k7/8/1Q6/8/8/8/8/7K b - - 0 1")
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}
	if !g.IsStalemate() {
		t.Fatal("expected stalemate")
	}
	if g.Status() != StatusStalemate {
		t.Errorf("Status() = %v, want StatusStalemate", g.Status())
	}
}

// TestEnPassantRoundTrip plays an en passant capture through the Game
// wrapper, then undoes it and checks the FEN is restored exactly.
func TestEnPassantRoundTrip(t *testing.T) {
	fen := "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1"
	g, err := NewFromFEN(fen)
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}

	m, err := g.MakeUCIMove("e5d6")
	if err != nil {
		t.Fatalf("MakeUCIMove(e5d6): %v", err)
	}
	if m.To() != board.D6 {
		t.Errorf("captured to %v, want d6", m.To())
	}
	if g.Position().PieceAt(board.D5) != board.NoPiece {
		t.Error("captured pawn still present on d5")
	}

	if err := g.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if got := g.FEN(); got != fen {
		t.Errorf("after undo: FEN() = %q, want %q", got, fen)
	}
}

// TestPerftMatchesKnownTotals cross-checks Game.Perft against the totals
// already verified directly against board.Position in the board package's
// own perft tests.
func TestPerftMatchesKnownTotals(t *testing.T) {
	g := New()
	cases := []struct {
		depth int
		want  int64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
	}
	for _, c := range cases {
		if got := g.Perft(c.depth); got != c.want {
			t.Errorf("Perft(%d) = %d, want %d", c.depth, got, c.want)
		}
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	g := New()
	total := g.Perft(3)

	divide := g.PerftDivide(3)
	var sum int64
	for _, n := range divide {
		sum += n
	}
	if sum != total {
		t.Errorf("PerftDivide sums to %d, want %d", sum, total)
	}
	if len(divide) != 20 {
		t.Errorf("PerftDivide has %d first moves, want 20", len(divide))
	}
}

func TestEvaluateSymmetricAtStart(t *testing.T) {
	g := New()
	if got := g.Evaluate(); got != 0 {
		t.Errorf("Evaluate() at the starting position = %d, want 0", got)
	}
}

// TestSearchDepthFindsFreeQueen checks the searcher finds a move winning
// an undefended queen when given a couple of plies to look.
func TestSearchDepthFindsFreeQueen(t *testing.T) {
	// White rook on d1 attacks an undefended black queen on d8 along the
	// open d-file; nothing stands in the way or defends it.
	g, err := NewFromFEN("3q1k2/8/8/8/8/8/8/3R2K1 w - - 0 1")
	if err != nil {
		t.Fatalf("NewFromFEN: %v", err)
	}

	move, score := g.SearchDepth(4)
	if move.String() != "d1d8" {
		t.Errorf("SearchDepth best move = %v, want d1d8", move)
	}
	if score < 400 {
		t.Errorf("SearchDepth score = %d, want at least +400 for winning a queen", score)
	}
}

func TestStatusIsOver(t *testing.T) {
	if StatusPlaying.IsOver() {
		t.Error("StatusPlaying should not be over")
	}
	for _, s := range []Status{StatusCheckmate, StatusStalemate, StatusDrawFiftyMove, StatusDrawInsufficientMaterial, StatusDrawThreefoldRepetition} {
		if !s.IsOver() {
			t.Errorf("%v.IsOver() = false, want true", s)
		}
	}
}
