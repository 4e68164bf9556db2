package board

// Zobrist hash keys for position hashing.
// Uses PRNG with fixed seed for reproducibility.
var (
	zobristPiece      [2][7][64]uint64 // [Color][PieceType][Square] - 7 to handle NoPieceType safely
	zobristEnPassant  [8]uint64        // One per file
	zobristCastling   [16]uint64       // Combo table, derived from the four discrete right keys below
	zobristSideToMove uint64           // XOR when black to move

	// zobristCastlingKey holds one key per individual right (WK, WQ, bK, bQ).
	// zobristCastling[cr] is the XOR of zobristCastlingKey[i] for every right
	// set in cr, so make/unmake can still XOR a single combo value per change
	// while the underlying keys are independent per right, as the XOR of any
	// subset of independent keys is itself unique to that subset.
	zobristCastlingKey [4]uint64
)

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234) // Fixed seed

	// Piece keys
	for c := White; c <= Black; c++ {
		for pt := Pawn; pt <= King; pt++ {
			for sq := A1; sq <= H8; sq++ {
				zobristPiece[c][pt][sq] = rng.next()
			}
		}
	}

	// En passant keys (one per file)
	for file := 0; file < 8; file++ {
		zobristEnPassant[file] = rng.next()
	}

	// One key per castling right: WK, WQ, bK, bQ
	for i := range zobristCastlingKey {
		zobristCastlingKey[i] = rng.next()
	}

	// Side to move key
	zobristSideToMove = rng.next()

	// Precompute every combination so make/unmake keeps a single lookup.
	for cr := 0; cr < 16; cr++ {
		var combo uint64
		rights := CastlingRights(cr)
		if rights&WhiteKingSideCastle != 0 {
			combo ^= zobristCastlingKey[0]
		}
		if rights&WhiteQueenSideCastle != 0 {
			combo ^= zobristCastlingKey[1]
		}
		if rights&BlackKingSideCastle != 0 {
			combo ^= zobristCastlingKey[2]
		}
		if rights&BlackQueenSideCastle != 0 {
			combo ^= zobristCastlingKey[3]
		}
		zobristCastling[cr] = combo
	}
}

// ZobristPiece returns the Zobrist key for a piece on a square.
func ZobristPiece(c Color, pt PieceType, sq Square) uint64 {
	return zobristPiece[c][pt][sq]
}

// ZobristEnPassant returns the Zobrist key for an en passant file.
func ZobristEnPassant(file int) uint64 {
	return zobristEnPassant[file]
}

// ZobristCastling returns the Zobrist key for a full set of castling rights,
// the XOR of the per-right key of each right held in cr.
func ZobristCastling(cr CastlingRights) uint64 {
	return zobristCastling[cr]
}

// ZobristCastlingRight returns the key for a single castling right
// (exactly one of WhiteKingSideCastle, WhiteQueenSideCastle,
// BlackKingSideCastle, BlackQueenSideCastle).
func ZobristCastlingRight(right CastlingRights) uint64 {
	switch right {
	case WhiteKingSideCastle:
		return zobristCastlingKey[0]
	case WhiteQueenSideCastle:
		return zobristCastlingKey[1]
	case BlackKingSideCastle:
		return zobristCastlingKey[2]
	case BlackQueenSideCastle:
		return zobristCastlingKey[3]
	}
	return 0
}

// ZobristSideToMove returns the Zobrist key for side to move.
func ZobristSideToMove() uint64 {
	return zobristSideToMove
}
