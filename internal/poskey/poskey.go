// Package poskey provides canonical, transposition-aware identity for chess
// positions. Two legal move orders reaching the same position produce equal
// keys.
package poskey

import (
	"errors"
	"hash/fnv"
	"strings"

	"github.com/notnil/chess"
)

// ErrInvalidPosition indicates the position or FEN string is malformed.
var ErrInvalidPosition = errors.New("poskey: invalid position")

// Key is the canonical identity of a position: piece placement, side to
// move, castling rights, and en passant target square, normalized so that
// move-order artifacts (halfmove clock, fullmove number, unusable en
// passant squares) never distinguish logically identical positions.
//
// The zero Key is not a valid position.
type Key struct {
	fen string
}

// FromPosition canonicalizes a position produced by the rules engine.
// The en passant square is kept only when an en passant capture is actually
// legal; otherwise two positions differing only in a dead en passant square
// would compare unequal.
func FromPosition(pos *chess.Position) Key {
	fields := strings.Fields(pos.String())
	// Position.String always yields 6 fields.
	if pos.EnPassantSquare() != chess.NoSquare && !hasEnPassantCapture(pos) {
		fields[3] = "-"
	}
	return Key{fen: strings.Join(fields[:4], " ")}
}

// Parse canonicalizes a FEN string from an external source.
// Returns ErrInvalidPosition if the string is internally inconsistent.
func Parse(fen string) (Key, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return Key{}, ErrInvalidPosition
	}
	if !validPlacement(parts[0]) {
		return Key{}, ErrInvalidPosition
	}
	if parts[1] != "w" && parts[1] != "b" {
		return Key{}, ErrInvalidPosition
	}
	if !validCastling(parts[2]) || !validEnPassant(parts[3]) {
		return Key{}, ErrInvalidPosition
	}

	// Round-trip through the rules engine so en passant normalization
	// matches FromPosition.
	full := strings.Join(parts[:4], " ") + " 0 1"
	opt, err := chess.FEN(full)
	if err != nil {
		return Key{}, ErrInvalidPosition
	}
	game := chess.NewGame(opt)
	return FromPosition(game.Position()), nil
}

// FromCanonical wraps an already-canonicalized key string without
// re-validating it. Only for inputs previously produced by Key.String,
// such as snapshot decoding; external FEN input must go through Parse.
func FromCanonical(fen string) Key {
	return Key{fen: fen}
}

// String returns the normalized 4-field FEN form of the key.
func (k Key) String() string {
	return k.fen
}

// Hash returns a 64-bit FNV-1a hash of the key, for sharding and map use.
func (k Key) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte(k.fen))
	return h.Sum64()
}

// IsZero reports whether the key is the zero value.
func (k Key) IsZero() bool {
	return k.fen == ""
}

// SideToMove returns the color to move in the keyed position.
func (k Key) SideToMove() chess.Color {
	i := strings.IndexByte(k.fen, ' ')
	if i < 0 || i+1 >= len(k.fen) {
		return chess.NoColor
	}
	if k.fen[i+1] == 'w' {
		return chess.White
	}
	return chess.Black
}

func hasEnPassantCapture(pos *chess.Position) bool {
	for _, m := range pos.ValidMoves() {
		if m.HasTag(chess.EnPassant) {
			return true
		}
	}
	return false
}

func validPlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}
	var whiteKings, blackKings int
	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch ch {
			case 'K':
				whiteKings++
				squares++
			case 'k':
				blackKings++
				squares++
			case 'P', 'N', 'B', 'R', 'Q', 'p', 'n', 'b', 'r', 'q':
				squares++
			case '1', '2', '3', '4', '5', '6', '7', '8':
				squares += int(ch - '0')
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}
	return whiteKings == 1 && blackKings == 1
}

func validCastling(rights string) bool {
	if rights == "-" {
		return true
	}
	if len(rights) == 0 || len(rights) > 4 {
		return false
	}
	for _, ch := range rights {
		if !strings.ContainsRune("KQkq", ch) {
			return false
		}
	}
	return true
}

func validEnPassant(sq string) bool {
	if sq == "-" {
		return true
	}
	if len(sq) != 2 {
		return false
	}
	if sq[0] < 'a' || sq[0] > 'h' {
		return false
	}
	return sq[1] == '3' || sq[1] == '6'
}
