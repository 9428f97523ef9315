package chesshound

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/notnil/chess"

	"github.com/discochess/chesshound/internal/poskey"
)

// ErrMalformedGame indicates a game's move text failed rules validation.
// A single illegal move anywhere invalidates the entire record.
var ErrMalformedGame = errors.New("chesshound: malformed game")

// Result is the outcome of a finished game.
type Result int

const (
	// NoResult covers aborted and unfinished games.
	NoResult Result = iota
	WhiteWon
	BlackWon
	Draw
)

// String returns the PGN result token.
func (r Result) String() string {
	switch r {
	case WhiteWon:
		return "1-0"
	case BlackWon:
		return "0-1"
	case Draw:
		return "1/2-1/2"
	default:
		return "*"
	}
}

// ParseResult parses a PGN result token.
func ParseResult(s string) Result {
	switch s {
	case "1-0":
		return WhiteWon
	case "0-1":
		return BlackWon
	case "1/2-1/2":
		return Draw
	default:
		return NoResult
	}
}

// TimeControlClass buckets games by speed.
type TimeControlClass int

const (
	UnknownSpeed TimeControlClass = iota
	Bullet
	Blitz
	Rapid
	Classical
	Correspondence
)

var speedNames = [...]string{"unknown", "bullet", "blitz", "rapid", "classical", "correspondence"}

func (c TimeControlClass) String() string {
	if int(c) < len(speedNames) {
		return speedNames[c]
	}
	return "unknown"
}

// ClassifyTimeControl maps a PGN TimeControl tag ("300+3", "1/86400", "-")
// to a class. The estimate follows the lichess convention of base plus
// forty increments.
func ClassifyTimeControl(tc string) TimeControlClass {
	if tc == "" || tc == "-" || tc == "?" {
		return UnknownSpeed
	}
	if strings.Contains(tc, "/") {
		return Correspondence
	}
	base, inc := tc, "0"
	if i := strings.IndexByte(tc, '+'); i >= 0 {
		base, inc = tc[:i], tc[i+1:]
	}
	b, err := strconv.Atoi(base)
	if err != nil {
		return UnknownSpeed
	}
	n, err := strconv.Atoi(inc)
	if err != nil {
		return UnknownSpeed
	}
	estimated := b + 40*n
	switch {
	case estimated < 180:
		return Bullet
	case estimated < 600:
		return Blitz
	case estimated < 1800:
		return Rapid
	default:
		return Classical
	}
}

// Metadata carries the game-level facts used for filtering and statistics.
// A zero rating means the rating is unknown; rating-based filters treat
// unknown ratings as non-matching.
type Metadata struct {
	Result      Result
	White       string
	Black       string
	Subject     string // player under analysis, if the collection has one
	WhiteRating int
	BlackRating int
	TimeControl TimeControlClass
	Termination string
	PlayedAt    time.Time
}

// SubjectColor returns the color the subject played, if the subject is one
// of the two players.
func (m Metadata) SubjectColor() (chess.Color, bool) {
	if m.Subject == "" {
		return chess.NoColor, false
	}
	switch m.Subject {
	case m.White:
		return chess.White, true
	case m.Black:
		return chess.Black, true
	}
	return chess.NoColor, false
}

// SubjectRating returns the subject's rating. ok is false when the subject
// or the rating is unknown.
func (m Metadata) SubjectRating() (int, bool) {
	color, ok := m.SubjectColor()
	if !ok {
		return 0, false
	}
	return m.ratingOf(color)
}

// OpponentRating returns the subject's opponent's rating. ok is false when
// the subject or the rating is unknown.
func (m Metadata) OpponentRating() (int, bool) {
	color, ok := m.SubjectColor()
	if !ok {
		return 0, false
	}
	return m.ratingOf(color.Other())
}

func (m Metadata) ratingOf(color chess.Color) (int, bool) {
	r := m.WhiteRating
	if color == chess.Black {
		r = m.BlackRating
	}
	if r <= 0 {
		return 0, false
	}
	return r, true
}

// Ply is one half-move with the canonical key of the resulting position.
type Ply struct {
	SAN string
	Key poskey.Key
}

// Game is a validated, immutable record of one chess game. Construct with
// ParseGame or ParsePGN; every move has been checked against the rules
// engine.
type Game struct {
	plies []Ply
	meta  Metadata
}

// Plies returns the game's moves in order. Callers must not mutate the
// returned slice.
func (g *Game) Plies() []Ply {
	return g.plies
}

// Meta returns the game-level metadata.
func (g *Game) Meta() Metadata {
	return g.meta
}

// ParseGame validates space-separated SAN move text against the rules
// engine and returns the game record. Move numbers, result tokens, and
// empty move text are tolerated; an illegal or unparseable move wraps
// ErrMalformedGame naming the offending ply.
func ParseGame(moveText string, meta Metadata) (*Game, error) {
	engine := chess.NewGame()
	notation := chess.AlgebraicNotation{}

	var plies []Ply
	for _, tok := range strings.Fields(moveText) {
		san := stripMoveNumber(tok)
		if san == "" || isResultToken(san) {
			continue
		}

		pos := engine.Position()
		move, err := notation.Decode(pos, san)
		if err != nil {
			return nil, fmt.Errorf("%w: ply %d %q: %v", ErrMalformedGame, len(plies)+1, san, err)
		}
		canonical := notation.Encode(pos, move)
		if err := engine.Move(move); err != nil {
			return nil, fmt.Errorf("%w: ply %d %q: %v", ErrMalformedGame, len(plies)+1, san, err)
		}
		plies = append(plies, Ply{
			SAN: canonical,
			Key: poskey.FromPosition(engine.Position()),
		})
	}

	return &Game{plies: plies, meta: meta}, nil
}

// ParsePGN parses a single PGN game: headers populate the metadata and the
// movetext is validated through the rules engine. Wraps ErrMalformedGame
// on any parse or legality failure.
func ParsePGN(pgnText string) (*Game, error) {
	opt, err := chess.PGN(strings.NewReader(pgnText))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGame, err)
	}
	engine := chess.NewGame(opt)

	meta := Metadata{
		White:       tagValue(engine, "White"),
		Black:       tagValue(engine, "Black"),
		Termination: tagValue(engine, "Termination"),
		TimeControl: ClassifyTimeControl(tagValue(engine, "TimeControl")),
	}
	switch engine.Outcome() {
	case chess.WhiteWon:
		meta.Result = WhiteWon
	case chess.BlackWon:
		meta.Result = BlackWon
	case chess.Draw:
		meta.Result = Draw
	}
	if r, err := strconv.Atoi(tagValue(engine, "WhiteElo")); err == nil {
		meta.WhiteRating = r
	}
	if r, err := strconv.Atoi(tagValue(engine, "BlackElo")); err == nil {
		meta.BlackRating = r
	}
	meta.PlayedAt = parseTimestamp(tagValue(engine, "UTCDate"), tagValue(engine, "UTCTime"))

	notation := chess.AlgebraicNotation{}
	positions := engine.Positions()
	moves := engine.Moves()

	plies := make([]Ply, 0, len(moves))
	for i, move := range moves {
		plies = append(plies, Ply{
			SAN: notation.Encode(positions[i], move),
			Key: poskey.FromPosition(positions[i+1]),
		})
	}

	return &Game{plies: plies, meta: meta}, nil
}

func tagValue(g *chess.Game, key string) string {
	if pair := g.GetTagPair(key); pair != nil {
		return pair.Value
	}
	return ""
}

func parseTimestamp(date, clock string) time.Time {
	if date == "" {
		return time.Time{}
	}
	if clock == "" {
		clock = "00:00:00"
	}
	t, err := time.Parse("2006.01.02 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}
	}
	return t
}

func stripMoveNumber(tok string) string {
	i := 0
	for i < len(tok) && tok[i] >= '0' && tok[i] <= '9' {
		i++
	}
	if i == 0 {
		return tok
	}
	rest := tok[i:]
	if rest == "" && tok != "" {
		// Bare number is only valid as part of a result token.
		return tok
	}
	j := 0
	for j < len(rest) && rest[j] == '.' {
		j++
	}
	if j == 0 {
		return tok
	}
	return rest[j:]
}

func isResultToken(tok string) bool {
	switch tok {
	case "1-0", "0-1", "1/2-1/2", "*":
		return true
	}
	return false
}
