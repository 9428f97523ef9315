package chesshound

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/notnil/chess"
)

// ErrInvalidFilter indicates a filter expression failed validation.
var ErrInvalidFilter = errors.New("chesshound: invalid filter")

// FilterOp identifies a filter variant.
type FilterOp string

const (
	// OpAll matches every game.
	OpAll FilterOp = "all"
	// OpAnd matches when every child matches.
	OpAnd FilterOp = "and"
	// OpOr matches when any child matches.
	OpOr FilterOp = "or"
	// OpNot inverts its child.
	OpNot FilterOp = "not"
	// OpDateRange matches games played within [Start, End).
	OpDateRange FilterOp = "date_range"
	// OpColor matches games where the subject played the given color.
	OpColor FilterOp = "color"
	// OpRatingBand matches games where the subject's rating is within
	// [Min, Max].
	OpRatingBand FilterOp = "rating_band"
	// OpOpponentFloor matches games where the opponent's rating is at
	// least Floor.
	OpOpponentFloor FilterOp = "opponent_floor"
	// OpSpeed matches games of the given time-control class.
	OpSpeed FilterOp = "speed"
)

// Filter is a sampling predicate over games, modeled as a small algebra of
// tagged variants rather than opaque closures so that filters serialize to
// JSON for debugging, manifests, and CLI flags.
//
// Every leaf is a pure function of the game's metadata. Criteria that
// depend on a fact the metadata does not carry (an unknown rating, no
// subject player) fail closed: the game is excluded rather than guessed
// about.
type Filter struct {
	Op       FilterOp  `json:"op"`
	Children []*Filter `json:"children,omitempty"`
	Start    time.Time `json:"start,omitempty"`
	End      time.Time `json:"end,omitempty"`
	Color    string    `json:"color,omitempty"`
	Min      int       `json:"min,omitempty"`
	Max      int       `json:"max,omitempty"`
	Floor    int       `json:"floor,omitempty"`
	Speed    string    `json:"speed,omitempty"`
}

// MatchAll returns the filter that passes every game.
func MatchAll() *Filter {
	return &Filter{Op: OpAll}
}

// And composes filters conjunctively.
func And(filters ...*Filter) *Filter {
	return &Filter{Op: OpAnd, Children: filters}
}

// Or composes filters disjunctively.
func Or(filters ...*Filter) *Filter {
	return &Filter{Op: OpOr, Children: filters}
}

// Not inverts a filter.
func Not(f *Filter) *Filter {
	return &Filter{Op: OpNot, Children: []*Filter{f}}
}

// ByDateRange matches games played at or after start and before end.
func ByDateRange(start, end time.Time) *Filter {
	return &Filter{Op: OpDateRange, Start: start, End: end}
}

// ByColor matches games where the subject played the given color.
func ByColor(color chess.Color) *Filter {
	return &Filter{Op: OpColor, Color: color.Name()}
}

// ByRatingBand matches games where the subject's rating is within
// [min, max]. Games with an unknown subject rating never match.
func ByRatingBand(min, max int) *Filter {
	return &Filter{Op: OpRatingBand, Min: min, Max: max}
}

// ByOpponentRatingFloor matches games where the subject's opponent is
// rated at least floor. Games with an unknown opponent rating never match.
func ByOpponentRatingFloor(floor int) *Filter {
	return &Filter{Op: OpOpponentFloor, Floor: floor}
}

// BySpeed matches games of the given time-control class.
func BySpeed(class TimeControlClass) *Filter {
	return &Filter{Op: OpSpeed, Speed: class.String()}
}

// Matches reports whether the game passes the filter. A nil filter passes
// everything.
func (f *Filter) Matches(g *Game) bool {
	if f == nil {
		return true
	}
	meta := g.Meta()
	switch f.Op {
	case OpAll, "":
		return true
	case OpAnd:
		for _, child := range f.Children {
			if !child.Matches(g) {
				return false
			}
		}
		return true
	case OpOr:
		for _, child := range f.Children {
			if child.Matches(g) {
				return true
			}
		}
		return false
	case OpNot:
		return len(f.Children) == 1 && !f.Children[0].Matches(g)
	case OpDateRange:
		if meta.PlayedAt.IsZero() {
			return false
		}
		return !meta.PlayedAt.Before(f.Start) && meta.PlayedAt.Before(f.End)
	case OpColor:
		color, ok := meta.SubjectColor()
		return ok && color.Name() == f.Color
	case OpRatingBand:
		rating, ok := meta.SubjectRating()
		return ok && rating >= f.Min && rating <= f.Max
	case OpOpponentFloor:
		rating, ok := meta.OpponentRating()
		return ok && rating >= f.Floor
	case OpSpeed:
		return meta.TimeControl.String() == f.Speed
	}
	return false
}

// Validate checks that the filter expression is structurally sound.
func (f *Filter) Validate() error {
	if f == nil {
		return nil
	}
	switch f.Op {
	case OpAll, "":
		return nil
	case OpAnd, OpOr:
		for _, child := range f.Children {
			if err := child.Validate(); err != nil {
				return err
			}
		}
		return nil
	case OpNot:
		if len(f.Children) != 1 {
			return fmt.Errorf("%w: not takes exactly one child", ErrInvalidFilter)
		}
		return f.Children[0].Validate()
	case OpDateRange:
		if !f.End.After(f.Start) {
			return fmt.Errorf("%w: date range end must follow start", ErrInvalidFilter)
		}
		return nil
	case OpColor:
		if f.Color != chess.White.Name() && f.Color != chess.Black.Name() {
			return fmt.Errorf("%w: unknown color %q", ErrInvalidFilter, f.Color)
		}
		return nil
	case OpRatingBand:
		if f.Min > f.Max {
			return fmt.Errorf("%w: rating band min %d > max %d", ErrInvalidFilter, f.Min, f.Max)
		}
		return nil
	case OpOpponentFloor, OpSpeed:
		return nil
	}
	return fmt.Errorf("%w: unknown op %q", ErrInvalidFilter, f.Op)
}

// ParseFilter decodes and validates a JSON filter expression.
func ParseFilter(data []byte) (*Filter, error) {
	var f Filter
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Apply returns the games passing the filter, preserving order.
func Apply(f *Filter, games []*Game) []*Game {
	if f == nil {
		return games
	}
	out := make([]*Game, 0, len(games))
	for _, g := range games {
		if f.Matches(g) {
			out = append(out, g)
		}
	}
	return out
}
