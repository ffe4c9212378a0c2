package leaderboard

import (
	"cmp"
	"fmt"
	"slices"

	"pyventure/internal/domain/model"
)

type Field string

const (
	FieldScore    Field = "score"
	FieldLevels   Field = "levels"
	FieldAttempts Field = "attempts"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

func ParseField(s string) (Field, error) {
	switch Field(s) {
	case "":
		return FieldScore, nil
	case FieldScore, FieldLevels, FieldAttempts:
		return Field(s), nil
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "":
		return Desc, nil
	case Asc, Desc:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}

func (d Direction) Reverse() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// State is the active sort of a leaderboard view.
type State struct {
	Field     Field     `json:"field"`
	Direction Direction `json:"direction"`
}

func DefaultState() State { return State{Field: FieldScore, Direction: Desc} }

// Toggle flips the direction when field is already active, otherwise it
// switches to field sorted descending.
func (s State) Toggle(field Field) State {
	if s.Field == field {
		return State{Field: field, Direction: s.Direction.Reverse()}
	}
	return State{Field: field, Direction: Desc}
}

func value(e model.LeaderboardEntry, f Field) int {
	switch f {
	case FieldLevels:
		return e.Stats.TotalCompletedLevels
	case FieldAttempts:
		return e.Stats.TotalAttempts
	default:
		return e.Stats.TotalScore
	}
}

// compareAsc is a total order: the field first, then user id, then rank.
// Entries equal under it are indistinguishable for display.
func compareAsc(a, b model.LeaderboardEntry, f Field) int {
	return cmp.Or(
		cmp.Compare(value(a, f), value(b, f)),
		cmp.Compare(a.User.ID, b.User.ID),
		cmp.Compare(a.Rank, b.Rank),
	)
}

// Sort returns a sorted copy of entries. Because the order is total,
// sorting the result by the same field in the other direction yields exactly
// the reverse sequence.
func Sort(entries []model.LeaderboardEntry, s State) []model.LeaderboardEntry {
	out := slices.Clone(entries)
	slices.SortStableFunc(out, func(a, b model.LeaderboardEntry) int {
		c := compareAsc(a, b, s.Field)
		if s.Direction == Desc {
			return -c
		}
		return c
	})
	return out
}

// Decorate fills the derived progress percentage from the number of levels
// in the catalog.
func Decorate(entries []model.LeaderboardEntry, totalLevels int) []model.LeaderboardEntry {
	out := slices.Clone(entries)
	for i := range out {
		out[i].Progress = ProgressPercent(out[i].Stats.TotalCompletedLevels, totalLevels)
	}
	return out
}

func ProgressPercent(completed, total int) int {
	if total <= 0 || completed <= 0 {
		return 0
	}
	p := completed * 100 / total
	return min(p, 100)
}
