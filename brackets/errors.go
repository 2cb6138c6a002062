package brackets

import (
	"errors"
	"fmt"
)

var (
	ErrInsufficientPairs         = errors.New("not enough complete pairs for the format")
	ErrIncompleteRound           = errors.New("current round has unfinished matches")
	ErrUnrecognizedScheduleShape = errors.New("matches do not fit any known group schedule")
	ErrUnsupportedFormat         = errors.New("unsupported tournament format")
	ErrTournamentNotActive       = errors.New("tournament is not active")
)

// InsufficientPairsError: при посеве полных пар меньше, чем требует формат.
type InsufficientPairsError struct {
	Required  int
	Available int
}

func (e *InsufficientPairsError) Error() string {
	return fmt.Sprintf("%s: need %d, have %d", ErrInsufficientPairs, e.Required, e.Available)
}

func (e *InsufficientPairsError) Is(target error) bool { return target == ErrInsufficientPairs }

// IncompleteRoundError блокирует переход, пока есть незавершённые матчи
// или не хватает матча, из которого приходит победитель.
type IncompleteRoundError struct {
	Round   int
	Pending int
	Reason  string
}

func (e *IncompleteRoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: round %d: %s", ErrIncompleteRound, e.Round, e.Reason)
	}
	return fmt.Sprintf("%s: round %d has %d unfinished", ErrIncompleteRound, e.Round, e.Pending)
}

func (e *IncompleteRoundError) Is(target error) bool { return target == ErrIncompleteRound }

// UnrecognizedScheduleShapeError: групповой матч, который не сопоставляется
// ни с одной позицией в группе.
type UnrecognizedScheduleShapeError struct {
	MatchID int
	Round   int
	Court   int
	Reason  string
}

func (e *UnrecognizedScheduleShapeError) Error() string {
	return fmt.Sprintf("%s: match %d (round %d, court %d): %s", ErrUnrecognizedScheduleShape, e.MatchID, e.Round, e.Court, e.Reason)
}

func (e *UnrecognizedScheduleShapeError) Is(target error) bool {
	return target == ErrUnrecognizedScheduleShape
}
