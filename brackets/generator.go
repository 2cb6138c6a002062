package brackets

import (
	"fmt"

	"github.com/antoniorme/minis-padel/models"
)

// ScheduleEntry: один групповой матч шаблона. Участники группы на позициях
// A и B встречаются в указанном туре на указанном корте.
type ScheduleEntry struct {
	Round int
	Group int
	A, B  int
	Court int
}

type SeedKind int

const (
	// SeedGroupRank: пара, занявшая место Rank в группе Group.
	SeedGroupRank SeedKind = iota
	// SeedRankTier: Position-я по силе пара среди занявших место Rank
	// в своих группах.
	SeedRankTier
	// SeedWinner: победитель матча плей-офф в туре Round на корте Court.
	SeedWinner
)

// Seed описывает, откуда приходит сторона матча плей-офф.
type Seed struct {
	Kind     SeedKind
	Group    int
	Rank     int
	Position int
	Round    int
	Court    int
}

func groupRank(group, rank int) Seed { return Seed{Kind: SeedGroupRank, Group: group, Rank: rank} }
func rankTier(rank, pos int) Seed    { return Seed{Kind: SeedRankTier, Rank: rank, Position: pos} }
func winnerOf(round, court int) Seed { return Seed{Kind: SeedWinner, Round: round, Court: court} }

func (s Seed) String() string {
	switch s.Kind {
	case SeedGroupRank:
		return fmt.Sprintf("%d%s", s.Rank, models.GroupNames[s.Group])
	case SeedRankTier:
		return fmt.Sprintf("best %d of rank %d", s.Position, s.Rank)
	case SeedWinner:
		return fmt.Sprintf("W(R%d C%d)", s.Round, s.Court)
	}
	return "?"
}

// KnockoutSlot: один матч плей-офф шаблона.
type KnockoutSlot struct {
	Round   int
	Phase   models.Phase
	Bracket models.Bracket
	Court   int
	A, B    Seed
}

// Template: фиксированная схема формата, групповое расписание
// и следом сетка плей-офф.
type Template struct {
	Format    models.Format
	Groups    int
	GroupSize int
	Schedule  []ScheduleEntry
	Knockout  []KnockoutSlot
}

// TemplateFor возвращает схему формата.
func TemplateFor(format models.Format) (*Template, error) {
	t, ok := templates[format]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
	return t, nil
}

// GroupRounds: последний тур группового этапа.
func (t *Template) GroupRounds() int {
	last := 0
	for _, e := range t.Schedule {
		if e.Round > last {
			last = e.Round
		}
	}
	return last
}

// FinalRound: последний тур турнира.
func (t *Template) FinalRound() int {
	last := t.GroupRounds()
	for _, k := range t.Knockout {
		if k.Round > last {
			last = k.Round
		}
	}
	return last
}

// KnockoutRound возвращает матчи плей-офф указанного тура.
func (t *Template) KnockoutRound(round int) []KnockoutSlot {
	var out []KnockoutSlot
	for _, k := range t.Knockout {
		if k.Round == round {
			out = append(out, k)
		}
	}
	return out
}

// Lookup находит запись расписания, по которой создан групповой матч.
func (t *Template) Lookup(round, court int) (ScheduleEntry, bool) {
	for _, e := range t.Schedule {
		if e.Round == round && e.Court == court {
			return e, true
		}
	}
	return ScheduleEntry{}, false
}
