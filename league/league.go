// Package league ведёт лиги из нескольких игровых дней: круговые группы
// в каждой категории и следом настраиваемый плей-офф на выбывание.
package league

import (
	"errors"
	"fmt"

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/models"
)

var (
	ErrInvalidGroupCount = errors.New("group count must be at least 1")
	ErrInvalidQualifiers = errors.New("qualifiers per group must be 1, 2, 4 or 8")
	ErrInvalidLegs       = errors.New("playoff ties are played over 1 or 2 legs")
	ErrInvalidCrossType  = errors.New("unknown cross type")
	ErrNotPlayoffMatch   = errors.New("match is not part of a playoff stage")
)

// Schedule: результат генерации групп.
type Schedule struct {
	Groups  []models.Group       `json:"groups"`
	Matches []models.LeagueMatch `json:"matches"`
}

// GenerateGroups упорядочивает пары категории методом посева, делит их на
// groupCount почти равных групп и строит круг в каждой. Группы набираются
// подряд идущими блоками, кроме rating_mixed: там пары раздаются по группам
// по одной. При неравном делении лишняя пара достаётся первым группам.
func GenerateGroups(pairs []models.LeaguePair, players []models.Player, groupCount int, method models.SeedMethod, double bool) (Schedule, error) {
	if groupCount < 1 || groupCount > len(models.GroupNames) {
		return Schedule{}, fmt.Errorf("%w: got %d", ErrInvalidGroupCount, groupCount)
	}
	if len(pairs) < 2*groupCount {
		return Schedule{}, &brackets.InsufficientPairsError{Required: 2 * groupCount, Available: len(pairs)}
	}

	asPairs := make([]models.Pair, len(pairs))
	for i, lp := range pairs {
		p2 := lp.Player2ID
		asPairs[i] = models.Pair{ID: lp.ID, Player1ID: lp.Player1ID, Player2ID: &p2, Status: models.PairConfirmed}
	}
	ordered, err := brackets.OrderPairs(asPairs, players, method)
	if err != nil {
		return Schedule{}, err
	}

	groups := make([]models.Group, groupCount)
	for g := range groups {
		groups[g] = models.Group{Name: models.GroupNames[g], PairIDs: []int{}}
	}
	base, extra := len(ordered)/groupCount, len(ordered)%groupCount
	g, filled := 0, 0
	for i, p := range ordered {
		if method == models.SeedRatingMixed {
			groups[i%groupCount].PairIDs = append(groups[i%groupCount].PairIDs, p.ID)
			continue
		}
		size := base
		if g < extra {
			size++
		}
		if filled == size {
			g, filled = g+1, 0
		}
		groups[g].PairIDs = append(groups[g].PairIDs, p.ID)
		filled++
	}

	var matches []models.LeagueMatch
	for _, grp := range groups {
		for _, f := range brackets.RoundRobin(grp.PairIDs, double) {
			matches = append(matches, models.LeagueMatch{
				Phase:     models.PhaseGroup,
				GroupName: grp.Name,
				Matchday:  f.Round,
				Leg:       f.Leg,
				PairAID:   f.A,
				PairBID:   f.B,
			})
		}
	}
	return Schedule{Groups: groups, Matches: matches}, nil
}

// GroupStandings строит таблицы групп по завершённым матчам.
func GroupStandings(groups []models.Group, matches []models.LeagueMatch) [][]models.PairStanding {
	return brackets.AllStandings(groups, groupMatches(matches))
}

func groupMatches(matches []models.LeagueMatch) []models.Match {
	out := make([]models.Match, 0, len(matches))
	for _, m := range matches {
		if m.Phase == models.PhaseGroup {
			out = append(out, m.AsMatch())
		}
	}
	return out
}
