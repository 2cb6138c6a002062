package league

import (
	"fmt"

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/models"
)

// tieOrder раскладывает посев по стадии так, чтобы сильнейшие встречались
// как можно позже.
var tieOrder = map[int][]int{
	1: {0},
	2: {0, 1},
	4: {0, 1, 3, 2},
	8: {0, 1, 3, 2, 6, 7, 5, 4},
}

type tie struct{ a, b int }

func validQualifiers(q int) bool {
	return q == 1 || q == 2 || q == 4 || q == 8
}

// AdvanceToPlayoffs выводит лучшие пары каждой группы в плей-офф и проводит
// жеребьёвку первой стадии. Все групповые матчи должны быть завершены.
//
// crossed: группы идут парами (A с B, C с D, ...), i-й прошедший одной группы
// играет с i-м с конца другой. Оставшаяся нечётная группа разыгрывается внутри.
// internal: i-й прошедший группы играет с i-м с конца той же группы.
func AdvanceToPlayoffs(settings models.LeagueSettings, groups []models.Group, matches []models.LeagueMatch) ([]models.LeagueMatch, error) {
	q := settings.QualifiersPerGroup
	if !validQualifiers(q) {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidQualifiers, q)
	}
	legs := settings.Legs
	if legs == 0 {
		legs = 1
	}
	if legs != 1 && legs != 2 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLegs, settings.Legs)
	}
	if len(groups) == 0 {
		return nil, ErrInvalidGroupCount
	}
	// Одна группа всегда разыгрывается внутри себя.
	internal := settings.CrossType == models.CrossInternal || len(groups) == 1
	if internal && q < 2 {
		return nil, fmt.Errorf("%w: internal draw needs at least 2 per group", ErrInvalidQualifiers)
	}

	pending := 0
	for _, m := range matches {
		if m.Phase == models.PhaseGroup && !m.IsFinished {
			pending++
		}
	}
	if pending > 0 {
		return nil, &brackets.IncompleteRoundError{Pending: pending, Reason: fmt.Sprintf("%d group matches unfinished", pending)}
	}

	tables := GroupStandings(groups, matches)
	qualified := make([][]int, len(tables))
	for g, rows := range tables {
		if len(rows) < q {
			return nil, &brackets.InsufficientPairsError{Required: q, Available: len(rows)}
		}
		for _, row := range rows[:q] {
			qualified[g] = append(qualified[g], row.PairID)
		}
	}

	var blocks [][]tie
	switch settings.CrossType {
	case models.CrossCrossed:
		for g := 0; g+1 < len(qualified); g += 2 {
			blocks = append(blocks, crossedTies(qualified[g], qualified[g+1]))
		}
		if len(qualified)%2 == 1 {
			blocks = append(blocks, internalTies(qualified[len(qualified)-1]))
		}
	case models.CrossInternal:
		for _, ids := range qualified {
			blocks = append(blocks, internalTies(ids))
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidCrossType, settings.CrossType)
	}

	total := 0
	for _, b := range blocks {
		total += len(b)
	}
	stage, err := brackets.StageForTies(total)
	if err != nil {
		return nil, err
	}
	perBlock := len(blocks[0])
	order, ok := tieOrder[perBlock]
	if !ok {
		return nil, fmt.Errorf("%w: %d ties per group", brackets.ErrPlayoffSize, perBlock)
	}
	for _, b := range blocks {
		if len(b) != perBlock {
			return nil, fmt.Errorf("%w: uneven groups", brackets.ErrPlayoffSize)
		}
	}

	slots := make([]tie, total)
	if internal {
		// Пары одной группы встречаются между собой раньше, чем с соседними группами.
		for bi, b := range blocks {
			for j, t := range b {
				slots[order[j]*len(blocks)+bi] = t
			}
		}
	} else {
		// Пары блока идут по силе посева, а посев раскладывается по всей сетке:
		// победители двух групп блока попадают в разные половины.
		global := tieOrder[total]
		for bi, b := range blocks {
			for r, j := range strengthOrder(len(b)) {
				slots[global[r*len(blocks)+bi]] = b[j]
			}
		}
	}

	out := make([]models.LeagueMatch, 0, total*legs)
	for slot, t := range slots {
		out = append(out, tieLegs(stage, slot, legs, t.a, t.b)...)
	}
	return out, nil
}

func crossedTies(g, h []int) []tie {
	q := len(g)
	out := make([]tie, q)
	for i := range g {
		out[i] = tie{g[i], h[q-1-i]}
	}
	return out
}

// strengthOrder упорядочивает пары матчей перекрёстного блока по лучшему
// посеву: сначала матч победителя первой группы, затем второй, и так далее.
func strengthOrder(n int) []int {
	out := make([]int, 0, n)
	for lo, hi := 0, n-1; lo <= hi; lo, hi = lo+1, hi-1 {
		out = append(out, lo)
		if hi != lo {
			out = append(out, hi)
		}
	}
	return out
}

func internalTies(ids []int) []tie {
	q := len(ids)
	out := make([]tie, 0, q/2)
	for i := 0; i < q/2; i++ {
		out = append(out, tie{ids[i], ids[q-1-i]})
	}
	return out
}

// tieLegs строит записи одного противостояния. Во втором матче стороны меняются.
func tieLegs(stage models.Phase, slot, legs, a, b int) []models.LeagueMatch {
	out := []models.LeagueMatch{{Phase: models.PhasePlayoff, Stage: stage, Slot: slot, Leg: 1, PairAID: a, PairBID: b}}
	if legs == 2 {
		out = append(out, models.LeagueMatch{Phase: models.PhasePlayoff, Stage: stage, Slot: slot, Leg: 2, PairAID: b, PairBID: a})
	}
	return out
}
