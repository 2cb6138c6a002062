package brackets

import (
	"fmt"

	"github.com/antoniorme/minis-padel/models"
)

// RebuildGroups восстанавливает состав групп по сохранённым групповым матчам,
// обращая расписание формата: тур и корт матча определяют группу и позиции
// обеих пар. Без групповых матчей группы показываются как предпросмотр
// посева по рейтингу из имеющихся пар.
func RebuildGroups(format models.Format, pairs []models.Pair, matches []models.Match, players []models.Player) ([]models.Group, error) {
	tpl, err := TemplateFor(format)
	if err != nil {
		return nil, err
	}

	slots := make([][]int, tpl.Groups)
	for g := range slots {
		slots[g] = make([]int, tpl.GroupSize)
	}
	seen := make(map[int][2]int)
	found := false

	place := func(m models.Match, group, idx, pairID int) error {
		if pairID == 0 {
			return &UnrecognizedScheduleShapeError{MatchID: m.ID, Round: m.Round, Court: m.CourtID, Reason: "missing pair"}
		}
		if at, ok := seen[pairID]; ok && at != [2]int{group, idx} {
			return &UnrecognizedScheduleShapeError{MatchID: m.ID, Round: m.Round, Court: m.CourtID,
				Reason: fmt.Sprintf("pair %d already placed in group %s", pairID, models.GroupNames[at[0]])}
		}
		if cur := slots[group][idx]; cur != 0 && cur != pairID {
			return &UnrecognizedScheduleShapeError{MatchID: m.ID, Round: m.Round, Court: m.CourtID,
				Reason: fmt.Sprintf("group %s position %d holds pair %d, not %d", models.GroupNames[group], idx, cur, pairID)}
		}
		slots[group][idx] = pairID
		seen[pairID] = [2]int{group, idx}
		return nil
	}

	for _, m := range matches {
		if m.Phase != models.PhaseGroup {
			continue
		}
		found = true
		e, ok := tpl.Lookup(m.Round, m.CourtID)
		if !ok {
			return nil, &UnrecognizedScheduleShapeError{MatchID: m.ID, Round: m.Round, Court: m.CourtID, Reason: "no group plays there"}
		}
		if err := place(m, e.Group, e.A, m.PairAID); err != nil {
			return nil, err
		}
		if err := place(m, e.Group, e.B, m.PairBID); err != nil {
			return nil, err
		}
	}

	if !found {
		seeding, err := assign(pairs, players, models.SeedRatingBalanced, format, false)
		if err != nil {
			return nil, err
		}
		return seeding.Groups, nil
	}

	groups := make([]models.Group, tpl.Groups)
	for g := range groups {
		ids := make([]int, 0, tpl.GroupSize)
		for _, id := range slots[g] {
			if id != 0 {
				ids = append(ids, id)
			}
		}
		groups[g] = models.Group{Name: models.GroupNames[g], PairIDs: ids}
	}
	return groups, nil
}

// Reconstruct пересчитывает производные части загруженного состояния: группы,
// резерв, статистику пар и физический корт каждого матча. После генерации
// группового этапа резерв: полные пары вне групп; до неё резерв идёт
// по порядку регистрации.
func Reconstruct(state *models.TournamentState) error {
	groups, err := RebuildGroups(state.Tournament.Format, state.Pairs, state.Matches, state.Players)
	if err != nil {
		return err
	}
	state.Groups = groups

	if hasGroupMatches(state.Matches) {
		inGroup := make(map[int]bool)
		for _, g := range groups {
			for _, id := range g.PairIDs {
				inGroup[id] = true
			}
		}
		for i := range state.Pairs {
			p := state.Pairs[i]
			state.Pairs[i].IsReserve = p.IsComplete() && !inGroup[p.ID]
		}
	} else {
		state.Pairs = MarkReserves(state.Pairs, state.Tournament.Format)
	}
	state.Pairs = DerivePairStats(state.Pairs, state.Matches)
	for i := range state.Matches {
		m := &state.Matches[i]
		m.PhysicalCourt, m.Wave = CourtLabel(m.CourtID, state.Tournament.CourtCount)
	}
	return nil
}

func hasGroupMatches(matches []models.Match) bool {
	for _, m := range matches {
		if m.Phase == models.PhaseGroup {
			return true
		}
	}
	return false
}
