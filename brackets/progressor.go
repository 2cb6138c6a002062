package brackets

import (
	"fmt"

	"github.com/antoniorme/minis-padel/models"
)

// Advancement: результат перехода турнира на следующий тур.
type Advancement struct {
	Tournament models.Tournament   `json:"tournament"`
	NewMatches []models.MatchDraft `json:"new_matches"`
	Finished   bool                `json:"finished"`
}

// Advance переводит активный турнир на следующий тур. Текущий тур должен быть
// сыгран полностью. В групповом этапе меняется только номер тура. Матчи тура
// плей-офф строятся по таблицам групп и победителям прошлых матчей. После
// последнего тура турнир завершается. state.Groups должен содержать
// восстановленный состав групп.
func Advance(state *models.TournamentState) (Advancement, error) {
	t := state.Tournament
	if t.Status != models.StatusActive {
		return Advancement{}, fmt.Errorf("%w: status %s", ErrTournamentNotActive, t.Status)
	}
	tpl, err := TemplateFor(t.Format)
	if err != nil {
		return Advancement{}, err
	}

	pending := 0
	for _, m := range state.Matches {
		if m.Round <= t.CurrentRound && !m.IsFinished {
			pending++
		}
	}
	if pending > 0 {
		return Advancement{}, &IncompleteRoundError{Round: t.CurrentRound, Pending: pending}
	}

	next := t.CurrentRound + 1
	if next > tpl.FinalRound() {
		t.Status = models.StatusFinished
		return Advancement{Tournament: t, Finished: true}, nil
	}

	var drafts []models.MatchDraft
	if next > tpl.GroupRounds() && !roundExists(state.Matches, next) {
		drafts, err = knockoutRound(tpl, next, state.Groups, state.Matches)
		if err != nil {
			return Advancement{}, err
		}
	}
	t.CurrentRound = next
	return Advancement{Tournament: t, NewMatches: drafts}, nil
}

func roundExists(matches []models.Match, round int) bool {
	for _, m := range matches {
		if m.Round == round {
			return true
		}
	}
	return false
}

func knockoutRound(tpl *Template, round int, groups []models.Group, matches []models.Match) ([]models.MatchDraft, error) {
	if len(groups) != tpl.Groups {
		return nil, fmt.Errorf("format %d expects %d groups, have %d", tpl.Format, tpl.Groups, len(groups))
	}
	r := resolver{groups: groups, tables: AllStandings(groups, matches), matches: matches}

	slots := tpl.KnockoutRound(round)
	drafts := make([]models.MatchDraft, 0, len(slots))
	for _, s := range slots {
		a, err := r.resolve(s.A)
		if err != nil {
			return nil, err
		}
		b, err := r.resolve(s.B)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, models.MatchDraft{
			Round:   s.Round,
			Phase:   s.Phase,
			Bracket: s.Bracket,
			CourtID: s.Court,
			PairAID: a,
			PairBID: b,
		})
	}
	return drafts, nil
}

type resolver struct {
	groups  []models.Group
	tables  [][]models.PairStanding
	matches []models.Match
}

func (r resolver) resolve(s Seed) (int, error) {
	switch s.Kind {
	case SeedGroupRank:
		t := r.tables[s.Group]
		if s.Rank >= 1 && s.Rank <= len(t) {
			return t[s.Rank-1].PairID, nil
		}
		return r.fallback(s.Group)
	case SeedRankTier:
		tier := RankAcrossGroups(r.tables, s.Rank)
		if s.Position >= 1 && s.Position <= len(tier) {
			return tier[s.Position-1].PairID, nil
		}
		return r.fallback(0)
	case SeedWinner:
		return r.winner(s.Round, s.Court)
	}
	return 0, fmt.Errorf("unknown seed kind %d", s.Kind)
}

// fallback подставляет первую пару неполной группы.
func (r resolver) fallback(group int) (int, error) {
	g := r.groups[group]
	for _, id := range g.PairIDs {
		if id != 0 {
			return id, nil
		}
	}
	return 0, &InsufficientPairsError{Required: 1, Available: 0}
}

func (r resolver) winner(round, court int) (int, error) {
	for _, m := range r.matches {
		if m.Round != round || m.CourtID != court || m.Phase == models.PhaseGroup {
			continue
		}
		if w, ok := m.Winner(); ok {
			return w, nil
		}
		return 0, &IncompleteRoundError{Round: round, Reason: fmt.Sprintf("match on court %d has no winner", court)}
	}
	return 0, &IncompleteRoundError{Round: round, Reason: fmt.Sprintf("no match on court %d", court)}
}
