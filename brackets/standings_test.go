package brackets

import (
	"testing"

	"github.com/antoniorme/minis-padel/models"
)

func played(round, a, b, sa, sb int) models.Match {
	return models.Match{Round: round, Phase: models.PhaseGroup, CourtID: 1, PairAID: a, PairBID: b, ScoreA: intPtr(sa), ScoreB: intPtr(sb), IsFinished: true}
}

func standingIDs(rows []models.PairStanding) []int {
	ids := make([]int, len(rows))
	for i, r := range rows {
		ids[i] = r.PairID
	}
	return ids
}

func TestStandingsOrderByWinsThenGameDiff(t *testing.T) {
	group := models.Group{Name: "A", PairIDs: []int{1, 2, 3, 4}}
	matches := []models.Match{
		played(1, 1, 2, 2, 6),
		played(1, 3, 4, 6, 0),
		played(2, 1, 3, 6, 5),
		played(2, 2, 4, 6, 4),
		played(3, 1, 4, 6, 1),
		played(3, 2, 3, 3, 6),
	}
	rows := Standings(group, matches)
	// 1: 2w +2, 2: 2w +3, 3: 2w +8, 4: 0w -13
	want := []int{3, 2, 1, 4}
	for i, id := range standingIDs(rows) {
		if id != want[i] {
			t.Fatalf("order = %v, want %v", standingIDs(rows), want)
		}
	}
	if rows[0].Rank != 1 || rows[3].Rank != 4 {
		t.Fatalf("ranks not assigned: %+v", rows)
	}
	if rows[3].Losses != 3 || rows[3].GamesFor != 5 || rows[3].GamesAg != 18 {
		t.Fatalf("last row = %+v", rows[3])
	}
}

func TestStandingsIgnoresOtherMatches(t *testing.T) {
	group := models.Group{Name: "B", PairIDs: []int{5, 6}}
	unfinished := models.Match{Round: 1, Phase: models.PhaseGroup, PairAID: 5, PairBID: 6}
	knockout := played(5, 5, 6, 6, 0)
	knockout.Phase = models.PhaseQuarterfinal
	outsider := played(1, 5, 9, 0, 6)

	rows := Standings(group, []models.Match{unfinished, knockout, outsider})
	for _, r := range rows {
		if r.Played != 0 {
			t.Fatalf("row %+v counted a match it should not", r)
		}
	}
	if got := standingIDs(rows); got[0] != 5 || got[1] != 6 {
		t.Fatalf("unplayed group should keep group order, got %v", got)
	}
}

func TestStandingsWinsSumEqualsFinishedMatches(t *testing.T) {
	groups := seededGroups(t, models.Format16)
	drafts, _ := GenerateGroupMatches(models.Format16, groups)
	matches := materialize(1, 1, drafts)
	finishRound(matches, 3)

	for _, g := range groups {
		finished := 0
		for _, m := range matches {
			if m.IsFinished && g.Contains(m.PairAID) && g.Contains(m.PairBID) {
				finished++
			}
		}
		wins := 0
		for _, r := range Standings(g, matches) {
			wins += r.Wins
		}
		if wins != finished {
			t.Fatalf("group %s: %d wins for %d finished matches", g.Name, wins, finished)
		}
	}
}

func TestRankAcrossGroups(t *testing.T) {
	tables := [][]models.PairStanding{
		{{PairID: 1, Wins: 3}, {PairID: 2, Wins: 1, GameDiff: -1}, {PairID: 3, Wins: 1, GameDiff: 2}},
		{{PairID: 4, Wins: 2}, {PairID: 5, Wins: 2}, {PairID: 6, Wins: 1, GameDiff: 4}},
		{{PairID: 7, Wins: 2}, {PairID: 8, Wins: 1}},
	}
	thirds := RankAcrossGroups(tables, 3)
	if got := standingIDs(thirds); len(got) != 2 || got[0] != 6 || got[1] != 3 {
		t.Fatalf("thirds = %v, want [6 3]", got)
	}
	seconds := RankAcrossGroups(tables, 2)
	if got := standingIDs(seconds); got[0] != 5 || got[1] != 8 || got[2] != 2 {
		t.Fatalf("seconds = %v, want [5 8 2]", got)
	}
}

func TestDerivePairStats(t *testing.T) {
	pairs, _ := plainPairs(3)
	pairs[0].Stats = models.PairStats{Played: 99}
	matches := []models.Match{
		played(1, 1, 2, 6, 2),
		played(2, 3, 1, 6, 4),
		{Round: 3, PairAID: 2, PairBID: 3},
	}
	out := DerivePairStats(pairs, matches)
	want := []models.PairStats{
		{Played: 2, Won: 1, GameDiff: 2},
		{Played: 1, Won: 0, GameDiff: -4},
		{Played: 1, Won: 1, GameDiff: 2},
	}
	for i, p := range out {
		if p.Stats != want[i] {
			t.Fatalf("pair %d stats = %+v, want %+v", p.ID, p.Stats, want[i])
		}
	}
	if pairs[0].Stats.Played != 99 {
		t.Fatalf("DerivePairStats mutated its input")
	}
}
