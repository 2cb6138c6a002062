package brackets

import (
	"sort"

	"github.com/antoniorme/minis-padel/models"
)

// Standings строит таблицу группы по завершённым групповым матчам её участников.
// Порядок: победы, затем разница геймов; при равенстве сохраняется порядок группы.
func Standings(group models.Group, matches []models.Match) []models.PairStanding {
	rows := make([]models.PairStanding, 0, len(group.PairIDs))
	pos := make(map[int]int, len(group.PairIDs))
	for _, id := range group.PairIDs {
		if id == 0 {
			continue
		}
		pos[id] = len(rows)
		rows = append(rows, models.PairStanding{PairID: id})
	}

	for _, m := range matches {
		if m.Phase != models.PhaseGroup || !m.IsFinished || m.ScoreA == nil || m.ScoreB == nil {
			continue
		}
		ia, okA := pos[m.PairAID]
		ib, okB := pos[m.PairBID]
		if !okA || !okB {
			continue
		}
		a, b := *m.ScoreA, *m.ScoreB
		tally(&rows[ia], a, b)
		tally(&rows[ib], b, a)
	}

	sortStandings(rows)
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func tally(row *models.PairStanding, own, other int) {
	row.Played++
	row.GamesFor += own
	row.GamesAg += other
	row.GameDiff += own - other
	switch {
	case own > other:
		row.Wins++
	case own < other:
		row.Losses++
	}
}

func sortStandings(rows []models.PairStanding) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Wins != rows[j].Wins {
			return rows[i].Wins > rows[j].Wins
		}
		return rows[i].GameDiff > rows[j].GameDiff
	})
}

// AllStandings считает таблицы всех групп.
func AllStandings(groups []models.Group, matches []models.Match) [][]models.PairStanding {
	out := make([][]models.PairStanding, len(groups))
	for i, g := range groups {
		out[i] = Standings(g, matches)
	}
	return out
}

// RankAcrossGroups упорядочивает пары, занявшие место rank в своих группах,
// по тому же сравнению, что и таблицы групп.
func RankAcrossGroups(tables [][]models.PairStanding, rank int) []models.PairStanding {
	var tier []models.PairStanding
	for _, t := range tables {
		if rank >= 1 && rank <= len(t) {
			tier = append(tier, t[rank-1])
		}
	}
	sortStandings(tier)
	return tier
}

// DerivePairStats пересчитывает статистику каждой пары по завершённым матчам.
func DerivePairStats(pairs []models.Pair, matches []models.Match) []models.Pair {
	out := make([]models.Pair, len(pairs))
	idx := make(map[int]int, len(pairs))
	for i, p := range pairs {
		p.Stats = models.PairStats{}
		out[i] = p
		idx[p.ID] = i
	}
	for _, m := range matches {
		if !m.IsFinished || m.ScoreA == nil || m.ScoreB == nil {
			continue
		}
		if i, ok := idx[m.PairAID]; ok {
			addStats(&out[i].Stats, *m.ScoreA, *m.ScoreB)
		}
		if i, ok := idx[m.PairBID]; ok {
			addStats(&out[i].Stats, *m.ScoreB, *m.ScoreA)
		}
	}
	return out
}

func addStats(s *models.PairStats, own, other int) {
	s.Played++
	s.GameDiff += own - other
	if own > other {
		s.Won++
	}
}
