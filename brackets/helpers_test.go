package brackets

import (
	"reflect"
	"testing"

	"github.com/antoniorme/minis-padel/models"
)

func intPtr(v int) *int { return &v }

// ratedPairs создаёт по полной паре на каждый рейтинг. В паре i+1 игроки
// 2i+1 и 2i+2, у каждого половина рейтинга пары.
func ratedPairs(ratings []float64) ([]models.Pair, []models.Player) {
	pairs := make([]models.Pair, 0, len(ratings))
	players := make([]models.Player, 0, 2*len(ratings))
	for i, r := range ratings {
		p1, p2 := 2*i+1, 2*i+2
		players = append(players,
			models.Player{ID: p1, GlobalRating: r / 2},
			models.Player{ID: p2, GlobalRating: r / 2},
		)
		pairs = append(pairs, models.Pair{ID: i + 1, Player1ID: p1, Player2ID: intPtr(p2), Status: models.PairConfirmed})
	}
	return pairs, players
}

func plainPairs(n int) ([]models.Pair, []models.Player) {
	ratings := make([]float64, n)
	for i := range ratings {
		ratings[i] = 2400
	}
	return ratedPairs(ratings)
}

func materialize(tournamentID, firstID int, drafts []models.MatchDraft) []models.Match {
	out := make([]models.Match, len(drafts))
	for i, d := range drafts {
		out[i] = d.ToMatch(tournamentID)
		out[i].ID = firstID + i
	}
	return out
}

// finishRound завершает открытые матчи до тура round: меньший id пары выигрывает 6-3.
func finishRound(matches []models.Match, round int) {
	for i := range matches {
		m := &matches[i]
		if m.Round > round || m.IsFinished {
			continue
		}
		if m.PairAID < m.PairBID {
			m.ScoreA, m.ScoreB = intPtr(6), intPtr(3)
		} else {
			m.ScoreA, m.ScoreB = intPtr(3), intPtr(6)
		}
		m.IsFinished = true
	}
}

func groupIDs(groups []models.Group) [][]int {
	out := make([][]int, len(groups))
	for i, g := range groups {
		out[i] = g.PairIDs
	}
	return out
}

func assertGroups(t *testing.T, got []models.Group, want [][]int) {
	t.Helper()
	if !reflect.DeepEqual(groupIDs(got), want) {
		t.Fatalf("groups = %v, want %v", groupIDs(got), want)
	}
	for i, g := range got {
		if g.Name != models.GroupNames[i] {
			t.Fatalf("group %d named %q, want %q", i, g.Name, models.GroupNames[i])
		}
	}
}
