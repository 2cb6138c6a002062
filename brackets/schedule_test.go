package brackets

import (
	"testing"

	"github.com/antoniorme/minis-padel/models"
)

func seededGroups(t *testing.T, f models.Format) []models.Group {
	t.Helper()
	pairs, players := plainPairs(f.Limit())
	s, err := AssignGroups(pairs, players, models.SeedArrival, f)
	if err != nil {
		t.Fatalf("AssignGroups(%d): %v", f, err)
	}
	return s.Groups
}

func TestGenerateGroupMatchesSixteenPairTable(t *testing.T) {
	groups := seededGroups(t, models.Format16)
	drafts, err := GenerateGroupMatches(models.Format16, groups)
	if err != nil {
		t.Fatalf("GenerateGroupMatches: %v", err)
	}
	if len(drafts) != 24 {
		t.Fatalf("got %d matches, want 24", len(drafts))
	}

	// Тур 1: A на кортах 1-2, B на 3-4, C на 5-6, D отдыхает.
	want := []models.MatchDraft{
		{Round: 1, Phase: models.PhaseGroup, CourtID: 1, PairAID: 1, PairBID: 2},
		{Round: 1, Phase: models.PhaseGroup, CourtID: 2, PairAID: 3, PairBID: 4},
		{Round: 1, Phase: models.PhaseGroup, CourtID: 3, PairAID: 5, PairBID: 6},
		{Round: 1, Phase: models.PhaseGroup, CourtID: 4, PairAID: 7, PairBID: 8},
		{Round: 1, Phase: models.PhaseGroup, CourtID: 5, PairAID: 9, PairBID: 10},
		{Round: 1, Phase: models.PhaseGroup, CourtID: 6, PairAID: 11, PairBID: 12},
	}
	for i, w := range want {
		if drafts[i] != w {
			t.Fatalf("draft %d = %+v, want %+v", i, drafts[i], w)
		}
	}

	// Во втором туре D выходит на корты 5-6 со своим первым туром.
	var r2c5 models.MatchDraft
	for _, d := range drafts {
		if d.Round == 2 && d.CourtID == 5 {
			r2c5 = d
		}
	}
	if r2c5.PairAID != 13 || r2c5.PairBID != 14 {
		t.Fatalf("round 2 court 5 = %+v, want 13 v 14", r2c5)
	}

	// В четвёртом туре последний тур B играется на кортах 1-2.
	for _, d := range drafts {
		if d.Round == 4 && d.CourtID == 1 && (d.PairAID != 5 || d.PairBID != 8) {
			t.Fatalf("round 4 court 1 = %+v, want 5 v 8", d)
		}
	}
}

func TestGenerateGroupMatchesEveryFormatIsCompleteRoundRobin(t *testing.T) {
	for _, f := range []models.Format{models.Format8, models.Format10, models.Format12, models.Format16} {
		groups := seededGroups(t, f)
		drafts, err := GenerateGroupMatches(f, groups)
		if err != nil {
			t.Fatalf("format %d: %v", f, err)
		}

		type key struct{ a, b int }
		met := map[key]int{}
		perRound := map[int]map[int]bool{}
		courts := map[[2]int]bool{}
		for _, d := range drafts {
			if d.Phase != models.PhaseGroup || d.Bracket != models.BracketNone {
				t.Fatalf("format %d: unexpected phase/bracket %+v", f, d)
			}
			a, b := d.PairAID, d.PairBID
			if a > b {
				a, b = b, a
			}
			met[key{a, b}]++
			if perRound[d.Round] == nil {
				perRound[d.Round] = map[int]bool{}
			}
			for _, id := range []int{d.PairAID, d.PairBID} {
				if perRound[d.Round][id] {
					t.Fatalf("format %d: pair %d plays twice in round %d", f, id, d.Round)
				}
				perRound[d.Round][id] = true
			}
			rc := [2]int{d.Round, d.CourtID}
			if courts[rc] {
				t.Fatalf("format %d: court %d double-booked in round %d", f, d.CourtID, d.Round)
			}
			courts[rc] = true
		}

		for _, g := range groups {
			for i := 0; i < len(g.PairIDs); i++ {
				for j := i + 1; j < len(g.PairIDs); j++ {
					if met[key{g.PairIDs[i], g.PairIDs[j]}] != 1 {
						t.Fatalf("format %d: pairs %d and %d meet %d times", f, g.PairIDs[i], g.PairIDs[j], met[key{g.PairIDs[i], g.PairIDs[j]}])
					}
				}
			}
		}
		size := f.GroupSize()
		if want := f.GroupCount() * size * (size - 1) / 2; len(drafts) != want {
			t.Fatalf("format %d: %d matches, want %d", f, len(drafts), want)
		}
	}
}

func TestSixteenPairEveryPairRestsOnce(t *testing.T) {
	groups := seededGroups(t, models.Format16)
	drafts, _ := GenerateGroupMatches(models.Format16, groups)
	rounds := map[int]map[int]bool{}
	for _, d := range drafts {
		for _, id := range []int{d.PairAID, d.PairBID} {
			if rounds[id] == nil {
				rounds[id] = map[int]bool{}
			}
			rounds[id][d.Round] = true
		}
	}
	for id := 1; id <= 16; id++ {
		if len(rounds[id]) != 3 {
			t.Fatalf("pair %d plays in %d of 4 rounds, want 3", id, len(rounds[id]))
		}
	}
	for id := 13; id <= 16; id++ {
		if rounds[id][1] {
			t.Fatalf("group D pair %d plays round 1", id)
		}
	}
}

func TestGenerateGroupMatchesSkipsMissingMembers(t *testing.T) {
	groups := []models.Group{
		{Name: "A", PairIDs: []int{1, 2, 3}},
		{Name: "B", PairIDs: []int{5, 6, 7, 8}},
	}
	drafts, err := GenerateGroupMatches(models.Format8, groups)
	if err != nil {
		t.Fatalf("GenerateGroupMatches: %v", err)
	}
	if len(drafts) != 3+6 {
		t.Fatalf("got %d matches, want 9", len(drafts))
	}
	for _, d := range drafts {
		if d.PairAID == 0 || d.PairBID == 0 {
			t.Fatalf("match with empty side %+v", d)
		}
	}
}

func TestGenerateGroupMatchesUnsupportedFormat(t *testing.T) {
	if _, err := GenerateGroupMatches(models.Format(6), nil); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestCourtLabel(t *testing.T) {
	tests := []struct {
		logical, courts, physical, wave int
	}{
		{5, 8, 5, 1},
		{5, 0, 5, 1},
		{4, 4, 4, 1},
		{5, 4, 1, 2},
		{6, 4, 2, 2},
		{6, 3, 3, 2},
		{7, 3, 1, 3},
	}
	for _, tc := range tests {
		p, w := CourtLabel(tc.logical, tc.courts)
		if p != tc.physical || w != tc.wave {
			t.Errorf("CourtLabel(%d, %d) = (%d, %d), want (%d, %d)", tc.logical, tc.courts, p, w, tc.physical, tc.wave)
		}
	}
}
