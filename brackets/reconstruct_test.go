package brackets

import (
	"errors"
	"reflect"
	"testing"

	"github.com/antoniorme/minis-padel/models"
)

func TestRebuildGroupsInvertsEverySchedule(t *testing.T) {
	for _, f := range []models.Format{models.Format8, models.Format10, models.Format12, models.Format16} {
		pairs, players := plainPairs(f.Limit() + 2)
		s, err := AssignGroups(pairs, players, models.SeedRatingMixed, f)
		if err != nil {
			t.Fatalf("format %d: %v", f, err)
		}
		drafts, _ := GenerateGroupMatches(f, s.Groups)
		matches := materialize(1, 1, drafts)

		// записи пар изменены и переставлены после генерации
		shuffled := make([]models.Pair, len(pairs))
		for i, p := range pairs {
			p.Status = models.PairConfirmed
			shuffled[len(pairs)-1-i] = p
		}

		got, err := RebuildGroups(f, shuffled, matches, players)
		if err != nil {
			t.Fatalf("format %d: RebuildGroups: %v", f, err)
		}
		if !reflect.DeepEqual(groupIDs(got), groupIDs(s.Groups)) {
			t.Fatalf("format %d: rebuilt %v, seeded %v", f, groupIDs(got), groupIDs(s.Groups))
		}
	}
}

func TestRebuildGroupsIsIdempotent(t *testing.T) {
	state := startState(t, models.Format16)
	finishRound(state.Matches, 2)

	first, err := RebuildGroups(models.Format16, state.Pairs, state.Matches, state.Players)
	if err != nil {
		t.Fatalf("first rebuild: %v", err)
	}
	second, err := RebuildGroups(models.Format16, state.Pairs, state.Matches, state.Players)
	if err != nil {
		t.Fatalf("second rebuild: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("rebuilds differ: %v vs %v", first, second)
	}
}

func TestRebuildGroupsIgnoresKnockoutMatches(t *testing.T) {
	state := startState(t, models.Format8)
	for round := 1; round <= 3; round++ {
		finishRound(state.Matches, round)
		advance(t, state)
	}
	got, err := RebuildGroups(models.Format8, state.Pairs, state.Matches, state.Players)
	if err != nil {
		t.Fatalf("RebuildGroups: %v", err)
	}
	assertGroups(t, got, [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}})
}

func TestRebuildGroupsUnrecognizedCourt(t *testing.T) {
	matches := []models.Match{
		{ID: 3, Round: 1, Phase: models.PhaseGroup, CourtID: 7, PairAID: 1, PairBID: 2},
	}
	_, err := RebuildGroups(models.Format16, nil, matches, nil)
	if !errors.Is(err, ErrUnrecognizedScheduleShape) {
		t.Fatalf("got %v, want ErrUnrecognizedScheduleShape", err)
	}
	var use *UnrecognizedScheduleShapeError
	if !errors.As(err, &use) || use.MatchID != 3 || use.Court != 7 {
		t.Fatalf("error detail = %+v", use)
	}
}

func TestRebuildGroupsConflictingPositions(t *testing.T) {
	// тур 1 корт 1 даёт A[0]=1; тур 2 корт 1 даёт A[0]=9
	matches := []models.Match{
		{ID: 1, Round: 1, Phase: models.PhaseGroup, CourtID: 1, PairAID: 1, PairBID: 2},
		{ID: 2, Round: 2, Phase: models.PhaseGroup, CourtID: 1, PairAID: 9, PairBID: 3},
	}
	if _, err := RebuildGroups(models.Format8, nil, matches, nil); !errors.Is(err, ErrUnrecognizedScheduleShape) {
		t.Fatalf("got %v, want ErrUnrecognizedScheduleShape", err)
	}

	// одна пара не может быть в двух группах
	matches = []models.Match{
		{ID: 1, Round: 1, Phase: models.PhaseGroup, CourtID: 1, PairAID: 1, PairBID: 2},
		{ID: 2, Round: 1, Phase: models.PhaseGroup, CourtID: 3, PairAID: 1, PairBID: 6},
	}
	if _, err := RebuildGroups(models.Format8, nil, matches, nil); !errors.Is(err, ErrUnrecognizedScheduleShape) {
		t.Fatalf("got %v, want ErrUnrecognizedScheduleShape", err)
	}
}

func TestRebuildGroupsFallsBackToRatingBalanced(t *testing.T) {
	ratings := []float64{1000, 1800, 1400, 1200, 2000, 1600, 900, 1100}
	pairs, players := ratedPairs(ratings)
	got, err := RebuildGroups(models.Format8, pairs, nil, players)
	if err != nil {
		t.Fatalf("RebuildGroups: %v", err)
	}
	assertGroups(t, got, [][]int{{5, 2, 6, 3}, {4, 8, 1, 7}})

	// и при нехватке пар есть предпросмотр
	got, err = RebuildGroups(models.Format8, pairs[:5], nil, players)
	if err != nil {
		t.Fatalf("partial preview: %v", err)
	}
	assertGroups(t, got, [][]int{{5, 2, 3, 4}, {1}})
}

func TestReconstructRecomputesReservesFromGroups(t *testing.T) {
	state := startState(t, models.Format8)
	extra, _ := plainPairs(10)
	// поздние регистрации и переставленный список пар после генерации
	state.Pairs = append(state.Pairs, extra[8], extra[9])
	state.Pairs[0], state.Pairs[9] = state.Pairs[9], state.Pairs[0]
	finishRound(state.Matches, 1)

	if err := Reconstruct(state); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for _, p := range state.Pairs {
		wantReserve := p.ID > 8
		if p.IsReserve != wantReserve {
			t.Fatalf("pair %d reserve = %v, want %v", p.ID, p.IsReserve, wantReserve)
		}
	}
	if err := state.CheckInvariants(); err != nil {
		t.Fatalf("invariants: %v", err)
	}
	for _, p := range state.Pairs {
		if p.ID <= 8 && p.Stats.Played != 1 {
			t.Fatalf("pair %d stats not derived: %+v", p.ID, p.Stats)
		}
	}
}

func TestReconstructBeforeGenerationUsesArrival(t *testing.T) {
	pairs, players := plainPairs(10)
	state := &models.TournamentState{
		Tournament: models.Tournament{Format: models.Format8, Status: models.StatusSetup},
		Pairs:      pairs,
		Players:    players,
	}
	if err := Reconstruct(state); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !state.Pairs[8].IsReserve || !state.Pairs[9].IsReserve || state.Pairs[7].IsReserve {
		t.Fatalf("reserves by arrival wrong: %+v", state.Pairs)
	}
	if len(state.Groups) != 2 {
		t.Fatalf("expected a two-group preview, got %d", len(state.Groups))
	}
}

func TestReconstructLabelsPhysicalCourts(t *testing.T) {
	state := startState(t, models.Format8)
	state.Tournament.CourtCount = 2
	if err := Reconstruct(state); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for _, m := range state.Matches {
		wantCourt, wantWave := m.CourtID, 1
		if m.CourtID > 2 {
			wantCourt, wantWave = m.CourtID-2, 2
		}
		if m.PhysicalCourt != wantCourt || m.Wave != wantWave {
			t.Fatalf("court %d labelled (%d, %d), want (%d, %d)", m.CourtID, m.PhysicalCourt, m.Wave, wantCourt, wantWave)
		}
	}

	// без ограничения по кортам логический корт и есть физический
	state.Tournament.CourtCount = 0
	if err := Reconstruct(state); err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	for _, m := range state.Matches {
		if m.PhysicalCourt != m.CourtID || m.Wave != 1 {
			t.Fatalf("court %d labelled (%d, %d) without a court limit", m.CourtID, m.PhysicalCourt, m.Wave)
		}
	}
}
