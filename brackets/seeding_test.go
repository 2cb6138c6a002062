package brackets

import (
	"errors"
	"reflect"
	"testing"

	"github.com/antoniorme/minis-padel/models"
)

// sixteenRatings даёт паре i+1 рейтинг 600 + i*93.33: пара 16 сильнейшая,
// пара 1 самая слабая.
func sixteenRatings() []float64 {
	r := make([]float64, 16)
	for i := range r {
		r[i] = 600 + float64(i)*1400/15
	}
	return r
}

func TestAssignGroupsRatingBalancedContiguousBlocks(t *testing.T) {
	pairs, players := ratedPairs(sixteenRatings())
	s, err := AssignGroups(pairs, players, models.SeedRatingBalanced, models.Format16)
	if err != nil {
		t.Fatalf("AssignGroups: %v", err)
	}
	assertGroups(t, s.Groups, [][]int{
		{16, 15, 14, 13},
		{12, 11, 10, 9},
		{8, 7, 6, 5},
		{4, 3, 2, 1},
	})
	if len(s.Reserves) != 0 {
		t.Fatalf("reserves = %v, want none", s.Reserves)
	}
}

func TestAssignGroupsRatingMixedSnake(t *testing.T) {
	pairs, players := ratedPairs(sixteenRatings())
	s, err := AssignGroups(pairs, players, models.SeedRatingMixed, models.Format16)
	if err != nil {
		t.Fatalf("AssignGroups: %v", err)
	}
	assertGroups(t, s.Groups, [][]int{
		{16, 12, 8, 4},
		{15, 11, 7, 3},
		{14, 10, 6, 2},
		{13, 9, 5, 1},
	})

	// в каждой группе ровно одна пара из каждого уровня силы
	for _, g := range s.Groups {
		tiers := map[int]bool{}
		for _, id := range g.PairIDs {
			tiers[(16-id)/4] = true
		}
		if len(tiers) != 4 {
			t.Fatalf("group %s = %v does not span all tiers", g.Name, g.PairIDs)
		}
	}
}

func TestAssignGroupsArrivalAndManual(t *testing.T) {
	pairs, players := plainPairs(8)
	reversed := make([]models.Pair, len(pairs))
	for i, p := range pairs {
		reversed[len(pairs)-1-i] = p
	}

	s, err := AssignGroups(reversed, players, models.SeedArrival, models.Format8)
	if err != nil {
		t.Fatalf("arrival: %v", err)
	}
	assertGroups(t, s.Groups, [][]int{{1, 2, 3, 4}, {5, 6, 7, 8}})

	s, err = AssignGroups(reversed, players, models.SeedManual, models.Format8)
	if err != nil {
		t.Fatalf("manual: %v", err)
	}
	assertGroups(t, s.Groups, [][]int{{8, 7, 6, 5}, {4, 3, 2, 1}})
}

func TestAssignGroupsSkipsIncompleteAndKeepsReserves(t *testing.T) {
	pairs, players := plainPairs(12)
	pairs[0].Player2ID = nil
	pairs[1].Status = models.PairPending
	pairs[2].Status = models.PairRejected
	s, err := AssignGroups(pairs, players, models.SeedArrival, models.Format8)
	if err != nil {
		t.Fatalf("AssignGroups: %v", err)
	}
	assertGroups(t, s.Groups, [][]int{{4, 5, 6, 7}, {8, 9, 10, 11}})
	if !reflect.DeepEqual(s.Reserves, []int{12}) {
		t.Fatalf("reserves = %v, want [12]", s.Reserves)
	}

	seen := map[int]bool{}
	for _, g := range s.Groups {
		for _, id := range g.PairIDs {
			if seen[id] {
				t.Fatalf("pair %d placed twice", id)
			}
			if id <= 3 {
				t.Fatalf("incomplete pair %d was seeded", id)
			}
			seen[id] = true
		}
	}
}

func TestAssignGroupsInsufficientPairs(t *testing.T) {
	pairs, players := plainPairs(11)
	_, err := AssignGroups(pairs, players, models.SeedRatingBalanced, models.Format12)
	if !errors.Is(err, ErrInsufficientPairs) {
		t.Fatalf("got %v, want ErrInsufficientPairs", err)
	}
	var ipe *InsufficientPairsError
	if !errors.As(err, &ipe) || ipe.Required != 12 || ipe.Available != 11 {
		t.Fatalf("error detail = %+v", ipe)
	}
}

func TestAssignGroupsTenPairsTwoGroupsOfFive(t *testing.T) {
	pairs, players := plainPairs(10)
	s, err := AssignGroups(pairs, players, models.SeedArrival, models.Format10)
	if err != nil {
		t.Fatalf("AssignGroups: %v", err)
	}
	assertGroups(t, s.Groups, [][]int{{1, 2, 3, 4, 5}, {6, 7, 8, 9, 10}})
}

func TestAssignGroupsCoverageAcrossFormatsAndMethods(t *testing.T) {
	formats := []models.Format{models.Format8, models.Format10, models.Format12, models.Format16}
	methods := []models.SeedMethod{models.SeedArrival, models.SeedRatingBalanced, models.SeedRatingMixed, models.SeedManual}
	for _, f := range formats {
		ratings := make([]float64, f.Limit()+3)
		for i := range ratings {
			ratings[i] = float64(1000 + (i*37)%500)
		}
		pairs, players := ratedPairs(ratings)
		for _, m := range methods {
			s, err := AssignGroups(pairs, players, m, f)
			if err != nil {
				t.Fatalf("%d/%s: %v", f, m, err)
			}
			seen := map[int]bool{}
			for _, g := range s.Groups {
				if len(g.PairIDs) != f.GroupSize() {
					t.Fatalf("%d/%s: group %s has %d pairs", f, m, g.Name, len(g.PairIDs))
				}
				for _, id := range g.PairIDs {
					if seen[id] {
						t.Fatalf("%d/%s: pair %d in two groups", f, m, id)
					}
					seen[id] = true
				}
			}
			for _, id := range s.Reserves {
				if seen[id] {
					t.Fatalf("%d/%s: reserve %d also seeded", f, m, id)
				}
			}
			if len(seen)+len(s.Reserves) != len(pairs) {
				t.Fatalf("%d/%s: %d seeded + %d reserves != %d pairs", f, m, len(seen), len(s.Reserves), len(pairs))
			}
		}
	}
}

func TestMarkReservesByArrival(t *testing.T) {
	pairs, _ := plainPairs(10)
	pairs[3].Player2ID = nil
	pairs[0].IsReserve = true
	marked := MarkReserves(pairs, models.Format8)

	var reserves []int
	for _, p := range marked {
		if p.IsReserve {
			reserves = append(reserves, p.ID)
		}
	}
	if !reflect.DeepEqual(reserves, []int{10}) {
		t.Fatalf("reserves = %v, want [10]", reserves)
	}
	if !pairs[0].IsReserve {
		t.Fatalf("MarkReserves mutated its input")
	}
}
