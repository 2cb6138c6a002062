package services

import (
	"context"
	"errors"
	"testing"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/rating"
)

func strPtr(s string) *string     { return &s }
func floatPtr(v float64) *float64 { return &v }

func TestPlayerCreate(t *testing.T) {
	svc := NewPlayerService(fakePlayers{newMemStore()}, discardLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, testOwner, PlayerInput{
		Name:         strPtr("  Lucía "),
		Nickname:     strPtr(" "),
		Categories:   []string{"4ª CAT", "4ª cat", "3ª CAT"},
		ManualRating: floatPtr(7),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name != "Lucía" || p.Nickname != nil {
		t.Errorf("name/nickname = %q/%v", p.Name, p.Nickname)
	}
	if len(p.Categories) != 2 {
		t.Errorf("categories = %v, want duplicates dropped", p.Categories)
	}
	if want := rating.InitialRating(p.Categories, 7); p.GlobalRating != want {
		t.Errorf("GlobalRating = %v, want %v", p.GlobalRating, want)
	}

	bad := []PlayerInput{
		{Name: strPtr("")},
		{Name: strPtr("Ana"), Categories: []string{"Pro"}},
		{Name: strPtr("Ana"), ManualRating: floatPtr(11)},
	}
	for _, in := range bad {
		if _, err := svc.Create(ctx, testOwner, in); err == nil {
			t.Errorf("Create(%+v) succeeded, want error", in)
		}
	}
	if _, err := svc.Create(ctx, testOwner, bad[1]); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("unknown category error = %v", err)
	}
}

func TestPlayerUpdateRecomputesUntilFirstMatch(t *testing.T) {
	store := newMemStore()
	svc := NewPlayerService(fakePlayers{store}, discardLogger())
	ctx := context.Background()

	p, err := svc.Create(ctx, testOwner, PlayerInput{Name: strPtr("Marta"), Categories: []string{"5ª CAT"}})
	if err != nil {
		t.Fatal(err)
	}
	p, err = svc.Update(ctx, testOwner, p.ID, PlayerInput{Categories: []string{"2ª CAT"}})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if p.GlobalRating != 1600 {
		t.Errorf("GlobalRating = %v, want 1600 after category change", p.GlobalRating)
	}

	store.players[p.ID].MatchesPlayed = 3
	store.players[p.ID].GlobalRating = 1612
	p, err = svc.Update(ctx, testOwner, p.ID, PlayerInput{ManualRating: floatPtr(9)})
	if err != nil {
		t.Fatal(err)
	}
	if p.GlobalRating != 1612 {
		t.Errorf("GlobalRating = %v, want earned rating kept", p.GlobalRating)
	}

	if _, err := svc.Update(ctx, testOwner+1, p.ID, PlayerInput{}); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("foreign Update() error = %v, want ErrPlayerNotFound", err)
	}
}

func TestPlayerRankingAndDelete(t *testing.T) {
	store := newMemStore()
	svc := NewPlayerService(fakePlayers{store}, discardLogger())
	ctx := context.Background()

	for _, c := range []string{"5ª CAT", "1ª CAT", "3ª CAT"} {
		if _, err := svc.Create(ctx, testOwner, PlayerInput{Name: strPtr(c), Categories: []string{c}}); err != nil {
			t.Fatal(err)
		}
	}
	ranking, err := svc.Ranking(ctx, testOwner)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"1ª CAT", "3ª CAT", "5ª CAT"}
	for i, p := range ranking {
		if p.Name != want[i] {
			t.Fatalf("ranking[%d] = %s, want %s", i, p.Name, want[i])
		}
	}

	store.pairs[99] = &models.Pair{ID: 99, TournamentID: 1, Player1ID: ranking[0].ID}
	if err := svc.Delete(ctx, testOwner, ranking[0].ID); !errors.Is(err, ErrPlayerInUse) {
		t.Errorf("Delete() of paired player error = %v, want ErrPlayerInUse", err)
	}
	if err := svc.Delete(ctx, testOwner, ranking[1].ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, testOwner, ranking[1].ID); !errors.Is(err, ErrPlayerNotFound) {
		t.Errorf("repeated Delete() error = %v, want ErrPlayerNotFound", err)
	}
}
