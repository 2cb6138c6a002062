package services

import (
	"context"
	"errors"
	"testing"

	"github.com/antoniorme/minis-padel/models"
)

type pairFixture struct {
	store      *memStore
	svc        PairService
	tournament *models.Tournament
	players    []int
}

func newPairFixture(t *testing.T, playerCount int) *pairFixture {
	t.Helper()
	ctx := context.Background()
	store := newMemStore()
	tournaments := fakeTournaments{store}
	tournament := &models.Tournament{OwnerID: testOwner, Name: "Miércoles", Format: models.Format8, Status: models.StatusSetup}
	if err := tournaments.Create(ctx, tournament); err != nil {
		t.Fatal(err)
	}
	f := &pairFixture{
		store:      store,
		svc:        NewPairService(fakeTx{}, tournaments, fakePairs{store}, fakePlayers{store}, discardLogger()),
		tournament: tournament,
	}
	for i := 0; i < playerCount; i++ {
		p := &models.Player{OwnerID: testOwner, Name: "p", GlobalRating: 1200}
		if err := (fakePlayers{store}).Upsert(ctx, nil, p); err != nil {
			t.Fatal(err)
		}
		f.players = append(f.players, p.ID)
	}
	return f
}

func TestPairCreateValidatesPlayers(t *testing.T) {
	f := newPairFixture(t, 4)
	ctx := context.Background()
	tid := f.tournament.ID

	pair, err := f.svc.Create(ctx, testOwner, tid, CreatePairInput{Player1ID: f.players[0], Player2ID: intPtr(f.players[1])})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if pair.Status != models.PairConfirmed || pair.IsReserve || !pair.IsComplete() {
		t.Errorf("pair = %+v, want confirmed complete non-reserve", pair)
	}

	foreign := &models.Player{OwnerID: testOwner + 1, Name: "visitor"}
	if err := (fakePlayers{f.store}).Upsert(ctx, nil, foreign); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		input CreatePairInput
		want  error
	}{
		{"already paired", CreatePairInput{Player1ID: f.players[1], Player2ID: intPtr(f.players[2])}, ErrPlayerAlreadyPaired},
		{"same player twice", CreatePairInput{Player1ID: f.players[2], Player2ID: intPtr(f.players[2])}, ErrValidationFailed},
		{"other club", CreatePairInput{Player1ID: f.players[2], Player2ID: intPtr(foreign.ID)}, ErrPlayerNotFound},
		{"missing player", CreatePairInput{}, ErrValidationFailed},
		{"bad status", CreatePairInput{Player1ID: f.players[2], Status: "maybe"}, ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Create(ctx, testOwner, tid, tt.input); !errors.Is(err, tt.want) {
				t.Fatalf("Create() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := f.svc.Create(ctx, testOwner+1, tid, CreatePairInput{Player1ID: f.players[2]}); !errors.Is(err, ErrTournamentNotFound) {
		t.Errorf("foreign Create() error = %v, want ErrTournamentNotFound", err)
	}
}

func TestPairReservesFollowArrival(t *testing.T) {
	f := newPairFixture(t, 20)
	ctx := context.Background()

	var last *models.Pair
	for i := 0; i < 9; i++ {
		p, err := f.svc.Create(ctx, testOwner, f.tournament.ID, CreatePairInput{Player1ID: f.players[2*i], Player2ID: intPtr(f.players[2*i+1])})
		if err != nil {
			t.Fatal(err)
		}
		last = p
	}
	if !last.IsReserve {
		t.Fatalf("ninth pair of an 8-pair format should be a reserve")
	}

	pairs, _ := f.svc.List(ctx, testOwner, f.tournament.ID)
	if err := f.svc.Delete(ctx, testOwner, f.tournament.ID, pairs[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if f.store.pairs[last.ID].IsReserve {
		t.Errorf("reserve not promoted after a withdrawal")
	}
}

func TestJoinAndAssignPartner(t *testing.T) {
	f := newPairFixture(t, 1)
	ctx := context.Background()
	tid := f.tournament.ID

	joined, err := f.svc.Join(ctx, tid, JoinInput{Name: "Nueva", Categories: []string{"5ª CAT"}})
	if err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if !joined.Pair.IsSolo() || joined.Pair.Status != models.PairPending {
		t.Fatalf("joined pair = %+v, want pending solo", joined.Pair)
	}
	if joined.Player.OwnerID != testOwner || joined.Player.GlobalRating != 1000 {
		t.Errorf("joined player = %+v", joined.Player)
	}

	if _, err := f.svc.AssignPartner(ctx, testOwner, tid, joined.Pair.ID, joined.Player.ID); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("self partner error = %v, want ErrValidationFailed", err)
	}
	pair, err := f.svc.AssignPartner(ctx, testOwner, tid, joined.Pair.ID, f.players[0])
	if err != nil {
		t.Fatalf("AssignPartner() error = %v", err)
	}
	if !pair.IsComplete() || pair.Status != models.PairConfirmed {
		t.Errorf("pair = %+v, want complete and confirmed", pair)
	}
	if _, err := f.svc.AssignPartner(ctx, testOwner, tid, joined.Pair.ID, f.players[0]); !errors.Is(err, ErrPairNotSolo) {
		t.Errorf("second AssignPartner() error = %v, want ErrPairNotSolo", err)
	}

	f.store.tournaments[tid].Status = models.StatusActive
	if _, err := f.svc.Join(ctx, tid, JoinInput{Name: "Tarde"}); !errors.Is(err, ErrTournamentNotInSetup) {
		t.Errorf("Join() after start error = %v, want ErrTournamentNotInSetup", err)
	}
}

func TestPairStatusAndFlags(t *testing.T) {
	f := newPairFixture(t, 2)
	ctx := context.Background()
	tid := f.tournament.ID

	pair, err := f.svc.Create(ctx, testOwner, tid, CreatePairInput{Player1ID: f.players[0], Player2ID: intPtr(f.players[1]), Status: models.PairPending})
	if err != nil {
		t.Fatal(err)
	}
	paid := true
	updated, err := f.svc.Update(ctx, testOwner, tid, pair.ID, UpdatePairInput{Paid: &paid})
	if err != nil || !updated.Paid || updated.WaterReceived {
		t.Fatalf("Update() = %+v, %v", updated, err)
	}

	if _, err := f.svc.SetStatus(ctx, testOwner, tid, pair.ID, models.PairRejected); err != nil {
		t.Fatalf("SetStatus(rejected) error = %v", err)
	}
	if _, err := f.svc.SetStatus(ctx, testOwner, tid, pair.ID, models.PairConfirmed); !errors.Is(err, ErrPairRejected) {
		t.Errorf("SetStatus after rejection error = %v, want ErrPairRejected", err)
	}
	if _, err := f.svc.SetStatus(ctx, testOwner, tid, pair.ID, "unknown"); !errors.Is(err, ErrValidationFailed) {
		t.Errorf("SetStatus(unknown) error = %v, want ErrValidationFailed", err)
	}

	f.store.matches[500] = &models.Match{ID: 500, TournamentID: tid, PairAID: pair.ID, PairBID: 77}
	if err := f.svc.Delete(ctx, testOwner, tid, pair.ID); !errors.Is(err, ErrPairInUse) {
		t.Errorf("Delete() of scheduled pair error = %v, want ErrPairInUse", err)
	}
}
