package services

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/repositories"
	"github.com/antoniorme/minis-padel/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTx вызывает callback без настоящей транзакции; репозитории игнорируют exec.
type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

// memStore: общая база в памяти за фейковыми репозиториями.
type memStore struct {
	mu            sync.Mutex
	nextID        int
	organizers    map[int]*models.Organizer
	players       map[int]*models.Player
	tournaments   map[int]*models.Tournament
	pairs         map[int]*models.Pair
	matches       map[int]*models.Match
	leagues       map[int]*models.League
	categories    map[int]*models.LeagueCategory
	leaguePairs   map[int]*models.LeaguePair
	leagueMatches map[int]*models.LeagueMatch
}

func newMemStore() *memStore {
	return &memStore{
		organizers:    map[int]*models.Organizer{},
		players:       map[int]*models.Player{},
		tournaments:   map[int]*models.Tournament{},
		pairs:         map[int]*models.Pair{},
		matches:       map[int]*models.Match{},
		leagues:       map[int]*models.League{},
		categories:    map[int]*models.LeagueCategory{},
		leaguePairs:   map[int]*models.LeaguePair{},
		leagueMatches: map[int]*models.LeagueMatch{},
	}
}

func (s *memStore) id() int {
	s.nextID++
	return s.nextID
}

func sortedKeys[T any](m map[int]T) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

func intPtr(v int) *int { return &v }

// --- организаторы ---

type fakeOrganizers struct{ s *memStore }

func (r fakeOrganizers) Create(ctx context.Context, o *models.Organizer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.organizers {
		if existing.Email == o.Email {
			return repositories.ErrOrganizerEmailConflict
		}
	}
	o.ID = r.s.id()
	o.CreatedAt = time.Now()
	cp := *o
	r.s.organizers[o.ID] = &cp
	return nil
}

func (r fakeOrganizers) GetByID(ctx context.Context, id int) (*models.Organizer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.organizers[id]
	if !ok {
		return nil, repositories.ErrOrganizerNotFound
	}
	cp := *o
	return &cp, nil
}

func (r fakeOrganizers) GetByEmail(ctx context.Context, email string) (*models.Organizer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.organizers {
		if o.Email == email {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repositories.ErrOrganizerNotFound
}

// --- игроки ---

type fakePlayers struct{ s *memStore }

func copyPlayer(p *models.Player) models.Player {
	cp := *p
	cp.Categories = append([]string(nil), p.Categories...)
	cp.CategoryRatings = make(map[string]float64, len(p.CategoryRatings))
	for k, v := range p.CategoryRatings {
		cp.CategoryRatings[k] = v
	}
	return cp
}

func (r fakePlayers) ListByOwner(ctx context.Context, ownerID int) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Player{}
	for _, id := range sortedKeys(r.s.players) {
		if p := r.s.players[id]; p.OwnerID == ownerID {
			out = append(out, copyPlayer(p))
		}
	}
	return out, nil
}

func (r fakePlayers) GetByID(ctx context.Context, id int) (*models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	cp := copyPlayer(p)
	return &cp, nil
}

func (r fakePlayers) GetByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]models.Player, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Player{}
	sorted := append([]int(nil), ids...)
	sort.Ints(sorted)
	for _, id := range sorted {
		if p, ok := r.s.players[id]; ok {
			out = append(out, copyPlayer(p))
		}
	}
	return out, nil
}

func (r fakePlayers) LockByIDs(ctx context.Context, exec repositories.SQLExecutor, ids []int) ([]models.Player, error) {
	return r.GetByIDs(ctx, exec, ids)
}

func (r fakePlayers) Upsert(ctx context.Context, exec repositories.SQLExecutor, p *models.Player) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == 0 {
		p.ID = r.s.id()
		p.CreatedAt = time.Now()
	} else if existing, ok := r.s.players[p.ID]; !ok || existing.OwnerID != p.OwnerID {
		return repositories.ErrPlayerNotFound
	}
	cp := copyPlayer(p)
	r.s.players[p.ID] = &cp
	return nil
}

func (r fakePlayers) ApplyRatingDelta(ctx context.Context, exec repositories.SQLExecutor, playerID int, category string, categoryRating, globalRating float64, matchesPlayed int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[playerID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	if category != "" {
		if p.CategoryRatings == nil {
			p.CategoryRatings = map[string]float64{}
		}
		p.CategoryRatings[category] = categoryRating
	}
	p.GlobalRating = globalRating
	p.MatchesPlayed = matchesPlayed
	return nil
}

func (r fakePlayers) Delete(ctx context.Context, ownerID, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.players[id]
	if !ok || p.OwnerID != ownerID {
		return repositories.ErrPlayerNotFound
	}
	for _, pair := range r.s.pairs {
		for _, pid := range pair.PlayerIDs() {
			if pid == id {
				return repositories.ErrPlayerInUse
			}
		}
	}
	delete(r.s.players, id)
	return nil
}

// --- турниры ---

type fakeTournaments struct{ s *memStore }

func (r fakeTournaments) Create(ctx context.Context, t *models.Tournament) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	t.CreatedAt = time.Now()
	cp := *t
	r.s.tournaments[t.ID] = &cp
	return nil
}

func (r fakeTournaments) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r fakeTournaments) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	return r.GetByID(ctx, exec, id)
}

func (r fakeTournaments) ListByOwner(ctx context.Context, ownerID int, includeArchived bool) ([]models.Tournament, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Tournament{}
	for _, id := range sortedKeys(r.s.tournaments) {
		t := r.s.tournaments[id]
		if t.OwnerID == ownerID && (includeArchived || t.ArchivedAt == nil) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r fakeTournaments) UpdateProgress(ctx context.Context, exec repositories.SQLExecutor, id int, status models.TournamentStatus, round int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status, t.CurrentRound = status, round
	return nil
}

func (r fakeTournaments) UpdateDetails(ctx context.Context, id int, name string, courtCount int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Name, t.CourtCount = name, courtCount
	return nil
}

func (r fakeTournaments) MarkArchived(ctx context.Context, exec repositories.SQLExecutor, id int, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.ArchivedAt = &at
	return nil
}

func (r fakeTournaments) Delete(ctx context.Context, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.s.tournaments, id)
	return nil
}

// --- пары ---

type fakePairs struct{ s *memStore }

func copyPair(p *models.Pair) models.Pair {
	cp := *p
	if p.Player2ID != nil {
		cp.Player2ID = intPtr(*p.Player2ID)
	}
	return cp
}

func (r fakePairs) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Pair, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Pair{}
	for _, id := range sortedKeys(r.s.pairs) {
		if p := r.s.pairs[id]; p.TournamentID == tournamentID {
			out = append(out, copyPair(p))
		}
	}
	return out, nil
}

func (r fakePairs) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Pair, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pairs[id]
	if !ok {
		return nil, repositories.ErrPairNotFound
	}
	cp := copyPair(p)
	return &cp, nil
}

func (r fakePairs) Upsert(ctx context.Context, exec repositories.SQLExecutor, p *models.Pair) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.Status == "" {
		p.Status = models.PairConfirmed
	}
	if p.ID == 0 {
		p.ID = r.s.id()
		p.CreatedAt = time.Now()
	} else if existing, ok := r.s.pairs[p.ID]; !ok || existing.TournamentID != p.TournamentID {
		return repositories.ErrPairNotFound
	}
	cp := copyPair(p)
	r.s.pairs[p.ID] = &cp
	return nil
}

func (r fakePairs) Delete(ctx context.Context, exec repositories.SQLExecutor, tournamentID, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.pairs[id]
	if !ok || p.TournamentID != tournamentID {
		return repositories.ErrPairNotFound
	}
	for _, m := range r.s.matches {
		if m.Involves(id) {
			return repositories.ErrPairHasMatches
		}
	}
	delete(r.s.pairs, id)
	return nil
}

func (r fakePairs) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.pairs {
		if p.TournamentID == tournamentID {
			delete(r.s.pairs, id)
		}
	}
	return nil
}

func (r fakePairs) SetReserves(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, reserveIDs []int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	reserve := map[int]bool{}
	for _, id := range reserveIDs {
		reserve[id] = true
	}
	for _, p := range r.s.pairs {
		if p.TournamentID == tournamentID {
			p.IsReserve = reserve[p.ID]
		}
	}
	return nil
}

// --- матчи ---

type fakeMatches struct{ s *memStore }

func (r fakeMatches) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Match{}
	for _, id := range sortedKeys(r.s.matches) {
		if m := r.s.matches[id]; m.TournamentID == tournamentID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r fakeMatches) GetByID(ctx context.Context, id int) (*models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r fakeMatches) GetForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, id)
}

func (r fakeMatches) InsertMatches(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, drafts []models.MatchDraft) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.Match, 0, len(drafts))
	for _, d := range drafts {
		m := d.ToMatch(tournamentID)
		m.ID = r.s.id()
		m.CreatedAt = time.Now()
		cp := m
		r.s.matches[m.ID] = &cp
		out = append(out, m)
	}
	return out, nil
}

func (r fakeMatches) UpdateScore(ctx context.Context, exec repositories.SQLExecutor, id, scoreA, scoreB int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.ScoreA, m.ScoreB, m.IsFinished = intPtr(scoreA), intPtr(scoreB), true
	return nil
}

func (r fakeMatches) MarkRatingProcessed(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	m.RatingProcessed = true
	return nil
}

func (r fakeMatches) ListPendingRatings(ctx context.Context, limit int) ([]models.Match, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Match{}
	for _, id := range sortedKeys(r.s.matches) {
		m := r.s.matches[id]
		if m.IsFinished && !m.RatingProcessed && len(out) < limit {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r fakeMatches) DeleteByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, m := range r.s.matches {
		if m.TournamentID == tournamentID {
			delete(r.s.matches, id)
		}
	}
	return nil
}

// --- лиги ---

type fakeLeagues struct{ s *memStore }

func (r fakeLeagues) CreateLeague(ctx context.Context, l *models.League) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.id()
	cp := *l
	r.s.leagues[l.ID] = &cp
	return nil
}

func (r fakeLeagues) GetLeague(ctx context.Context, id int) (*models.League, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.leagues[id]
	if !ok {
		return nil, repositories.ErrLeagueNotFound
	}
	cp := *l
	return &cp, nil
}

func (r fakeLeagues) ListLeaguesByOwner(ctx context.Context, ownerID int) ([]models.League, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.League{}
	for _, id := range sortedKeys(r.s.leagues) {
		if l := r.s.leagues[id]; l.OwnerID == ownerID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r fakeLeagues) CreateCategory(ctx context.Context, c *models.LeagueCategory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	cp := *c
	r.s.categories[c.ID] = &cp
	return nil
}

func (r fakeLeagues) GetCategory(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.LeagueCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, repositories.ErrLeagueCategoryNotFound
	}
	cp := *c
	cp.Groups = append([]models.Group(nil), c.Groups...)
	return &cp, nil
}

func (r fakeLeagues) GetCategoryForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.LeagueCategory, error) {
	return r.GetCategory(ctx, exec, id)
}

func (r fakeLeagues) ListCategories(ctx context.Context, leagueID int) ([]models.LeagueCategory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.LeagueCategory{}
	for _, id := range sortedKeys(r.s.categories) {
		if c := r.s.categories[id]; c.LeagueID == leagueID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r fakeLeagues) UpdateCategoryState(ctx context.Context, exec repositories.SQLExecutor, id int, status models.LeagueCategoryStatus, groups []models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.categories[id]
	if !ok {
		return repositories.ErrLeagueCategoryNotFound
	}
	c.Status, c.Groups = status, groups
	return nil
}

func (r fakeLeagues) AddPair(ctx context.Context, p *models.LeaguePair) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.leaguePairs {
		if existing.CategoryID != p.CategoryID {
			continue
		}
		for _, a := range []int{existing.Player1ID, existing.Player2ID} {
			if a == p.Player1ID || a == p.Player2ID {
				return repositories.ErrLeaguePairConflict
			}
		}
	}
	p.ID = r.s.id()
	cp := *p
	r.s.leaguePairs[p.ID] = &cp
	return nil
}

func (r fakeLeagues) ListPairs(ctx context.Context, exec repositories.SQLExecutor, categoryID int) ([]models.LeaguePair, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.LeaguePair{}
	for _, id := range sortedKeys(r.s.leaguePairs) {
		if p := r.s.leaguePairs[id]; p.CategoryID == categoryID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r fakeLeagues) InsertMatches(ctx context.Context, exec repositories.SQLExecutor, categoryID int, matches []models.LeagueMatch) ([]models.LeagueMatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]models.LeagueMatch, 0, len(matches))
	for _, m := range matches {
		m.ID = r.s.id()
		m.CategoryID = categoryID
		cp := m
		r.s.leagueMatches[m.ID] = &cp
		out = append(out, m)
	}
	return out, nil
}

func (r fakeLeagues) ListMatches(ctx context.Context, exec repositories.SQLExecutor, categoryID int) ([]models.LeagueMatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.LeagueMatch{}
	for _, id := range sortedKeys(r.s.leagueMatches) {
		if m := r.s.leagueMatches[id]; m.CategoryID == categoryID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r fakeLeagues) GetMatchForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.LeagueMatch, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.leagueMatches[id]
	if !ok {
		return nil, repositories.ErrLeagueMatchNotFound
	}
	cp := *m
	return &cp, nil
}

func (r fakeLeagues) UpdateMatchScore(ctx context.Context, exec repositories.SQLExecutor, id, scoreA, scoreB int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.leagueMatches[id]
	if !ok {
		return repositories.ErrLeagueMatchNotFound
	}
	m.ScoreA, m.ScoreB, m.IsFinished = intPtr(scoreA), intPtr(scoreB), true
	return nil
}

func (r fakeLeagues) UpdateMatchSides(ctx context.Context, exec repositories.SQLExecutor, id, pairAID, pairBID int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.leagueMatches[id]
	if !ok || m.IsFinished {
		return repositories.ErrLeagueMatchNotFound
	}
	m.PairAID, m.PairBID = pairAID, pairBID
	return nil
}

// --- соавторы ---

type recordingNotifier struct {
	mu     sync.Mutex
	scores []models.Match
	rounds [][]models.Match
}

func (n *recordingNotifier) OnScoreSubmitted(ctx context.Context, tournamentID int, match models.Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.scores = append(n.scores, match)
}

func (n *recordingNotifier) OnRoundAdvance(ctx context.Context, tournament models.Tournament, newMatches []models.Match) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.rounds = append(n.rounds, newMatches)
}

type memArchive struct {
	objects map[string][]byte
}

func (a *memArchive) Put(ctx context.Context, key, contentType string, body io.Reader) (*storage.StoredObject, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	if a.objects == nil {
		a.objects = map[string][]byte{}
	}
	a.objects[key] = bytes.Clone(data)
	return &storage.StoredObject{Key: key, Location: a.PublicURL(key)}, nil
}

func (a *memArchive) Delete(ctx context.Context, key string) error {
	delete(a.objects, key)
	return nil
}

func (a *memArchive) PublicURL(key string) string {
	return "https://archive.test/" + key
}
