package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/repositories"
	"github.com/antoniorme/minis-padel/storage"
	"golang.org/x/sync/errgroup"
)

const defaultCourtCount = 8

type CreateTournamentInput struct {
	Name       string        `json:"name"`
	Format     models.Format `json:"format"`
	CourtCount int           `json:"court_count"`
}

type UpdateTournamentInput struct {
	Name       *string `json:"name"`
	CourtCount *int    `json:"court_count"`
}

type StartTournamentInput struct {
	Method models.SeedMethod `json:"method"`
	// ManualOrder: порядок пар для метода manual. Непомянутые пары идут следом по порядку записи.
	ManualOrder []int `json:"manual_order,omitempty"`
}

// GroupTable: таблица одной группы.
type GroupTable struct {
	Group string                `json:"group"`
	Rows  []models.PairStanding `json:"rows"`
}

type ArchiveResult struct {
	Tournament models.Tournament     `json:"tournament"`
	Snapshot   *storage.StoredObject `json:"snapshot,omitempty"`
}

type TournamentService interface {
	Create(ctx context.Context, ownerID int, input CreateTournamentInput) (*models.Tournament, error)
	List(ctx context.Context, ownerID int, includeArchived bool) ([]models.Tournament, error)
	Update(ctx context.Context, ownerID, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error)
	Delete(ctx context.Context, ownerID, tournamentID int) error
	GetState(ctx context.Context, tournamentID int) (*models.TournamentState, error)
	Standings(ctx context.Context, tournamentID int) ([]GroupTable, error)
	Start(ctx context.Context, ownerID, tournamentID int, input StartTournamentInput) (*models.TournamentState, error)
	Advance(ctx context.Context, ownerID, tournamentID int) (*models.TournamentState, error)
	SubmitScore(ctx context.Context, ownerID, tournamentID, matchID, scoreA, scoreB int) (*models.Match, error)
	Reset(ctx context.Context, ownerID, tournamentID int) (*models.TournamentState, error)
	Archive(ctx context.Context, ownerID, tournamentID int) (*ArchiveResult, error)
}

type tournamentService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	pairRepo       repositories.PairRepository
	matchRepo      repositories.MatchRepository
	playerRepo     repositories.PlayerRepository
	ratings        RatingService
	archive        storage.ArchiveStore
	notifier       Notifier
	logger         *slog.Logger
	now            func() time.Time
}

// NewTournamentService собирает сервис турниров. archive и notifier могут быть nil.
func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	pairRepo repositories.PairRepository,
	matchRepo repositories.MatchRepository,
	playerRepo repositories.PlayerRepository,
	ratings RatingService,
	archive storage.ArchiveStore,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &tournamentService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		pairRepo:       pairRepo,
		matchRepo:      matchRepo,
		playerRepo:     playerRepo,
		ratings:        ratings,
		archive:        archive,
		notifier:       notifier,
		logger:         logger,
		now:            time.Now,
	}
}

func (s *tournamentService) Create(ctx context.Context, ownerID int, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if !input.Format.Valid() {
		return nil, fmt.Errorf("%w: format must be 8, 10, 12 or 16 pairs", ErrValidationFailed)
	}
	courts := input.CourtCount
	if courts == 0 {
		courts = defaultCourtCount
	}
	if courts < 1 {
		return nil, fmt.Errorf("%w: court count must be positive", ErrValidationFailed)
	}

	t := &models.Tournament{
		OwnerID:    ownerID,
		Name:       name,
		Format:     input.Format,
		Status:     models.StatusSetup,
		CourtCount: courts,
	}
	if err := s.tournamentRepo.Create(ctx, t); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("tournament created", slog.Int("tournament_id", t.ID), slog.Int("owner_id", ownerID), slog.Int("format", int(t.Format)))
	return t, nil
}

func (s *tournamentService) List(ctx context.Context, ownerID int, includeArchived bool) ([]models.Tournament, error) {
	list, err := s.tournamentRepo.ListByOwner(ctx, ownerID, includeArchived)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return list, nil
}

func (s *tournamentService) Update(ctx context.Context, ownerID, tournamentID int, input UpdateTournamentInput) (*models.Tournament, error) {
	t, err := s.owned(ctx, nil, ownerID, tournamentID, false)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
		}
		t.Name = name
	}
	if input.CourtCount != nil {
		if *input.CourtCount < 1 {
			return nil, fmt.Errorf("%w: court count must be positive", ErrValidationFailed)
		}
		t.CourtCount = *input.CourtCount
	}
	if err := s.tournamentRepo.UpdateDetails(ctx, t.ID, t.Name, t.CourtCount); err != nil {
		return nil, handleRepositoryError(err)
	}
	return t, nil
}

func (s *tournamentService) Delete(ctx context.Context, ownerID, tournamentID int) error {
	if _, err := s.owned(ctx, nil, ownerID, tournamentID, false); err != nil {
		return err
	}
	return handleRepositoryError(s.tournamentRepo.Delete(ctx, tournamentID))
}

// owned загружает турнир и проверяет владельца. forUpdate блокирует строку турнира.
func (s *tournamentService) owned(ctx context.Context, exec repositories.SQLExecutor, ownerID, tournamentID int, forUpdate bool) (*models.Tournament, error) {
	var (
		t   *models.Tournament
		err error
	)
	if forUpdate {
		t, err = s.tournamentRepo.GetForUpdate(ctx, exec, tournamentID)
	} else {
		t, err = s.tournamentRepo.GetByID(ctx, exec, tournamentID)
	}
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := ensureOwner(t.OwnerID, ownerID, ErrTournamentNotFound); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *tournamentService) GetState(ctx context.Context, tournamentID int) (*models.TournamentState, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return s.loadState(ctx, nil, t)
}

// loadState собирает агрегат турнира и восстанавливает группы по истории матчей.
// Вне транзакции игроки, пары и матчи читаются параллельно.
func (s *tournamentService) loadState(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) (*models.TournamentState, error) {
	state := &models.TournamentState{Tournament: *t}

	loaders := []func(context.Context) error{
		func(ctx context.Context) (err error) {
			state.Players, err = s.playerRepo.ListByOwner(ctx, t.OwnerID)
			return err
		},
		func(ctx context.Context) (err error) {
			state.Pairs, err = s.pairRepo.ListByTournament(ctx, exec, t.ID)
			return err
		},
		func(ctx context.Context) (err error) {
			state.Matches, err = s.matchRepo.ListByTournament(ctx, exec, t.ID)
			return err
		},
	}

	if exec == nil {
		g, gctx := errgroup.WithContext(ctx)
		for _, load := range loaders {
			load := load
			g.Go(func() error { return load(gctx) })
		}
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to load tournament %d: %w", t.ID, err)
		}
	} else {
		for _, load := range loaders {
			if err := load(ctx); err != nil {
				return nil, fmt.Errorf("failed to load tournament %d: %w", t.ID, err)
			}
		}
	}

	if err := brackets.Reconstruct(state); err != nil {
		s.logger.Error("tournament state reconstruction failed", slog.Int("tournament_id", t.ID), slog.Any("error", err))
		return nil, err
	}
	return state, nil
}

func (s *tournamentService) Standings(ctx context.Context, tournamentID int) ([]GroupTable, error) {
	state, err := s.GetState(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	return groupTables(state.Groups, brackets.AllStandings(state.Groups, state.Matches)), nil
}

func groupTables(groups []models.Group, tables [][]models.PairStanding) []GroupTable {
	out := make([]GroupTable, len(groups))
	for i, g := range groups {
		out[i] = GroupTable{Group: g.Name, Rows: tables[i]}
	}
	return out
}

func (s *tournamentService) Start(ctx context.Context, ownerID, tournamentID int, input StartTournamentInput) (*models.TournamentState, error) {
	if input.Method == "" {
		input.Method = models.SeedRatingBalanced
	}
	if !input.Method.Valid() {
		return nil, fmt.Errorf("%w: unknown seeding method %q", ErrValidationFailed, input.Method)
	}

	var (
		started *models.Tournament
		created []models.Match
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.owned(ctx, exec, ownerID, tournamentID, true)
		if err != nil {
			return err
		}
		if t.ArchivedAt != nil {
			return ErrTournamentArchived
		}
		if t.Status != models.StatusSetup {
			return ErrTournamentNotInSetup
		}

		pairs, err := s.pairRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return err
		}
		if input.Method == models.SeedManual {
			pairs = manualOrder(pairs, input.ManualOrder)
		}
		players, err := s.playerRepo.ListByOwner(ctx, t.OwnerID)
		if err != nil {
			return err
		}

		seeding, err := brackets.AssignGroups(pairs, players, input.Method, t.Format)
		if err != nil {
			return err
		}
		drafts, err := brackets.GenerateGroupMatches(t.Format, seeding.Groups)
		if err != nil {
			return err
		}

		if created, err = s.matchRepo.InsertMatches(ctx, exec, t.ID, drafts); err != nil {
			return err
		}
		if err := s.pairRepo.SetReserves(ctx, exec, t.ID, seeding.Reserves); err != nil {
			return err
		}
		t.Status, t.CurrentRound = models.StatusActive, 1
		if err := s.tournamentRepo.UpdateProgress(ctx, exec, t.ID, t.Status, t.CurrentRound); err != nil {
			return err
		}
		started = t
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("tournament started",
		slog.Int("tournament_id", tournamentID),
		slog.String("method", string(input.Method)),
		slog.Int("matches", len(created)),
	)
	s.notifier.OnRoundAdvance(ctx, *started, created)
	return s.GetState(ctx, tournamentID)
}

// manualOrder ставит перечисленные пары первыми в заданном порядке.
func manualOrder(pairs []models.Pair, order []int) []models.Pair {
	byID := make(map[int]models.Pair, len(pairs))
	for _, p := range pairs {
		byID[p.ID] = p
	}
	out := make([]models.Pair, 0, len(pairs))
	used := make(map[int]bool, len(order))
	for _, id := range order {
		if p, ok := byID[id]; ok && !used[id] {
			out = append(out, p)
			used[id] = true
		}
	}
	for _, p := range pairs {
		if !used[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func (s *tournamentService) Advance(ctx context.Context, ownerID, tournamentID int) (*models.TournamentState, error) {
	var (
		adv     brackets.Advancement
		created []models.Match
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.owned(ctx, exec, ownerID, tournamentID, true)
		if err != nil {
			return err
		}
		if t.ArchivedAt != nil {
			return ErrTournamentArchived
		}
		state, err := s.loadState(ctx, exec, t)
		if err != nil {
			return err
		}
		if adv, err = brackets.Advance(state); err != nil {
			return err
		}
		if len(adv.NewMatches) > 0 {
			if created, err = s.matchRepo.InsertMatches(ctx, exec, t.ID, adv.NewMatches); err != nil {
				return err
			}
		}
		return s.tournamentRepo.UpdateProgress(ctx, exec, t.ID, adv.Tournament.Status, adv.Tournament.CurrentRound)
	})
	if err != nil {
		var incomplete *brackets.IncompleteRoundError
		if errors.As(err, &incomplete) {
			s.logger.Info("advance refused", slog.Int("tournament_id", tournamentID), slog.Any("reason", err))
		}
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("tournament advanced",
		slog.Int("tournament_id", tournamentID),
		slog.Int("round", adv.Tournament.CurrentRound),
		slog.String("status", string(adv.Tournament.Status)),
		slog.Int("new_matches", len(created)),
	)
	s.notifier.OnRoundAdvance(ctx, adv.Tournament, created)
	return s.GetState(ctx, tournamentID)
}

func (s *tournamentService) SubmitScore(ctx context.Context, ownerID, tournamentID, matchID, scoreA, scoreB int) (*models.Match, error) {
	if err := validateScore(scoreA, scoreB); err != nil {
		return nil, err
	}

	var match *models.Match
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.owned(ctx, exec, ownerID, tournamentID, false)
		if err != nil {
			return err
		}
		if t.Status != models.StatusActive {
			return fmt.Errorf("%w: status %s", brackets.ErrTournamentNotActive, t.Status)
		}
		m, err := s.matchRepo.GetForUpdate(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if m.TournamentID != t.ID {
			return ErrMatchNotFound
		}
		if m.IsFinished {
			return ErrMatchAlreadyFinished
		}
		if err := s.matchRepo.UpdateScore(ctx, exec, m.ID, scoreA, scoreB); err != nil {
			return err
		}
		m.ScoreA, m.ScoreB, m.IsFinished = &scoreA, &scoreB, true
		match = m
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("score submitted", slog.Int("tournament_id", tournamentID), slog.Int("match_id", matchID), slog.Int("score_a", scoreA), slog.Int("score_b", scoreB))
	s.notifier.OnScoreSubmitted(ctx, tournamentID, *match)

	// Рейтинг применяется отдельной транзакцией; при сбое его догонит периодическая сверка.
	if applied, err := s.ratings.ProcessMatch(ctx, match.ID); err != nil {
		s.logger.Error("rating application failed, left for the sweep", slog.Int("match_id", match.ID), slog.Any("error", err))
	} else if applied {
		match.RatingProcessed = true
	}
	return match, nil
}

func (s *tournamentService) Reset(ctx context.Context, ownerID, tournamentID int) (*models.TournamentState, error) {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.owned(ctx, exec, ownerID, tournamentID, true)
		if err != nil {
			return err
		}
		if t.ArchivedAt != nil {
			return ErrTournamentArchived
		}
		if err := s.matchRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		pairs, err := s.pairRepo.ListByTournament(ctx, exec, t.ID)
		if err != nil {
			return err
		}
		if err := s.pairRepo.SetReserves(ctx, exec, t.ID, reserveIDs(brackets.MarkReserves(pairs, t.Format))); err != nil {
			return err
		}
		return s.tournamentRepo.UpdateProgress(ctx, exec, t.ID, models.StatusSetup, 0)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Warn("tournament reset", slog.Int("tournament_id", tournamentID))
	return s.GetState(ctx, tournamentID)
}

func reserveIDs(pairs []models.Pair) []int {
	var ids []int
	for _, p := range pairs {
		if p.IsReserve {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Archive сохраняет снимок завершённого турнира (если хранилище настроено) и
// распускает пары. Игроки и их рейтинги не затрагиваются.
func (s *tournamentService) Archive(ctx context.Context, ownerID, tournamentID int) (*ArchiveResult, error) {
	t, err := s.owned(ctx, nil, ownerID, tournamentID, false)
	if err != nil {
		return nil, err
	}
	if t.ArchivedAt != nil {
		return nil, ErrTournamentArchived
	}
	if t.Status != models.StatusFinished {
		return nil, ErrTournamentNotFinished
	}

	state, err := s.loadState(ctx, nil, t)
	if err != nil {
		return nil, err
	}
	at := s.now()
	result := &ArchiveResult{}

	if s.archive != nil {
		body, err := json.Marshal(struct {
			ArchivedAt time.Time               `json:"archived_at"`
			State      *models.TournamentState `json:"state"`
			Standings  []GroupTable            `json:"standings"`
		}{at, state, groupTables(state.Groups, brackets.AllStandings(state.Groups, state.Matches))})
		if err != nil {
			return nil, fmt.Errorf("failed to encode archive snapshot: %w", err)
		}
		obj, err := s.archive.Put(ctx, storage.ArchiveKey(t.OwnerID, t.ID, at), "application/json", bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to store archive snapshot: %w", err)
		}
		result.Snapshot = obj
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.matchRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		if err := s.pairRepo.DeleteByTournament(ctx, exec, t.ID); err != nil {
			return err
		}
		return s.tournamentRepo.MarkArchived(ctx, exec, t.ID, at)
	})
	if err != nil {
		if result.Snapshot != nil {
			if delErr := s.archive.Delete(ctx, result.Snapshot.Key); delErr != nil {
				s.logger.Error("failed to remove orphaned archive snapshot", slog.String("key", result.Snapshot.Key), slog.Any("error", delErr))
			}
		}
		return nil, handleRepositoryError(err)
	}

	t.ArchivedAt = &at
	result.Tournament = *t
	s.logger.Info("tournament archived", slog.Int("tournament_id", t.ID), slog.Bool("snapshot", result.Snapshot != nil))
	return result, nil
}
