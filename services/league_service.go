package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/antoniorme/minis-padel/league"
	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/repositories"
)

type CreateLeagueInput struct {
	Name     string     `json:"name"`
	StartsOn *time.Time `json:"starts_on"`
}

type CreateCategoryInput struct {
	Name     string                `json:"name"`
	Settings models.LeagueSettings `json:"settings"`
}

type LeaguePairInput struct {
	Player1ID int `json:"player1_id"`
	Player2ID int `json:"player2_id"`
}

// CategoryView: категория лиги вместе с парами, матчами и таблицами групп.
type CategoryView struct {
	Category  models.LeagueCategory `json:"category"`
	Pairs     []models.LeaguePair   `json:"pairs"`
	Matches   []models.LeagueMatch  `json:"matches"`
	Standings []GroupTable          `json:"standings"`
}

type LeagueService interface {
	Create(ctx context.Context, ownerID int, input CreateLeagueInput) (*models.League, error)
	List(ctx context.Context, ownerID int) ([]models.League, error)
	Get(ctx context.Context, ownerID, leagueID int) (*models.League, error)
	AddCategory(ctx context.Context, ownerID, leagueID int, input CreateCategoryInput) (*models.LeagueCategory, error)
	AddPair(ctx context.Context, ownerID, leagueID, categoryID int, input LeaguePairInput) (*models.LeaguePair, error)
	GetCategory(ctx context.Context, ownerID, leagueID, categoryID int) (*CategoryView, error)
	GenerateGroups(ctx context.Context, ownerID, leagueID, categoryID int) (*CategoryView, error)
	StartPlayoffs(ctx context.Context, ownerID, leagueID, categoryID int) (*CategoryView, error)
	SubmitScore(ctx context.Context, ownerID, leagueID, categoryID, matchID, scoreA, scoreB int) (*CategoryView, error)
}

type leagueService struct {
	tx         repositories.Transactor
	leagueRepo repositories.LeagueRepository
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewLeagueService(tx repositories.Transactor, leagueRepo repositories.LeagueRepository, playerRepo repositories.PlayerRepository, logger *slog.Logger) LeagueService {
	return &leagueService{tx: tx, leagueRepo: leagueRepo, playerRepo: playerRepo, logger: logger}
}

func (s *leagueService) Create(ctx context.Context, ownerID int, input CreateLeagueInput) (*models.League, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	l := &models.League{OwnerID: ownerID, Name: name, StartsOn: input.StartsOn}
	if err := s.leagueRepo.CreateLeague(ctx, l); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("league created", slog.Int("league_id", l.ID), slog.Int("owner_id", ownerID))
	return l, nil
}

func (s *leagueService) List(ctx context.Context, ownerID int) ([]models.League, error) {
	leagues, err := s.leagueRepo.ListLeaguesByOwner(ctx, ownerID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return leagues, nil
}

func (s *leagueService) ownedLeague(ctx context.Context, ownerID, leagueID int) (*models.League, error) {
	l, err := s.leagueRepo.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := ensureOwner(l.OwnerID, ownerID, ErrLeagueNotFound); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *leagueService) Get(ctx context.Context, ownerID, leagueID int) (*models.League, error) {
	l, err := s.ownedLeague(ctx, ownerID, leagueID)
	if err != nil {
		return nil, err
	}
	if l.Categories, err = s.leagueRepo.ListCategories(ctx, l.ID); err != nil {
		return nil, handleRepositoryError(err)
	}
	return l, nil
}

// normalizeSettings подставляет значения по умолчанию и проверяет правила категории.
func normalizeSettings(st models.LeagueSettings) (models.LeagueSettings, error) {
	if st.GroupCount == 0 {
		st.GroupCount = 1
	}
	if st.GroupCount < 1 || st.GroupCount > len(models.GroupNames) {
		return st, fmt.Errorf("%w: %v", ErrValidationFailed, league.ErrInvalidGroupCount)
	}
	if st.QualifiersPerGroup == 0 {
		st.QualifiersPerGroup = 2
	}
	switch st.QualifiersPerGroup {
	case 1, 2, 4, 8:
	default:
		return st, fmt.Errorf("%w: %v", ErrValidationFailed, league.ErrInvalidQualifiers)
	}
	if st.CrossType == "" {
		st.CrossType = models.CrossCrossed
	}
	if st.CrossType != models.CrossCrossed && st.CrossType != models.CrossInternal {
		return st, fmt.Errorf("%w: %v %q", ErrValidationFailed, league.ErrInvalidCrossType, st.CrossType)
	}
	// Жеребьёвка внутри группы сводит пары группы между собой: нужно минимум двое.
	if (st.CrossType == models.CrossInternal || st.GroupCount == 1) && st.QualifiersPerGroup < 2 {
		return st, fmt.Errorf("%w: %v", ErrValidationFailed, league.ErrInvalidQualifiers)
	}
	if st.Legs == 0 {
		st.Legs = 1
	}
	if st.Legs != 1 && st.Legs != 2 {
		return st, fmt.Errorf("%w: %v", ErrValidationFailed, league.ErrInvalidLegs)
	}
	if st.SeedMethod == "" {
		st.SeedMethod = models.SeedRatingBalanced
	}
	if !st.SeedMethod.Valid() {
		return st, fmt.Errorf("%w: unknown seeding method %q", ErrValidationFailed, st.SeedMethod)
	}
	return st, nil
}

func (s *leagueService) AddCategory(ctx context.Context, ownerID, leagueID int, input CreateCategoryInput) (*models.LeagueCategory, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	settings, err := normalizeSettings(input.Settings)
	if err != nil {
		return nil, err
	}
	if _, err := s.ownedLeague(ctx, ownerID, leagueID); err != nil {
		return nil, err
	}
	c := &models.LeagueCategory{
		LeagueID: leagueID,
		Name:     name,
		Settings: settings,
		Status:   models.LeagueCategorySetup,
	}
	if err := s.leagueRepo.CreateCategory(ctx, c); err != nil {
		return nil, handleRepositoryError(err)
	}
	return c, nil
}

// ownedCategory загружает категорию (с блокировкой внутри транзакции) и проверяет лигу и её владельца.
func (s *leagueService) ownedCategory(ctx context.Context, exec repositories.SQLExecutor, ownerID, leagueID, categoryID int, forUpdate bool) (*models.LeagueCategory, *models.League, error) {
	var (
		c   *models.LeagueCategory
		err error
	)
	if forUpdate {
		c, err = s.leagueRepo.GetCategoryForUpdate(ctx, exec, categoryID)
	} else {
		c, err = s.leagueRepo.GetCategory(ctx, exec, categoryID)
	}
	if err != nil {
		return nil, nil, handleRepositoryError(err)
	}
	// Категория другой лиги для этого пути не существует.
	if c.LeagueID != leagueID {
		return nil, nil, ErrCategoryNotFound
	}
	l, err := s.leagueRepo.GetLeague(ctx, c.LeagueID)
	if err != nil {
		return nil, nil, handleRepositoryError(err)
	}
	if err := ensureOwner(l.OwnerID, ownerID, ErrCategoryNotFound); err != nil {
		return nil, nil, err
	}
	return c, l, nil
}

func (s *leagueService) AddPair(ctx context.Context, ownerID, leagueID, categoryID int, input LeaguePairInput) (*models.LeaguePair, error) {
	if input.Player1ID <= 0 || input.Player2ID <= 0 {
		return nil, fmt.Errorf("%w: both players are required", ErrValidationFailed)
	}
	if input.Player1ID == input.Player2ID {
		return nil, fmt.Errorf("%w: a player cannot partner themselves", ErrValidationFailed)
	}
	c, l, err := s.ownedCategory(ctx, nil, ownerID, leagueID, categoryID, false)
	if err != nil {
		return nil, err
	}
	if c.Status != models.LeagueCategorySetup {
		return nil, ErrCategoryState
	}
	players, err := s.playerRepo.GetByIDs(ctx, nil, []int{input.Player1ID, input.Player2ID})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	owned := 0
	for _, p := range players {
		if p.OwnerID == l.OwnerID {
			owned++
		}
	}
	if owned != 2 {
		return nil, ErrPlayerNotFound
	}

	pair := &models.LeaguePair{CategoryID: c.ID, Player1ID: input.Player1ID, Player2ID: input.Player2ID}
	if err := s.leagueRepo.AddPair(ctx, pair); err != nil {
		return nil, handleRepositoryError(err)
	}
	return pair, nil
}

func (s *leagueService) view(ctx context.Context, exec repositories.SQLExecutor, c *models.LeagueCategory) (*CategoryView, error) {
	pairs, err := s.leagueRepo.ListPairs(ctx, exec, c.ID)
	if err != nil {
		return nil, err
	}
	matches, err := s.leagueRepo.ListMatches(ctx, exec, c.ID)
	if err != nil {
		return nil, err
	}
	return &CategoryView{
		Category:  *c,
		Pairs:     pairs,
		Matches:   matches,
		Standings: groupTables(c.Groups, league.GroupStandings(c.Groups, matches)),
	}, nil
}

func (s *leagueService) GetCategory(ctx context.Context, ownerID, leagueID, categoryID int) (*CategoryView, error) {
	c, _, err := s.ownedCategory(ctx, nil, ownerID, leagueID, categoryID, false)
	if err != nil {
		return nil, err
	}
	v, err := s.view(ctx, nil, c)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return v, nil
}

func (s *leagueService) GenerateGroups(ctx context.Context, ownerID, leagueID, categoryID int) (*CategoryView, error) {
	var view *CategoryView
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		c, l, err := s.ownedCategory(ctx, exec, ownerID, leagueID, categoryID, true)
		if err != nil {
			return err
		}
		if c.Status != models.LeagueCategorySetup {
			return ErrCategoryState
		}
		pairs, err := s.leagueRepo.ListPairs(ctx, exec, c.ID)
		if err != nil {
			return err
		}
		players, err := s.playerRepo.ListByOwner(ctx, l.OwnerID)
		if err != nil {
			return err
		}
		schedule, err := league.GenerateGroups(pairs, players, c.Settings.GroupCount, c.Settings.SeedMethod, c.Settings.DoubleRound)
		if err != nil {
			return err
		}
		if _, err := s.leagueRepo.InsertMatches(ctx, exec, c.ID, schedule.Matches); err != nil {
			return err
		}
		c.Status, c.Groups = models.LeagueCategoryGroups, schedule.Groups
		if err := s.leagueRepo.UpdateCategoryState(ctx, exec, c.ID, c.Status, c.Groups); err != nil {
			return err
		}
		view, err = s.view(ctx, exec, c)
		return err
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("league groups generated", slog.Int("category_id", categoryID), slog.Int("groups", len(view.Category.Groups)), slog.Int("matches", len(view.Matches)))
	return view, nil
}

func (s *leagueService) StartPlayoffs(ctx context.Context, ownerID, leagueID, categoryID int) (*CategoryView, error) {
	var view *CategoryView
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		c, _, err := s.ownedCategory(ctx, exec, ownerID, leagueID, categoryID, true)
		if err != nil {
			return err
		}
		if c.Status != models.LeagueCategoryGroups {
			return ErrCategoryState
		}
		matches, err := s.leagueRepo.ListMatches(ctx, exec, c.ID)
		if err != nil {
			return err
		}
		ties, err := league.AdvanceToPlayoffs(c.Settings, c.Groups, matches)
		if err != nil {
			return err
		}
		if _, err := s.leagueRepo.InsertMatches(ctx, exec, c.ID, ties); err != nil {
			return err
		}
		c.Status = models.LeagueCategoryPlayoffs
		if err := s.leagueRepo.UpdateCategoryState(ctx, exec, c.ID, c.Status, c.Groups); err != nil {
			return err
		}
		view, err = s.view(ctx, exec, c)
		return err
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("league playoffs started", slog.Int("category_id", categoryID))
	return view, nil
}

// SubmitScore записывает результат матча лиги. Результат плей-офф сразу
// продвигает победителя решённой пары матчей в следующую стадию.
func (s *leagueService) SubmitScore(ctx context.Context, ownerID, leagueID, categoryID, matchID, scoreA, scoreB int) (*CategoryView, error) {
	if err := validateScore(scoreA, scoreB); err != nil {
		return nil, err
	}

	var (
		view     *CategoryView
		finished bool
	)
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		c, _, err := s.ownedCategory(ctx, exec, ownerID, leagueID, categoryID, true)
		if err != nil {
			return err
		}
		m, err := s.leagueRepo.GetMatchForUpdate(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if m.CategoryID != c.ID {
			return ErrMatchNotFound
		}
		if m.IsFinished {
			return ErrMatchAlreadyFinished
		}
		if m.IsTBD() {
			return ErrMatchAwaitingPair
		}
		switch {
		case m.Phase == models.PhaseGroup && c.Status != models.LeagueCategoryGroups,
			m.Phase == models.PhasePlayoff && c.Status != models.LeagueCategoryPlayoffs:
			return ErrCategoryState
		}

		if err := s.leagueRepo.UpdateMatchScore(ctx, exec, m.ID, scoreA, scoreB); err != nil {
			return err
		}
		m.ScoreA, m.ScoreB, m.IsFinished = &scoreA, &scoreB, true

		if m.Phase == models.PhasePlayoff {
			if finished, err = s.propagate(ctx, exec, c, *m); err != nil {
				return err
			}
		}
		view, err = s.view(ctx, exec, c)
		return err
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.Info("league score submitted", slog.Int("category_id", categoryID), slog.Int("match_id", matchID), slog.Int("score_a", scoreA), slog.Int("score_b", scoreB))
	if finished {
		s.logger.Info("league category finished", slog.Int("category_id", categoryID))
	}
	return view, nil
}

func (s *leagueService) propagate(ctx context.Context, exec repositories.SQLExecutor, c *models.LeagueCategory, played models.LeagueMatch) (bool, error) {
	all, err := s.leagueRepo.ListMatches(ctx, exec, c.ID)
	if err != nil {
		return false, err
	}
	playoff := make([]models.LeagueMatch, 0, len(all))
	for _, m := range all {
		if m.Phase != models.PhasePlayoff {
			continue
		}
		if m.ID == played.ID {
			m = played
		}
		playoff = append(playoff, m)
	}

	res, err := league.PropagateWinner(playoff, played)
	if err != nil {
		return false, err
	}
	if len(res.Create) > 0 {
		if _, err := s.leagueRepo.InsertMatches(ctx, exec, c.ID, res.Create); err != nil {
			return false, err
		}
	}
	for _, m := range res.Update {
		if err := s.leagueRepo.UpdateMatchSides(ctx, exec, m.ID, m.PairAID, m.PairBID); err != nil {
			return false, err
		}
	}
	if res.Finished {
		c.Status = models.LeagueCategoryFinished
		if err := s.leagueRepo.UpdateCategoryState(ctx, exec, c.ID, c.Status, c.Groups); err != nil {
			return false, err
		}
	}
	return res.Finished, nil
}
