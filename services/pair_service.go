package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/rating"
	"github.com/antoniorme/minis-padel/repositories"
)

type CreatePairInput struct {
	Player1ID int               `json:"player1_id"`
	Player2ID *int              `json:"player2_id"`
	Status    models.PairStatus `json:"status"`
}

// UpdatePairInput: отметки организатора, на логику турнира не влияют.
type UpdatePairInput struct {
	WaterReceived *bool `json:"water_received"`
	BallsReceived *bool `json:"balls_received"`
	Paid          *bool `json:"paid"`
}

// JoinInput: данные игрока при самостоятельной записи на турнир.
type JoinInput struct {
	Name       string   `json:"name"`
	Nickname   *string  `json:"nickname"`
	Categories []string `json:"categories"`
}

type JoinResult struct {
	Player models.Player `json:"player"`
	Pair   models.Pair   `json:"pair"`
}

type PairService interface {
	List(ctx context.Context, ownerID, tournamentID int) ([]models.Pair, error)
	Create(ctx context.Context, ownerID, tournamentID int, input CreatePairInput) (*models.Pair, error)
	Update(ctx context.Context, ownerID, tournamentID, pairID int, input UpdatePairInput) (*models.Pair, error)
	Delete(ctx context.Context, ownerID, tournamentID, pairID int) error
	AssignPartner(ctx context.Context, ownerID, tournamentID, pairID, partnerID int) (*models.Pair, error)
	SetStatus(ctx context.Context, ownerID, tournamentID, pairID int, status models.PairStatus) (*models.Pair, error)
	Join(ctx context.Context, tournamentID int, input JoinInput) (*JoinResult, error)
}

type pairService struct {
	tx             repositories.Transactor
	tournamentRepo repositories.TournamentRepository
	pairRepo       repositories.PairRepository
	playerRepo     repositories.PlayerRepository
	logger         *slog.Logger
}

func NewPairService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	pairRepo repositories.PairRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) PairService {
	return &pairService{
		tx:             tx,
		tournamentRepo: tournamentRepo,
		pairRepo:       pairRepo,
		playerRepo:     playerRepo,
		logger:         logger,
	}
}

// tournamentFor проверяет владельца и что турнир ещё не в архиве.
func (s *pairService) tournamentFor(ctx context.Context, exec repositories.SQLExecutor, ownerID, tournamentID int) (*models.Tournament, error) {
	t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := ensureOwner(t.OwnerID, ownerID, ErrTournamentNotFound); err != nil {
		return nil, err
	}
	if t.ArchivedAt != nil {
		return nil, ErrTournamentArchived
	}
	return t, nil
}

func (s *pairService) List(ctx context.Context, ownerID, tournamentID int) ([]models.Pair, error) {
	t, err := s.tournamentRepo.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := ensureOwner(t.OwnerID, ownerID, ErrTournamentNotFound); err != nil {
		return nil, err
	}
	pairs, err := s.pairRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return pairs, nil
}

// pairInTournament загружает пару и проверяет, что она принадлежит турниру.
func (s *pairService) pairInTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID, pairID int) (*models.Pair, error) {
	p, err := s.pairRepo.GetByID(ctx, exec, pairID)
	if err != nil {
		return nil, err
	}
	if p.TournamentID != tournamentID {
		return nil, ErrPairNotFound
	}
	return p, nil
}

// checkPlayers проверяет, что игроки принадлежат клубу и ещё не записаны в турнир.
func (s *pairService) checkPlayers(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament, exceptPairID int, ids ...int) error {
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return fmt.Errorf("%w: player %d listed twice", ErrValidationFailed, id)
		}
		seen[id] = true
	}
	players, err := s.playerRepo.GetByIDs(ctx, exec, ids)
	if err != nil {
		return err
	}
	found := make(map[int]bool, len(players))
	for _, p := range players {
		if p.OwnerID == t.OwnerID {
			found[p.ID] = true
		}
	}
	for _, id := range ids {
		if !found[id] {
			return fmt.Errorf("%w: player %d", ErrPlayerNotFound, id)
		}
	}

	pairs, err := s.pairRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if p.ID == exceptPairID {
			continue
		}
		for _, id := range p.PlayerIDs() {
			if seen[id] {
				return fmt.Errorf("%w: player %d is in pair %d", ErrPlayerAlreadyPaired, id, p.ID)
			}
		}
	}
	return nil
}

// refreshReserves пересчитывает резерв по порядку записи, пока турнир не начат.
// После старта резерв определяется только восстановленными группами.
func (s *pairService) refreshReserves(ctx context.Context, exec repositories.SQLExecutor, t *models.Tournament) error {
	if t.Status != models.StatusSetup {
		return nil
	}
	pairs, err := s.pairRepo.ListByTournament(ctx, exec, t.ID)
	if err != nil {
		return err
	}
	return s.pairRepo.SetReserves(ctx, exec, t.ID, reserveIDs(brackets.MarkReserves(pairs, t.Format)))
}

func (s *pairService) Create(ctx context.Context, ownerID, tournamentID int, input CreatePairInput) (*models.Pair, error) {
	if input.Player1ID <= 0 {
		return nil, fmt.Errorf("%w: player1_id is required", ErrValidationFailed)
	}
	if input.Player2ID != nil && *input.Player2ID == 0 {
		input.Player2ID = nil
	}
	if input.Status == "" {
		input.Status = models.PairConfirmed
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown pair status %q", ErrValidationFailed, input.Status)
	}

	pair := &models.Pair{
		TournamentID: tournamentID,
		Player1ID:    input.Player1ID,
		Player2ID:    input.Player2ID,
		Status:       input.Status,
	}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentFor(ctx, exec, ownerID, tournamentID)
		if err != nil {
			return err
		}
		if err := s.checkPlayers(ctx, exec, t, 0, pair.PlayerIDs()...); err != nil {
			return err
		}
		// После старта новые пары в группы не попадают.
		pair.IsReserve = t.Status != models.StatusSetup
		if err := s.pairRepo.Upsert(ctx, exec, pair); err != nil {
			return err
		}
		if err := s.refreshReserves(ctx, exec, t); err != nil {
			return err
		}
		refreshed, err := s.pairRepo.GetByID(ctx, exec, pair.ID)
		if err != nil {
			return err
		}
		*pair = *refreshed
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("pair registered", slog.Int("tournament_id", tournamentID), slog.Int("pair_id", pair.ID), slog.Bool("solo", pair.IsSolo()))
	return pair, nil
}

func (s *pairService) Update(ctx context.Context, ownerID, tournamentID, pairID int, input UpdatePairInput) (*models.Pair, error) {
	var pair *models.Pair
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, err := s.tournamentFor(ctx, exec, ownerID, tournamentID); err != nil {
			return err
		}
		p, err := s.pairInTournament(ctx, exec, tournamentID, pairID)
		if err != nil {
			return err
		}
		if input.WaterReceived != nil {
			p.WaterReceived = *input.WaterReceived
		}
		if input.BallsReceived != nil {
			p.BallsReceived = *input.BallsReceived
		}
		if input.Paid != nil {
			p.Paid = *input.Paid
		}
		pair = p
		return s.pairRepo.Upsert(ctx, exec, p)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return pair, nil
}

func (s *pairService) Delete(ctx context.Context, ownerID, tournamentID, pairID int) error {
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentFor(ctx, exec, ownerID, tournamentID)
		if err != nil {
			return err
		}
		if err := s.pairRepo.Delete(ctx, exec, tournamentID, pairID); err != nil {
			return err
		}
		return s.refreshReserves(ctx, exec, t)
	})
	if err != nil {
		return handleRepositoryError(err)
	}
	s.logger.Info("pair deleted", slog.Int("tournament_id", tournamentID), slog.Int("pair_id", pairID))
	return nil
}

// AssignPartner превращает одиночную запись в полную пару и подтверждает её.
func (s *pairService) AssignPartner(ctx context.Context, ownerID, tournamentID, pairID, partnerID int) (*models.Pair, error) {
	if partnerID <= 0 {
		return nil, fmt.Errorf("%w: partner_id is required", ErrValidationFailed)
	}
	var pair *models.Pair
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentFor(ctx, exec, ownerID, tournamentID)
		if err != nil {
			return err
		}
		p, err := s.pairInTournament(ctx, exec, tournamentID, pairID)
		if err != nil {
			return err
		}
		if !p.IsSolo() {
			return ErrPairNotSolo
		}
		if p.Status == models.PairRejected {
			return ErrPairRejected
		}
		if partnerID == p.Player1ID {
			return fmt.Errorf("%w: a player cannot partner themselves", ErrValidationFailed)
		}
		if err := s.checkPlayers(ctx, exec, t, p.ID, partnerID); err != nil {
			return err
		}
		p.Player2ID = &partnerID
		p.Status = models.PairConfirmed
		if err := s.pairRepo.Upsert(ctx, exec, p); err != nil {
			return err
		}
		pair = p
		return s.refreshReserves(ctx, exec, t)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("partner assigned", slog.Int("pair_id", pairID), slog.Int("partner_id", partnerID))
	return pair, nil
}

func (s *pairService) SetStatus(ctx context.Context, ownerID, tournamentID, pairID int, status models.PairStatus) (*models.Pair, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown pair status %q", ErrValidationFailed, status)
	}
	var pair *models.Pair
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentFor(ctx, exec, ownerID, tournamentID)
		if err != nil {
			return err
		}
		p, err := s.pairInTournament(ctx, exec, tournamentID, pairID)
		if err != nil {
			return err
		}
		// rejected: конечный статус.
		if p.Status == models.PairRejected && status != models.PairRejected {
			return ErrPairRejected
		}
		p.Status = status
		if err := s.pairRepo.Upsert(ctx, exec, p); err != nil {
			return err
		}
		pair = p
		return s.refreshReserves(ctx, exec, t)
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return pair, nil
}

// Join регистрирует нового игрока клуба и его одиночную заявку в статусе pending.
func (s *pairService) Join(ctx context.Context, tournamentID int, input JoinInput) (*JoinResult, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	categories, err := normalizeCategories(input.Categories)
	if err != nil {
		return nil, err
	}

	result := &JoinResult{}
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		t, err := s.tournamentRepo.GetByID(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		if t.ArchivedAt != nil {
			return ErrTournamentArchived
		}
		if t.Status != models.StatusSetup {
			return ErrTournamentNotInSetup
		}

		player := models.Player{
			OwnerID:         t.OwnerID,
			Name:            name,
			Nickname:        trimmedOrNil(input.Nickname),
			Categories:      categories,
			ManualRating:    models.DefaultManualRating,
			GlobalRating:    rating.InitialRating(categories, models.DefaultManualRating),
			CategoryRatings: map[string]float64{},
		}
		if err := s.playerRepo.Upsert(ctx, exec, &player); err != nil {
			return err
		}
		pair := models.Pair{TournamentID: t.ID, Player1ID: player.ID, Status: models.PairPending}
		if err := s.pairRepo.Upsert(ctx, exec, &pair); err != nil {
			return err
		}
		result.Player, result.Pair = player, pair
		return nil
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("player joined", slog.Int("tournament_id", tournamentID), slog.Int("player_id", result.Player.ID), slog.Int("pair_id", result.Pair.ID))
	return result, nil
}
