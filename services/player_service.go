package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/rating"
	"github.com/antoniorme/minis-padel/repositories"
)

type PlayerInput struct {
	Name         *string  `json:"name"`
	Nickname     *string  `json:"nickname"`
	Categories   []string `json:"categories"`
	ManualRating *float64 `json:"manual_rating"`
}

type PlayerService interface {
	List(ctx context.Context, ownerID int) ([]models.Player, error)
	Get(ctx context.Context, ownerID, playerID int) (*models.Player, error)
	Create(ctx context.Context, ownerID int, input PlayerInput) (*models.Player, error)
	Update(ctx context.Context, ownerID, playerID int, input PlayerInput) (*models.Player, error)
	Delete(ctx context.Context, ownerID, playerID int) error
	Ranking(ctx context.Context, ownerID int) ([]models.Player, error)
}

type playerService struct {
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewPlayerService(playerRepo repositories.PlayerRepository, logger *slog.Logger) PlayerService {
	return &playerService{playerRepo: playerRepo, logger: logger}
}

func (s *playerService) List(ctx context.Context, ownerID int) ([]models.Player, error) {
	players, err := s.playerRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return players, nil
}

func (s *playerService) Get(ctx context.Context, ownerID, playerID int) (*models.Player, error) {
	p, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := ensureOwner(p.OwnerID, ownerID, ErrPlayerNotFound); err != nil {
		return nil, err
	}
	return p, nil
}

func validManualRating(v float64) bool {
	return v >= 0 && v <= 10
}

func (s *playerService) Create(ctx context.Context, ownerID int, input PlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(derefString(input.Name))
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	categories, err := normalizeCategories(input.Categories)
	if err != nil {
		return nil, err
	}
	manual := models.DefaultManualRating
	if input.ManualRating != nil {
		if !validManualRating(*input.ManualRating) {
			return nil, fmt.Errorf("%w: manual rating must be between 0 and 10", ErrValidationFailed)
		}
		manual = *input.ManualRating
	}

	p := &models.Player{
		OwnerID:         ownerID,
		Name:            name,
		Nickname:        trimmedOrNil(input.Nickname),
		Categories:      categories,
		ManualRating:    manual,
		GlobalRating:    rating.InitialRating(categories, manual),
		CategoryRatings: map[string]float64{},
	}
	if err := s.playerRepo.Upsert(ctx, nil, p); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("player created", slog.Int("player_id", p.ID), slog.Int("owner_id", ownerID))
	return p, nil
}

// Update применяет частичную правку. Пока игрок не сыграл ни одного матча,
// глобальный рейтинг пересчитывается из категорий и ручной оценки.
func (s *playerService) Update(ctx context.Context, ownerID, playerID int, input PlayerInput) (*models.Player, error) {
	p, err := s.Get(ctx, ownerID, playerID)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
		}
		p.Name = name
	}
	if input.Nickname != nil {
		p.Nickname = trimmedOrNil(input.Nickname)
	}
	if input.Categories != nil {
		if p.Categories, err = normalizeCategories(input.Categories); err != nil {
			return nil, err
		}
	}
	if input.ManualRating != nil {
		if !validManualRating(*input.ManualRating) {
			return nil, fmt.Errorf("%w: manual rating must be between 0 and 10", ErrValidationFailed)
		}
		p.ManualRating = *input.ManualRating
	}
	if p.MatchesPlayed == 0 {
		p.GlobalRating = rating.InitialRating(p.Categories, p.ManualRating)
	}

	if err := s.playerRepo.Upsert(ctx, nil, p); err != nil {
		return nil, handleRepositoryError(err)
	}
	return p, nil
}

func (s *playerService) Delete(ctx context.Context, ownerID, playerID int) error {
	if err := s.playerRepo.Delete(ctx, ownerID, playerID); err != nil {
		return handleRepositoryError(err)
	}
	s.logger.Info("player deleted", slog.Int("player_id", playerID), slog.Int("owner_id", ownerID))
	return nil
}

func (s *playerService) Ranking(ctx context.Context, ownerID int) ([]models.Player, error) {
	players, err := s.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return rating.Ranking(players), nil
}
