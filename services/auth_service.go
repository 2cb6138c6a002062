package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/repositories"
	"github.com/antoniorme/minis-padel/utils"
)

const minPasswordLength = 8

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Organizer, error)
	Login(ctx context.Context, input models.Credentials) (*models.Organizer, error)
	Me(ctx context.Context, organizerID int) (*models.Organizer, error)
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authService struct {
	organizerRepo repositories.OrganizerRepository
	logger        *slog.Logger
}

func NewAuthService(organizerRepo repositories.OrganizerRepository, logger *slog.Logger) AuthService {
	return &authService{
		organizerRepo: organizerRepo,
		logger:        logger,
	}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Organizer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrValidationFailed)
	}
	if !utils.IsValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("ошибка хеширования пароля: %w", err)
	}

	organizer := &models.Organizer{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.organizerRepo.Create(ctx, organizer); err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logger.Info("organizer registered", slog.Int("organizer_id", organizer.ID))
	return organizer, nil
}

func (s *authService) Login(ctx context.Context, input models.Credentials) (*models.Organizer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	organizer, err := s.organizerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrOrganizerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ошибка поиска организатора: %w", err)
	}
	if !utils.CheckPasswordHash(input.Password, organizer.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return organizer, nil
}

func (s *authService) Me(ctx context.Context, organizerID int) (*models.Organizer, error) {
	organizer, err := s.organizerRepo.GetByID(ctx, organizerID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return organizer, nil
}
