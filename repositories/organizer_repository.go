package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/antoniorme/minis-padel/models"
	"github.com/lib/pq"
)

var (
	ErrOrganizerNotFound      = errors.New("organizer not found")
	ErrOrganizerEmailConflict = errors.New("organizer email conflict")
)

type OrganizerRepository interface {
	Create(ctx context.Context, organizer *models.Organizer) error
	GetByID(ctx context.Context, id int) (*models.Organizer, error)
	GetByEmail(ctx context.Context, email string) (*models.Organizer, error)
}

type postgresOrganizerRepository struct {
	db *sql.DB
}

func NewPostgresOrganizerRepository(db *sql.DB) OrganizerRepository {
	return &postgresOrganizerRepository{db: db}
}

func (r *postgresOrganizerRepository) Create(ctx context.Context, o *models.Organizer) error {
	query := `
		INSERT INTO organizers (name, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, o.Name, o.Email, o.PasswordHash).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" && pqErr.Constraint == "organizers_email_key" {
				return ErrOrganizerEmailConflict
			}
		}
		return err
	}
	return nil
}

func (r *postgresOrganizerRepository) GetByID(ctx context.Context, id int) (*models.Organizer, error) {
	return r.getOne(ctx, `SELECT id, name, email, password_hash, created_at FROM organizers WHERE id = $1`, id)
}

func (r *postgresOrganizerRepository) GetByEmail(ctx context.Context, email string) (*models.Organizer, error) {
	return r.getOne(ctx, `SELECT id, name, email, password_hash, created_at FROM organizers WHERE email = $1`, email)
}

func (r *postgresOrganizerRepository) getOne(ctx context.Context, query string, arg interface{}) (*models.Organizer, error) {
	o := &models.Organizer{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&o.ID, &o.Name, &o.Email, &o.PasswordHash, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrganizerNotFound
		}
		return nil, fmt.Errorf("failed to scan organizer: %w", err)
	}
	return o, nil
}
