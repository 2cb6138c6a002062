package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/antoniorme/minis-padel/models"
	"github.com/lib/pq"
)

var (
	ErrTournamentNotFound   = errors.New("tournament not found")
	ErrTournamentInvalidOrg = errors.New("invalid organizer reference")
)

type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	// GetForUpdate блокирует строку турнира; через неё идёт каждый переход состояния.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error)
	ListByOwner(ctx context.Context, ownerID int, includeArchived bool) ([]models.Tournament, error)
	UpdateProgress(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, currentRound int) error
	UpdateDetails(ctx context.Context, id int, name string, courtCount int) error
	MarkArchived(ctx context.Context, exec SQLExecutor, id int, at time.Time) error
	Delete(ctx context.Context, id int) error
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const tournamentColumns = `id, owner_id, name, format, status, current_round, court_count, archived_at, created_at`

func scanTournament(row rowScanner) (models.Tournament, error) {
	var t models.Tournament
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Name,
		&t.Format,
		&t.Status,
		&t.CurrentRound,
		&t.CourtCount,
		&t.ArchivedAt,
		&t.CreatedAt,
	)
	return t, err
}

func (r *postgresTournamentRepository) Create(ctx context.Context, t *models.Tournament) error {
	query := `
		INSERT INTO tournaments (owner_id, name, format, status, current_round, court_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		t.OwnerID, t.Name, t.Format, t.Status, t.CurrentRound, t.CourtCount,
	).Scan(&t.ID, &t.CreatedAt)

	return r.handleTournamentError(err)
}

func (r *postgresTournamentRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getOne(ctx, r.getExecutor(exec), `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1`, id)
}

func (r *postgresTournamentRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Tournament, error) {
	return r.getOne(ctx, r.getExecutor(exec), `SELECT `+tournamentColumns+` FROM tournaments WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresTournamentRepository) getOne(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Tournament, error) {
	t, err := scanTournament(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *postgresTournamentRepository) ListByOwner(ctx context.Context, ownerID int, includeArchived bool) ([]models.Tournament, error) {
	query := `SELECT ` + tournamentColumns + ` FROM tournaments WHERE owner_id = $1`
	if !includeArchived {
		query += ` AND archived_at IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tournaments for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	tournaments := make([]models.Tournament, 0)
	for rows.Next() {
		t, err := scanTournament(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tournament row: %w", err)
		}
		tournaments = append(tournaments, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during tournament rows iteration: %w", err)
	}
	return tournaments, nil
}

func (r *postgresTournamentRepository) UpdateProgress(ctx context.Context, exec SQLExecutor, id int, status models.TournamentStatus, currentRound int) error {
	query := `UPDATE tournaments SET status = $1, current_round = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, currentRound, id)
	if err != nil {
		return fmt.Errorf("UpdateProgress: failed to execute query for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) UpdateDetails(ctx context.Context, id int, name string, courtCount int) error {
	query := `UPDATE tournaments SET name = $1, court_count = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, name, courtCount, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) MarkArchived(ctx context.Context, exec SQLExecutor, id int, at time.Time) error {
	query := `UPDATE tournaments SET archived_at = $1 WHERE id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("MarkArchived: failed to execute query for tournament %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) Delete(ctx context.Context, id int) error {
	query := `DELETE FROM tournaments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return r.handleTournamentError(err)
	}
	return checkAffectedRows(result, ErrTournamentNotFound)
}

func (r *postgresTournamentRepository) handleTournamentError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" && pqErr.Constraint == "tournaments_owner_id_fkey" {
		return ErrTournamentInvalidOrg
	}
	return err
}
