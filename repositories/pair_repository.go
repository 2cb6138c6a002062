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
	ErrPairNotFound          = errors.New("pair not found")
	ErrPairPlayerInvalid     = errors.New("pair player conflict or invalid")
	ErrPairTournamentInvalid = errors.New("pair tournament conflict or invalid")
	ErrPairHasMatches        = errors.New("pair already has matches")
)

type PairRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Pair, error)
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pair, error)
	Upsert(ctx context.Context, exec SQLExecutor, pair *models.Pair) error
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, id int) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
	// SetReserves отмечает резервом ровно указанные пары турнира.
	SetReserves(ctx context.Context, exec SQLExecutor, tournamentID int, reserveIDs []int) error
}

type postgresPairRepository struct {
	db *sql.DB
}

func NewPostgresPairRepository(db *sql.DB) PairRepository {
	return &postgresPairRepository{db: db}
}

func (r *postgresPairRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const pairColumns = `id, tournament_id, player1_id, player2_id, status, is_reserve, water_received, balls_received, paid, created_at`

func scanPair(row rowScanner) (models.Pair, error) {
	var p models.Pair
	err := row.Scan(
		&p.ID,
		&p.TournamentID,
		&p.Player1ID,
		&p.Player2ID,
		&p.Status,
		&p.IsReserve,
		&p.WaterReceived,
		&p.BallsReceived,
		&p.Paid,
		&p.CreatedAt,
	)
	return p, err
}

func (r *postgresPairRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs WHERE tournament_id = $1 ORDER BY id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query pairs for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	pairs := make([]models.Pair, 0)
	for rows.Next() {
		p, err := scanPair(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pair row: %w", err)
		}
		pairs = append(pairs, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during pair rows iteration: %w", err)
	}
	return pairs, nil
}

func (r *postgresPairRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Pair, error) {
	query := `SELECT ` + pairColumns + ` FROM pairs WHERE id = $1`
	p, err := scanPair(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPairNotFound
		}
		return nil, fmt.Errorf("failed to scan pair by id %d: %w", id, err)
	}
	return &p, nil
}

func (r *postgresPairRepository) Upsert(ctx context.Context, exec SQLExecutor, p *models.Pair) error {
	if p.Status == "" {
		p.Status = models.PairConfirmed
	}
	executor := r.getExecutor(exec)

	if p.ID == 0 {
		query := `
			INSERT INTO pairs (tournament_id, player1_id, player2_id, status, is_reserve, water_received, balls_received, paid)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at`
		err := executor.QueryRowContext(ctx, query,
			p.TournamentID, p.Player1ID, p.Player2ID, p.Status, p.IsReserve, p.WaterReceived, p.BallsReceived, p.Paid,
		).Scan(&p.ID, &p.CreatedAt)
		return r.handlePairError(err)
	}

	query := `
		UPDATE pairs
		SET player1_id = $1, player2_id = $2, status = $3, is_reserve = $4,
		    water_received = $5, balls_received = $6, paid = $7
		WHERE id = $8 AND tournament_id = $9`
	result, err := executor.ExecContext(ctx, query,
		p.Player1ID, p.Player2ID, p.Status, p.IsReserve, p.WaterReceived, p.BallsReceived, p.Paid, p.ID, p.TournamentID,
	)
	if err != nil {
		return r.handlePairError(err)
	}
	return checkAffectedRows(result, ErrPairNotFound)
}

func (r *postgresPairRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, id int) error {
	query := `DELETE FROM pairs WHERE id = $1 AND tournament_id = $2`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id, tournamentID)
	if err != nil {
		return r.handlePairError(err)
	}
	return checkAffectedRows(result, ErrPairNotFound)
}

func (r *postgresPairRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM pairs WHERE tournament_id = $1`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete pairs of tournament %d: %w", tournamentID, r.handlePairError(err))
	}
	return nil
}

func (r *postgresPairRepository) SetReserves(ctx context.Context, exec SQLExecutor, tournamentID int, reserveIDs []int) error {
	if reserveIDs == nil {
		reserveIDs = []int{}
	}
	query := `UPDATE pairs SET is_reserve = (id = ANY($2)) WHERE tournament_id = $1`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID, pq.Array(reserveIDs)); err != nil {
		return fmt.Errorf("failed to update reserves of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresPairRepository) handlePairError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "pairs_tournament_id_fkey":
			return ErrPairTournamentInvalid
		case "pairs_player1_id_fkey", "pairs_player2_id_fkey":
			return ErrPairPlayerInvalid
		case "matches_pair_a_id_fkey", "matches_pair_b_id_fkey":
			return ErrPairHasMatches
		}
	}
	return err
}
