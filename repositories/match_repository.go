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
	ErrMatchNotFound          = errors.New("match not found")
	ErrMatchTournamentInvalid = errors.New("match tournament conflict or invalid")
	ErrMatchPairInvalid       = errors.New("match pair conflict or invalid")
)

type MatchRepository interface {
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error)
	GetByID(ctx context.Context, id int) (*models.Match, error)
	// GetForUpdate блокирует строку матча до конца транзакции.
	GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	InsertMatches(ctx context.Context, exec SQLExecutor, tournamentID int, drafts []models.MatchDraft) ([]models.Match, error)
	UpdateScore(ctx context.Context, exec SQLExecutor, id, scoreA, scoreB int) error
	MarkRatingProcessed(ctx context.Context, exec SQLExecutor, id int) error
	// ListPendingRatings возвращает завершённые матчи без применённого рейтинга.
	ListPendingRatings(ctx context.Context, limit int) ([]models.Match, error)
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `id, tournament_id, round, phase, bracket, court_id, pair_a_id, pair_b_id, score_a, score_b, is_finished, rating_processed, created_at`

func scanMatch(row rowScanner) (models.Match, error) {
	var m models.Match
	err := row.Scan(
		&m.ID,
		&m.TournamentID,
		&m.Round,
		&m.Phase,
		&m.Bracket,
		&m.CourtID,
		&m.PairAID,
		&m.PairBID,
		&m.ScoreA,
		&m.ScoreB,
		&m.IsFinished,
		&m.RatingProcessed,
		&m.CreatedAt,
	)
	return m, err
}

func (r *postgresMatchRepository) queryMatches(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Match, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1 ORDER BY round ASC, court_id ASC, id ASC`
	return r.queryMatches(ctx, exec, query, tournamentID)
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, id int) (*models.Match, error) {
	return r.getOne(ctx, r.db, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
}

func (r *postgresMatchRepository) GetForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	return r.getOne(ctx, r.getExecutor(exec), `SELECT `+matchColumns+` FROM matches WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresMatchRepository) getOne(ctx context.Context, exec SQLExecutor, query string, id int) (*models.Match, error) {
	m, err := scanMatch(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return &m, nil
}

func (r *postgresMatchRepository) InsertMatches(ctx context.Context, exec SQLExecutor, tournamentID int, drafts []models.MatchDraft) ([]models.Match, error) {
	query := `
		INSERT INTO matches (tournament_id, round, phase, bracket, court_id, pair_a_id, pair_b_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	executor := r.getExecutor(exec)
	created := make([]models.Match, 0, len(drafts))
	for _, d := range drafts {
		m := d.ToMatch(tournamentID)
		err := executor.QueryRowContext(ctx, query,
			m.TournamentID, m.Round, m.Phase, m.Bracket, m.CourtID, m.PairAID, m.PairBID,
		).Scan(&m.ID, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert match %s: %w", m, r.handleMatchError(err))
		}
		created = append(created, m)
	}
	return created, nil
}

func (r *postgresMatchRepository) UpdateScore(ctx context.Context, exec SQLExecutor, id, scoreA, scoreB int) error {
	query := `UPDATE matches SET score_a = $1, score_b = $2, is_finished = TRUE WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, scoreA, scoreB, id)
	if err != nil {
		return fmt.Errorf("UpdateScore: failed to execute query for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) MarkRatingProcessed(ctx context.Context, exec SQLExecutor, id int) error {
	query := `UPDATE matches SET rating_processed = TRUE WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("MarkRatingProcessed: failed to execute query for match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) ListPendingRatings(ctx context.Context, limit int) ([]models.Match, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM matches
		WHERE is_finished AND NOT rating_processed
		ORDER BY id ASC
		LIMIT $1`
	return r.queryMatches(ctx, nil, query, limit)
}

func (r *postgresMatchRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) error {
	query := `DELETE FROM matches WHERE tournament_id = $1`
	if _, err := r.getExecutor(exec).ExecContext(ctx, query, tournamentID); err != nil {
		return fmt.Errorf("failed to delete matches of tournament %d: %w", tournamentID, err)
	}
	return nil
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "matches_tournament_id_fkey":
			return ErrMatchTournamentInvalid
		case "matches_pair_a_id_fkey", "matches_pair_b_id_fkey":
			return ErrMatchPairInvalid
		}
	}
	return err
}
