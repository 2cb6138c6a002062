package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/antoniorme/minis-padel/models"
	"github.com/lib/pq"
)

var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrPlayerOwnerInvalid = errors.New("player owner conflict or invalid")
	ErrPlayerInUse        = errors.New("player is referenced by pairs")
)

type PlayerRepository interface {
	ListByOwner(ctx context.Context, ownerID int) ([]models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error)
	// LockByIDs: GetByIDs с блокировкой строк для записи рейтинга в транзакции.
	LockByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error)
	Upsert(ctx context.Context, exec SQLExecutor, player *models.Player) error
	ApplyRatingDelta(ctx context.Context, exec SQLExecutor, playerID int, category string, categoryRating, globalRating float64, matchesPlayed int) error
	Delete(ctx context.Context, ownerID, id int) error
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const playerColumns = `id, owner_id, name, nickname, categories, manual_rating, global_rating, category_ratings, matches_played, created_at`

func scanPlayer(row rowScanner) (models.Player, error) {
	var (
		p       models.Player
		ratings []byte
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.Name,
		&p.Nickname,
		pq.Array(&p.Categories),
		&p.ManualRating,
		&p.GlobalRating,
		&ratings,
		&p.MatchesPlayed,
		&p.CreatedAt,
	)
	if err != nil {
		return p, err
	}
	p.CategoryRatings = map[string]float64{}
	if len(ratings) > 0 {
		if err := json.Unmarshal(ratings, &p.CategoryRatings); err != nil {
			return p, fmt.Errorf("failed to decode category ratings of player %d: %w", p.ID, err)
		}
	}
	return p, nil
}

func (r *postgresPlayerRepository) queryPlayers(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Player, error) {
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", err)
		}
		players = append(players, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresPlayerRepository) ListByOwner(ctx context.Context, ownerID int) ([]models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE owner_id = $1 ORDER BY name ASC, id ASC`
	return r.queryPlayers(ctx, nil, query, ownerID)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = $1`
	p, err := scanPlayer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, fmt.Errorf("failed to scan player by id %d: %w", id, err)
	}
	return &p, nil
}

func (r *postgresPlayerRepository) GetByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id`
	return r.queryPlayers(ctx, exec, query, pq.Array(ids))
}

func (r *postgresPlayerRepository) LockByIDs(ctx context.Context, exec SQLExecutor, ids []int) ([]models.Player, error) {
	if len(ids) == 0 {
		return []models.Player{}, nil
	}
	// Порядок по id исключает взаимные блокировки между матчами с общими игроками.
	query := `SELECT ` + playerColumns + ` FROM players WHERE id = ANY($1) ORDER BY id FOR UPDATE`
	return r.queryPlayers(ctx, exec, query, pq.Array(ids))
}

func (r *postgresPlayerRepository) Upsert(ctx context.Context, exec SQLExecutor, p *models.Player) error {
	if p.CategoryRatings == nil {
		p.CategoryRatings = map[string]float64{}
	}
	ratings, err := json.Marshal(p.CategoryRatings)
	if err != nil {
		return fmt.Errorf("failed to encode category ratings: %w", err)
	}
	categories := p.Categories
	if categories == nil {
		categories = []string{}
	}
	executor := r.getExecutor(exec)

	if p.ID == 0 {
		query := `
			INSERT INTO players (owner_id, name, nickname, categories, manual_rating, global_rating, category_ratings, matches_played)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, created_at`
		err = executor.QueryRowContext(ctx, query,
			p.OwnerID, p.Name, p.Nickname, pq.Array(categories), p.ManualRating, p.GlobalRating, ratings, p.MatchesPlayed,
		).Scan(&p.ID, &p.CreatedAt)
		return r.handlePlayerError(err)
	}

	query := `
		UPDATE players
		SET name = $1, nickname = $2, categories = $3, manual_rating = $4, global_rating = $5, category_ratings = $6
		WHERE id = $7 AND owner_id = $8`
	result, err := executor.ExecContext(ctx, query,
		p.Name, p.Nickname, pq.Array(categories), p.ManualRating, p.GlobalRating, ratings, p.ID, p.OwnerID,
	)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ApplyRatingDelta(ctx context.Context, exec SQLExecutor, playerID int, category string, categoryRating, globalRating float64, matchesPlayed int) error {
	query := `
		UPDATE players
		SET category_ratings = CASE WHEN $2::text = '' THEN category_ratings
		                            ELSE jsonb_set(category_ratings, ARRAY[$2::text], to_jsonb($3::float8)) END,
		    global_rating = $4,
		    matches_played = $5
		WHERE id = $1`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, playerID, category, categoryRating, globalRating, matchesPlayed)
	if err != nil {
		return fmt.Errorf("ApplyRatingDelta: failed to update player %d: %w", playerID, err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, ownerID, id int) error {
	query := `DELETE FROM players WHERE id = $1 AND owner_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return r.handlePlayerError(err)
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) handlePlayerError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		switch pqErr.Constraint {
		case "players_owner_id_fkey":
			return ErrPlayerOwnerInvalid
		case "pairs_player1_id_fkey", "pairs_player2_id_fkey", "league_pairs_player1_id_fkey", "league_pairs_player2_id_fkey":
			return ErrPlayerInUse
		}
	}
	return err
}
