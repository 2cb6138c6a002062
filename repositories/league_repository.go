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
	ErrLeagueNotFound         = errors.New("league not found")
	ErrLeagueCategoryNotFound = errors.New("league category not found")
	ErrLeagueMatchNotFound    = errors.New("league match not found")
	ErrLeaguePairConflict     = errors.New("pair already registered in this category")
	ErrLeaguePairInvalid      = errors.New("league pair player or category invalid")
)

type LeagueRepository interface {
	CreateLeague(ctx context.Context, league *models.League) error
	GetLeague(ctx context.Context, id int) (*models.League, error)
	ListLeaguesByOwner(ctx context.Context, ownerID int) ([]models.League, error)

	CreateCategory(ctx context.Context, category *models.LeagueCategory) error
	GetCategory(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueCategory, error)
	GetCategoryForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueCategory, error)
	ListCategories(ctx context.Context, leagueID int) ([]models.LeagueCategory, error)
	UpdateCategoryState(ctx context.Context, exec SQLExecutor, id int, status models.LeagueCategoryStatus, groups []models.Group) error

	AddPair(ctx context.Context, pair *models.LeaguePair) error
	ListPairs(ctx context.Context, exec SQLExecutor, categoryID int) ([]models.LeaguePair, error)

	InsertMatches(ctx context.Context, exec SQLExecutor, categoryID int, matches []models.LeagueMatch) ([]models.LeagueMatch, error)
	ListMatches(ctx context.Context, exec SQLExecutor, categoryID int) ([]models.LeagueMatch, error)
	GetMatchForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueMatch, error)
	UpdateMatchScore(ctx context.Context, exec SQLExecutor, id, scoreA, scoreB int) error
	// UpdateMatchSides заполняет стороны записи плей-офф, созданной заранее.
	UpdateMatchSides(ctx context.Context, exec SQLExecutor, id, pairAID, pairBID int) error
}

type postgresLeagueRepository struct {
	db *sql.DB
}

func NewPostgresLeagueRepository(db *sql.DB) LeagueRepository {
	return &postgresLeagueRepository{db: db}
}

func (r *postgresLeagueRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

// --- Лиги ---

func (r *postgresLeagueRepository) CreateLeague(ctx context.Context, l *models.League) error {
	query := `INSERT INTO leagues (owner_id, name, starts_on) VALUES ($1, $2, $3) RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, l.OwnerID, l.Name, l.StartsOn).Scan(&l.ID, &l.CreatedAt)
}

func (r *postgresLeagueRepository) GetLeague(ctx context.Context, id int) (*models.League, error) {
	query := `SELECT id, owner_id, name, starts_on, created_at FROM leagues WHERE id = $1`
	l := &models.League{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&l.ID, &l.OwnerID, &l.Name, &l.StartsOn, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueNotFound
		}
		return nil, fmt.Errorf("failed to scan league by id %d: %w", id, err)
	}
	return l, nil
}

func (r *postgresLeagueRepository) ListLeaguesByOwner(ctx context.Context, ownerID int) ([]models.League, error) {
	query := `SELECT id, owner_id, name, starts_on, created_at FROM leagues WHERE owner_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leagues for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	leagues := make([]models.League, 0)
	for rows.Next() {
		var l models.League
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.StartsOn, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan league row: %w", err)
		}
		leagues = append(leagues, l)
	}
	return leagues, rows.Err()
}

// --- Категории ---

const categoryColumns = `id, league_id, name, group_count, double_round, qualifiers_per_group, cross_type, legs, seed_method, status, groups`

func scanCategory(row rowScanner) (models.LeagueCategory, error) {
	var (
		c      models.LeagueCategory
		groups []byte
	)
	err := row.Scan(
		&c.ID,
		&c.LeagueID,
		&c.Name,
		&c.Settings.GroupCount,
		&c.Settings.DoubleRound,
		&c.Settings.QualifiersPerGroup,
		&c.Settings.CrossType,
		&c.Settings.Legs,
		&c.Settings.SeedMethod,
		&c.Status,
		&groups,
	)
	if err != nil {
		return c, err
	}
	if len(groups) > 0 {
		if err := json.Unmarshal(groups, &c.Groups); err != nil {
			return c, fmt.Errorf("failed to decode groups of category %d: %w", c.ID, err)
		}
	}
	return c, nil
}

func (r *postgresLeagueRepository) CreateCategory(ctx context.Context, c *models.LeagueCategory) error {
	query := `
		INSERT INTO league_categories (league_id, name, group_count, double_round, qualifiers_per_group, cross_type, legs, seed_method, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	s := c.Settings
	err := r.db.QueryRowContext(ctx, query,
		c.LeagueID, c.Name, s.GroupCount, s.DoubleRound, s.QualifiersPerGroup, s.CrossType, s.Legs, s.SeedMethod, c.Status,
	).Scan(&c.ID)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return ErrLeagueNotFound
		}
		return err
	}
	return nil
}

func (r *postgresLeagueRepository) GetCategory(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueCategory, error) {
	return r.getCategory(ctx, r.getExecutor(exec), `SELECT `+categoryColumns+` FROM league_categories WHERE id = $1`, id)
}

func (r *postgresLeagueRepository) GetCategoryForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueCategory, error) {
	return r.getCategory(ctx, r.getExecutor(exec), `SELECT `+categoryColumns+` FROM league_categories WHERE id = $1 FOR UPDATE`, id)
}

func (r *postgresLeagueRepository) getCategory(ctx context.Context, exec SQLExecutor, query string, id int) (*models.LeagueCategory, error) {
	c, err := scanCategory(exec.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueCategoryNotFound
		}
		return nil, fmt.Errorf("failed to scan league category %d: %w", id, err)
	}
	return &c, nil
}

func (r *postgresLeagueRepository) ListCategories(ctx context.Context, leagueID int) ([]models.LeagueCategory, error) {
	query := `SELECT ` + categoryColumns + ` FROM league_categories WHERE league_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories for league %d: %w", leagueID, err)
	}
	defer rows.Close()

	categories := make([]models.LeagueCategory, 0)
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league category row: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (r *postgresLeagueRepository) UpdateCategoryState(ctx context.Context, exec SQLExecutor, id int, status models.LeagueCategoryStatus, groups []models.Group) error {
	if groups == nil {
		groups = []models.Group{}
	}
	encoded, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("failed to encode groups: %w", err)
	}
	query := `UPDATE league_categories SET status = $1, groups = $2 WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, status, encoded, id)
	if err != nil {
		return fmt.Errorf("UpdateCategoryState: failed to execute query for category %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueCategoryNotFound)
}

// --- Пары ---

func (r *postgresLeagueRepository) AddPair(ctx context.Context, p *models.LeaguePair) error {
	query := `
		INSERT INTO league_pairs (category_id, player1_id, player2_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query, p.CategoryID, p.Player1ID, p.Player2ID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return ErrLeaguePairConflict
			case "23503":
				return ErrLeaguePairInvalid
			}
		}
		return err
	}
	return nil
}

func (r *postgresLeagueRepository) ListPairs(ctx context.Context, exec SQLExecutor, categoryID int) ([]models.LeaguePair, error) {
	query := `SELECT id, category_id, player1_id, player2_id, created_at FROM league_pairs WHERE category_id = $1 ORDER BY id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query league pairs for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	pairs := make([]models.LeaguePair, 0)
	for rows.Next() {
		var p models.LeaguePair
		if err := rows.Scan(&p.ID, &p.CategoryID, &p.Player1ID, &p.Player2ID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan league pair row: %w", err)
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// --- Матчи ---

const leagueMatchColumns = `id, category_id, phase, stage, group_name, matchday, leg, slot, pair_a_id, pair_b_id, score_a, score_b, is_finished`

func scanLeagueMatch(row rowScanner) (models.LeagueMatch, error) {
	var (
		m    models.LeagueMatch
		a, b sql.NullInt64
	)
	err := row.Scan(
		&m.ID,
		&m.CategoryID,
		&m.Phase,
		&m.Stage,
		&m.GroupName,
		&m.Matchday,
		&m.Leg,
		&m.Slot,
		&a,
		&b,
		&m.ScoreA,
		&m.ScoreB,
		&m.IsFinished,
	)
	m.PairAID, m.PairBID = idFromNull(a), idFromNull(b)
	return m, err
}

func (r *postgresLeagueRepository) InsertMatches(ctx context.Context, exec SQLExecutor, categoryID int, matches []models.LeagueMatch) ([]models.LeagueMatch, error) {
	query := `
		INSERT INTO league_matches (category_id, phase, stage, group_name, matchday, leg, slot, pair_a_id, pair_b_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	executor := r.getExecutor(exec)
	created := make([]models.LeagueMatch, 0, len(matches))
	for _, m := range matches {
		m.CategoryID = categoryID
		err := executor.QueryRowContext(ctx, query,
			m.CategoryID, m.Phase, m.Stage, m.GroupName, m.Matchday, m.Leg, m.Slot, nullableID(m.PairAID), nullableID(m.PairBID),
		).Scan(&m.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to insert league match: %w", err)
		}
		created = append(created, m)
	}
	return created, nil
}

func (r *postgresLeagueRepository) ListMatches(ctx context.Context, exec SQLExecutor, categoryID int) ([]models.LeagueMatch, error) {
	query := `
		SELECT ` + leagueMatchColumns + `
		FROM league_matches
		WHERE category_id = $1
		ORDER BY phase DESC, group_name ASC, matchday ASC, slot ASC, leg ASC, id ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query league matches for category %d: %w", categoryID, err)
	}
	defer rows.Close()

	matches := make([]models.LeagueMatch, 0)
	for rows.Next() {
		m, err := scanLeagueMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league match row: %w", err)
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *postgresLeagueRepository) GetMatchForUpdate(ctx context.Context, exec SQLExecutor, id int) (*models.LeagueMatch, error) {
	query := `SELECT ` + leagueMatchColumns + ` FROM league_matches WHERE id = $1 FOR UPDATE`
	m, err := scanLeagueMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLeagueMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan league match by id %d: %w", id, err)
	}
	return &m, nil
}

func (r *postgresLeagueRepository) UpdateMatchScore(ctx context.Context, exec SQLExecutor, id, scoreA, scoreB int) error {
	query := `UPDATE league_matches SET score_a = $1, score_b = $2, is_finished = TRUE WHERE id = $3`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, scoreA, scoreB, id)
	if err != nil {
		return fmt.Errorf("UpdateMatchScore: failed to execute query for league match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueMatchNotFound)
}

func (r *postgresLeagueRepository) UpdateMatchSides(ctx context.Context, exec SQLExecutor, id, pairAID, pairBID int) error {
	query := `UPDATE league_matches SET pair_a_id = $1, pair_b_id = $2 WHERE id = $3 AND NOT is_finished`
	result, err := r.getExecutor(exec).ExecContext(ctx, query, nullableID(pairAID), nullableID(pairBID), id)
	if err != nil {
		return fmt.Errorf("UpdateMatchSides: failed to execute query for league match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrLeagueMatchNotFound)
}
