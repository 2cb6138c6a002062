package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/rating"
	"github.com/antoniorme/minis-padel/repositories"
)

// reconcileBatch ограничивает число матчей за один проход сверки.
const reconcileBatch = 100

type RatingService interface {
	// ProcessMatch применяет изменение рейтинга завершённого матча ровно один раз.
	// applied равно false, если матч не завершён или уже учтён.
	ProcessMatch(ctx context.Context, matchID int) (applied bool, err error)
	// ReconcilePending повторяет завершённые матчи, рейтинг которых не применён.
	ReconcilePending(ctx context.Context) (int, error)
}

type ratingService struct {
	tx         repositories.Transactor
	matchRepo  repositories.MatchRepository
	pairRepo   repositories.PairRepository
	playerRepo repositories.PlayerRepository
	logger     *slog.Logger
}

func NewRatingService(
	tx repositories.Transactor,
	matchRepo repositories.MatchRepository,
	pairRepo repositories.PairRepository,
	playerRepo repositories.PlayerRepository,
	logger *slog.Logger,
) RatingService {
	return &ratingService{
		tx:         tx,
		matchRepo:  matchRepo,
		pairRepo:   pairRepo,
		playerRepo: playerRepo,
		logger:     logger,
	}
}

func (s *ratingService) ProcessMatch(ctx context.Context, matchID int) (bool, error) {
	var updates []rating.PlayerUpdate
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		// Блокировка матча гарантирует однократное применение при гонке с фоновой сверкой.
		m, err := s.matchRepo.GetForUpdate(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if !m.IsFinished || m.RatingProcessed {
			return nil
		}

		pairA, err := s.pairRepo.GetByID(ctx, exec, m.PairAID)
		if err != nil {
			return fmt.Errorf("pair A of match %d: %w", m.ID, err)
		}
		pairB, err := s.pairRepo.GetByID(ctx, exec, m.PairBID)
		if err != nil {
			return fmt.Errorf("pair B of match %d: %w", m.ID, err)
		}

		players, err := s.playerRepo.LockByIDs(ctx, exec, playerIDsOf(*pairA, *pairB))
		if err != nil {
			return err
		}
		if updates, err = rating.Apply(*m, *pairA, *pairB, models.PlayersByID(players)); err != nil {
			return err
		}
		for _, u := range updates {
			if err := s.playerRepo.ApplyRatingDelta(ctx, exec, u.PlayerID, u.Category, u.CategoryRating, u.GlobalRating, u.MatchesPlayed); err != nil {
				return err
			}
		}
		return s.matchRepo.MarkRatingProcessed(ctx, exec, m.ID)
	})
	if err != nil {
		return false, handleRepositoryError(err)
	}
	if len(updates) == 0 {
		return false, nil
	}
	s.logger.Info("ratings applied", slog.Int("match_id", matchID), slog.Int("delta", updates[0].Delta), slog.String("category", updates[0].Category))
	return true, nil
}

func (s *ratingService) ReconcilePending(ctx context.Context) (int, error) {
	pending, err := s.matchRepo.ListPendingRatings(ctx, reconcileBatch)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending ratings: %w", err)
	}
	applied := 0
	for _, m := range pending {
		if err := ctx.Err(); err != nil {
			return applied, err
		}
		ok, err := s.ProcessMatch(ctx, m.ID)
		if err != nil {
			s.logger.Warn("rating sweep: match skipped", slog.Int("match_id", m.ID), slog.Any("error", err))
			continue
		}
		if ok {
			applied++
		}
	}
	if applied > 0 {
		s.logger.Info("rating sweep finished", slog.Int("pending", len(pending)), slog.Int("applied", applied))
	}
	return applied, nil
}
