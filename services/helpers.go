package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/rating"
	"github.com/antoniorme/minis-padel/repositories"
)

// --- Общие хелперы ---

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// trimmedOrNil превращает пустую строку в nil (необязательные поля).
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// normalizeCategories приводит категории к каноническому виду и отбрасывает дубликаты.
func normalizeCategories(categories []string) ([]string, error) {
	out := make([]string, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if !rating.IsKnownCategory(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, c)
		}
		key := strings.ToLower(c)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	return out, nil
}

func validateScore(scoreA, scoreB int) error {
	if scoreA < 0 || scoreB < 0 {
		return fmt.Errorf("%w: got %d-%d", ErrInvalidScore, scoreA, scoreB)
	}
	if scoreA == scoreB {
		return fmt.Errorf("%w: got %d-%d", ErrTiedScore, scoreA, scoreB)
	}
	return nil
}

// ensureOwner скрывает чужие ресурсы за "не найдено".
func ensureOwner(ownerID, callerID int, notFound error) error {
	if ownerID != callerID {
		return notFound
	}
	return nil
}

// handleRepositoryError переводит ошибки репозиториев в ошибки сервисного слоя.
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrPairNotFound):
		return ErrPairNotFound
	case errors.Is(err, repositories.ErrMatchNotFound), errors.Is(err, repositories.ErrLeagueMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrLeagueNotFound):
		return ErrLeagueNotFound
	case errors.Is(err, repositories.ErrLeagueCategoryNotFound):
		return ErrCategoryNotFound
	case errors.Is(err, repositories.ErrOrganizerNotFound):
		return ErrOrganizerNotFound
	case errors.Is(err, repositories.ErrOrganizerEmailConflict):
		return ErrEmailConflict
	case errors.Is(err, repositories.ErrPairHasMatches):
		return ErrPairInUse
	case errors.Is(err, repositories.ErrPlayerInUse):
		return ErrPlayerInUse
	case errors.Is(err, repositories.ErrPairPlayerInvalid), errors.Is(err, repositories.ErrLeaguePairInvalid):
		return fmt.Errorf("%w: %v", ErrValidationFailed, err)
	case errors.Is(err, repositories.ErrLeaguePairConflict):
		return ErrPlayerAlreadyPaired
	}
	return err
}

// playerIDsOf собирает различных игроков указанных пар.
func playerIDsOf(pairs ...models.Pair) []int {
	seen := map[int]bool{}
	var ids []int
	for _, p := range pairs {
		for _, id := range p.PlayerIDs() {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
