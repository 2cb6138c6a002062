package rating

import (
	"errors"
	"fmt"

	"github.com/antoniorme/minis-padel/models"
)

var (
	ErrMatchNotFinished = errors.New("match is not finished")
	ErrIncompletePair   = errors.New("pair has no second player")
	ErrPlayerMissing    = errors.New("player not found for rating update")
)

// PlayerUpdate: новый рейтинг игрока после матча.
type PlayerUpdate struct {
	PlayerID       int     `json:"player_id"`
	Category       string  `json:"category,omitempty"`
	Delta          int     `json:"delta"`
	CategoryRating float64 `json:"category_rating"`
	GlobalRating   float64 `json:"global_rating"`
	MatchesPlayed  int     `json:"matches_played"`
}

// MatchCategory: категория, в которую идёт матч, первая категория
// первого игрока стороны A.
func MatchCategory(p models.Player) string {
	return p.PrimaryCategory()
}

// Apply считает обновления четырёх игроков завершённого матча. Входные данные
// не меняются; результат сохраняется вызывающим вместе с отметкой матча.
func Apply(match models.Match, pairA, pairB models.Pair, players map[int]models.Player) ([]PlayerUpdate, error) {
	if !match.IsFinished || match.ScoreA == nil || match.ScoreB == nil {
		return nil, fmt.Errorf("match %d: %w", match.ID, ErrMatchNotFinished)
	}
	sideA, err := pairPlayers(pairA, players)
	if err != nil {
		return nil, err
	}
	sideB, err := pairPlayers(pairB, players)
	if err != nil {
		return nil, err
	}

	delta := MatchDelta(SideRating(sideA[0], sideA[1]), SideRating(sideB[0], sideB[1]), *match.ScoreA, *match.ScoreB)
	category := MatchCategory(sideA[0])

	updates := make([]PlayerUpdate, 0, 4)
	for _, p := range sideA {
		updates = append(updates, updateFor(p, category, delta))
	}
	for _, p := range sideB {
		updates = append(updates, updateFor(p, category, -delta))
	}
	return updates, nil
}

func pairPlayers(pair models.Pair, players map[int]models.Player) ([2]models.Player, error) {
	var out [2]models.Player
	if pair.IsSolo() {
		return out, fmt.Errorf("pair %d: %w", pair.ID, ErrIncompletePair)
	}
	for i, id := range pair.PlayerIDs() {
		p, ok := players[id]
		if !ok {
			return out, fmt.Errorf("player %d of pair %d: %w", id, pair.ID, ErrPlayerMissing)
		}
		out[i] = p
	}
	return out, nil
}

func updateFor(p models.Player, category string, delta int) PlayerUpdate {
	current := DisplayRating(p)
	u := PlayerUpdate{
		PlayerID:      p.ID,
		Category:      category,
		Delta:         delta,
		GlobalRating:  current + float64(delta)*globalDampening,
		MatchesPlayed: p.MatchesPlayed + 1,
	}
	if category != "" {
		base, ok := p.CategoryRatings[category]
		if !ok {
			base = current
		}
		u.CategoryRating = base + float64(delta)
	}
	return u
}
