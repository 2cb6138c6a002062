package models

import "time"

// DefaultManualRating: ручная оценка по десятибалльной шкале для новых игроков.
const DefaultManualRating = 5.0

// Player: член клуба. Рейтинги меняются только движком рейтинга и правками организатора.
type Player struct {
	ID              int                `json:"id" db:"id"`
	OwnerID         int                `json:"owner_id" db:"owner_id"`
	Name            string             `json:"name" db:"name"`
	Nickname        *string            `json:"nickname,omitempty" db:"nickname"`
	Categories      []string           `json:"categories" db:"categories"`
	ManualRating    float64            `json:"manual_rating" db:"manual_rating"`
	GlobalRating    float64            `json:"global_rating" db:"global_rating"`
	CategoryRatings map[string]float64 `json:"category_ratings" db:"category_ratings"`
	MatchesPlayed   int                `json:"matches_played" db:"matches_played"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
}

// DisplayName предпочитает никнейм.
func (p Player) DisplayName() string {
	if p.Nickname != nil && *p.Nickname != "" {
		return *p.Nickname
	}
	return p.Name
}

// PrimaryCategory возвращает первую категорию или "", если категорий нет.
func (p Player) PrimaryCategory() string {
	if len(p.Categories) == 0 {
		return ""
	}
	return p.Categories[0]
}

// PlayersByID индексирует список игроков.
func PlayersByID(players []Player) map[int]Player {
	m := make(map[int]Player, len(players))
	for _, p := range players {
		m[p.ID] = p
	}
	return m
}
