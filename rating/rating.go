// Package rating считает рейтинг игроков: начальное значение по опорным точкам
// категорий с ручной поправкой и изменения в стиле ELO после каждого матча.
package rating

import (
	"math"
	"sort"
	"strings"

	"github.com/antoniorme/minis-padel/models"
)

const (
	// DefaultRating, если ни у одной категории игрока нет опорной точки.
	DefaultRating = 1200.0

	manualStep      = 30.0
	kFactor         = 20.0
	maxDelta        = 25
	globalDampening = 0.25
)

// Опорные точки категорий, шаг 200 очков.
var categoryAnchors = map[string]float64{
	"iniciación": 800,
	"5ª cat":     1000,
	"4ª cat":     1200,
	"3ª cat":     1400,
	"2ª cat":     1600,
	"1ª cat":     1800,
}

// Categories перечисляет известные категории от слабой к сильной.
var Categories = []string{"Iniciación", "5ª CAT", "4ª CAT", "3ª CAT", "2ª CAT", "1ª CAT"}

func anchorFor(category string) (float64, bool) {
	v, ok := categoryAnchors[strings.ToLower(strings.TrimSpace(category))]
	return v, ok
}

// IsKnownCategory: есть ли у категории опорная точка.
func IsKnownCategory(category string) bool {
	_, ok := anchorFor(category)
	return ok
}

// InitialRating усредняет опорные точки категорий игрока и сдвигает результат
// на 30 очков за каждый шаг ручной оценки от 5.
func InitialRating(categories []string, manualRating float64) float64 {
	sum, n := 0.0, 0
	for _, c := range categories {
		if v, ok := anchorFor(c); ok {
			sum += v
			n++
		}
	}
	base := DefaultRating
	if n > 0 {
		base = sum / float64(n)
	}
	if manualRating == 0 {
		manualRating = models.DefaultManualRating
	}
	return base + (manualRating-models.DefaultManualRating)*manualStep
}

// DisplayRating: рейтинг для показа и посева.
func DisplayRating(p models.Player) float64 {
	if p.GlobalRating != 0 {
		return p.GlobalRating
	}
	return InitialRating(p.Categories, p.ManualRating)
}

// PairRating: суммарная сила пары для посева.
func PairRating(p1, p2 models.Player) float64 {
	return DisplayRating(p1) + DisplayRating(p2)
}

// SideRating: рейтинг, с которым пара выходит на матч.
func SideRating(p1, p2 models.Player) float64 {
	return PairRating(p1, p2) / 2
}

// ExpectedScore: ожидаемый результат A против B по логистической кривой.
func ExpectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400))
}

func marginMultiplier(scoreA, scoreB int) float64 {
	if scoreA+scoreB < 4 {
		return 0.5
	}
	diff := scoreA - scoreB
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff >= 5:
		return 1.2
	case diff >= 3:
		return 1.1
	}
	return 1.0
}

// MatchDelta возвращает изменение рейтинга стороны A; сторона B получает
// обратное значение. Результат ограничен ±25.
func MatchDelta(ratingA, ratingB float64, scoreA, scoreB int) int {
	// Считается от стороны с большим рейтингом: перестановка аргументов
	// даёт ровно обратное значение.
	if ratingA < ratingB || (ratingA == ratingB && scoreA < scoreB) {
		return -MatchDelta(ratingB, ratingA, scoreB, scoreA)
	}

	actual := 0.0
	switch {
	case scoreA > scoreB:
		actual = 1.0
	case scoreA == scoreB:
		actual = 0.5
	}

	raw := kFactor * marginMultiplier(scoreA, scoreB) * (actual - ExpectedScore(ratingA, ratingB))
	delta := int(math.Round(raw))
	if delta > maxDelta {
		delta = maxDelta
	}
	if delta < -maxDelta {
		delta = -maxDelta
	}
	return delta
}

// Ranking упорядочивает игроков по рейтингу, сильнейшие первыми.
// При равенстве сохраняется исходный порядок.
func Ranking(players []models.Player) []models.Player {
	out := make([]models.Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		return DisplayRating(out[i]) > DisplayRating(out[j])
	})
	return out
}
