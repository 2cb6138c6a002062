package brackets

import (
	"fmt"
	"sort"

	"github.com/antoniorme/minis-padel/models"
	"github.com/antoniorme/minis-padel/rating"
)

// Seeding: результат распределения по группам.
type Seeding struct {
	Groups   []models.Group `json:"groups"`
	Reserves []int          `json:"reserves"`
}

// CompletePairs оставляет пары, пригодные для посева, в исходном порядке.
func CompletePairs(pairs []models.Pair) []models.Pair {
	out := make([]models.Pair, 0, len(pairs))
	for _, p := range pairs {
		if p.IsComplete() {
			out = append(out, p)
		}
	}
	return out
}

// OrderPairs сортирует пары под метод посева. Manual сохраняет порядок.
func OrderPairs(pairs []models.Pair, players []models.Player, method models.SeedMethod) ([]models.Pair, error) {
	out := make([]models.Pair, len(pairs))
	copy(out, pairs)

	switch method {
	case models.SeedArrival:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	case models.SeedRatingBalanced, models.SeedRatingMixed:
		byID := models.PlayersByID(players)
		strength := make(map[int]float64, len(out))
		for _, p := range out {
			strength[p.ID] = pairStrength(p, byID)
		}
		sort.SliceStable(out, func(i, j int) bool { return strength[out[i].ID] > strength[out[j].ID] })
	case models.SeedManual:
	default:
		return nil, fmt.Errorf("unknown seed method %q", method)
	}
	return out, nil
}

func pairStrength(p models.Pair, players map[int]models.Player) float64 {
	p1 := players[p.Player1ID]
	var p2 models.Player
	if p.Player2ID != nil {
		p2 = players[*p.Player2ID]
	}
	return rating.PairRating(p1, p2)
}

// AssignGroups рассаживает по группам первые полные пары в пределах лимита
// формата. Лишние полные пары уходят в резерв; одиночки, ожидающие
// и отклонённые пары не учитываются.
func AssignGroups(pairs []models.Pair, players []models.Player, method models.SeedMethod, format models.Format) (Seeding, error) {
	return assign(pairs, players, method, format, true)
}

func assign(pairs []models.Pair, players []models.Player, method models.SeedMethod, format models.Format, strict bool) (Seeding, error) {
	if !format.Valid() {
		return Seeding{}, fmt.Errorf("%w: %d", ErrUnsupportedFormat, format)
	}
	complete := CompletePairs(pairs)
	limit := format.Limit()
	if strict && len(complete) < limit {
		return Seeding{}, &InsufficientPairsError{Required: limit, Available: len(complete)}
	}

	ordered, err := OrderPairs(complete, players, method)
	if err != nil {
		return Seeding{}, err
	}

	seeded := ordered
	var reserves []int
	if len(ordered) > limit {
		seeded = ordered[:limit]
		for _, p := range ordered[limit:] {
			reserves = append(reserves, p.ID)
		}
	}

	count, size := format.GroupCount(), format.GroupSize()
	groups := make([]models.Group, count)
	for g := range groups {
		groups[g] = models.Group{Name: models.GroupNames[g], PairIDs: []int{}}
	}
	for i, p := range seeded {
		g := i / size
		if method == models.SeedRatingMixed {
			g = i % count
		}
		groups[g].PairIDs = append(groups[g].PairIDs, p.ID)
	}
	return Seeding{Groups: groups, Reserves: reserves}, nil
}

// MarkReserves отмечает резервом полные пары сверх лимита, по порядку
// регистрации. Имеет смысл только до генерации групп.
func MarkReserves(pairs []models.Pair, format models.Format) []models.Pair {
	out := make([]models.Pair, len(pairs))
	copy(out, pairs)

	idx := make([]int, 0, len(out))
	for i, p := range out {
		out[i].IsReserve = false
		if p.IsComplete() {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool { return out[idx[a]].ID < out[idx[b]].ID })
	for n, i := range idx {
		if n >= format.Limit() {
			out[i].IsReserve = true
		}
	}
	return out
}
