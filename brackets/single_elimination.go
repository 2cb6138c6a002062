package brackets

import (
	"errors"
	"fmt"

	"github.com/antoniorme/minis-padel/models"
)

var ErrPlayoffSize = errors.New("playoff needs 1, 2, 4 or 8 ties")

// StageForTies называет стадию плей-офф из n пар матчей.
func StageForTies(n int) (models.Phase, error) {
	switch n {
	case 1:
		return models.PhaseFinal, nil
	case 2:
		return models.PhaseSemifinal, nil
	case 4:
		return models.PhaseQuarterfinal, nil
	case 8:
		return models.PhaseRoundOf16, nil
	}
	return "", fmt.Errorf("%w: got %d", ErrPlayoffSize, n)
}

// TiesInStage обратна StageForTies.
func TiesInStage(stage models.Phase) int {
	switch stage {
	case models.PhaseFinal:
		return 1
	case models.PhaseSemifinal:
		return 2
	case models.PhaseQuarterfinal:
		return 4
	case models.PhaseRoundOf16:
		return 8
	}
	return 0
}

// NextSlot: куда проходит победитель слота slot (с нуля) стадии из n слотов.
// Встречаются слоты k и k+n/2, первый из них на стороне A.
func NextSlot(slot, n int) (next int, sideA bool) {
	half := n / 2
	return slot % half, slot < half
}

// ResolveTie определяет победителя противостояния в один или два матча.
// В legs должны играть одни и те же пары. Два матча решаются по сумме геймов,
// затем по выигранным матчам, иначе в пользу стороны A первого матча.
func ResolveTie(legs []models.LeagueMatch) (int, bool) {
	if len(legs) == 0 {
		return 0, false
	}
	for _, l := range legs {
		if !l.IsFinished || l.ScoreA == nil || l.ScoreB == nil || l.IsTBD() {
			return 0, false
		}
	}
	first := legs[0]
	for _, l := range legs {
		if l.Leg < first.Leg {
			first = l
		}
	}
	if len(legs) == 1 {
		w, ok := first.AsMatch().Winner()
		return w, ok
	}

	x, y := first.PairAID, first.PairBID
	games := map[int]int{}
	won := map[int]int{}
	for _, l := range legs {
		games[l.PairAID] += *l.ScoreA
		games[l.PairBID] += *l.ScoreB
		switch {
		case *l.ScoreA > *l.ScoreB:
			won[l.PairAID]++
		case *l.ScoreB > *l.ScoreA:
			won[l.PairBID]++
		}
	}
	switch {
	case games[x] != games[y]:
		if games[x] > games[y] {
			return x, true
		}
		return y, true
	case won[x] != won[y]:
		if won[x] > won[y] {
			return x, true
		}
		return y, true
	}
	return x, true
}
