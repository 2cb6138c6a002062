package league

import (
	"fmt"

	"github.com/antoniorme/minis-padel/brackets"
	"github.com/antoniorme/minis-padel/models"
)

// Propagation: записи, нужные после решения противостояния плей-офф.
type Propagation struct {
	Winner   int                  `json:"winner"`
	Create   []models.LeagueMatch `json:"create,omitempty"`
	Update   []models.LeagueMatch `json:"update,omitempty"`
	Finished bool                 `json:"finished"`
}

// PropagateWinner переводит победителя противостояния с матчем match в следующую
// стадию. playoff содержит все записи плей-офф категории. Противостояние
// следующей стадии создаётся с приходом первого победителя, вторая сторона
// остаётся 0 и заполняется на месте со вторым. Нерешённое противостояние
// даёт пустой Propagation.
func PropagateWinner(playoff []models.LeagueMatch, match models.LeagueMatch) (Propagation, error) {
	if match.Phase != models.PhasePlayoff {
		return Propagation{}, ErrNotPlayoffMatch
	}
	n := brackets.TiesInStage(match.Stage)
	if n == 0 {
		return Propagation{}, fmt.Errorf("%w: stage %q", ErrNotPlayoffMatch, match.Stage)
	}

	legs := tieRecords(playoff, match.Stage, match.Slot)
	winner, ok := brackets.ResolveTie(legs)
	if !ok {
		return Propagation{}, nil
	}
	if n == 1 {
		return Propagation{Winner: winner, Finished: true}, nil
	}

	nextStage, err := brackets.StageForTies(n / 2)
	if err != nil {
		return Propagation{}, err
	}
	nextSlot, sideA := brackets.NextSlot(match.Slot, n)

	res := Propagation{Winner: winner}
	existing := tieRecords(playoff, nextStage, nextSlot)
	if len(existing) == 0 {
		for _, rec := range tieLegs(nextStage, nextSlot, len(legs), 0, 0) {
			rec.CategoryID = match.CategoryID
			place(&rec, winner, sideA)
			res.Create = append(res.Create, rec)
		}
		return res, nil
	}

	for _, rec := range existing {
		current := rec.PairBID
		if onA(rec, sideA) {
			current = rec.PairAID
		}
		if current == winner {
			continue
		}
		if rec.IsFinished {
			return Propagation{}, fmt.Errorf("%s tie %d already played", nextStage, nextSlot)
		}
		place(&rec, winner, sideA)
		res.Update = append(res.Update, rec)
	}
	return res, nil
}

// onA: стоит ли приходящая сторона на стороне A этого матча.
// Во втором матче стороны меняются.
func onA(rec models.LeagueMatch, sideA bool) bool {
	if rec.Leg == 2 {
		return !sideA
	}
	return sideA
}

func place(rec *models.LeagueMatch, pairID int, sideA bool) {
	if onA(*rec, sideA) {
		rec.PairAID = pairID
	} else {
		rec.PairBID = pairID
	}
}

func tieRecords(matches []models.LeagueMatch, stage models.Phase, slot int) []models.LeagueMatch {
	var out []models.LeagueMatch
	for _, m := range matches {
		if m.Phase == models.PhasePlayoff && m.Stage == stage && m.Slot == slot {
			out = append(out, m)
		}
	}
	return out
}
