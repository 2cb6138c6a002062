package models

import (
	"fmt"
	"time"
)

// Phase: фаза матча. Закрытое множество значений.
type Phase string

const (
	PhaseGroup        Phase = "group"
	PhaseRoundOf16    Phase = "r16"
	PhaseQuarterfinal Phase = "qf"
	PhaseSemifinal    Phase = "sf"
	PhaseFinal        Phase = "final"
	PhasePlayoff      Phase = "playoff"
)

func (p Phase) Valid() bool {
	switch p {
	case PhaseGroup, PhaseRoundOf16, PhaseQuarterfinal, PhaseSemifinal, PhaseFinal, PhasePlayoff:
		return true
	}
	return false
}

// IsKnockout: относится ли фаза к сетке на выбывание.
func (p Phase) IsKnockout() bool {
	return p.Valid() && p != PhaseGroup
}

// Bracket отличает основную сетку от утешительной. Пустое значение: групповая фаза.
type Bracket string

const (
	BracketNone        Bracket = ""
	BracketMain        Bracket = "main"
	BracketConsolation Bracket = "consolation"
)

func (b Bracket) Valid() bool {
	switch b {
	case BracketNone, BracketMain, BracketConsolation:
		return true
	}
	return false
}

// Match: один матч между двумя парами. Счёт nil, пока матч не сыгран.
type Match struct {
	ID              int       `json:"id" db:"id"`
	TournamentID    int       `json:"tournament_id" db:"tournament_id"`
	Round           int       `json:"round" db:"round"`
	Phase           Phase     `json:"phase" db:"phase"`
	Bracket         Bracket   `json:"bracket,omitempty" db:"bracket"`
	CourtID         int       `json:"court_id" db:"court_id"`
	PairAID         int       `json:"pair_a_id" db:"pair_a_id"`
	PairBID         int       `json:"pair_b_id" db:"pair_b_id"`
	ScoreA          *int      `json:"score_a" db:"score_a"`
	ScoreB          *int      `json:"score_b" db:"score_b"`
	IsFinished      bool      `json:"is_finished" db:"is_finished"`
	RatingProcessed bool      `json:"rating_processed" db:"rating_processed"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`

	// Физический корт и волна при нехватке кортов; вычисляются при загрузке.
	PhysicalCourt int `json:"physical_court" db:"-"`
	Wave          int `json:"wave" db:"-"`
}

// MatchDraft: матч без идентичности, сгенерированный движком.
type MatchDraft struct {
	Round   int     `json:"round"`
	Phase   Phase   `json:"phase"`
	Bracket Bracket `json:"bracket,omitempty"`
	CourtID int     `json:"court_id"`
	PairAID int     `json:"pair_a_id"`
	PairBID int     `json:"pair_b_id"`
}

// ToMatch превращает черновик в несыгранный матч турнира.
func (d MatchDraft) ToMatch(tournamentID int) Match {
	return Match{
		TournamentID: tournamentID,
		Round:        d.Round,
		Phase:        d.Phase,
		Bracket:      d.Bracket,
		CourtID:      d.CourtID,
		PairAID:      d.PairAID,
		PairBID:      d.PairBID,
	}
}

// Winner возвращает пару с большим счётом. ok равно false для незавершённых
// и ничейных матчей.
func (m Match) Winner() (pairID int, ok bool) {
	if !m.IsFinished || m.ScoreA == nil || m.ScoreB == nil || *m.ScoreA == *m.ScoreB {
		return 0, false
	}
	if *m.ScoreA > *m.ScoreB {
		return m.PairAID, true
	}
	return m.PairBID, true
}

// Involves: играет ли пара в этом матче.
func (m Match) Involves(pairID int) bool {
	return m.PairAID == pairID || m.PairBID == pairID
}

func (m Match) String() string {
	return fmt.Sprintf("R%d %s/%s court %d: %d v %d", m.Round, m.Phase, m.Bracket, m.CourtID, m.PairAID, m.PairBID)
}
