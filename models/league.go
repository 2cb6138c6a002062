package models

import "time"

// CrossType задаёт, как квалифицированные пары сводятся в плей-офф.
type CrossType string

const (
	CrossCrossed  CrossType = "crossed"
	CrossInternal CrossType = "internal"
)

type LeagueCategoryStatus string

const (
	LeagueCategorySetup    LeagueCategoryStatus = "setup"
	LeagueCategoryGroups   LeagueCategoryStatus = "groups"
	LeagueCategoryPlayoffs LeagueCategoryStatus = "playoffs"
	LeagueCategoryFinished LeagueCategoryStatus = "finished"
)

type League struct {
	ID         int              `json:"id"`
	OwnerID    int              `json:"owner_id"`
	Name       string           `json:"name"`
	StartsOn   *time.Time       `json:"starts_on,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	Categories []LeagueCategory `json:"categories,omitempty"`
}

// LeagueSettings: правила соревнования категории.
type LeagueSettings struct {
	GroupCount         int        `json:"group_count"`
	DoubleRound        bool       `json:"double_round"`
	QualifiersPerGroup int        `json:"qualifiers_per_group"`
	CrossType          CrossType  `json:"cross_type"`
	Legs               int        `json:"legs"`
	SeedMethod         SeedMethod `json:"seed_method"`
}

type LeagueCategory struct {
	ID       int                  `json:"id"`
	LeagueID int                  `json:"league_id"`
	Name     string               `json:"name"`
	Settings LeagueSettings       `json:"settings"`
	Status   LeagueCategoryStatus `json:"status"`
	Groups   []Group              `json:"groups,omitempty"`
}

// LeaguePair: пара, заявленная в категорию лиги.
type LeaguePair struct {
	ID         int       `json:"id"`
	CategoryID int       `json:"category_id"`
	Player1ID  int       `json:"player1_id"`
	Player2ID  int       `json:"player2_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// LeagueMatch: матч лиги. В плей-офф PairAID/PairBID равны 0 (TBD), пока
// не известен победитель питающего матча.
type LeagueMatch struct {
	ID         int    `json:"id"`
	CategoryID int    `json:"category_id"`
	Phase      Phase  `json:"phase"`
	Stage      Phase  `json:"stage,omitempty"`
	GroupName  string `json:"group_name,omitempty"`
	Matchday   int    `json:"matchday"`
	Leg        int    `json:"leg"`
	Slot       int    `json:"slot"`
	PairAID    int    `json:"pair_a_id"`
	PairBID    int    `json:"pair_b_id"`
	ScoreA     *int   `json:"score_a"`
	ScoreB     *int   `json:"score_b"`
	IsFinished bool   `json:"is_finished"`
}

// IsTBD: ждёт ли какая-то сторона победителя предыдущей стадии.
func (m LeagueMatch) IsTBD() bool {
	return m.PairAID == 0 || m.PairBID == 0
}

// AsMatch приводит матч лиги к общему Match, по которому считаются таблицы.
func (m LeagueMatch) AsMatch() Match {
	return Match{
		ID:         m.ID,
		Round:      m.Matchday,
		Phase:      m.Phase,
		PairAID:    m.PairAID,
		PairBID:    m.PairBID,
		ScoreA:     m.ScoreA,
		ScoreB:     m.ScoreB,
		IsFinished: m.IsFinished,
	}
}
