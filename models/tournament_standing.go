package models

// PairStanding: строка таблицы группы. Всегда считается по матчам.
type PairStanding struct {
	PairID   int `json:"pair_id"`
	Played   int `json:"played"`
	Wins     int `json:"wins"`
	Losses   int `json:"losses"`
	GamesFor int `json:"games_for"`
	GamesAg  int `json:"games_against"`
	GameDiff int `json:"game_diff"`
	Rank     int `json:"rank"` // 1-based position within the group
}

// Group: именованная группа с упорядоченным списком пар.
type Group struct {
	Name    string `json:"name"`
	PairIDs []int  `json:"pair_ids"`
}

// GroupNames: буквы групп во всех форматах.
var GroupNames = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// Contains: входит ли пара в группу.
func (g Group) Contains(pairID int) bool {
	for _, id := range g.PairIDs {
		if id == pairID {
			return true
		}
	}
	return false
}

// Has: есть ли в группе пара на позиции.
func (g Group) Has(idx int) bool {
	return idx >= 0 && idx < len(g.PairIDs) && g.PairIDs[idx] != 0
}
