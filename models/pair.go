package models

import "time"

// PairStatus представляет статус заявки пары.
type PairStatus string

const (
	PairConfirmed PairStatus = "confirmed"
	PairPending   PairStatus = "pending"
	PairRejected  PairStatus = "rejected"
)

func (s PairStatus) Valid() bool {
	switch s {
	case PairConfirmed, PairPending, PairRejected:
		return true
	}
	return false
}

// PairStats: производная статистика пары, пересчитывается из списка матчей.
type PairStats struct {
	Played   int `json:"played"`
	Won      int `json:"won"`
	GameDiff int `json:"game_diff"`
}

// Pair: два игрока в одном турнире или один игрок без партнёра (Player2ID == nil).
type Pair struct {
	ID            int        `json:"id" db:"id"`
	TournamentID  int        `json:"tournament_id" db:"tournament_id"`
	Player1ID     int        `json:"player1_id" db:"player1_id"`
	Player2ID     *int       `json:"player2_id" db:"player2_id"`
	Status        PairStatus `json:"status" db:"status"`
	IsReserve     bool       `json:"is_reserve" db:"is_reserve"`
	WaterReceived bool       `json:"water_received" db:"water_received"`
	BallsReceived bool       `json:"balls_received" db:"balls_received"`
	Paid          bool       `json:"paid" db:"paid"`
	Stats         PairStats  `json:"stats" db:"-"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
}

// IsSolo: пара ещё ждёт партнёра.
func (p Pair) IsSolo() bool {
	return p.Player2ID == nil || *p.Player2ID == 0
}

// IsComplete: пару можно сеять, оба игрока на месте, а заявка
// не ожидает подтверждения и не отклонена.
func (p Pair) IsComplete() bool {
	if p.IsSolo() {
		return false
	}
	return p.Status == "" || p.Status == PairConfirmed
}

// PlayerIDs возвращает id одного или двух игроков пары.
func (p Pair) PlayerIDs() []int {
	if p.IsSolo() {
		return []int{p.Player1ID}
	}
	return []int{p.Player1ID, *p.Player2ID}
}
