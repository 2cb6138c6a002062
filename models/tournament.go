package models

import (
	"fmt"
	"time"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusSetup    TournamentStatus = "setup"
	StatusActive   TournamentStatus = "active"
	StatusFinished TournamentStatus = "finished"
)

func (s TournamentStatus) Valid() bool {
	switch s {
	case StatusSetup, StatusActive, StatusFinished:
		return true
	}
	return false
}

// Format: вариант мини-турнира по количеству пар.
type Format int

const (
	Format8  Format = 8
	Format10 Format = 10
	Format12 Format = 12
	Format16 Format = 16
)

func (f Format) Valid() bool {
	switch f {
	case Format8, Format10, Format12, Format16:
		return true
	}
	return false
}

// Limit возвращает число пар, рассаживаемых по группам.
func (f Format) Limit() int { return int(f) }

// GroupCount возвращает число групп формата.
func (f Format) GroupCount() int {
	switch f {
	case Format16:
		return 4
	case Format12:
		return 3
	case Format10, Format8:
		return 2
	}
	return 0
}

// GroupSize: число пар в группе.
func (f Format) GroupSize() int {
	if f.GroupCount() == 0 {
		return 0
	}
	return f.Limit() / f.GroupCount()
}

// Tournament представляет мини-турнир (запись в БД).
type Tournament struct {
	ID           int              `json:"id" db:"id"`
	OwnerID      int              `json:"owner_id" db:"owner_id"`
	Name         string           `json:"name" db:"name"`
	Format       Format           `json:"format" db:"format"`
	Status       TournamentStatus `json:"status" db:"status"`
	CurrentRound int              `json:"current_round" db:"current_round"`
	CourtCount   int              `json:"court_count" db:"court_count"`
	ArchivedAt   *time.Time       `json:"archived_at,omitempty" db:"archived_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// TournamentState: агрегат, собираемый при каждой загрузке турнира.
// Groups и Pair.Stats всегда производные.
type TournamentState struct {
	Tournament Tournament `json:"tournament"`
	Players    []Player   `json:"players"`
	Pairs      []Pair     `json:"pairs"`
	Matches    []Match    `json:"matches"`
	Groups     []Group    `json:"groups"`
}

// CheckInvariants проверяет, что у активного турнира пары групповых матчей
// совпадают с парами в группах.
func (s *TournamentState) CheckInvariants() error {
	if s.Tournament.Status != StatusActive {
		return nil
	}
	inGroups := make(map[int]bool)
	for _, g := range s.Groups {
		for _, id := range g.PairIDs {
			if inGroups[id] {
				return fmt.Errorf("pair %d appears in more than one group", id)
			}
			inGroups[id] = true
		}
	}
	inMatches := make(map[int]bool)
	for _, m := range s.Matches {
		if m.Phase != PhaseGroup {
			continue
		}
		inMatches[m.PairAID] = true
		inMatches[m.PairBID] = true
	}
	for id := range inMatches {
		if !inGroups[id] {
			return fmt.Errorf("pair %d plays group matches but is not in any group", id)
		}
	}
	for id := range inGroups {
		if !inMatches[id] {
			return fmt.Errorf("pair %d is in a group but has no group matches", id)
		}
	}
	return nil
}
