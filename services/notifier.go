package services

import (
	"context"

	"github.com/antoniorme/minis-padel/models"
)

// Notifier получает два события записи турнира. Реализации не должны
// блокировать; websocket-хаб рассылает их в комнату турнира.
type Notifier interface {
	OnScoreSubmitted(ctx context.Context, tournamentID int, match models.Match)
	OnRoundAdvance(ctx context.Context, tournament models.Tournament, newMatches []models.Match)
}

type noopNotifier struct{}

func (noopNotifier) OnScoreSubmitted(context.Context, int, models.Match) {}
func (noopNotifier) OnRoundAdvance(context.Context, models.Tournament, []models.Match) {}
