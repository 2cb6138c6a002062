package brackets

import (
	"fmt"

	"github.com/antoniorme/minis-padel/models"
)

// GenerateGroupMatches выдаёт фиксированное расписание группового этапа.
// Записи с пустой позицией в группе пропускаются.
func GenerateGroupMatches(format models.Format, groups []models.Group) ([]models.MatchDraft, error) {
	tpl, err := TemplateFor(format)
	if err != nil {
		return nil, err
	}
	if len(groups) > tpl.Groups {
		return nil, fmt.Errorf("format %d has %d groups, got %d", format, tpl.Groups, len(groups))
	}

	drafts := make([]models.MatchDraft, 0, len(tpl.Schedule))
	for _, e := range tpl.Schedule {
		if e.Group >= len(groups) {
			continue
		}
		g := groups[e.Group]
		if !g.Has(e.A) || !g.Has(e.B) {
			continue
		}
		drafts = append(drafts, models.MatchDraft{
			Round:   e.Round,
			Phase:   models.PhaseGroup,
			Bracket: models.BracketNone,
			CourtID: e.Court,
			PairAID: g.PairIDs[e.A],
			PairBID: g.PairIDs[e.B],
		})
	}
	return drafts, nil
}

// CourtLabel переводит логический корт в физический корт клуба. При нехватке
// кортов тур играется волнами; само расписание не меняется.
func CourtLabel(logical, courtCount int) (physical, wave int) {
	if courtCount <= 0 || logical <= courtCount {
		return logical, 1
	}
	return (logical-1)%courtCount + 1, (logical-1)/courtCount + 1
}
