package brackets

import "github.com/antoniorme/minis-padel/models"

const (
	gA = iota
	gB
	gC
	gD
)

// pairings: три тура круговой системы для группы из четырёх.
var pairings = [3][2][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

// fourRound добавляет оба матча тура группы на два соседних корта,
// начиная с court.
func fourRound(round, group, pairing, court int) []ScheduleEntry {
	p := pairings[pairing]
	return []ScheduleEntry{
		{Round: round, Group: group, A: p[0][0], B: p[0][1], Court: court},
		{Round: round, Group: group, A: p[1][0], B: p[1][1], Court: court + 1},
	}
}

func concat(parts ...[]ScheduleEntry) []ScheduleEntry {
	var out []ScheduleEntry
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// 16 пар, 4 группы по 4 на шести кортах. В каждом туре одна группа отдыхает:
// D в первом, C во втором, B в третьем, A в четвёртом.
var template16 = &Template{
	Format:    models.Format16,
	Groups:    4,
	GroupSize: 4,
	Schedule: concat(
		fourRound(1, gA, 0, 1), fourRound(1, gB, 0, 3), fourRound(1, gC, 0, 5),
		fourRound(2, gA, 1, 1), fourRound(2, gB, 1, 3), fourRound(2, gD, 0, 5),
		fourRound(3, gA, 2, 1), fourRound(3, gC, 1, 3), fourRound(3, gD, 1, 5),
		fourRound(4, gB, 2, 1), fourRound(4, gC, 2, 3), fourRound(4, gD, 2, 5),
	),
	Knockout: []KnockoutSlot{
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 1, A: groupRank(gA, 1), B: groupRank(gC, 2)},
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 2, A: groupRank(gC, 1), B: groupRank(gA, 2)},
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 3, A: groupRank(gB, 1), B: groupRank(gD, 2)},
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 4, A: groupRank(gD, 1), B: groupRank(gB, 2)},
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketConsolation, Court: 5, A: groupRank(gA, 3), B: groupRank(gC, 4)},
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketConsolation, Court: 6, A: groupRank(gC, 3), B: groupRank(gA, 4)},
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketConsolation, Court: 7, A: groupRank(gB, 3), B: groupRank(gD, 4)},
		{Round: 5, Phase: models.PhaseQuarterfinal, Bracket: models.BracketConsolation, Court: 8, A: groupRank(gD, 3), B: groupRank(gB, 4)},

		{Round: 6, Phase: models.PhaseSemifinal, Bracket: models.BracketMain, Court: 1, A: winnerOf(5, 1), B: winnerOf(5, 3)},
		{Round: 6, Phase: models.PhaseSemifinal, Bracket: models.BracketMain, Court: 2, A: winnerOf(5, 2), B: winnerOf(5, 4)},
		{Round: 6, Phase: models.PhaseSemifinal, Bracket: models.BracketConsolation, Court: 3, A: winnerOf(5, 5), B: winnerOf(5, 7)},
		{Round: 6, Phase: models.PhaseSemifinal, Bracket: models.BracketConsolation, Court: 4, A: winnerOf(5, 6), B: winnerOf(5, 8)},

		{Round: 7, Phase: models.PhaseFinal, Bracket: models.BracketMain, Court: 1, A: winnerOf(6, 1), B: winnerOf(6, 2)},
		{Round: 7, Phase: models.PhaseFinal, Bracket: models.BracketConsolation, Court: 2, A: winnerOf(6, 3), B: winnerOf(6, 4)},
	},
}

// 12 пар, 3 группы по 4, все играют каждый тур на шести кортах. Восемь лучших
// (победители, вторые места и два лучших третьих) играют основные четвертьфиналы;
// последний третий и четвёртые места сразу идут в утешительные полуфиналы.
var template12 = &Template{
	Format:    models.Format12,
	Groups:    3,
	GroupSize: 4,
	Schedule: concat(
		fourRound(1, gA, 0, 1), fourRound(1, gB, 0, 3), fourRound(1, gC, 0, 5),
		fourRound(2, gA, 1, 1), fourRound(2, gB, 1, 3), fourRound(2, gC, 1, 5),
		fourRound(3, gA, 2, 1), fourRound(3, gB, 2, 3), fourRound(3, gC, 2, 5),
	),
	Knockout: []KnockoutSlot{
		{Round: 4, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 1, A: groupRank(gA, 1), B: rankTier(3, 2)},
		{Round: 4, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 2, A: groupRank(gB, 2), B: groupRank(gC, 2)},
		{Round: 4, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 3, A: groupRank(gB, 1), B: rankTier(3, 1)},
		{Round: 4, Phase: models.PhaseQuarterfinal, Bracket: models.BracketMain, Court: 4, A: groupRank(gC, 1), B: groupRank(gA, 2)},

		{Round: 5, Phase: models.PhaseSemifinal, Bracket: models.BracketMain, Court: 1, A: winnerOf(4, 1), B: winnerOf(4, 3)},
		{Round: 5, Phase: models.PhaseSemifinal, Bracket: models.BracketMain, Court: 2, A: winnerOf(4, 2), B: winnerOf(4, 4)},
		{Round: 5, Phase: models.PhaseSemifinal, Bracket: models.BracketConsolation, Court: 3, A: rankTier(3, 3), B: rankTier(4, 3)},
		{Round: 5, Phase: models.PhaseSemifinal, Bracket: models.BracketConsolation, Court: 4, A: rankTier(4, 1), B: rankTier(4, 2)},

		{Round: 6, Phase: models.PhaseFinal, Bracket: models.BracketMain, Court: 1, A: winnerOf(5, 1), B: winnerOf(5, 2)},
		{Round: 6, Phase: models.PhaseFinal, Bracket: models.BracketConsolation, Court: 2, A: winnerOf(5, 3), B: winnerOf(5, 4)},
	},
}

// twoGroupKnockout: полуфиналы и финалы, общие для форматов с двумя группами.
func twoGroupKnockout(sfRound int) []KnockoutSlot {
	final := sfRound + 1
	return []KnockoutSlot{
		{Round: sfRound, Phase: models.PhaseSemifinal, Bracket: models.BracketMain, Court: 1, A: groupRank(gA, 1), B: groupRank(gB, 2)},
		{Round: sfRound, Phase: models.PhaseSemifinal, Bracket: models.BracketMain, Court: 2, A: groupRank(gB, 1), B: groupRank(gA, 2)},
		{Round: sfRound, Phase: models.PhaseSemifinal, Bracket: models.BracketConsolation, Court: 3, A: groupRank(gA, 3), B: groupRank(gB, 4)},
		{Round: sfRound, Phase: models.PhaseSemifinal, Bracket: models.BracketConsolation, Court: 4, A: groupRank(gB, 3), B: groupRank(gA, 4)},

		{Round: final, Phase: models.PhaseFinal, Bracket: models.BracketMain, Court: 1, A: winnerOf(sfRound, 1), B: winnerOf(sfRound, 2)},
		{Round: final, Phase: models.PhaseFinal, Bracket: models.BracketConsolation, Court: 2, A: winnerOf(sfRound, 3), B: winnerOf(sfRound, 4)},
	}
}

// 10 пар, 2 группы по 5 за пять туров; каждая пара один раз отдыхает.
var template10 = &Template{
	Format:    models.Format10,
	Groups:    2,
	GroupSize: 5,
	Schedule:  fiveMemberSchedule(),
	Knockout:  twoGroupKnockout(6),
}

func fiveMemberSchedule() []ScheduleEntry {
	rounds := [5][2][2]int{
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 4}},
		{{0, 3}, {2, 4}},
		{{0, 4}, {1, 3}},
		{{1, 2}, {3, 4}},
	}
	var out []ScheduleEntry
	for r, ms := range rounds {
		for g := gA; g <= gB; g++ {
			for i, m := range ms {
				out = append(out, ScheduleEntry{Round: r + 1, Group: g, A: m[0], B: m[1], Court: g*2 + i + 1})
			}
		}
	}
	return out
}

// 8 пар, 2 группы по 4 на четырёх кортах.
var template8 = &Template{
	Format:    models.Format8,
	Groups:    2,
	GroupSize: 4,
	Schedule: concat(
		fourRound(1, gA, 0, 1), fourRound(1, gB, 0, 3),
		fourRound(2, gA, 1, 1), fourRound(2, gB, 1, 3),
		fourRound(3, gA, 2, 1), fourRound(3, gB, 2, 3),
	),
	Knockout: twoGroupKnockout(4),
}

var templates = map[models.Format]*Template{
	models.Format8:  template8,
	models.Format10: template10,
	models.Format12: template12,
	models.Format16: template16,
}
