package usecase

import (
	"sort"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
)

// TeamFactorSnapshot is the aggregation output for one team in one run:
// sample size plus raw per-90 rates, before normalization.
type TeamFactorSnapshot struct {
	TeamID      string
	GamesPlayed int
	Raw         fdr.RawFactors
}

// HasSample reports whether the team produced any usable minutes.
func (s TeamFactorSnapshot) HasSample() bool {
	return s.GamesPlayed > 0
}

// BuildTeamFactorSnapshot aggregates a team's stat rows up to and including
// maxGameweek into per-90 factor rates.
//
// Rates always sum player rows first and divide once; they never average
// per-player rates. Minutes are summed across the whole squad, so
// conceded-style stats that repeat on every row of a match self-normalize
// back to the team's true per-90 rate.
func BuildTeamFactorSnapshot(teamID string, maxGameweek int, rows []playerstat.PlayerGameweekStat, formWindow int) TeamFactorSnapshot {
	snapshot := TeamFactorSnapshot{TeamID: teamID}

	scoped := make([]playerstat.PlayerGameweekStat, 0, len(rows))
	for _, row := range rows {
		if row.TeamID != teamID {
			continue
		}
		if maxGameweek > 0 && row.Gameweek > maxGameweek {
			continue
		}
		scoped = append(scoped, row)
	}
	if len(scoped) == 0 {
		return snapshot
	}

	snapshot.GamesPlayed = countPlayedGameweeks(scoped)
	if snapshot.GamesPlayed == 0 {
		return snapshot
	}

	homeRows := filterStatRows(scoped, func(row playerstat.PlayerGameweekStat) bool { return row.WasHome })
	awayRows := filterStatRows(scoped, func(row playerstat.PlayerGameweekStat) bool { return !row.WasHome })
	formRows := recentFormRows(scoped, formWindow)

	goalsPer90 := per90Rate(scoped, func(row playerstat.PlayerGameweekStat) float64 { return float64(row.GoalsScored) })
	xgPer90 := per90Rate(scoped, func(row playerstat.PlayerGameweekStat) float64 { return row.ExpectedGoals })

	snapshot.Raw = fdr.RawFactors{
		GoalsScoredPer90:           goalsPer90,
		GoalsConcededPer90:         per90Rate(scoped, func(row playerstat.PlayerGameweekStat) float64 { return float64(row.GoalsConceded) }),
		ExpectedGoalsPer90:         xgPer90,
		ExpectedGoalsConcededPer90: per90Rate(scoped, func(row playerstat.PlayerGameweekStat) float64 { return row.ExpectedGoalsConceded }),
		HomeGoalsPer90:             per90Rate(homeRows, func(row playerstat.PlayerGameweekStat) float64 { return float64(row.GoalsScored) }),
		AwayGoalsPer90:             per90Rate(awayRows, func(row playerstat.PlayerGameweekStat) float64 { return float64(row.GoalsScored) }),
		HomeExpectedGoalsPer90:     per90Rate(homeRows, func(row playerstat.PlayerGameweekStat) float64 { return row.ExpectedGoals }),
		AwayExpectedGoalsPer90:     per90Rate(awayRows, func(row playerstat.PlayerGameweekStat) float64 { return row.ExpectedGoals }),
		FormGoalsPer90:             per90Rate(formRows, func(row playerstat.PlayerGameweekStat) float64 { return float64(row.GoalsScored) }),
		PointsPerGame:              pointsPerGame(scoped, snapshot.GamesPlayed),
		FinishingDelta:             goalsPer90 - xgPer90,
	}

	return snapshot
}

// per90Rate divides the summed stat by the summed minutes expressed in
// 90-minute units. Zero minutes yields zero, not NaN.
func per90Rate(rows []playerstat.PlayerGameweekStat, value func(playerstat.PlayerGameweekStat) float64) float64 {
	var total float64
	var minutes int
	for _, row := range rows {
		total += value(row)
		minutes += row.Minutes
	}
	if minutes == 0 {
		return 0
	}

	return total / (float64(minutes) / 90.0)
}

func pointsPerGame(rows []playerstat.PlayerGameweekStat, gamesPlayed int) float64 {
	if gamesPlayed == 0 {
		return 0
	}

	var points int
	for _, row := range rows {
		points += row.TotalPoints
	}
	return float64(points) / float64(gamesPlayed)
}

func countPlayedGameweeks(rows []playerstat.PlayerGameweekStat) int {
	played := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		if row.Minutes > 0 {
			played[row.Gameweek] = struct{}{}
		}
	}
	return len(played)
}

func filterStatRows(rows []playerstat.PlayerGameweekStat, keep func(playerstat.PlayerGameweekStat) bool) []playerstat.PlayerGameweekStat {
	out := make([]playerstat.PlayerGameweekStat, 0, len(rows))
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

// recentFormRows keeps rows belonging to the window highest distinct
// gameweeks present in the sample.
func recentFormRows(rows []playerstat.PlayerGameweekStat, window int) []playerstat.PlayerGameweekStat {
	if window <= 0 {
		return nil
	}

	distinct := make(map[int]struct{}, len(rows))
	for _, row := range rows {
		distinct[row.Gameweek] = struct{}{}
	}
	if len(distinct) == 0 {
		return nil
	}

	gameweeks := make([]int, 0, len(distinct))
	for gw := range distinct {
		gameweeks = append(gameweeks, gw)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(gameweeks)))
	if len(gameweeks) > window {
		gameweeks = gameweeks[:window]
	}

	allowed := make(map[int]struct{}, len(gameweeks))
	for _, gw := range gameweeks {
		allowed[gw] = struct{}{}
	}

	return filterStatRows(rows, func(row playerstat.PlayerGameweekStat) bool {
		_, ok := allowed[row.Gameweek]
		return ok
	})
}
