package fdr

import (
	"fmt"
	"time"
)

const (
	MinDifficulty = 1
	MaxDifficulty = 10

	// NeutralDifficulty is assigned when a team has no usable sample.
	NeutralDifficulty = 5
)

// RawFactors are per-90 (or per-game) team rates produced by the
// aggregation step, before any normalization.
type RawFactors struct {
	GoalsScoredPer90           float64
	GoalsConcededPer90         float64
	ExpectedGoalsPer90         float64
	ExpectedGoalsConcededPer90 float64
	HomeGoalsPer90             float64
	AwayGoalsPer90             float64
	HomeExpectedGoalsPer90     float64
	AwayExpectedGoalsPer90     float64
	FormGoalsPer90             float64
	PointsPerGame              float64
	FinishingDelta             float64
}

// FactorScores mirror RawFactors normalized to the 0..100 range relative
// to the league population of the same run.
type FactorScores struct {
	GoalsScored           float64
	GoalsConceded         float64
	ExpectedGoals         float64
	ExpectedGoalsConceded float64
	HomeGoals             float64
	AwayGoals             float64
	HomeExpectedGoals     float64
	AwayExpectedGoals     float64
	FormGoals             float64
	PointsPerGame         float64
	FinishingDelta        float64
}

// TeamFdrCalculation is one audit row: everything that went into a team's
// difficulty for one (season, gameweek) run. Rows are upserted on
// (team_id, season, gameweek); history across gameweeks is kept.
type TeamFdrCalculation struct {
	TeamID       string
	Season       string
	Gameweek     int
	CalculatedAt time.Time
	GamesPlayed  int

	Raw    RawFactors
	Scores FactorScores

	HomeStrength    float64
	AwayStrength    float64
	OverallStrength float64

	HomeDifficulty int
	AwayDifficulty int

	// InsufficientData marks a backfilled neutral row for a team that had
	// no played games in the run.
	InsufficientData bool
}

func (c TeamFdrCalculation) Validate() error {
	if c.TeamID == "" {
		return fmt.Errorf("calculation team id is required")
	}
	if c.Season == "" {
		return fmt.Errorf("calculation season is required")
	}
	if c.Gameweek <= 0 {
		return fmt.Errorf("calculation gameweek must be positive")
	}
	if c.HomeDifficulty < MinDifficulty || c.HomeDifficulty > MaxDifficulty {
		return fmt.Errorf("home difficulty %d out of range", c.HomeDifficulty)
	}
	if c.AwayDifficulty < MinDifficulty || c.AwayDifficulty > MaxDifficulty {
		return fmt.Errorf("away difficulty %d out of range", c.AwayDifficulty)
	}

	return nil
}

// NeutralCalculation builds the backfill row for a team absent from a run.
func NeutralCalculation(teamID, season string, gameweek int, at time.Time) TeamFdrCalculation {
	return TeamFdrCalculation{
		TeamID:           teamID,
		Season:           season,
		Gameweek:         gameweek,
		CalculatedAt:     at,
		HomeStrength:     50,
		AwayStrength:     50,
		OverallStrength:  50,
		HomeDifficulty:   NeutralDifficulty,
		AwayDifficulty:   NeutralDifficulty,
		InsufficientData: true,
	}
}
