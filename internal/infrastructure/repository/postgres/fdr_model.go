package postgres

import (
	"time"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
)

type fdrCalculationTableModel struct {
	TeamID       string    `db:"team_id"`
	Season       string    `db:"season"`
	Gameweek     int       `db:"gameweek"`
	CalculatedAt time.Time `db:"calculated_at"`
	GamesPlayed  int       `db:"games_played"`

	RawGoalsScoredPer90           float64 `db:"raw_goals_scored_per90"`
	RawGoalsConcededPer90         float64 `db:"raw_goals_conceded_per90"`
	RawExpectedGoalsPer90         float64 `db:"raw_expected_goals_per90"`
	RawExpectedGoalsConcededPer90 float64 `db:"raw_expected_goals_conceded_per90"`
	RawHomeGoalsPer90             float64 `db:"raw_home_goals_per90"`
	RawAwayGoalsPer90             float64 `db:"raw_away_goals_per90"`
	RawHomeExpectedGoalsPer90     float64 `db:"raw_home_expected_goals_per90"`
	RawAwayExpectedGoalsPer90     float64 `db:"raw_away_expected_goals_per90"`
	RawFormGoalsPer90             float64 `db:"raw_form_goals_per90"`
	RawPointsPerGame              float64 `db:"raw_points_per_game"`
	RawFinishingDelta             float64 `db:"raw_finishing_delta"`

	ScoreGoalsScored           float64 `db:"score_goals_scored"`
	ScoreGoalsConceded         float64 `db:"score_goals_conceded"`
	ScoreExpectedGoals         float64 `db:"score_expected_goals"`
	ScoreExpectedGoalsConceded float64 `db:"score_expected_goals_conceded"`
	ScoreHomeGoals             float64 `db:"score_home_goals"`
	ScoreAwayGoals             float64 `db:"score_away_goals"`
	ScoreHomeExpectedGoals     float64 `db:"score_home_expected_goals"`
	ScoreAwayExpectedGoals     float64 `db:"score_away_expected_goals"`
	ScoreFormGoals             float64 `db:"score_form_goals"`
	ScorePointsPerGame         float64 `db:"score_points_per_game"`
	ScoreFinishingDelta        float64 `db:"score_finishing_delta"`

	HomeStrength    float64 `db:"home_strength"`
	AwayStrength    float64 `db:"away_strength"`
	OverallStrength float64 `db:"overall_strength"`

	HomeDifficulty   int  `db:"home_difficulty"`
	AwayDifficulty   int  `db:"away_difficulty"`
	InsufficientData bool `db:"insufficient_data"`
}

func fdrCalculationToModel(calc fdr.TeamFdrCalculation) fdrCalculationTableModel {
	return fdrCalculationTableModel{
		TeamID:       calc.TeamID,
		Season:       calc.Season,
		Gameweek:     calc.Gameweek,
		CalculatedAt: calc.CalculatedAt.UTC(),
		GamesPlayed:  calc.GamesPlayed,

		RawGoalsScoredPer90:           calc.Raw.GoalsScoredPer90,
		RawGoalsConcededPer90:         calc.Raw.GoalsConcededPer90,
		RawExpectedGoalsPer90:         calc.Raw.ExpectedGoalsPer90,
		RawExpectedGoalsConcededPer90: calc.Raw.ExpectedGoalsConcededPer90,
		RawHomeGoalsPer90:             calc.Raw.HomeGoalsPer90,
		RawAwayGoalsPer90:             calc.Raw.AwayGoalsPer90,
		RawHomeExpectedGoalsPer90:     calc.Raw.HomeExpectedGoalsPer90,
		RawAwayExpectedGoalsPer90:     calc.Raw.AwayExpectedGoalsPer90,
		RawFormGoalsPer90:             calc.Raw.FormGoalsPer90,
		RawPointsPerGame:              calc.Raw.PointsPerGame,
		RawFinishingDelta:             calc.Raw.FinishingDelta,

		ScoreGoalsScored:           calc.Scores.GoalsScored,
		ScoreGoalsConceded:         calc.Scores.GoalsConceded,
		ScoreExpectedGoals:         calc.Scores.ExpectedGoals,
		ScoreExpectedGoalsConceded: calc.Scores.ExpectedGoalsConceded,
		ScoreHomeGoals:             calc.Scores.HomeGoals,
		ScoreAwayGoals:             calc.Scores.AwayGoals,
		ScoreHomeExpectedGoals:     calc.Scores.HomeExpectedGoals,
		ScoreAwayExpectedGoals:     calc.Scores.AwayExpectedGoals,
		ScoreFormGoals:             calc.Scores.FormGoals,
		ScorePointsPerGame:         calc.Scores.PointsPerGame,
		ScoreFinishingDelta:        calc.Scores.FinishingDelta,

		HomeStrength:    calc.HomeStrength,
		AwayStrength:    calc.AwayStrength,
		OverallStrength: calc.OverallStrength,

		HomeDifficulty:   calc.HomeDifficulty,
		AwayDifficulty:   calc.AwayDifficulty,
		InsufficientData: calc.InsufficientData,
	}
}

func fdrModelToDomain(row fdrCalculationTableModel) fdr.TeamFdrCalculation {
	return fdr.TeamFdrCalculation{
		TeamID:       row.TeamID,
		Season:       row.Season,
		Gameweek:     row.Gameweek,
		CalculatedAt: row.CalculatedAt.UTC(),
		GamesPlayed:  row.GamesPlayed,

		Raw: fdr.RawFactors{
			GoalsScoredPer90:           row.RawGoalsScoredPer90,
			GoalsConcededPer90:         row.RawGoalsConcededPer90,
			ExpectedGoalsPer90:         row.RawExpectedGoalsPer90,
			ExpectedGoalsConcededPer90: row.RawExpectedGoalsConcededPer90,
			HomeGoalsPer90:             row.RawHomeGoalsPer90,
			AwayGoalsPer90:             row.RawAwayGoalsPer90,
			HomeExpectedGoalsPer90:     row.RawHomeExpectedGoalsPer90,
			AwayExpectedGoalsPer90:     row.RawAwayExpectedGoalsPer90,
			FormGoalsPer90:             row.RawFormGoalsPer90,
			PointsPerGame:              row.RawPointsPerGame,
			FinishingDelta:             row.RawFinishingDelta,
		},
		Scores: fdr.FactorScores{
			GoalsScored:           row.ScoreGoalsScored,
			GoalsConceded:         row.ScoreGoalsConceded,
			ExpectedGoals:         row.ScoreExpectedGoals,
			ExpectedGoalsConceded: row.ScoreExpectedGoalsConceded,
			HomeGoals:             row.ScoreHomeGoals,
			AwayGoals:             row.ScoreAwayGoals,
			HomeExpectedGoals:     row.ScoreHomeExpectedGoals,
			AwayExpectedGoals:     row.ScoreAwayExpectedGoals,
			FormGoals:             row.ScoreFormGoals,
			PointsPerGame:         row.ScorePointsPerGame,
			FinishingDelta:        row.ScoreFinishingDelta,
		},

		HomeStrength:    row.HomeStrength,
		AwayStrength:    row.AwayStrength,
		OverallStrength: row.OverallStrength,

		HomeDifficulty:   row.HomeDifficulty,
		AwayDifficulty:   row.AwayDifficulty,
		InsufficientData: row.InsufficientData,
	}
}
