package playerstat

import (
	"fmt"
	"time"
)

// PlayerGameweekStat is one immutable row of upstream statistics for a
// player in a gameweek. Rows are keyed on (player_id, gameweek) and are
// only ever upserted, never deleted.
type PlayerGameweekStat struct {
	PlayerID       string
	PlayerRefID    int64
	TeamID         string
	Gameweek       int
	OpponentTeamID string
	WasHome        bool
	KickoffAt      time.Time

	TotalPoints              int
	Minutes                  int
	GoalsScored              int
	Assists                  int
	CleanSheets              int
	GoalsConceded            int
	OwnGoals                 int
	PenaltiesSaved           int
	PenaltiesMissed          int
	YellowCards              int
	RedCards                 int
	Saves                    int
	Bonus                    int
	BPS                      int
	Influence                float64
	Creativity               float64
	Threat                   float64
	ICTIndex                 float64
	ExpectedGoals            float64
	ExpectedAssists          float64
	ExpectedGoalInvolvements float64
	ExpectedGoalsConceded    float64
	SelectedBy               int
	TransfersIn              int
	TransfersOut             int
}

func (s PlayerGameweekStat) Validate() error {
	if s.PlayerID == "" {
		return fmt.Errorf("stat player id is required")
	}
	if s.Gameweek <= 0 {
		return fmt.Errorf("stat gameweek must be positive")
	}
	if s.Minutes < 0 {
		return fmt.Errorf("stat minutes must not be negative")
	}

	return nil
}

// Played reports whether the player was on the pitch this gameweek.
func (s PlayerGameweekStat) Played() bool {
	return s.Minutes > 0
}
