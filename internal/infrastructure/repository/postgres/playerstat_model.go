package postgres

import "time"

type playerStatTableModel struct {
	PlayerID       string    `db:"player_id"`
	PlayerRefID    int64     `db:"player_ref_id"`
	TeamID         string    `db:"team_id"`
	Gameweek       int       `db:"gameweek"`
	OpponentTeamID string    `db:"opponent_team_id"`
	WasHome        bool      `db:"was_home"`
	KickoffAt      time.Time `db:"kickoff_at"`

	TotalPoints              int     `db:"total_points"`
	Minutes                  int     `db:"minutes"`
	GoalsScored              int     `db:"goals_scored"`
	Assists                  int     `db:"assists"`
	CleanSheets              int     `db:"clean_sheets"`
	GoalsConceded            int     `db:"goals_conceded"`
	OwnGoals                 int     `db:"own_goals"`
	PenaltiesSaved           int     `db:"penalties_saved"`
	PenaltiesMissed          int     `db:"penalties_missed"`
	YellowCards              int     `db:"yellow_cards"`
	RedCards                 int     `db:"red_cards"`
	Saves                    int     `db:"saves"`
	Bonus                    int     `db:"bonus"`
	BPS                      int     `db:"bps"`
	Influence                float64 `db:"influence"`
	Creativity               float64 `db:"creativity"`
	Threat                   float64 `db:"threat"`
	ICTIndex                 float64 `db:"ict_index"`
	ExpectedGoals            float64 `db:"expected_goals"`
	ExpectedAssists          float64 `db:"expected_assists"`
	ExpectedGoalInvolvements float64 `db:"expected_goal_involvements"`
	ExpectedGoalsConceded    float64 `db:"expected_goals_conceded"`
	SelectedBy               int     `db:"selected_by"`
	TransfersIn              int     `db:"transfers_in"`
	TransfersOut             int     `db:"transfers_out"`
}
