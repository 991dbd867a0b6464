package fplapi

// Wire-level payload shapes for the public FPL endpoints. Decimal stats
// arrive as strings and are parsed at the mapping boundary.

type bootstrapEnvelope struct {
	Events   []eventRow   `json:"events"`
	Teams    []teamRow    `json:"teams"`
	Elements []elementRow `json:"elements"`
}

type eventRow struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	Finished  bool `json:"finished"`
}

type teamRow struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type elementRow struct {
	ID          int64  `json:"id"`
	Team        int64  `json:"team"`
	WebName     string `json:"web_name"`
	ElementType int    `json:"element_type"`
	NowCost     int64  `json:"now_cost"`
}

type fixtureRow struct {
	ID          int64  `json:"id"`
	Event       *int   `json:"event"`
	TeamH       int64  `json:"team_h"`
	TeamA       int64  `json:"team_a"`
	KickoffTime string `json:"kickoff_time"`
	Finished    bool   `json:"finished"`
	TeamHScore  *int   `json:"team_h_score"`
	TeamAScore  *int   `json:"team_a_score"`
}

type elementSummaryEnvelope struct {
	History []historyRow `json:"history"`
}

type historyRow struct {
	Round        int    `json:"round"`
	OpponentTeam int64  `json:"opponent_team"`
	WasHome      bool   `json:"was_home"`
	KickoffTime  string `json:"kickoff_time"`

	TotalPoints              int    `json:"total_points"`
	Minutes                  int    `json:"minutes"`
	GoalsScored              int    `json:"goals_scored"`
	Assists                  int    `json:"assists"`
	CleanSheets              int    `json:"clean_sheets"`
	GoalsConceded            int    `json:"goals_conceded"`
	OwnGoals                 int    `json:"own_goals"`
	PenaltiesSaved           int    `json:"penalties_saved"`
	PenaltiesMissed          int    `json:"penalties_missed"`
	YellowCards              int    `json:"yellow_cards"`
	RedCards                 int    `json:"red_cards"`
	Saves                    int    `json:"saves"`
	Bonus                    int    `json:"bonus"`
	BPS                      int    `json:"bps"`
	Influence                string `json:"influence"`
	Creativity               string `json:"creativity"`
	Threat                   string `json:"threat"`
	ICTIndex                 string `json:"ict_index"`
	ExpectedGoals            string `json:"expected_goals"`
	ExpectedAssists          string `json:"expected_assists"`
	ExpectedGoalInvolvements string `json:"expected_goal_involvements"`
	ExpectedGoalsConceded    string `json:"expected_goals_conceded"`
	Selected                 int    `json:"selected"`
	TransfersIn              int    `json:"transfers_in"`
	TransfersOut             int    `json:"transfers_out"`
}
