package postgres

import (
	"database/sql"
	"time"
)

type fixtureTableModel struct {
	ID           string        `db:"id"`
	FixtureRefID int64         `db:"fixture_ref_id"`
	Gameweek     int           `db:"gameweek"`
	HomeTeamID   string        `db:"home_team_id"`
	AwayTeamID   string        `db:"away_team_id"`
	KickoffAt    time.Time     `db:"kickoff_at"`
	HomeScore    sql.NullInt64 `db:"home_score"`
	AwayScore    sql.NullInt64 `db:"away_score"`
	Status       string        `db:"status"`
	FinishedAt   sql.NullTime  `db:"finished_at"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

type fixtureInsertModel struct {
	ID           string        `db:"id"`
	FixtureRefID int64         `db:"fixture_ref_id"`
	Gameweek     int           `db:"gameweek"`
	HomeTeamID   string        `db:"home_team_id"`
	AwayTeamID   string        `db:"away_team_id"`
	KickoffAt    time.Time     `db:"kickoff_at"`
	HomeScore    sql.NullInt64 `db:"home_score"`
	AwayScore    sql.NullInt64 `db:"away_score"`
	Status       string        `db:"status"`
	FinishedAt   sql.NullTime  `db:"finished_at"`
}
