package postgres

import (
	"database/sql"
	"time"
)

type teamTableModel struct {
	ID              string        `db:"id"`
	TeamRefID       int64         `db:"team_ref_id"`
	Name            string        `db:"name"`
	Short           string        `db:"short"`
	HomeDifficulty  sql.NullInt64 `db:"home_difficulty"`
	AwayDifficulty  sql.NullInt64 `db:"away_difficulty"`
	RatingUpdatedAt sql.NullTime  `db:"rating_updated_at"`
	CreatedAt       time.Time     `db:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at"`
}

type teamInsertModel struct {
	ID        string `db:"id"`
	TeamRefID int64  `db:"team_ref_id"`
	Name      string `db:"name"`
	Short     string `db:"short"`
}
