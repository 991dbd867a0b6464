package postgres

import "time"

type playerTableModel struct {
	ID          string    `db:"id"`
	TeamID      string    `db:"team_id"`
	Name        string    `db:"name"`
	Position    string    `db:"position"`
	Price       int64     `db:"price"`
	PlayerRefID int64     `db:"player_ref_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

type playerInsertModel struct {
	ID          string `db:"id"`
	TeamID      string `db:"team_id"`
	Name        string `db:"name"`
	Position    string `db:"position"`
	Price       int64  `db:"price"`
	PlayerRefID int64  `db:"player_ref_id"`
}
