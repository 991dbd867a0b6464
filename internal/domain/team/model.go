package team

import (
	"fmt"
	"time"
)

// Team is a Premier League club tracked by the rating pipeline.
type Team struct {
	ID        string
	TeamRefID int64
	Name      string
	Short     string
	Rating    Rating
}

// Rating is the dashboard-facing projection of the latest difficulty
// calculation. It is written only after audit rows are persisted.
type Rating struct {
	HomeDifficulty int
	AwayDifficulty int
	UpdatedAt      *time.Time
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.TeamRefID <= 0 {
		return fmt.Errorf("team ref id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}

// HasRating reports whether a difficulty projection has ever been written.
func (t Team) HasRating() bool {
	return t.Rating.UpdatedAt != nil
}
