package player

import "fmt"

// Position represents football position categories as published by the
// upstream statistics source.
type Position string

const (
	PositionGoalkeeper Position = "GK"
	PositionDefender   Position = "DEF"
	PositionMidfielder Position = "MID"
	PositionForward    Position = "FWD"
)

var AllPositions = map[Position]struct{}{
	PositionGoalkeeper: {},
	PositionDefender:   {},
	PositionMidfielder: {},
	PositionForward:    {},
}

// Player is one roster entry. PlayerRefID is the upstream element id used
// when fetching gameweek histories.
type Player struct {
	ID          string
	TeamID      string
	Name        string
	Position    Position
	Price       int64
	PlayerRefID int64
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllPositions[p.Position]; !ok {
		return fmt.Errorf("invalid player position: %s", p.Position)
	}
	if p.PlayerRefID <= 0 {
		return fmt.Errorf("player ref id is required")
	}

	return nil
}
