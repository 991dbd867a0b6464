package team

import (
	"context"
	"time"
)

// Repository describes team persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	UpsertTeams(ctx context.Context, teams []Team) error
	UpdateRating(ctx context.Context, teamID string, homeDifficulty, awayDifficulty int, updatedAt time.Time) error
}
