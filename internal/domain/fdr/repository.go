package fdr

import "context"

// Repository persists calculation audit rows.
type Repository interface {
	Upsert(ctx context.Context, calc TeamFdrCalculation) error
	GetLatest(ctx context.Context, season string) (TeamFdrCalculation, bool, error)
	GetLatestByTeam(ctx context.Context, teamID, season string) (TeamFdrCalculation, bool, error)
	ListByGameweek(ctx context.Context, season string, gameweek int) ([]TeamFdrCalculation, error)
}
