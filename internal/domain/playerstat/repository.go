package playerstat

import "context"

// Repository persists gameweek stat rows. UpsertStats must be idempotent
// on (player_id, gameweek).
type Repository interface {
	UpsertStats(ctx context.Context, rows []PlayerGameweekStat) error
	ListUpToGameweek(ctx context.Context, maxGameweek int) ([]PlayerGameweekStat, error)
	ListByTeamUpToGameweek(ctx context.Context, teamID string, maxGameweek int) ([]PlayerGameweekStat, error)
}
