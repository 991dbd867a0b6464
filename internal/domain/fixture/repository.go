package fixture

import "context"

// Repository exposes fixture read and sync operations.
type Repository interface {
	ListAll(ctx context.Context) ([]Fixture, error)
	ListFinishedByGameweeks(ctx context.Context, gameweeks []int) ([]Fixture, error)
	UpsertFixtures(ctx context.Context, fixtures []Fixture) error
}
