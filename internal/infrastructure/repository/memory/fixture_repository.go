package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fplstats/fdr-engine/internal/domain/fixture"
)

type FixtureRepository struct {
	mu       sync.RWMutex
	fixtures map[string]fixture.Fixture
}

func NewFixtureRepository(fixtures []fixture.Fixture) *FixtureRepository {
	byID := make(map[string]fixture.Fixture, len(fixtures))
	for _, item := range fixtures {
		byID[item.ID] = item
	}

	return &FixtureRepository{fixtures: byID}
}

func (r *FixtureRepository) ListAll(_ context.Context) ([]fixture.Fixture, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0, len(r.fixtures))
	for _, item := range r.fixtures {
		out = append(out, item)
	}
	sortFixtures(out)

	return out, nil
}

func (r *FixtureRepository) ListFinishedByGameweeks(_ context.Context, gameweeks []int) ([]fixture.Fixture, error) {
	wanted := make(map[int]struct{}, len(gameweeks))
	for _, gw := range gameweeks {
		wanted[gw] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fixture.Fixture, 0)
	for _, item := range r.fixtures {
		if !fixture.IsFinishedStatus(item.Status) {
			continue
		}
		if _, ok := wanted[item.Gameweek]; ok {
			out = append(out, item)
		}
	}
	sortFixtures(out)

	return out, nil
}

func (r *FixtureRepository) UpsertFixtures(_ context.Context, items []fixture.Fixture) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		fixtureID := strings.TrimSpace(item.ID)
		if fixtureID == "" {
			continue
		}
		item.Status = fixture.NormalizeStatus(item.Status)
		r.fixtures[fixtureID] = item
	}

	return nil
}

func sortFixtures(fixtures []fixture.Fixture) {
	sort.Slice(fixtures, func(i, j int) bool {
		if fixtures[i].Gameweek != fixtures[j].Gameweek {
			return fixtures[i].Gameweek < fixtures[j].Gameweek
		}
		if !fixtures[i].KickoffAt.Equal(fixtures[j].KickoffAt) {
			return fixtures[i].KickoffAt.Before(fixtures[j].KickoffAt)
		}
		return fixtures[i].ID < fixtures[j].ID
	})
}
