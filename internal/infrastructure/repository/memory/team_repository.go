package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fplstats/fdr-engine/internal/domain/team"
)

type TeamRepository struct {
	mu    sync.RWMutex
	teams map[string]team.Team
}

func NewTeamRepository(teams []team.Team) *TeamRepository {
	byID := make(map[string]team.Team, len(teams))
	for _, item := range teams {
		byID[item.ID] = item
	}

	return &TeamRepository{teams: byID}
}

func (r *TeamRepository) List(_ context.Context) ([]team.Team, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]team.Team, 0, len(r.teams))
	for _, item := range r.teams {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.teams[teamID]
	return item, ok, nil
}

func (r *TeamRepository) UpsertTeams(_ context.Context, items []team.Team) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		teamID := strings.TrimSpace(item.ID)
		if teamID == "" {
			continue
		}
		// Master-data sync must not clobber the rating projection.
		if existing, ok := r.teams[teamID]; ok {
			item.Rating = existing.Rating
		}
		r.teams[teamID] = item
	}

	return nil
}

func (r *TeamRepository) UpdateRating(_ context.Context, teamID string, homeDifficulty, awayDifficulty int, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.teams[teamID]
	if !ok {
		return nil
	}

	at := updatedAt.UTC()
	item.Rating = team.Rating{
		HomeDifficulty: homeDifficulty,
		AwayDifficulty: awayDifficulty,
		UpdatedAt:      &at,
	}
	r.teams[teamID] = item

	return nil
}
