package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
)

type FdrRepository struct {
	mu   sync.RWMutex
	rows map[string]fdr.TeamFdrCalculation
}

func NewFdrRepository() *FdrRepository {
	return &FdrRepository{rows: make(map[string]fdr.TeamFdrCalculation)}
}

func (r *FdrRepository) Upsert(_ context.Context, calc fdr.TeamFdrCalculation) error {
	if err := calc.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.rows[calcKey(calc.TeamID, calc.Season, calc.Gameweek)] = calc
	return nil
}

func (r *FdrRepository) GetLatest(_ context.Context, season string) (fdr.TeamFdrCalculation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest fdr.TeamFdrCalculation
	found := false
	for _, item := range r.rows {
		if item.Season != season {
			continue
		}
		if !found || isNewerCalculation(item, latest) {
			latest = item
			found = true
		}
	}

	return latest, found, nil
}

func (r *FdrRepository) GetLatestByTeam(_ context.Context, teamID, season string) (fdr.TeamFdrCalculation, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest fdr.TeamFdrCalculation
	found := false
	for _, item := range r.rows {
		if item.TeamID != teamID || item.Season != season {
			continue
		}
		if !found || isNewerCalculation(item, latest) {
			latest = item
			found = true
		}
	}

	return latest, found, nil
}

func (r *FdrRepository) ListByGameweek(_ context.Context, season string, gameweek int) ([]fdr.TeamFdrCalculation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]fdr.TeamFdrCalculation, 0)
	for _, item := range r.rows {
		if item.Season == season && item.Gameweek == gameweek {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })

	return out, nil
}

func calcKey(teamID, season string, gameweek int) string {
	return fmt.Sprintf("%s|%s|%d", teamID, season, gameweek)
}

func isNewerCalculation(candidate, current fdr.TeamFdrCalculation) bool {
	if candidate.Gameweek != current.Gameweek {
		return candidate.Gameweek > current.Gameweek
	}
	return candidate.CalculatedAt.After(current.CalculatedAt)
}
