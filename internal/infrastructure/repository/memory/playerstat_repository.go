package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
)

type PlayerStatRepository struct {
	mu   sync.RWMutex
	rows map[string]playerstat.PlayerGameweekStat
}

func NewPlayerStatRepository() *PlayerStatRepository {
	return &PlayerStatRepository{rows: make(map[string]playerstat.PlayerGameweekStat)}
}

func (r *PlayerStatRepository) UpsertStats(_ context.Context, rows []playerstat.PlayerGameweekStat) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range rows {
		if item.PlayerID == "" || item.Gameweek <= 0 {
			continue
		}
		r.rows[statRowKey(item.PlayerID, item.Gameweek)] = item
	}

	return nil
}

func (r *PlayerStatRepository) ListUpToGameweek(_ context.Context, maxGameweek int) ([]playerstat.PlayerGameweekStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstat.PlayerGameweekStat, 0, len(r.rows))
	for _, item := range r.rows {
		if item.Gameweek <= maxGameweek {
			out = append(out, item)
		}
	}
	sortStatRows(out)

	return out, nil
}

func (r *PlayerStatRepository) ListByTeamUpToGameweek(_ context.Context, teamID string, maxGameweek int) ([]playerstat.PlayerGameweekStat, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]playerstat.PlayerGameweekStat, 0)
	for _, item := range r.rows {
		if item.TeamID == teamID && item.Gameweek <= maxGameweek {
			out = append(out, item)
		}
	}
	sortStatRows(out)

	return out, nil
}

func statRowKey(playerID string, gameweek int) string {
	return fmt.Sprintf("%s|%d", playerID, gameweek)
}

func sortStatRows(rows []playerstat.PlayerGameweekStat) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PlayerID != rows[j].PlayerID {
			return rows[i].PlayerID < rows[j].PlayerID
		}
		return rows[i].Gameweek < rows[j].Gameweek
	})
}
