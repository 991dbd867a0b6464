package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/fplstats/fdr-engine/internal/domain/player"
)

type PlayerRepository struct {
	mu      sync.RWMutex
	players map[string]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	byID := make(map[string]player.Player, len(players))
	for _, item := range players {
		byID[item.ID] = item
	}

	return &PlayerRepository{players: byID}
}

func (r *PlayerRepository) List(_ context.Context) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0, len(r.players))
	for _, item := range r.players {
		out = append(out, item)
	}
	sortPlayersByRef(out)

	return out, nil
}

func (r *PlayerRepository) ListByTeams(_ context.Context, teamIDs []string) ([]player.Player, error) {
	wanted := make(map[string]struct{}, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = struct{}{}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.Player, 0)
	for _, item := range r.players {
		if _, ok := wanted[item.TeamID]; ok {
			out = append(out, item)
		}
	}
	sortPlayersByRef(out)

	return out, nil
}

func (r *PlayerRepository) UpsertPlayers(_ context.Context, items []player.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		playerID := strings.TrimSpace(item.ID)
		if playerID == "" {
			continue
		}
		r.players[playerID] = item
	}

	return nil
}

func sortPlayersByRef(players []player.Player) {
	sort.Slice(players, func(i, j int) bool {
		return players[i].PlayerRefID < players[j].PlayerRefID
	})
}
