package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/fdr-engine/internal/domain/player"
	qb "github.com/fplstats/fdr-engine/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) List(ctx context.Context) ([]player.Player, error) {
	query, args, err := qb.Select("*").From("players").
		OrderBy("player_ref_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players: %w", err)
	}

	return playerModelsToDomain(rows), nil
}

func (r *PlayerRepository) ListByTeams(ctx context.Context, teamIDs []string) ([]player.Player, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(teamIDs))
	for _, id := range teamIDs {
		values = append(values, id)
	}

	query, args, err := qb.Select("*").From("players").
		Where(qb.In("team_id", values)).
		OrderBy("player_ref_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by teams query: %w", err)
	}

	var rows []playerTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by teams: %w", err)
	}

	return playerModelsToDomain(rows), nil
}

func (r *PlayerRepository) UpsertPlayers(ctx context.Context, players []player.Player) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert players: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range players {
		insertModel := playerInsertModel{
			ID:          item.ID,
			TeamID:      item.TeamID,
			Name:        item.Name,
			Position:    string(item.Position),
			Price:       item.Price,
			PlayerRefID: item.PlayerRefID,
		}
		query, args, err := qb.InsertModel("players", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    team_id = EXCLUDED.team_id,
    name = EXCLUDED.name,
    position = EXCLUDED.position,
    price = EXCLUDED.price,
    player_ref_id = EXCLUDED.player_ref_id,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert player query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player id=%s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert players tx: %w", err)
	}
	return nil
}

func playerModelsToDomain(rows []playerTableModel) []player.Player {
	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, player.Player{
			ID:          row.ID,
			TeamID:      row.TeamID,
			Name:        row.Name,
			Position:    player.Position(row.Position),
			Price:       row.Price,
			PlayerRefID: row.PlayerRefID,
		})
	}
	return out
}
