package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/fdr-engine/internal/domain/team"
	qb "github.com/fplstats/fdr-engine/internal/platform/querybuilder"
)

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	query, args, err := qb.Select("*").From("teams").
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select teams query: %w", err)
	}

	var rows []teamTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select teams: %w", err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, teamModelToDomain(row))
	}

	return out, nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	query, args, err := qb.Select("*").From("teams").
		Where(qb.Eq("id", teamID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return team.Team{}, false, fmt.Errorf("build get team query: %w", err)
	}

	var row teamTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return team.Team{}, false, nil
		}
		return team.Team{}, false, fmt.Errorf("get team id=%s: %w", teamID, err)
	}

	return teamModelToDomain(row), true, nil
}

// UpsertTeams refreshes master data without touching the difficulty
// projection; ratings are owned by the calculation pipeline.
func (r *TeamRepository) UpsertTeams(ctx context.Context, teams []team.Team) error {
	if len(teams) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert teams: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range teams {
		insertModel := teamInsertModel{
			ID:        item.ID,
			TeamRefID: item.TeamRefID,
			Name:      item.Name,
			Short:     item.Short,
		}
		query, args, err := qb.InsertModel("teams", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    team_ref_id = EXCLUDED.team_ref_id,
    name = EXCLUDED.name,
    short = EXCLUDED.short,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert team query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert team id=%s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert teams tx: %w", err)
	}
	return nil
}

func (r *TeamRepository) UpdateRating(ctx context.Context, teamID string, homeDifficulty, awayDifficulty int, updatedAt time.Time) error {
	query, args, err := qb.Update("teams").
		Set("home_difficulty", homeDifficulty).
		Set("away_difficulty", awayDifficulty).
		Set("rating_updated_at", updatedAt.UTC()).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", teamID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update team rating query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update team rating id=%s: %w", teamID, err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return fmt.Errorf("update team rating id=%s: team not found", teamID)
	}

	return nil
}

func teamModelToDomain(row teamTableModel) team.Team {
	out := team.Team{
		ID:        row.ID,
		TeamRefID: row.TeamRefID,
		Name:      row.Name,
		Short:     row.Short,
	}
	if row.RatingUpdatedAt.Valid {
		out.Rating = team.Rating{
			HomeDifficulty: int(nullInt64ToInt64(row.HomeDifficulty)),
			AwayDifficulty: int(nullInt64ToInt64(row.AwayDifficulty)),
			UpdatedAt:      nullTimeToTimePtr(row.RatingUpdatedAt),
		}
	}
	return out
}
