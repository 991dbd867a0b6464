package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/fdr-engine/internal/domain/fixture"
	qb "github.com/fplstats/fdr-engine/internal/platform/querybuilder"
)

type FixtureRepository struct {
	db *sqlx.DB
}

func NewFixtureRepository(db *sqlx.DB) *FixtureRepository {
	return &FixtureRepository{db: db}
}

func (r *FixtureRepository) ListAll(ctx context.Context) ([]fixture.Fixture, error) {
	query, args, err := qb.Select("*").From("fixtures").
		OrderBy("gameweek", "kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select fixtures: %w", err)
	}

	return fixtureModelsToDomain(rows), nil
}

func (r *FixtureRepository) ListFinishedByGameweeks(ctx context.Context, gameweeks []int) ([]fixture.Fixture, error) {
	if len(gameweeks) == 0 {
		return nil, nil
	}

	values := make([]any, 0, len(gameweeks))
	for _, gw := range gameweeks {
		values = append(values, gw)
	}

	query, args, err := qb.Select("*").From("fixtures").
		Where(
			qb.In("gameweek", values),
			qb.EqLiteral("status", fixture.StatusFinished),
		).
		OrderBy("gameweek", "kickoff_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select finished fixtures query: %w", err)
	}

	var rows []fixtureTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select finished fixtures: %w", err)
	}

	return fixtureModelsToDomain(rows), nil
}

func (r *FixtureRepository) UpsertFixtures(ctx context.Context, fixtures []fixture.Fixture) error {
	if len(fixtures) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert fixtures: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range fixtures {
		insertModel := fixtureInsertModel{
			ID:           item.ID,
			FixtureRefID: item.FixtureRefID,
			Gameweek:     item.Gameweek,
			HomeTeamID:   item.HomeTeamID,
			AwayTeamID:   item.AwayTeamID,
			KickoffAt:    item.KickoffAt.UTC(),
			HomeScore:    nullableInt(item.HomeScore),
			AwayScore:    nullableInt(item.AwayScore),
			Status:       fixture.NormalizeStatus(item.Status),
			FinishedAt:   nullableTime(item.FinishedAt),
		}
		query, args, err := qb.InsertModel("fixtures", insertModel, `ON CONFLICT (id)
DO UPDATE SET
    fixture_ref_id = EXCLUDED.fixture_ref_id,
    gameweek = EXCLUDED.gameweek,
    home_team_id = EXCLUDED.home_team_id,
    away_team_id = EXCLUDED.away_team_id,
    kickoff_at = EXCLUDED.kickoff_at,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    status = EXCLUDED.status,
    finished_at = EXCLUDED.finished_at,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert fixture query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert fixture id=%s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert fixtures tx: %w", err)
	}
	return nil
}

func fixtureModelsToDomain(rows []fixtureTableModel) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(rows))
	for _, row := range rows {
		out = append(out, fixture.Fixture{
			ID:           row.ID,
			Gameweek:     row.Gameweek,
			HomeTeamID:   row.HomeTeamID,
			AwayTeamID:   row.AwayTeamID,
			FixtureRefID: row.FixtureRefID,
			KickoffAt:    row.KickoffAt.UTC(),
			HomeScore:    nullInt64ToIntPtr(row.HomeScore),
			AwayScore:    nullInt64ToIntPtr(row.AwayScore),
			Status:       row.Status,
			FinishedAt:   nullTimeToTimePtr(row.FinishedAt),
		})
	}
	return out
}
