package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	qb "github.com/fplstats/fdr-engine/internal/platform/querybuilder"
)

type FdrRepository struct {
	db *sqlx.DB
}

func NewFdrRepository(db *sqlx.DB) *FdrRepository {
	return &FdrRepository{db: db}
}

func (r *FdrRepository) Upsert(ctx context.Context, calc fdr.TeamFdrCalculation) error {
	insertModel := fdrCalculationToModel(calc)
	query, args, err := qb.InsertModel("team_fdr_calculations", insertModel, `ON CONFLICT (team_id, season, gameweek)
DO UPDATE SET
    calculated_at = EXCLUDED.calculated_at,
    games_played = EXCLUDED.games_played,
    raw_goals_scored_per90 = EXCLUDED.raw_goals_scored_per90,
    raw_goals_conceded_per90 = EXCLUDED.raw_goals_conceded_per90,
    raw_expected_goals_per90 = EXCLUDED.raw_expected_goals_per90,
    raw_expected_goals_conceded_per90 = EXCLUDED.raw_expected_goals_conceded_per90,
    raw_home_goals_per90 = EXCLUDED.raw_home_goals_per90,
    raw_away_goals_per90 = EXCLUDED.raw_away_goals_per90,
    raw_home_expected_goals_per90 = EXCLUDED.raw_home_expected_goals_per90,
    raw_away_expected_goals_per90 = EXCLUDED.raw_away_expected_goals_per90,
    raw_form_goals_per90 = EXCLUDED.raw_form_goals_per90,
    raw_points_per_game = EXCLUDED.raw_points_per_game,
    raw_finishing_delta = EXCLUDED.raw_finishing_delta,
    score_goals_scored = EXCLUDED.score_goals_scored,
    score_goals_conceded = EXCLUDED.score_goals_conceded,
    score_expected_goals = EXCLUDED.score_expected_goals,
    score_expected_goals_conceded = EXCLUDED.score_expected_goals_conceded,
    score_home_goals = EXCLUDED.score_home_goals,
    score_away_goals = EXCLUDED.score_away_goals,
    score_home_expected_goals = EXCLUDED.score_home_expected_goals,
    score_away_expected_goals = EXCLUDED.score_away_expected_goals,
    score_form_goals = EXCLUDED.score_form_goals,
    score_points_per_game = EXCLUDED.score_points_per_game,
    score_finishing_delta = EXCLUDED.score_finishing_delta,
    home_strength = EXCLUDED.home_strength,
    away_strength = EXCLUDED.away_strength,
    overall_strength = EXCLUDED.overall_strength,
    home_difficulty = EXCLUDED.home_difficulty,
    away_difficulty = EXCLUDED.away_difficulty,
    insufficient_data = EXCLUDED.insufficient_data`)
	if err != nil {
		return fmt.Errorf("build upsert fdr calculation query: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert fdr calculation team=%s gameweek=%d: %w", calc.TeamID, calc.Gameweek, err)
	}
	return nil
}

func (r *FdrRepository) GetLatest(ctx context.Context, season string) (fdr.TeamFdrCalculation, bool, error) {
	query, args, err := qb.Select("*").From("team_fdr_calculations").
		Where(qb.Eq("season", season)).
		OrderBy("gameweek DESC", "calculated_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return fdr.TeamFdrCalculation{}, false, fmt.Errorf("build get latest fdr calculation query: %w", err)
	}

	var row fdrCalculationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fdr.TeamFdrCalculation{}, false, nil
		}
		return fdr.TeamFdrCalculation{}, false, fmt.Errorf("get latest fdr calculation season=%s: %w", season, err)
	}

	return fdrModelToDomain(row), true, nil
}

func (r *FdrRepository) GetLatestByTeam(ctx context.Context, teamID, season string) (fdr.TeamFdrCalculation, bool, error) {
	query, args, err := qb.Select("*").From("team_fdr_calculations").
		Where(
			qb.Eq("team_id", teamID),
			qb.Eq("season", season),
		).
		OrderBy("gameweek DESC", "calculated_at DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return fdr.TeamFdrCalculation{}, false, fmt.Errorf("build get latest team fdr calculation query: %w", err)
	}

	var row fdrCalculationTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return fdr.TeamFdrCalculation{}, false, nil
		}
		return fdr.TeamFdrCalculation{}, false, fmt.Errorf("get latest fdr calculation team=%s season=%s: %w", teamID, season, err)
	}

	return fdrModelToDomain(row), true, nil
}

func (r *FdrRepository) ListByGameweek(ctx context.Context, season string, gameweek int) ([]fdr.TeamFdrCalculation, error) {
	query, args, err := qb.Select("*").From("team_fdr_calculations").
		Where(
			qb.Eq("season", season),
			qb.Eq("gameweek", gameweek),
		).
		OrderBy("team_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list fdr calculations query: %w", err)
	}

	var rows []fdrCalculationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list fdr calculations season=%s gameweek=%d: %w", season, gameweek, err)
	}

	out := make([]fdr.TeamFdrCalculation, 0, len(rows))
	for _, row := range rows {
		out = append(out, fdrModelToDomain(row))
	}
	return out, nil
}
