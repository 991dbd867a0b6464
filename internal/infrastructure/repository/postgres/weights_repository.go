package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/fdr-engine/internal/domain/weights"
	qb "github.com/fplstats/fdr-engine/internal/platform/querybuilder"
)

type WeightsRepository struct {
	db *sqlx.DB
}

func NewWeightsRepository(db *sqlx.DB) *WeightsRepository {
	return &WeightsRepository{db: db}
}

func (r *WeightsRepository) GetActive(ctx context.Context) (weights.Profile, bool, error) {
	query, args, err := qb.Select("*").From("fdr_weight_profiles").
		Where(qb.Expr("active = TRUE")).
		OrderBy("version DESC").
		Limit(1).
		ToSQL()
	if err != nil {
		return weights.Profile{}, false, fmt.Errorf("build get active weight profile query: %w", err)
	}

	var row weightProfileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return weights.Profile{}, false, nil
		}
		return weights.Profile{}, false, fmt.Errorf("get active weight profile: %w", err)
	}

	return weights.Profile{
		ID:                    row.ID,
		Name:                  row.Name,
		Version:               row.Version,
		Active:                row.Active,
		GoalsScored:           row.GoalsScored,
		GoalsConceded:         row.GoalsConceded,
		ExpectedGoals:         row.ExpectedGoals,
		ExpectedGoalsConceded: row.ExpectedGoalsConceded,
		VenueGoals:            row.VenueGoals,
		VenueExpectedGoals:    row.VenueExpectedGoals,
		RecentForm:            row.RecentForm,
		PointsPerGame:         row.PointsPerGame,
		FinishingDelta:        row.FinishingDelta,
		FormWindow:            row.FormWindow,
	}, true, nil
}

type weightProfileTableModel struct {
	ID                    string    `db:"id"`
	Name                  string    `db:"name"`
	Version               int       `db:"version"`
	Active                bool      `db:"active"`
	GoalsScored           float64   `db:"goals_scored"`
	GoalsConceded         float64   `db:"goals_conceded"`
	ExpectedGoals         float64   `db:"expected_goals"`
	ExpectedGoalsConceded float64   `db:"expected_goals_conceded"`
	VenueGoals            float64   `db:"venue_goals"`
	VenueExpectedGoals    float64   `db:"venue_expected_goals"`
	RecentForm            float64   `db:"recent_form"`
	PointsPerGame         float64   `db:"points_per_game"`
	FinishingDelta        float64   `db:"finishing_delta"`
	FormWindow            int       `db:"form_window"`
	CreatedAt             time.Time `db:"created_at"`
	UpdatedAt             time.Time `db:"updated_at"`
}
