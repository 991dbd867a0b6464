package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
	qb "github.com/fplstats/fdr-engine/internal/platform/querybuilder"
)

type PlayerStatRepository struct {
	db *sqlx.DB
}

func NewPlayerStatRepository(db *sqlx.DB) *PlayerStatRepository {
	return &PlayerStatRepository{db: db}
}

func (r *PlayerStatRepository) UpsertStats(ctx context.Context, rows []playerstat.PlayerGameweekStat) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx upsert player stats: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, item := range rows {
		insertModel := statDomainToModel(item)
		query, args, err := qb.InsertModel("player_gameweek_stats", insertModel, `ON CONFLICT (player_id, gameweek)
DO UPDATE SET
    player_ref_id = EXCLUDED.player_ref_id,
    team_id = EXCLUDED.team_id,
    opponent_team_id = EXCLUDED.opponent_team_id,
    was_home = EXCLUDED.was_home,
    kickoff_at = EXCLUDED.kickoff_at,
    total_points = EXCLUDED.total_points,
    minutes = EXCLUDED.minutes,
    goals_scored = EXCLUDED.goals_scored,
    assists = EXCLUDED.assists,
    clean_sheets = EXCLUDED.clean_sheets,
    goals_conceded = EXCLUDED.goals_conceded,
    own_goals = EXCLUDED.own_goals,
    penalties_saved = EXCLUDED.penalties_saved,
    penalties_missed = EXCLUDED.penalties_missed,
    yellow_cards = EXCLUDED.yellow_cards,
    red_cards = EXCLUDED.red_cards,
    saves = EXCLUDED.saves,
    bonus = EXCLUDED.bonus,
    bps = EXCLUDED.bps,
    influence = EXCLUDED.influence,
    creativity = EXCLUDED.creativity,
    threat = EXCLUDED.threat,
    ict_index = EXCLUDED.ict_index,
    expected_goals = EXCLUDED.expected_goals,
    expected_assists = EXCLUDED.expected_assists,
    expected_goal_involvements = EXCLUDED.expected_goal_involvements,
    expected_goals_conceded = EXCLUDED.expected_goals_conceded,
    selected_by = EXCLUDED.selected_by,
    transfers_in = EXCLUDED.transfers_in,
    transfers_out = EXCLUDED.transfers_out`)
		if err != nil {
			return fmt.Errorf("build upsert player stat query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert player stat player=%s gameweek=%d: %w", item.PlayerID, item.Gameweek, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert player stats tx: %w", err)
	}
	return nil
}

func (r *PlayerStatRepository) ListUpToGameweek(ctx context.Context, maxGameweek int) ([]playerstat.PlayerGameweekStat, error) {
	query, args, err := qb.Select("*").From("player_gameweek_stats").
		Where(qb.Expr("gameweek <= ?", maxGameweek)).
		OrderBy("player_id", "gameweek").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player stats query: %w", err)
	}

	var rows []playerStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player stats: %w", err)
	}

	return statModelsToDomain(rows), nil
}

func (r *PlayerStatRepository) ListByTeamUpToGameweek(ctx context.Context, teamID string, maxGameweek int) ([]playerstat.PlayerGameweekStat, error) {
	query, args, err := qb.Select("*").From("player_gameweek_stats").
		Where(
			qb.Eq("team_id", teamID),
			qb.Expr("gameweek <= ?", maxGameweek),
		).
		OrderBy("player_id", "gameweek").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select player stats by team query: %w", err)
	}

	var rows []playerStatTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select player stats by team: %w", err)
	}

	return statModelsToDomain(rows), nil
}

func statDomainToModel(item playerstat.PlayerGameweekStat) playerStatTableModel {
	return playerStatTableModel{
		PlayerID:       item.PlayerID,
		PlayerRefID:    item.PlayerRefID,
		TeamID:         item.TeamID,
		Gameweek:       item.Gameweek,
		OpponentTeamID: item.OpponentTeamID,
		WasHome:        item.WasHome,
		KickoffAt:      item.KickoffAt.UTC(),

		TotalPoints:              item.TotalPoints,
		Minutes:                  item.Minutes,
		GoalsScored:              item.GoalsScored,
		Assists:                  item.Assists,
		CleanSheets:              item.CleanSheets,
		GoalsConceded:            item.GoalsConceded,
		OwnGoals:                 item.OwnGoals,
		PenaltiesSaved:           item.PenaltiesSaved,
		PenaltiesMissed:          item.PenaltiesMissed,
		YellowCards:              item.YellowCards,
		RedCards:                 item.RedCards,
		Saves:                    item.Saves,
		Bonus:                    item.Bonus,
		BPS:                      item.BPS,
		Influence:                item.Influence,
		Creativity:               item.Creativity,
		Threat:                   item.Threat,
		ICTIndex:                 item.ICTIndex,
		ExpectedGoals:            item.ExpectedGoals,
		ExpectedAssists:          item.ExpectedAssists,
		ExpectedGoalInvolvements: item.ExpectedGoalInvolvements,
		ExpectedGoalsConceded:    item.ExpectedGoalsConceded,
		SelectedBy:               item.SelectedBy,
		TransfersIn:              item.TransfersIn,
		TransfersOut:             item.TransfersOut,
	}
}

func statModelsToDomain(rows []playerStatTableModel) []playerstat.PlayerGameweekStat {
	out := make([]playerstat.PlayerGameweekStat, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerstat.PlayerGameweekStat{
			PlayerID:       row.PlayerID,
			PlayerRefID:    row.PlayerRefID,
			TeamID:         row.TeamID,
			Gameweek:       row.Gameweek,
			OpponentTeamID: row.OpponentTeamID,
			WasHome:        row.WasHome,
			KickoffAt:      row.KickoffAt.UTC(),

			TotalPoints:              row.TotalPoints,
			Minutes:                  row.Minutes,
			GoalsScored:              row.GoalsScored,
			Assists:                  row.Assists,
			CleanSheets:              row.CleanSheets,
			GoalsConceded:            row.GoalsConceded,
			OwnGoals:                 row.OwnGoals,
			PenaltiesSaved:           row.PenaltiesSaved,
			PenaltiesMissed:          row.PenaltiesMissed,
			YellowCards:              row.YellowCards,
			RedCards:                 row.RedCards,
			Saves:                    row.Saves,
			Bonus:                    row.Bonus,
			BPS:                      row.BPS,
			Influence:                row.Influence,
			Creativity:               row.Creativity,
			Threat:                   row.Threat,
			ICTIndex:                 row.ICTIndex,
			ExpectedGoals:            row.ExpectedGoals,
			ExpectedAssists:          row.ExpectedAssists,
			ExpectedGoalInvolvements: row.ExpectedGoalInvolvements,
			ExpectedGoalsConceded:    row.ExpectedGoalsConceded,
			SelectedBy:               row.SelectedBy,
			TransfersIn:              row.TransfersIn,
			TransfersOut:             row.TransfersOut,
		})
	}
	return out
}
