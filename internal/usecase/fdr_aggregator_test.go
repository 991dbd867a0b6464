package usecase

import (
	"math"
	"testing"

	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
)

func TestBuildTeamFactorSnapshot_Per90SumsRowsBeforeDividing(t *testing.T) {
	t.Parallel()

	rows := []playerstat.PlayerGameweekStat{
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 2},
		{PlayerID: "player-2", TeamID: "team-1", Gameweek: 1, Minutes: 0, GoalsScored: 0},
	}

	snapshot := BuildTeamFactorSnapshot("team-1", 1, rows, 5)

	if snapshot.GamesPlayed != 1 {
		t.Fatalf("expected 1 played gameweek, got %d", snapshot.GamesPlayed)
	}
	if got := snapshot.Raw.GoalsScoredPer90; math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("expected goals per 90 = 2.0, got %f", got)
	}
}

func TestBuildTeamFactorSnapshot_GamesPlayedCountsDistinctPlayedGameweeks(t *testing.T) {
	t.Parallel()

	rows := []playerstat.PlayerGameweekStat{
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90},
		{PlayerID: "player-2", TeamID: "team-1", Gameweek: 1, Minutes: 45},
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 2, Minutes: 0},
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 3, Minutes: 30},
	}

	snapshot := BuildTeamFactorSnapshot("team-1", 10, rows, 5)

	if snapshot.GamesPlayed != 2 {
		t.Fatalf("expected 2 played gameweeks, got %d", snapshot.GamesPlayed)
	}
}

func TestBuildTeamFactorSnapshot_IgnoresOtherTeamsAndFutureGameweeks(t *testing.T) {
	t.Parallel()

	rows := []playerstat.PlayerGameweekStat{
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 1},
		{PlayerID: "player-9", TeamID: "team-2", Gameweek: 1, Minutes: 90, GoalsScored: 4},
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 8, Minutes: 90, GoalsScored: 4},
	}

	snapshot := BuildTeamFactorSnapshot("team-1", 5, rows, 5)

	if snapshot.GamesPlayed != 1 {
		t.Fatalf("expected 1 played gameweek, got %d", snapshot.GamesPlayed)
	}
	if got := snapshot.Raw.GoalsScoredPer90; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected goals per 90 = 1.0, got %f", got)
	}
}

func TestBuildTeamFactorSnapshot_SplitsHomeAndAwayRates(t *testing.T) {
	t.Parallel()

	rows := []playerstat.PlayerGameweekStat{
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 3, WasHome: true},
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 2, Minutes: 90, GoalsScored: 1, WasHome: false},
	}

	snapshot := BuildTeamFactorSnapshot("team-1", 2, rows, 5)

	if got := snapshot.Raw.HomeGoalsPer90; math.Abs(got-3.0) > 1e-9 {
		t.Fatalf("expected home goals per 90 = 3.0, got %f", got)
	}
	if got := snapshot.Raw.AwayGoalsPer90; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected away goals per 90 = 1.0, got %f", got)
	}
}

func TestBuildTeamFactorSnapshot_FormWindowKeepsLatestGameweeks(t *testing.T) {
	t.Parallel()

	rows := []playerstat.PlayerGameweekStat{
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 5},
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 2, Minutes: 90, GoalsScored: 1},
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 3, Minutes: 90, GoalsScored: 1},
	}

	snapshot := BuildTeamFactorSnapshot("team-1", 3, rows, 2)

	// Only gameweeks 2 and 3 feed the form rate.
	if got := snapshot.Raw.FormGoalsPer90; math.Abs(got-1.0) > 1e-9 {
		t.Fatalf("expected form goals per 90 = 1.0, got %f", got)
	}
}

func TestBuildTeamFactorSnapshot_FinishingDeltaIsSigned(t *testing.T) {
	t.Parallel()

	rows := []playerstat.PlayerGameweekStat{
		{PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 1, ExpectedGoals: 2.5},
	}

	snapshot := BuildTeamFactorSnapshot("team-1", 1, rows, 5)

	if got := snapshot.Raw.FinishingDelta; math.Abs(got-(-1.5)) > 1e-9 {
		t.Fatalf("expected finishing delta = -1.5, got %f", got)
	}
}

func TestBuildTeamFactorSnapshot_NoRowsYieldsEmptySnapshot(t *testing.T) {
	t.Parallel()

	snapshot := BuildTeamFactorSnapshot("team-1", 5, nil, 5)

	if snapshot.HasSample() {
		t.Fatalf("expected no sample, got games_played=%d", snapshot.GamesPlayed)
	}
	if snapshot.Raw != (TeamFactorSnapshot{TeamID: "team-1"}).Raw {
		t.Fatalf("expected zero raw factors, got %+v", snapshot.Raw)
	}
}
