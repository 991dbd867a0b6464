package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/fixture"
	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
	"github.com/fplstats/fdr-engine/internal/domain/team"
	"github.com/fplstats/fdr-engine/internal/domain/weights"
)

type stubTeamRepository struct {
	mu      sync.Mutex
	teams   []team.Team
	ratings map[string]team.Rating

	updateRatingErr map[string]error
}

func (s *stubTeamRepository) List(_ context.Context) ([]team.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]team.Team, len(s.teams))
	copy(out, s.teams)
	for i := range out {
		if rating, ok := s.ratings[out[i].ID]; ok {
			out[i].Rating = rating
		}
	}
	return out, nil
}

func (s *stubTeamRepository) GetByID(_ context.Context, teamID string) (team.Team, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.teams {
		if item.ID == teamID {
			if rating, ok := s.ratings[item.ID]; ok {
				item.Rating = rating
			}
			return item, true, nil
		}
	}
	return team.Team{}, false, nil
}

func (s *stubTeamRepository) UpsertTeams(_ context.Context, teams []team.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, incoming := range teams {
		replaced := false
		for i, existing := range s.teams {
			if existing.ID == incoming.ID {
				s.teams[i] = incoming
				replaced = true
				break
			}
		}
		if !replaced {
			s.teams = append(s.teams, incoming)
		}
	}
	return nil
}

func (s *stubTeamRepository) UpdateRating(_ context.Context, teamID string, home, away int, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.updateRatingErr[teamID]; ok {
		return err
	}
	if s.ratings == nil {
		s.ratings = make(map[string]team.Rating)
	}
	at := updatedAt
	s.ratings[teamID] = team.Rating{HomeDifficulty: home, AwayDifficulty: away, UpdatedAt: &at}
	return nil
}

type stubFixtureRepository struct {
	mu       sync.Mutex
	fixtures []fixture.Fixture
}

func (s *stubFixtureRepository) ListAll(_ context.Context) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]fixture.Fixture, len(s.fixtures))
	copy(out, s.fixtures)
	return out, nil
}

func (s *stubFixtureRepository) ListFinishedByGameweeks(_ context.Context, gameweeks []int) ([]fixture.Fixture, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	allowed := make(map[int]struct{}, len(gameweeks))
	for _, gw := range gameweeks {
		allowed[gw] = struct{}{}
	}

	out := make([]fixture.Fixture, 0, len(s.fixtures))
	for _, item := range s.fixtures {
		if _, ok := allowed[item.Gameweek]; !ok {
			continue
		}
		if !fixture.IsFinishedStatus(item.Status) {
			continue
		}
		out = append(out, item)
	}
	return out, nil
}

func (s *stubFixtureRepository) UpsertFixtures(_ context.Context, fixtures []fixture.Fixture) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, incoming := range fixtures {
		replaced := false
		for i, existing := range s.fixtures {
			if existing.ID == incoming.ID {
				s.fixtures[i] = incoming
				replaced = true
				break
			}
		}
		if !replaced {
			s.fixtures = append(s.fixtures, incoming)
		}
	}
	return nil
}

type stubStatRepository struct {
	mu   sync.Mutex
	rows map[string]playerstat.PlayerGameweekStat

	upsertErrForPlayer map[string]error
	upsertCalls        int
}

func statKey(playerID string, gameweek int) string {
	return fmt.Sprintf("%s|%d", playerID, gameweek)
}

func (s *stubStatRepository) UpsertStats(_ context.Context, rows []playerstat.PlayerGameweekStat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.upsertCalls++
	for _, row := range rows {
		if err, ok := s.upsertErrForPlayer[row.PlayerID]; ok {
			return err
		}
	}
	if s.rows == nil {
		s.rows = make(map[string]playerstat.PlayerGameweekStat)
	}
	for _, row := range rows {
		s.rows[statKey(row.PlayerID, row.Gameweek)] = row
	}
	return nil
}

func (s *stubStatRepository) ListUpToGameweek(_ context.Context, maxGameweek int) ([]playerstat.PlayerGameweekStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]playerstat.PlayerGameweekStat, 0, len(s.rows))
	for _, row := range s.rows {
		if row.Gameweek <= maxGameweek {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubStatRepository) ListByTeamUpToGameweek(_ context.Context, teamID string, maxGameweek int) ([]playerstat.PlayerGameweekStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]playerstat.PlayerGameweekStat, 0, len(s.rows))
	for _, row := range s.rows {
		if row.TeamID == teamID && row.Gameweek <= maxGameweek {
			out = append(out, row)
		}
	}
	return out, nil
}

type stubWeightsRepository struct {
	profile weights.Profile
	exists  bool
	err     error
}

func (s *stubWeightsRepository) GetActive(_ context.Context) (weights.Profile, bool, error) {
	return s.profile, s.exists, s.err
}

type stubFdrRepository struct {
	mu   sync.Mutex
	rows map[string]fdr.TeamFdrCalculation

	upsertErrForTeam     map[string]error
	upsertOnceErrForTeam map[string]error
}

func calcKey(teamID, season string, gameweek int) string {
	return fmt.Sprintf("%s|%s|%d", teamID, season, gameweek)
}

func (s *stubFdrRepository) Upsert(_ context.Context, calc fdr.TeamFdrCalculation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.upsertErrForTeam[calc.TeamID]; ok {
		return err
	}
	if err, ok := s.upsertOnceErrForTeam[calc.TeamID]; ok {
		delete(s.upsertOnceErrForTeam, calc.TeamID)
		return err
	}
	if s.rows == nil {
		s.rows = make(map[string]fdr.TeamFdrCalculation)
	}
	s.rows[calcKey(calc.TeamID, calc.Season, calc.Gameweek)] = calc
	return nil
}

func (s *stubFdrRepository) GetLatest(_ context.Context, season string) (fdr.TeamFdrCalculation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest fdr.TeamFdrCalculation
	found := false
	for _, row := range s.rows {
		if row.Season != season {
			continue
		}
		if !found || row.CalculatedAt.After(latest.CalculatedAt) {
			latest = row
			found = true
		}
	}
	return latest, found, nil
}

func (s *stubFdrRepository) GetLatestByTeam(_ context.Context, teamID, season string) (fdr.TeamFdrCalculation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var latest fdr.TeamFdrCalculation
	found := false
	for _, row := range s.rows {
		if row.TeamID != teamID || row.Season != season {
			continue
		}
		if !found || row.Gameweek > latest.Gameweek {
			latest = row
			found = true
		}
	}
	return latest, found, nil
}

func (s *stubFdrRepository) ListByGameweek(_ context.Context, season string, gameweek int) ([]fdr.TeamFdrCalculation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]fdr.TeamFdrCalculation, 0, len(s.rows))
	for _, row := range s.rows {
		if row.Season == season && row.Gameweek == gameweek {
			out = append(out, row)
		}
	}
	return out, nil
}

func (s *stubFdrRepository) countRows() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type stubNotifier struct {
	mu        sync.Mutex
	summaries []RatingRefreshSummary
	err       error
}

func (s *stubNotifier) NotifyRatingsRefreshed(_ context.Context, summary RatingRefreshSummary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.summaries = append(s.summaries, summary)
	return s.err
}

func fdrTestFixtures() []fixture.Fixture {
	kickoff := time.Date(2026, 2, 1, 15, 0, 0, 0, time.UTC)
	return []fixture.Fixture{
		{ID: "fixture-1", Gameweek: 1, HomeTeamID: "team-1", AwayTeamID: "team-2", KickoffAt: kickoff, Status: fixture.StatusFinished},
		{ID: "fixture-2", Gameweek: 2, HomeTeamID: "team-2", AwayTeamID: "team-1", KickoffAt: kickoff.AddDate(0, 0, 7), Status: fixture.StatusScheduled},
	}
}

func newFdrTestService(
	teamRepo *stubTeamRepository,
	fixtureRepo *stubFixtureRepository,
	statRepo *stubStatRepository,
	weightsRepo *stubWeightsRepository,
	fdrRepo *stubFdrRepository,
	notifier RatingRefreshNotifier,
) *FdrService {
	return NewFdrService(
		FdrConfig{Season: "2026/27", FreshnessWindow: time.Hour, RecorderWorkers: 2},
		teamRepo, fixtureRepo, statRepo, weightsRepo, fdrRepo, notifier, nil,
	)
}

func TestFdrService_Recalculate_WritesRowForEveryTeam(t *testing.T) {
	t.Parallel()

	teamRepo := &stubTeamRepository{teams: []team.Team{
		{ID: "team-1", TeamRefID: 1, Name: "Arsenal"},
		{ID: "team-2", TeamRefID: 2, Name: "Burnley"},
		{ID: "team-3", TeamRefID: 3, Name: "Chelsea"},
	}}
	fixtureRepo := &stubFixtureRepository{fixtures: fdrTestFixtures()}
	statRepo := &stubStatRepository{rows: map[string]playerstat.PlayerGameweekStat{
		statKey("player-1", 1): {PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 2, TotalPoints: 12},
		statKey("player-2", 1): {PlayerID: "player-2", TeamID: "team-2", Gameweek: 1, Minutes: 90, GoalsConceded: 2, TotalPoints: 1},
	}}
	fdrRepo := &stubFdrRepository{}
	notifier := &stubNotifier{}

	service := newFdrTestService(teamRepo, fixtureRepo, statRepo, &stubWeightsRepository{}, fdrRepo, notifier)

	result, err := service.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}

	if result.Status != RecalculationStatusCompleted {
		t.Fatalf("expected completed run, got status=%s reason=%s", result.Status, result.Reason)
	}
	if result.CalculationsWritten != 3 {
		t.Fatalf("expected one audit row per team, got %d", result.CalculationsWritten)
	}
	if fdrRepo.countRows() != 3 {
		t.Fatalf("expected 3 persisted rows, got %d", fdrRepo.countRows())
	}
	if result.TeamsUpdated != 3 {
		t.Fatalf("expected 3 projected ratings, got %d", result.TeamsUpdated)
	}
	if len(result.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", result.Errors)
	}
	if len(notifier.summaries) != 1 {
		t.Fatalf("expected one refresh notification, got %d", len(notifier.summaries))
	}

	// team-3 never played; its audit row must be the neutral default.
	calc, exists, err := fdrRepo.GetLatestByTeam(context.Background(), "team-3", "2026/27")
	if err != nil || !exists {
		t.Fatalf("expected neutral row for team-3: exists=%t err=%v", exists, err)
	}
	if !calc.InsufficientData || calc.HomeDifficulty != fdr.NeutralDifficulty {
		t.Fatalf("unexpected neutral row: %+v", calc)
	}
}

func TestFdrService_Recalculate_SkipsWhenFresh(t *testing.T) {
	t.Parallel()

	teamRepo := &stubTeamRepository{teams: []team.Team{{ID: "team-1", TeamRefID: 1, Name: "Arsenal"}}}
	fixtureRepo := &stubFixtureRepository{fixtures: fdrTestFixtures()}
	fdrRepo := &stubFdrRepository{rows: map[string]fdr.TeamFdrCalculation{
		calcKey("team-1", "2026/27", 2): {
			TeamID:       "team-1",
			Season:       "2026/27",
			Gameweek:     2,
			CalculatedAt: time.Now().UTC().Add(-10 * time.Minute),
		},
	}}

	service := newFdrTestService(teamRepo, fixtureRepo, &stubStatRepository{}, &stubWeightsRepository{}, fdrRepo, nil)

	result, err := service.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}

	if result.Status != RecalculationStatusSkipped {
		t.Fatalf("expected skipped run, got status=%s", result.Status)
	}
	if result.Reason != FreshReason {
		t.Fatalf("unexpected skip reason: %s", result.Reason)
	}
	if fdrRepo.countRows() != 1 {
		t.Fatalf("fresh run must not write, got %d rows", fdrRepo.countRows())
	}
}

func TestFdrService_Recalculate_SecondRunShortCircuits(t *testing.T) {
	t.Parallel()

	teamRepo := &stubTeamRepository{teams: []team.Team{{ID: "team-1", TeamRefID: 1, Name: "Arsenal"}}}
	fixtureRepo := &stubFixtureRepository{fixtures: fdrTestFixtures()}
	fdrRepo := &stubFdrRepository{}

	service := newFdrTestService(teamRepo, fixtureRepo, &stubStatRepository{}, &stubWeightsRepository{}, fdrRepo, nil)

	first, err := service.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("first Recalculate error: %v", err)
	}
	if first.Status != RecalculationStatusCompleted {
		t.Fatalf("expected first run to complete, got %s", first.Status)
	}

	second, err := service.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("second Recalculate error: %v", err)
	}
	if second.Status != RecalculationStatusSkipped {
		t.Fatalf("expected second run to skip, got %s", second.Status)
	}
}

func TestFdrService_Recalculate_NoFixturesAborts(t *testing.T) {
	t.Parallel()

	service := newFdrTestService(
		&stubTeamRepository{teams: []team.Team{{ID: "team-1", TeamRefID: 1, Name: "Arsenal"}}},
		&stubFixtureRepository{},
		&stubStatRepository{},
		&stubWeightsRepository{},
		&stubFdrRepository{},
		nil,
	)

	_, err := service.Recalculate(context.Background())
	if !errors.Is(err, ErrConfigMissing) {
		t.Fatalf("expected ErrConfigMissing, got %v", err)
	}
}

func TestFdrService_Recalculate_PerTeamUpsertFailureIsCounted(t *testing.T) {
	t.Parallel()

	teamRepo := &stubTeamRepository{teams: []team.Team{
		{ID: "team-1", TeamRefID: 1, Name: "Arsenal"},
		{ID: "team-2", TeamRefID: 2, Name: "Burnley"},
	}}
	fixtureRepo := &stubFixtureRepository{fixtures: fdrTestFixtures()}
	statRepo := &stubStatRepository{rows: map[string]playerstat.PlayerGameweekStat{
		statKey("player-1", 1): {PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 1},
		statKey("player-2", 1): {PlayerID: "player-2", TeamID: "team-2", Gameweek: 1, Minutes: 90},
	}}
	fdrRepo := &stubFdrRepository{upsertErrForTeam: map[string]error{
		"team-2": errors.New("connection reset"),
	}}

	service := newFdrTestService(teamRepo, fixtureRepo, statRepo, &stubWeightsRepository{}, fdrRepo, nil)

	result, err := service.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}

	if result.Status != RecalculationStatusCompleted {
		t.Fatalf("per-team failure must not abort the run, got status=%s", result.Status)
	}
	if result.CalculationsWritten != 1 {
		t.Fatalf("expected 1 written row, got %d", result.CalculationsWritten)
	}
	if len(result.Errors) == 0 {
		t.Fatalf("expected the failed team to be reported")
	}
	// The failed team keeps its previous rating.
	if result.TeamsUpdated != 1 {
		t.Fatalf("expected 1 projected rating, got %d", result.TeamsUpdated)
	}
}

func TestFdrService_Recalculate_TransientAuditFailureKeepsRowAndRatingAligned(t *testing.T) {
	t.Parallel()

	teamRepo := &stubTeamRepository{teams: []team.Team{
		{ID: "team-1", TeamRefID: 1, Name: "Arsenal"},
		{ID: "team-2", TeamRefID: 2, Name: "Burnley"},
	}}
	fixtureRepo := &stubFixtureRepository{fixtures: fdrTestFixtures()}
	statRepo := &stubStatRepository{rows: map[string]playerstat.PlayerGameweekStat{
		statKey("player-1", 1): {PlayerID: "player-1", TeamID: "team-1", Gameweek: 1, Minutes: 90, GoalsScored: 2, TotalPoints: 12},
		statKey("player-2", 1): {PlayerID: "player-2", TeamID: "team-2", Gameweek: 1, Minutes: 90, GoalsConceded: 2, TotalPoints: 1},
	}}
	fdrRepo := &stubFdrRepository{upsertOnceErrForTeam: map[string]error{
		"team-1": errors.New("connection reset"),
	}}

	service := newFdrTestService(teamRepo, fixtureRepo, statRepo, &stubWeightsRepository{}, fdrRepo, nil)

	result, err := service.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("Recalculate error: %v", err)
	}

	if result.Status != RecalculationStatusCompleted {
		t.Fatalf("expected completed run, got status=%s", result.Status)
	}
	if result.CalculationsWritten != 2 {
		t.Fatalf("expected both rows to land after the retry, got %d", result.CalculationsWritten)
	}
	if result.NeutralBackfills != 0 {
		t.Fatalf("a scored team must not be backfilled with the neutral row, got %d", result.NeutralBackfills)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected the first failure to be reported once, got %v", result.Errors)
	}

	// The retried audit row must carry the computed values and agree with
	// the projected rating.
	calc, exists, err := fdrRepo.GetLatestByTeam(context.Background(), "team-1", "2026/27")
	if err != nil || !exists {
		t.Fatalf("expected audit row for team-1: exists=%t err=%v", exists, err)
	}
	if calc.InsufficientData {
		t.Fatalf("expected computed row, got neutral backfill: %+v", calc)
	}
	rated, exists, err := teamRepo.GetByID(context.Background(), "team-1")
	if err != nil || !exists {
		t.Fatalf("expected team-1: exists=%t err=%v", exists, err)
	}
	if !rated.HasRating() {
		t.Fatalf("expected projected rating for team-1")
	}
	if rated.Rating.HomeDifficulty != calc.HomeDifficulty || rated.Rating.AwayDifficulty != calc.AwayDifficulty {
		t.Fatalf("rating %d/%d disagrees with audit row %d/%d",
			rated.Rating.HomeDifficulty, rated.Rating.AwayDifficulty, calc.HomeDifficulty, calc.AwayDifficulty)
	}
}

func TestFdrService_Recalculate_DegradesToDefaultWeights(t *testing.T) {
	t.Parallel()

	teamRepo := &stubTeamRepository{teams: []team.Team{{ID: "team-1", TeamRefID: 1, Name: "Arsenal"}}}
	fixtureRepo := &stubFixtureRepository{fixtures: fdrTestFixtures()}
	weightsRepo := &stubWeightsRepository{err: errors.New("relation does not exist")}

	service := newFdrTestService(teamRepo, fixtureRepo, &stubStatRepository{}, weightsRepo, &stubFdrRepository{}, nil)

	result, err := service.Recalculate(context.Background())
	if err != nil {
		t.Fatalf("weight lookup failure must not abort the run: %v", err)
	}
	if result.Status != RecalculationStatusCompleted {
		t.Fatalf("expected completed run, got %s", result.Status)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected the weight failure to be reported, got %v", result.Errors)
	}
}

func TestFdrService_GetActiveWeights_FallsBackToDefault(t *testing.T) {
	t.Parallel()

	service := newFdrTestService(
		&stubTeamRepository{},
		&stubFixtureRepository{},
		&stubStatRepository{},
		&stubWeightsRepository{exists: false},
		&stubFdrRepository{},
		nil,
	)

	profile, err := service.GetActiveWeights(context.Background())
	if err != nil {
		t.Fatalf("GetActiveWeights error: %v", err)
	}
	if profile.Name != "default" {
		t.Fatalf("expected default profile, got %q", profile.Name)
	}
}

func TestResolveCurrentGameweek(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		fixtures []fixture.Fixture
		want     int
	}{
		{
			name: "live gameweek wins",
			fixtures: []fixture.Fixture{
				{Gameweek: 3, Status: fixture.StatusLive},
				{Gameweek: 4, Status: fixture.StatusScheduled, KickoffAt: now.AddDate(0, 0, 3)},
			},
			want: 3,
		},
		{
			name: "lowest upcoming when nothing live",
			fixtures: []fixture.Fixture{
				{Gameweek: 2, Status: fixture.StatusFinished},
				{Gameweek: 3, Status: fixture.StatusScheduled, KickoffAt: now.AddDate(0, 0, 2)},
				{Gameweek: 4, Status: fixture.StatusScheduled, KickoffAt: now.AddDate(0, 0, 9)},
			},
			want: 3,
		},
		{
			name: "season over falls back to last known",
			fixtures: []fixture.Fixture{
				{Gameweek: 37, Status: fixture.StatusFinished},
				{Gameweek: 38, Status: fixture.StatusFinished},
			},
			want: 38,
		},
		{
			name:     "no fixtures defaults to one",
			fixtures: nil,
			want:     1,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := resolveCurrentGameweek(tc.fixtures, now); got != tc.want {
				t.Fatalf("resolveCurrentGameweek: got=%d want=%d", got, tc.want)
			}
		})
	}
}
