package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/fixture"
	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
	"github.com/fplstats/fdr-engine/internal/domain/team"
	"github.com/fplstats/fdr-engine/internal/domain/weights"
	"github.com/fplstats/fdr-engine/internal/platform/logging"
)

const (
	RecalculationStatusSkipped   = "skipped"
	RecalculationStatusCompleted = "completed"

	defaultRecorderWorkers = 4
	sampleRatingLimit      = 5
)

// FdrConfig carries the tunables of the recalculation pipeline.
type FdrConfig struct {
	Season          string
	FreshnessWindow time.Duration
	RecorderWorkers int
}

// RatingRefreshSummary is the payload handed to the refresh notifier after
// a completed run.
type RatingRefreshSummary struct {
	Season       string `json:"season"`
	Gameweek     int    `json:"gameweek"`
	TeamsUpdated int    `json:"teams_updated"`
	ErrorCount   int    `json:"error_count"`
	DurationMs   int64  `json:"duration_ms"`
}

// RatingRefreshNotifier pushes a completed-run summary to an external
// consumer. Delivery is best effort; failures never fail the run.
type RatingRefreshNotifier interface {
	NotifyRatingsRefreshed(ctx context.Context, summary RatingRefreshSummary) error
}

type RecalculationResult struct {
	Status              string             `json:"status"`
	Season              string             `json:"season"`
	Gameweek            int                `json:"gameweek"`
	Reason              string             `json:"reason,omitempty"`
	FreshForMinutes     int                `json:"fresh_for_minutes,omitempty"`
	TeamCount           int                `json:"team_count"`
	CalculationsWritten int                `json:"calculations_written"`
	NeutralBackfills    int                `json:"neutral_backfills"`
	TeamsUpdated        int                `json:"teams_updated"`
	SampleRatings       []TeamRatingSample `json:"sample_ratings,omitempty"`
	Errors              []string           `json:"errors"`
	DurationMs          int64              `json:"duration_ms"`
}

type TeamRatingSample struct {
	TeamID         string `json:"team_id"`
	HomeDifficulty int    `json:"home_difficulty"`
	AwayDifficulty int    `json:"away_difficulty"`
}

// FdrService runs the gate-guarded recalculation pipeline and serves the
// calculation reads.
type FdrService struct {
	cfg         FdrConfig
	teamRepo    team.Repository
	fixtureRepo fixture.Repository
	statRepo    playerstat.Repository
	weightsRepo weights.Repository
	fdrRepo     fdr.Repository
	notifier    RatingRefreshNotifier
	logger      *logging.Logger
}

func NewFdrService(
	cfg FdrConfig,
	teamRepo team.Repository,
	fixtureRepo fixture.Repository,
	statRepo playerstat.Repository,
	weightsRepo weights.Repository,
	fdrRepo fdr.Repository,
	notifier RatingRefreshNotifier,
	logger *logging.Logger,
) *FdrService {
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = DefaultFreshnessWindow
	}
	if cfg.RecorderWorkers <= 0 {
		cfg.RecorderWorkers = defaultRecorderWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &FdrService{
		cfg:         cfg,
		teamRepo:    teamRepo,
		fixtureRepo: fixtureRepo,
		statRepo:    statRepo,
		weightsRepo: weightsRepo,
		fdrRepo:     fdrRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Recalculate runs one staleness-gated difficulty cycle. A FRESH verdict
// short-circuits with no writes. Per-team persistence failures are counted
// and reported; they never abort the rest of the run.
func (s *FdrService) Recalculate(ctx context.Context) (RecalculationResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FdrService.Recalculate")
	defer span.End()

	start := time.Now()
	now := start.UTC()
	result := RecalculationResult{
		Season: s.cfg.Season,
		Errors: []string{},
	}

	fixtures, err := s.fixtureRepo.ListAll(ctx)
	if err != nil {
		return result, fmt.Errorf("list fixtures: %w", err)
	}
	if len(fixtures) == 0 {
		return result, fmt.Errorf("%w: no fixtures available to resolve the current gameweek", ErrConfigMissing)
	}
	currentGameweek := resolveCurrentGameweek(fixtures, now)
	result.Gameweek = currentGameweek

	last, err := s.lastCalculationMeta(ctx)
	if err != nil {
		return result, err
	}

	decision := EvaluateStaleness(last, currentGameweek, now, s.cfg.FreshnessWindow)
	if !decision.Stale {
		result.Status = RecalculationStatusSkipped
		result.Reason = decision.Reason
		result.FreshForMinutes = decision.MinutesSinceLast
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}
	result.Reason = decision.Reason

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return result, fmt.Errorf("list teams: %w", err)
	}
	if len(teams) == 0 {
		return result, fmt.Errorf("%w: no teams available for rating", ErrConfigMissing)
	}
	result.TeamCount = len(teams)

	rows, err := s.statRepo.ListUpToGameweek(ctx, currentGameweek)
	if err != nil {
		return result, fmt.Errorf("list stat rows: %w", err)
	}

	profile := s.resolveWeightProfile(ctx, &result)

	snapshots := make([]TeamFactorSnapshot, 0, len(teams))
	for _, item := range teams {
		snapshots = append(snapshots, BuildTeamFactorSnapshot(item.ID, currentGameweek, rows, profile.FormWindow))
	}

	scores := ScoreTeamFactors(snapshots, profile)

	recorded := s.recordCalculations(ctx, scores, currentGameweek, now, &result)
	s.backfillMissingTeams(ctx, teams, scores, recorded, currentGameweek, now, &result)

	// Ratings are projected only after every audit row attempt finished.
	s.projectRatings(ctx, scores, recorded, now, &result)

	result.Status = RecalculationStatusCompleted
	result.SampleRatings = sampleRatings(scores)
	result.DurationMs = time.Since(start).Milliseconds()

	if s.notifier != nil {
		summary := RatingRefreshSummary{
			Season:       s.cfg.Season,
			Gameweek:     currentGameweek,
			TeamsUpdated: result.TeamsUpdated,
			ErrorCount:   len(result.Errors),
			DurationMs:   result.DurationMs,
		}
		if err := s.notifier.NotifyRatingsRefreshed(ctx, summary); err != nil {
			s.logger.WarnContext(ctx, "rating refresh notification failed", "error", err)
		}
	}

	s.logger.InfoContext(ctx, "fdr recalculation completed",
		"gameweek", currentGameweek,
		"teams_updated", result.TeamsUpdated,
		"calculations_written", result.CalculationsWritten,
		"errors", len(result.Errors),
		"duration_ms", result.DurationMs,
	)

	return result, nil
}

// GetLatestCalculationByTeam serves the audit detail view for one team.
func (s *FdrService) GetLatestCalculationByTeam(ctx context.Context, teamID string) (fdr.TeamFdrCalculation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FdrService.GetLatestCalculationByTeam")
	defer span.End()

	if teamID == "" {
		return fdr.TeamFdrCalculation{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	if _, exists, err := s.teamRepo.GetByID(ctx, teamID); err != nil {
		return fdr.TeamFdrCalculation{}, fmt.Errorf("get team id=%s: %w", teamID, err)
	} else if !exists {
		return fdr.TeamFdrCalculation{}, fmt.Errorf("%w: team id=%s", ErrNotFound, teamID)
	}

	calc, exists, err := s.fdrRepo.GetLatestByTeam(ctx, teamID, s.cfg.Season)
	if err != nil {
		return fdr.TeamFdrCalculation{}, fmt.Errorf("get latest calculation team=%s: %w", teamID, err)
	}
	if !exists {
		return fdr.TeamFdrCalculation{}, fmt.Errorf("%w: no calculation recorded for team id=%s", ErrNotFound, teamID)
	}

	return calc, nil
}

// ListCalculationsByGameweek serves the audit rows of one recorded gameweek.
func (s *FdrService) ListCalculationsByGameweek(ctx context.Context, gameweek int) ([]fdr.TeamFdrCalculation, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FdrService.ListCalculationsByGameweek")
	defer span.End()

	if gameweek <= 0 {
		return nil, fmt.Errorf("%w: gameweek must be greater than zero", ErrInvalidInput)
	}

	calcs, err := s.fdrRepo.ListByGameweek(ctx, s.cfg.Season, gameweek)
	if err != nil {
		return nil, fmt.Errorf("list calculations gameweek=%d: %w", gameweek, err)
	}

	sort.SliceStable(calcs, func(i, j int) bool {
		return calcs[i].TeamID < calcs[j].TeamID
	})
	return calcs, nil
}

// GetActiveWeights returns the stored active profile or the documented
// default when none is stored.
func (s *FdrService) GetActiveWeights(ctx context.Context) (weights.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.FdrService.GetActiveWeights")
	defer span.End()

	profile, exists, err := s.weightsRepo.GetActive(ctx)
	if err != nil {
		return weights.Profile{}, fmt.Errorf("get active weight profile: %w", err)
	}
	if !exists {
		return weights.DefaultProfile(), nil
	}

	return profile, nil
}

func (s *FdrService) lastCalculationMeta(ctx context.Context) (*LastCalculationMeta, error) {
	calc, exists, err := s.fdrRepo.GetLatest(ctx, s.cfg.Season)
	if err != nil {
		return nil, fmt.Errorf("get latest calculation: %w", err)
	}
	if !exists {
		return nil, nil
	}

	return &LastCalculationMeta{
		Gameweek:     calc.Gameweek,
		CalculatedAt: calc.CalculatedAt,
	}, nil
}

// resolveWeightProfile degrades to the default profile when no active row
// exists or the lookup fails. Weight lookup problems never abort a run.
func (s *FdrService) resolveWeightProfile(ctx context.Context, result *RecalculationResult) weights.Profile {
	profile, exists, err := s.weightsRepo.GetActive(ctx)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("get active weight profile: %v", err))
		return weights.DefaultProfile()
	}
	if !exists {
		return weights.DefaultProfile()
	}
	if err := profile.Validate(); err != nil || profile.TotalWeight() == 0 {
		result.Errors = append(result.Errors, fmt.Sprintf("active weight profile %q unusable, using default", profile.Name))
		return weights.DefaultProfile()
	}

	return profile
}

// recordCalculations upserts one audit row per scored team with bounded
// concurrency. Returns the set of team ids whose row was persisted.
func (s *FdrService) recordCalculations(
	ctx context.Context,
	scores []TeamScore,
	gameweek int,
	now time.Time,
	result *RecalculationResult,
) map[string]struct{} {
	recorded := make(map[string]struct{}, len(scores))
	var mu sync.Mutex

	workers := pool.New().WithMaxGoroutines(s.cfg.RecorderWorkers)
	for _, score := range scores {
		score := score
		workers.Go(func() {
			calc := calculationFromScore(score, s.cfg.Season, gameweek, now)
			err := s.fdrRepo.Upsert(ctx, calc)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("upsert calculation team=%s: %v", score.TeamID, err))
				return
			}
			recorded[score.TeamID] = struct{}{}
			result.CalculationsWritten++
		})
	}
	workers.Wait()

	return recorded
}

// backfillMissingTeams guarantees one audit row per known team per run.
// A team whose computed upsert failed gets one retry with the computed row,
// so the audit trail and the projected rating cannot diverge; only teams the
// scoring pass never covered fall back to the neutral default.
func (s *FdrService) backfillMissingTeams(
	ctx context.Context,
	teams []team.Team,
	scores []TeamScore,
	recorded map[string]struct{},
	gameweek int,
	now time.Time,
	result *RecalculationResult,
) {
	scored := make(map[string]TeamScore, len(scores))
	for _, score := range scores {
		scored[score.TeamID] = score
	}

	for _, item := range teams {
		if _, ok := recorded[item.ID]; ok {
			continue
		}

		calc := fdr.NeutralCalculation(item.ID, s.cfg.Season, gameweek, now)
		neutral := true
		if score, ok := scored[item.ID]; ok {
			calc = calculationFromScore(score, s.cfg.Season, gameweek, now)
			neutral = false
		}
		if err := s.fdrRepo.Upsert(ctx, calc); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("backfill calculation team=%s: %v", item.ID, err))
			continue
		}
		recorded[item.ID] = struct{}{}
		result.CalculationsWritten++
		if neutral {
			result.NeutralBackfills++
		}
	}
}

func (s *FdrService) projectRatings(
	ctx context.Context,
	scores []TeamScore,
	recorded map[string]struct{},
	now time.Time,
	result *RecalculationResult,
) {
	for _, score := range scores {
		if _, ok := recorded[score.TeamID]; !ok {
			// No audit row landed for this team; keep its old rating.
			continue
		}
		if err := s.teamRepo.UpdateRating(ctx, score.TeamID, score.HomeDifficulty, score.AwayDifficulty, now); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("update rating team=%s: %v", score.TeamID, err))
			continue
		}
		result.TeamsUpdated++
	}
}

func calculationFromScore(score TeamScore, season string, gameweek int, now time.Time) fdr.TeamFdrCalculation {
	return fdr.TeamFdrCalculation{
		TeamID:           score.TeamID,
		Season:           season,
		Gameweek:         gameweek,
		CalculatedAt:     now,
		GamesPlayed:      score.GamesPlayed,
		Raw:              score.Raw,
		Scores:           score.Scores,
		HomeStrength:     score.HomeStrength,
		AwayStrength:     score.AwayStrength,
		OverallStrength:  score.OverallStrength,
		HomeDifficulty:   score.HomeDifficulty,
		AwayDifficulty:   score.AwayDifficulty,
		InsufficientData: score.InsufficientData,
	}
}

func sampleRatings(scores []TeamScore) []TeamRatingSample {
	limit := sampleRatingLimit
	if len(scores) < limit {
		limit = len(scores)
	}

	out := make([]TeamRatingSample, 0, limit)
	for _, score := range scores[:limit] {
		out = append(out, TeamRatingSample{
			TeamID:         score.TeamID,
			HomeDifficulty: score.HomeDifficulty,
			AwayDifficulty: score.AwayDifficulty,
		})
	}
	return out
}

// resolveCurrentGameweek derives the active gameweek from the fixture list:
// the lowest live gameweek wins, then the lowest not-yet-finished one, then
// the last gameweek the schedule knows about.
func resolveCurrentGameweek(fixtures []fixture.Fixture, now time.Time) int {
	if len(fixtures) == 0 {
		return 1
	}

	liveMin := 0
	upcomingMin := 0
	lastKnown := 0

	for _, item := range fixtures {
		if item.Gameweek <= 0 {
			continue
		}
		if item.Gameweek > lastKnown {
			lastKnown = item.Gameweek
		}

		status := fixture.NormalizeStatus(item.Status)
		if fixture.IsLiveStatus(status) {
			if liveMin == 0 || item.Gameweek < liveMin {
				liveMin = item.Gameweek
			}
			continue
		}
		if fixture.IsFinishedStatus(status) || fixture.IsCancelledLikeStatus(status) {
			continue
		}

		// Scheduled, or past kickoff without a final status; either way the
		// gameweek is still open.
		if upcomingMin == 0 || item.Gameweek < upcomingMin {
			upcomingMin = item.Gameweek
		}
	}

	if liveMin > 0 {
		return liveMin
	}
	if upcomingMin > 0 {
		return upcomingMin
	}
	if lastKnown > 0 {
		return lastKnown
	}

	return 1
}
