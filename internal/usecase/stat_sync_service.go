package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/fplstats/fdr-engine/internal/domain/fixture"
	"github.com/fplstats/fdr-engine/internal/domain/player"
	"github.com/fplstats/fdr-engine/internal/domain/playerstat"
	"github.com/fplstats/fdr-engine/internal/domain/team"
	"github.com/fplstats/fdr-engine/internal/platform/logging"
)

const (
	SyncTierRecent = "recent"
	SyncTierFull   = "full"

	defaultSyncBatchSize      = 10
	defaultRecentGameweekSpan = 3
	defaultBatchDelayPerItem  = 100 * time.Millisecond
)

// ExternalTeam mirrors one upstream team record.
type ExternalTeam struct {
	RefID int64
	Name  string
	Short string
}

// ExternalPlayer mirrors one upstream roster element.
type ExternalPlayer struct {
	RefID     int64
	TeamRefID int64
	Name      string
	Position  string
	Price     int64
}

// ExternalEvent is an upstream gameweek marker.
type ExternalEvent struct {
	ID        int
	IsCurrent bool
	Finished  bool
}

// ExternalBootstrap bundles the upstream season state: full roster, teams
// and the gameweek markers.
type ExternalBootstrap struct {
	Teams   []ExternalTeam
	Players []ExternalPlayer
	Events  []ExternalEvent
}

// ExternalFixture mirrors one upstream fixture row.
type ExternalFixture struct {
	RefID         int64
	Gameweek      int
	HomeTeamRefID int64
	AwayTeamRefID int64
	KickoffAt     time.Time
	Finished      bool
	HomeScore     *int
	AwayScore     *int
}

// ExternalPlayerGameweek is one row of a player's per-gameweek history.
type ExternalPlayerGameweek struct {
	Gameweek          int
	OpponentTeamRefID int64
	WasHome           bool
	KickoffAt         time.Time

	TotalPoints              int
	Minutes                  int
	GoalsScored              int
	Assists                  int
	CleanSheets              int
	GoalsConceded            int
	OwnGoals                 int
	PenaltiesSaved           int
	PenaltiesMissed          int
	YellowCards              int
	RedCards                 int
	Saves                    int
	Bonus                    int
	BPS                      int
	Influence                float64
	Creativity               float64
	Threat                   float64
	ICTIndex                 float64
	ExpectedGoals            float64
	ExpectedAssists          float64
	ExpectedGoalInvolvements float64
	ExpectedGoalsConceded    float64
	SelectedBy               int
	TransfersIn              int
	TransfersOut             int
}

// StatProvider is the upstream statistics source.
type StatProvider interface {
	FetchBootstrap(ctx context.Context) (ExternalBootstrap, error)
	FetchFixtures(ctx context.Context) ([]ExternalFixture, error)
	FetchPlayerHistory(ctx context.Context, playerRefID int64) ([]ExternalPlayerGameweek, error)
}

// StatSyncConfig carries the tiering and batching tunables.
type StatSyncConfig struct {
	BatchSize          int
	BatchDelayPerItem  time.Duration
	RecentGameweekSpan int
}

type StatSyncResult struct {
	Tier           string   `json:"tier"`
	Gameweek       int      `json:"gameweek"`
	TeamsSynced    int      `json:"teams_synced"`
	RosterSynced   int      `json:"roster_synced"`
	FixturesSynced int      `json:"fixtures_synced"`
	PlayersFetched int      `json:"players_fetched"`
	PlayersFailed  int      `json:"players_failed"`
	RowsUpserted   int      `json:"rows_upserted"`
	RowsDiscarded  int      `json:"rows_discarded"`
	BatchCount     int      `json:"batch_count"`
	Errors         []string `json:"errors"`
	DurationMs     int64    `json:"duration_ms"`
}

// StatSyncService pulls upstream statistics into the local store. The
// recent tier touches only players involved in recently finished fixtures;
// the full tier walks the entire roster.
type StatSyncService struct {
	cfg         StatSyncConfig
	provider    StatProvider
	teamRepo    team.Repository
	playerRepo  player.Repository
	fixtureRepo fixture.Repository
	statRepo    playerstat.Repository
	logger      *logging.Logger
}

func NewStatSyncService(
	cfg StatSyncConfig,
	provider StatProvider,
	teamRepo team.Repository,
	playerRepo player.Repository,
	fixtureRepo fixture.Repository,
	statRepo playerstat.Repository,
	logger *logging.Logger,
) *StatSyncService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultSyncBatchSize
	}
	if cfg.RecentGameweekSpan <= 0 {
		cfg.RecentGameweekSpan = defaultRecentGameweekSpan
	}
	if cfg.BatchDelayPerItem < 0 {
		cfg.BatchDelayPerItem = defaultBatchDelayPerItem
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &StatSyncService{
		cfg:         cfg,
		provider:    provider,
		teamRepo:    teamRepo,
		playerRepo:  playerRepo,
		fixtureRepo: fixtureRepo,
		statRepo:    statRepo,
		logger:      logger,
	}
}

// SyncStats runs one sync cycle for the given tier. Per-player fetch
// failures are counted and reported without affecting sibling players.
func (s *StatSyncService) SyncStats(ctx context.Context, tier string) (StatSyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatSyncService.SyncStats")
	defer span.End()

	tier, err := normalizeSyncTier(tier)
	if err != nil {
		return StatSyncResult{}, err
	}
	if s.provider == nil {
		return StatSyncResult{}, fmt.Errorf("%w: stat provider is not configured", ErrDependencyUnavailable)
	}

	start := time.Now()
	result := StatSyncResult{
		Tier:   tier,
		Errors: []string{},
	}

	bootstrap, err := s.provider.FetchBootstrap(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch bootstrap: %w", err)
	}

	currentGameweek := currentGameweekFromEvents(bootstrap.Events)
	if currentGameweek <= 0 {
		return result, fmt.Errorf("%w: upstream bootstrap carries no current gameweek marker", ErrConfigMissing)
	}
	result.Gameweek = currentGameweek

	teams := mapExternalTeamsToDomain(bootstrap.Teams)
	if len(teams) == 0 {
		return result, fmt.Errorf("%w: upstream bootstrap carries no teams", ErrConfigMissing)
	}
	if err := s.teamRepo.UpsertTeams(ctx, teams); err != nil {
		return result, fmt.Errorf("%w: upsert teams: %v", ErrPersistence, err)
	}
	result.TeamsSynced = len(teams)

	roster := mapExternalPlayersToDomain(bootstrap.Players)
	if len(roster) == 0 {
		return result, fmt.Errorf("%w: upstream bootstrap carries no players", ErrConfigMissing)
	}
	if err := s.playerRepo.UpsertPlayers(ctx, roster); err != nil {
		return result, fmt.Errorf("%w: upsert players: %v", ErrPersistence, err)
	}
	result.RosterSynced = len(roster)

	externalFixtures, err := s.provider.FetchFixtures(ctx)
	if err != nil {
		return result, fmt.Errorf("fetch fixtures: %w", err)
	}
	fixtures := mapExternalFixturesToDomain(externalFixtures)
	if len(fixtures) > 0 {
		if err := s.fixtureRepo.UpsertFixtures(ctx, fixtures); err != nil {
			return result, fmt.Errorf("%w: upsert fixtures: %v", ErrPersistence, err)
		}
	}
	result.FixturesSynced = len(fixtures)

	targets, targetGameweeks, err := s.resolveSyncTargets(ctx, tier, currentGameweek, roster)
	if err != nil {
		return result, err
	}
	if len(targets) == 0 {
		result.DurationMs = time.Since(start).Milliseconds()
		return result, nil
	}

	s.fetchAndStore(ctx, targets, targetGameweeks, currentGameweek, &result)

	result.DurationMs = time.Since(start).Milliseconds()
	s.logger.InfoContext(ctx, "stat sync completed",
		"tier", tier,
		"gameweek", currentGameweek,
		"players_fetched", result.PlayersFetched,
		"players_failed", result.PlayersFailed,
		"rows_upserted", result.RowsUpserted,
		"errors", len(result.Errors),
		"duration_ms", result.DurationMs,
	)

	return result, nil
}

// resolveSyncTargets picks the players and the gameweek scope for a tier.
//
// Recent tier: the deduplicated set of players with a recorded appearance
// in a finished fixture of the trailing gameweek span (current inclusive);
// only rows inside that span are kept. Full tier: the whole roster, every
// gameweek up to current.
func (s *StatSyncService) resolveSyncTargets(
	ctx context.Context,
	tier string,
	currentGameweek int,
	roster []player.Player,
) ([]player.Player, map[int]struct{}, error) {
	if tier == SyncTierFull {
		return sortedPlayers(roster), nil, nil
	}

	span := s.cfg.RecentGameweekSpan
	lowest := currentGameweek - span + 1
	if lowest < 1 {
		lowest = 1
	}
	gameweeks := make([]int, 0, span)
	for gw := lowest; gw <= currentGameweek; gw++ {
		gameweeks = append(gameweeks, gw)
	}

	finished, err := s.fixtureRepo.ListFinishedByGameweeks(ctx, gameweeks)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: list finished fixtures: %v", ErrPersistence, err)
	}

	windowed := make(map[int]struct{}, len(gameweeks))
	participantTeams := make(map[string]struct{})
	for _, item := range finished {
		windowed[item.Gameweek] = struct{}{}
		participantTeams[item.HomeTeamID] = struct{}{}
		participantTeams[item.AwayTeamID] = struct{}{}
	}

	// Participation is an appearance row inside the window, not squad
	// membership; a rostered player without recent minutes is skipped.
	appeared := make(map[string]struct{})
	for teamID := range participantTeams {
		rows, err := s.statRepo.ListByTeamUpToGameweek(ctx, teamID, currentGameweek)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: list stat rows team=%s: %v", ErrPersistence, teamID, err)
		}
		for _, row := range rows {
			if _, ok := windowed[row.Gameweek]; !ok {
				continue
			}
			if row.Minutes <= 0 {
				continue
			}
			appeared[row.PlayerID] = struct{}{}
		}
	}

	targets := make([]player.Player, 0, len(appeared))
	for _, item := range roster {
		if _, ok := appeared[item.ID]; ok {
			targets = append(targets, item)
		}
	}

	return sortedPlayers(targets), windowed, nil
}

// fetchAndStore walks the target players in fixed-size concurrent batches.
// Every batch blocks on a delay proportional to its size before the next
// one starts, to stay polite to the upstream API.
func (s *StatSyncService) fetchAndStore(
	ctx context.Context,
	targets []player.Player,
	targetGameweeks map[int]struct{},
	currentGameweek int,
	result *StatSyncResult,
) {
	pool, err := ants.NewPool(s.cfg.BatchSize)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("create worker pool: %v", err))
		return
	}
	defer pool.Release()

	type fetchOutcome struct {
		player player.Player
		rows   []ExternalPlayerGameweek
		err    error
	}

	var fetched atomic.Int32
	var failed atomic.Int32

	for batchStart := 0; batchStart < len(targets); batchStart += s.cfg.BatchSize {
		batchEnd := batchStart + s.cfg.BatchSize
		if batchEnd > len(targets) {
			batchEnd = len(targets)
		}
		batch := targets[batchStart:batchEnd]
		result.BatchCount++

		outcomes := make(chan fetchOutcome, len(batch))
		var workers sync.WaitGroup
		for _, target := range batch {
			target := target
			workers.Add(1)
			if err := pool.Submit(func() {
				defer workers.Done()

				rows, fetchErr := s.provider.FetchPlayerHistory(ctx, target.PlayerRefID)
				outcomes <- fetchOutcome{player: target, rows: rows, err: fetchErr}
			}); err != nil {
				workers.Done()
				outcomes <- fetchOutcome{player: target, err: fmt.Errorf("submit fetch to worker pool: %w", err)}
			}
		}
		workers.Wait()
		close(outcomes)

		batchRows := make([]playerstat.PlayerGameweekStat, 0, len(batch)*2)
		for outcome := range outcomes {
			if outcome.err != nil {
				failed.Add(1)
				result.Errors = append(result.Errors, fmt.Sprintf("fetch history player=%s: %v", outcome.player.ID, outcome.err))
				continue
			}
			fetched.Add(1)

			for _, row := range outcome.rows {
				if row.Gameweek <= 0 || row.Gameweek > currentGameweek {
					result.RowsDiscarded++
					continue
				}
				if len(targetGameweeks) > 0 {
					if _, ok := targetGameweeks[row.Gameweek]; !ok {
						result.RowsDiscarded++
						continue
					}
				}
				batchRows = append(batchRows, mapExternalGameweekToStat(outcome.player, row))
			}
		}

		s.upsertStatRows(ctx, batchRows, result)

		// Blocking inter-batch delay, scaled to batch size.
		if batchEnd < len(targets) && s.cfg.BatchDelayPerItem > 0 {
			time.Sleep(s.cfg.BatchDelayPerItem * time.Duration(s.cfg.BatchSize))
		}
	}

	result.PlayersFetched = int(fetched.Load())
	result.PlayersFailed = int(failed.Load())
}

// upsertStatRows writes a batch in one call and falls back to row-granular
// retries when the batch write fails, so a single bad row cannot sink its
// siblings.
func (s *StatSyncService) upsertStatRows(ctx context.Context, rows []playerstat.PlayerGameweekStat, result *StatSyncResult) {
	if len(rows) == 0 {
		return
	}

	if err := s.statRepo.UpsertStats(ctx, rows); err == nil {
		result.RowsUpserted += len(rows)
		return
	}

	for _, row := range rows {
		if err := s.statRepo.UpsertStats(ctx, []playerstat.PlayerGameweekStat{row}); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("upsert stat player=%s gameweek=%d: %v", row.PlayerID, row.Gameweek, err))
			continue
		}
		result.RowsUpserted++
	}
}

func normalizeSyncTier(tier string) (string, error) {
	switch tier {
	case "", SyncTierRecent:
		return SyncTierRecent, nil
	case SyncTierFull:
		return SyncTierFull, nil
	default:
		return "", fmt.Errorf("%w: unsupported sync tier %q", ErrInvalidInput, tier)
	}
}

func currentGameweekFromEvents(events []ExternalEvent) int {
	lastFinished := 0
	for _, event := range events {
		if event.IsCurrent {
			return event.ID
		}
		if event.Finished && event.ID > lastFinished {
			lastFinished = event.ID
		}
	}
	return lastFinished
}

func sortedPlayers(players []player.Player) []player.Player {
	out := make([]player.Player, len(players))
	copy(out, players)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlayerRefID < out[j].PlayerRefID
	})
	return out
}

func mapExternalTeamsToDomain(items []ExternalTeam) []team.Team {
	out := make([]team.Team, 0, len(items))
	for _, item := range items {
		if item.RefID <= 0 {
			continue
		}
		out = append(out, team.Team{
			ID:        teamIDFromRef(item.RefID),
			TeamRefID: item.RefID,
			Name:      item.Name,
			Short:     item.Short,
		})
	}
	return out
}

func mapExternalPlayersToDomain(items []ExternalPlayer) []player.Player {
	out := make([]player.Player, 0, len(items))
	for _, item := range items {
		if item.RefID <= 0 || item.TeamRefID <= 0 {
			continue
		}
		out = append(out, player.Player{
			ID:          playerIDFromRef(item.RefID),
			TeamID:      teamIDFromRef(item.TeamRefID),
			Name:        item.Name,
			Position:    player.Position(item.Position),
			Price:       item.Price,
			PlayerRefID: item.RefID,
		})
	}
	return out
}

func mapExternalFixturesToDomain(items []ExternalFixture) []fixture.Fixture {
	out := make([]fixture.Fixture, 0, len(items))
	for _, item := range items {
		if item.RefID <= 0 || item.Gameweek <= 0 {
			continue
		}
		status := fixture.StatusScheduled
		var finishedAt *time.Time
		if item.Finished {
			status = fixture.StatusFinished
			at := item.KickoffAt
			finishedAt = &at
		}
		out = append(out, fixture.Fixture{
			ID:           fixtureIDFromRef(item.RefID),
			Gameweek:     item.Gameweek,
			HomeTeamID:   teamIDFromRef(item.HomeTeamRefID),
			AwayTeamID:   teamIDFromRef(item.AwayTeamRefID),
			FixtureRefID: item.RefID,
			KickoffAt:    item.KickoffAt,
			HomeScore:    item.HomeScore,
			AwayScore:    item.AwayScore,
			Status:       status,
			FinishedAt:   finishedAt,
		})
	}
	return out
}

func mapExternalGameweekToStat(target player.Player, row ExternalPlayerGameweek) playerstat.PlayerGameweekStat {
	return playerstat.PlayerGameweekStat{
		PlayerID:       target.ID,
		PlayerRefID:    target.PlayerRefID,
		TeamID:         target.TeamID,
		Gameweek:       row.Gameweek,
		OpponentTeamID: teamIDFromRef(row.OpponentTeamRefID),
		WasHome:        row.WasHome,
		KickoffAt:      row.KickoffAt,

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
	}
}

func teamIDFromRef(refID int64) string {
	if refID <= 0 {
		return ""
	}
	return fmt.Sprintf("team-%d", refID)
}

func playerIDFromRef(refID int64) string {
	if refID <= 0 {
		return ""
	}
	return fmt.Sprintf("player-%d", refID)
}

func fixtureIDFromRef(refID int64) string {
	if refID <= 0 {
		return ""
	}
	return fmt.Sprintf("fixture-%d", refID)
}
