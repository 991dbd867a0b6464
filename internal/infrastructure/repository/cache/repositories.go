package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/team"
	"github.com/fplstats/fdr-engine/internal/domain/weights"
	basecache "github.com/fplstats/fdr-engine/internal/platform/cache"
)

// TeamRepository caches team reads. Writes pass through and invalidate,
// so a finished recalculation is visible on the next ratings request.
type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := "team:id:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) UpsertTeams(ctx context.Context, teams []team.Team) error {
	if err := r.next.UpsertTeams(ctx, teams); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "team:")
	return nil
}

func (r *TeamRepository) UpdateRating(ctx context.Context, teamID string, homeDifficulty, awayDifficulty int, updatedAt time.Time) error {
	if err := r.next.UpdateRating(ctx, teamID, homeDifficulty, awayDifficulty, updatedAt); err != nil {
		return err
	}
	r.cache.Delete(ctx, "team:list")
	r.cache.Delete(ctx, "team:id:"+teamID)
	return nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

type WeightsRepository struct {
	next  weights.Repository
	cache *basecache.Store
}

func NewWeightsRepository(next weights.Repository, cache *basecache.Store) *WeightsRepository {
	return &WeightsRepository{next: next, cache: cache}
}

func (r *WeightsRepository) GetActive(ctx context.Context) (weights.Profile, bool, error) {
	v, err := r.cache.GetOrLoad(ctx, "weights:active", func(ctx context.Context) (any, error) {
		profile, exists, err := r.next.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		return cachedActiveProfile{value: profile, exists: exists}, nil
	})
	if err != nil {
		return weights.Profile{}, false, err
	}

	cached, _ := v.(cachedActiveProfile)
	return cached.value, cached.exists, nil
}

type cachedActiveProfile struct {
	value  weights.Profile
	exists bool
}

type FdrRepository struct {
	next  fdr.Repository
	cache *basecache.Store
}

func NewFdrRepository(next fdr.Repository, cache *basecache.Store) *FdrRepository {
	return &FdrRepository{next: next, cache: cache}
}

func (r *FdrRepository) Upsert(ctx context.Context, calc fdr.TeamFdrCalculation) error {
	if err := r.next.Upsert(ctx, calc); err != nil {
		return err
	}
	r.cache.DeletePrefix(ctx, "fdr:")
	return nil
}

func (r *FdrRepository) GetLatest(ctx context.Context, season string) (fdr.TeamFdrCalculation, bool, error) {
	key := "fdr:latest:" + season
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetLatest(ctx, season)
		if err != nil {
			return nil, err
		}
		return cachedCalculation{value: item, exists: exists}, nil
	})
	if err != nil {
		return fdr.TeamFdrCalculation{}, false, err
	}

	cached, _ := v.(cachedCalculation)
	return cached.value, cached.exists, nil
}

func (r *FdrRepository) GetLatestByTeam(ctx context.Context, teamID, season string) (fdr.TeamFdrCalculation, bool, error) {
	key := "fdr:latest:team:" + season + ":" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetLatestByTeam(ctx, teamID, season)
		if err != nil {
			return nil, err
		}
		return cachedCalculation{value: item, exists: exists}, nil
	})
	if err != nil {
		return fdr.TeamFdrCalculation{}, false, err
	}

	cached, _ := v.(cachedCalculation)
	return cached.value, cached.exists, nil
}

func (r *FdrRepository) ListByGameweek(ctx context.Context, season string, gameweek int) ([]fdr.TeamFdrCalculation, error) {
	key := "fdr:gameweek:" + season + ":" + strconv.Itoa(gameweek)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListByGameweek(ctx, season, gameweek)
		if err != nil {
			return nil, err
		}
		return append([]fdr.TeamFdrCalculation(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]fdr.TeamFdrCalculation)
	return append([]fdr.TeamFdrCalculation(nil), items...), nil
}

type cachedCalculation struct {
	value  fdr.TeamFdrCalculation
	exists bool
}
