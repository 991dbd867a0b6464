package cache

import (
	"context"
	"testing"
	"time"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/team"
	"github.com/fplstats/fdr-engine/internal/infrastructure/repository/memory"
	basecache "github.com/fplstats/fdr-engine/internal/platform/cache"
)

func TestTeamRepository_CachesListUntilRatingWrite(t *testing.T) {
	ctx := context.Background()
	next := memory.NewTeamRepository([]team.Team{
		{ID: "team-1", TeamRefID: 1, Name: "Arsenal", Short: "ARS"},
	})
	repo := NewTeamRepository(next, basecache.NewStore(time.Minute))

	first, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if len(first) != 1 || first[0].HasRating() {
		t.Fatalf("unexpected initial teams: %+v", first)
	}

	// A direct write to the inner repo stays invisible while cached.
	if err := next.UpdateRating(ctx, "team-1", 3, 4, time.Now()); err != nil {
		t.Fatalf("update rating on inner repo: %v", err)
	}
	cached, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if cached[0].HasRating() {
		t.Fatalf("expected cached list without rating, got %+v", cached[0].Rating)
	}

	// Writing through the decorator invalidates.
	if err := repo.UpdateRating(ctx, "team-1", 2, 5, time.Now()); err != nil {
		t.Fatalf("update rating: %v", err)
	}
	fresh, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list teams: %v", err)
	}
	if !fresh[0].HasRating() || fresh[0].Rating.HomeDifficulty != 2 || fresh[0].Rating.AwayDifficulty != 5 {
		t.Fatalf("expected refreshed rating, got %+v", fresh[0].Rating)
	}
}

func TestFdrRepository_UpsertInvalidatesGameweekList(t *testing.T) {
	ctx := context.Background()
	next := memory.NewFdrRepository()
	repo := NewFdrRepository(next, basecache.NewStore(time.Minute))

	empty, err := repo.ListByGameweek(ctx, "2026/27", 5)
	if err != nil {
		t.Fatalf("list by gameweek: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty list, got %d", len(empty))
	}

	calc := fdr.NeutralCalculation("team-1", "2026/27", 5, time.Now())
	if err := repo.Upsert(ctx, calc); err != nil {
		t.Fatalf("upsert calculation: %v", err)
	}

	after, err := repo.ListByGameweek(ctx, "2026/27", 5)
	if err != nil {
		t.Fatalf("list by gameweek: %v", err)
	}
	if len(after) != 1 || after[0].TeamID != "team-1" {
		t.Fatalf("expected upserted calculation to be visible, got %+v", after)
	}
}
