package usecase

import (
	"context"
	"fmt"
	"sort"

	"github.com/fplstats/fdr-engine/internal/domain/team"
)

// TeamService serves the dashboard-facing team reads.
type TeamService struct {
	teamRepo team.Repository
}

func NewTeamService(teamRepo team.Repository) *TeamService {
	return &TeamService{teamRepo: teamRepo}
}

// ListTeamRatings returns every known team with its current rating
// projection. Teams that have never been rated are included with a zeroed
// rating so the dashboard can render the full league.
func (s *TeamService) ListTeamRatings(ctx context.Context) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.ListTeamRatings")
	defer span.End()

	teams, err := s.teamRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	sort.SliceStable(teams, func(i, j int) bool {
		return teams[i].Name < teams[j].Name
	})
	return teams, nil
}

func (s *TeamService) GetTeam(ctx context.Context, teamID string) (team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamService.GetTeam")
	defer span.End()

	if teamID == "" {
		return team.Team{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	item, exists, err := s.teamRepo.GetByID(ctx, teamID)
	if err != nil {
		return team.Team{}, fmt.Errorf("get team id=%s: %w", teamID, err)
	}
	if !exists {
		return team.Team{}, fmt.Errorf("%w: team id=%s", ErrNotFound, teamID)
	}

	return item, nil
}
