package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/team"
	"github.com/fplstats/fdr-engine/internal/domain/weights"
	"github.com/fplstats/fdr-engine/internal/usecase"
)

type Handler struct {
	teamService     *usecase.TeamService
	fdrService      *usecase.FdrService
	statSyncService *usecase.StatSyncService
	logger          *slog.Logger
	validator       *validator.Validate
}

func NewHandler(
	teamService *usecase.TeamService,
	fdrService *usecase.FdrService,
	statSyncService *usecase.StatSyncService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		teamService:     teamService,
		fdrService:      fdrService,
		statSyncService: statSyncService,
		logger:          logger,
		validator:       validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type teamRatingDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Short          string `json:"short"`
	HomeDifficulty int    `json:"homeDifficulty"`
	AwayDifficulty int    `json:"awayDifficulty"`
	RatedAt        string `json:"ratedAt,omitempty"`
}

type calculationDTO struct {
	TeamID           string          `json:"teamId"`
	Season           string          `json:"season"`
	Gameweek         int             `json:"gameweek"`
	CalculatedAt     string          `json:"calculatedAt"`
	GamesPlayed      int             `json:"gamesPlayed"`
	RawFactors       rawFactorsDTO   `json:"rawFactors"`
	FactorScores     factorScoresDTO `json:"factorScores"`
	HomeStrength     float64         `json:"homeStrength"`
	AwayStrength     float64         `json:"awayStrength"`
	OverallStrength  float64         `json:"overallStrength"`
	HomeDifficulty   int             `json:"homeDifficulty"`
	AwayDifficulty   int             `json:"awayDifficulty"`
	InsufficientData bool            `json:"insufficientData"`
}

type rawFactorsDTO struct {
	GoalsScoredPer90           float64 `json:"goalsScoredPer90"`
	GoalsConcededPer90         float64 `json:"goalsConcededPer90"`
	ExpectedGoalsPer90         float64 `json:"expectedGoalsPer90"`
	ExpectedGoalsConcededPer90 float64 `json:"expectedGoalsConcededPer90"`
	HomeGoalsPer90             float64 `json:"homeGoalsPer90"`
	AwayGoalsPer90             float64 `json:"awayGoalsPer90"`
	HomeExpectedGoalsPer90     float64 `json:"homeExpectedGoalsPer90"`
	AwayExpectedGoalsPer90     float64 `json:"awayExpectedGoalsPer90"`
	FormGoalsPer90             float64 `json:"formGoalsPer90"`
	PointsPerGame              float64 `json:"pointsPerGame"`
	FinishingDelta             float64 `json:"finishingDelta"`
}

type factorScoresDTO struct {
	GoalsScored           float64 `json:"goalsScored"`
	GoalsConceded         float64 `json:"goalsConceded"`
	ExpectedGoals         float64 `json:"expectedGoals"`
	ExpectedGoalsConceded float64 `json:"expectedGoalsConceded"`
	HomeGoals             float64 `json:"homeGoals"`
	AwayGoals             float64 `json:"awayGoals"`
	HomeExpectedGoals     float64 `json:"homeExpectedGoals"`
	AwayExpectedGoals     float64 `json:"awayExpectedGoals"`
	FormGoals             float64 `json:"formGoals"`
	PointsPerGame         float64 `json:"pointsPerGame"`
	FinishingDelta        float64 `json:"finishingDelta"`
}

type weightProfileDTO struct {
	Name                  string  `json:"name"`
	Version               int     `json:"version"`
	Active                bool    `json:"active"`
	GoalsScored           float64 `json:"goalsScored"`
	GoalsConceded         float64 `json:"goalsConceded"`
	ExpectedGoals         float64 `json:"expectedGoals"`
	ExpectedGoalsConceded float64 `json:"expectedGoalsConceded"`
	VenueGoals            float64 `json:"venueGoals"`
	VenueExpectedGoals    float64 `json:"venueExpectedGoals"`
	RecentForm            float64 `json:"recentForm"`
	PointsPerGame         float64 `json:"pointsPerGame"`
	FinishingDelta        float64 `json:"finishingDelta"`
	FormWindow            int     `json:"formWindow"`
}

func teamToRatingDTO(ctx context.Context, v team.Team) teamRatingDTO {
	ctx, span := startSpan(ctx, "httpapi.teamToRatingDTO")
	defer span.End()

	dto := teamRatingDTO{
		ID:             v.ID,
		Name:           v.Name,
		Short:          v.Short,
		HomeDifficulty: fdr.NeutralDifficulty,
		AwayDifficulty: fdr.NeutralDifficulty,
	}
	if v.HasRating() {
		dto.HomeDifficulty = v.Rating.HomeDifficulty
		dto.AwayDifficulty = v.Rating.AwayDifficulty
		dto.RatedAt = v.Rating.UpdatedAt.UTC().Format(time.RFC3339)
	}
	return dto
}

func calculationToDTO(ctx context.Context, v fdr.TeamFdrCalculation) calculationDTO {
	ctx, span := startSpan(ctx, "httpapi.calculationToDTO")
	defer span.End()

	return calculationDTO{
		TeamID:       v.TeamID,
		Season:       v.Season,
		Gameweek:     v.Gameweek,
		CalculatedAt: v.CalculatedAt.UTC().Format(time.RFC3339),
		GamesPlayed:  v.GamesPlayed,
		RawFactors: rawFactorsDTO{
			GoalsScoredPer90:           v.Raw.GoalsScoredPer90,
			GoalsConcededPer90:         v.Raw.GoalsConcededPer90,
			ExpectedGoalsPer90:         v.Raw.ExpectedGoalsPer90,
			ExpectedGoalsConcededPer90: v.Raw.ExpectedGoalsConcededPer90,
			HomeGoalsPer90:             v.Raw.HomeGoalsPer90,
			AwayGoalsPer90:             v.Raw.AwayGoalsPer90,
			HomeExpectedGoalsPer90:     v.Raw.HomeExpectedGoalsPer90,
			AwayExpectedGoalsPer90:     v.Raw.AwayExpectedGoalsPer90,
			FormGoalsPer90:             v.Raw.FormGoalsPer90,
			PointsPerGame:              v.Raw.PointsPerGame,
			FinishingDelta:             v.Raw.FinishingDelta,
		},
		FactorScores: factorScoresDTO{
			GoalsScored:           v.Scores.GoalsScored,
			GoalsConceded:         v.Scores.GoalsConceded,
			ExpectedGoals:         v.Scores.ExpectedGoals,
			ExpectedGoalsConceded: v.Scores.ExpectedGoalsConceded,
			HomeGoals:             v.Scores.HomeGoals,
			AwayGoals:             v.Scores.AwayGoals,
			HomeExpectedGoals:     v.Scores.HomeExpectedGoals,
			AwayExpectedGoals:     v.Scores.AwayExpectedGoals,
			FormGoals:             v.Scores.FormGoals,
			PointsPerGame:         v.Scores.PointsPerGame,
			FinishingDelta:        v.Scores.FinishingDelta,
		},
		HomeStrength:     v.HomeStrength,
		AwayStrength:     v.AwayStrength,
		OverallStrength:  v.OverallStrength,
		HomeDifficulty:   v.HomeDifficulty,
		AwayDifficulty:   v.AwayDifficulty,
		InsufficientData: v.InsufficientData,
	}
}

func weightProfileToDTO(ctx context.Context, v weights.Profile) weightProfileDTO {
	ctx, span := startSpan(ctx, "httpapi.weightProfileToDTO")
	defer span.End()

	return weightProfileDTO{
		Name:                  v.Name,
		Version:               v.Version,
		Active:                v.Active,
		GoalsScored:           v.GoalsScored,
		GoalsConceded:         v.GoalsConceded,
		ExpectedGoals:         v.ExpectedGoals,
		ExpectedGoalsConceded: v.ExpectedGoalsConceded,
		VenueGoals:            v.VenueGoals,
		VenueExpectedGoals:    v.VenueExpectedGoals,
		RecentForm:            v.RecentForm,
		PointsPerGame:         v.PointsPerGame,
		FinishingDelta:        v.FinishingDelta,
		FormWindow:            v.FormWindow,
	}
}
