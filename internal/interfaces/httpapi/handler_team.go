package httpapi

import (
	"net/http"
	"strings"
)

func (h *Handler) ListTeamRatings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeamRatings")
	defer span.End()

	teams, err := h.teamService.ListTeamRatings(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list team ratings failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamRatingDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToRatingDTO(ctx, t))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetTeamFdr(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamFdr")
	defer span.End()

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	calculation, err := h.fdrService.GetLatestCalculationByTeam(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "get team fdr failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, calculationToDTO(ctx, calculation))
}
