package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fplstats/fdr-engine/internal/usecase"
)

func (h *Handler) ListFdrCalculations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFdrCalculations")
	defer span.End()

	rawGameweek := strings.TrimSpace(r.URL.Query().Get("gameweek"))
	if rawGameweek == "" {
		writeError(ctx, w, fmt.Errorf("%w: gameweek query parameter is required", usecase.ErrInvalidInput))
		return
	}
	gameweek, err := strconv.Atoi(rawGameweek)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: gameweek must be an integer: %v", usecase.ErrInvalidInput, err))
		return
	}

	calculations, err := h.fdrService.ListCalculationsByGameweek(ctx, gameweek)
	if err != nil {
		h.logger.WarnContext(ctx, "list fdr calculations failed", "gameweek", gameweek, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]calculationDTO, 0, len(calculations))
	for _, c := range calculations {
		items = append(items, calculationToDTO(ctx, c))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetFdrWeights(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetFdrWeights")
	defer span.End()

	profile, err := h.fdrService.GetActiveWeights(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get active weights failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, weightProfileToDTO(ctx, profile))
}
