package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/fplstats/fdr-engine/internal/usecase"
)

type syncStatsRequest struct {
	Tier string `json:"tier" validate:"omitempty,oneof=recent full"`
}

func (h *Handler) RunRecalculateFdrJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecalculateFdrJob")
	defer span.End()

	if h.fdrService == nil {
		writeError(ctx, w, fmt.Errorf("%w: fdr service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.fdrService.Recalculate(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run recalculate fdr job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) RunSyncStatsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunSyncStatsJob")
	defer span.End()

	if h.statSyncService == nil {
		writeError(ctx, w, fmt.Errorf("%w: stat sync service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	req, err := decodeSyncStatsRequest(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.statSyncService.SyncStats(ctx, req.Tier)
	if err != nil {
		h.logger.WarnContext(ctx, "run sync stats job failed", "tier", req.Tier, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

// decodeSyncStatsRequest tolerates an empty body; the tier then defaults
// downstream to the recent tier.
func decodeSyncStatsRequest(r *http.Request) (syncStatsRequest, error) {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req syncStatsRequest
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return syncStatsRequest{}, nil
		}
		return syncStatsRequest{}, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return req, nil
}
