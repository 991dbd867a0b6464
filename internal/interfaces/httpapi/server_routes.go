package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/teams/ratings", handler.ListTeamRatings)
	mux.HandleFunc("GET /v1/teams/{teamID}/fdr", handler.GetTeamFdr)
	mux.HandleFunc("GET /v1/fdr/calculations", handler.ListFdrCalculations)
	mux.HandleFunc("GET /v1/fdr/weights", handler.GetFdrWeights)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/recalculate-fdr", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecalculateFdrJob)))
	mux.Handle("POST /v1/internal/jobs/sync-stats", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunSyncStatsJob)))
}
