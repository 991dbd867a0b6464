package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/infrastructure/repository/memory"
	"github.com/fplstats/fdr-engine/internal/usecase"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	teamRepo := memory.NewTeamRepository(memory.SeedTeams())
	fixtureRepo := memory.NewFixtureRepository(nil)
	statRepo := memory.NewPlayerStatRepository()
	weightsRepo := memory.NewWeightsRepository()
	fdrRepo := memory.NewFdrRepository()

	fdrService := usecase.NewFdrService(
		usecase.FdrConfig{Season: "2026/27", FreshnessWindow: time.Hour},
		teamRepo, fixtureRepo, statRepo, weightsRepo, fdrRepo, nil, nil,
	)
	teamService := usecase.NewTeamService(teamRepo)
	statSyncService := usecase.NewStatSyncService(
		usecase.StatSyncConfig{}, nil, teamRepo, memory.NewPlayerRepository(nil), fixtureRepo, statRepo, nil,
	)

	handler := NewHandler(teamService, fdrService, statSyncService, nil)
	return NewRouter(handler, nil, false, []string{"*"}, "job-secret")
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	return body
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_ListTeamRatings(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/teams/ratings", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	items, ok := body["data"].([]any)
	if !ok {
		t.Fatalf("expected data array, got %T", body["data"])
	}
	if len(items) != 20 {
		t.Fatalf("expected 20 teams, got %d", len(items))
	}

	first, _ := items[0].(map[string]any)
	if first["name"] != "Arsenal" {
		t.Fatalf("expected teams sorted by name, first was %v", first["name"])
	}
	if int(first["homeDifficulty"].(float64)) != fdr.NeutralDifficulty {
		t.Fatalf("expected neutral difficulty for unrated team, got %v", first["homeDifficulty"])
	}
}

func TestRouter_GetTeamFdr_NotFound(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/teams/team-99/fdr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_ListFdrCalculations_RequiresGameweek(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/fdr/calculations", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing gameweek, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/fdr/calculations?gameweek=abc", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-integer gameweek, got %d", rec.Code)
	}
}

func TestRouter_GetFdrWeights_DefaultProfile(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/fdr/weights", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := decodeEnvelope(t, rec)
	data, _ := body["data"].(map[string]any)
	if data["name"] != "default" {
		t.Fatalf("expected default profile, got %v", data["name"])
	}
}

func TestRouter_RecalculateJob_RequiresToken(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/recalculate-fdr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestRouter_RecalculateJob_NoFixturesIsFailedPrecondition(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/recalculate-fdr", nil)
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with empty fixture store, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_SyncStatsJob_RejectsUnknownTier(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/sync-stats", strings.NewReader(`{"tier":"hourly"}`))
	req.Header.Set("X-Internal-Job-Token", "job-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown tier, got %d: %s", rec.Code, rec.Body.String())
	}
}
