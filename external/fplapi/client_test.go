package fplapi

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/fplstats/fdr-engine/internal/usecase"
)

func newTestClient(t *testing.T, handler http.Handler, maxRetries int) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		BaseURL:    server.URL,
		MaxRetries: maxRetries,
	})
	return client, server
}

func TestClient_FetchBootstrap(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap-static/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"events": [
				{"id": 22, "is_current": false, "finished": true},
				{"id": 23, "is_current": true, "finished": false}
			],
			"teams": [
				{"id": 1, "name": "Arsenal", "short_name": "ARS"},
				{"id": 2, "name": "Burnley", "short_name": "BUR"}
			],
			"elements": [
				{"id": 101, "team": 1, "web_name": "Saka", "element_type": 3, "now_cost": 102},
				{"id": 102, "team": 2, "web_name": "Trafford", "element_type": 1, "now_cost": 45}
			]
		}`))
	})

	client, _ := newTestClient(t, mux, 0)

	bootstrap, err := client.FetchBootstrap(context.Background())
	if err != nil {
		t.Fatalf("FetchBootstrap error: %v", err)
	}

	if len(bootstrap.Teams) != 2 || bootstrap.Teams[0].Short != "ARS" {
		t.Fatalf("unexpected teams: %+v", bootstrap.Teams)
	}
	if len(bootstrap.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(bootstrap.Players))
	}
	if bootstrap.Players[0].Position != "MID" || bootstrap.Players[1].Position != "GK" {
		t.Fatalf("unexpected position mapping: %+v", bootstrap.Players)
	}
	if len(bootstrap.Events) != 2 || !bootstrap.Events[1].IsCurrent {
		t.Fatalf("unexpected events: %+v", bootstrap.Events)
	}
}

func TestClient_FetchFixtures_SkipsUnscheduledRows(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/fixtures/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 900, "event": 21, "team_h": 1, "team_a": 2, "kickoff_time": "2026-01-10T15:00:00Z", "finished": true, "team_h_score": 2, "team_a_score": 0},
			{"id": 901, "event": null, "team_h": 1, "team_a": 3, "kickoff_time": null, "finished": false}
		]`))
	})

	client, _ := newTestClient(t, mux, 0)

	fixtures, err := client.FetchFixtures(context.Background())
	if err != nil {
		t.Fatalf("FetchFixtures error: %v", err)
	}

	if len(fixtures) != 1 {
		t.Fatalf("expected the unscheduled fixture to be skipped, got %d rows", len(fixtures))
	}
	row := fixtures[0]
	if row.RefID != 900 || row.Gameweek != 21 || !row.Finished {
		t.Fatalf("unexpected fixture: %+v", row)
	}
	if row.HomeScore == nil || *row.HomeScore != 2 {
		t.Fatalf("unexpected home score: %+v", row.HomeScore)
	}
	if row.KickoffAt.IsZero() {
		t.Fatalf("expected kickoff to be parsed")
	}
}

func TestClient_FetchPlayerHistory_ParsesDecimalStrings(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/element-summary/101/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"history": [
				{
					"round": 23, "opponent_team": 2, "was_home": true,
					"kickoff_time": "2026-01-24T15:00:00Z",
					"total_points": 9, "minutes": 90, "goals_scored": 1, "assists": 1,
					"influence": "54.2", "creativity": "31.8", "threat": "60.0", "ict_index": "14.6",
					"expected_goals": "0.62", "expected_assists": "0.31",
					"expected_goal_involvements": "0.93", "expected_goals_conceded": "1.10",
					"selected": 4300000, "transfers_in": 120000, "transfers_out": 35000
				}
			]
		}`))
	})

	client, _ := newTestClient(t, mux, 0)

	rows, err := client.FetchPlayerHistory(context.Background(), 101)
	if err != nil {
		t.Fatalf("FetchPlayerHistory error: %v", err)
	}

	if len(rows) != 1 {
		t.Fatalf("expected 1 history row, got %d", len(rows))
	}
	row := rows[0]
	if row.Gameweek != 23 || !row.WasHome || row.OpponentTeamRefID != 2 {
		t.Fatalf("unexpected row: %+v", row)
	}
	if math.Abs(row.ExpectedGoals-0.62) > 1e-9 {
		t.Fatalf("expected xG 0.62, got %f", row.ExpectedGoals)
	}
	if math.Abs(row.Influence-54.2) > 1e-9 {
		t.Fatalf("expected influence 54.2, got %f", row.Influence)
	}
	if row.SelectedBy != 4300000 || row.TransfersIn != 120000 {
		t.Fatalf("unexpected transfer fields: %+v", row)
	}
}

func TestClient_NonRetryableStatusMapsToSourceUnavailable(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/element-summary/5/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	client, _ := newTestClient(t, mux, 2)

	_, err := client.FetchPlayerHistory(context.Background(), 5)
	if !errors.Is(err, usecase.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap-static/", func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "upstream hiccup", http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"events": [{"id": 1, "is_current": true}], "teams": [], "elements": []}`))
	})

	client, _ := newTestClient(t, mux, 1)

	bootstrap, err := client.FetchBootstrap(context.Background())
	if err != nil {
		t.Fatalf("expected retry to recover, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
	if len(bootstrap.Events) != 1 {
		t.Fatalf("unexpected bootstrap: %+v", bootstrap)
	}
}

func TestClient_RejectsNonPositivePlayerRef(t *testing.T) {
	t.Parallel()

	client := NewClient(ClientConfig{BaseURL: "http://localhost:0"})

	if _, err := client.FetchPlayerHistory(context.Background(), 0); err == nil {
		t.Fatalf("expected error for non-positive player ref id")
	}
}
