package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/fplstats/fdr-engine/internal/usecase"
)

func TestNotifier_NotifyRatingsRefreshed(t *testing.T) {
	t.Parallel()

	var gotBody atomic.Value
	var gotEventID atomic.Value
	var gotAuth atomic.Value

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		gotBody.Store(string(raw))
		gotEventID.Store(r.Header.Get("X-Event-Id"))
		gotAuth.Store(r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	notifier := NewNotifier(NotifierConfig{
		TargetURL: server.URL,
		Token:     "hook-secret",
	}, nil)

	summary := usecase.RatingRefreshSummary{
		Season:       "2026/27",
		Gameweek:     23,
		TeamsUpdated: 20,
	}
	if err := notifier.NotifyRatingsRefreshed(context.Background(), summary); err != nil {
		t.Fatalf("NotifyRatingsRefreshed error: %v", err)
	}

	var decoded usecase.RatingRefreshSummary
	if err := sonic.Unmarshal([]byte(gotBody.Load().(string)), &decoded); err != nil {
		t.Fatalf("decode delivered body: %v", err)
	}
	if decoded.Gameweek != 23 || decoded.Season != "2026/27" {
		t.Fatalf("unexpected delivered summary: %+v", decoded)
	}
	if gotEventID.Load().(string) == "" {
		t.Fatalf("expected X-Event-Id header to be set")
	}
	if gotAuth.Load().(string) != "Bearer hook-secret" {
		t.Fatalf("unexpected Authorization header: %q", gotAuth.Load())
	}
}

func TestNotifier_ServerErrorSurfaces(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "listener down", http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	notifier := NewNotifier(NotifierConfig{TargetURL: server.URL}, nil)

	err := notifier.NotifyRatingsRefreshed(context.Background(), usecase.RatingRefreshSummary{Gameweek: 1})
	if err == nil {
		t.Fatalf("expected delivery error")
	}
	if !strings.Contains(err.Error(), "status=503") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestNotifier_InvalidTargetURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		url  string
	}{
		{name: "empty", url: "   "},
		{name: "bad scheme", url: "ftp://hooks.internal/fdr"},
		{name: "missing host", url: "https:///fdr"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			notifier := NewNotifier(NotifierConfig{TargetURL: tc.url}, nil)
			if err := notifier.NotifyRatingsRefreshed(context.Background(), usecase.RatingRefreshSummary{}); err == nil {
				t.Fatalf("expected validation error for %q", tc.url)
			}
		})
	}
}

func TestBuildCurlPreview_MasksToken(t *testing.T) {
	t.Parallel()

	preview := buildCurlPreview("https://hooks.internal/fdr", `{"gameweek":23}`, true)

	if !strings.Contains(preview, "'https://hooks.internal/fdr'") {
		t.Fatalf("expected target url in preview: %s", preview)
	}
	if !strings.Contains(preview, "Bearer ***") {
		t.Fatalf("expected masked token in preview: %s", preview)
	}
	if strings.Contains(preview, "hook-secret") {
		t.Fatalf("token leaked into preview: %s", preview)
	}
}

func TestTruncateForLog(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("a", 50)
	got := truncateForLog(long, 10)
	if got != strings.Repeat("a", 10)+"...(truncated)" {
		t.Fatalf("unexpected truncation: %q", got)
	}
	if truncateForLog("short", 10) != "short" {
		t.Fatalf("expected short value unchanged")
	}
}
