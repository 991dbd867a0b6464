package usecase

import (
	"testing"
	"time"
)

func TestEvaluateStaleness(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	window := time.Hour

	cases := []struct {
		name       string
		last       *LastCalculationMeta
		gameweek   int
		wantStale  bool
		wantReason string
	}{
		{
			name:       "no prior calculation",
			last:       nil,
			gameweek:   10,
			wantStale:  true,
			wantReason: StaleReasonNoPrior,
		},
		{
			name:       "gameweek moved on",
			last:       &LastCalculationMeta{Gameweek: 9, CalculatedAt: now.Add(-time.Minute)},
			gameweek:   10,
			wantStale:  true,
			wantReason: StaleReasonGameweekChanged,
		},
		{
			name:       "window expired",
			last:       &LastCalculationMeta{Gameweek: 10, CalculatedAt: now.Add(-2 * time.Hour)},
			gameweek:   10,
			wantStale:  true,
			wantReason: StaleReasonWindowExpired,
		},
		{
			name:       "fresh within window",
			last:       &LastCalculationMeta{Gameweek: 10, CalculatedAt: now.Add(-30 * time.Minute)},
			gameweek:   10,
			wantStale:  false,
			wantReason: FreshReason,
		},
		{
			name:       "exactly at window edge is still fresh",
			last:       &LastCalculationMeta{Gameweek: 10, CalculatedAt: now.Add(-window)},
			gameweek:   10,
			wantStale:  false,
			wantReason: FreshReason,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := EvaluateStaleness(tc.last, tc.gameweek, now, window)
			if got.Stale != tc.wantStale {
				t.Fatalf("stale: got=%t want=%t", got.Stale, tc.wantStale)
			}
			if got.Reason != tc.wantReason {
				t.Fatalf("reason: got=%s want=%s", got.Reason, tc.wantReason)
			}
		})
	}
}

func TestEvaluateStaleness_ReportsMinutesSinceLastRun(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	last := &LastCalculationMeta{Gameweek: 7, CalculatedAt: now.Add(-42 * time.Minute)}

	got := EvaluateStaleness(last, 7, now, time.Hour)
	if got.Stale {
		t.Fatalf("expected fresh decision, got stale reason=%s", got.Reason)
	}
	if got.MinutesSinceLast != 42 {
		t.Fatalf("minutes since last: got=%d want=42", got.MinutesSinceLast)
	}
}

func TestEvaluateStaleness_DefaultsWindowWhenUnset(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	last := &LastCalculationMeta{Gameweek: 3, CalculatedAt: now.Add(-45 * time.Minute)}

	got := EvaluateStaleness(last, 3, now, 0)
	if got.Stale {
		t.Fatalf("expected 45 minutes to sit inside the default window")
	}
}
