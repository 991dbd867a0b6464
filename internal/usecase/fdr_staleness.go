package usecase

import "time"

// DefaultFreshnessWindow bounds how long a calculation run stays FRESH
// within the same gameweek.
const DefaultFreshnessWindow = time.Hour

const (
	StaleReasonNoPrior         = "no_prior_calculation"
	StaleReasonGameweekChanged = "gameweek_changed"
	StaleReasonWindowExpired   = "freshness_window_expired"
	FreshReason                = "within_freshness_window"
)

// LastCalculationMeta is what the gate needs to know about the most recent
// persisted run.
type LastCalculationMeta struct {
	Gameweek     int
	CalculatedAt time.Time
}

// StalenessDecision is the gate verdict. MinutesSinceLast is only
// meaningful for FRESH decisions with a prior run.
type StalenessDecision struct {
	Stale            bool
	Reason           string
	MinutesSinceLast int
}

// EvaluateStaleness decides whether a recalculation is due. STALE when no
// prior run exists, when the gameweek moved on, or when the freshness
// window has elapsed. Pure: no clock reads, no side effects.
func EvaluateStaleness(last *LastCalculationMeta, currentGameweek int, now time.Time, window time.Duration) StalenessDecision {
	if window <= 0 {
		window = DefaultFreshnessWindow
	}

	if last == nil {
		return StalenessDecision{Stale: true, Reason: StaleReasonNoPrior}
	}
	if last.Gameweek != currentGameweek {
		return StalenessDecision{Stale: true, Reason: StaleReasonGameweekChanged}
	}

	age := now.Sub(last.CalculatedAt)
	if age > window {
		return StalenessDecision{Stale: true, Reason: StaleReasonWindowExpired}
	}

	return StalenessDecision{
		Reason:           FreshReason,
		MinutesSinceLast: int(age.Minutes()),
	}
}
