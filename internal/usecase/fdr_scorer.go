package usecase

import (
	"math"
	"sort"

	"github.com/fplstats/fdr-engine/internal/domain/fdr"
	"github.com/fplstats/fdr-engine/internal/domain/weights"
)

// TeamScore is one scored team: normalized factors, combined strengths and
// the resulting 1-10 difficulty buckets.
type TeamScore struct {
	TeamID      string
	GamesPlayed int

	Raw    fdr.RawFactors
	Scores fdr.FactorScores

	HomeStrength    float64
	AwayStrength    float64
	OverallStrength float64

	HomeDifficulty int
	AwayDifficulty int

	InsufficientData bool
}

// ScoreTeamFactors normalizes each raw factor to 0..100 with min-max over
// the run's population, combines the normalized factors with the profile
// weights, and buckets the strengths to 1..10 difficulties.
//
// Normalization is relative to teams that actually played; a factor that is
// flat across the whole population normalizes to the neutral 50. Teams with
// no played games are excluded from the population and receive the neutral
// 5/5 default. Output ordering and values depend only on the inputs.
func ScoreTeamFactors(snapshots []TeamFactorSnapshot, profile weights.Profile) []TeamScore {
	population := make([]TeamFactorSnapshot, 0, len(snapshots))
	for _, snap := range snapshots {
		if snap.HasSample() {
			population = append(population, snap)
		}
	}

	ranges := factorRanges(population)

	out := make([]TeamScore, 0, len(snapshots))
	for _, snap := range snapshots {
		if !snap.HasSample() {
			out = append(out, neutralTeamScore(snap.TeamID))
			continue
		}

		scores := normalizeFactors(snap.Raw, ranges)
		home := combineStrength(scores, profile, true)
		away := combineStrength(scores, profile, false)

		out = append(out, TeamScore{
			TeamID:          snap.TeamID,
			GamesPlayed:     snap.GamesPlayed,
			Raw:             snap.Raw,
			Scores:          scores,
			HomeStrength:    home,
			AwayStrength:    away,
			OverallStrength: (home + away) / 2,
			HomeDifficulty:  bucketDifficulty(home),
			AwayDifficulty:  bucketDifficulty(away),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TeamID < out[j].TeamID
	})
	return out
}

type factorRange struct {
	min float64
	max float64
}

// normalize maps value into 0..100 within the range. A degenerate range
// (every team identical) maps to the neutral 50.
func (r factorRange) normalize(value float64) float64 {
	span := r.max - r.min
	if span <= 0 {
		return 50
	}

	score := (value - r.min) / span * 100
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func factorRanges(population []TeamFactorSnapshot) map[string]factorRange {
	ranges := make(map[string]factorRange, len(factorAccessors))
	for name, access := range factorAccessors {
		r := factorRange{min: math.Inf(1), max: math.Inf(-1)}
		for _, snap := range population {
			value := access(snap.Raw)
			if value < r.min {
				r.min = value
			}
			if value > r.max {
				r.max = value
			}
		}
		if len(population) == 0 {
			r = factorRange{}
		}
		ranges[name] = r
	}
	return ranges
}

var factorAccessors = map[string]func(fdr.RawFactors) float64{
	"goals_scored":            func(f fdr.RawFactors) float64 { return f.GoalsScoredPer90 },
	"goals_conceded":          func(f fdr.RawFactors) float64 { return f.GoalsConcededPer90 },
	"expected_goals":          func(f fdr.RawFactors) float64 { return f.ExpectedGoalsPer90 },
	"expected_goals_conceded": func(f fdr.RawFactors) float64 { return f.ExpectedGoalsConcededPer90 },
	"home_goals":              func(f fdr.RawFactors) float64 { return f.HomeGoalsPer90 },
	"away_goals":              func(f fdr.RawFactors) float64 { return f.AwayGoalsPer90 },
	"home_expected_goals":     func(f fdr.RawFactors) float64 { return f.HomeExpectedGoalsPer90 },
	"away_expected_goals":     func(f fdr.RawFactors) float64 { return f.AwayExpectedGoalsPer90 },
	"form_goals":              func(f fdr.RawFactors) float64 { return f.FormGoalsPer90 },
	"points_per_game":         func(f fdr.RawFactors) float64 { return f.PointsPerGame },
	"finishing_delta":         func(f fdr.RawFactors) float64 { return f.FinishingDelta },
}

func normalizeFactors(raw fdr.RawFactors, ranges map[string]factorRange) fdr.FactorScores {
	return fdr.FactorScores{
		GoalsScored:           ranges["goals_scored"].normalize(raw.GoalsScoredPer90),
		GoalsConceded:         ranges["goals_conceded"].normalize(raw.GoalsConcededPer90),
		ExpectedGoals:         ranges["expected_goals"].normalize(raw.ExpectedGoalsPer90),
		ExpectedGoalsConceded: ranges["expected_goals_conceded"].normalize(raw.ExpectedGoalsConcededPer90),
		HomeGoals:             ranges["home_goals"].normalize(raw.HomeGoalsPer90),
		AwayGoals:             ranges["away_goals"].normalize(raw.AwayGoalsPer90),
		HomeExpectedGoals:     ranges["home_expected_goals"].normalize(raw.HomeExpectedGoalsPer90),
		AwayExpectedGoals:     ranges["away_expected_goals"].normalize(raw.AwayExpectedGoalsPer90),
		FormGoals:             ranges["form_goals"].normalize(raw.FormGoalsPer90),
		PointsPerGame:         ranges["points_per_game"].normalize(raw.PointsPerGame),
		FinishingDelta:        ranges["finishing_delta"].normalize(raw.FinishingDelta),
	}
}

// combineStrength takes the weighted mean of the venue-relevant normalized
// factors. Conceded factors are inverted first so that conceding little
// raises strength.
func combineStrength(scores fdr.FactorScores, profile weights.Profile, home bool) float64 {
	venueGoals := scores.AwayGoals
	venueXG := scores.AwayExpectedGoals
	if home {
		venueGoals = scores.HomeGoals
		venueXG = scores.HomeExpectedGoals
	}

	type weighted struct {
		score  float64
		weight float64
	}
	terms := []weighted{
		{scores.GoalsScored, profile.GoalsScored},
		{invertScore(scores.GoalsConceded), profile.GoalsConceded},
		{scores.ExpectedGoals, profile.ExpectedGoals},
		{invertScore(scores.ExpectedGoalsConceded), profile.ExpectedGoalsConceded},
		{venueGoals, profile.VenueGoals},
		{venueXG, profile.VenueExpectedGoals},
		{scores.FormGoals, profile.RecentForm},
		{scores.PointsPerGame, profile.PointsPerGame},
		{scores.FinishingDelta, profile.FinishingDelta},
	}

	var sum, totalWeight float64
	for _, term := range terms {
		sum += term.score * term.weight
		totalWeight += term.weight
	}
	if totalWeight == 0 {
		return 50
	}

	return sum / totalWeight
}

func invertScore(score float64) float64 {
	return 100 - score
}

// bucketDifficulty maps a 0..100 strength onto the 1..10 scale.
func bucketDifficulty(strength float64) int {
	if strength < 0 {
		strength = 0
	}

	bucket := int(math.Floor(strength/10)) + 1
	if bucket > fdr.MaxDifficulty {
		bucket = fdr.MaxDifficulty
	}
	if bucket < fdr.MinDifficulty {
		bucket = fdr.MinDifficulty
	}
	return bucket
}

func neutralTeamScore(teamID string) TeamScore {
	return TeamScore{
		TeamID:           teamID,
		HomeStrength:     50,
		AwayStrength:     50,
		OverallStrength:  50,
		HomeDifficulty:   fdr.NeutralDifficulty,
		AwayDifficulty:   fdr.NeutralDifficulty,
		InsufficientData: true,
	}
}
