package weights

import "fmt"

// Profile is a named, versioned set of factor weights used when combining
// normalized team factors into a strength score. At most one profile is
// active at a time; when none is stored the engine falls back to
// DefaultProfile.
type Profile struct {
	ID      string
	Name    string
	Version int
	Active  bool

	// Weight per tracked factor. Conceded-style factors are inverted
	// before weighting, so every weight is expressed as "bigger is
	// stronger".
	GoalsScored           float64
	GoalsConceded         float64
	ExpectedGoals         float64
	ExpectedGoalsConceded float64
	VenueGoals            float64
	VenueExpectedGoals    float64
	RecentForm            float64
	PointsPerGame         float64
	FinishingDelta        float64

	// FormWindow is the number of trailing gameweeks that feed the
	// recent-form factor.
	FormWindow int
}

// DefaultFormWindow is the trailing-gameweek span for recent form when no
// stored profile overrides it.
const DefaultFormWindow = 5

// DefaultProfile returns the documented fallback weighting. Attack and
// defence carry equal weight, venue splits and form are secondary signals,
// and the finishing delta is a small corrective term.
func DefaultProfile() Profile {
	return Profile{
		Name:                  "default",
		Version:               1,
		Active:                true,
		GoalsScored:           1.0,
		GoalsConceded:         1.0,
		ExpectedGoals:         0.8,
		ExpectedGoalsConceded: 0.8,
		VenueGoals:            0.6,
		VenueExpectedGoals:    0.5,
		RecentForm:            0.7,
		PointsPerGame:         0.9,
		FinishingDelta:        0.3,
		FormWindow:            DefaultFormWindow,
	}
}

func (p Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("weight profile name is required")
	}
	if p.Version <= 0 {
		return fmt.Errorf("weight profile version must be positive")
	}
	if p.FormWindow <= 0 {
		return fmt.Errorf("weight profile form window must be positive")
	}
	for _, w := range []float64{
		p.GoalsScored, p.GoalsConceded, p.ExpectedGoals, p.ExpectedGoalsConceded,
		p.VenueGoals, p.VenueExpectedGoals, p.RecentForm, p.PointsPerGame, p.FinishingDelta,
	} {
		if w < 0 {
			return fmt.Errorf("weight profile weights must not be negative")
		}
	}

	return nil
}

// TotalWeight is the sum of all factor weights. A profile whose weights sum
// to zero cannot produce a score.
func (p Profile) TotalWeight() float64 {
	return p.GoalsScored + p.GoalsConceded + p.ExpectedGoals + p.ExpectedGoalsConceded +
		p.VenueGoals + p.VenueExpectedGoals + p.RecentForm + p.PointsPerGame + p.FinishingDelta
}
