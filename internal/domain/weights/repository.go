package weights

import "context"

// Repository exposes weight profile reads. GetActive returns ok=false when
// no active profile is stored; callers degrade to DefaultProfile.
type Repository interface {
	GetActive(ctx context.Context) (Profile, bool, error)
}
