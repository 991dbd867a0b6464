package memory

import (
	"context"
	"sync"

	"github.com/fplstats/fdr-engine/internal/domain/weights"
)

type WeightsRepository struct {
	mu      sync.RWMutex
	profile weights.Profile
	stored  bool
}

// NewWeightsRepository starts empty; callers fall back to the default
// profile until SetActive stores one.
func NewWeightsRepository() *WeightsRepository {
	return &WeightsRepository{}
}

func (r *WeightsRepository) GetActive(_ context.Context) (weights.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.stored || !r.profile.Active {
		return weights.Profile{}, false, nil
	}
	return r.profile, true, nil
}

func (r *WeightsRepository) SetActive(profile weights.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.profile = profile
	r.stored = true
}
