// Package bullion serves per-gram market rates for the supported
// collateral metals. Rates come from a mock table seeded from config and
// get a small random walk on every scheduled refresh; a real price feed
// would slot in behind the same service surface.
package bullion

import (
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/starfinance/backend/internal/models"
)

// ErrUnknownRate is returned when no rate exists for the asset/purity pair
var ErrUnknownRate = errors.New("no market rate for asset")

// Rates is a snapshot of per-gram market rates in whole currency units
type Rates struct {
	Gold      map[string]float64 `json:"gold"` // keyed by purity grade
	Silver    float64            `json:"silver"`
	Platinum  float64            `json:"platinum"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// RateService caches the current rate table behind a mutex. Reads are
// concurrent; Refresh swaps the whole snapshot.
type RateService struct {
	mu    sync.RWMutex
	rates Rates
}

// NewRateService seeds the service with the default mock table
func NewRateService() *RateService {
	return &RateService{
		rates: Rates{
			Gold: map[string]float64{
				"24K": 5450,
				"22K": 5000,
				"18K": 4087,
			},
			Silver:    65,
			Platinum:  3200,
			UpdatedAt: time.Now(),
		},
	}
}

// Current returns the current rate snapshot
func (s *RateService) Current() Rates {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.rates
	snapshot.Gold = make(map[string]float64, len(s.rates.Gold))
	for k, v := range s.rates.Gold {
		snapshot.Gold[k] = v
	}
	return snapshot
}

// RatePerGram returns the per-gram rate for the asset type. Gold is
// quoted per purity grade; silver and platinum have a single rate.
func (s *RateService) RatePerGram(assetType models.AssetType, purity string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch assetType {
	case models.AssetTypeGold:
		if rate, ok := s.rates.Gold[purity]; ok {
			return rate, nil
		}
		return 0, ErrUnknownRate
	case models.AssetTypeSilver:
		return s.rates.Silver, nil
	case models.AssetTypePlatinum:
		return s.rates.Platinum, nil
	}
	return 0, ErrUnknownRate
}

// Refresh simulates a feed update by jittering every rate within ±1%.
// Scheduled by the jobs package.
func (s *RateService) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for grade, rate := range s.rates.Gold {
		s.rates.Gold[grade] = jitter(rate)
	}
	s.rates.Silver = jitter(s.rates.Silver)
	s.rates.Platinum = jitter(s.rates.Platinum)
	s.rates.UpdatedAt = time.Now()

	log.Printf("bullion rates refreshed at %s", s.rates.UpdatedAt.Format(time.RFC3339))
}

func jitter(rate float64) float64 {
	return rate * (1 + (rand.Float64()-0.5)/50)
}
