package bullion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfinance/backend/internal/models"
)

func TestRatePerGram(t *testing.T) {
	s := NewRateService()

	rate, err := s.RatePerGram(models.AssetTypeGold, "22K")
	require.NoError(t, err)
	assert.Equal(t, float64(5000), rate)

	rate, err = s.RatePerGram(models.AssetTypeSilver, "")
	require.NoError(t, err)
	assert.Equal(t, float64(65), rate)

	rate, err = s.RatePerGram(models.AssetTypePlatinum, "")
	require.NoError(t, err)
	assert.Equal(t, float64(3200), rate)
}

func TestRatePerGramUnknown(t *testing.T) {
	s := NewRateService()

	_, err := s.RatePerGram(models.AssetTypeGold, "14K")
	assert.ErrorIs(t, err, ErrUnknownRate)

	_, err = s.RatePerGram(models.AssetType("COPPER"), "")
	assert.ErrorIs(t, err, ErrUnknownRate)
}

func TestRefreshStaysWithinJitterBand(t *testing.T) {
	s := NewRateService()
	before := s.Current()

	s.Refresh()
	after := s.Current()

	for grade, rate := range after.Gold {
		assert.InDelta(t, before.Gold[grade], rate, before.Gold[grade]*0.011, "gold %s", grade)
	}
	assert.InDelta(t, before.Silver, after.Silver, before.Silver*0.011)
	assert.InDelta(t, before.Platinum, after.Platinum, before.Platinum*0.011)
	assert.False(t, after.UpdatedAt.Before(before.UpdatedAt))
}

func TestCurrentReturnsSnapshot(t *testing.T) {
	s := NewRateService()

	snapshot := s.Current()
	snapshot.Gold["22K"] = 1

	rate, err := s.RatePerGram(models.AssetTypeGold, "22K")
	require.NoError(t, err)
	assert.Equal(t, float64(5000), rate)
}
