package valuation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQualityIndex(t *testing.T) {
	tests := []struct {
		name      string
		purity    string
		condition string
		want      int
	}{
		{"22K excellent caps at 100", "22K", ConditionExcellent, 100},
		{"22K good", "22K", ConditionGood, 95},
		{"22K fair", "22K", ConditionFair, 90},
		{"18K excellent", "18K", ConditionExcellent, 95},
		{"18K good", "18K", ConditionGood, 90},
		{"24K excellent", "24K", ConditionExcellent, 90},
		{"24K fair gets only base and default purity bonus", "24K", ConditionFair, 80},
		{"unknown purity and condition floor at 80", "14K", "worn", 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, QualityIndex(tt.purity, tt.condition))
		})
	}
}

func TestQualityIndexBounds(t *testing.T) {
	purities := []string{"24K", "22K", "18K", "14K", ""}
	conditions := []string{ConditionExcellent, ConditionGood, ConditionFair, ""}

	for _, p := range purities {
		for _, c := range conditions {
			score := QualityIndex(p, c)
			assert.GreaterOrEqual(t, score, 70, "purity %q condition %q", p, c)
			assert.LessOrEqual(t, score, 100, "purity %q condition %q", p, c)
		}
	}
}

func TestApprovedAmount(t *testing.T) {
	// 50g at 5450/g with 75% loan-to-value
	amount, err := ApprovedAmount(50, 5450, 75)
	require.NoError(t, err)
	assert.Equal(t, int64(204375), amount)
}

func TestApprovedAmountFloors(t *testing.T) {
	// 10.5 * 100 * 50.5% = 530.25, floored
	amount, err := ApprovedAmount(10.5, 100, 50.5)
	require.NoError(t, err)
	assert.Equal(t, int64(530), amount)
}

func TestApprovedAmountBandEdges(t *testing.T) {
	for _, pct := range []float64{MinLoanPercentage, MaxLoanPercentage} {
		_, err := ApprovedAmount(100, 5000, pct)
		assert.NoError(t, err, "percentage %v should be accepted", pct)
	}
}

func TestApprovedAmountRejectsOutOfBand(t *testing.T) {
	for _, pct := range []float64{0, 49.99, 85.01, 100, -10} {
		_, err := ApprovedAmount(100, 5000, pct)
		require.Error(t, err, "percentage %v should be rejected", pct)

		var bandErr *OutOfBandError
		require.ErrorAs(t, err, &bandErr)
		assert.Equal(t, pct, bandErr.LoanPercentage)
	}
}

func TestApprovedAmountMonotonicInWeight(t *testing.T) {
	prev := int64(-1)
	for _, weight := range []float64{1, 10, 50, 100, 500} {
		amount, err := ApprovedAmount(weight, 5000, 70)
		require.NoError(t, err)
		assert.Greater(t, amount, prev)
		prev = amount
	}
}
