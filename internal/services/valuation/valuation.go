// Package valuation computes the collateral quality index and the
// approved loan amount from physical-evaluation inputs. Both functions
// are pure; the lifecycle service decides when they run and where the
// results land.
package valuation

import (
	"fmt"
	"math"
)

// Loan percentage (loan-to-value) band accepted from evaluators.
// Values outside the band are a caller error, never clamped.
const (
	MinLoanPercentage = 50.0
	MaxLoanPercentage = 85.0
)

// Physical condition grades recognized by the quality index
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
)

// OutOfBandError reports a loan percentage outside the accepted band
type OutOfBandError struct {
	LoanPercentage float64
}

func (e *OutOfBandError) Error() string {
	return fmt.Sprintf("loan percentage %.2f outside accepted band [%v, %v]",
		e.LoanPercentage, MinLoanPercentage, MaxLoanPercentage)
}

// QualityIndex scores the collateral in [70, 100] from the verified
// purity grade and physical condition. Base 70, purity bonus 20 for the
// second-highest tier (22K), 15 for the third (18K), 10 otherwise,
// condition bonus 10 for excellent and 5 for good, capped at 100.
func QualityIndex(purityGrade, physicalCondition string) int {
	base := 70

	purityBonus := 10
	switch purityGrade {
	case "22K":
		purityBonus = 20
	case "18K":
		purityBonus = 15
	}

	conditionBonus := 0
	switch physicalCondition {
	case ConditionExcellent:
		conditionBonus = 10
	case ConditionGood:
		conditionBonus = 5
	}

	score := base + purityBonus + conditionBonus
	if score > 100 {
		score = 100
	}
	return score
}

// ApprovedAmount computes the loan amount in whole currency units:
// floor(weight × rate × percentage / 100). The percentage must lie in
// [MinLoanPercentage, MaxLoanPercentage].
func ApprovedAmount(actualWeightGrams, marketRatePerGram, loanPercentage float64) (int64, error) {
	if loanPercentage < MinLoanPercentage || loanPercentage > MaxLoanPercentage {
		return 0, &OutOfBandError{LoanPercentage: loanPercentage}
	}
	return int64(math.Floor(actualWeightGrams * marketRatePerGram * loanPercentage / 100)), nil
}
