package loan

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/starfinance/backend/internal/models"
)

var reviewStages = []models.ApplicationStatus{
	models.StatusSubmitted,
	models.StatusUnderReview,
	models.StatusDocumentVerification,
	models.StatusPhysicalVerification,
	models.StatusGoldEvaluation,
	models.StatusOfferMade,
	models.StatusApproved,
}

func TestCanTransitionHappyPath(t *testing.T) {
	path := append(reviewStages, models.StatusDisbursed)
	for i := 0; i < len(path)-1; i++ {
		assert.True(t, CanTransition(path[i], path[i+1]),
			"%s -> %s should be allowed", path[i], path[i+1])
	}
}

func TestCanTransitionRejectsSkippingStages(t *testing.T) {
	assert.False(t, CanTransition(models.StatusSubmitted, models.StatusGoldEvaluation))
	assert.False(t, CanTransition(models.StatusSubmitted, models.StatusApproved))
	assert.False(t, CanTransition(models.StatusUnderReview, models.StatusOfferMade))
	assert.False(t, CanTransition(models.StatusSubmitted, models.StatusDisbursed))
}

func TestCanTransitionNoBackwardMoves(t *testing.T) {
	assert.False(t, CanTransition(models.StatusUnderReview, models.StatusSubmitted))
	assert.False(t, CanTransition(models.StatusOfferMade, models.StatusGoldEvaluation))
	assert.False(t, CanTransition(models.StatusApproved, models.StatusOfferMade))
}

func TestRejectReachableFromEveryNonTerminalStage(t *testing.T) {
	for _, from := range reviewStages {
		assert.True(t, CanTransition(from, models.StatusRejected),
			"%s -> REJECTED should be allowed", from)
	}
}

func TestTerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	all := append(append([]models.ApplicationStatus{}, reviewStages...),
		models.StatusRejected, models.StatusDisbursed)

	for _, terminal := range []models.ApplicationStatus{models.StatusRejected, models.StatusDisbursed} {
		for _, to := range all {
			assert.False(t, CanTransition(terminal, to),
				"%s -> %s should not be allowed", terminal, to)
		}
	}
}

func TestCanTransitionSelfLoopsForbidden(t *testing.T) {
	for _, st := range reviewStages {
		assert.False(t, CanTransition(st, st))
	}
}
