package loan

import "github.com/starfinance/backend/internal/models"

// allowedTransitions is the lifecycle adjacency table. Review stages
// advance one at a time; REJECTED is reachable from every non-terminal
// stage; REJECTED and DISBURSED have no outgoing edges.
var allowedTransitions = map[models.ApplicationStatus][]models.ApplicationStatus{
	models.StatusSubmitted:            {models.StatusUnderReview, models.StatusRejected},
	models.StatusUnderReview:          {models.StatusDocumentVerification, models.StatusRejected},
	models.StatusDocumentVerification: {models.StatusPhysicalVerification, models.StatusRejected},
	models.StatusPhysicalVerification: {models.StatusGoldEvaluation, models.StatusRejected},
	models.StatusGoldEvaluation:       {models.StatusOfferMade, models.StatusRejected},
	models.StatusOfferMade:            {models.StatusApproved, models.StatusRejected},
	models.StatusApproved:             {models.StatusDisbursed, models.StatusRejected},
	models.StatusRejected:             {},
	models.StatusDisbursed:            {},
}

// CanTransition reports whether the lifecycle graph permits moving from
// one status to another
func CanTransition(from, to models.ApplicationStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
