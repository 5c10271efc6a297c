package loan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MemoryIdentityStore, *store.MemoryApplicationStore) {
	t.Helper()
	identities := store.NewMemoryIdentityStore()
	applications := store.NewMemoryApplicationStore()
	return NewService(applications, identities), identities, applications
}

func verifiedIdentity(t *testing.T, identities *store.MemoryIdentityStore, subjectID string) *models.IdentityRecord {
	t.Helper()
	rec := &models.IdentityRecord{
		KYCNumber:    "KYC1700000000000ABCD",
		SubjectID:    subjectID,
		Status:       models.IdentityStatusVerified,
		DocumentRefs: models.StringList{"uploads/aadhaar.pdf"},
	}
	require.NoError(t, identities.Create(context.Background(), rec))
	return rec
}

func validCreateInput(subjectID, kycNumber string) CreateInput {
	return CreateInput{
		SubjectID: subjectID,
		KYCNumber: kycNumber,
		Asset: models.AssetDetails{
			Type:        models.AssetTypeGold,
			WeightGrams: 50,
			Purity:      "22K",
			Description: "two bangles",
		},
		Payout: models.PayoutAccount{
			AccountNumber:   "00112233445566",
			RoutingCode:     "SBIN0001234",
			InstitutionName: "State Bank",
			HolderName:      "Asha Rao",
		},
		RequestedAmount: 150000,
	}
}

func submitApplication(t *testing.T, svc *Service, identities *store.MemoryIdentityStore, subjectID string) *models.LoanApplication {
	t.Helper()
	rec := verifiedIdentity(t, identities, subjectID)
	app, err := svc.Create(context.Background(), validCreateInput(subjectID, rec.KYCNumber))
	require.NoError(t, err)
	return app
}

func TestCreateAssignsRequestIDAndSubmittedStatus(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")

	assert.NotEmpty(t, app.RequestID)
	assert.True(t, len(app.RequestID) > 3 && app.RequestID[:3] == "RID")
	assert.Equal(t, models.StatusSubmitted, app.Status)
	assert.Nil(t, app.ApprovedAmount)
	assert.Nil(t, app.QualityIndex)
	assert.Empty(t, app.RiskFlags)

	got, err := svc.GetByRequestID(context.Background(), app.RequestID)
	require.NoError(t, err)
	assert.Equal(t, app.RequestID, got.RequestID)
	assert.Equal(t, "subject-1", got.SubjectID)
}

func TestCreateRequiresVerifiedIdentity(t *testing.T) {
	svc, identities, _ := newTestService(t)
	ctx := context.Background()

	// No identity record at all
	_, err := svc.Create(ctx, validCreateInput("subject-1", "KYC1700000000000ABCD"))
	assert.ErrorIs(t, err, ErrIdentityNotVerified)

	// Record exists but is still pending
	rec := &models.IdentityRecord{
		KYCNumber:    "KYC1700000000000ABCD",
		SubjectID:    "subject-1",
		Status:       models.IdentityStatusPending,
		DocumentRefs: models.StringList{"uploads/pan.pdf"},
	}
	require.NoError(t, identities.Create(ctx, rec))
	_, err = svc.Create(ctx, validCreateInput("subject-1", rec.KYCNumber))
	assert.ErrorIs(t, err, ErrIdentityNotVerified)
}

func TestCreateRejectsMismatchedKYCNumber(t *testing.T) {
	svc, identities, _ := newTestService(t)
	verifiedIdentity(t, identities, "subject-1")

	_, err := svc.Create(context.Background(), validCreateInput("subject-1", "KYC9999999999999ZZZZ"))
	assert.ErrorIs(t, err, ErrIdentityNotVerified)
}

func TestCreateValidatesInput(t *testing.T) {
	svc, identities, _ := newTestService(t)
	rec := verifiedIdentity(t, identities, "subject-1")
	ctx := context.Background()

	mutations := []struct {
		name   string
		field  string
		mutate func(*CreateInput)
	}{
		{"missing subject", "subject_id", func(in *CreateInput) { in.SubjectID = "" }},
		{"missing kyc number", "kyc_number", func(in *CreateInput) { in.KYCNumber = "" }},
		{"zero amount", "requested_amount", func(in *CreateInput) { in.RequestedAmount = 0 }},
		{"bad asset type", "asset.type", func(in *CreateInput) { in.Asset.Type = "COPPER" }},
		{"zero weight", "asset.weight_grams", func(in *CreateInput) { in.Asset.WeightGrams = 0 }},
		{"missing purity", "asset.purity", func(in *CreateInput) { in.Asset.Purity = "" }},
		{"missing account", "payout.account_number", func(in *CreateInput) { in.Payout.AccountNumber = "" }},
		{"missing holder", "payout.holder_name", func(in *CreateInput) { in.Payout.HolderName = "" }},
	}

	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			in := validCreateInput("subject-1", rec.KYCNumber)
			tt.mutate(&in)

			_, err := svc.Create(ctx, in)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.field, validationErr.Field)
		})
	}
}

func TestTransitionWalksTheFullLifecycle(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	path := []models.ApplicationStatus{
		models.StatusUnderReview,
		models.StatusDocumentVerification,
		models.StatusPhysicalVerification,
		models.StatusGoldEvaluation,
		models.StatusOfferMade,
		models.StatusApproved,
		models.StatusDisbursed,
	}

	for _, next := range path {
		updated, err := svc.Transition(ctx, app.RequestID, next, "")
		require.NoError(t, err, "transition to %s", next)
		assert.Equal(t, next, updated.Status)
	}
}

func TestTransitionRejectsSkippingStages(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")

	_, err := svc.Transition(context.Background(), app.RequestID, models.StatusApproved, "")

	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	assert.Equal(t, models.StatusSubmitted, transitionErr.From)
	assert.Equal(t, models.StatusApproved, transitionErr.To)
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")

	_, err := svc.Transition(context.Background(), app.RequestID, "FROZEN", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestTransitionRejectedIsTerminal(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	_, err := svc.Transition(ctx, app.RequestID, models.StatusRejected, "incomplete documents")
	require.NoError(t, err)

	_, err = svc.Transition(ctx, app.RequestID, models.StatusUnderReview, "")
	var transitionErr *InvalidTransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestTransitionUnknownApplication(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Transition(context.Background(), "RID0000000000000XXXX", models.StatusUnderReview, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApprovalBlockedByRiskFlags(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	for _, next := range []models.ApplicationStatus{
		models.StatusUnderReview,
		models.StatusDocumentVerification,
		models.StatusPhysicalVerification,
		models.StatusGoldEvaluation,
		models.StatusOfferMade,
	} {
		_, err := svc.Transition(ctx, app.RequestID, next, "")
		require.NoError(t, err)
	}

	_, err := svc.SetRiskFlags(ctx, app.RequestID, []models.RiskFlag{models.RiskFlagDocumentInconsistency})
	require.NoError(t, err)

	_, err = svc.Transition(ctx, app.RequestID, models.StatusApproved, "")
	var blockedErr *ApprovalBlockedError
	require.ErrorAs(t, err, &blockedErr)
	assert.Contains(t, blockedErr.Flags, models.RiskFlagDocumentInconsistency)

	// Clearing the flags lifts the veto
	_, err = svc.SetRiskFlags(ctx, app.RequestID, nil)
	require.NoError(t, err)

	updated, err := svc.Transition(ctx, app.RequestID, models.StatusApproved, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, updated.Status)
}

func TestSetRiskFlagsReplacesWholeSet(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	_, err := svc.SetRiskFlags(ctx, app.RequestID, []models.RiskFlag{
		models.RiskFlagPoorImageQuality,
		models.RiskFlagDocumentInconsistency,
	})
	require.NoError(t, err)

	updated, err := svc.SetRiskFlags(ctx, app.RequestID, []models.RiskFlag{models.RiskFlagDuplicateApplicant})
	require.NoError(t, err)
	assert.Equal(t, models.FlagList{models.RiskFlagDuplicateApplicant}, updated.RiskFlags)
}

func TestSetRiskFlagsRejectsUnknownFlag(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")

	_, err := svc.SetRiskFlags(context.Background(), app.RequestID, []models.RiskFlag{"MOON_PHASE_UNFAVOURABLE"})
	assert.ErrorIs(t, err, ErrUnknownFlag)
}

func TestRecordEvaluationComputesAmountAndIndex(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	for _, next := range []models.ApplicationStatus{
		models.StatusUnderReview,
		models.StatusDocumentVerification,
		models.StatusPhysicalVerification,
		models.StatusGoldEvaluation,
	} {
		_, err := svc.Transition(ctx, app.RequestID, next, "")
		require.NoError(t, err)
	}

	updated, err := svc.RecordEvaluation(ctx, app.RequestID, EvaluationInput{
		ActualWeightGrams: 50,
		VerifiedPurity:    "22K",
		PhysicalCondition: "excellent",
		MarketRatePerGram: 5000,
		LoanPercentage:    75,
		Notes:             "hallmarked, minor scratches",
	})
	require.NoError(t, err)

	require.NotNil(t, updated.ApprovedAmount)
	assert.Equal(t, int64(187500), *updated.ApprovedAmount)
	require.NotNil(t, updated.QualityIndex)
	assert.Equal(t, 100, *updated.QualityIndex)
	assert.Equal(t, "hallmarked, minor scratches", updated.EvaluationNotes)
	// Evaluation never moves the status on its own
	assert.Equal(t, models.StatusGoldEvaluation, updated.Status)
}

func TestRecordEvaluationRequiresEvaluationStage(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")

	_, err := svc.RecordEvaluation(context.Background(), app.RequestID, EvaluationInput{
		ActualWeightGrams: 50,
		VerifiedPurity:    "22K",
		PhysicalCondition: "good",
		MarketRatePerGram: 5000,
		LoanPercentage:    70,
	})
	assert.ErrorIs(t, err, ErrEvaluationNotAllowed)
}

func TestRecordEvaluationRejectsTerminalApplication(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	_, err := svc.Transition(ctx, app.RequestID, models.StatusRejected, "")
	require.NoError(t, err)

	_, err = svc.RecordEvaluation(ctx, app.RequestID, EvaluationInput{
		ActualWeightGrams: 50,
		VerifiedPurity:    "22K",
		PhysicalCondition: "good",
		MarketRatePerGram: 5000,
		LoanPercentage:    70,
	})
	assert.ErrorIs(t, err, ErrEvaluationNotAllowed)
}

func TestRecordEvaluationRejectsOutOfBandPercentage(t *testing.T) {
	svc, identities, _ := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	for _, next := range []models.ApplicationStatus{
		models.StatusUnderReview,
		models.StatusDocumentVerification,
		models.StatusPhysicalVerification,
		models.StatusGoldEvaluation,
	} {
		_, err := svc.Transition(ctx, app.RequestID, next, "")
		require.NoError(t, err)
	}

	_, err := svc.RecordEvaluation(ctx, app.RequestID, EvaluationInput{
		ActualWeightGrams: 50,
		VerifiedPurity:    "22K",
		PhysicalCondition: "good",
		MarketRatePerGram: 5000,
		LoanPercentage:    95,
	})
	require.Error(t, err)

	// An out-of-band percentage leaves the application untouched
	got, getErr := svc.GetByRequestID(ctx, app.RequestID)
	require.NoError(t, getErr)
	assert.Nil(t, got.ApprovedAmount)
	assert.Nil(t, got.QualityIndex)
}

func TestListPendingFiltersReviewBacklog(t *testing.T) {
	svc, identities, _ := newTestService(t)
	ctx := context.Background()

	first := submitApplication(t, svc, identities, "subject-1")

	rec := &models.IdentityRecord{
		KYCNumber:    "KYC1700000000001EFGH",
		SubjectID:    "subject-2",
		Status:       models.IdentityStatusVerified,
		DocumentRefs: models.StringList{"uploads/pan.pdf"},
	}
	require.NoError(t, identities.Create(ctx, rec))
	second, err := svc.Create(ctx, validCreateInput("subject-2", rec.KYCNumber))
	require.NoError(t, err)

	// Move the second application past the pending window
	for _, next := range []models.ApplicationStatus{
		models.StatusUnderReview,
		models.StatusDocumentVerification,
		models.StatusPhysicalVerification,
	} {
		_, err := svc.Transition(ctx, second.RequestID, next, "")
		require.NoError(t, err)
	}

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.RequestID, pending[0].RequestID)
}

func TestListBySubjectScopesToOwner(t *testing.T) {
	svc, identities, _ := newTestService(t)
	ctx := context.Background()

	mine := submitApplication(t, svc, identities, "subject-1")
	submitApplication(t, svc, identities, "subject-2")

	apps, err := svc.ListBySubject(ctx, "subject-1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, mine.RequestID, apps[0].RequestID)
}

func TestTransitionConflictOnConcurrentUpdate(t *testing.T) {
	svc, identities, applications := newTestService(t)
	app := submitApplication(t, svc, identities, "subject-1")
	ctx := context.Background()

	// A concurrent writer bumps the version between our read and write
	stale, err := applications.GetByRequestID(ctx, app.RequestID)
	require.NoError(t, err)

	_, err = svc.Transition(ctx, app.RequestID, models.StatusUnderReview, "")
	require.NoError(t, err)

	stale.Status = models.StatusRejected
	err = applications.Update(ctx, stale)
	assert.ErrorIs(t, err, store.ErrConflict)
}
