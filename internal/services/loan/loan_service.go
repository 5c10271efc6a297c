// Package loan owns the loan application lifecycle: creation gated on a
// verified identity, officer-driven stage transitions checked against an
// explicit graph, the evaluation step, and the risk-flag veto over
// approval.
package loan

import (
	"context"
	"errors"
	"strings"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/services/valuation"
	"github.com/starfinance/backend/internal/store"
	"github.com/starfinance/backend/internal/utils"
)

// CreateInput carries the customer-facing submission
type CreateInput struct {
	SubjectID       string
	KYCNumber       string
	Asset           models.AssetDetails
	Payout          models.PayoutAccount
	RequestedAmount float64
}

// EvaluationInput carries the evaluator's physical findings
type EvaluationInput struct {
	ActualWeightGrams float64
	VerifiedPurity    string
	PhysicalCondition string
	MarketRatePerGram float64
	LoanPercentage    float64
	Notes             string
}

// Service is the lifecycle controller. It consults the identity registry
// through the read-only reader and never duplicates identity state on the
// application beyond the KYC number reference.
type Service struct {
	applications store.ApplicationStore
	identities   store.IdentityReader
}

// NewService creates a loan lifecycle service
func NewService(applications store.ApplicationStore, identities store.IdentityReader) *Service {
	return &Service{applications: applications, identities: identities}
}

// Create validates the submission, checks the identity precondition and
// stores the application in status SUBMITTED under a fresh request id.
func (s *Service) Create(ctx context.Context, in CreateInput) (*models.LoanApplication, error) {
	if err := validateCreate(in); err != nil {
		return nil, err
	}

	rec, err := s.identities.GetBySubject(ctx, in.SubjectID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.KYCNumber != in.KYCNumber || rec.Status != models.IdentityStatusVerified {
		return nil, ErrIdentityNotVerified
	}

	app := &models.LoanApplication{
		RequestID:       utils.GenerateReference("RID"),
		SubjectID:       in.SubjectID,
		KYCNumber:       in.KYCNumber,
		Status:          models.StatusSubmitted,
		Asset:           in.Asset,
		Payout:          in.Payout,
		RequestedAmount: in.RequestedAmount,
	}

	if err := s.applications.Create(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// GetByRequestID returns the application or ErrNotFound
func (s *Service) GetByRequestID(ctx context.Context, requestID string) (*models.LoanApplication, error) {
	app, err := s.applications.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListBySubject returns the subject's applications, newest first
func (s *Service) ListBySubject(ctx context.Context, subjectID string) ([]models.LoanApplication, error) {
	return s.applications.ListBySubject(ctx, subjectID)
}

// ListPending returns applications awaiting initial review:
// SUBMITTED, UNDER_REVIEW or DOCUMENT_VERIFICATION.
func (s *Service) ListPending(ctx context.Context) ([]models.LoanApplication, error) {
	return s.applications.ListByStatus(ctx, models.PendingStatuses...)
}

// Transition moves the application to targetStatus after checking the
// lifecycle graph and, for APPROVED, the risk-flag veto. Notes are
// written into the evaluation notes. A concurrent writer racing on the
// same entity loses with ErrConflict.
func (s *Service) Transition(ctx context.Context, requestID string, targetStatus models.ApplicationStatus, notes string) (*models.LoanApplication, error) {
	if !models.ValidApplicationStatus(targetStatus) {
		return nil, ErrInvalidStatus
	}

	app, err := s.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(app.Status, targetStatus) {
		return nil, &InvalidTransitionError{From: app.Status, To: targetStatus}
	}

	if targetStatus == models.StatusApproved && len(app.RiskFlags) > 0 {
		return nil, &ApprovalBlockedError{Flags: app.RiskFlags}
	}

	app.Status = targetStatus
	if notes != "" {
		app.EvaluationNotes = notes
	}

	if err := s.applications.Update(ctx, app); err != nil {
		return nil, translateUpdateErr(err)
	}
	return app, nil
}

// RecordEvaluation computes and stores the quality index and approved
// amount from the evaluator's findings. It requires the application to
// have reached GOLD_EVALUATION and not to be terminal; it never changes
// the status itself — the officer transitions explicitly afterward.
func (s *Service) RecordEvaluation(ctx context.Context, requestID string, in EvaluationInput) (*models.LoanApplication, error) {
	if in.ActualWeightGrams <= 0 {
		return nil, &ValidationError{Field: "actual_weight_grams", Reason: "must be positive"}
	}
	if in.MarketRatePerGram <= 0 {
		return nil, &ValidationError{Field: "market_rate_per_gram", Reason: "must be positive"}
	}

	app, err := s.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if app.Status.Terminal() || app.Status.Rank() < models.StatusGoldEvaluation.Rank() {
		return nil, ErrEvaluationNotAllowed
	}

	amount, err := valuation.ApprovedAmount(in.ActualWeightGrams, in.MarketRatePerGram, in.LoanPercentage)
	if err != nil {
		return nil, err
	}
	index := valuation.QualityIndex(in.VerifiedPurity, in.PhysicalCondition)

	app.QualityIndex = &index
	app.ApprovedAmount = &amount
	if in.Notes != "" {
		app.EvaluationNotes = in.Notes
	}

	if err := s.applications.Update(ctx, app); err != nil {
		return nil, translateUpdateErr(err)
	}
	return app, nil
}

// SetRiskFlags replaces the application's risk flag set. Passing an empty
// set clears all flags and lifts the approval veto.
func (s *Service) SetRiskFlags(ctx context.Context, requestID string, flags []models.RiskFlag) (*models.LoanApplication, error) {
	for _, f := range flags {
		if !models.ValidRiskFlag(f) {
			return nil, ErrUnknownFlag
		}
	}

	app, err := s.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	app.RiskFlags = models.FlagList(flags)

	if err := s.applications.Update(ctx, app); err != nil {
		return nil, translateUpdateErr(err)
	}
	return app, nil
}

func translateUpdateErr(err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return ErrConflict
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	}
	return err
}

func validateCreate(in CreateInput) error {
	if strings.TrimSpace(in.SubjectID) == "" {
		return &ValidationError{Field: "subject_id", Reason: "required"}
	}
	if strings.TrimSpace(in.KYCNumber) == "" {
		return &ValidationError{Field: "kyc_number", Reason: "required"}
	}
	if in.RequestedAmount <= 0 {
		return &ValidationError{Field: "requested_amount", Reason: "must be positive"}
	}
	if !models.ValidAssetType(in.Asset.Type) {
		return &ValidationError{Field: "asset.type", Reason: "must be GOLD, SILVER or PLATINUM"}
	}
	if in.Asset.WeightGrams <= 0 {
		return &ValidationError{Field: "asset.weight_grams", Reason: "must be positive"}
	}
	if strings.TrimSpace(in.Asset.Purity) == "" {
		return &ValidationError{Field: "asset.purity", Reason: "required"}
	}
	if strings.TrimSpace(in.Payout.AccountNumber) == "" {
		return &ValidationError{Field: "payout.account_number", Reason: "required"}
	}
	if strings.TrimSpace(in.Payout.RoutingCode) == "" {
		return &ValidationError{Field: "payout.routing_code", Reason: "required"}
	}
	if strings.TrimSpace(in.Payout.InstitutionName) == "" {
		return &ValidationError{Field: "payout.institution_name", Reason: "required"}
	}
	if strings.TrimSpace(in.Payout.HolderName) == "" {
		return &ValidationError{Field: "payout.holder_name", Reason: "required"}
	}
	return nil
}
