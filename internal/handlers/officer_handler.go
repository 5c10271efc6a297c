package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/services/bullion"
	"github.com/starfinance/backend/internal/services/loan"
	"github.com/starfinance/backend/internal/services/valuation"
)

// OfficerHandler handles the review-side loan application endpoints:
// the pending work queue, stage transitions, collateral evaluation and
// risk flags.
type OfficerHandler struct {
	loanSvc *loan.Service
	rates   *bullion.RateService
}

// NewOfficerHandler creates a new officer handler
func NewOfficerHandler(loanSvc *loan.Service, rates *bullion.RateService) *OfficerHandler {
	return &OfficerHandler{loanSvc: loanSvc, rates: rates}
}

// ListPending returns applications awaiting initial review
func (h *OfficerHandler) ListPending(c *gin.Context) {
	apps, err := h.loanSvc.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": apps})
}

// TransitionRequest carries a stage transition
type TransitionRequest struct {
	Status models.ApplicationStatus `json:"status" binding:"required"`
	Notes  string                   `json:"notes"`
}

// Transition moves an application along the lifecycle graph
func (h *OfficerHandler) Transition(c *gin.Context) {
	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	app, err := h.loanSvc.Transition(c.Request.Context(), c.Param("requestId"), req.Status, req.Notes)
	if err != nil {
		h.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": app, "message": "Status updated successfully"})
}

// EvaluationRequest carries the evaluator's physical findings. When
// market_rate_per_gram is omitted the current bullion rate for the
// application's asset is used.
type EvaluationRequest struct {
	ActualWeightGrams float64 `json:"actual_weight_grams" binding:"required"`
	VerifiedPurity    string  `json:"verified_purity" binding:"required"`
	PhysicalCondition string  `json:"physical_condition" binding:"required"`
	MarketRatePerGram float64 `json:"market_rate_per_gram"`
	LoanPercentage    float64 `json:"loan_percentage" binding:"required"`
	Notes             string  `json:"notes"`
}

// RecordEvaluation stores the quality index and approved amount computed
// from the physical evaluation
func (h *OfficerHandler) RecordEvaluation(c *gin.Context) {
	var req EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	rate := req.MarketRatePerGram
	if rate == 0 {
		app, err := h.loanSvc.GetByRequestID(c.Request.Context(), c.Param("requestId"))
		if err != nil {
			h.respondLoanError(c, err)
			return
		}
		rate, err = h.rates.RatePerGram(app.Asset.Type, req.VerifiedPurity)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No market rate available for this asset"})
			return
		}
	}

	app, err := h.loanSvc.RecordEvaluation(c.Request.Context(), c.Param("requestId"), loan.EvaluationInput{
		ActualWeightGrams: req.ActualWeightGrams,
		VerifiedPurity:    req.VerifiedPurity,
		PhysicalCondition: req.PhysicalCondition,
		MarketRatePerGram: rate,
		LoanPercentage:    req.LoanPercentage,
		Notes:             req.Notes,
	})
	if err != nil {
		h.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": app, "message": "Evaluation recorded"})
}

// FlagsRequest carries the officer's full risk flag set; an empty list
// clears all flags
type FlagsRequest struct {
	Flags []models.RiskFlag `json:"flags"`
}

// SetRiskFlags replaces the application's risk flag set
func (h *OfficerHandler) SetRiskFlags(c *gin.Context) {
	var req FlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	app, err := h.loanSvc.SetRiskFlags(c.Request.Context(), c.Param("requestId"), req.Flags)
	if err != nil {
		h.respondLoanError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": app, "message": "Risk flags updated"})
}

// FlagCatalog returns the full risk flag catalog with display descriptions
func (h *OfficerHandler) FlagCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": models.RiskFlagCatalog})
}

// respondLoanError maps lifecycle errors onto HTTP statuses
func (h *OfficerHandler) respondLoanError(c *gin.Context, err error) {
	var (
		validationErr *loan.ValidationError
		transitionErr *loan.InvalidTransitionError
		blockedErr    *loan.ApprovalBlockedError
		bandErr       *valuation.OutOfBandError
	)

	switch {
	case errors.Is(err, loan.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Application not found"})
	case errors.Is(err, loan.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unknown application status"})
	case errors.Is(err, loan.ErrUnknownFlag):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unknown risk flag"})
	case errors.Is(err, loan.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Application was modified concurrently, please retry"})
	case errors.Is(err, loan.ErrEvaluationNotAllowed):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Application has not reached the evaluation stage"})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": transitionErr.Error()})
	case errors.As(err, &blockedErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"message": "Approval blocked by risk flags",
			"data":    gin.H{"blocking_flags": blockedErr.Flags},
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Error()})
	case errors.As(err, &bandErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": bandErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}
}
