package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/services/loan"
	"github.com/starfinance/backend/internal/utils"
)

// LoanHandler handles the customer-facing loan application endpoints
type LoanHandler struct {
	loanSvc    *loan.Service
	uploadsDir string
}

// NewLoanHandler creates a new loan handler
func NewLoanHandler(loanSvc *loan.Service, uploadsDir string) *LoanHandler {
	return &LoanHandler{
		loanSvc:    loanSvc,
		uploadsDir: filepath.Join(uploadsDir, "assets"),
	}
}

// assetForm mirrors the multipart "assetDetails" JSON field
type assetForm struct {
	Type        models.AssetType `json:"type"`
	WeightGrams float64          `json:"weight_grams"`
	Purity      string           `json:"purity"`
	Description string           `json:"description"`
}

// payoutForm mirrors the multipart "bankDetails" JSON field
type payoutForm struct {
	AccountNumber   string `json:"account_number"`
	RoutingCode     string `json:"routing_code"`
	InstitutionName string `json:"institution_name"`
	BranchName      string `json:"branch_name"`
	HolderName      string `json:"holder_name"`
}

// Submit accepts a multipart loan application: JSON fields assetDetails
// and bankDetails, scalar fields kycNumber and requestedAmount, and up
// to five assetImages files.
func (h *LoanHandler) Submit(c *gin.Context) {
	subjectID := c.GetString("user_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	var asset assetForm
	if err := json.Unmarshal([]byte(c.PostForm("assetDetails")), &asset); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON format for assetDetails"})
		return
	}
	var payout payoutForm
	if err := json.Unmarshal([]byte(c.PostForm("bankDetails")), &payout); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid JSON format for bankDetails"})
		return
	}
	requestedAmount, err := strconv.ParseFloat(c.PostForm("requestedAmount"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid requestedAmount"})
		return
	}

	var imageRefs []string
	if form, err := c.MultipartForm(); err == nil {
		files := form.File["assetImages"]
		if len(files) > 5 {
			files = files[:5]
		}
		for _, file := range files {
			ref, err := utils.SaveUploadedFile(c, file, h.uploadsDir)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store asset image"})
				return
			}
			imageRefs = append(imageRefs, ref)
		}
	}

	app, err := h.loanSvc.Create(c.Request.Context(), loan.CreateInput{
		SubjectID: subjectID,
		KYCNumber: c.PostForm("kycNumber"),
		Asset: models.AssetDetails{
			Type:        asset.Type,
			WeightGrams: asset.WeightGrams,
			Purity:      asset.Purity,
			Description: asset.Description,
			ImageRefs:   models.StringList(imageRefs),
		},
		Payout: models.PayoutAccount{
			AccountNumber:   payout.AccountNumber,
			RoutingCode:     payout.RoutingCode,
			InstitutionName: payout.InstitutionName,
			BranchName:      payout.BranchName,
			HolderName:      payout.HolderName,
		},
		RequestedAmount: requestedAmount,
	})
	if err != nil {
		var validationErr *loan.ValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": validationErr.Error()})
		case errors.Is(err, loan.ErrIdentityNotVerified):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"success": false, "message": "Identity verification must be completed before applying"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"request_id": app.RequestID,
			"status":     app.Status,
		},
		"message": "Loan application submitted successfully",
	})
}

// Get returns a single loan application by request id. Customers only
// see their own; bank staff see any.
func (h *LoanHandler) Get(c *gin.Context) {
	app, err := h.loanSvc.GetByRequestID(c.Request.Context(), c.Param("requestId"))
	if err != nil {
		if errors.Is(err, loan.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Application not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	userType := models.UserType(c.GetString("user_type"))
	if userType == models.UserTypeCustomer && app.SubjectID != c.GetString("user_id") {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Application not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": app})
}

// ListMine returns the authenticated customer's applications, newest first
func (h *LoanHandler) ListMine(c *gin.Context) {
	subjectID := c.GetString("user_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	apps, err := h.loanSvc.ListBySubject(c.Request.Context(), subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": apps})
}
