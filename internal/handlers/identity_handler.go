package handlers

import (
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/services/identity"
	"github.com/starfinance/backend/internal/utils"
)

// IdentityHandler handles identity verification submissions and officer
// decisions
type IdentityHandler struct {
	identitySvc *identity.Service
	uploadsDir  string
}

// NewIdentityHandler creates a new identity handler
func NewIdentityHandler(identitySvc *identity.Service, uploadsDir string) *IdentityHandler {
	return &IdentityHandler{
		identitySvc: identitySvc,
		uploadsDir:  filepath.Join(uploadsDir, "kyc"),
	}
}

// Submit accepts the applicant's identity documents as a multipart form
// under the "documents" field and creates their verification record.
func (h *IdentityHandler) Submit(c *gin.Context) {
	subjectID := c.GetString("user_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Multipart form required"})
		return
	}

	var documentRefs []string
	for _, file := range form.File["documents"] {
		ref, err := utils.SaveUploadedFile(c, file, h.uploadsDir)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store document"})
			return
		}
		documentRefs = append(documentRefs, ref)
	}

	rec, err := h.identitySvc.Submit(c.Request.Context(), subjectID, documentRefs)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrDuplicateIdentity):
			// Point the caller back at their existing record
			existing, lookupErr := h.identitySvc.GetStatus(c.Request.Context(), subjectID)
			resp := gin.H{"success": false, "message": "Identity record already exists for this user"}
			if lookupErr == nil && existing != nil {
				resp["kyc_number"] = existing.KYCNumber
			}
			c.JSON(http.StatusBadRequest, resp)
		case errors.Is(err, identity.ErrMissingDocuments), errors.Is(err, identity.ErrMissingSubject):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"kyc_number": rec.KYCNumber,
			"status":     rec.Status,
		},
		"message": "Identity documents submitted successfully",
	})
}

// GetStatus returns the authenticated applicant's verification record.
// Not having submitted yet is a normal state, not an error.
func (h *IdentityHandler) GetStatus(c *gin.Context) {
	subjectID := c.GetString("user_id")
	if subjectID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return
	}

	rec, err := h.identitySvc.GetStatus(c.Request.Context(), subjectID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}
	if rec == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "data": nil, "message": "No identity record found for this user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":         rec.ID,
			"kyc_number": rec.KYCNumber,
			"status":     rec.Status,
			"created_at": rec.CreatedAt,
		},
	})
}

// ListPending returns undecided identity records for officer review
func (h *IdentityHandler) ListPending(c *gin.Context) {
	recs, err := h.identitySvc.ListPending(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": recs})
}

// DecideRequest carries the officer's verification outcome
type DecideRequest struct {
	Status models.IdentityStatus `json:"status" binding:"required"`
	Notes  string                `json:"notes"`
}

// Decide records the officer's decision on an identity record
func (h *IdentityHandler) Decide(c *gin.Context) {
	identityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid identity record id"})
		return
	}

	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	rec, err := h.identitySvc.Decide(c.Request.Context(), identityID, req.Status, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Identity record not found"})
		case errors.Is(err, identity.ErrInvalidOutcome):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Status must be VERIFIED or REJECTED"})
		case errors.Is(err, identity.ErrAlreadyDecided):
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "Identity record has already been decided"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec, "message": "Identity status updated"})
}
