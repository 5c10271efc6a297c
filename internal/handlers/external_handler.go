package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/starfinance/backend/internal/services/bullion"
)

// ExternalHandler serves the mock third-party integrations: government
// ID verification and the bullion rate feed. Real providers would be
// called from here.
type ExternalHandler struct {
	rates *bullion.RateService
}

// NewExternalHandler creates a new external integrations handler
func NewExternalHandler(rates *bullion.RateService) *ExternalHandler {
	return &ExternalHandler{rates: rates}
}

// VerifyAadhaarRequest carries a national ID number to verify
type VerifyAadhaarRequest struct {
	AadhaarNumber string `json:"aadhaar_number" binding:"required"`
}

// VerifyAadhaar mock-verifies a national ID number. Any well-formed
// 12-digit number passes.
func (h *ExternalHandler) VerifyAadhaar(c *gin.Context) {
	var req VerifyAadhaarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	number := strings.ReplaceAll(req.AadhaarNumber, " ", "")
	if len(number) != 12 || !digitsOnly(number) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"verified": false, "reason": "Invalid Aadhaar format"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"verified":  true,
			"name_hash": maskID(number),
		},
	})
}

// VerifyPANRequest carries a tax ID to verify
type VerifyPANRequest struct {
	PANNumber string `json:"pan_number" binding:"required"`
}

// VerifyPAN mock-verifies a tax ID. The format is five letters, four
// digits, one letter.
func (h *ExternalHandler) VerifyPAN(c *gin.Context) {
	var req VerifyPANRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	pan := strings.ToUpper(strings.TrimSpace(req.PANNumber))
	if !validPAN(pan) {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"verified": false, "reason": "Invalid PAN format"},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"verified": true, "pan": maskID(pan)},
	})
}

// Rates returns the current bullion rate snapshot
func (h *ExternalHandler) Rates(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.rates.Current()})
}

func digitsOnly(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func validPAN(s string) bool {
	if len(s) != 10 {
		return false
	}
	for i, r := range s {
		switch {
		case i < 5 || i == 9:
			if r < 'A' || r > 'Z' {
				return false
			}
		default:
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// maskID keeps the last four characters and masks the rest
func maskID(s string) string {
	if len(s) <= 4 {
		return s
	}
	return strings.Repeat("X", len(s)-4) + s[len(s)-4:]
}
