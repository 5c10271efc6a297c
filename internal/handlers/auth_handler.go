package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/starfinance/backend/internal/config"
	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/utils"
)

// AuthHandler handles registration and login for customers and bank staff
type AuthHandler struct {
	db  *gorm.DB
	cfg *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(db *gorm.DB, cfg *config.Config) *AuthHandler {
	return &AuthHandler{db: db, cfg: cfg}
}

// SignupRequest represents a registration request
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

// CustomerSignup registers a customer account
func (h *AuthHandler) CustomerSignup(c *gin.Context) {
	h.signup(c, models.UserTypeCustomer)
}

// BankRegister registers a bank officer account and assigns an employee id
func (h *AuthHandler) BankRegister(c *gin.Context) {
	h.signup(c, models.UserTypeBankOfficer)
}

func (h *AuthHandler) signup(c *gin.Context, userType models.UserType) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if err := utils.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var existing models.User
	if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Email already exists"})
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Type:         userType,
	}
	if userType == models.UserTypeBankOfficer {
		employeeID := utils.GenerateReference("EMP")
		user.EmployeeID = &employeeID
	}

	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    userResponse(&user),
		"message": "Account created successfully",
	})
}

// CustomerLogin authenticates a customer
func (h *AuthHandler) CustomerLogin(c *gin.Context) {
	h.login(c, models.UserTypeCustomer)
}

// BankLogin authenticates a bank officer, requiring a TOTP code when the
// account has step-up enabled
func (h *AuthHandler) BankLogin(c *gin.Context) {
	h.login(c, models.UserTypeBankOfficer)
}

func (h *AuthHandler) login(c *gin.Context, userType models.UserType) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	var user models.User
	err := h.db.Where("email = ? AND type = ?", req.Email, userType).First(&user).Error
	if err != nil || !utils.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid credentials"})
		return
	}
	if !user.IsActive {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Account is disabled"})
		return
	}

	if user.TOTPEnabled {
		if user.TOTPSecret == nil || !utils.ValidateTOTPCode(req.TOTPCode, *user.TOTPSecret) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Valid TOTP code required"})
			return
		}
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.Type)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to issue token"})
		return
	}

	now := time.Now()
	h.db.Model(&user).Update("last_login_at", now)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":   userResponse(&user),
			"tokens": tokens,
		},
		"message": "Login successful",
	})
}

// SetupTOTP provisions a TOTP secret for the authenticated officer. The
// secret becomes active immediately; subsequent logins require a code.
func (h *AuthHandler) SetupTOTP(c *gin.Context) {
	user, ok := h.currentUser(c)
	if !ok {
		return
	}
	if !user.IsOfficer() {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Bank officer access required"})
		return
	}

	key, err := utils.GenerateTOTPKey(utils.DefaultMFAConfig(), user.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to generate TOTP key"})
		return
	}

	if err := h.db.Model(user).Updates(map[string]interface{}{
		"totp_secret":  key.Secret,
		"totp_enabled": true,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store TOTP key"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"secret": key.Secret, "url": key.URL},
		"message": "TOTP enabled",
	})
}

// GoogleAuthRequest represents the request body for Google sign-in
type GoogleAuthRequest struct {
	Code        string `json:"code" binding:"required"`
	RedirectURI string `json:"redirect_uri" binding:"required"`
}

// GoogleAuth exchanges a Google authorization code for a customer
// session, creating the account on first sign-in.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	if h.cfg.Google.ClientID == "" || h.cfg.Google.ClientSecret == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Google sign-in is not configured"})
		return
	}

	oauth2Config := &oauth2.Config{
		ClientID:     h.cfg.Google.ClientID,
		ClientSecret: h.cfg.Google.ClientSecret,
		RedirectURL:  req.RedirectURI,
		Scopes:       []string{"https://www.googleapis.com/auth/userinfo.email", "https://www.googleapis.com/auth/userinfo.profile"},
		Endpoint:     google.Endpoint,
	}

	token, err := oauth2Config.Exchange(context.Background(), req.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": fmt.Sprintf("Failed to exchange token: %v", err)})
		return
	}

	client := oauth2Config.Client(context.Background(), token)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to fetch Google profile"})
		return
	}
	defer resp.Body.Close()

	var profile struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil || profile.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Failed to decode Google profile"})
		return
	}

	var user models.User
	err = h.db.Where("email = ? AND type = ?", profile.Email, models.UserTypeCustomer).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Social accounts get an unusable random password hash
		hash, hashErr := utils.HashPassword(utils.GenerateReference("GOOG"))
		if hashErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}
		user = models.User{
			Name:         profile.Name,
			Email:        profile.Email,
			PasswordHash: hash,
			Type:         models.UserTypeCustomer,
		}
		if err := h.db.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to create account"})
			return
		}
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
		return
	}

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.Type)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":   userResponse(&user),
			"tokens": tokens,
		},
		"message": "Login successful",
	})
}

func (h *AuthHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return nil, false
	}

	var user models.User
	if err := h.db.First(&user, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Unauthorized"})
		return nil, false
	}
	return &user, true
}

func userResponse(user *models.User) gin.H {
	resp := gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"type":  user.Type,
	}
	if user.EmployeeID != nil {
		resp["employee_id"] = *user.EmployeeID
	}
	return resp
}
