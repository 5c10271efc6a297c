package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/starfinance/backend/internal/models"
	"github.com/starfinance/backend/internal/utils"
)

// AuthMiddleware verifies JWT tokens and adds user info to context
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)

		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Access token required"})
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID.String())
		c.Set("email", claims.Email)
		c.Set("user_type", string(claims.UserType))

		c.Next()
	}
}

// OfficerMiddleware ensures the user is bank staff. Review operations
// (identity decisions, transitions, evaluations, risk flags) are gated
// behind it.
func OfficerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userType := models.UserType(c.GetString("user_type"))
		if userType != models.UserTypeBankOfficer && userType != models.UserTypeAdmin {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Bank officer access required"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// extractToken gets the token from the Authorization header
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if len(strings.Split(bearerToken, " ")) == 2 {
		return strings.Split(bearerToken, " ")[1]
	}
	return ""
}
