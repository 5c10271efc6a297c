package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/starfinance/backend/internal/handlers"
	"github.com/starfinance/backend/internal/middleware"
)

// RegisterRoutes configures all API routes
func RegisterRoutes(
	router *gin.Engine,
	authHandler *handlers.AuthHandler,
	identityHandler *handlers.IdentityHandler,
	loanHandler *handlers.LoanHandler,
	officerHandler *handlers.OfficerHandler,
	externalHandler *handlers.ExternalHandler,
	rateLimiter *middleware.RateLimiter,
) {
	router.Use(rateLimiter.IPRateLimiterMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth routes get the tighter per-IP limit on top of the global one
	auth := router.Group("/api/auth")
	auth.Use(rateLimiter.AuthRateLimiterMiddleware())
	{
		auth.POST("/customer/signup", authHandler.CustomerSignup)
		auth.POST("/customer/login", authHandler.CustomerLogin)
		auth.POST("/bank/register", authHandler.BankRegister)
		auth.POST("/bank/login", authHandler.BankLogin)
		auth.POST("/google", authHandler.GoogleAuth)
	}
	router.POST("/api/auth/totp/setup", middleware.AuthMiddleware(), authHandler.SetupTOTP)

	// Customer identity verification routes
	kyc := router.Group("/api/kyc")
	kyc.Use(middleware.AuthMiddleware())
	{
		kyc.POST("/submit", identityHandler.Submit)
		kyc.GET("/status", identityHandler.GetStatus)
	}

	// Customer loan application routes
	loans := router.Group("/api/loan")
	loans.Use(middleware.AuthMiddleware())
	{
		loans.POST("/submit", loanHandler.Submit)
		loans.GET("/applications", loanHandler.ListMine)
		loans.GET("/applications/:requestId", loanHandler.Get)
	}

	// Officer routes - require a bank officer or admin account
	bank := router.Group("/api/bank")
	bank.Use(middleware.AuthMiddleware(), middleware.OfficerMiddleware())
	{
		bank.GET("/applications/pending", officerHandler.ListPending)
		bank.PUT("/applications/:requestId/status", officerHandler.Transition)
		bank.PUT("/applications/:requestId/evaluation", officerHandler.RecordEvaluation)
		bank.PUT("/applications/:requestId/flags", officerHandler.SetRiskFlags)
		bank.GET("/flags/catalog", officerHandler.FlagCatalog)

		bank.GET("/kyc/pending", identityHandler.ListPending)
		bank.PUT("/kyc/:id/status", identityHandler.Decide)
	}

	// Mock external integrations
	external := router.Group("/api/external")
	{
		external.POST("/verify/aadhaar", externalHandler.VerifyAadhaar)
		external.POST("/verify/pan", externalHandler.VerifyPAN)
		external.GET("/rates", externalHandler.Rates)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
	})
}
