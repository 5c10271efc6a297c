package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/starfinance/backend/internal/config"
	"github.com/starfinance/backend/internal/database"
	"github.com/starfinance/backend/internal/handlers"
	"github.com/starfinance/backend/internal/jobs"
	"github.com/starfinance/backend/internal/middleware"
	"github.com/starfinance/backend/internal/queue"
	"github.com/starfinance/backend/internal/routes"
	"github.com/starfinance/backend/internal/services/bullion"
	"github.com/starfinance/backend/internal/services/identity"
	"github.com/starfinance/backend/internal/services/loan"
	"github.com/starfinance/backend/internal/store"
)

func main() {
	// Initialize configuration (loads .env if present)
	cfg := config.LoadConfig()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := database.InitDB(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Job queue over Redis with a DB-backed job log
	jobQueue := queue.NewQueue(redisClient, db)

	// Stores and services
	identityStore := store.NewGormIdentityStore(db)
	applicationStore := store.NewGormApplicationStore(db)

	identityService := identity.NewService(identityStore, jobQueue)
	loanService := loan.NewService(applicationStore, identityStore)
	rateService := bullion.NewRateService()

	// Register job handlers and start the worker
	jobs.RegisterDocumentPrescreenJobHandlers(jobQueue, identityService)
	worker := queue.NewWorker(jobQueue)
	worker.Start()

	// Schedule recurring jobs
	scheduler := jobs.ScheduleRecurringJobs(rateService, cfg.Bullion.RefreshMinutes)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	identityHandler := handlers.NewIdentityHandler(identityService, cfg.UploadsDir)
	loanHandler := handlers.NewLoanHandler(loanService, cfg.UploadsDir)
	officerHandler := handlers.NewOfficerHandler(loanService, rateService)
	externalHandler := handlers.NewExternalHandler(rateService)

	// Initialize Gin router
	router := gin.Default()
	router.MaxMultipartMemory = 16 << 20

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// 60 requests per minute per IP globally, 5 auth attempts per minute
	rateLimiter := middleware.NewRateLimiter(1, 5, 10, 3)

	routes.RegisterRoutes(router, authHandler, identityHandler, loanHandler, officerHandler, externalHandler, rateLimiter)

	// Start server
	srv := startServer(router, cfg.Server.Port)

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	scheduler.Stop()
	worker.Stop()
	rateLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}

// startServer starts the HTTP server
func startServer(router *gin.Engine, port string) *http.Server {
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", port)
	return srv
}
