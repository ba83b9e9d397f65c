package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pranjitbis/learning-management-system/internal/api"
	"github.com/pranjitbis/learning-management-system/internal/config"
	"github.com/pranjitbis/learning-management-system/internal/repository/postgres"
	"github.com/pranjitbis/learning-management-system/internal/service"
	"github.com/pranjitbis/learning-management-system/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	log.Println("Starting LMS Server...")

	// .env is optional; systemd/docker environments set real env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using environment variables")
	}

	// --- Configuration ---
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("FATAL: Could not load config: %v", err)
	}
	log.Println("Configuration loaded.")

	// --- Database Connection ---
	db, err := postgres.Connect(cfg.Database.DSN)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to Postgres: %v", err)
	}
	log.Println("Database connection established.")

	// --- Schema Migration ---
	if err := postgres.AutoMigrate(db); err != nil {
		log.Fatalf("FATAL: Could not migrate schema: %v", err)
	}
	log.Println("Schema migration completed.")

	// --- Initialize Storage ---
	log.Println("Initializing certificate storage...")
	var fileStorage storage.FileStorage
	switch cfg.Storage.Provider {
	case "s3":
		fileStorage, err = storage.NewS3Storage(cfg.Storage.S3)
	default:
		fileStorage, err = storage.NewLocalStorage(cfg.Storage.Local.Directory, cfg.Storage.Local.BaseURL)
	}
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize storage: %v", err)
	}

	// --- Initialize Repositories ---
	log.Println("Initializing repositories...")
	userRepo := postgres.NewUserRepository(db)
	courseRepo := postgres.NewCourseRepository(db)
	videoRepo := postgres.NewVideoRepository(db)
	accessRepo := postgres.NewAccessRepository(db)
	progressRepo := postgres.NewProgressRepository(db)
	certRepo := postgres.NewCertificateRepository(db)

	// --- Initialize Services ---
	log.Println("Initializing services...")
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	certService := service.NewCertificateService(certRepo, progressRepo, fileStorage)
	progressService := service.NewProgressService(userRepo, courseRepo, videoRepo, accessRepo, progressRepo, certService)
	courseService := service.NewCourseService(courseRepo, videoRepo)
	accessService := service.NewAccessService(accessRepo, courseRepo)
	userService := service.NewUserService(userRepo, accessRepo)

	// --- Seed Admin Account ---
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.EnsureAdmin(seedCtx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
		log.Printf("WARNING: Could not seed admin account: %v", err)
	}
	cancelSeed()

	// --- Initialize Gin Engine ---
	// gin.SetMode(gin.ReleaseMode) // Uncomment for production
	router := gin.Default() // Includes Logger and Recovery middleware

	// --- Setup Routes ---
	log.Println("Setting up API routes...")
	api.SetupRoutes(router, cfg.JWT.Secret, authService, progressService, courseService, accessService, certService, userService)
	if cfg.Storage.Provider != "s3" {
		api.ServeUploads(router, cfg.Storage.Local.BaseURL, cfg.Storage.Local.Directory)
	}

	// --- Start HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server starting on %s", cfg.Server.Address)

	// --- Graceful Shutdown ---
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: ListenAndServe Error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("FATAL: Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
