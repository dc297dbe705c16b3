package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"olymprep-backend/internal/config"
	"olymprep-backend/internal/database"
	"olymprep-backend/internal/handlers"
	"olymprep-backend/internal/middleware"
	"olymprep-backend/internal/repository"
	"olymprep-backend/internal/router"
	"olymprep-backend/internal/services"
	"olymprep-backend/internal/websocket"
	"olymprep-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting OlympRep Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	contentRepo := repository.NewContentRepo(pool)
	sessionRepo := repository.NewStudySessionRepo(pool)
	progressRepo := repository.NewProgressRepo(pool)
	achievementRepo := repository.NewAchievementRepo(pool)
	scoreRepo := repository.NewTestScoreRepo(pool)

	// ──── Step 5: Initialize Google API Clients ────
	// Both run without keys in development: access checks are skipped and PDF
	// streaming is disabled, everything else works.
	ctx := context.Background()
	var ytService *youtube.Service
	if cfg.YouTubeAPIKey != "" {
		ytService, err = youtube.NewService(ctx, option.WithAPIKey(cfg.YouTubeAPIKey))
		if err != nil {
			log.Fatalf("✗ YouTube client initialization failed: %v", err)
		}
		log.Println("✓ YouTube Data API client initialized")
	} else if cfg.Env == "production" {
		log.Println("⚠ YOUTUBE_API_KEY not set, videos will not be served in production")
	} else {
		log.Println("⚠ YOUTUBE_API_KEY not set, embeddability checks skipped")
	}

	var driveService *drive.Service
	if cfg.DriveAPIKey != "" {
		driveService, err = drive.NewService(ctx, option.WithAPIKey(cfg.DriveAPIKey))
		if err != nil {
			log.Fatalf("✗ Drive client initialization failed: %v", err)
		}
		log.Println("✓ Drive API client initialized")
	} else {
		log.Println("⚠ DRIVE_API_KEY not set, PDF streaming disabled")
	}

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	tokenIssuer := services.NewVideoTokenIssuer(cfg.VideoTokenSecret, time.Duration(cfg.VideoTokenTTLMinutes)*time.Minute)
	metadataService := services.NewVideoMetadataService()
	sessionService := services.NewSessionService(sessionRepo, progressRepo, redisClients.Cache)
	progressService := services.NewProgressService(progressRepo, contentRepo, sessionService)
	accessService := services.NewAccessService(contentRepo, progressService, tokenIssuer, ytService, driveService, redisClients.Cache, cfg.Env == "production")
	achievementService := services.NewAchievementService(achievementRepo, sessionRepo, progressRepo, contentRepo, scoreRepo, redisClients.PubSub)
	authService := services.NewAuthService(userRepo, achievementService, redisClients.Cache, jwtAuth)
	billingService := services.NewBillingService(userRepo, cfg.MidtransServerKey, cfg.Env == "production")

	assistService, err := services.NewAssistService(cfg.GeminiAPIKey, redisClients.Cache)
	if err != nil {
		log.Fatalf("✗ Gemini client initialization failed: %v", err)
	}
	defer assistService.Close()
	if assistService.Enabled() {
		log.Println("✓ Gemini coach notes enabled")
	} else {
		log.Println("⚠ GEMINI_API_KEY not set, coach notes disabled")
	}

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	contentHandler := handlers.NewContentHandler(contentRepo, userRepo, accessService, metadataService, assistService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	progressHandler := handlers.NewProgressHandler(progressService)
	achievementHandler := handlers.NewAchievementHandler(achievementService, scoreRepo)
	billingHandler := handlers.NewBillingHandler(billingService, userRepo)
	adminHandler := handlers.NewAdminHandler(userRepo)

	// ──── Step 6: Start Achievement Worker Pool ────
	workerPool := worker.NewPool(redisClients.Cache, achievementService, cfg.AchievementWorkers)
	workerPool.Start()
	log.Printf("✓ Achievement worker pool started (%d goroutines)", cfg.AchievementWorkers)

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		contentHandler,
		sessionHandler,
		progressHandler,
		achievementHandler,
		billingHandler,
		adminHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("✓ OlympRep Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
