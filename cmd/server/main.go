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

	"memora-backend/internal/calendar"
	"memora-backend/internal/config"
	"memora-backend/internal/database"
	"memora-backend/internal/handlers"
	"memora-backend/internal/middleware"
	"memora-backend/internal/path"
	"memora-backend/internal/progress"
	"memora-backend/internal/reminder"
	"memora-backend/internal/repository"
	"memora-backend/internal/router"
	"memora-backend/internal/services"
	"memora-backend/internal/websocket"
)

func main() {
	log.Println("🚀 Starting Memora Backend...")

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
	scheduleRepo := repository.NewScheduleRepo(pool)
	accountRepo := repository.NewAccountRepo(pool)
	pathRepo := repository.NewPathRepo(pool)
	reminderRepo := repository.NewReminderRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	emailService := services.NewEmailService(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.FrontendURL)
	authService := services.NewAuthService(userRepo, redisClients.Sessions, jwtAuth)

	clock := calendar.SystemClock{}

	// ──── Step 5: Start Progress Tracker ────
	tracker := progress.NewTracker(accountRepo, clock, cfg.ReviewFlushDebounce)
	log.Printf("✓ Progress tracker started (flush debounce %s)", cfg.ReviewFlushDebounce)

	progression := path.NewProgression(pathRepo, pathRepo, clock)

	// ──── Step 6: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, cfg.JWTSecret)
	log.Println("✓ WebSocket hub started")

	// ──── Step 7: Start Reminder Scheduler ────
	sinks := reminder.MultiSink{
		reminder.NewHubSink(redisClients.Sessions),
		reminder.NewEmailSink(emailService, userRepo),
	}
	reminderScheduler := reminder.NewScheduler(reminderRepo, accountRepo, sinks, clock)
	reminderScheduler.Start()
	log.Println("✓ Reminder scheduler started")

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	reviewHandler := handlers.NewReviewHandler(scheduleRepo, tracker)
	progressHandler := handlers.NewProgressHandler(tracker)
	pathHandler := handlers.NewPathHandler(progression)
	reminderHandler := handlers.NewReminderHandler(reminderRepo, reminderScheduler)

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		reviewHandler,
		progressHandler,
		pathHandler,
		reminderHandler,
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
		reminderScheduler.Stop()
		// Flush pending review batches before the pool closes.
		tracker.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Memora Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/v1/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
