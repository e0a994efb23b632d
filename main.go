package main

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"

	"jansetu/config"
	"jansetu/middleware"
	"jansetu/routes"
	"jansetu/schema"
	"jansetu/service"
	"jansetu/worker"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg := config.LoadConfig()

	// Initialize database connection (UTC for consistent timestamps)
	dsn := cfg.Database.DatabaseURL
	if dsn == "" {
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
		)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("Failed to open database connection: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	log.Println("Database connection established")

	// Create missing tables, then verify the columns the sweep and the
	// rating gate depend on
	schema.InitializeDatabase(db)
	schema.ValidateRequiredColumns(db, nil)

	// Initialize services
	metricsService := service.NewMetricsService()
	complaintService := service.NewComplaintService(db, metricsService)
	ratingService := service.NewRatingService(db, metricsService)
	escalationService := service.NewEscalationService(db)
	authorityService := service.NewAuthorityService(db, []byte(cfg.Auth.JWTSecret), cfg.Auth.TokenTTLHours)
	notificationService := service.NewNotificationService(db)

	// Background workers
	escalationWorker := worker.NewEscalationWorker(escalationService, cfg.Escalation.SweepSchedule)
	if err := escalationWorker.Start(); err != nil {
		log.Fatalf("Failed to start escalation worker: %v", err)
	}
	defer escalationWorker.Stop()

	notificationWorker := worker.NewNotificationWorker(
		notificationService,
		time.Duration(cfg.Notification.IntervalSeconds)*time.Second,
		cfg.Notification.BatchSize,
	)
	notificationWorker.Start()
	defer notificationWorker.Stop()

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.Auth.JWTSecret)
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.ComplaintsPerHour, cfg.RateLimit.Burst)

	router := routes.SetupRoutes(
		complaintService,
		ratingService,
		escalationService,
		authorityService,
		authMiddleware,
		rateLimiter,
	)

	// CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "3600")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("Server starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, corsHandler(router)))
}
