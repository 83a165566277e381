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

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/prestasys/loan-origination/internal/auth"
	"github.com/prestasys/loan-origination/internal/config"
	"github.com/prestasys/loan-origination/internal/handler"
	"github.com/prestasys/loan-origination/internal/limits"
	"github.com/prestasys/loan-origination/internal/notification"
	"github.com/prestasys/loan-origination/internal/registry"
	"github.com/prestasys/loan-origination/internal/repository"
	"github.com/prestasys/loan-origination/internal/service"
	"github.com/prestasys/loan-origination/pkg/response"
)

func main() {
	// Load .env if present (optional in production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	loanRepo := repository.NewLoanRepository(db)
	userRepo := repository.NewUserRepository(db)
	limitRepo := repository.NewLimitStateRepository(redisClient)

	// Initialize services
	tracker := limits.NewTracker(limitRepo, loanRepo, cfg.GetDailyLimit(), cfg.GetMonthlyLimit())
	authService := auth.NewService(userRepo, cfg.Auth.JWTSecret, cfg.GetTokenExpiry())
	clientRegistry := registry.NewSimulated()
	mailer := notification.NewEmailSender(cfg.SMTP)
	originationService := service.NewOriginationService(loanRepo, tracker, clientRegistry, mailer, cfg)

	// Seed default users on first start
	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := authService.SeedDefaultUsers(seedCtx); err != nil {
		log.Printf("Failed to seed default users: %v", err)
	}
	seedCancel()

	// Initialize handlers
	loanHandler := handler.NewLoanHandler(originationService)
	authHandler := handler.NewAuthHandler(authService)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(loanHandler, authHandler, healthHandler, authService)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	loanHandler *handler.LoanHandler,
	authHandler *handler.AuthHandler,
	healthHandler *handler.HealthHandler,
	authService *auth.Service,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware)
	router.Use(response.CORSMiddleware)
	router.Use(response.JSONMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// Public auth routes
	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods("POST")

	// Authenticated API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(authService.Middleware)

	api.HandleFunc("/auth/password", authHandler.ChangePassword).Methods("POST")

	loans := api.PathPrefix("/loans").Subrouter()
	loans.Handle("", requireLoan(auth.ActionCreate, loanHandler.Register)).Methods("POST")
	loans.Handle("", requireLoan(auth.ActionRead, loanHandler.List)).Methods("GET")
	loans.Handle("/{loanId}", requireLoan(auth.ActionRead, loanHandler.Get)).Methods("GET")
	loans.Handle("/{loanId}/installments/{sequence}/payment",
		requireLoan(auth.ActionUpdate, loanHandler.PayInstallment)).Methods("POST")

	clients := api.PathPrefix("/clients").Subrouter()
	clients.Handle("/{personType}/{documentNumber}",
		requireLoan(auth.ActionRead, loanHandler.LookupClient)).Methods("GET")
	clients.Handle("/{personType}/{documentNumber}/limits",
		requireLoan(auth.ActionRead, loanHandler.RemainingLimits)).Methods("GET")

	users := api.PathPrefix("/users").Subrouter()
	users.Handle("", requireUsers(auth.ActionRead, authHandler.ListUsers)).Methods("GET")
	users.Handle("", requireUsers(auth.ActionCreate, authHandler.CreateUser)).Methods("POST")
	users.Handle("/{userId}", requireUsers(auth.ActionUpdate, authHandler.UpdateUser)).Methods("PUT")
	users.Handle("/{userId}", requireUsers(auth.ActionDelete, authHandler.DeleteUser)).Methods("DELETE")

	return router
}

func requireLoan(action string, h http.HandlerFunc) http.Handler {
	return auth.RequirePermission(auth.ResourceLoans, action)(h)
}

func requireUsers(action string, h http.HandlerFunc) http.Handler {
	return auth.RequirePermission(auth.ResourceUsers, action)(h)
}
