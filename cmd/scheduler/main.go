package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"

	"github.com/prestasys/loan-origination/internal/config"
	"github.com/prestasys/loan-origination/internal/repository"
)

func main() {
	log.Println("Starting loan scheduler...")

	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	loanRepo := repository.NewLoanRepository(db)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds())

	// Schedule tasks
	setupCronJobs(c, cfg, loanRepo)

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

func setupCronJobs(c *cron.Cron, cfg *config.Config, loans repository.LoanRepository) {
	// Daily job to flip past-due pending installments to overdue
	_, err := c.AddFunc(cfg.Scheduler.OverdueCron, func() {
		log.Println("Running daily overdue installment update job...")
		markOverdueInstallments(loans)
	})
	if err != nil {
		log.Printf("Error scheduling overdue installment update job: %v", err)
	}

	log.Println("Cron jobs scheduled successfully")
}

func markOverdueInstallments(loans repository.LoanRepository) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	updated, err := loans.MarkOverdueInstallments(ctx, time.Now())
	if err != nil {
		log.Printf("Overdue installment update failed: %v", err)
		return
	}

	log.Printf("Overdue installment update finished, %d installments marked", updated)
}
